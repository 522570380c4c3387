package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/domain"
	"github.com/damoang/angple-cms/internal/repository"
	"github.com/damoang/angple-cms/pkg/jwt"
	pkglogger "github.com/damoang/angple-cms/pkg/logger"
)

// AuthService authentication business logic
type AuthService interface {
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
	// Signup caller is nil for anonymous requests
	Signup(ctx context.Context, req *domain.SignupRequest, caller *jwt.Claims) (*domain.User, error)
	Me(ctx context.Context, claims *jwt.Claims) (*domain.User, error)
	ListUsers(ctx context.Context, siteID string) ([]*domain.User, error)
}

type authService struct {
	users      repository.UserRepository
	types      ContentTypeService
	jwtManager *jwt.Manager
	now        func() time.Time
}

// NewAuthService creates a new AuthService. types may be nil.
func NewAuthService(users repository.UserRepository, types ContentTypeService, jwtManager *jwt.Manager) AuthService {
	return &authService{
		users:      users,
		types:      types,
		jwtManager: jwtManager,
		now:        time.Now,
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// compareDummy 존재하지 않는 계정도 같은 bcrypt 비용을 치르게 함
func compareDummy(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("angple-cms-dummy-password"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// Login authenticates a site user and issues a token
func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	// 1. Find user
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(req.SiteID), req.Email)
	if err != nil {
		if common.KindOf(err) != common.KindNotFound {
			return nil, wrapErr("find user", err)
		}
		compareDummy(req.Password)
		return nil, common.ErrInvalidCredentials
	}

	// 2. Verify password, then account state
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, common.ErrInvalidCredentials
	}

	// 3. Issue token
	token, err := s.jwtManager.GenerateToken(user.UserID, user.SiteID, string(user.Role))
	if err != nil {
		return nil, common.Internal("generate token", err)
	}

	// 4. Record login time; failure does not block login
	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.SiteID, user.UserID, now); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("user_id", user.UserID).Msg("failed to update last login")
	} else {
		user.LastLoginAt = &now
	}

	return &domain.LoginResponse{
		Token:     token,
		ExpiresIn: int(s.jwtManager.ExpiresIn().Seconds()),
		User:      user,
	}, nil
}

// Signup creates a user. The first user of a site bootstraps it as admin;
// afterwards only an admin of the same site may add users.
func (s *authService) Signup(ctx context.Context, req *domain.SignupRequest, caller *jwt.Claims) (*domain.User, error) {
	siteID := strings.TrimSpace(req.SiteID)
	if siteID == "" {
		return nil, common.ErrMissingSite
	}
	if !domain.ValidSiteID(siteID) {
		return nil, common.ErrInvalidSite
	}

	count, err := s.users.CountBySite(ctx, siteID)
	if err != nil {
		return nil, wrapErr("count users", err)
	}

	bootstrap := count == 0
	role := req.Role
	if bootstrap {
		role = domain.RoleAdmin
	} else {
		if caller == nil {
			return nil, common.ErrUnauthorized
		}
		if caller.SiteID != siteID {
			return nil, common.ErrSiteMismatch
		}
		if caller.Role != string(domain.RoleAdmin) {
			return nil, common.ErrAdminRequired
		}
		if role == "" {
			role = domain.RoleEditor
		}
	}
	if !role.Valid() {
		return nil, common.NewValidationError("invalid role", map[string]string{"role": string(role)})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, common.NewValidationError("password too long", nil)
		}
		return nil, common.Internal("hash password", err)
	}

	user := &domain.User{
		UserID:   uuid.NewString(),
		SiteID:   siteID,
		Email:    req.Email,
		Password: string(hashed),
		Name:     strings.TrimSpace(req.Name),
		Role:     role,
		Active:   true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, wrapErr("create user", err)
	}

	if bootstrap && s.types != nil {
		if err := s.types.EnsureSystemTypes(ctx, siteID); err != nil {
			l := pkglogger.WithSite(siteID)
			l.Error().Err(err).Msg("failed to seed system content types")
		}
	}
	return user, nil
}

func (s *authService) Me(ctx context.Context, claims *jwt.Claims) (*domain.User, error) {
	if claims == nil {
		return nil, common.ErrUnauthorized
	}
	user, err := s.users.FindByUserID(ctx, claims.SiteID, claims.UserID)
	if err != nil {
		if common.KindOf(err) == common.KindNotFound {
			return nil, common.ErrUnauthorized
		}
		return nil, wrapErr("find user", err)
	}
	if !user.Active {
		return nil, common.ErrUnauthorized
	}
	return user, nil
}

func (s *authService) ListUsers(ctx context.Context, siteID string) ([]*domain.User, error) {
	users, err := s.users.List(ctx, siteID)
	if err != nil {
		return nil, wrapErr("list users", err)
	}
	return users, nil
}
