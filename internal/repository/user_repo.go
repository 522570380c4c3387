package repository

import (
	"context"
	"strings"
	"time"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/domain"
	"gorm.io/gorm"
)

var errUserNotFound = common.NewNotFoundError("user")

// UserRepository CMS account data access
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	FindByEmail(ctx context.Context, siteID, email string) (*domain.User, error)
	FindByUserID(ctx context.Context, siteID, userID string) (*domain.User, error)
	CountBySite(ctx context.Context, siteID string) (int64, error)
	List(ctx context.Context, siteID string) ([]*domain.User, error)
	UpdateLastLogin(ctx context.Context, siteID, userID string, at time.Time) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	err := r.db.WithContext(ctx).Create(u).Error
	return translate(err, errUserNotFound, "email already registered")
}

// FindByEmail looks the user up case-insensitively; emails are stored lower-cased
func (r *userRepository) FindByEmail(ctx context.Context, siteID, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND email = ?", siteID, strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if err != nil {
		return nil, translate(err, errUserNotFound, "")
	}
	return &u, nil
}

func (r *userRepository) FindByUserID(ctx context.Context, siteID, userID string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND user_id = ?", siteID, userID).
		First(&u).Error
	if err != nil {
		return nil, translate(err, errUserNotFound, "")
	}
	return &u, nil
}

func (r *userRepository) CountBySite(ctx context.Context, siteID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("site_id = ?", siteID).Count(&count).Error
	return count, err
}

func (r *userRepository) List(ctx context.Context, siteID string) ([]*domain.User, error) {
	var users []*domain.User
	err := r.db.WithContext(ctx).Where("site_id = ?", siteID).Order("created_at ASC").Find(&users).Error
	return users, err
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, siteID, userID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("site_id = ? AND user_id = ?", siteID, userID).
		Update("last_login_at", at).Error
}
