package domain

import "time"

// UserRole is the permission level of a CMS user
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleEditor UserRole = "editor"
)

// Valid reports whether r is a known role
func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleEditor
}

// User is a CMS account scoped to one site
// Table: cms_users
type User struct {
	ID          uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	UserID      string     `gorm:"column:user_id;type:varchar(36);not null;uniqueIndex" json:"userId"`
	SiteID      string     `gorm:"column:site_id;type:varchar(64);not null;uniqueIndex:uk_users_site_email,priority:1" json:"siteId"`
	Email       string     `gorm:"column:email;type:varchar(255);not null;uniqueIndex:uk_users_site_email,priority:2" json:"email"`
	Password    string     `gorm:"column:password;type:varchar(255);not null" json:"-"`
	Name        string     `gorm:"column:name;type:varchar(100)" json:"name"`
	Role        UserRole   `gorm:"column:role;type:varchar(20);not null;default:editor" json:"role"`
	Active      bool       `gorm:"column:active;not null" json:"active"`
	LastLoginAt *time.Time `gorm:"column:last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "cms_users"
}

// LoginRequest is the login body
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	SiteID   string `json:"siteId" binding:"required"`
}

// SignupRequest is the signup body
type SignupRequest struct {
	Email    string   `json:"email" binding:"required,email,max=255"`
	Password string   `json:"password" binding:"required,min=8,max=72"`
	Name     string   `json:"name" binding:"max=100"`
	SiteID   string   `json:"siteId" binding:"required"`
	Role     UserRole `json:"role"`
}

// LoginResponse is returned after a successful login
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"` // seconds
	User      *User  `json:"user"`
}
