package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

const (
	ROLE_USER  = "user"
	ROLE_ADMIN = "admin"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// ReservedUsernames collide with top-level routes and can never be registered.
var ReservedUsernames = map[string]bool{
	"new":    true,
	"follow": true,
	"group":  true,
	"auth":   true,
	"api":    true,
	"media":  true,
	"docs":   true,
	"static": true,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		return usernamePattern.MatchString(name) && !ReservedUsernames[strings.ToLower(name)]
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validator exposes the shared validator so forms use the same custom tags.
func Validator() *validator.Validate {
	return validate
}

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;type:varchar(150);not null" json:"username" validate:"required,max=150,username"`
	Email     string    `gorm:"type:varchar(254)" json:"email" validate:"omitempty,email,max=254"`
	Password  string    `gorm:"type:varchar(128)" json:"-"`
	FirstName string    `gorm:"type:varchar(150)" json:"first_name" validate:"max=150"`
	LastName  string    `gorm:"type:varchar(150)" json:"last_name" validate:"max=150"`
	Role      string    `gorm:"type:varchar(50);default:'user'" json:"-" validate:"omitempty,oneof=user admin"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`

	Posts []Post `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
}

func (u *User) Validate() error {
	return validate.Struct(u)
}

// CreateUser builds a validated user with a hashed password. An empty password
// leaves the account without a usable password (OAuth and API-created users).
func CreateUser(username, email, password string) (*User, error) {
	u := &User{
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
		Role:     ROLE_USER,
	}

	if password != "" {
		if err := u.SetPassword(password); err != nil {
			return nil, err
		}
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}

	return u, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	if hash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// CheckPassword verifies if the provided password matches the user's stored password
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.Password)
}

// SetPassword hashes and sets a new password for the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashedPassword
	return nil
}

// HasUsablePassword is false for accounts that can only sign in via OAuth or token.
func (u *User) HasUsablePassword() bool {
	return u.Password != ""
}

func (u *User) IsAdmin() bool {
	return u.Role == ROLE_ADMIN
}

// FullName joins first and last name, falling back to the username.
func (u *User) FullName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full == "" {
		return u.Username
	}
	return full
}
