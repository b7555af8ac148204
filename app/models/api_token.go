package models

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// APIToken is the bearer credential for the JSON API. Only the SHA-256 of the
// raw key is stored; the raw key is returned once on issuance.
type APIToken struct {
	ID         uint       `gorm:"primaryKey" json:"-"`
	UserID     uint       `gorm:"uniqueIndex;not null" json:"-"`
	User       User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	KeyHash    string     `gorm:"type:char(64);index;not null" json:"-"`
	Prefix     string     `gorm:"type:varchar(20)" json:"prefix"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}

var tokenEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

const tokenPrefix = "ytb_"

// Issue generates fresh key material on the struct and returns the raw secret.
// Callers must persist the struct afterwards.
func (t *APIToken) Issue() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	raw := tokenPrefix + strings.ToLower(tokenEncoding.EncodeToString(b))
	if len(raw) < 16 {
		return "", fmt.Errorf("token generation failed: key too short")
	}
	t.KeyHash = HashToken(raw)
	t.Prefix = raw[:12]
	t.CreatedAt = time.Now()
	t.LastUsedAt = nil
	return raw, nil
}

// Touch records a successful authentication.
func (t *APIToken) Touch() {
	now := time.Now()
	t.LastUsedAt = &now
}

// HashToken returns the hex SHA-256 of the trimmed raw token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(raw)))
	return hex.EncodeToString(sum[:])
}
