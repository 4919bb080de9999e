// Package auth verifies login credentials against stored password hashes.
package auth

import (
	"context"
	"errors"

	"github.com/hbenali/storefront/internal/hash"
	"github.com/hbenali/storefront/internal/models"
	"gorm.io/gorm"
)

var (
	ErrUnknownEmail  = errors.New("incorrect email")
	ErrWrongPassword = errors.New("incorrect password")
)

// UserStorage is the slice of the persistence gateway the verifier needs.
type UserStorage interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type Verifier struct {
	Users UserStorage
}

func NewVerifier(users UserStorage) *Verifier {
	return &Verifier{Users: users}
}

// Verify looks the user up by exact email match and compares the password
// against the stored bcrypt hash. It never writes anything.
func (v *Verifier) Verify(ctx context.Context, email, password string) (*models.User, error) {
	user, err := v.Users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownEmail
		}
		return nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrWrongPassword
	}

	return user, nil
}
