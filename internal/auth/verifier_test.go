package auth

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/hbenali/storefront/internal/hash"
	"github.com/hbenali/storefront/internal/models"
	"github.com/hbenali/storefront/internal/store"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func TestVerify(t *testing.T) {
	db := initTestDB(t)
	v := NewVerifier(store.New(db))
	ctx := context.Background()

	hashed, err := hash.HashPassword("alice")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		Name:         "Alice Johnson",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hashed,
	}).Error)

	user, err := v.Verify(ctx, "alice@example.com", "alice")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email)

	_, err = v.Verify(ctx, "alice@example.com", "wrongpassword")
	require.ErrorIs(t, err, ErrWrongPassword)

	_, err = v.Verify(ctx, "nobody@example.com", "alice")
	require.ErrorIs(t, err, ErrUnknownEmail)
}

func TestVerifyIsReadOnly(t *testing.T) {
	db := initTestDB(t)
	v := NewVerifier(store.New(db))

	hashed, err := hash.HashPassword("secret")
	require.NoError(t, err)
	seeded := models.User{
		Name:         "Bob",
		Username:     "bob",
		Email:        "bob@example.com",
		PasswordHash: hashed,
	}
	require.NoError(t, db.Create(&seeded).Error)

	_, err = v.Verify(context.Background(), "bob@example.com", "nope")
	require.ErrorIs(t, err, ErrWrongPassword)

	var after models.User
	require.NoError(t, db.First(&after, seeded.ID).Error)
	require.Equal(t, seeded.PasswordHash, after.PasswordHash)
}
