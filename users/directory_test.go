package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/rememberable/services/remember"
	"github.com/tech-arch1tect/rememberable/testutils"
	"golang.org/x/crypto/bcrypt"
)

func TestGormDirectory(t *testing.T) {
	ctx := context.Background()
	db := testutils.SetupTestDB(t, &User{})
	directory := NewGormDirectory(db)

	created, err := directory.Create(ctx, " Alice@Example.com ", testutils.TestPasswords.Valid, bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("assigns a uuid", func(t *testing.T) {
		_, err := uuid.Parse(created.ID)
		assert.NoError(t, err)
		assert.Equal(t, "alice@example.com", created.Email)
	})

	t.Run("find by id", func(t *testing.T) {
		found, err := directory.Find(ctx, created.ID)

		require.NoError(t, err)
		user, ok := found.(*User)
		require.True(t, ok)
		assert.Equal(t, created.Email, user.Email)
	})

	t.Run("find missing id", func(t *testing.T) {
		_, err := directory.Find(ctx, uuid.NewString())

		testutils.AssertErrorType(t, remember.ErrUserNotFound, err)
	})

	t.Run("find for authentication ignores case", func(t *testing.T) {
		found, err := directory.FindForAuthentication(ctx, "ALICE@example.COM")

		require.NoError(t, err)
		assert.Equal(t, created.ID, found.(*User).ID)
	})

	t.Run("find for authentication with blank login", func(t *testing.T) {
		_, err := directory.FindForAuthentication(ctx, "  ")

		testutils.AssertErrorType(t, remember.ErrUserNotFound, err)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := directory.Create(ctx, "alice@example.com", "", bcrypt.MinCost)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create user")
	})
}

func TestUser_VerifyPassword(t *testing.T) {
	hash, err := HashPassword(testutils.TestPasswords.Valid, bcrypt.MinCost)
	require.NoError(t, err)
	user := &User{PasswordHash: hash}

	assert.True(t, user.VerifyPassword(testutils.TestPasswords.Valid))
	assert.False(t, user.VerifyPassword(testutils.TestPasswords.Wrong))
	assert.False(t, (&User{}).VerifyPassword(""))
}

func TestHashPassword_InvalidCostFallsBack(t *testing.T) {
	hash, err := HashPassword("pw", 100)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestUser_RememberPolicy(t *testing.T) {
	var _ remember.Rememberable = (*User)(nil)
	var _ remember.RememberPeriodProvider = (*User)(nil)
	var _ remember.ExtendOnUseProvider = (*User)(nil)

	user := &User{ID: "u", RememberForSeconds: 3600, ExtendRemember: true}

	assert.Equal(t, "u", user.RememberID())
	assert.Equal(t, time.Hour, user.RememberFor())
	assert.True(t, user.ExtendRememberPeriod())
	assert.Zero(t, (&User{}).RememberFor())
}

func TestIssueForGormUser(t *testing.T) {
	ctx := context.Background()
	db := testutils.SetupTestDB(t, &User{}, &remember.Record{})
	directory := NewGormDirectory(db)
	cfg := testutils.GetTestConfig()
	service := remember.NewService(&cfg.Remember, remember.NewGormStore(db), directory, nil)

	user, err := directory.Create(ctx, "bob@example.com", "", bcrypt.MinCost)
	require.NoError(t, err)
	user.RememberForSeconds = 60
	user.ExtendRemember = true
	require.NoError(t, db.Save(user).Error)

	record, err := service.IssueFor(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, record.TTL)
	assert.True(t, record.ExtendOnUse)

	found, err := service.Validate(ctx, user.ID, record.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.(*User).ID)
}
