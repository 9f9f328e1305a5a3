package auth_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/tasknest/auth"
)

func TestVerifyIdentitySuccess(t *testing.T) {
	hash, err := auth.HashPassword("Valid1Pass!")
	require.NoError(t, err)

	user := &auth.User{
		ID:           uuid.New(),
		Username:     "peperone",
		Email:        "pepe@example.com",
		Role:         auth.RoleUser,
		PasswordHash: hash,
	}

	store := new(MockUserStore)
	store.On("GetByIdentifier", mock.Anything, "pepe@example.com").Return(user, nil)

	provider := auth.NewUserProvider(store)

	identity, err := provider.VerifyIdentity(context.Background(), "pepe@example.com", "Valid1Pass!")
	require.NoError(t, err)

	assert.Equal(t, user.ID.String(), identity.ID())
	assert.Equal(t, "peperone", identity.Username())
	assert.Equal(t, "pepe@example.com", identity.Email())
	assert.Equal(t, auth.RoleUser, identity.Role())

	store.AssertExpectations(t)
}

// Unknown identifier and wrong password must be indistinguishable from the
// caller's point of view.
func TestVerifyIdentityEnumerationResistance(t *testing.T) {
	hash, err := auth.HashPassword("Valid1Pass!")
	require.NoError(t, err)

	user := &auth.User{
		ID:           uuid.New(),
		Username:     "peperone",
		Email:        "pepe@example.com",
		Role:         auth.RoleUser,
		PasswordHash: hash,
	}

	store := new(MockUserStore)
	store.On("GetByIdentifier", mock.Anything, "pepe@example.com").Return(user, nil)
	store.On("GetByIdentifier", mock.Anything, "ghost@example.com").
		Return(nil, repository.NewRecordNotFound())

	provider := auth.NewUserProvider(store)

	_, unknownErr := provider.VerifyIdentity(context.Background(), "ghost@example.com", "Valid1Pass!")
	_, wrongPassErr := provider.VerifyIdentity(context.Background(), "pepe@example.com", "Wrong1Pass!")

	require.Error(t, unknownErr)
	require.Error(t, wrongPassErr)
	assert.Equal(t, unknownErr, wrongPassErr)
	assert.Equal(t, auth.ErrMismatchedHashAndPassword, unknownErr)

	store.AssertExpectations(t)
}

func TestVerifyIdentityNilUser(t *testing.T) {
	store := new(MockUserStore)
	store.On("GetByIdentifier", mock.Anything, "broken").Return(nil, nil)

	provider := auth.NewUserProvider(store)

	_, err := provider.VerifyIdentity(context.Background(), "broken", "whatever")
	assert.Equal(t, auth.ErrMismatchedHashAndPassword, err)

	store.AssertExpectations(t)
}
