package utils_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/nushka/internal/models"
	"github.com/example/nushka/internal/utils"
)

func TestTokenRoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := utils.GenerateToken("secret", userID, models.RoleAdmin, time.Hour)
	require.NoError(t, err)

	parsedID, role, err := utils.ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsedID)
	assert.Equal(t, models.RoleAdmin, role)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := utils.GenerateToken("secret", uuid.New(), models.RoleCustomer, time.Hour)
	require.NoError(t, err)

	_, _, err = utils.ParseToken("other-secret", token)
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	token, err := utils.GenerateToken("secret", uuid.New(), models.RoleCustomer, -time.Minute)
	require.NoError(t, err)

	_, _, err = utils.ParseToken("secret", token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := utils.HashPassword("supersecret")
	require.NoError(t, err)
	assert.NotEqual(t, "supersecret", hash)

	assert.True(t, utils.CheckPassword(hash, "supersecret"))
	assert.False(t, utils.CheckPassword(hash, "wrongpassword"))
}
