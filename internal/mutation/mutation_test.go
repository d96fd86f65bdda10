package mutation

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/BradenHooton/vigil/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() models.User {
	return models.User{
		ID:        7,
		Username:  "operator",
		Email:     "a@x.com",
		Role:      models.RoleUser,
		IsActive:  true,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestDiff_NoChanges(t *testing.T) {
	user := testUser()

	update := Diff(user, FormStateFrom(user))

	assert.True(t, update.IsEmpty())
	assert.Nil(t, update.Email)
	assert.Nil(t, update.Role)
	assert.Nil(t, update.IsActive)
	assert.Nil(t, update.Password)
}

func TestDiff_EmailAndStatus(t *testing.T) {
	user := testUser()
	edited := FormState{Email: "b@x.com", Role: models.RoleUser, IsActive: false, Password: ""}

	update := Diff(user, edited)

	body, err := json.Marshal(update)
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"b@x.com","is_active":false}`, string(body))
}

func TestDiff_PasswordIncludedWhenNonEmpty(t *testing.T) {
	user := testUser()
	edited := FormStateFrom(user)
	edited.Password = "n3w-secret"

	update := Diff(user, edited)

	require.NotNil(t, update.Password)
	assert.Equal(t, "n3w-secret", *update.Password)
	assert.Nil(t, update.Email)
	assert.False(t, update.IsEmpty())
}

func TestDiff_RoleChange(t *testing.T) {
	user := testUser()
	edited := FormStateFrom(user)
	edited.Role = models.RoleAdmin

	update := Diff(user, edited)

	require.NotNil(t, update.Role)
	assert.Equal(t, models.RoleAdmin, *update.Role)
}

func TestDiff_DoesNotAliasForm(t *testing.T) {
	user := testUser()
	edited := FormStateFrom(user)
	edited.Email = "c@x.com"

	update := Diff(user, edited)
	edited.Email = "d@x.com"

	assert.Equal(t, "c@x.com", *update.Email)
}

func TestFormState_Fields(t *testing.T) {
	user := testUser()

	unchanged := FormStateFrom(user).Fields(user)
	assert.Empty(t, unchanged.Email)

	edited := FormStateFrom(user)
	edited.Email = "new@x.com"
	edited.Password = "abcdef"
	fields := edited.Fields(user)
	assert.Equal(t, "new@x.com", fields.Email)
	assert.Equal(t, "abcdef", fields.Password)
}
