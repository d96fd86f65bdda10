package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/BradenHooton/vigil/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		want     bool
	}{
		{"minimum length", "abc", true},
		{"maximum length", strings.Repeat("a", 50), true},
		{"underscore and dash", "camera_op-01", true},
		{"empty", "", false},
		{"too short", "ab", false},
		{"too long", strings.Repeat("a", 51), false},
		{"space", "john doe", false},
		{"dot", "john.doe", false},
		{"at sign", "john@doe", false},
		{"non-ascii letter", "jöhn", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidUsername(tt.username))
		})
	}
}

func TestIsValidUsername_RejectsEveryDisallowedCharacter(t *testing.T) {
	for _, r := range " !\"#$%&'()*+,./:;<=>?@[\\]^`{|}~" {
		s := "abc" + string(r)
		assert.False(t, IsValidUsername(s), "username %q", s)
	}
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"a@x.com", true},
		{"operator.one@site.example.org", true},
		{"", false},
		{"plainaddress", false},
		{"missing@tld", false},
		{"@x.com", false},
		{"a@b.c", true}, // shape-only check
		{"has space@x.com", false},
		{"a@@x.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidEmail(tt.email))
		})
	}
}

func TestCheckForm_CreateMode(t *testing.T) {
	tests := []struct {
		name      string
		fields    FormFields
		wantField string
	}{
		{
			name:   "valid",
			fields: FormFields{Username: "jdoe", Email: "jdoe@example.com", Password: "secret"},
		},
		{
			name:      "invalid username reported first",
			fields:    FormFields{Username: "j", Email: "bad", Password: "x"},
			wantField: "username",
		},
		{
			name:      "invalid email",
			fields:    FormFields{Username: "jdoe", Email: "bad", Password: "secret"},
			wantField: "email",
		},
		{
			name:      "short password",
			fields:    FormFields{Username: "jdoe", Email: "jdoe@example.com", Password: "12345"},
			wantField: "password",
		},
		{
			name:      "empty password",
			fields:    FormFields{Username: "jdoe", Email: "jdoe@example.com"},
			wantField: "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckForm(ModeCreate, tt.fields)
			if tt.wantField == "" {
				assert.NoError(t, err)
				assert.True(t, IsFormValid(ModeCreate, tt.fields))
				return
			}

			var ve *models.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.wantField, ve.Field)
			assert.ErrorIs(t, err, models.ErrValidation)
			assert.False(t, IsFormValid(ModeCreate, tt.fields))
		})
	}
}

func TestCheckForm_EditMode(t *testing.T) {
	tests := []struct {
		name   string
		fields FormFields
		valid  bool
	}{
		{"nothing changed", FormFields{}, true},
		{"empty password leaves it unchanged", FormFields{Email: "new@example.com"}, true},
		{"username ignored in edit mode", FormFields{Username: "x"}, true},
		{"invalid email", FormFields{Email: "nope"}, false},
		{"short password", FormFields{Password: "abc"}, false},
		{"valid password", FormFields{Password: "abcdef"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsFormValid(ModeEdit, tt.fields))
		})
	}
}

func TestValidateCreate(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		err := ValidateCreate(models.UserCreate{Username: "jdoe", Email: "jdoe@example.com", Password: "secret1"})
		assert.NoError(t, err)
	})

	t.Run("reports json field name", func(t *testing.T) {
		err := ValidateCreate(models.UserCreate{Username: "jdoe", Email: "broken", Password: "secret1"})

		var ve *models.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "email", ve.Field)
		assert.Equal(t, "must be a valid email address", ve.Reason)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		err := ValidateCreate(models.UserCreate{Username: "jdoe", Email: "jdoe@example.com", Password: "secret1", Role: "root"})

		var ve *models.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "role", ve.Field)
		assert.Contains(t, ve.Reason, "must be one of")
	})

	t.Run("short password", func(t *testing.T) {
		err := ValidateCreate(models.UserCreate{Username: "jdoe", Email: "jdoe@example.com", Password: "abc"})

		var ve *models.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "password", ve.Field)
		assert.Equal(t, "must have a minimum of 6 characters", ve.Reason)
	})
}
