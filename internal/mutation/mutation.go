// Package mutation computes minimal update payloads for edited accounts.
package mutation

import (
	"github.com/BradenHooton/vigil/internal/models"
	"github.com/BradenHooton/vigil/internal/validation"
)

// FormState is the edited state of an account form.
// Password is write-only; an empty value means "leave unchanged".
type FormState struct {
	Email    string
	Role     models.Role
	IsActive bool
	Password string
}

// FormStateFrom seeds an edit form from a fetched user.
func FormStateFrom(u models.User) FormState {
	return FormState{
		Email:    u.Email,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
}

// Fields returns the form fields that edit-mode validation should sample.
// Only the email that differs from original is checked.
func (f FormState) Fields(original models.User) validation.FormFields {
	fields := validation.FormFields{Password: f.Password}
	if f.Email != original.Email {
		fields.Email = f.Email
	}
	return fields
}

// Diff returns the fields of edited that differ from original by value.
// An empty result means there is nothing to submit.
func Diff(original models.User, edited FormState) models.UserUpdate {
	var update models.UserUpdate

	if edited.Email != original.Email {
		email := edited.Email
		update.Email = &email
	}
	if edited.Role != original.Role {
		role := edited.Role
		update.Role = &role
	}
	if edited.IsActive != original.IsActive {
		active := edited.IsActive
		update.IsActive = &active
	}
	if edited.Password != "" {
		password := edited.Password
		update.Password = &password
	}

	return update
}
