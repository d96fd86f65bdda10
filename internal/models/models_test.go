package models

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServerError_MapsStatusToSentinel(t *testing.T) {
	tests := []struct {
		status int
		target error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusUnprocessableEntity, ErrBadRequest},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := fmt.Errorf("delete user: %w", &ServerError{StatusCode: tt.status})
			assert.ErrorIs(t, err, tt.target)
		})
	}

	assert.NotErrorIs(t, &ServerError{StatusCode: http.StatusInternalServerError}, ErrNotFound)
}

func TestReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server detail", &ServerError{StatusCode: 409, Detail: "Email already registered"}, "Email already registered"},
		{"server without detail", &ServerError{StatusCode: 500}, GenericNetworkMessage},
		{"validation", &ValidationError{Field: "email", Reason: "must be a valid email address"}, "email: must be a valid email address"},
		{"network", &NetworkError{Op: "list users", Err: context.DeadlineExceeded}, GenericNetworkMessage},
		{"unknown", errors.New("boom"), GenericNetworkMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reason(tt.err))
		})
	}
}

func TestNetworkError_KeepsCause(t *testing.T) {
	err := &NetworkError{Op: "get user", Err: context.DeadlineExceeded}

	assert.ErrorIs(t, err, ErrNetwork)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "get user: "+GenericNetworkMessage, err.Error())
}

func TestUserSearchParams_Values(t *testing.T) {
	yes := true
	limit, offset := 25, 0

	assert.Empty(t, UserSearchParams{}.Values())

	v := UserSearchParams{
		SearchTerm:    "al",
		EmailVerified: &yes,
		CreatedAfter:  "2024-01-01",
		SortBy:        SortByCreatedAt,
		SortOrder:     SortDesc,
		Limit:         &limit,
		Offset:        &offset,
	}.Values()

	assert.Equal(t, "created_after=2024-01-01&email_verified=true&limit=25&offset=0&search_term=al&sort_by=created_at&sort_order=desc", v.Encode())
}

func TestUserCreate_WithDefaults(t *testing.T) {
	assert.Equal(t, RoleUser, UserCreate{}.WithDefaults().Role)
	assert.Equal(t, RoleAdmin, UserCreate{Role: RoleAdmin}.WithDefaults().Role)
}

func TestUserUpdate_IsEmpty(t *testing.T) {
	active := false
	assert.True(t, UserUpdate{}.IsEmpty())
	assert.False(t, UserUpdate{IsActive: &active}.IsEmpty())
}

func TestBulkSummary(t *testing.T) {
	assert.True(t, BulkSummary{TotalAttempted: 3, Successful: 2, Failed: 1}.Consistent())
	assert.True(t, BulkSummary{TotalAttempted: 3, Successful: 2, Failed: 1}.Partial())
	assert.False(t, BulkSummary{TotalAttempted: 3, Successful: 3}.Partial())
	assert.False(t, BulkSummary{TotalAttempted: 3, Successful: 1}.Consistent())
}
