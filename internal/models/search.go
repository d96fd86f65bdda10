package models

import (
	"net/url"
	"strconv"
)

// Sort columns accepted by the listing endpoint.
const (
	SortByID        = "id"
	SortByUsername  = "username"
	SortByEmail     = "email"
	SortByRole      = "role"
	SortByCreatedAt = "created_at"
	SortByLastLogin = "last_login"
	SortByUpdatedAt = "updated_at"
)

const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// DateLayout is the date-only format used by all range bounds.
const DateLayout = "2006-01-02"

// UserSearchParams describes a user listing query. Every field is optional;
// the zero value requests the unfiltered, default-sorted listing.
type UserSearchParams struct {
	SearchTerm       string `json:"search_term,omitempty"`
	Role             string `json:"role,omitempty"`
	Status           string `json:"status,omitempty"`
	EmailVerified    *bool  `json:"email_verified,omitempty"`
	TwoFactorEnabled *bool  `json:"two_factor_enabled,omitempty"`
	CreatedAfter     string `json:"created_after,omitempty"`
	CreatedBefore    string `json:"created_before,omitempty"`
	LastLoginAfter   string `json:"last_login_after,omitempty"`
	LastLoginBefore  string `json:"last_login_before,omitempty"`
	SortBy           string `json:"sort_by,omitempty"`
	SortOrder        string `json:"sort_order,omitempty"`
	Limit            *int   `json:"limit,omitempty"`
	Offset           *int   `json:"offset,omitempty"`
}

// Values encodes the set fields as query parameters. Unset fields are omitted.
func (p UserSearchParams) Values() url.Values {
	v := url.Values{}
	setString := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}

	setString("search_term", p.SearchTerm)
	setString("role", p.Role)
	setString("status", p.Status)
	if p.EmailVerified != nil {
		v.Set("email_verified", strconv.FormatBool(*p.EmailVerified))
	}
	if p.TwoFactorEnabled != nil {
		v.Set("two_factor_enabled", strconv.FormatBool(*p.TwoFactorEnabled))
	}
	setString("created_after", p.CreatedAfter)
	setString("created_before", p.CreatedBefore)
	setString("last_login_after", p.LastLoginAfter)
	setString("last_login_before", p.LastLoginBefore)
	setString("sort_by", p.SortBy)
	setString("sort_order", p.SortOrder)
	if p.Limit != nil {
		v.Set("limit", strconv.Itoa(*p.Limit))
	}
	if p.Offset != nil {
		v.Set("offset", strconv.Itoa(*p.Offset))
	}

	return v
}
