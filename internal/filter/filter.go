// Package filter composes user listing queries from partial operator input.
package filter

import (
	"sort"
	"strconv"

	"github.com/BradenHooton/vigil/internal/models"
)

// Raw input keys understood by Compose.
const (
	KeySearchTerm       = "search_term"
	KeyRole             = "role"
	KeyStatus           = "status"
	KeyEmailVerified    = "email_verified"
	KeyTwoFactorEnabled = "two_factor_enabled"
	KeyCreatedAfter     = "created_after"
	KeyCreatedBefore    = "created_before"
	KeyLastLoginAfter   = "last_login_after"
	KeyLastLoginBefore  = "last_login_before"
	KeySortBy           = "sort_by"
	KeySortOrder        = "sort_order"
	KeyLimit            = "limit"
	KeyOffset           = "offset"
)

// Compose builds search params from raw form input. Keys whose value is empty
// or absent are left unset, so the result only reflects filters that were
// actually chosen. Booleans and integers that fail to parse are also left unset.
// Date bounds are passed through as given; an inverted range is the server's to answer.
func Compose(raw map[string]string) models.UserSearchParams {
	var p models.UserSearchParams

	for key, value := range raw {
		if value == "" {
			continue
		}

		switch key {
		case KeySearchTerm:
			p.SearchTerm = value
		case KeyRole:
			p.Role = value
		case KeyStatus:
			p.Status = value
		case KeyEmailVerified:
			p.EmailVerified = parseBool(value)
		case KeyTwoFactorEnabled:
			p.TwoFactorEnabled = parseBool(value)
		case KeyCreatedAfter:
			p.CreatedAfter = value
		case KeyCreatedBefore:
			p.CreatedBefore = value
		case KeyLastLoginAfter:
			p.LastLoginAfter = value
		case KeyLastLoginBefore:
			p.LastLoginBefore = value
		case KeySortBy:
			p.SortBy = value
		case KeySortOrder:
			p.SortOrder = value
		case KeyLimit:
			p.Limit = parseInt(value)
		case KeyOffset:
			p.Offset = parseInt(value)
		}
	}

	return p
}

// Reset returns params equivalent to "no filters".
func Reset() models.UserSearchParams {
	return models.UserSearchParams{}
}

// Keys returns the sorted names of the fields set in p.
func Keys(p models.UserSearchParams) []string {
	keys := make([]string, 0)
	for key := range p.Values() {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// CountActive counts the substantive filters in p: search text, role and the
// four date bounds. Sort fields always carry a value and are not counted.
func CountActive(p models.UserSearchParams) int {
	count := 0
	for _, v := range []string{
		p.SearchTerm,
		p.Role,
		p.CreatedAfter,
		p.CreatedBefore,
		p.LastLoginAfter,
		p.LastLoginBefore,
	} {
		if v != "" {
			count++
		}
	}
	return count
}

func parseBool(value string) *bool {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil
	}
	return &b
}

func parseInt(value string) *int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &n
}
