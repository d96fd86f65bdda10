package apitest

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/BradenHooton/vigil/internal/models"
)

type matcher func(u *models.User) bool

// newMatcher builds the listing filter. Date bounds are inclusive whole days;
// an inverted range simply matches nothing.
func newMatcher(q url.Values) (matcher, error) {
	checks := make([]matcher, 0)

	if term := strings.ToLower(q.Get("search_term")); term != "" {
		checks = append(checks, func(u *models.User) bool {
			return strings.Contains(strings.ToLower(u.Username), term) ||
				strings.Contains(strings.ToLower(u.Email), term)
		})
	}
	if role := q.Get("role"); role != "" {
		checks = append(checks, func(u *models.User) bool { return string(u.Role) == role })
	}
	switch status := q.Get("status"); status {
	case "":
	case "active":
		checks = append(checks, func(u *models.User) bool { return u.IsActive })
	case "inactive":
		checks = append(checks, func(u *models.User) bool { return !u.IsActive })
	default:
		return nil, fmt.Errorf("invalid status %q", status)
	}

	for _, flag := range []struct {
		key string
		get func(u *models.User) bool
	}{
		{"email_verified", func(u *models.User) bool { return u.EmailVerified }},
		{"two_factor_enabled", func(u *models.User) bool { return u.TwoFactorEnabled }},
	} {
		v := q.Get(flag.key)
		if v == "" {
			continue
		}
		want, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s parameter", flag.key)
		}
		get := flag.get
		checks = append(checks, func(u *models.User) bool { return get(u) == want })
	}

	for _, bound := range []struct {
		key   string
		after bool
		stamp func(u *models.User) *time.Time
	}{
		{"created_after", true, func(u *models.User) *time.Time { return &u.CreatedAt }},
		{"created_before", false, func(u *models.User) *time.Time { return &u.CreatedAt }},
		{"last_login_after", true, func(u *models.User) *time.Time { return u.LastLogin }},
		{"last_login_before", false, func(u *models.User) *time.Time { return u.LastLogin }},
	} {
		v := q.Get(bound.key)
		if v == "" {
			continue
		}
		day, err := time.Parse(models.DateLayout, v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s date, expected YYYY-MM-DD", bound.key)
		}
		after, stamp := bound.after, bound.stamp
		checks = append(checks, func(u *models.User) bool {
			ts := stamp(u)
			if ts == nil {
				return false
			}
			if after {
				return !ts.UTC().Before(day)
			}
			return ts.UTC().Before(day.AddDate(0, 0, 1))
		})
	}

	return func(u *models.User) bool {
		for _, check := range checks {
			if !check(u) {
				return false
			}
		}
		return true
	}, nil
}

// newOrdering returns the comparison for sort_by/sort_order. The default is
// ascending by id.
func newOrdering(sortBy, sortOrder string) (func(a, b models.User) bool, error) {
	var less func(a, b models.User) bool

	switch sortBy {
	case "", models.SortByID:
		less = func(a, b models.User) bool { return a.ID < b.ID }
	case models.SortByUsername:
		less = func(a, b models.User) bool { return strings.ToLower(a.Username) < strings.ToLower(b.Username) }
	case models.SortByEmail:
		less = func(a, b models.User) bool { return strings.ToLower(a.Email) < strings.ToLower(b.Email) }
	case models.SortByRole:
		less = func(a, b models.User) bool { return a.Role < b.Role }
	case models.SortByCreatedAt:
		less = func(a, b models.User) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case models.SortByLastLogin:
		less = func(a, b models.User) bool { return timeBefore(a.LastLogin, b.LastLogin) }
	case models.SortByUpdatedAt:
		less = func(a, b models.User) bool { return timeBefore(a.UpdatedAt, b.UpdatedAt) }
	default:
		return nil, fmt.Errorf("invalid sort_by %q", sortBy)
	}

	switch sortOrder {
	case "", models.SortAsc:
		return less, nil
	case models.SortDesc:
		return func(a, b models.User) bool { return less(b, a) }, nil
	default:
		return nil, fmt.Errorf("invalid sort_order %q", sortOrder)
	}
}

// timeBefore orders nil timestamps first
func timeBefore(a, b *time.Time) bool {
	switch {
	case a == nil:
		return b != nil
	case b == nil:
		return false
	default:
		return a.Before(*b)
	}
}
