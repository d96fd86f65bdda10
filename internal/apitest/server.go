// Package apitest provides an in-memory implementation of the remote user
// directory API. It backs repository and service tests and the mock-server
// command. It is not a storage engine: state lives only as long as the process.
package apitest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	vigilmw "github.com/BradenHooton/vigil/internal/middleware"
	"github.com/BradenHooton/vigil/internal/models"
	"github.com/BradenHooton/vigil/internal/validation"
	pkghttp "github.com/BradenHooton/vigil/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Config controls the fake server's behaviour
type Config struct {
	// Token, when set, is the only bearer credential accepted
	Token string
	// RequestsPerMinute enables per-IP rate limiting when positive
	RequestsPerMinute int
	Logger            *slog.Logger
}

// Server is an in-memory user directory
type Server struct {
	cfg    Config
	mu     sync.Mutex
	users  map[int64]*models.User
	nextID int64
	now    func() time.Time

	requests map[string]int
}

// NewServer creates an empty directory
func NewServer(cfg Config) *Server {
	return &Server{
		cfg:      cfg,
		users:    make(map[int64]*models.User),
		nextID:   1,
		now:      time.Now,
		requests: make(map[string]int),
	}
}

// SetClock overrides the time source used for created_at and statistics
func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Seed inserts users as-is. Zero IDs are assigned.
func (s *Server) Seed(users ...models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		u := u
		if u.ID == 0 {
			u.ID = s.nextID
		}
		if u.ID >= s.nextID {
			s.nextID = u.ID + 1
		}
		if u.Role == "" {
			u.Role = models.RoleUser
		}
		s.users[u.ID] = &u
	}
}

// User returns a copy of a stored user
func (s *Server) User(id int64) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, false
	}
	return *u, true
}

// Count returns the number of stored users
func (s *Server) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// Requests returns how many requests matched "METHOD /route/pattern"
func (s *Server) Requests(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[key]
}

// Handler builds the chi router
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	if s.cfg.Logger != nil {
		router.Use(vigilmw.RequestLogger(s.cfg.Logger, "mock_request"))
	}
	if s.cfg.RequestsPerMinute > 0 {
		router.Use(httprate.Limit(
			s.cfg.RequestsPerMinute,
			1*time.Minute,
			httprate.WithKeyByIP(),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				pkghttp.WriteTooManyRequests(w, "Rate limit exceeded")
			}),
		))
	}
	router.Use(s.requireToken)
	router.Use(s.countRequests)

	router.Route("/users", func(r chi.Router) {
		r.Get("/", s.listUsers)
		r.Post("/", s.createUser)
		r.Get("/stats", s.statistics)
		r.Post("/bulk", s.bulkCreate)
		r.Post("/bulk-delete", s.bulkDelete)
		r.Get("/{id}", s.getUser)
		r.Put("/{id}", s.updateUser)
		r.Delete("/{id}", s.deleteUser)
	})

	return router
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Token != "" && r.Header.Get("Authorization") != "Bearer "+s.cfg.Token {
			pkghttp.WriteUnauthorized(w, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		pattern := chi.RouteContext(r.Context()).RoutePattern()
		s.mu.Lock()
		s.requests[r.Method+" "+strings.TrimSuffix(pattern, "/")]++
		s.mu.Unlock()
	})
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		pkghttp.WriteBadRequest(w, "Invalid user id")
		return
	}

	user, found := s.User(id)
	if !found {
		pkghttp.WriteNotFound(w, "User not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, user)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req models.UserCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	s.mu.Lock()
	user, status, detail := s.insertLocked(req)
	s.mu.Unlock()

	if user == nil {
		pkghttp.WriteErrorWithDetail(w, status, "create_failed", http.StatusText(status), detail)
		return
	}
	pkghttp.WriteJSON(w, http.StatusCreated, user)
}

// insertLocked applies the server's own validation and uniqueness rules.
// Callers must hold s.mu.
func (s *Server) insertLocked(req models.UserCreate) (*models.User, int, string) {
	req = req.WithDefaults()
	if err := validation.ValidateCreate(req); err != nil {
		return nil, http.StatusUnprocessableEntity, err.Error()
	}

	for _, u := range s.users {
		if strings.EqualFold(u.Username, req.Username) {
			return nil, http.StatusConflict, "Username already registered"
		}
		if strings.EqualFold(u.Email, req.Email) {
			return nil, http.StatusConflict, "Email already registered"
		}
	}

	user := &models.User{
		ID:        s.nextID,
		Username:  req.Username,
		Email:     req.Email,
		Role:      req.Role,
		IsActive:  true,
		CreatedAt: s.now().UTC(),
	}
	s.nextID++
	s.users[user.ID] = user

	created := *user
	return &created, http.StatusCreated, ""
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		pkghttp.WriteBadRequest(w, "Invalid user id")
		return
	}

	var req models.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.IsEmpty() {
		pkghttp.WriteBadRequest(w, "No fields to update")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, found := s.users[id]
	if !found {
		pkghttp.WriteNotFound(w, "User not found")
		return
	}

	if req.Email != nil {
		if !validation.IsValidEmail(*req.Email) {
			pkghttp.WriteErrorWithDetail(w, http.StatusUnprocessableEntity, "invalid_email", "Unprocessable entity", "Invalid email address")
			return
		}
		for _, other := range s.users {
			if other.ID != id && strings.EqualFold(other.Email, *req.Email) {
				pkghttp.WriteConflict(w, "Email already registered")
				return
			}
		}
		user.Email = *req.Email
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			pkghttp.WriteErrorWithDetail(w, http.StatusUnprocessableEntity, "invalid_role", "Unprocessable entity", "Invalid role")
			return
		}
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	now := s.now().UTC()
	user.UpdatedAt = &now

	pkghttp.WriteJSON(w, http.StatusOK, *user)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		pkghttp.WriteBadRequest(w, "Invalid user id")
		return
	}

	s.mu.Lock()
	_, found := s.users[id]
	delete(s.users, id)
	s.mu.Unlock()

	if !found {
		pkghttp.WriteNotFound(w, "User not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

func (s *Server) bulkCreate(w http.ResponseWriter, r *http.Request) {
	var req models.BulkCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	result := models.BulkCreateResult{
		Created: make([]models.User, 0, len(req.Users)),
		Failed:  make([]models.BulkFailure[models.UserCreate], 0),
	}

	s.mu.Lock()
	for i, item := range req.Users {
		user, _, detail := s.insertLocked(item)
		if user == nil {
			item.Password = ""
			result.Failed = append(result.Failed, models.BulkFailure[models.UserCreate]{Index: i, Item: item, Error: detail, Tag: models.BulkTagServer})
			continue
		}
		result.Created = append(result.Created, *user)
	}
	s.mu.Unlock()

	result.Summary = models.BulkSummary{
		TotalAttempted: len(req.Users),
		Successful:     len(result.Created),
		Failed:         len(result.Failed),
	}
	pkghttp.WriteJSON(w, http.StatusOK, result)
}

func (s *Server) bulkDelete(w http.ResponseWriter, r *http.Request) {
	var req models.BulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	result := models.BulkDeleteResult{
		Deleted: make([]int64, 0, len(req.UserIDs)),
		Failed:  make([]models.BulkFailure[int64], 0),
	}

	s.mu.Lock()
	for i, id := range req.UserIDs {
		if _, found := s.users[id]; !found {
			result.Failed = append(result.Failed, models.BulkFailure[int64]{Index: i, Item: id, Error: "User not found", Tag: models.BulkTagServer})
			continue
		}
		delete(s.users, id)
		result.Deleted = append(result.Deleted, id)
	}
	s.mu.Unlock()

	result.Summary = models.BulkSummary{
		TotalAttempted: len(req.UserIDs),
		Successful:     len(result.Deleted),
		Failed:         len(result.Failed),
	}
	pkghttp.WriteJSON(w, http.StatusOK, result)
}

func (s *Server) statistics(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	today := now.Truncate(24 * time.Hour)
	week := today.AddDate(0, 0, -7)
	month := today.AddDate(0, -1, 0)

	stats := models.UserStatistics{RoleBreakdown: map[string]int64{}}
	for _, u := range s.users {
		stats.TotalUsers++
		stats.RoleBreakdown[string(u.Role)]++
		if u.IsActive {
			stats.ActiveUsers++
		} else {
			stats.InactiveUsers++
		}
		if u.Role == models.RoleAdmin {
			stats.AdminUsers++
		} else {
			stats.RegularUsers++
		}
		if u.EmailVerified {
			stats.VerifiedUsers++
		}
		if u.TwoFactorEnabled {
			stats.TwoFactorUsers++
		}
		if !u.CreatedAt.Before(today) {
			stats.NewUsersToday++
		}
		if !u.CreatedAt.Before(week) {
			stats.NewUsersThisWeek++
		}
		if !u.CreatedAt.Before(month) {
			stats.NewUsersThisMonth++
		}
		if u.LastLogin != nil && !u.LastLogin.Before(week) {
			stats.RecentLogins++
		}
	}

	pkghttp.WriteJSON(w, http.StatusOK, stats)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := defaultLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxLimit {
			pkghttp.WriteBadRequest(w, "Invalid limit parameter")
			return
		}
		limit = n
	}
	offset := 0
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			pkghttp.WriteBadRequest(w, "Invalid offset parameter")
			return
		}
		offset = n
	}

	match, err := newMatcher(q)
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}
	less, err := newOrdering(q.Get("sort_by"), q.Get("sort_order"))
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	s.mu.Lock()
	matched := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		if match(u) {
			matched = append(matched, *u)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool { return less(matched[i], matched[j]) })

	total := len(matched)
	page := matched[min(offset, total):min(offset+limit, total)]

	pkghttp.WriteJSON(w, http.StatusOK, models.UserList{
		Users:   page,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+len(page) < total,
	})
}
