package services

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/BradenHooton/vigil/internal/models"
	"github.com/BradenHooton/vigil/internal/mutation"
	"github.com/BradenHooton/vigil/internal/validation"
	pkglogger "github.com/BradenHooton/vigil/pkg/logger"
)

// UserAPI is the subset of the remote directory used by UserService.
type UserAPI interface {
	List(ctx context.Context, params *models.UserSearchParams) (*models.UserList, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, payload models.UserCreate) (*models.User, error)
	Update(ctx context.Context, id int64, update models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id int64) error
	Statistics(ctx context.Context) (*models.UserStatistics, error)
}

// UserService is the operator-facing user directory client. It gates
// mutations with local validation, never retries, and passes remote errors
// through unchanged.
type UserService struct {
	api    UserAPI
	logger *slog.Logger
	audit  *pkglogger.AuditLogger
	busy   *busySet
}

// NewUserService creates a new UserService
func NewUserService(api UserAPI, logger *slog.Logger, audit *pkglogger.AuditLogger) *UserService {
	return &UserService{
		api:    api,
		logger: logger,
		audit:  audit,
		busy:   newBusySet(),
	}
}

// ListUsers lists users, optionally filtered. Nil params request the
// unfiltered listing.
func (s *UserService) ListUsers(ctx context.Context, params *models.UserSearchParams) (*models.UserList, error) {
	list, err := s.api.List(ctx, params)
	if err != nil {
		s.logger.Error("failed to list users", slog.Any("error", err))
		return nil, err
	}
	return list, nil
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.api.GetByID(ctx, id)
	if err != nil {
		s.logger.Info("failed to get user", slog.Int64("user_id", id), slog.Any("error", err))
		return nil, err
	}
	return user, nil
}

// Statistics retrieves aggregate directory counts
func (s *UserService) Statistics(ctx context.Context) (*models.UserStatistics, error) {
	stats, err := s.api.Statistics(ctx)
	if err != nil {
		s.logger.Error("failed to get user statistics", slog.Any("error", err))
		return nil, err
	}
	return stats, nil
}

// CreateUser validates payload locally and creates the account. An empty
// role defaults to "user".
func (s *UserService) CreateUser(ctx context.Context, payload models.UserCreate) (*models.User, error) {
	payload = payload.WithDefaults()
	if err := validation.ValidateCreate(payload); err != nil {
		return nil, err
	}

	key := "create:" + strings.ToLower(payload.Username)
	if !s.busy.acquire(key) {
		return nil, models.ErrMutationInFlight
	}
	defer s.busy.release(key)

	user, err := s.api.Create(ctx, payload)
	if err != nil {
		s.audit.LogAccountAction(ctx, pkglogger.AccountEvent{
			Action:        pkglogger.ActionUserCreate,
			Email:         payload.Email,
			FailureReason: models.Reason(err),
		})
		return nil, err
	}

	s.audit.LogAccountAction(ctx, pkglogger.AccountEvent{
		Action:  pkglogger.ActionUserCreate,
		UserID:  user.ID,
		Email:   user.Email,
		Success: true,
	})
	return user, nil
}

// UpdateUser submits only the fields of edited that differ from original.
// An empty diff returns models.ErrNoChanges without a request. The returned
// user is nil when the server only acknowledged the change.
func (s *UserService) UpdateUser(ctx context.Context, original models.User, edited mutation.FormState) (*models.User, error) {
	update := mutation.Diff(original, edited)
	if update.IsEmpty() {
		return nil, models.ErrNoChanges
	}
	return s.ApplyUpdate(ctx, original.ID, update)
}

// ApplyUpdate sends a prepared partial update after edit-mode validation of
// the fields it carries.
func (s *UserService) ApplyUpdate(ctx context.Context, id int64, update models.UserUpdate) (*models.User, error) {
	if update.IsEmpty() {
		return nil, models.ErrNoChanges
	}

	fields := validation.FormFields{}
	if update.Email != nil {
		if *update.Email == "" {
			return nil, &models.ValidationError{Field: "email", Reason: "this field is required"}
		}
		fields.Email = *update.Email
	}
	if update.Password != nil {
		fields.Password = *update.Password
	}
	if err := validation.CheckForm(validation.ModeEdit, fields); err != nil {
		return nil, err
	}
	if update.Role != nil && !update.Role.Valid() {
		return nil, &models.ValidationError{Field: "role", Reason: "must be one of: user admin"}
	}

	key := userKey(id)
	if !s.busy.acquire(key) {
		return nil, models.ErrMutationInFlight
	}
	defer s.busy.release(key)

	user, err := s.api.Update(ctx, id, update)
	event := pkglogger.AccountEvent{
		Action: pkglogger.ActionUserUpdate,
		UserID: id,
		Fields: changedFields(update),
	}
	if err != nil {
		event.FailureReason = models.Reason(err)
		s.audit.LogAccountAction(ctx, event)
		return nil, err
	}

	event.Success = true
	s.audit.LogAccountAction(ctx, event)
	return user, nil
}

// DeleteUser deletes a user
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	key := userKey(id)
	if !s.busy.acquire(key) {
		return models.ErrMutationInFlight
	}
	defer s.busy.release(key)

	event := pkglogger.AccountEvent{Action: pkglogger.ActionUserDelete, UserID: id}
	if err := s.api.Delete(ctx, id); err != nil {
		event.FailureReason = models.Reason(err)
		s.audit.LogAccountAction(ctx, event)
		return err
	}

	event.Success = true
	s.audit.LogAccountAction(ctx, event)
	return nil
}

func userKey(id int64) string {
	return "user:" + strconv.FormatInt(id, 10)
}

// changedFields names the fields an update carries. The password value is never included.
func changedFields(u models.UserUpdate) []string {
	fields := make([]string, 0, 4)
	if u.Email != nil {
		fields = append(fields, "email")
	}
	if u.Password != nil {
		fields = append(fields, "password")
	}
	if u.Role != nil {
		fields = append(fields, "role")
	}
	if u.IsActive != nil {
		fields = append(fields, "is_active")
	}
	return fields
}

// busySet holds a flag per record with a mutation in flight. A second
// submission for the same record is rejected, not queued.
type busySet struct {
	mu    sync.Mutex
	flags map[string]struct{}
}

func newBusySet() *busySet {
	return &busySet{flags: make(map[string]struct{})}
}

func (b *busySet) acquire(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, taken := b.flags[key]; taken {
		return false
	}
	b.flags[key] = struct{}{}
	return true
}

func (b *busySet) release(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.flags, key)
}
