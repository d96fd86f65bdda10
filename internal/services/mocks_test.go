package services_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/BradenHooton/vigil/internal/models"
	pkglogger "github.com/BradenHooton/vigil/pkg/logger"
)

// ── mock implementations ──────────────────────────────────────────────────────

type mockUserAPI struct {
	listFunc       func(ctx context.Context, params *models.UserSearchParams) (*models.UserList, error)
	getByIDFunc    func(ctx context.Context, id int64) (*models.User, error)
	createFunc     func(ctx context.Context, payload models.UserCreate) (*models.User, error)
	updateFunc     func(ctx context.Context, id int64, update models.UserUpdate) (*models.User, error)
	deleteFunc     func(ctx context.Context, id int64) error
	statisticsFunc func(ctx context.Context) (*models.UserStatistics, error)
	bulkCreateFunc func(ctx context.Context, req models.BulkCreateRequest) (*models.BulkCreateResult, error)
	bulkDeleteFunc func(ctx context.Context, req models.BulkDeleteRequest) (*models.BulkDeleteResult, error)
}

func (m *mockUserAPI) List(ctx context.Context, params *models.UserSearchParams) (*models.UserList, error) {
	if m.listFunc == nil {
		return &models.UserList{}, nil
	}
	return m.listFunc(ctx, params)
}
func (m *mockUserAPI) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if m.getByIDFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.getByIDFunc(ctx, id)
}
func (m *mockUserAPI) Create(ctx context.Context, payload models.UserCreate) (*models.User, error) {
	if m.createFunc == nil {
		return &models.User{ID: 1, Username: payload.Username, Email: payload.Email, Role: payload.Role, IsActive: true}, nil
	}
	return m.createFunc(ctx, payload)
}
func (m *mockUserAPI) Update(ctx context.Context, id int64, update models.UserUpdate) (*models.User, error) {
	if m.updateFunc == nil {
		return nil, nil
	}
	return m.updateFunc(ctx, id, update)
}
func (m *mockUserAPI) Delete(ctx context.Context, id int64) error {
	if m.deleteFunc == nil {
		return nil
	}
	return m.deleteFunc(ctx, id)
}
func (m *mockUserAPI) Statistics(ctx context.Context) (*models.UserStatistics, error) {
	if m.statisticsFunc == nil {
		return &models.UserStatistics{}, nil
	}
	return m.statisticsFunc(ctx)
}
func (m *mockUserAPI) BulkCreate(ctx context.Context, req models.BulkCreateRequest) (*models.BulkCreateResult, error) {
	if m.bulkCreateFunc == nil {
		return &models.BulkCreateResult{}, nil
	}
	return m.bulkCreateFunc(ctx, req)
}
func (m *mockUserAPI) BulkDelete(ctx context.Context, req models.BulkDeleteRequest) (*models.BulkDeleteResult, error) {
	if m.bulkDeleteFunc == nil {
		return &models.BulkDeleteResult{}, nil
	}
	return m.bulkDeleteFunc(ctx, req)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func discardAudit() *pkglogger.AuditLogger {
	return pkglogger.NewAuditLogger(discardLogger(), "test")
}
