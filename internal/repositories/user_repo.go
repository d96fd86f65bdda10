package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/BradenHooton/vigil/internal/models"
)

// UserRepository talks to the remote user directory API. The injected
// client must already carry credentials; this type never handles sessions
// and never retries.
type UserRepository struct {
	client  *http.Client
	baseURL *url.URL
}

// NewUserRepository creates a repository rooted at baseURL
func NewUserRepository(client *http.Client, baseURL string) (*UserRepository, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q: scheme and host are required", baseURL)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &UserRepository{client: client, baseURL: u}, nil
}

func (r *UserRepository) List(ctx context.Context, params *models.UserSearchParams) (*models.UserList, error) {
	var query url.Values
	if params != nil {
		query = params.Values()
	}

	var list models.UserList
	if err := r.do(ctx, "list users", http.MethodGet, "/users", query, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.do(ctx, "get user", http.MethodGet, userPath(id), nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, payload models.UserCreate) (*models.User, error) {
	var user models.User
	if err := r.do(ctx, "create user", http.MethodPost, "/users", nil, payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Update sends a partial update. The server may answer with the updated
// user or with a bare acknowledgement, in which case the returned user is nil.
func (r *UserRepository) Update(ctx context.Context, id int64, update models.UserUpdate) (*models.User, error) {
	var user models.User
	if err := r.do(ctx, "update user", http.MethodPut, userPath(id), nil, update, &user); err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return r.do(ctx, "delete user", http.MethodDelete, userPath(id), nil, nil, nil)
}

func (r *UserRepository) BulkCreate(ctx context.Context, req models.BulkCreateRequest) (*models.BulkCreateResult, error) {
	var result models.BulkCreateResult
	if err := r.do(ctx, "bulk create users", http.MethodPost, "/users/bulk", nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *UserRepository) BulkDelete(ctx context.Context, req models.BulkDeleteRequest) (*models.BulkDeleteResult, error) {
	var result models.BulkDeleteResult
	if err := r.do(ctx, "bulk delete users", http.MethodPost, "/users/bulk-delete", nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *UserRepository) Statistics(ctx context.Context) (*models.UserStatistics, error) {
	var stats models.UserStatistics
	if err := r.do(ctx, "get user statistics", http.MethodGet, "/users/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func userPath(id int64) string {
	return "/users/" + strconv.FormatInt(id, 10)
}

// do performs one request. Non-2xx responses become *models.ServerError and
// transport failures become *models.NetworkError. An empty success body
// leaves out untouched.
func (r *UserRepository) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	u := *r.baseURL
	u.Path = r.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return &models.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &models.NetworkError{Op: op, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}
