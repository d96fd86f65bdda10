package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/BradenHooton/vigil/internal/models"
	"github.com/BradenHooton/vigil/internal/validation"
	pkglogger "github.com/BradenHooton/vigil/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// BulkMode selects how valid items are dispatched.
type BulkMode string

const (
	// BulkModePerItem issues one request per item with bounded concurrency.
	BulkModePerItem BulkMode = "per_item"
	// BulkModeBatch sends every valid item in a single batch request.
	BulkModeBatch BulkMode = "batch"
)

// DefaultBulkConcurrency bounds in-flight per-item requests
const DefaultBulkConcurrency = 4

// ParseBulkMode parses a configured dispatch mode
func ParseBulkMode(s string) (BulkMode, error) {
	switch BulkMode(s) {
	case BulkModePerItem, BulkModeBatch:
		return BulkMode(s), nil
	case "":
		return BulkModePerItem, nil
	default:
		return "", fmt.Errorf("invalid bulk mode %q: expected per_item or batch", s)
	}
}

// ItemState is the lifecycle of a single bulk item.
type ItemState string

const (
	ItemPending    ItemState = "pending"
	ItemAttempting ItemState = "attempting"
	ItemSucceeded  ItemState = "succeeded"
	ItemFailed     ItemState = "failed"
)

// ItemProgress reports a state change for the item at Index.
type ItemProgress struct {
	Index  int
	State  ItemState
	Reason string
}

// ProgressFunc receives item state changes. Calls are serialized.
type ProgressFunc func(ItemProgress)

// BulkAPI is the subset of the remote directory used by BulkService.
type BulkAPI interface {
	Create(ctx context.Context, payload models.UserCreate) (*models.User, error)
	Delete(ctx context.Context, id int64) error
	BulkCreate(ctx context.Context, req models.BulkCreateRequest) (*models.BulkCreateResult, error)
	BulkDelete(ctx context.Context, req models.BulkDeleteRequest) (*models.BulkDeleteResult, error)
}

// BulkConfig configures dispatch.
type BulkConfig struct {
	Mode        BulkMode
	Concurrency int
}

// BulkService applies one operation across many users. Items are
// independent: a failure never stops the rest, nothing is rolled back, and
// partial success is a normal result.
type BulkService struct {
	api    BulkAPI
	cfg    BulkConfig
	logger *slog.Logger
	audit  *pkglogger.AuditLogger
}

// NewBulkService creates a new BulkService
func NewBulkService(api BulkAPI, cfg BulkConfig, logger *slog.Logger, audit *pkglogger.AuditLogger) *BulkService {
	if cfg.Mode == "" {
		cfg.Mode = BulkModePerItem
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultBulkConcurrency
	}
	return &BulkService{api: api, cfg: cfg, logger: logger, audit: audit}
}

// BulkCreateOptions are per-call options for BulkCreate
type BulkCreateOptions struct {
	SendWelcomeEmail bool
	Progress         ProgressFunc
}

// outcome is the terminal state of one item
type outcome struct {
	done bool
	ok   bool
	user *models.User
	err  string
	tag  string
}

func success(user *models.User) outcome {
	return outcome{done: true, ok: true, user: user}
}

func failure(err error) outcome {
	return outcome{done: true, err: models.Reason(err), tag: tagFor(err)}
}

// rejected is a failure reported by the server inside a batch response.
// An empty reason falls back to the generic message.
func rejected(reason, tag string) outcome {
	if reason == "" {
		reason = models.GenericNetworkMessage
	}
	if tag == "" {
		tag = models.BulkTagServer
	}
	return outcome{done: true, err: reason, tag: tag}
}

// tagFor classifies an item error
func tagFor(err error) string {
	var serverErr *models.ServerError
	switch {
	case errors.Is(err, models.ErrValidation):
		return models.BulkTagValidation
	case errors.As(err, &serverErr):
		return models.BulkTagServer
	default:
		return models.BulkTagNetwork
	}
}

// BulkCreate creates every item that passes local validation. Invalid items
// fail without a request. The returned error is non-nil only when ctx was
// already done before any item was dispatched.
func (s *BulkService) BulkCreate(ctx context.Context, items []models.UserCreate, opts BulkCreateOptions) (*models.BulkCreateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := newReporter(opts.Progress, len(items))
	outcomes := make([]outcome, len(items))
	payloads := make([]models.UserCreate, len(items))
	dispatch := make([]int, 0, len(items))

	for i, item := range items {
		payloads[i] = item.WithDefaults()
		if err := validation.ValidateCreate(payloads[i]); err != nil {
			outcomes[i] = failure(err)
			report.item(i, outcomes[i])
			continue
		}
		dispatch = append(dispatch, i)
	}

	if s.cfg.Mode == BulkModeBatch {
		s.createBatch(ctx, payloads, dispatch, outcomes, opts.SendWelcomeEmail, report)
	} else {
		s.createEach(ctx, payloads, dispatch, outcomes, report)
	}

	result := &models.BulkCreateResult{
		Created: make([]models.User, 0, len(dispatch)),
		Failed:  make([]models.BulkFailure[models.UserCreate], 0),
	}
	for i, o := range outcomes {
		if o.ok {
			result.Created = append(result.Created, *o.user)
			continue
		}
		item := items[i]
		item.Password = ""
		result.Failed = append(result.Failed, models.BulkFailure[models.UserCreate]{
			Index: i,
			Item:  item,
			Error: o.err,
			Tag:   o.tag,
		})
	}
	result.Summary = models.BulkSummary{
		TotalAttempted: len(items),
		Successful:     len(result.Created),
		Failed:         len(result.Failed),
	}

	s.audit.LogBulkAction(ctx, pkglogger.ActionBulkCreate, result.Summary.TotalAttempted, result.Summary.Successful, result.Summary.Failed)
	return result, nil
}

func (s *BulkService) createEach(ctx context.Context, payloads []models.UserCreate, dispatch []int, outcomes []outcome, report *reporter) {
	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Concurrency)

	for _, i := range dispatch {
		i := i
		g.Go(func() error {
			report.state(i, ItemAttempting)
			user, err := s.api.Create(ctx, payloads[i])
			switch {
			case err != nil:
				outcomes[i] = failure(err)
			case user == nil:
				p := payloads[i]
				outcomes[i] = success(&models.User{Username: p.Username, Email: p.Email, Role: p.Role})
			default:
				outcomes[i] = success(user)
			}
			report.item(i, outcomes[i])
			return nil
		})
	}
	_ = g.Wait()
}

func (s *BulkService) createBatch(ctx context.Context, payloads []models.UserCreate, dispatch []int, outcomes []outcome, welcome bool, report *reporter) {
	if len(dispatch) == 0 {
		return
	}

	req := models.BulkCreateRequest{
		Users:            make([]models.UserCreate, 0, len(dispatch)),
		SendWelcomeEmail: welcome,
	}
	for _, i := range dispatch {
		req.Users = append(req.Users, payloads[i])
		report.state(i, ItemAttempting)
	}

	res, err := s.api.BulkCreate(ctx, req)
	if err != nil {
		for _, i := range dispatch {
			outcomes[i] = failure(err)
			report.item(i, outcomes[i])
		}
		return
	}

	// Failures carry their position in the request. Usernames can repeat
	// within a batch, so they are resolved before successes claim items.
	for _, f := range res.Failed {
		i, ok := -1, false
		if f.Index >= 0 && f.Index < len(dispatch) {
			i = dispatch[f.Index]
			ok = !outcomes[i].done && (f.Item.Username == "" || sameUser(payloads[i], f.Item.Username, f.Item.Email))
		}
		if !ok {
			i, ok = claim(payloads, dispatch, outcomes, f.Item.Username, f.Item.Email)
		}
		if ok {
			outcomes[i] = rejected(f.Error, f.Tag)
			report.item(i, outcomes[i])
		}
	}
	for _, u := range res.Created {
		if i, ok := claim(payloads, dispatch, outcomes, u.Username, u.Email); ok {
			user := u
			outcomes[i] = success(&user)
			report.item(i, outcomes[i])
		}
	}
	for _, i := range dispatch {
		if !outcomes[i].done {
			outcomes[i] = rejected("no result reported for item", models.BulkTagServer)
			report.item(i, outcomes[i])
		}
	}
}

// claim returns the first unresolved dispatched item for username, preferring
// one whose email also matches.
func claim(payloads []models.UserCreate, dispatch []int, outcomes []outcome, username, email string) (int, bool) {
	fallback := -1
	for _, i := range dispatch {
		if outcomes[i].done || !sameUser(payloads[i], username, "") {
			continue
		}
		if sameUser(payloads[i], username, email) {
			return i, true
		}
		if fallback < 0 {
			fallback = i
		}
	}
	return fallback, fallback >= 0
}

// sameUser compares case-insensitively. An empty email matches any.
func sameUser(p models.UserCreate, username, email string) bool {
	if !strings.EqualFold(p.Username, username) {
		return false
	}
	return email == "" || strings.EqualFold(p.Email, email)
}

// BulkDelete deletes each distinct ID once, in first-seen order. The
// returned error is non-nil only when ctx was already done before any item
// was dispatched.
func (s *BulkService) BulkDelete(ctx context.Context, ids []int64, progress ProgressFunc) (*models.BulkDeleteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	unique := dedupe(ids)
	report := newReporter(progress, len(unique))
	outcomes := make([]outcome, len(unique))

	if s.cfg.Mode == BulkModeBatch {
		s.deleteBatch(ctx, unique, outcomes, report)
	} else {
		s.deleteEach(ctx, unique, outcomes, report)
	}

	result := &models.BulkDeleteResult{
		Deleted: make([]int64, 0, len(unique)),
		Failed:  make([]models.BulkFailure[int64], 0),
	}
	for i, o := range outcomes {
		if o.ok {
			result.Deleted = append(result.Deleted, unique[i])
			continue
		}
		result.Failed = append(result.Failed, models.BulkFailure[int64]{
			Index: i,
			Item:  unique[i],
			Error: o.err,
			Tag:   o.tag,
		})
	}
	result.Summary = models.BulkSummary{
		TotalAttempted: len(unique),
		Successful:     len(result.Deleted),
		Failed:         len(result.Failed),
	}

	s.audit.LogBulkAction(ctx, pkglogger.ActionBulkDelete, result.Summary.TotalAttempted, result.Summary.Successful, result.Summary.Failed)
	return result, nil
}

func (s *BulkService) deleteEach(ctx context.Context, ids []int64, outcomes []outcome, report *reporter) {
	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Concurrency)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			report.state(i, ItemAttempting)
			if err := s.api.Delete(ctx, id); err != nil {
				outcomes[i] = failure(err)
			} else {
				outcomes[i] = success(nil)
			}
			report.item(i, outcomes[i])
			return nil
		})
	}
	_ = g.Wait()
}

func (s *BulkService) deleteBatch(ctx context.Context, ids []int64, outcomes []outcome, report *reporter) {
	if len(ids) == 0 {
		return
	}

	index := make(map[int64]int, len(ids))
	for i, id := range ids {
		index[id] = i
		report.state(i, ItemAttempting)
	}

	res, err := s.api.BulkDelete(ctx, models.BulkDeleteRequest{UserIDs: ids})
	if err != nil {
		for i := range ids {
			outcomes[i] = failure(err)
			report.item(i, outcomes[i])
		}
		return
	}

	for _, id := range res.Deleted {
		if i, ok := index[id]; ok && !outcomes[i].done {
			outcomes[i] = success(nil)
			report.item(i, outcomes[i])
		}
	}
	for _, f := range res.Failed {
		if i, ok := index[f.Item]; ok && !outcomes[i].done {
			outcomes[i] = rejected(f.Error, f.Tag)
			report.item(i, outcomes[i])
		}
	}
	for i := range ids {
		if !outcomes[i].done {
			outcomes[i] = rejected("no result reported for item", models.BulkTagServer)
			report.item(i, outcomes[i])
		}
	}
}

// dedupe keeps the first occurrence of each ID
func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// reporter serializes progress callbacks across workers
type reporter struct {
	mu sync.Mutex
	fn ProgressFunc
}

func newReporter(fn ProgressFunc, n int) *reporter {
	r := &reporter{fn: fn}
	for i := 0; i < n; i++ {
		r.state(i, ItemPending)
	}
	return r
}

func (r *reporter) state(i int, state ItemState) {
	r.emit(ItemProgress{Index: i, State: state})
}

func (r *reporter) item(i int, o outcome) {
	if o.ok {
		r.emit(ItemProgress{Index: i, State: ItemSucceeded})
		return
	}
	r.emit(ItemProgress{Index: i, State: ItemFailed, Reason: o.err})
}

func (r *reporter) emit(p ItemProgress) {
	if r.fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fn(p)
}
