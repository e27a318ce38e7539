package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/brokerdesk/internal/client/client"
	"github.com/dmitrijs2005/brokerdesk/internal/client/models"
	"github.com/dmitrijs2005/brokerdesk/internal/client/store"
	"github.com/dmitrijs2005/brokerdesk/internal/logging"
)

// Backend is the REST surface of one resource; *client.Resource implements it.
type Backend[R any] interface {
	List(ctx context.Context, params models.ListParams) (models.Page[R], error)
	Get(ctx context.Context, id string) (R, error)
	Create(ctx context.Context, payload R) (R, error)
	Update(ctx context.Context, id string, payload R) (R, error)
	Delete(ctx context.Context, id string) error
}

// Gates names the permission each operation requires. Zero means public.
type Gates struct {
	List   models.Permission
	Get    models.Permission
	Create models.Permission
	Update models.Permission
	Delete models.Permission
}

// Descriptor declares how one resource type is stored and served locally.
type Descriptor[R models.Entity] struct {
	// Name is the plural resource name, e.g. "properties".
	Name string
	// Singular is used in user-facing messages, e.g. "property".
	Singular   string
	StorageKey store.Key
	Gates      Gates
	// Prepare completes a record created or edited offline: it sets id,
	// sets the creation time when the record has none, and fills absent
	// fields with their defaults.
	Prepare func(r R, id string, created time.Time) R
	// Match reports whether a local record passes the list filters.
	Match func(r R, params models.ListParams) bool
}

// ResourceOptions tune a ResourceService. The zero value means no retries,
// no fallback on validation errors and an always-online backend.
type ResourceOptions struct {
	Retry                client.RetryPolicy
	FallbackOnValidation bool
	Connectivity         Connectivity
	Notifier             Notifier
	Now                  func() time.Time
}

// ResourceService is the Resilient Resource Client for one resource type.
type ResourceService[R models.Entity] struct {
	desc    Descriptor[R]
	backend Backend[R]
	local   *store.RecordList[R]
	auth    Authorizer
	opts    ResourceOptions
	log     logging.Logger
}

func NewResourceService[R models.Entity](desc Descriptor[R], backend Backend[R], st store.PersistentStore, auth Authorizer, log logging.Logger, opts ResourceOptions) *ResourceService[R] {
	opts.Notifier = orNop(opts.Notifier)
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ResourceService[R]{
		desc:    desc,
		backend: backend,
		local:   store.NewRecordList[R](st, desc.StorageKey),
		auth:    auth,
		opts:    opts,
		log:     log.With("resource", desc.Name),
	}
}

func (s *ResourceService[R]) Name() string { return s.desc.Name }

func (s *ResourceService[R]) gate(p models.Permission) error {
	if p == 0 {
		return nil
	}
	return s.auth.Guard(p)
}

func (s *ResourceService[R]) offline() bool {
	return s.opts.Connectivity != nil && !s.opts.Connectivity.Online()
}

func (s *ResourceService[R]) warn(msg string) {
	s.opts.Notifier.Notify(Notice{Kind: NoticeWarning, Message: msg})
}

// backendFailed reports the failure to the authorizer and tells whether the
// caller must get err back without a fallback: the session was just ended
// by the backend, or the caller's own context is done.
func (s *ResourceService[R]) backendFailed(ctx context.Context, err error) (stop bool) {
	if s.auth.HandleUnauthorized(ctx, err) {
		return true
	}
	return ctx.Err() != nil
}

// List returns one page of records. Backend results get the matching
// locally created records prepended on the first page only; Total and
// TotalPages count them on every page, so all pages of one listing agree.
// Any backend failure is answered with a page built from local records
// alone, except when it ended a real session.
func (s *ResourceService[R]) List(ctx context.Context, params models.ListParams) (models.Page[R], error) {
	if err := s.gate(s.desc.Gates.List); err != nil {
		return models.Page[R]{}, err
	}
	params = params.Normalize()

	if s.offline() {
		return s.localPage(ctx, params)
	}

	var page models.Page[R]
	err := s.opts.Retry.Do(ctx, func(ctx context.Context) error {
		p, err := s.backend.List(ctx, params)
		if err != nil {
			return err
		}
		page = p
		return nil
	})
	if err != nil {
		if s.backendFailed(ctx, err) {
			return models.Page[R]{}, err
		}
		s.log.Warn(ctx, "list failed, serving local records", "error", err)
		local, lerr := s.localPage(ctx, params)
		if lerr != nil {
			s.log.Error(ctx, "local list failed", "error", lerr)
			return models.Page[R]{}, err
		}
		s.warn(fmt.Sprintf("Server unavailable, showing locally saved %s", s.desc.Name))
		return local, nil
	}

	return s.merge(ctx, page, params), nil
}

func (s *ResourceService[R]) merge(ctx context.Context, page models.Page[R], params models.ListParams) models.Page[R] {
	if page.Items == nil {
		page.Items = []R{}
	}
	locals, err := s.filteredLocal(ctx, params)
	if err != nil {
		s.log.Warn(ctx, "read local records for merge", "error", err)
		return page
	}
	if len(locals) == 0 {
		return page
	}

	seen := make(map[string]struct{}, len(page.Items))
	for _, it := range page.Items {
		seen[it.RecordID()] = struct{}{}
	}
	extra := make([]R, 0, len(locals))
	for _, it := range locals {
		if _, dup := seen[it.RecordID()]; !dup {
			extra = append(extra, it)
		}
	}
	if len(extra) == 0 {
		return page
	}

	pg := page.Pagination
	pg.Total += len(extra)
	pg.TotalPages = max(pg.TotalPages, models.TotalPagesFor(pg.Total, params.Limit))
	if pg.CurrentPage == 0 {
		pg.CurrentPage = params.Page
	}
	if params.Page != models.DefaultPage {
		page.Pagination = pg
		return page
	}

	items := make([]R, 0, len(extra)+len(page.Items))
	items = append(items, extra...)
	items = append(items, page.Items...)
	return models.Page[R]{Items: items, Pagination: pg, Source: models.SourceMerged}
}

func (s *ResourceService[R]) filteredLocal(ctx context.Context, params models.ListParams) ([]R, error) {
	all, err := s.local.All(ctx)
	if err != nil {
		return nil, err
	}
	if s.desc.Match == nil {
		return all, nil
	}
	out := all[:0]
	for _, it := range all {
		if s.desc.Match(it, params) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *ResourceService[R]) localPage(ctx context.Context, params models.ListParams) (models.Page[R], error) {
	all, err := s.filteredLocal(ctx, params)
	if err != nil {
		return models.Page[R]{}, fmt.Errorf("read local %s: %w", s.desc.Name, err)
	}

	total := len(all)
	start := min(params.Offset(), total)
	end := min(start+params.Limit, total)

	items := make([]R, end-start)
	copy(items, all[start:end])

	return models.Page[R]{
		Items: items,
		Pagination: models.Pagination{
			CurrentPage: params.Page,
			TotalPages:  models.TotalPagesFor(total, params.Limit),
			Total:       total,
		},
		Source: models.SourceLocal,
	}, nil
}

// Get returns one record. Locally created records are served from the
// local store; others from the backend, falling back to the local store
// when the backend cannot answer.
func (s *ResourceService[R]) Get(ctx context.Context, id string) (R, error) {
	var zero R
	if err := s.gate(s.desc.Gates.Get); err != nil {
		return zero, err
	}

	if store.IsLocalID(id) || s.offline() {
		return s.findLocal(ctx, id, nil)
	}

	var rec R
	err := s.opts.Retry.Do(ctx, func(ctx context.Context) error {
		r, err := s.backend.Get(ctx, id)
		if err != nil {
			return err
		}
		rec = r
		return nil
	})
	if err == nil {
		return rec, nil
	}
	if s.backendFailed(ctx, err) || !client.IsFallbackTrigger(err, false) {
		return zero, err
	}
	return s.findLocal(ctx, id, err)
}

// findLocal looks id up in the local store. When it is absent, cause is
// returned if set, otherwise a not-found error.
func (s *ResourceService[R]) findLocal(ctx context.Context, id string, cause error) (R, error) {
	rec, ok, err := s.local.Find(ctx, id)
	if err != nil {
		if cause != nil {
			return rec, cause
		}
		return rec, fmt.Errorf("read local %s: %w", s.desc.Name, err)
	}
	if !ok {
		if cause != nil {
			return rec, cause
		}
		return rec, fmt.Errorf("%s %s: %w", s.desc.Singular, id, client.ErrNotFound)
	}
	return rec, nil
}

// Create stores a new record on the backend. When the backend fails with a
// fallback trigger the record is completed with defaults, given a local id
// and kept in the local store. If that also fails, the backend error is
// returned.
func (s *ResourceService[R]) Create(ctx context.Context, payload R) (R, error) {
	var zero R
	if err := s.gate(s.desc.Gates.Create); err != nil {
		return zero, err
	}
	if err := validateStruct(payload); err != nil {
		return zero, err
	}

	if s.offline() {
		rec, err := s.createLocal(ctx, payload)
		if err != nil {
			return zero, fmt.Errorf("%w: backend offline, local save failed: %w", client.ErrUnavailable, err)
		}
		return rec, nil
	}

	rec, err := s.backend.Create(ctx, payload)
	if err == nil {
		return rec, nil
	}
	if s.backendFailed(ctx, err) || !client.IsFallbackTrigger(err, s.opts.FallbackOnValidation) {
		return zero, err
	}

	s.log.Warn(ctx, "create failed, saving locally", "error", err)
	local, lerr := s.createLocal(ctx, payload)
	if lerr != nil {
		s.log.Error(ctx, "local create failed", "error", lerr)
		return zero, err
	}
	return local, nil
}

func (s *ResourceService[R]) createLocal(ctx context.Context, payload R) (R, error) {
	rec := s.desc.Prepare(payload, store.NewLocalID(), s.opts.Now().UTC())
	if err := s.local.Prepend(ctx, rec); err != nil {
		var zero R
		return zero, err
	}
	s.warn(fmt.Sprintf("Server unavailable, %s saved locally", s.desc.Singular))
	return rec, nil
}

// Update edits a record. Locally created records are edited in place in the
// local store; backend records are never shadowed locally.
func (s *ResourceService[R]) Update(ctx context.Context, id string, payload R) (R, error) {
	var zero R
	if err := s.gate(s.desc.Gates.Update); err != nil {
		return zero, err
	}
	if err := validateStruct(payload); err != nil {
		return zero, err
	}

	if store.IsLocalID(id) {
		return s.updateLocal(ctx, id, payload)
	}
	if s.offline() {
		return zero, fmt.Errorf("%w: cannot edit %s %s while offline", client.ErrUnavailable, s.desc.Singular, id)
	}

	rec, err := s.backend.Update(ctx, id, payload)
	if err != nil {
		s.backendFailed(ctx, err)
		return zero, err
	}
	return rec, nil
}

func (s *ResourceService[R]) updateLocal(ctx context.Context, id string, payload R) (R, error) {
	existing, err := s.findLocal(ctx, id, nil)
	if err != nil {
		return existing, err
	}
	rec := s.desc.Prepare(payload, id, existing.Created())
	ok, err := s.local.Replace(ctx, rec)
	if err != nil {
		var zero R
		return zero, fmt.Errorf("update local %s: %w", s.desc.Singular, err)
	}
	if !ok {
		var zero R
		return zero, fmt.Errorf("%s %s: %w", s.desc.Singular, id, client.ErrNotFound)
	}
	return rec, nil
}

// Remove deletes a record. Locally created records are dropped from the
// local store. When the backend fails with a fallback trigger, any local
// copy is dropped and the removal is reported as done.
func (s *ResourceService[R]) Remove(ctx context.Context, id string) error {
	if err := s.gate(s.desc.Gates.Delete); err != nil {
		return err
	}

	if store.IsLocalID(id) {
		if _, err := s.local.Remove(ctx, id); err != nil {
			return fmt.Errorf("remove local %s: %w", s.desc.Singular, err)
		}
		return nil
	}

	var err error
	if s.offline() {
		err = fmt.Errorf("%w: backend offline", client.ErrUnavailable)
	} else {
		err = s.backend.Delete(ctx, id)
	}
	if err == nil {
		return nil
	}
	if s.backendFailed(ctx, err) || !client.IsFallbackTrigger(err, false) {
		return err
	}

	s.log.Warn(ctx, "delete failed, removing locally", "id", id, "error", err)
	if _, lerr := s.local.Remove(ctx, id); lerr != nil {
		s.log.Error(ctx, "local delete failed", "error", lerr)
		return err
	}
	s.warn(fmt.Sprintf("Server unavailable, %s removed locally", s.desc.Singular))
	return nil
}

// LocalCount returns the number of locally created records.
func (s *ResourceService[R]) LocalCount(ctx context.Context) (int, error) {
	all, err := s.local.All(ctx)
	if err != nil {
		return 0, err
	}
	return len(all), nil
}

// IsPermissionError reports whether err came from a local permission check.
func IsPermissionError(err error) bool {
	return errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrNotAuthenticated)
}
