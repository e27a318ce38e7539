package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/brokerdesk/internal/client/client"
	"github.com/dmitrijs2005/brokerdesk/internal/client/models"
	"github.com/dmitrijs2005/brokerdesk/internal/client/store"
	"github.com/dmitrijs2005/brokerdesk/internal/cryptox"
	"github.com/dmitrijs2005/brokerdesk/internal/logging"
)

var (
	errUnavailable  = errors.Join(client.ErrUnavailable, errors.New("dial tcp 127.0.0.1:5000: connect: connection refused"))
	errUnauthorized = &client.APIError{Status: 401, Message: "Token expired"}
)

// fakeAuthBackend implements AuthBackend for unit tests.
type fakeAuthBackend struct {
	mu sync.Mutex

	LoginPrincipal models.Principal
	LoginToken     string
	LoginErr       error
	LoginCalls     int
	LastAdmin      bool

	ProfilePrincipal models.Principal
	ProfileErr       error
	ProfileCalls     int

	Installed string
}

func (f *fakeAuthBackend) Login(_ context.Context, _ models.Credentials, admin bool) (models.Principal, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoginCalls++
	f.LastAdmin = admin
	return f.LoginPrincipal, f.LoginToken, f.LoginErr
}

func (f *fakeAuthBackend) Profile(context.Context) (models.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ProfileCalls++
	return f.ProfilePrincipal, f.ProfileErr
}

func (f *fakeAuthBackend) SetToken(token string) {
	f.mu.Lock()
	f.Installed = token
	f.mu.Unlock()
}

const (
	fallbackEmail    = "admin@brokerdesk.local"
	fallbackPassword = "admin123"
)

func testFallbackAdmin(t *testing.T) FallbackAdmin {
	t.Helper()
	salt, verifier := cryptox.NewCredential([]byte(fallbackPassword))
	return FallbackAdmin{Email: fallbackEmail, Salt: salt, Verifier: verifier}
}

func newAuth(t *testing.T, backend *fakeAuthBackend, opts ...AuthOption) (*AuthService, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	return NewAuthService(backend, st, logging.NewNop(), opts...), st
}

// loginAs starts a session for p without going through a backend.
func loginAs(t *testing.T, a *AuthService, p models.Principal, token models.SessionToken) {
	t.Helper()
	require.NoError(t, a.begin(context.Background(), p, token))
}

var (
	ownerPrincipal = models.Principal{ID: "u-owner", Name: "Olga", Role: models.RoleOwner}
	adminPrincipal = models.Principal{ID: "u-admin", Name: "Ada", Role: models.RoleAdmin}
	userPrincipal  = models.Principal{ID: "u-user", Name: "Uma", Role: models.RoleUser}
)

func subAdmin(perms models.PermissionSet) models.Principal {
	return models.Principal{ID: "u-sub", Name: "Sid", Role: models.RoleSubAdmin, Permissions: perms}
}

type staticConn bool

func (c staticConn) Online() bool { return bool(c) }

// fakeBackend is an in-memory Backend. When Err is set every call fails
// with it; per-call errors take precedence.
type fakeBackend[R models.Entity] struct {
	mu sync.Mutex

	items  []R
	assign func(R, string) R
	nextID int

	Err       error
	ListErrs  []error
	CreateErr error
	DeleteErr error

	Calls map[string]int
}

func newFakeBackend[R models.Entity](assign func(R, string) R, items ...R) *fakeBackend[R] {
	return &fakeBackend[R]{items: items, assign: assign, Calls: map[string]int{}}
}

func (f *fakeBackend[R]) call(op string) error {
	f.Calls[op]++
	if op == "list" && len(f.ListErrs) > 0 {
		err := f.ListErrs[0]
		f.ListErrs = f.ListErrs[1:]
		return err
	}
	switch {
	case op == "create" && f.CreateErr != nil:
		return f.CreateErr
	case op == "delete" && f.DeleteErr != nil:
		return f.DeleteErr
	}
	return f.Err
}

func (f *fakeBackend[R]) List(_ context.Context, params models.ListParams) (models.Page[R], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("list"); err != nil {
		return models.Page[R]{}, err
	}
	params = params.Normalize()
	total := len(f.items)
	start := min(params.Offset(), total)
	end := min(start+params.Limit, total)
	return models.Page[R]{
		Items:      append([]R{}, f.items[start:end]...),
		Pagination: models.Pagination{CurrentPage: params.Page, TotalPages: models.TotalPagesFor(total, params.Limit), Total: total},
		Source:     models.SourceServer,
	}, nil
}

func (f *fakeBackend[R]) Get(_ context.Context, id string) (R, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var zero R
	if err := f.call("get"); err != nil {
		return zero, err
	}
	for _, it := range f.items {
		if it.RecordID() == id {
			return it, nil
		}
	}
	return zero, &client.APIError{Status: 404, Message: "not found"}
}

func (f *fakeBackend[R]) Create(_ context.Context, payload R) (R, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var zero R
	if err := f.call("create"); err != nil {
		return zero, err
	}
	f.nextID++
	rec := f.assign(payload, "srv-"+strconv.Itoa(f.nextID))
	f.items = append([]R{rec}, f.items...)
	return rec, nil
}

func (f *fakeBackend[R]) Update(_ context.Context, id string, payload R) (R, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var zero R
	if err := f.call("update"); err != nil {
		return zero, err
	}
	for i, it := range f.items {
		if it.RecordID() == id {
			f.items[i] = f.assign(payload, id)
			return f.items[i], nil
		}
	}
	return zero, &client.APIError{Status: 404, Message: "not found"}
}

func (f *fakeBackend[R]) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("delete"); err != nil {
		return err
	}
	for i, it := range f.items {
		if it.RecordID() == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return &client.APIError{Status: 404, Message: "not found"}
}

func (f *fakeBackend[R]) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[op]
}

func assignProperty(p models.Property, id string) models.Property {
	p.ID = id
	return p
}

func assignContact(c models.Contact, id string) models.Contact {
	c.ID = id
	return c
}

// failingStore is a PersistentStore whose writes fail.
type failingStore struct {
	*store.MemoryStore
}

func (failingStore) Update(context.Context, store.Key, func([]byte) ([]byte, error)) error {
	return errors.New("disk full")
}
