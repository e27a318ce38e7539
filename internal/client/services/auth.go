package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/brokerdesk/internal/authtoken"
	"github.com/dmitrijs2005/brokerdesk/internal/client/client"
	"github.com/dmitrijs2005/brokerdesk/internal/client/models"
	"github.com/dmitrijs2005/brokerdesk/internal/client/store"
	"github.com/dmitrijs2005/brokerdesk/internal/common"
	"github.com/dmitrijs2005/brokerdesk/internal/cryptox"
	"github.com/dmitrijs2005/brokerdesk/internal/logging"
)

// AuthBackend is the part of the REST client the AuthService needs.
type AuthBackend interface {
	Login(ctx context.Context, creds models.Credentials, admin bool) (models.Principal, string, error)
	Profile(ctx context.Context) (models.Principal, error)
	SetToken(token string)
}

// Authorizer answers permission questions about the current principal and
// takes reports of backend authorization failures.
type Authorizer interface {
	IsAuthenticated() bool
	IsOwner() bool
	HasPermission(p models.Permission) bool
	Guard(p models.Permission) error
	HandleUnauthorized(ctx context.Context, err error) bool
}

// FallbackAdmin is the credential accepted for admin logins while the
// backend is unreachable. Salt and Verifier come from cryptox.NewCredential.
type FallbackAdmin struct {
	Email    string
	Name     string
	Salt     []byte
	Verifier []byte
}

func (f FallbackAdmin) configured() bool {
	return f.Email != "" && len(f.Salt) > 0 && len(f.Verifier) > 0
}

const fallbackTokenBytes = 16

// AuthService is the Authorization Model. It is safe for concurrent use.
type AuthService struct {
	backend  AuthBackend
	store    store.PersistentStore
	fallback FallbackAdmin
	conn     Connectivity
	notifier Notifier
	log      logging.Logger
	now      func() time.Time

	mu        sync.RWMutex
	principal *models.Principal
	token     models.SessionToken
	onLogout  []func()
}

type AuthOption func(*AuthService)

// WithFallbackAdmin enables the offline admin login.
func WithFallbackAdmin(f FallbackAdmin) AuthOption {
	return func(a *AuthService) { a.fallback = f }
}

func WithAuthNotifier(n Notifier) AuthOption {
	return func(a *AuthService) { a.notifier = orNop(n) }
}

// WithAuthConnectivity lets admin logins go straight to the fallback path
// while the backend is known to be offline.
func WithAuthConnectivity(c Connectivity) AuthOption {
	return func(a *AuthService) { a.conn = c }
}

func WithClock(now func() time.Time) AuthOption {
	return func(a *AuthService) { a.now = now }
}

func NewAuthService(backend AuthBackend, st store.PersistentStore, log logging.Logger, opts ...AuthOption) *AuthService {
	a := &AuthService{
		backend:  backend,
		store:    st,
		notifier: nopNotifier{},
		log:      log.With("service", "auth"),
		now:      time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// OnLogout registers fn to run after every logout, forced or not.
func (a *AuthService) OnLogout(fn func()) {
	a.mu.Lock()
	a.onLogout = append(a.onLogout, fn)
	a.mu.Unlock()
}

// Principal returns a copy of the current principal.
func (a *AuthService) Principal() (models.Principal, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.principal == nil {
		return models.Principal{}, false
	}
	p := *a.principal
	p.Permissions = clonePermissions(p.Permissions)
	return p, true
}

func (a *AuthService) Token() models.SessionToken {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

func (a *AuthService) IsAuthenticated() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.principal != nil && !a.token.IsZero()
}

func (a *AuthService) role() models.Role {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.principal == nil {
		return ""
	}
	return a.principal.Role
}

// IsAdmin reports whether the principal may enter the back office.
func (a *AuthService) IsAdmin() bool {
	switch a.role() {
	case models.RoleOwner, models.RoleAdmin, models.RoleSubAdmin:
		return true
	}
	return false
}

func (a *AuthService) IsOwner() bool {
	return a.role() == models.RoleOwner
}

// HasPermission is true for every valid permission when the principal is an
// owner or admin, for explicitly granted ones when it is a sub-admin, and
// false otherwise.
func (a *AuthService) HasPermission(p models.Permission) bool {
	if !p.Valid() {
		return false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.principal == nil {
		return false
	}
	switch a.principal.Role {
	case models.RoleOwner, models.RoleAdmin:
		return true
	case models.RoleSubAdmin:
		return a.principal.Permissions[p]
	default:
		return false
	}
}

// HasPermissionKey is HasPermission for a wire-format key. Unknown keys
// yield false.
func (a *AuthService) HasPermissionKey(key string) bool {
	p, ok := models.ParsePermission(key)
	return ok && a.HasPermission(p)
}

// Guard returns nil when the principal holds p.
func (a *AuthService) Guard(p models.Permission) error {
	if !a.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if !a.HasPermission(p) {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, p)
	}
	return nil
}

// Login authenticates against the backend. When the backend cannot be
// reached and admin is set, the configured fallback admin credential is
// checked locally and a fallback session is started instead.
func (a *AuthService) Login(ctx context.Context, creds models.Credentials, admin bool) (models.Principal, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := validateStruct(creds); err != nil {
		a.notifier.Notify(Notice{Kind: NoticeError, Message: client.Message(err)})
		return models.Principal{}, fmt.Errorf("%w: %w", ErrAuth, err)
	}

	var (
		p     models.Principal
		token string
		err   error
	)
	if admin && a.conn != nil && !a.conn.Online() {
		err = fmt.Errorf("%w: backend offline", client.ErrUnavailable)
	} else {
		p, token, err = a.backend.Login(ctx, creds, admin)
	}

	if err != nil {
		if admin && errors.Is(err, client.ErrUnavailable) {
			a.log.Warn(ctx, "backend unreachable, trying fallback admin login", "error", err)
			return a.fallbackLogin(ctx, creds)
		}
		a.log.Info(ctx, "login failed", "email", creds.Email, "error", err)
		a.notifier.Notify(Notice{Kind: NoticeError, Message: client.Message(err)})
		if errors.Is(err, client.ErrUnauthorized) || errors.Is(err, client.ErrValidation) {
			return models.Principal{}, fmt.Errorf("%w: %w", ErrAuth, err)
		}
		return models.Principal{}, err
	}

	if admin && p.Role == models.RoleUser {
		a.notifier.Notify(Notice{Kind: NoticeError, Message: "Access denied: not an admin account"})
		return models.Principal{}, fmt.Errorf("%w: %s is not an admin account", ErrPermissionDenied, creds.Email)
	}

	if err := a.begin(ctx, p, models.SessionToken(token)); err != nil {
		return models.Principal{}, err
	}
	a.notifier.Notify(Notice{Kind: NoticeSuccess, Message: welcome(p, false)})
	return p, nil
}

func (a *AuthService) fallbackLogin(ctx context.Context, creds models.Credentials) (models.Principal, error) {
	if !a.fallback.configured() {
		a.notifier.Notify(Notice{Kind: NoticeError, Message: "Server unavailable and no offline admin login is configured"})
		return models.Principal{}, fmt.Errorf("%w: fallback admin not configured", ErrLocalDataNotAvailable)
	}

	password := []byte(creds.Password)
	defer common.WipeByteArray(password)

	if !strings.EqualFold(creds.Email, a.fallback.Email) || !cryptox.Verify(password, a.fallback.Salt, a.fallback.Verifier) {
		a.notifier.Notify(Notice{Kind: NoticeError, Message: "Invalid credentials"})
		return models.Principal{}, fmt.Errorf("%w: invalid fallback credentials", ErrAuth)
	}

	suffix, err := common.MakeRandHexString(fallbackTokenBytes)
	if err != nil {
		return models.Principal{}, fmt.Errorf("generate fallback token: %w", err)
	}

	name := a.fallback.Name
	if name == "" {
		name = "Admin"
	}
	p := models.Principal{
		ID:    common.LocalIDPrefix + "admin",
		Name:  name,
		Email: a.fallback.Email,
		Role:  models.RoleAdmin,
	}
	if err := a.begin(ctx, p, models.SessionToken(common.FallbackTokenPrefix+suffix)); err != nil {
		return models.Principal{}, err
	}
	a.notifier.Notify(Notice{Kind: NoticeSuccess, Message: welcome(p, true)})
	return p, nil
}

// begin persists the session and then installs it in memory.
func (a *AuthService) begin(ctx context.Context, p models.Principal, token models.SessionToken) error {
	if err := store.SetJSON(ctx, a.store, store.KeyPrincipal, p); err != nil {
		return fmt.Errorf("save principal: %w", err)
	}
	if err := a.store.Set(ctx, store.KeyToken, []byte(token)); err != nil {
		return fmt.Errorf("save token: %w", err)
	}

	a.mu.Lock()
	a.principal = &p
	a.token = token
	a.mu.Unlock()

	a.installToken(token)
	a.log.Info(ctx, "session started", "user", p.ID, "role", p.Role, "fallback", token.IsFallback())
	return nil
}

// installToken hands real tokens to the transport. Fallback tokens mean
// nothing to the backend and are never sent.
func (a *AuthService) installToken(token models.SessionToken) {
	if token.IsReal() {
		a.backend.SetToken(string(token))
		return
	}
	a.backend.SetToken("")
}

// Logout ends the session. It never fails and may be called at any time.
func (a *AuthService) Logout(ctx context.Context) {
	a.clear(ctx)
	a.notifier.Notify(Notice{Kind: NoticeInfo, Message: "Logged out"})
}

func (a *AuthService) clear(ctx context.Context) {
	a.mu.Lock()
	a.principal = nil
	a.token = ""
	hooks := append([]func(){}, a.onLogout...)
	a.mu.Unlock()

	a.backend.SetToken("")
	if err := a.store.Remove(ctx, store.KeyToken); err != nil {
		a.log.Warn(ctx, "remove stored token", "error", err)
	}
	if err := a.store.Remove(ctx, store.KeyPrincipal); err != nil {
		a.log.Warn(ctx, "remove stored principal", "error", err)
	}
	for _, fn := range hooks {
		fn()
	}
}

// RestoreSession rebuilds the session from durable storage. A real token is
// checked against the backend profile endpoint; a fallback token restores the
// stored principal snapshot. On any failure the session is cleared and the
// cause returned. No stored token is not a failure.
func (a *AuthService) RestoreSession(ctx context.Context) error {
	raw, err := a.store.Get(ctx, store.KeyToken)
	if err != nil {
		a.clear(ctx)
		return fmt.Errorf("read stored token: %w", err)
	}
	token := models.SessionToken(raw)
	if token.IsZero() {
		return nil
	}

	var p models.Principal
	if token.IsFallback() {
		snapshot, ok, err := store.GetJSON[models.Principal](ctx, a.store, store.KeyPrincipal)
		if err != nil || !ok {
			a.clear(ctx)
			if err == nil {
				err = ErrLocalDataNotAvailable
			}
			return fmt.Errorf("restore fallback session: %w", err)
		}
		p = snapshot
	} else {
		if err := authtoken.CheckExpiry(string(token), a.now()); err != nil {
			a.clear(ctx)
			a.notifier.Notify(Notice{Kind: NoticeWarning, Message: "Session expired, please log in again"})
			return fmt.Errorf("restore session: %w", err)
		}
		a.backend.SetToken(string(token))
		profile, err := a.backend.Profile(ctx)
		if err != nil {
			a.clear(ctx)
			if errors.Is(err, client.ErrUnauthorized) {
				a.notifier.Notify(Notice{Kind: NoticeWarning, Message: "Session expired, please log in again"})
			}
			return fmt.Errorf("restore session: %w", err)
		}
		p = profile
	}

	if err := a.begin(ctx, p, token); err != nil {
		a.clear(ctx)
		return err
	}
	return nil
}

// HandleUnauthorized forces a logout when err is a backend authorization
// failure and the session token is real. It reports whether it did.
func (a *AuthService) HandleUnauthorized(ctx context.Context, err error) bool {
	if !errors.Is(err, client.ErrUnauthorized) {
		return false
	}
	if !a.Token().IsReal() {
		a.log.Debug(ctx, "ignoring unauthorized answer for fallback session")
		return false
	}
	a.log.Info(ctx, "session rejected by backend, logging out")
	a.clear(ctx)
	a.notifier.Notify(Notice{Kind: NoticeWarning, Message: "Session expired, please log in again"})
	return true
}

func welcome(p models.Principal, offline bool) string {
	var msg string
	switch p.Role {
	case models.RoleOwner:
		msg = "Welcome back, " + p.Name + " (owner)"
	case models.RoleAdmin:
		msg = "Logged in to the admin panel as " + p.Name
	case models.RoleSubAdmin:
		msg = "Logged in as sub-admin " + p.Name
	default:
		msg = "Welcome, " + p.Name
	}
	if offline {
		msg += " (offline mode)"
	}
	return msg
}

func clonePermissions(s models.PermissionSet) models.PermissionSet {
	if s == nil {
		return nil
	}
	out := make(models.PermissionSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
