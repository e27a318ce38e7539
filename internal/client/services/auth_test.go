package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/brokerdesk/internal/authtoken"
	"github.com/dmitrijs2005/brokerdesk/internal/client/client"
	"github.com/dmitrijs2005/brokerdesk/internal/client/models"
	"github.com/dmitrijs2005/brokerdesk/internal/client/store"
	"github.com/dmitrijs2005/brokerdesk/internal/common"
)

func TestHasPermission_OwnerAndAdminHoldEveryPermission(t *testing.T) {
	for _, p := range []models.Principal{ownerPrincipal, adminPrincipal} {
		t.Run(string(p.Role), func(t *testing.T) {
			a, _ := newAuth(t, &fakeAuthBackend{})
			p.Permissions = models.PermissionSet{models.PermDeleteBlog: false}
			loginAs(t, a, p, "real-token")

			for _, perm := range models.AllPermissions() {
				assert.True(t, a.HasPermission(perm), perm.String())
			}
			assert.True(t, a.IsAdmin())
		})
	}
}

func TestHasPermission_SubAdminOnlyExplicitGrants(t *testing.T) {
	a, _ := newAuth(t, &fakeAuthBackend{})
	grants := models.PermissionSet{
		models.PermAddProperty:    true,
		models.PermDeleteProperty: false,
	}
	loginAs(t, a, subAdmin(grants), "real-token")

	for _, perm := range models.AllPermissions() {
		assert.Equal(t, grants[perm], a.HasPermission(perm), perm.String())
	}
	assert.True(t, a.HasPermissionKey("addProperty"))
	assert.False(t, a.HasPermissionKey("deleteProperty"))
	assert.False(t, a.HasPermissionKey("editProperty"))
	assert.True(t, a.IsAdmin())
	assert.False(t, a.IsOwner())
}

func TestHasPermission_UserAndAnonymousHoldNothing(t *testing.T) {
	a, _ := newAuth(t, &fakeAuthBackend{})
	for _, perm := range models.AllPermissions() {
		assert.False(t, a.HasPermission(perm))
	}
	assert.False(t, a.IsAdmin())

	p := userPrincipal
	p.Permissions = models.PermissionSet{models.PermAddProperty: true}
	loginAs(t, a, p, "real-token")
	for _, perm := range models.AllPermissions() {
		assert.False(t, a.HasPermission(perm))
	}
	assert.False(t, a.IsAdmin())
}

func TestHasPermission_UnknownKeyIsFalse(t *testing.T) {
	a, _ := newAuth(t, &fakeAuthBackend{})
	loginAs(t, a, ownerPrincipal, "real-token")

	assert.False(t, a.HasPermissionKey("launchRockets"))
	assert.False(t, a.HasPermission(models.Permission(0)))
	assert.False(t, a.HasPermission(models.Permission(999)))
}

func TestGuard(t *testing.T) {
	a, _ := newAuth(t, &fakeAuthBackend{})
	require.ErrorIs(t, a.Guard(models.PermWriteBlog), ErrNotAuthenticated)

	loginAs(t, a, subAdmin(models.PermissionSet{models.PermWriteBlog: true}), "real-token")
	require.NoError(t, a.Guard(models.PermWriteBlog))

	err := a.Guard(models.PermDeleteBlog)
	require.ErrorIs(t, err, ErrPermissionDenied)
	assert.Contains(t, err.Error(), "deleteBlog")
}

func TestLogout_IsIdempotent(t *testing.T) {
	backend := &fakeAuthBackend{}
	a, st := newAuth(t, backend)

	require.NotPanics(t, func() { a.Logout(context.Background()) })
	assert.False(t, a.IsAuthenticated())

	loginAs(t, a, adminPrincipal, "real-token")
	require.True(t, a.IsAuthenticated())
	assert.Equal(t, "real-token", backend.Installed)

	a.Logout(context.Background())
	a.Logout(context.Background())
	assert.False(t, a.IsAuthenticated())
	assert.Empty(t, backend.Installed)

	raw, err := st.Get(context.Background(), store.KeyToken)
	require.NoError(t, err)
	assert.Nil(t, raw)
	raw, err = st.Get(context.Background(), store.KeyPrincipal)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestLogin_BackendSuccessPersistsSession(t *testing.T) {
	backend := &fakeAuthBackend{LoginPrincipal: ownerPrincipal, LoginToken: "jwt-abc"}
	rec := &Recorder{}
	a, st := newAuth(t, backend, WithAuthNotifier(rec))
	ctx := context.Background()

	p, err := a.Login(ctx, models.Credentials{Email: " olga@example.com ", Password: "pw"}, true)
	require.NoError(t, err)
	assert.Equal(t, ownerPrincipal, p)
	assert.True(t, backend.LastAdmin)
	assert.True(t, a.IsAuthenticated())
	assert.True(t, a.Token().IsReal())
	assert.Equal(t, "jwt-abc", backend.Installed)

	tok, err := st.Get(ctx, store.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "jwt-abc", string(tok))

	snap, ok, err := store.GetJSON[models.Principal](ctx, st, store.KeyPrincipal)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ownerPrincipal.ID, snap.ID)

	notices := rec.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeSuccess, notices[0].Kind)
	assert.Contains(t, notices[0].Message, "owner")
}

func TestLogin_InvalidCredentials(t *testing.T) {
	backend := &fakeAuthBackend{LoginErr: errUnauthorized}
	rec := &Recorder{}
	a, _ := newAuth(t, backend, WithAuthNotifier(rec), WithFallbackAdmin(testFallbackAdmin(t)))

	_, err := a.Login(context.Background(), models.Credentials{Email: fallbackEmail, Password: fallbackPassword}, true)
	require.ErrorIs(t, err, ErrAuth)
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Equal(t, 401, client.StatusCode(err))
	assert.False(t, a.IsAuthenticated())
	assert.Len(t, rec.Notices(), 1)
}

func TestLogin_RejectsMalformedCredentials(t *testing.T) {
	backend := &fakeAuthBackend{}
	a, _ := newAuth(t, backend)

	_, err := a.Login(context.Background(), models.Credentials{Email: "not-an-email", Password: ""}, false)
	require.ErrorIs(t, err, ErrAuth)
	require.ErrorIs(t, err, client.ErrValidation)
	assert.Equal(t, 0, backend.LoginCalls)
}

func TestLogin_FallbackAdminWhenBackendUnreachable(t *testing.T) {
	backend := &fakeAuthBackend{LoginErr: errUnavailable}
	a, st := newAuth(t, backend, WithFallbackAdmin(testFallbackAdmin(t)))
	ctx := context.Background()

	p, err := a.Login(ctx, models.Credentials{Email: "ADMIN@brokerdesk.local", Password: fallbackPassword}, true)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, p.Role)
	assert.True(t, a.IsAuthenticated())
	assert.True(t, a.Token().IsFallback())
	assert.Empty(t, backend.Installed, "fallback tokens are not sent to the backend")

	tok, err := st.Get(ctx, store.KeyToken)
	require.NoError(t, err)
	assert.True(t, models.SessionToken(tok).IsFallback())
	assert.Contains(t, string(tok), common.FallbackTokenPrefix)
}

func TestLogin_FallbackSkipsNetworkWhileOffline(t *testing.T) {
	backend := &fakeAuthBackend{}
	a, _ := newAuth(t, backend, WithFallbackAdmin(testFallbackAdmin(t)), WithAuthConnectivity(staticConn(false)))

	_, err := a.Login(context.Background(), models.Credentials{Email: fallbackEmail, Password: fallbackPassword}, true)
	require.NoError(t, err)
	assert.Equal(t, 0, backend.LoginCalls)
	assert.True(t, a.Token().IsFallback())
}

func TestLogin_FallbackWrongPassword(t *testing.T) {
	backend := &fakeAuthBackend{LoginErr: errUnavailable}
	a, _ := newAuth(t, backend, WithFallbackAdmin(testFallbackAdmin(t)))

	_, err := a.Login(context.Background(), models.Credentials{Email: fallbackEmail, Password: "wrong"}, true)
	require.ErrorIs(t, err, ErrAuth)
	assert.False(t, a.IsAuthenticated())

	_, err = a.Login(context.Background(), models.Credentials{Email: "other@brokerdesk.local", Password: fallbackPassword}, true)
	require.ErrorIs(t, err, ErrAuth)
}

func TestLogin_FallbackNotConfigured(t *testing.T) {
	backend := &fakeAuthBackend{LoginErr: errUnavailable}
	a, _ := newAuth(t, backend)

	_, err := a.Login(context.Background(), models.Credentials{Email: fallbackEmail, Password: fallbackPassword}, true)
	require.ErrorIs(t, err, ErrLocalDataNotAvailable)
	assert.False(t, a.IsAuthenticated())
}

func TestLogin_NoFallbackForUserLogin(t *testing.T) {
	backend := &fakeAuthBackend{LoginErr: errUnavailable}
	a, _ := newAuth(t, backend, WithFallbackAdmin(testFallbackAdmin(t)))

	_, err := a.Login(context.Background(), models.Credentials{Email: fallbackEmail, Password: fallbackPassword}, false)
	require.ErrorIs(t, err, client.ErrUnavailable)
	assert.False(t, a.IsAuthenticated())
}

func TestLogin_AdminLoginRejectsPlainUser(t *testing.T) {
	backend := &fakeAuthBackend{LoginPrincipal: userPrincipal, LoginToken: "jwt"}
	a, _ := newAuth(t, backend)

	_, err := a.Login(context.Background(), models.Credentials{Email: "uma@example.com", Password: "pw"}, true)
	require.ErrorIs(t, err, ErrPermissionDenied)
	assert.False(t, a.IsAuthenticated())
}

func TestRestoreSession_NoStoredToken(t *testing.T) {
	backend := &fakeAuthBackend{}
	a, _ := newAuth(t, backend)

	require.NoError(t, a.RestoreSession(context.Background()))
	assert.False(t, a.IsAuthenticated())
	assert.Equal(t, 0, backend.ProfileCalls)
}

func TestRestoreSession_RealTokenFetchesProfile(t *testing.T) {
	backend := &fakeAuthBackend{ProfilePrincipal: adminPrincipal}
	a, st := newAuth(t, backend)
	ctx := context.Background()
	require.NoError(t, st.Set(ctx, store.KeyToken, []byte("opaque-real")))

	require.NoError(t, a.RestoreSession(ctx))
	assert.True(t, a.IsAuthenticated())
	assert.Equal(t, 1, backend.ProfileCalls)
	assert.Equal(t, "opaque-real", backend.Installed)
	p, ok := a.Principal()
	require.True(t, ok)
	assert.Equal(t, adminPrincipal.ID, p.ID)
}

func TestRestoreSession_RealTokenRejectedLogsOut(t *testing.T) {
	backend := &fakeAuthBackend{ProfileErr: errUnauthorized}
	rec := &Recorder{}
	a, st := newAuth(t, backend, WithAuthNotifier(rec))
	ctx := context.Background()
	require.NoError(t, st.Set(ctx, store.KeyToken, []byte("stale-real")))

	redirected := false
	a.OnLogout(func() { redirected = true })

	err := a.RestoreSession(ctx)
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.False(t, a.IsAuthenticated())
	assert.True(t, redirected)

	raw, err := st.Get(ctx, store.KeyToken)
	require.NoError(t, err)
	assert.Nil(t, raw)
	require.NotEmpty(t, rec.Notices())
	assert.Equal(t, NoticeWarning, rec.Notices()[0].Kind)
}

func TestRestoreSession_ExpiredJWTSkipsBackend(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, authtoken.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour))},
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	backend := &fakeAuthBackend{ProfilePrincipal: adminPrincipal}
	a, st := newAuth(t, backend, WithClock(func() time.Time { return now }))
	ctx := context.Background()
	require.NoError(t, st.Set(ctx, store.KeyToken, []byte(tok)))

	err = a.RestoreSession(ctx)
	require.ErrorIs(t, err, common.ErrTokenExpired)
	assert.False(t, a.IsAuthenticated())
	assert.Equal(t, 0, backend.ProfileCalls)
}

func TestRestoreSession_FallbackTokenUsesSnapshot(t *testing.T) {
	backend := &fakeAuthBackend{ProfileErr: errUnauthorized}
	a, st := newAuth(t, backend)
	ctx := context.Background()
	require.NoError(t, st.Set(ctx, store.KeyToken, []byte(common.FallbackTokenPrefix+"abc")))
	require.NoError(t, store.SetJSON(ctx, st, store.KeyPrincipal, adminPrincipal))

	require.NoError(t, a.RestoreSession(ctx))
	assert.True(t, a.IsAuthenticated())
	assert.True(t, a.Token().IsFallback())
	assert.Equal(t, 0, backend.ProfileCalls)
}

func TestRestoreSession_FallbackTokenWithoutSnapshotLogsOut(t *testing.T) {
	a, st := newAuth(t, &fakeAuthBackend{})
	ctx := context.Background()
	require.NoError(t, st.Set(ctx, store.KeyToken, []byte(common.FallbackTokenPrefix+"abc")))

	err := a.RestoreSession(ctx)
	require.ErrorIs(t, err, ErrLocalDataNotAvailable)
	assert.False(t, a.IsAuthenticated())
}

func TestHandleUnauthorized_RealTokenForcesLogout(t *testing.T) {
	a, _ := newAuth(t, &fakeAuthBackend{})
	loginAs(t, a, adminPrincipal, "real-token")

	redirected := 0
	a.OnLogout(func() { redirected++ })

	assert.False(t, a.HandleUnauthorized(context.Background(), errUnavailable))
	assert.True(t, a.IsAuthenticated())

	assert.True(t, a.HandleUnauthorized(context.Background(), errUnauthorized))
	assert.False(t, a.IsAuthenticated())
	assert.Equal(t, 1, redirected)
}

func TestHandleUnauthorized_FallbackTokenKeepsSession(t *testing.T) {
	a, _ := newAuth(t, &fakeAuthBackend{})
	loginAs(t, a, adminPrincipal, models.SessionToken(common.FallbackTokenPrefix+"xyz"))

	assert.False(t, a.HandleUnauthorized(context.Background(), errUnauthorized))
	assert.True(t, a.IsAuthenticated())
}

func TestPrincipal_ReturnsCopy(t *testing.T) {
	a, _ := newAuth(t, &fakeAuthBackend{})
	loginAs(t, a, subAdmin(models.PermissionSet{models.PermWriteBlog: true}), "real-token")

	p, ok := a.Principal()
	require.True(t, ok)
	p.Permissions[models.PermDeleteBlog] = true

	assert.False(t, a.HasPermission(models.PermDeleteBlog))
}
