package cli

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dmitrijs2005/brokerdesk/internal/client/models"
	"github.com/dmitrijs2005/brokerdesk/internal/common"
	"github.com/dmitrijs2005/brokerdesk/internal/cryptox"
)

// getPassword is a test seam for GetPassword.
var getPassword = GetPassword

// Login prompts for credentials and starts a session. With admin set the
// admin endpoint is used and, while the backend is unreachable, the local
// fallback credential is accepted.
func (a *App) Login(ctx context.Context, admin bool) error {
	if a.isLoggedIn() {
		printlnFn("Already logged in; use 'logout' first")
		return nil
	}

	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	_, err = a.auth.Login(ctx, models.Credentials{Email: email, Password: string(password)}, admin)
	return err
}

// Logout ends the current session.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Not logged in")
		return nil
	}
	a.auth.Logout(ctx)
	return nil
}

// Whoami prints the signed-in account and its grants.
func (a *App) Whoami(_ context.Context) error {
	p, ok := a.auth.Principal()
	if !ok {
		printlnFn("Not logged in")
		return nil
	}
	a.printf("%s <%s>\nrole: %s\n", p.Name, p.Email, p.Role)
	if a.auth.Token().IsFallback() {
		a.printf("session: offline (local credential)\n")
	}
	if p.Role == models.RoleSubAdmin {
		a.printf("permissions: %s\n", grantedList(p.Permissions))
	}
	return nil
}

// Status prints backend reachability and the number of records that only
// exist locally.
func (a *App) Status(ctx context.Context) error {
	state := "online"
	if !a.monitor.Online() {
		state = "offline"
	}
	a.printf("backend: %s (%s)\n", a.config.APIBaseURL, state)
	for _, v := range a.views {
		n, err := v.localCount(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			a.printf("  %-15s %d saved locally\n", v.name(), n)
		}
	}
	return nil
}

func grantedList(s models.PermissionSet) string {
	var keys []string
	for p, granted := range s {
		if granted && p.Valid() {
			keys = append(keys, p.String())
		}
	}
	if len(keys) == 0 {
		return "(none)"
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}

// HashPassword reads a password and prints the salt and verifier to put in
// the offline admin settings.
func HashPassword(w io.Writer) error {
	password, err := getPassword(w)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	if len(password) == 0 {
		return fmt.Errorf("%w: empty password", errUsage)
	}
	salt, verifier := cryptox.NewCredential(password)
	_, err = fmt.Fprintf(w, "BROKERDESK_FALLBACK_ADMIN_SALT=%s\nBROKERDESK_FALLBACK_ADMIN_VERIFIER=%s\n",
		hex.EncodeToString(salt), hex.EncodeToString(verifier))
	return err
}
