package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/brokerdesk/internal/client/client"
	"github.com/dmitrijs2005/brokerdesk/internal/client/config"
	"github.com/dmitrijs2005/brokerdesk/internal/client/images"
	"github.com/dmitrijs2005/brokerdesk/internal/client/services"
	"github.com/dmitrijs2005/brokerdesk/internal/client/store"
	"github.com/dmitrijs2005/brokerdesk/internal/filex"
	"github.com/dmitrijs2005/brokerdesk/internal/logging"
)

var errUsage = errors.New("usage")

// App is the interactive back-office client. It owns the local database
// and every service the REPL commands call into.
type App struct {
	config   *config.Config
	log      logging.Logger
	db       *sql.DB
	auth     *services.AuthService
	monitor  *services.Monitor
	catalog  *services.Catalog
	admins   *services.SubAdminService
	uploader images.Uploader
	views    []resourceCmd

	reader *bufio.Reader
	outMu  sync.Mutex
	out    io.Writer
}

// NewApp opens the local store and wires the REST client and services
// according to cfg.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	if err := filex.EnsureParentDir(cfg.DatabasePath); err != nil {
		return nil, fmt.Errorf("prepare database dir: %w", err)
	}
	db, err := store.OpenSQLite(ctx, cfg.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", cfg.DatabasePath, "error", err)
		return nil, err
	}

	api, err := client.New(cfg.APIBaseURL, cfg.RequestTimeout, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	salt, verifier, err := cfg.FallbackCredential()
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	var up images.Uploader
	s3cfg := images.S3Config{
		Bucket:        cfg.S3Bucket,
		Region:        cfg.S3Region,
		BaseEndpoint:  cfg.S3BaseEndpoint,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		PublicBaseURL: cfg.S3PublicBaseURL,
	}
	if s3cfg.Enabled() {
		u, err := images.NewS3Uploader(ctx, s3cfg, log)
		if err != nil {
			log.Warn(ctx, "image uploads disabled", "error", err)
		} else {
			up = u
		}
	}

	a := &App{
		config:   cfg,
		log:      log,
		db:       db,
		uploader: up,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}

	st := store.NewSQLiteStore(db)
	a.monitor = services.NewMonitor(api, cfg.OnlineCheckInterval, log)
	a.auth = services.NewAuthService(api, st, log,
		services.WithFallbackAdmin(services.FallbackAdmin{
			Email:    cfg.FallbackAdminEmail,
			Salt:     salt,
			Verifier: verifier,
		}),
		services.WithAuthNotifier(a),
		services.WithAuthConnectivity(a.monitor),
	)
	a.catalog = services.NewCatalog(api, st, a.auth, log, cfg.PlaceholderImageURL, services.ResourceOptions{
		Retry: client.RetryPolicy{
			MaxRetries: cfg.RetryMaxAttempts,
			BaseDelay:  cfg.RetryBaseDelay,
			MaxDelay:   cfg.RetryMaxDelay,
		},
		FallbackOnValidation: cfg.FallbackOnValidation,
		Connectivity:         a.monitor,
		Notifier:             a,
	})
	a.admins = services.NewSubAdminService(api, a.auth, a, log)
	a.views = a.buildViews()

	a.monitor.OnChange(func(online bool) {
		if online {
			a.Notify(services.Notice{Kind: services.NoticeInfo, Message: "Switched to online mode"})
		} else {
			a.Notify(services.Notice{Kind: services.NoticeWarning, Message: "Switched to offline mode"})
		}
	})

	return a, nil
}

// Notify prints a notice. It is safe to call from the watcher goroutine.
func (a *App) Notify(n services.Notice) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, "[%s] %s\n", n.Kind, n.Message)
}

func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}

// Run restores the previous session, starts the connectivity watcher and
// blocks in the REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	printlnFn("Welcome to BrokerDesk CLI (type 'help' for commands)")

	if err := a.auth.RestoreSession(ctx); err != nil {
		a.log.Info(ctx, "no session restored", "error", err)
	} else if p, ok := a.auth.Principal(); ok {
		a.printf("Resumed session of %s (%s)\n", p.Name, p.Role)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.monitor.Run(watchCtx)

	runREPL(ctx, a, a.getStatus, a.reader)
}

// Close releases the local database.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn(context.Background(), "close database", "error", err)
		}
		a.db = nil
	}
}

func (a *App) isLoggedIn() bool {
	return a.auth.IsAuthenticated()
}

func (a *App) getStatus() string {
	s := ""
	if p, ok := a.auth.Principal(); ok {
		s = p.Name + " "
	}
	if a.monitor.Online() {
		s += "online"
	} else {
		s += "offline"
	}
	return fmt.Sprintf("(%s)", s)
}

// describeError turns a command failure into a one-line message.
func describeError(err error) string {
	switch {
	case errors.Is(err, errUsage):
		return err.Error()
	case errors.Is(err, services.ErrNotAuthenticated):
		return "please log in first"
	case services.IsPermissionError(err):
		return err.Error()
	default:
		return client.Message(err)
	}
}
