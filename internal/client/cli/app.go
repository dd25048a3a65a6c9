package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/carbuyer/internal/client/client"
	"github.com/dmitrijs2005/carbuyer/internal/client/config"
	"github.com/dmitrijs2005/carbuyer/internal/client/credentials"
	"github.com/dmitrijs2005/carbuyer/internal/client/services"
	"github.com/dmitrijs2005/carbuyer/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// App is the terminal dashboard. It owns the route the user is on and
// wires the session, dashboard and settings services to the REPL.
type App struct {
	config     *config.Config
	api        client.Client
	store      credentials.Store
	session    *services.Session
	dashboard  *services.Dashboard
	onboarding *services.Onboarding
	gmail      services.GmailService
	sms        services.SMSService
	log        logging.Logger
	db         *sql.DB

	reader *bufio.Reader
	out    io.Writer

	mu    sync.Mutex
	route services.Route
	mode  Mode
}

// NewApp opens the local database, builds the API client and the services
// on top of it.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	var (
		store credentials.Store
		db    *sql.DB
	)
	if c.DatabasePath == ":memory:" {
		store = credentials.NewMemoryStore()
	} else {
		var err error
		db, err = client.InitDatabase(ctx, c.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("initialize database: %w", err)
		}
		store = credentials.NewSQLiteStore(db)
	}

	api, err := client.New(c.APIURL, store, client.WithLogger(log), client.WithTimeout(c.RequestTimeout))
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}

	a := newApp(api, store, log, os.Stdin, os.Stdout)
	a.config = c
	a.db = db
	return a, nil
}

func newApp(api client.Client, store credentials.Store, log logging.Logger, in io.Reader, out io.Writer) *App {
	a := &App{
		api:    api,
		store:  store,
		log:    log,
		reader: bufio.NewReader(in),
		out:    out,
		route:  services.RouteDashboard,
	}
	a.session = services.NewSession(api, store, a, log)
	a.dashboard = services.NewDashboard(api, a.session, services.NewEvents(), log)
	a.onboarding = services.NewOnboarding(api, a.session, a, log)
	a.gmail = services.NewGmailService(api, log)
	a.sms = services.NewSMSService(api, log)
	return a
}

// Navigate moves the app to r.
func (a *App) Navigate(r services.Route) {
	a.mu.Lock()
	a.route = r
	a.mu.Unlock()
}

func (a *App) currentRoute() services.Route {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.route
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()
	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

func (a *App) currentMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// guard applies the route guard for the route a command belongs to. It
// prints the loading indicator or follows a redirect and reports whether
// the command may run.
func (a *App) guard(route services.Route) bool {
	redirect, render := services.Guard(a.session.Snapshot(), route)
	if render {
		a.Navigate(route)
		return true
	}
	if redirect == "" {
		printlnFn("Loading...")
		return false
	}
	a.Navigate(redirect)
	printlnFn(fmt.Sprintf("Redirected to %s", redirect))
	return false
}

// getStatus renders the prompt status: route, user and connectivity.
func (a *App) getStatus() string {
	view := a.session.Snapshot()
	s := string(a.currentRoute())
	if view.User != nil {
		s += " " + view.User.Email
		if n := a.dashboard.TotalUnread(); n > 0 {
			s += fmt.Sprintf(" [%s unread]", unreadBadge(n))
		}
	}
	if m := a.currentMode(); m != "" {
		s += " " + string(m)
	}
	return fmt.Sprintf("(%s)", s)
}

// Run restores the session in the background, starts the connectivity and
// inbox watchers and blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		a.session.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		interval := 30 * time.Second
		if a.config != nil {
			interval = a.config.OnlineCheckInterval
		}
		a.StartOnlineStatusWatcher(ctx, interval)
	}()
	go func() {
		defer wg.Done()
		a.dashboard.WatchInbox(ctx)
	}()

	printlnFn("Welcome to carbuyer (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)

	cancel()
	wg.Wait()
}

// Close releases the local database.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// StartOnlineStatusWatcher pings the backend every interval and flips the
// connectivity mode shown in the prompt. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.api.Ping(pingCtx)
	cancel()

	if ctx.Err() != nil {
		return
	}
	if err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}
