// Package services holds the state of the carbuyer client: the session
// controller, the dashboard state and the small services behind the
// onboarding, Gmail and SMS views.
package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/carbuyer/internal/client/client"
	"github.com/dmitrijs2005/carbuyer/internal/client/credentials"
	"github.com/dmitrijs2005/carbuyer/internal/client/models"
	"github.com/dmitrijs2005/carbuyer/internal/logging"
)

// State is the client's belief about authentication and onboarding.
type State int

const (
	StateUnknown State = iota
	StateRestoring
	StateAnonymous
	// StateNeedsPreferences is an authenticated user without a target vehicle.
	StateNeedsPreferences
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateRestoring:
		return "restoring"
	case StateAnonymous:
		return "anonymous"
	case StateNeedsPreferences:
		return "needs-preferences"
	case StateAuthenticated:
		return "authenticated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Route string

const (
	RouteLogin      Route = "/login"
	RouteOnboarding Route = "/onboarding"
	RouteDashboard  Route = "/dashboard"
	RouteSettings   Route = "/settings"
)

// Navigator moves the view layer to a route.
type Navigator interface {
	Navigate(Route)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(Route)

func (f NavigatorFunc) Navigate(r Route) { f(r) }

// SessionView is a read-only snapshot of the session.
type SessionView struct {
	State   State
	User    *models.User
	Loading bool
}

// Session is the single writer of the session state. Views read it through
// Snapshot and Subscribe.
type Session struct {
	api   client.AuthAPI
	store credentials.Store
	nav   Navigator
	log   logging.Logger

	mu      sync.RWMutex
	state   State
	user    *models.User
	loading bool
	// epoch advances on every login, register, logout and refresh. A restore
	// that finishes under a newer epoch is discarded.
	epoch uint64

	subMu   sync.Mutex
	subs    map[int]func(SessionView)
	nextSub int
}

// NewSession returns a session that is loading until Start resolves it.
func NewSession(api client.AuthAPI, store credentials.Store, nav Navigator, log logging.Logger) *Session {
	if nav == nil {
		nav = NavigatorFunc(func(Route) {})
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Session{
		api:     api,
		store:   store,
		nav:     nav,
		log:     log,
		state:   StateUnknown,
		loading: true,
		subs:    make(map[int]func(SessionView)),
	}
}

func stateFor(u *models.User) State {
	switch {
	case u == nil:
		return StateAnonymous
	case u.HasPreferences():
		return StateAuthenticated
	default:
		return StateNeedsPreferences
	}
}

// Start restores the session from the stored token. A token the server
// rejects is cleared and the session becomes anonymous. Loading stays true
// until Start returns. If the user logs in or out while the restore is in
// flight, its result is dropped.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	s.state = StateRestoring
	epoch := s.epoch
	s.mu.Unlock()

	user := s.restore(ctx, epoch)

	s.mu.Lock()
	if s.epoch != epoch {
		s.loading = false
		s.mu.Unlock()
		s.log.Debug(ctx, "session changed during restore, dropping result")
		s.notify()
		return
	}
	s.user = user
	s.state = stateFor(user)
	s.loading = false
	s.mu.Unlock()
	s.notify()
}

func (s *Session) current(epoch uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch == epoch
}

func (s *Session) restore(ctx context.Context, epoch uint64) *models.User {
	_, ok, err := s.store.Read(ctx)
	if err != nil {
		s.log.Warn(ctx, "read stored token", "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		if !s.current(epoch) {
			// the stored token now belongs to a newer login
			return nil
		}
		s.log.Info(ctx, "stored session rejected, signing out", "error", err)
		if err := s.store.Clear(ctx); err != nil {
			s.log.Error(ctx, "clear stored token", "error", err)
		}
		return nil
	}
	return user
}

// Login authenticates, persists the token and re-fetches the full user. If
// the re-fetch fails the user from the login response is used. On error the
// session is left unchanged.
func (s *Session) Login(ctx context.Context, email, password string) error {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := s.store.Write(ctx, resp.Token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		s.log.Warn(ctx, "fetch user after login, using login response", "error", err)
		u := resp.User
		user = &u
	}

	s.setUser(user)
	if user.HasPreferences() {
		s.nav.Navigate(RouteDashboard)
	} else {
		s.nav.Navigate(RouteOnboarding)
	}
	return nil
}

// Register creates the account, persists the token and takes the user from
// the response. It always navigates to the dashboard; the dashboard guard
// sends a user without preferences on to onboarding.
func (s *Session) Register(ctx context.Context, email, password string) error {
	resp, err := s.api.Register(ctx, email, password)
	if err != nil {
		return err
	}
	if err := s.store.Write(ctx, resp.Token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}

	u := resp.User
	s.setUser(&u)
	s.nav.Navigate(RouteDashboard)
	return nil
}

// Logout tells the server on a best-effort basis, then always clears the
// stored token and the user and navigates to the login route.
func (s *Session) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		s.log.Warn(ctx, "server logout failed", "error", err)
	}
	if err := s.store.Clear(ctx); err != nil {
		s.log.Error(ctx, "clear stored token", "error", err)
	}
	s.setUser(nil)
	s.nav.Navigate(RouteLogin)
}

// RefreshUser replaces the user with the server's current copy. Failures
// are logged and leave the session unchanged.
func (s *Session) RefreshUser(ctx context.Context) {
	user, err := s.api.Me(ctx)
	if err != nil {
		s.log.Warn(ctx, "refresh user", "error", err)
		return
	}
	s.setUser(user)
}

func (s *Session) setUser(u *models.User) {
	s.mu.Lock()
	s.epoch++
	s.user = u
	s.state = stateFor(u)
	s.loading = false
	s.mu.Unlock()
	s.notify()
}

func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) Snapshot() SessionView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionView{State: s.state, User: s.user.Clone(), Loading: s.loading}
}

// Subscribe calls fn with a fresh snapshot after every state change until
// the returned function is called.
func (s *Session) Subscribe(fn func(SessionView)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Session) notify() {
	view := s.Snapshot()

	s.subMu.Lock()
	fns := make([]func(SessionView), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(view)
	}
}

// Guard decides what a route shows for a session. While loading nothing but
// a loading indicator renders and no redirect happens. Otherwise it returns
// the route to redirect to, or render=true when the route may render.
func Guard(view SessionView, route Route) (redirect Route, render bool) {
	if view.Loading || view.State == StateUnknown || view.State == StateRestoring {
		return "", false
	}

	switch route {
	case RouteLogin:
		switch view.State {
		case StateAuthenticated:
			return RouteDashboard, false
		case StateNeedsPreferences:
			return RouteOnboarding, false
		}
		return "", true

	case RouteOnboarding:
		switch view.State {
		case StateAnonymous:
			return RouteLogin, false
		case StateAuthenticated:
			return RouteDashboard, false
		}
		return "", true

	default:
		switch view.State {
		case StateAnonymous:
			return RouteLogin, false
		case StateNeedsPreferences:
			return RouteOnboarding, false
		}
		return "", true
	}
}
