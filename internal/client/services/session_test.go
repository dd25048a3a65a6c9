package services

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/carbuyer/internal/client/client"
	"github.com/dmitrijs2005/carbuyer/internal/client/credentials"
	"github.com/dmitrijs2005/carbuyer/internal/client/models"
)

func newTestSession(t *testing.T, api *fakeAPI) (*Session, *credentials.MemoryStore, *recordingNav) {
	t.Helper()
	store := credentials.NewMemoryStore()
	nav := &recordingNav{}
	return NewSession(api, store, nav, nopLog()), store, nav
}

func storedToken(t *testing.T, s credentials.Store) (string, bool) {
	t.Helper()
	tok, ok, err := s.Read(context.Background())
	require.NoError(t, err)
	return tok, ok
}

func TestSession_LoadingUntilStart(t *testing.T) {
	s, _, _ := newTestSession(t, newFakeAPI())

	v := s.Snapshot()
	assert.True(t, v.Loading)
	assert.True(t, s.Loading())
	assert.Equal(t, StateUnknown, v.State)

	s.Start(context.Background())
	assert.False(t, s.Loading())
}

func TestSession_StartWithoutToken(t *testing.T) {
	api := newFakeAPI()
	s, _, _ := newTestSession(t, api)

	s.Start(context.Background())

	assert.Equal(t, StateAnonymous, s.Snapshot().State)
	assert.Zero(t, api.count("Me"))
}

func TestSession_StartRejectedTokenIsCleared(t *testing.T) {
	api := newFakeAPI()
	api.MeErr = &client.APIError{StatusCode: 401, Message: "invalid or expired token"}
	s, store, nav := newTestSession(t, api)
	require.NoError(t, store.Write(context.Background(), "expired"))

	s.Start(context.Background())

	v := s.Snapshot()
	assert.Equal(t, StateAnonymous, v.State)
	assert.Nil(t, v.User)
	assert.False(t, v.Loading)
	_, ok := storedToken(t, store)
	assert.False(t, ok)
	assert.Empty(t, nav.routes)
}

func TestSession_StartRestoresUser(t *testing.T) {
	tests := []struct {
		name string
		user *models.User
		want State
	}{
		{"with preferences", withPrefs(), StateAuthenticated},
		{"without preferences", withoutPrefs(), StateNeedsPreferences},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			api.MeResp = tt.user
			s, store, _ := newTestSession(t, api)
			require.NoError(t, store.Write(context.Background(), "tok"))

			s.Start(context.Background())

			v := s.Snapshot()
			assert.Equal(t, tt.want, v.State)
			assert.Equal(t, "u1", v.User.ID)
			tok, ok := storedToken(t, store)
			assert.True(t, ok)
			assert.Equal(t, "tok", tok)
		})
	}
}

func TestSession_LoginRefetchesUserWithNewToken(t *testing.T) {
	api := newFakeAPI()
	api.LoginResp = &models.AuthResponse{Token: "T", User: *withoutPrefs()}
	api.MeResp = withPrefs()
	var seen string
	api.TokenAtMe = &seen
	s, store, nav := newTestSession(t, api)
	api.Store = store
	s.Start(context.Background())

	require.NoError(t, s.Login(context.Background(), "a@b.c", "pw"))

	assert.Equal(t, "T", seen)
	tok, _ := storedToken(t, store)
	assert.Equal(t, "T", tok)
	assert.Equal(t, StateAuthenticated, s.Snapshot().State)
	assert.Equal(t, RouteDashboard, nav.last())
}

func TestSession_LoginFallsBackToResponseUser(t *testing.T) {
	api := newFakeAPI()
	api.LoginResp = &models.AuthResponse{Token: "T", User: *withoutPrefs()}
	api.MeErr = errBoom
	s, _, nav := newTestSession(t, api)
	s.Start(context.Background())

	require.NoError(t, s.Login(context.Background(), "a@b.c", "pw"))

	v := s.Snapshot()
	assert.Equal(t, StateNeedsPreferences, v.State)
	assert.Equal(t, "a@b.c", v.User.Email)
	assert.Equal(t, RouteOnboarding, nav.last())
}

func TestSession_LoginFailureLeavesSession(t *testing.T) {
	api := newFakeAPI()
	api.LoginErr = &client.APIError{StatusCode: 401, Message: "invalid credentials"}
	s, store, nav := newTestSession(t, api)
	s.Start(context.Background())

	err := s.Login(context.Background(), "a@b.c", "bad")
	require.Error(t, err)
	assert.Equal(t, "invalid credentials", client.ErrorMessage(err, "Login failed"))

	assert.Equal(t, StateAnonymous, s.Snapshot().State)
	_, ok := storedToken(t, store)
	assert.False(t, ok)
	assert.Empty(t, nav.routes)
}

func TestSession_RegisterUsesResponseUser(t *testing.T) {
	api := newFakeAPI()
	api.RegisterResp = &models.AuthResponse{Token: "R", User: *withoutPrefs()}
	s, store, nav := newTestSession(t, api)
	s.Start(context.Background())

	require.NoError(t, s.Register(context.Background(), "a@b.c", "pw"))

	assert.Zero(t, api.count("Me"))
	tok, _ := storedToken(t, store)
	assert.Equal(t, "R", tok)
	assert.Equal(t, StateNeedsPreferences, s.Snapshot().State)
	assert.Equal(t, RouteDashboard, nav.last())
}

func TestSession_LogoutAlwaysClears(t *testing.T) {
	for _, serverErr := range []error{nil, errBoom} {
		api := newFakeAPI()
		api.MeResp = withPrefs()
		api.LogoutErr = serverErr
		s, store, nav := newTestSession(t, api)
		require.NoError(t, store.Write(context.Background(), "tok"))
		s.Start(context.Background())
		require.Equal(t, StateAuthenticated, s.Snapshot().State)

		s.Logout(context.Background())

		v := s.Snapshot()
		assert.Equal(t, StateAnonymous, v.State)
		assert.Nil(t, v.User)
		_, ok := storedToken(t, store)
		assert.False(t, ok)
		assert.Equal(t, RouteLogin, nav.last())
		assert.Equal(t, 1, api.count("Logout"))
	}
}

// blockFirstMe makes the first Me call wait until release is closed.
func blockFirstMe(api *fakeAPI) (entered, release chan struct{}) {
	entered, release = make(chan struct{}), make(chan struct{})
	var n atomic.Int32
	api.BeforeMe = func() {
		if n.Add(1) == 1 {
			close(entered)
			<-release
		}
	}
	return entered, release
}

func TestSession_LogoutDuringRestore(t *testing.T) {
	api := newFakeAPI()
	api.MeResp = withPrefs()
	entered, release := blockFirstMe(api)
	s, store, nav := newTestSession(t, api)
	require.NoError(t, store.Write(context.Background(), "tok"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Start(context.Background())
	}()
	<-entered

	s.Logout(context.Background())
	close(release)
	<-done

	v := s.Snapshot()
	assert.Equal(t, StateAnonymous, v.State)
	assert.Nil(t, v.User)
	assert.False(t, v.Loading)
	_, ok := storedToken(t, store)
	assert.False(t, ok)
	assert.Equal(t, RouteLogin, nav.last())
}

func TestSession_LoginDuringRestoreKeepsNewToken(t *testing.T) {
	api := newFakeAPI()
	api.MeErr = errBoom
	api.LoginResp = &models.AuthResponse{Token: "fresh", User: *withPrefs()}
	entered, release := blockFirstMe(api)
	s, store, nav := newTestSession(t, api)
	require.NoError(t, store.Write(context.Background(), "stale"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Start(context.Background())
	}()
	<-entered

	require.NoError(t, s.Login(context.Background(), "a@b.c", "pw"))
	close(release)
	<-done

	tok, ok := storedToken(t, store)
	require.True(t, ok)
	assert.Equal(t, "fresh", tok)
	v := s.Snapshot()
	assert.Equal(t, StateAuthenticated, v.State)
	assert.False(t, v.Loading)
	assert.Equal(t, RouteDashboard, nav.last())
}

func TestSession_RefreshUser(t *testing.T) {
	api := newFakeAPI()
	api.MeResp = withoutPrefs()
	s, store, _ := newTestSession(t, api)
	require.NoError(t, store.Write(context.Background(), "tok"))
	s.Start(context.Background())

	api.MeErr = errBoom
	s.RefreshUser(context.Background())
	assert.Equal(t, StateNeedsPreferences, s.Snapshot().State)

	api.MeErr = nil
	api.MeResp = withPrefs()
	s.RefreshUser(context.Background())
	assert.Equal(t, StateAuthenticated, s.Snapshot().State)
}

func TestSession_SnapshotIsACopy(t *testing.T) {
	api := newFakeAPI()
	api.MeResp = withPrefs()
	s, store, _ := newTestSession(t, api)
	require.NoError(t, store.Write(context.Background(), "tok"))
	s.Start(context.Background())

	v := s.Snapshot()
	v.User.Preferences.Make = "Changed"
	assert.Equal(t, "Mazda", s.Snapshot().User.Preferences.Make)
}

func TestSession_Subscribe(t *testing.T) {
	api := newFakeAPI()
	api.RegisterResp = &models.AuthResponse{Token: "R", User: *withoutPrefs()}
	s, _, _ := newTestSession(t, api)

	var got []State
	unsubscribe := s.Subscribe(func(v SessionView) { got = append(got, v.State) })

	s.Start(context.Background())
	require.NoError(t, s.Register(context.Background(), "a@b.c", "pw"))
	unsubscribe()
	s.Logout(context.Background())

	assert.Equal(t, []State{StateAnonymous, StateNeedsPreferences}, got)
}

func TestGuard(t *testing.T) {
	loading := SessionView{Loading: true}
	anon := SessionView{State: StateAnonymous}
	noPrefs := SessionView{State: StateNeedsPreferences, User: withoutPrefs()}
	full := SessionView{State: StateAuthenticated, User: withPrefs()}

	tests := []struct {
		name     string
		view     SessionView
		route    Route
		redirect Route
		render   bool
	}{
		{"loading dashboard", loading, RouteDashboard, "", false},
		{"loading login", loading, RouteLogin, "", false},
		{"anonymous dashboard", anon, RouteDashboard, RouteLogin, false},
		{"anonymous settings", anon, RouteSettings, RouteLogin, false},
		{"anonymous onboarding", anon, RouteOnboarding, RouteLogin, false},
		{"anonymous login", anon, RouteLogin, "", true},
		{"no prefs dashboard", noPrefs, RouteDashboard, RouteOnboarding, false},
		{"no prefs settings", noPrefs, RouteSettings, RouteOnboarding, false},
		{"no prefs onboarding", noPrefs, RouteOnboarding, "", true},
		{"no prefs login", noPrefs, RouteLogin, RouteOnboarding, false},
		{"full dashboard", full, RouteDashboard, "", true},
		{"full settings", full, RouteSettings, "", true},
		{"full onboarding", full, RouteOnboarding, RouteDashboard, false},
		{"full login", full, RouteLogin, RouteDashboard, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			redirect, render := Guard(tt.view, tt.route)
			assert.Equal(t, tt.redirect, redirect)
			assert.Equal(t, tt.render, render)
		})
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "authenticated", StateAuthenticated.String())
	assert.Equal(t, "State(42)", State(42).String())
}
