package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/carbuyer/internal/client/client"
	"github.com/dmitrijs2005/carbuyer/internal/client/models"
)

var cx90 = models.Preferences{Year: 2024, Make: "Mazda", Model: "CX-90"}

func startedSession(t *testing.T, api *fakeAPI, user *models.User) (*Session, *recordingNav) {
	t.Helper()
	api.MeResp = user
	s, store, nav := newTestSession(t, api)
	require.NoError(t, store.Write(context.Background(), "tok"))
	s.Start(context.Background())
	return s, nav
}

func TestOnboarding_Submit(t *testing.T) {
	api := newFakeAPI()
	s, nav := startedSession(t, api, withoutPrefs())
	o := NewOnboarding(api, s, nav, nopLog())

	api.MeResp = withPrefs()
	require.NoError(t, o.Submit(context.Background(), cx90))

	assert.Equal(t, cx90, api.LastPrefs)
	assert.Equal(t, StateAuthenticated, s.Snapshot().State)
	assert.Equal(t, RouteDashboard, nav.last())
}

func TestOnboarding_LockedOnceSet(t *testing.T) {
	api := newFakeAPI()
	s, nav := startedSession(t, api, withPrefs())
	o := NewOnboarding(api, s, nav, nopLog())

	require.ErrorIs(t, o.Submit(context.Background(), cx90), ErrPreferencesLocked)
	assert.Zero(t, api.count("CreatePreferences"))
}

func TestOnboarding_Validation(t *testing.T) {
	api := newFakeAPI()
	s, nav := startedSession(t, api, withoutPrefs())
	o := NewOnboarding(api, s, nav, nopLog())

	err := o.Submit(context.Background(), models.Preferences{Year: 1990, Make: "Mazda", Model: "CX-90"})
	require.ErrorIs(t, err, ErrInvalidPreferences)
	require.ErrorIs(t, err, models.ErrInvalidYear)

	err = o.Submit(context.Background(), models.Preferences{Year: 2024, Model: "CX-90"})
	require.ErrorIs(t, err, models.ErrMakeRequired)

	assert.Zero(t, api.count("CreatePreferences"))
}

func TestOnboarding_ServerError(t *testing.T) {
	api := newFakeAPI()
	s, nav := startedSession(t, api, withoutPrefs())
	o := NewOnboarding(api, s, nav, nopLog())
	api.PrefsErr = &client.APIError{StatusCode: 400}

	err := o.Submit(context.Background(), cx90)
	require.Error(t, err)
	assert.Equal(t, MsgSavePreferencesFailed, client.ErrorMessage(err, MsgSavePreferencesFailed))
	assert.Equal(t, StateNeedsPreferences, s.Snapshot().State)
	assert.Empty(t, nav.routes)
}

func TestOnboarding_RequiresUser(t *testing.T) {
	api := newFakeAPI()
	s, _, nav := newTestSession(t, api)
	s.Start(context.Background())
	o := NewOnboarding(api, s, nav, nopLog())

	require.ErrorIs(t, o.Submit(context.Background(), cx90), ErrNotAuthenticated)
}
