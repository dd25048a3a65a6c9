package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/carbuyer/internal/client/client"
	"github.com/dmitrijs2005/carbuyer/internal/client/models"
	"github.com/dmitrijs2005/carbuyer/internal/logging"
)

// Onboarding records the target vehicle of a user that has none yet.
type Onboarding struct {
	api     client.PreferencesAPI
	session *Session
	nav     Navigator
	log     logging.Logger
}

func NewOnboarding(api client.PreferencesAPI, session *Session, nav Navigator, log logging.Logger) *Onboarding {
	if nav == nil {
		nav = NavigatorFunc(func(Route) {})
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Onboarding{api: api, session: session, nav: nav, log: log}
}

// Submit saves p, refreshes the user so the session sees the preferences
// and moves to the dashboard. Preferences that are already set are locked.
func (o *Onboarding) Submit(ctx context.Context, p models.Preferences) error {
	view := o.session.Snapshot()
	if view.User == nil {
		return ErrNotAuthenticated
	}
	if view.User.HasPreferences() {
		return ErrPreferencesLocked
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPreferences, err)
	}

	if _, err := o.api.CreatePreferences(ctx, p); err != nil {
		o.log.Error(ctx, "save preferences", "error", err)
		return err
	}

	o.session.RefreshUser(ctx)
	o.nav.Navigate(RouteDashboard)
	return nil
}
