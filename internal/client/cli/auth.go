package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/carbuyer/internal/client/services"
)

type authFunc func(ctx context.Context, email, password string) error

func (a *App) credentialsPrompt(ctx context.Context, run authFunc, fallback, success string) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	if err := run(ctx, email, string(password)); err != nil {
		a.log.Warn(ctx, fallback, "email", email, "error", err)
		printlnFn(userMessage(err, fallback))
		return err
	}
	printlnFn(success)
	a.afterAuth(ctx)
	return nil
}

// Register creates an account and signs in with it.
func (a *App) Register(ctx context.Context) error {
	return a.credentialsPrompt(ctx, a.session.Register, services.MsgRegisterFailed, "Registration successful")
}

// Login signs in with an existing account.
func (a *App) Login(ctx context.Context) error {
	return a.credentialsPrompt(ctx, a.session.Login, services.MsgLoginFailed, "Login successful")
}

// afterAuth follows the session's route and prepares the dashboard when
// the user landed there.
func (a *App) afterAuth(ctx context.Context) {
	if a.currentRoute() == services.RouteDashboard && a.guard(services.RouteDashboard) {
		if err := a.ensureDashboard(ctx); err == nil {
			a.printThreads()
		}
	}
	if a.currentRoute() == services.RouteOnboarding {
		printlnFn("Set your target vehicle with 'onboard'")
	}
}

func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	a.dashboard.Reset()
	printlnFn("Logged out")
	return nil
}

// Whoami prints the signed-in user.
func (a *App) Whoami(ctx context.Context) error {
	view := a.session.Snapshot()
	switch {
	case view.Loading:
		printlnFn("Loading...")
	case view.User == nil:
		printlnFn("Not logged in")
	default:
		printlnFn(fmt.Sprintf("%s (%s)", view.User.Email, view.State))
		if view.User.Preferences != nil {
			printlnFn("Target vehicle:", view.User.Preferences.String())
		}
		if at, ok, err := a.store.SavedAt(ctx); err != nil {
			a.log.Warn(ctx, "read token timestamp", "error", err)
		} else if ok {
			printlnFn("Signed in since", at.Local().Format("2006-01-02 15:04"))
		}
	}
	return nil
}
