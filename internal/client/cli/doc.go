// Package cli is the interactive terminal front end of carbuyer.
//
// App wires configuration, the local credential store, the REST client and
// the session and dashboard services to a line-oriented REPL. Every command
// belongs to a route (login, onboarding, dashboard or settings) and passes
// the session route guard before it runs, so a signed-out user is sent to
// login and a user without a target vehicle to onboarding.
//
// Background goroutines restore the stored session, watch backend
// connectivity and reload the inbox when an email is assigned. App.Run
// blocks until the user exits.
package cli
