// Package client is the carbuyer API client.
//
// # Overview
//
// The package provides:
//  1. Resource-grouped API contracts (AuthAPI, PreferencesAPI, ThreadAPI,
//     MessageAPI, GmailAPI, TwilioAPI) composed into Client.
//  2. HTTPClient, a REST/JSON implementation. Every request passes through a
//     single RoundTripper that attaches "Authorization: Bearer <token>" when
//     the TokenSource holds a token and sends the request unauthenticated
//     otherwise.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     sqlite database and applying embedded goose migrations.
//
// # Error Handling
//
// Non-2xx responses surface as *APIError carrying the server's
// {"error": "..."} message. APIError unwraps to ErrUnauthorized, ErrNotFound
// or ErrUnavailable by status, and transport failures wrap ErrUnavailable.
// ErrorMessage extracts the text to show a user with a fallback.
//
// No request timeout is applied unless WithTimeout is given.
package client
