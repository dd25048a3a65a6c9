package client

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/dmitrijs2005/carbuyer/internal/common"
	"github.com/dmitrijs2005/carbuyer/internal/logging"
)

// authTransport is the single interception point of outgoing requests. It
// attaches the stored bearer token when there is one, tags the request with
// an id and logs the outcome.
type authTransport struct {
	base   http.RoundTripper
	tokens TokenSource
	log    logging.Logger
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	r := req.Clone(ctx)

	if t.tokens != nil {
		tok, ok, err := t.tokens.Read(ctx)
		if err != nil {
			t.log.Warn(ctx, "token read failed, sending unauthenticated", "error", err)
		} else if ok {
			(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"}).SetAuthHeader(r)
		}
	}

	if r.Header.Get(common.RequestIDHeaderName) == "" {
		r.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	}
	r.Header.Set("Accept", common.ContentTypeJSON)
	if r.Body != nil && r.Header.Get("Content-Type") == "" {
		r.Header.Set("Content-Type", common.ContentTypeJSON)
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(r)
	reqID := r.Header.Get(common.RequestIDHeaderName)
	if err != nil {
		t.log.Debug(ctx, "request failed",
			"method", r.Method, "path", r.URL.Path, "request_id", reqID, "error", err)
		return nil, err
	}
	t.log.Debug(ctx, "request",
		"method", r.Method, "path", r.URL.Path, "status", resp.StatusCode,
		"request_id", reqID, "elapsed", time.Since(start))
	return resp, nil
}
