package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/carbuyer/internal/client/models"
	"github.com/dmitrijs2005/carbuyer/internal/common"
	"github.com/dmitrijs2005/carbuyer/internal/logging"
)

// HTTPClient talks to the REST backend mounted at baseURL.
type HTTPClient struct {
	baseURL *url.URL
	rootURL *url.URL
	http    *http.Client
	timeout time.Duration
	log     logging.Logger
}

var _ Client = (*HTTPClient)(nil)

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying http.Client. Its transport is
// wrapped, not replaced.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.http = c }
}

func WithLogger(l logging.Logger) Option {
	return func(h *HTTPClient) { h.log = l }
}

// WithTimeout bounds every request. Zero means no client-side timeout.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTPClient) { h.timeout = d }
}

// New returns a client for the API mounted at baseURL, e.g.
// http://localhost:8080/api/v1. tokens may be nil for a client that never
// authenticates.
func New(baseURL string, tokens TokenSource, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("api url %q must be an absolute http(s) url", baseURL)
	}

	root := *u
	root.Path = strings.TrimSuffix(u.Path, common.APIPrefix)

	c := &HTTPClient{
		baseURL: u,
		rootURL: &root,
		http:    &http.Client{},
		log:     logging.Nop(),
	}
	for _, o := range opts {
		o(c)
	}

	hc := *c.http
	if c.timeout > 0 {
		hc.Timeout = c.timeout
	}
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc.Transport = &authTransport{base: base, tokens: tokens, log: c.log}
	c.http = &hc

	return c, nil
}

// endpoint appends an already escaped path to base.
func (c *HTTPClient) endpoint(base *url.URL, path string) string {
	u := *base
	raw := u.EscapedPath() + path
	if p, err := url.PathUnescape(raw); err == nil {
		u.Path, u.RawPath = p, raw
	} else {
		u.Path = u.Path + path
	}
	return u.String()
}

// do sends a JSON request and decodes a JSON response into out when out is
// not nil. Non-2xx responses become *APIError; transport failures wrap
// ErrUnavailable.
func (c *HTTPClient) do(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(b) == 0 {
		return apiErr
	}
	var er common.ErrorResponse
	if json.Unmarshal(b, &er) == nil {
		apiErr.Message = er.Error
	}
	return apiErr
}

func (c *HTTPClient) call(ctx context.Context, method, path string, in, out any) error {
	return c.do(ctx, method, c.endpoint(c.baseURL, path), in, out)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *HTTPClient) Register(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.call(ctx, http.MethodPost, "/auth/register", credentialsRequest{email, password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.call(ctx, http.MethodPost, "/auth/login", credentialsRequest{email, password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.call(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

func (c *HTTPClient) GetPreferences(ctx context.Context) (*models.Preferences, error) {
	var out models.Preferences
	if err := c.call(ctx, http.MethodGet, "/preferences", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreatePreferences(ctx context.Context, p models.Preferences) (*models.Preferences, error) {
	var out models.Preferences
	if err := c.call(ctx, http.MethodPost, "/preferences", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetThreads(ctx context.Context) ([]models.Thread, error) {
	var out struct {
		Threads []models.Thread `json:"threads"`
	}
	if err := c.call(ctx, http.MethodGet, "/threads", nil, &out); err != nil {
		return nil, err
	}
	return out.Threads, nil
}

func (c *HTTPClient) CreateThread(ctx context.Context, sellerName string, sellerType models.SellerType) (*models.Thread, error) {
	in := struct {
		SellerName string            `json:"sellerName"`
		SellerType models.SellerType `json:"sellerType"`
	}{sellerName, sellerType}

	var out models.Thread
	if err := c.call(ctx, http.MethodPost, "/threads", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ConsolidateThreads(ctx context.Context, threadIDs []string) (*models.ConsolidateResult, error) {
	in := struct {
		ThreadIDs []string `json:"threadIds"`
	}{threadIDs}

	var out models.ConsolidateResult
	if err := c.call(ctx, http.MethodPost, "/threads/consolidate", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ArchiveThread(ctx context.Context, threadID string) error {
	return c.call(ctx, http.MethodDelete, "/threads/"+url.PathEscape(threadID), nil, nil)
}

func (c *HTTPClient) MarkThreadRead(ctx context.Context, threadID string) error {
	return c.call(ctx, http.MethodPost, "/threads/"+url.PathEscape(threadID)+"/read", nil, nil)
}

func (c *HTTPClient) GetTrackedOffers(ctx context.Context, threadID string) ([]models.TrackedOffer, error) {
	var out struct {
		Offers []models.TrackedOffer `json:"offers"`
	}
	if err := c.call(ctx, http.MethodGet, "/threads/"+url.PathEscape(threadID)+"/offers", nil, &out); err != nil {
		return nil, err
	}
	return out.Offers, nil
}

func (c *HTTPClient) GetThreadMessages(ctx context.Context, threadID string) (*models.ThreadMessages, error) {
	var out models.ThreadMessages
	if err := c.call(ctx, http.MethodGet, "/threads/"+url.PathEscape(threadID)+"/messages", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetInboxMessages(ctx context.Context) ([]models.InboxMessage, error) {
	var out struct {
		Messages []models.InboxMessage `json:"messages"`
	}
	if err := c.call(ctx, http.MethodGet, "/inbox/messages", nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

func (c *HTTPClient) AssignInboxMessageToThread(ctx context.Context, messageID, threadID string) error {
	in := struct {
		ThreadID string `json:"threadId"`
	}{threadID}
	return c.call(ctx, http.MethodPost, "/inbox/messages/"+url.PathEscape(messageID)+"/assign", in, nil)
}

func (c *HTTPClient) GetGmailStatus(ctx context.Context) (*models.GmailStatus, error) {
	var out models.GmailStatus
	if err := c.call(ctx, http.MethodGet, "/gmail/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetGmailAuthURL(ctx context.Context) (string, error) {
	var out struct {
		AuthURL string `json:"authUrl"`
	}
	if err := c.call(ctx, http.MethodGet, "/gmail/auth-url", nil, &out); err != nil {
		return "", err
	}
	return out.AuthURL, nil
}

func (c *HTTPClient) DisconnectGmail(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/gmail/disconnect", nil, nil)
}

func (c *HTTPClient) SendSMS(ctx context.Context, replyableMessageID, content string) error {
	in := struct {
		Content string `json:"content"`
	}{content}
	return c.call(ctx, http.MethodPost, "/messages/"+url.PathEscape(replyableMessageID)+"/sms-reply", in, nil)
}

func (c *HTTPClient) GetPhoneNumber(ctx context.Context) (string, error) {
	var out struct {
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := c.call(ctx, http.MethodGet, "/sms/phone-number", nil, &out); err != nil {
		return "", err
	}
	return out.PhoneNumber, nil
}

// Ping checks the health endpoint served at the root of the API host.
func (c *HTTPClient) Ping(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	err := c.do(ctx, http.MethodGet, c.endpoint(c.rootURL, common.HealthPath), nil, &out)
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err != nil {
		return err
	}
	if out.Status != "ok" {
		return ErrUnavailable
	}
	return nil
}
