package services

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/carbuyer/internal/client/client"
	"github.com/dmitrijs2005/carbuyer/internal/client/credentials"
	"github.com/dmitrijs2005/carbuyer/internal/client/models"
	"github.com/dmitrijs2005/carbuyer/internal/logging"
)

var errBoom = errors.New("boom")

// fakeAPI implements client.Client. Results are preset per method; calls are
// counted by method name.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	LoginResp    *models.AuthResponse
	LoginErr     error
	RegisterResp *models.AuthResponse
	RegisterErr  error
	MeResp       *models.User
	MeErr        error
	LogoutErr    error
	// BeforeMe, when set, runs at the start of every Me call.
	BeforeMe func()

	// TokenAtMe, when set, is filled with the token the store held at the
	// time Me was called.
	TokenAtMe *string
	Store     credentials.Store

	PrefsErr  error
	LastPrefs models.Preferences

	Threads         []models.Thread
	ThreadsErr      error
	CreateErr       error
	LastCreateName  string
	LastCreateType  models.SellerType
	ConsolidateResp *models.ConsolidateResult
	ConsolidateErr  error
	LastConsolidate []string
	ArchiveErr      error
	MarkReadErr     error
	MarkReadIDs     []string

	// Messages answers GetThreadMessages; it may block to stage races.
	Messages  func(ctx context.Context, threadID string) (*models.ThreadMessages, error)
	Offers    map[string][]models.TrackedOffer
	OffersErr error

	Inbox      []models.InboxMessage
	InboxErr   error
	AssignErr  error
	LastAssign [2]string

	Gmail           *models.GmailStatus
	GmailErr        error
	AuthURL         string
	AuthURLErr      error
	DisconnectErr   error
	SMSErr          error
	LastSMS         [2]string
	PhoneNumber     string
	PhoneNumberErr  error
}

var _ client.Client = (*fakeAPI)(nil)

func newFakeAPI() *fakeAPI { return &fakeAPI{calls: map[string]int{}} }

func (f *fakeAPI) called(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) Register(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	f.called("Register")
	return f.RegisterResp, f.RegisterErr
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	f.called("Login")
	return f.LoginResp, f.LoginErr
}

func (f *fakeAPI) Me(ctx context.Context) (*models.User, error) {
	f.called("Me")
	if f.BeforeMe != nil {
		f.BeforeMe()
	}
	if f.TokenAtMe != nil && f.Store != nil {
		tok, _, _ := f.Store.Read(ctx)
		*f.TokenAtMe = tok
	}
	if f.MeErr != nil {
		return nil, f.MeErr
	}
	return f.MeResp.Clone(), nil
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	f.called("Logout")
	return f.LogoutErr
}

func (f *fakeAPI) GetPreferences(ctx context.Context) (*models.Preferences, error) {
	f.called("GetPreferences")
	return &f.LastPrefs, f.PrefsErr
}

func (f *fakeAPI) CreatePreferences(ctx context.Context, p models.Preferences) (*models.Preferences, error) {
	f.called("CreatePreferences")
	if f.PrefsErr != nil {
		return nil, f.PrefsErr
	}
	f.LastPrefs = p
	return &p, nil
}

func (f *fakeAPI) GetThreads(ctx context.Context) ([]models.Thread, error) {
	f.called("GetThreads")
	return append([]models.Thread(nil), f.Threads...), f.ThreadsErr
}

func (f *fakeAPI) CreateThread(ctx context.Context, name string, st models.SellerType) (*models.Thread, error) {
	f.called("CreateThread")
	f.LastCreateName, f.LastCreateType = name, st
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	return &models.Thread{ID: "new-" + name, SellerName: name, SellerType: st}, nil
}

func (f *fakeAPI) ConsolidateThreads(ctx context.Context, ids []string) (*models.ConsolidateResult, error) {
	f.called("ConsolidateThreads")
	f.LastConsolidate = append([]string(nil), ids...)
	return f.ConsolidateResp, f.ConsolidateErr
}

func (f *fakeAPI) ArchiveThread(ctx context.Context, id string) error {
	f.called("ArchiveThread")
	return f.ArchiveErr
}

func (f *fakeAPI) MarkThreadRead(ctx context.Context, id string) error {
	f.called("MarkThreadRead")
	f.mu.Lock()
	f.MarkReadIDs = append(f.MarkReadIDs, id)
	f.mu.Unlock()
	return f.MarkReadErr
}

func (f *fakeAPI) GetTrackedOffers(ctx context.Context, id string) ([]models.TrackedOffer, error) {
	f.called("GetTrackedOffers")
	if f.OffersErr != nil {
		return nil, f.OffersErr
	}
	return f.Offers[id], nil
}

func (f *fakeAPI) GetThreadMessages(ctx context.Context, id string) (*models.ThreadMessages, error) {
	f.called("GetThreadMessages")
	if f.Messages != nil {
		return f.Messages(ctx, id)
	}
	return &models.ThreadMessages{Messages: []models.Message{{ID: "m-" + id, ThreadID: id, Sender: models.SenderSeller}}}, nil
}

func (f *fakeAPI) GetInboxMessages(ctx context.Context) ([]models.InboxMessage, error) {
	f.called("GetInboxMessages")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.InboxMessage(nil), f.Inbox...), f.InboxErr
}

func (f *fakeAPI) AssignInboxMessageToThread(ctx context.Context, msgID, threadID string) error {
	f.called("AssignInboxMessageToThread")
	f.LastAssign = [2]string{msgID, threadID}
	return f.AssignErr
}

func (f *fakeAPI) GetGmailStatus(ctx context.Context) (*models.GmailStatus, error) {
	f.called("GetGmailStatus")
	return f.Gmail, f.GmailErr
}

func (f *fakeAPI) GetGmailAuthURL(ctx context.Context) (string, error) {
	f.called("GetGmailAuthURL")
	return f.AuthURL, f.AuthURLErr
}

func (f *fakeAPI) DisconnectGmail(ctx context.Context) error {
	f.called("DisconnectGmail")
	return f.DisconnectErr
}

func (f *fakeAPI) SendSMS(ctx context.Context, id, content string) error {
	f.called("SendSMS")
	f.LastSMS = [2]string{id, content}
	return f.SMSErr
}

func (f *fakeAPI) GetPhoneNumber(ctx context.Context) (string, error) {
	f.called("GetPhoneNumber")
	return f.PhoneNumber, f.PhoneNumberErr
}

func (f *fakeAPI) Ping(ctx context.Context) error { return nil }

// recordingNav remembers every navigation.
type recordingNav struct {
	mu     sync.Mutex
	routes []Route
}

func (n *recordingNav) Navigate(r Route) {
	n.mu.Lock()
	n.routes = append(n.routes, r)
	n.mu.Unlock()
}

func (n *recordingNav) last() Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.routes) == 0 {
		return ""
	}
	return n.routes[len(n.routes)-1]
}

// staticSession is a SessionReader with a fixed view.
type staticSession SessionView

func (s staticSession) Snapshot() SessionView { return SessionView(s) }

var authenticated = staticSession{State: StateAuthenticated, User: &models.User{ID: "u1", Preferences: &models.Preferences{Year: 2024, Make: "Mazda", Model: "CX-90"}}}

func nopLog() logging.Logger { return logging.Nop() }

func withPrefs() *models.User {
	return &models.User{ID: "u1", Email: "a@b.c", Preferences: &models.Preferences{Year: 2024, Make: "Mazda", Model: "CX-90"}}
}

func withoutPrefs() *models.User {
	return &models.User{ID: "u1", Email: "a@b.c"}
}
