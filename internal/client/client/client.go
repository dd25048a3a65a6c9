package client

import (
	"context"

	"github.com/dmitrijs2005/carbuyer/internal/client/models"
)

// TokenSource yields the bearer token attached to outgoing requests.
// ok is false when no token is stored.
type TokenSource interface {
	Read(ctx context.Context) (token string, ok bool, err error)
}

type AuthAPI interface {
	Register(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Me(ctx context.Context) (*models.User, error)
	Logout(ctx context.Context) error
}

type PreferencesAPI interface {
	GetPreferences(ctx context.Context) (*models.Preferences, error)
	CreatePreferences(ctx context.Context, p models.Preferences) (*models.Preferences, error)
}

type ThreadAPI interface {
	GetThreads(ctx context.Context) ([]models.Thread, error)
	CreateThread(ctx context.Context, sellerName string, sellerType models.SellerType) (*models.Thread, error)
	ConsolidateThreads(ctx context.Context, threadIDs []string) (*models.ConsolidateResult, error)
	ArchiveThread(ctx context.Context, threadID string) error
	MarkThreadRead(ctx context.Context, threadID string) error
	GetTrackedOffers(ctx context.Context, threadID string) ([]models.TrackedOffer, error)
}

type MessageAPI interface {
	GetThreadMessages(ctx context.Context, threadID string) (*models.ThreadMessages, error)
	GetInboxMessages(ctx context.Context) ([]models.InboxMessage, error)
	AssignInboxMessageToThread(ctx context.Context, messageID, threadID string) error
}

type GmailAPI interface {
	GetGmailStatus(ctx context.Context) (*models.GmailStatus, error)
	GetGmailAuthURL(ctx context.Context) (string, error)
	DisconnectGmail(ctx context.Context) error
}

type TwilioAPI interface {
	SendSMS(ctx context.Context, replyableMessageID, content string) error
	GetPhoneNumber(ctx context.Context) (string, error)
}

// Client is the full backend surface used by the carbuyer client.
type Client interface {
	AuthAPI
	PreferencesAPI
	ThreadAPI
	MessageAPI
	GmailAPI
	TwilioAPI
	Ping(ctx context.Context) error
}
