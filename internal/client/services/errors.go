package services

import "errors"

// Local precondition failures. They are returned before any request is made.
var (
	ErrSellerNameRequired = errors.New("seller name is required")
	ErrNotEnoughThreads   = errors.New("select at least 2 threads to consolidate")
	ErrNoReplyableMessage = errors.New("no SMS message found to reply to in this thread")
	ErrEmptyContent       = errors.New("message content is empty")
	ErrPreferencesLocked  = errors.New("target vehicle is locked")
	ErrInvalidPreferences = errors.New("invalid preferences")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrNoInboxMessage     = errors.New("no inbox message selected")
	ErrUnknownThread      = errors.New("unknown thread")

	// ErrStaleSelection is returned to a thread selection superseded by a
	// newer one; its result was discarded.
	ErrStaleSelection = errors.New("thread selection superseded")
)

// Fallback texts shown when a failed request carries no server message.
const (
	MsgSavePreferencesFailed = "Failed to save preferences"
	MsgCreateThreadFailed    = "Failed to create thread"
	MsgConsolidateFailed     = "Failed to consolidate threads"
	MsgAssignFailed          = "Failed to assign message to thread"
	MsgSendSMSFailed         = "Failed to send SMS"
	MsgGmailConnectFailed    = "Failed to start Gmail connection"
	MsgGmailDisconnectFailed = "Failed to disconnect Gmail"
	MsgLoginFailed           = "Login failed"
	MsgRegisterFailed        = "Registration failed"
	MsgLoadMessagesFailed    = "Failed to load messages"
	MsgLoadThreadsFailed     = "Failed to load threads"
	MsgArchiveFailed         = "Failed to archive thread"
)
