package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/carbuyer/internal/client/client"
	"github.com/dmitrijs2005/carbuyer/internal/logging"
)

// SMSService replies to sellers by text message.
type SMSService interface {
	// Eligible reports whether a reply can be offered for a thread.
	Eligible(replyableMessageID, phone string) bool
	Send(ctx context.Context, replyableMessageID, content string) error
	// PhoneNumber is the number sellers see replies coming from.
	PhoneNumber(ctx context.Context) (string, error)
}

type smsService struct {
	api client.TwilioAPI
	log logging.Logger
}

func NewSMSService(api client.TwilioAPI, log logging.Logger) SMSService {
	if log == nil {
		log = logging.Nop()
	}
	return &smsService{api: api, log: log}
}

func (s *smsService) Eligible(replyableMessageID, phone string) bool {
	return replyableMessageID != "" && phone != ""
}

func (s *smsService) Send(ctx context.Context, replyableMessageID, content string) error {
	if replyableMessageID == "" {
		return ErrNoReplyableMessage
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyContent
	}
	if err := s.api.SendSMS(ctx, replyableMessageID, content); err != nil {
		s.log.Error(ctx, "send sms", "message_id", replyableMessageID, "error", err)
		return err
	}
	return nil
}

func (s *smsService) PhoneNumber(ctx context.Context) (string, error) {
	return s.api.GetPhoneNumber(ctx)
}
