package models

import (
	"fmt"
	"regexp"
	"time"
)

// Sender is the author of a thread message.
type Sender string

const (
	SenderUser   Sender = "user"
	SenderAgent  Sender = "agent"
	SenderSeller Sender = "seller"
)

func ParseSender(s string) (Sender, error) {
	switch Sender(s) {
	case SenderUser, SenderAgent, SenderSeller:
		return Sender(s), nil
	}
	return "", fmt.Errorf("unknown sender %q", s)
}

// Label names the sender in a message pane.
func (s Sender) Label(sellerName string) string {
	switch s {
	case SenderUser:
		return "You"
	case SenderAgent:
		return "AI Agent"
	case SenderSeller:
		if sellerName == "" {
			return "Seller"
		}
		return sellerName
	}
	panic(fmt.Sprintf("models: unhandled sender %q", string(s)))
}

func (s *Sender) UnmarshalText(b []byte) error {
	v, err := ParseSender(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

type Message struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"threadId"`
	Sender    Sender    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ThreadMessages is the message list of a thread. ReplyableMessageID names
// the seller SMS an outgoing reply would answer; it is empty when the
// thread has none.
type ThreadMessages struct {
	Messages           []Message `json:"messages"`
	ReplyableMessageID string    `json:"replyableMessageId,omitempty"`
}

// InboxMessage is an incoming email not yet assigned to a thread.
type InboxMessage struct {
	ID          string    `json:"id"`
	Subject     string    `json:"subject"`
	SenderEmail string    `json:"senderEmail"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
}

func (m InboxMessage) DisplaySubject() string {
	if m.Subject == "" {
		return "No Subject"
	}
	return m.Subject
}

var nonDigits = regexp.MustCompile(`\D`)

// FormatPhoneNumber renders US numbers as (XXX) XXX-XXXX. Anything else is
// returned unchanged.
func FormatPhoneNumber(phone string) string {
	d := nonDigits.ReplaceAllString(phone, "")
	if len(d) == 11 && d[0] == '1' {
		d = d[1:]
	}
	if len(d) != 10 {
		return phone
	}
	return fmt.Sprintf("(%s) %s-%s", d[:3], d[3:6], d[6:])
}
