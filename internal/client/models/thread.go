package models

import (
	"fmt"
	"strings"
	"time"
)

// SellerType is the kind of seller on the other side of a thread.
type SellerType string

const (
	SellerPrivate    SellerType = "private"
	SellerDealership SellerType = "dealership"
	SellerOther      SellerType = "other"
)

// DefaultSellerType is used for threads created without an explicit type.
const DefaultSellerType = SellerDealership

var SellerTypes = []SellerType{SellerPrivate, SellerDealership, SellerOther}

func ParseSellerType(s string) (SellerType, error) {
	switch SellerType(strings.ToLower(strings.TrimSpace(s))) {
	case SellerPrivate:
		return SellerPrivate, nil
	case SellerDealership:
		return SellerDealership, nil
	case SellerOther:
		return SellerOther, nil
	}
	return "", fmt.Errorf("unknown seller type %q", s)
}

func (t SellerType) Label() string {
	switch t {
	case SellerPrivate:
		return "Private Seller"
	case SellerDealership:
		return "Dealership"
	case SellerOther:
		return "Other"
	case "":
		return ""
	}
	panic(fmt.Sprintf("models: unhandled seller type %q", string(t)))
}

// MarshalText rejects unknown seller types. The empty value means unset.
func (t SellerType) MarshalText() ([]byte, error) {
	if t == "" {
		return nil, nil
	}
	if _, err := ParseSellerType(string(t)); err != nil {
		return nil, err
	}
	return []byte(t), nil
}

func (t *SellerType) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*t = ""
		return nil
	}
	v, err := ParseSellerType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Thread is a negotiation with one seller.
type Thread struct {
	ID                 string     `json:"id"`
	SellerName         string     `json:"sellerName"`
	SellerType         SellerType `json:"sellerType"`
	DisplayName        string     `json:"displayName,omitempty"`
	Phone              string     `json:"phone,omitempty"`
	UnreadCount        int        `json:"unreadCount"`
	MessageCount       int        `json:"messageCount"`
	LastMessagePreview string     `json:"lastMessagePreview,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	LastMessageAt      *time.Time `json:"lastMessageAt,omitempty"`
}

// Title is the name shown for the thread in lists.
func (t Thread) Title() string {
	switch {
	case t.DisplayName != "":
		return t.DisplayName
	case t.SellerName != "":
		return t.SellerName
	case t.Phone != "":
		return FormatPhoneNumber(t.Phone)
	}
	return "Unknown"
}

// ConsolidateResult is the merged thread plus the ids it replaced.
type ConsolidateResult struct {
	Thread        Thread   `json:"thread"`
	SupersededIDs []string `json:"supersededIds,omitempty"`
}

// TrackedOffer is a captured price or terms snapshot of a thread.
type TrackedOffer struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"threadId"`
	MessageID *string   `json:"messageId,omitempty"`
	OfferText string    `json:"offerText"`
	TrackedAt time.Time `json:"trackedAt"`
}

// UnreadBadge renders an unread counter; zero renders as nothing.
func UnreadBadge(n int) string {
	switch {
	case n <= 0:
		return ""
	case n > 99:
		return "99+"
	}
	return fmt.Sprint(n)
}
