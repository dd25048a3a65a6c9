package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/carbuyer/internal/client/client"
	"github.com/dmitrijs2005/carbuyer/internal/client/models"
	"github.com/dmitrijs2005/carbuyer/internal/client/services"
)

const timeLayout = "Jan 2 15:04"

var localErrors = []error{
	services.ErrSellerNameRequired,
	services.ErrNotEnoughThreads,
	services.ErrNoReplyableMessage,
	services.ErrEmptyContent,
	services.ErrPreferencesLocked,
	services.ErrInvalidPreferences,
	services.ErrNotAuthenticated,
	services.ErrNoInboxMessage,
	services.ErrUnknownThread,
}

// userMessage is the text shown for a failed action: local validation
// errors as they are, server errors with the server's message, anything
// else as fallback.
func userMessage(err error, fallback string) string {
	for _, le := range localErrors {
		if errors.Is(err, le) {
			return capitalize(err.Error())
		}
	}
	return client.ErrorMessage(err, fallback)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func unreadBadge(n int) string {
	return models.UnreadBadge(n)
}

// resolveRef turns "#n" or "n" (1-based list position) or a literal id into
// an id from ids.
func resolveRef(ref string, ids []string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(strings.TrimPrefix(ref, "#")); err == nil {
		if n >= 1 && n <= len(ids) {
			return ids[n-1], true
		}
		return "", false
	}
	for _, id := range ids {
		if id == ref {
			return id, true
		}
	}
	return "", false
}

func threadIDs(threads []models.Thread) []string {
	ids := make([]string, len(threads))
	for i, t := range threads {
		ids[i] = t.ID
	}
	return ids
}

func inboxIDs(msgs []models.InboxMessage) []string {
	ids := make([]string, len(msgs))
	for i, m := range msgs {
		ids[i] = m.ID
	}
	return ids
}

// renderThread formats one line of the thread list. marker flags the open
// thread or, in edit mode, the selection state.
func renderThread(i int, t models.Thread, marker string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s #%d %s (%s)", marker, i+1, t.Title(), t.SellerType.Label())
	if t.Phone != "" && t.Title() != models.FormatPhoneNumber(t.Phone) {
		fmt.Fprintf(&b, " %s", models.FormatPhoneNumber(t.Phone))
	}
	if badge := unreadBadge(t.UnreadCount); badge != "" {
		fmt.Fprintf(&b, " [%s]", badge)
	}
	if t.LastMessagePreview != "" {
		fmt.Fprintf(&b, " - %s", truncate(t.LastMessagePreview, 60))
	}
	return b.String()
}

func renderMessage(m models.Message, sellerName string) string {
	return fmt.Sprintf("[%s] %s: %s", m.Timestamp.Local().Format(timeLayout), m.Sender.Label(sellerName), m.Content)
}

func renderOffer(o models.TrackedOffer) string {
	return fmt.Sprintf("[%s] %s", o.TrackedAt.Local().Format(timeLayout), o.OfferText)
}

func renderInbox(i int, m models.InboxMessage, selected bool) string {
	marker := " "
	if selected {
		marker = ">"
	}
	return fmt.Sprintf("%s #%d %s <%s> %s", marker, i+1, m.DisplaySubject(), m.SenderEmail, m.Timestamp.Local().Format(timeLayout))
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
