package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/carbuyer/internal/client/models"
	"github.com/dmitrijs2005/carbuyer/internal/client/services"
)

// ensureDashboard loads the thread list the first time the dashboard is
// shown.
func (a *App) ensureDashboard(ctx context.Context) error {
	if a.dashboard.Loaded() {
		return nil
	}
	if err := a.dashboard.Load(ctx); err != nil {
		printlnFn(userMessage(err, services.MsgLoadThreadsFailed))
		return err
	}
	return nil
}

func (a *App) printThreads() {
	v := a.dashboard.View()
	if len(v.Threads) == 0 {
		printlnFn("No threads yet. Create one with 'new'.")
		return
	}
	for i, t := range v.Threads {
		marker := " "
		switch {
		case v.EditMode && slices.Contains(v.Selection, t.ID):
			marker = "*"
		case v.EditMode:
			marker = "-"
		case t.ID == v.SelectedThreadID:
			marker = ">"
		}
		printlnFn(renderThread(i, t, marker))
	}
	if v.EditMode {
		printlnFn(fmt.Sprintf("%d selected. 'toggle <#>' to select, 'consolidate' to merge, 'cancel' to leave.", len(v.Selection)))
	}
}

// threadRef resolves a user reference against the current thread list.
func (a *App) threadRef(ref string) (string, bool) {
	id, ok := resolveRef(ref, threadIDs(a.dashboard.View().Threads))
	if !ok {
		printlnFn("No such thread:", ref)
	}
	return id, ok
}

// Threads reloads and prints the thread list.
func (a *App) Threads(ctx context.Context) error {
	if err := a.dashboard.Load(ctx); err != nil {
		printlnFn(userMessage(err, services.MsgLoadThreadsFailed))
		return err
	}
	a.printThreads()
	return nil
}

// NewThread creates a thread for a seller and opens it.
func (a *App) NewThread(ctx context.Context) error {
	if err := a.ensureDashboard(ctx); err != nil {
		return err
	}

	name, err := GetSimpleText(a.reader, "Seller name", a.out)
	if err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		printlnFn(userMessage(services.ErrSellerNameRequired, ""))
		return services.ErrSellerNameRequired
	}

	kinds := make([]string, 0, len(models.SellerTypes))
	for _, st := range models.SellerTypes {
		kinds = append(kinds, string(st))
	}
	typeText, err := GetSimpleText(a.reader, fmt.Sprintf("Seller type [%s] (default %s)", strings.Join(kinds, "/"), models.DefaultSellerType), a.out)
	if err != nil {
		return err
	}
	sellerType := models.DefaultSellerType
	if typeText != "" {
		if sellerType, err = models.ParseSellerType(typeText); err != nil {
			printlnFn(capitalize(err.Error()))
			return err
		}
	}

	t, err := a.dashboard.CreateThread(ctx, name, sellerType)
	if err != nil {
		printlnFn(userMessage(err, services.MsgCreateThreadFailed))
		return err
	}
	printlnFn("Created thread", t.Title())
	a.printConversation()
	return nil
}

// Select opens a thread and shows its conversation.
func (a *App) Select(ctx context.Context, ref string) error {
	if err := a.ensureDashboard(ctx); err != nil {
		return err
	}
	id, ok := a.threadRef(ref)
	if !ok {
		return services.ErrUnknownThread
	}
	if err := a.dashboard.SelectThread(ctx, id); err != nil {
		if errors.Is(err, services.ErrStaleSelection) {
			return nil
		}
		printlnFn(userMessage(err, services.MsgLoadMessagesFailed))
		return err
	}
	a.printConversation()
	return nil
}

// Messages prints the conversation of the open thread.
func (a *App) Messages(ctx context.Context) error {
	if a.dashboard.View().SelectedThread() == nil {
		printlnFn("Select a thread first")
		return services.ErrUnknownThread
	}
	a.printConversation()
	return nil
}

func (a *App) printConversation() {
	v := a.dashboard.View()
	t := v.SelectedThread()
	if t == nil {
		return
	}

	header := fmt.Sprintf("== %s (%s)", t.Title(), t.SellerType.Label())
	if t.Phone != "" {
		header += " " + models.FormatPhoneNumber(t.Phone)
	}
	printlnFn(header)

	switch {
	case v.MessagesLoading:
		printlnFn("Loading messages...")
	case len(v.Messages) == 0:
		printlnFn("No messages yet")
	default:
		for _, m := range v.Messages {
			printlnFn(renderMessage(m, t.SellerName))
		}
	}
	if len(v.Offers) > 0 {
		printlnFn(fmt.Sprintf("%d tracked offer(s), see 'offers'", len(v.Offers)))
	}
	if a.sms.Eligible(v.ReplyableMessageID, t.Phone) {
		printlnFn("Reply by text with 'sms'")
	}
}

// Offers reloads and prints the tracked offers of the open thread.
func (a *App) Offers(ctx context.Context) error {
	if err := a.dashboard.ReloadOffers(ctx); err != nil {
		if errors.Is(err, services.ErrUnknownThread) {
			printlnFn("Select a thread first")
		} else {
			printlnFn(userMessage(err, "Failed to load offers"))
		}
		return err
	}
	offers := a.dashboard.View().Offers
	if len(offers) == 0 {
		printlnFn("No tracked offers")
		return nil
	}
	for _, o := range offers {
		printlnFn(renderOffer(o))
	}
	return nil
}

// Edit enters or leaves the multi-select mode used for consolidation.
func (a *App) Edit(ctx context.Context) error {
	if err := a.ensureDashboard(ctx); err != nil {
		return err
	}
	if a.dashboard.ToggleEditMode() {
		printlnFn("Edit mode on")
	} else {
		printlnFn("Edit mode off")
	}
	a.printThreads()
	return nil
}

func (a *App) Toggle(ctx context.Context, ref string) error {
	if !a.dashboard.View().EditMode {
		printlnFn("Enter edit mode first with 'edit'")
		return nil
	}
	id, ok := a.threadRef(ref)
	if !ok {
		return services.ErrUnknownThread
	}
	a.dashboard.ToggleSelection(id)
	a.printThreads()
	return nil
}

// Consolidate merges the selected threads into one.
func (a *App) Consolidate(ctx context.Context) error {
	if !a.dashboard.CanConsolidate() {
		printlnFn(userMessage(services.ErrNotEnoughThreads, ""))
		return services.ErrNotEnoughThreads
	}
	t, err := a.dashboard.Consolidate(ctx)
	if err != nil {
		printlnFn(userMessage(err, services.MsgConsolidateFailed))
		return err
	}
	printlnFn("Consolidated into", t.Title())
	a.printThreads()
	a.printConversation()
	return nil
}

func (a *App) Cancel(ctx context.Context) error {
	a.dashboard.CancelEdit()
	printlnFn("Edit mode off")
	return nil
}

// Archive removes a thread after confirmation.
func (a *App) Archive(ctx context.Context, ref string) error {
	if err := a.ensureDashboard(ctx); err != nil {
		return err
	}
	id, ok := a.threadRef(ref)
	if !ok {
		return services.ErrUnknownThread
	}

	answer, err := GetSimpleText(a.reader, "Archive this thread? [y/N]", a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		printlnFn("Cancelled")
		return nil
	}

	if err := a.dashboard.ArchiveThread(ctx, id); err != nil {
		printlnFn(userMessage(err, services.MsgArchiveFailed))
		return err
	}
	printlnFn("Thread archived")
	return nil
}
