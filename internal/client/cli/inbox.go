package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/carbuyer/internal/client/services"
)

// Inbox loads and lists the emails waiting to be assigned to a thread.
func (a *App) Inbox(ctx context.Context) error {
	if err := a.dashboard.LoadInbox(ctx); err != nil {
		printlnFn(userMessage(err, "Failed to load inbox"))
		return err
	}
	a.printInbox()
	return nil
}

func (a *App) printInbox() {
	v := a.dashboard.View()
	if len(v.Inbox) == 0 {
		printlnFn("Inbox is empty")
		return
	}
	for i, m := range v.Inbox {
		printlnFn(renderInbox(i, m, m.ID == v.SelectedInboxID))
	}
}

// Open selects an inbox message and prints it.
func (a *App) Open(ctx context.Context, ref string) error {
	inbox := a.dashboard.View().Inbox
	id, ok := resolveRef(ref, inboxIDs(inbox))
	if !ok {
		printlnFn("No such message:", ref)
		return services.ErrNoInboxMessage
	}
	if err := a.dashboard.SelectInboxMessage(id); err != nil {
		printlnFn(userMessage(err, ""))
		return err
	}
	for _, m := range inbox {
		if m.ID == id {
			printlnFn("Subject:", m.DisplaySubject())
			printlnFn("From:", m.SenderEmail)
			printlnFn(m.Content)
		}
	}
	printlnFn("Assign it with 'assign <thread #>'")
	return nil
}

// Assign files the open inbox message under a thread. The inbox reloads
// through the refresh event; the thread list reloads here.
func (a *App) Assign(ctx context.Context, ref string) error {
	if err := a.ensureDashboard(ctx); err != nil {
		return err
	}
	id, ok := a.threadRef(ref)
	if !ok {
		return services.ErrUnknownThread
	}

	err := a.dashboard.AssignInboxMessage(ctx, id, func() {
		if err := a.dashboard.Load(ctx); err != nil {
			a.log.Warn(ctx, "reload threads after assign", "error", err)
		}
	})
	if err != nil {
		if errors.Is(err, services.ErrNoInboxMessage) {
			printlnFn("Open an inbox message first with 'open <#>'")
		} else {
			printlnFn(userMessage(err, services.MsgAssignFailed))
		}
		return err
	}
	printlnFn("Message assigned")
	return nil
}
