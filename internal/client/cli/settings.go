package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/carbuyer/internal/client/models"
	"github.com/dmitrijs2005/carbuyer/internal/client/services"
)

// Settings prints the account, the Gmail connection and the SMS number.
func (a *App) Settings(ctx context.Context) error {
	view := a.session.Snapshot()
	if view.User != nil {
		printlnFn("Account:", view.User.Email)
		if view.User.InboxEmail != "" {
			printlnFn("Forward seller emails to:", view.User.InboxEmail)
		}
		if view.User.Preferences != nil {
			printlnFn("Target vehicle:", view.User.Preferences.String())
		}
	}
	a.printGmailStatus(ctx)

	if phone, err := a.sms.PhoneNumber(ctx); err != nil {
		a.log.Warn(ctx, "sms phone number", "error", err)
	} else if phone != "" {
		printlnFn("SMS number:", models.FormatPhoneNumber(phone))
	}
	return nil
}

func (a *App) printGmailStatus(ctx context.Context) {
	st := a.gmail.Status(ctx)
	if !st.Connected {
		printlnFn("Gmail: not connected ('gmail connect')")
		return
	}
	printlnFn("Gmail: connected as", st.GmailEmail)
}

// Gmail shows, starts or removes the Gmail connection.
func (a *App) Gmail(ctx context.Context, action string) error {
	switch action {
	case "", "status":
		a.printGmailStatus(ctx)
	case "connect":
		u, err := a.gmail.ConnectURL(ctx)
		if err != nil {
			printlnFn(userMessage(err, services.MsgGmailConnectFailed))
			return err
		}
		printlnFn("Open this URL in a browser to connect Gmail:")
		printlnFn(u)
	case "disconnect":
		if err := a.gmail.Disconnect(ctx); err != nil {
			printlnFn(userMessage(err, services.MsgGmailDisconnectFailed))
			return err
		}
		printlnFn("Gmail disconnected")
	default:
		printlnFn("Usage: gmail [status|connect|disconnect]")
	}
	return nil
}

// SMS sends a text reply to the seller of the open thread.
func (a *App) SMS(ctx context.Context) error {
	v := a.dashboard.View()
	t := v.SelectedThread()
	if t == nil {
		printlnFn("Select a thread first")
		return services.ErrUnknownThread
	}
	if !a.sms.Eligible(v.ReplyableMessageID, t.Phone) {
		printlnFn(userMessage(services.ErrNoReplyableMessage, ""))
		return services.ErrNoReplyableMessage
	}

	content, err := GetMultiline(a.reader, fmt.Sprintf("Reply to %s", models.FormatPhoneNumber(t.Phone)), a.out)
	if err != nil {
		return err
	}
	if err := a.sms.Send(ctx, v.ReplyableMessageID, content); err != nil {
		printlnFn(userMessage(err, services.MsgSendSMSFailed))
		return err
	}
	printlnFn("SMS sent")

	if err := a.dashboard.SelectThread(ctx, t.ID); err == nil {
		a.printConversation()
	}
	return nil
}
