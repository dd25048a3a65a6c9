package services

import (
	"context"

	"github.com/dmitrijs2005/carbuyer/internal/client/client"
	"github.com/dmitrijs2005/carbuyer/internal/client/models"
	"github.com/dmitrijs2005/carbuyer/internal/logging"
)

// GmailService connects the user's Gmail account to the inbox.
type GmailService interface {
	// Status reports the connection; a failed lookup reads as disconnected.
	Status(ctx context.Context) models.GmailStatus
	// ConnectURL returns the OAuth consent URL the user has to open.
	ConnectURL(ctx context.Context) (string, error)
	Disconnect(ctx context.Context) error
}

type gmailService struct {
	api client.GmailAPI
	log logging.Logger
}

func NewGmailService(api client.GmailAPI, log logging.Logger) GmailService {
	if log == nil {
		log = logging.Nop()
	}
	return &gmailService{api: api, log: log}
}

func (g *gmailService) Status(ctx context.Context) models.GmailStatus {
	st, err := g.api.GetGmailStatus(ctx)
	if err != nil {
		g.log.Warn(ctx, "gmail status", "error", err)
		return models.GmailStatus{}
	}
	return *st
}

func (g *gmailService) ConnectURL(ctx context.Context) (string, error) {
	u, err := g.api.GetGmailAuthURL(ctx)
	if err != nil {
		g.log.Error(ctx, "gmail auth url", "error", err)
		return "", err
	}
	return u, nil
}

func (g *gmailService) Disconnect(ctx context.Context) error {
	if err := g.api.DisconnectGmail(ctx); err != nil {
		g.log.Error(ctx, "gmail disconnect", "error", err)
		return err
	}
	return nil
}
