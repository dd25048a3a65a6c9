package devserver

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/carbuyer/internal/common"
)

// NewRouter mounts the API under common.APIPrefix and the health check at
// the root.
func NewRouter(s *Server) *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests, s.delay)

	r.HandleFunc(common.HealthPath, s.health).Methods(http.MethodGet)

	api := r.PathPrefix(common.APIPrefix).Subrouter()
	api.HandleFunc("/auth/register", s.register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)
	api.HandleFunc("/gmail/callback", s.gmailCallback).Methods(http.MethodGet)

	p := api.NewRoute().Subrouter()
	p.Use(s.requireAuth)
	p.HandleFunc("/auth/me", s.me).Methods(http.MethodGet)
	p.HandleFunc("/auth/logout", s.logout).Methods(http.MethodPost)

	p.HandleFunc("/preferences", s.getPreferences).Methods(http.MethodGet)
	p.HandleFunc("/preferences", s.createPreferences).Methods(http.MethodPost)

	p.HandleFunc("/threads", s.listThreads).Methods(http.MethodGet)
	p.HandleFunc("/threads", s.createThread).Methods(http.MethodPost)
	p.HandleFunc("/threads/consolidate", s.consolidateThreads).Methods(http.MethodPost)
	p.HandleFunc("/threads/{id}", s.archiveThread).Methods(http.MethodDelete)
	p.HandleFunc("/threads/{id}/read", s.markThreadRead).Methods(http.MethodPost)
	p.HandleFunc("/threads/{id}/offers", s.threadOffers).Methods(http.MethodGet)
	p.HandleFunc("/threads/{id}/messages", s.threadMessages).Methods(http.MethodGet)

	p.HandleFunc("/inbox/messages", s.inboxMessages).Methods(http.MethodGet)
	p.HandleFunc("/inbox/messages/{id}/assign", s.assignInboxMessage).Methods(http.MethodPost)

	p.HandleFunc("/gmail/status", s.gmailStatus).Methods(http.MethodGet)
	p.HandleFunc("/gmail/auth-url", s.gmailAuthURL).Methods(http.MethodGet)
	p.HandleFunc("/gmail/disconnect", s.gmailDisconnect).Methods(http.MethodPost)

	p.HandleFunc("/messages/{id}/sms-reply", s.smsReply).Methods(http.MethodPost)
	p.HandleFunc("/sms/phone-number", s.smsPhoneNumber).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	return r
}
