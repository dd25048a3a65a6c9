package devserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/carbuyer/internal/client/models"
	"github.com/dmitrijs2005/carbuyer/internal/common"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", common.ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, common.ErrorResponse{Error: msg})
}

// writeStoreError maps a store error to its status. Validation messages
// are passed through without the sentinel prefix.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		writeError(w, http.StatusBadRequest, strings.TrimPrefix(err.Error(), ErrValidation.Error()+": "))
	case errors.Is(err, ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrPreferencesExist):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrThreadNotFound), errors.Is(err, ErrMessageNotFound), errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotReplyable):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.log.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func userID(r *http.Request) string {
	return claimsFrom(r.Context()).UserID
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) issue(w http.ResponseWriter, r *http.Request, status int, u models.User) {
	token, _, err := GenerateToken(u.ID, s.secret, s.cfg.TokenTTL, s.store.now())
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, status, models.AuthResponse{User: u, Token: token})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := s.store.CreateUser(req.Email, req.Password)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.issue(w, r, http.StatusCreated, u)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := s.store.Authenticate(req.Email, req.Password)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.issue(w, r, http.StatusOK, u)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	u, err := s.store.User(userID(r))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.store.Revoke(claimsFrom(r.Context()).ID)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) getPreferences(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Preferences(userID(r))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "preferences not set")
			return
		}
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) createPreferences(w http.ResponseWriter, r *http.Request) {
	var p models.Preferences
	if !decode(w, r, &p) {
		return
	}
	saved, err := s.store.SetPreferences(userID(r), p)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) listThreads(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]models.Thread{"threads": s.store.Threads(userID(r))})
}

type createThreadRequest struct {
	SellerName string            `json:"sellerName"`
	SellerType models.SellerType `json:"sellerType"`
}

func (s *Server) createThread(w http.ResponseWriter, r *http.Request) {
	var req createThreadRequest
	if !decode(w, r, &req) {
		return
	}
	t, err := s.store.CreateThread(userID(r), req.SellerName, req.SellerType)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) consolidateThreads(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ThreadIDs []string `json:"threadIds"`
	}
	if !decode(w, r, &req) {
		return
	}
	t, superseded, err := s.store.ConsolidateThreads(userID(r), req.ThreadIDs)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.ConsolidateResult{Thread: t, SupersededIDs: superseded})
}

func (s *Server) archiveThread(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ArchiveThread(userID(r), mux.Vars(r)["id"]); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) markThreadRead(w http.ResponseWriter, r *http.Request) {
	if err := s.store.MarkThreadRead(userID(r), mux.Vars(r)["id"]); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) threadOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := s.store.Offers(userID(r), mux.Vars(r)["id"])
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.TrackedOffer{"offers": offers})
}

func (s *Server) threadMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.store.ThreadMessages(userID(r), mux.Vars(r)["id"])
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) inboxMessages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]models.InboxMessage{"messages": s.store.InboxMessages(userID(r))})
}

func (s *Server) assignInboxMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ThreadID string `json:"threadId"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := s.store.AssignInboxMessage(userID(r), mux.Vars(r)["id"], req.ThreadID); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) gmailStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.GmailStatus(userID(r)))
}

// gmailAuthURL points at the local callback, which stands in for Google's
// consent screen.
func (s *Server) gmailAuthURL(w http.ResponseWriter, r *http.Request) {
	u, err := s.store.User(userID(r))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	q := url.Values{"state": {u.ID}, "email": {u.Email}}
	authURL := fmt.Sprintf("%s://%s%s/gmail/callback?%s", scheme, r.Host, common.APIPrefix, q.Encode())
	writeJSON(w, http.StatusOK, map[string]string{"authUrl": authURL})
}

func (s *Server) gmailCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if _, err := s.store.User(q.Get("state")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid state")
		return
	}
	s.store.ConnectGmail(q.Get("state"), q.Get("email"))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) gmailDisconnect(w http.ResponseWriter, r *http.Request) {
	s.store.DisconnectGmail(userID(r))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) smsReply(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if !decode(w, r, &req) {
		return
	}
	msg, err := s.store.SendSMSReply(userID(r), mux.Vars(r)["id"], req.Content)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (s *Server) smsPhoneNumber(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"phoneNumber": s.store.SMSNumber()})
}
