package devserver

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/carbuyer/internal/client/models"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("not found")
	ErrPreferencesExist   = errors.New("preferences already set")
	ErrThreadNotFound     = errors.New("thread not found")
	ErrMessageNotFound    = errors.New("message not found")
	ErrNotReplyable       = errors.New("message cannot be replied to by SMS")
	ErrValidation         = errors.New("validation failed")
)

type userRecord struct {
	user models.User
	hash []byte
}

type threadRecord struct {
	thread   models.Thread
	owner    string
	archived bool
}

type messageRecord struct {
	msg models.Message
	// sms marks a seller text message; only those can be answered by SMS.
	sms bool
}

type inboxRecord struct {
	msg      models.InboxMessage
	owner    string
	assigned bool
}

// SentSMS is a text reply the backend would have handed to the carrier.
type SentSMS struct {
	To        string
	ReplyTo   string
	Content   string
	ThreadID  string
	MessageID string
}

// Store is the in-memory state of the development backend. All methods are
// safe for concurrent use.
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	inboxDomain string
	smsNumber   string

	users   map[string]*userRecord
	byEmail map[string]string
	revoked map[string]struct{}

	threads  map[string]*threadRecord
	order    []string
	messages map[string][]messageRecord
	inbox    []*inboxRecord
	offers   map[string][]models.TrackedOffer
	gmail    map[string]models.GmailStatus
	sent     []SentSMS
}

func NewStore(inboxDomain, smsNumber string) *Store {
	return &Store{
		now:         time.Now,
		inboxDomain: inboxDomain,
		smsNumber:   smsNumber,
		users:       make(map[string]*userRecord),
		byEmail:     make(map[string]string),
		revoked:     make(map[string]struct{}),
		threads:     make(map[string]*threadRecord),
		messages:    make(map[string][]messageRecord),
		offers:      make(map[string][]models.TrackedOffer),
		gmail:       make(map[string]models.GmailStatus),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser registers email with a bcrypt hash of password.
func (s *Store) CreateUser(email, password string) (models.User, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return models.User{}, fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	if len(password) < 6 {
		return models.User{}, fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[email]; ok {
		return models.User{}, ErrEmailTaken
	}

	id := uuid.NewString()
	u := models.User{
		ID:         id,
		Email:      email,
		CreatedAt:  s.now().UTC(),
		InboxEmail: fmt.Sprintf("%s@%s", id[:8], s.inboxDomain),
	}
	s.users[id] = &userRecord{user: u, hash: hash}
	s.byEmail[email] = id
	return *u.Clone(), nil
}

// Authenticate checks a password against the stored hash.
func (s *Store) Authenticate(email, password string) (models.User, error) {
	s.mu.Lock()
	rec, ok := s.users[s.byEmail[normalizeEmail(email)]]
	s.mu.Unlock()
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(rec.hash, []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return *rec.user.Clone(), nil
}

func (s *Store) User(id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return *rec.user.Clone(), nil
}

// UserIDByEmail looks up a registered user.
func (s *Store) UserIDByEmail(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[normalizeEmail(email)]
	return id, ok
}

func (s *Store) Revoke(tokenID string) {
	s.mu.Lock()
	s.revoked[tokenID] = struct{}{}
	s.mu.Unlock()
}

func (s *Store) Revoked(tokenID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[tokenID]
	return ok
}

func (s *Store) Preferences(userID string) (models.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[userID]
	if !ok || rec.user.Preferences == nil {
		return models.Preferences{}, ErrNotFound
	}
	return *rec.user.Preferences, nil
}

// SetPreferences records the target vehicle. It can be set once.
func (s *Store) SetPreferences(userID string, p models.Preferences) (models.Preferences, error) {
	p.Make = strings.TrimSpace(p.Make)
	p.Model = strings.TrimSpace(p.Model)
	if err := p.Validate(); err != nil {
		return models.Preferences{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[userID]
	if !ok {
		return models.Preferences{}, ErrNotFound
	}
	if rec.user.Preferences != nil {
		return models.Preferences{}, ErrPreferencesExist
	}
	rec.user.Preferences = &p
	return p, nil
}

// Threads lists the user's live threads in creation order.
func (s *Store) Threads(userID string) []models.Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Thread, 0)
	for _, id := range s.order {
		rec := s.threads[id]
		if rec.owner == userID && !rec.archived {
			out = append(out, rec.thread)
		}
	}
	return out
}

func (s *Store) CreateThread(userID, sellerName string, sellerType models.SellerType) (models.Thread, error) {
	sellerName = strings.TrimSpace(sellerName)
	if sellerName == "" {
		return models.Thread{}, fmt.Errorf("%w: seller name is required", ErrValidation)
	}
	if sellerType == "" {
		sellerType = models.DefaultSellerType
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t := models.Thread{
		ID:         uuid.NewString(),
		SellerName: sellerName,
		SellerType: sellerType,
		CreatedAt:  s.now().UTC(),
	}
	s.addThreadLocked(userID, t)
	return t, nil
}

func (s *Store) addThreadLocked(userID string, t models.Thread) {
	s.threads[t.ID] = &threadRecord{thread: t, owner: userID}
	s.order = append(s.order, t.ID)
}

func (s *Store) ownedThreadLocked(userID, threadID string) (*threadRecord, error) {
	rec, ok := s.threads[threadID]
	if !ok || rec.owner != userID || rec.archived {
		return nil, ErrThreadNotFound
	}
	return rec, nil
}

// ConsolidateThreads merges threads into a parent: the first selected
// thread with a display name, else the first one selected. The other
// threads are archived after their messages and offers move to the parent.
func (s *Store) ConsolidateThreads(userID string, ids []string) (models.Thread, []string, error) {
	ids = dedupe(ids)
	if len(ids) < 2 {
		return models.Thread{}, nil, fmt.Errorf("%w: at least 2 threads are required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recs := make([]*threadRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := s.ownedThreadLocked(userID, id)
		if err != nil {
			return models.Thread{}, nil, err
		}
		recs = append(recs, rec)
	}

	parent := recs[0]
	for _, rec := range recs {
		if rec.thread.DisplayName != "" {
			parent = rec
			break
		}
	}

	var superseded []string
	for _, rec := range recs {
		if rec == parent {
			continue
		}
		id := rec.thread.ID
		superseded = append(superseded, id)
		rec.archived = true

		for _, m := range s.messages[id] {
			m.msg.ThreadID = parent.thread.ID
			s.messages[parent.thread.ID] = append(s.messages[parent.thread.ID], m)
		}
		delete(s.messages, id)
		for _, o := range s.offers[id] {
			o.ThreadID = parent.thread.ID
			s.offers[parent.thread.ID] = append(s.offers[parent.thread.ID], o)
		}
		delete(s.offers, id)

		parent.thread.UnreadCount += rec.thread.UnreadCount
		if parent.thread.Phone == "" {
			parent.thread.Phone = rec.thread.Phone
		}
	}

	slices.SortStableFunc(s.messages[parent.thread.ID], func(a, b messageRecord) int {
		return a.msg.Timestamp.Compare(b.msg.Timestamp)
	})
	s.refreshSummaryLocked(parent)
	return parent.thread, superseded, nil
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func (s *Store) refreshSummaryLocked(rec *threadRecord) {
	msgs := s.messages[rec.thread.ID]
	rec.thread.MessageCount = len(msgs)
	if len(msgs) == 0 {
		rec.thread.LastMessagePreview = ""
		rec.thread.LastMessageAt = nil
		return
	}
	last := msgs[len(msgs)-1].msg
	ts := last.Timestamp
	rec.thread.LastMessagePreview = last.Content
	rec.thread.LastMessageAt = &ts
}

func (s *Store) ArchiveThread(userID, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.ownedThreadLocked(userID, threadID)
	if err != nil {
		return err
	}
	rec.archived = true
	return nil
}

func (s *Store) MarkThreadRead(userID, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.ownedThreadLocked(userID, threadID)
	if err != nil {
		return err
	}
	rec.thread.UnreadCount = 0
	return nil
}

// ThreadMessages returns the messages of a thread and the latest seller
// SMS, which is what an SMS reply would answer.
func (s *Store) ThreadMessages(userID, threadID string) (models.ThreadMessages, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.ownedThreadLocked(userID, threadID); err != nil {
		return models.ThreadMessages{}, err
	}

	out := models.ThreadMessages{Messages: make([]models.Message, 0)}
	for _, m := range s.messages[threadID] {
		out.Messages = append(out.Messages, m.msg)
		if m.sms && m.msg.Sender == models.SenderSeller {
			out.ReplyableMessageID = m.msg.ID
		}
	}
	return out, nil
}

func (s *Store) Offers(userID, threadID string) ([]models.TrackedOffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.ownedThreadLocked(userID, threadID); err != nil {
		return nil, err
	}
	out := slices.Clone(s.offers[threadID])
	if out == nil {
		out = make([]models.TrackedOffer, 0)
	}
	return out, nil
}

// InboxMessages lists the user's unassigned inbox messages, newest first.
func (s *Store) InboxMessages(userID string) []models.InboxMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.InboxMessage, 0)
	for _, rec := range s.inbox {
		if rec.owner == userID && !rec.assigned {
			out = append(out, rec.msg)
		}
	}
	slices.SortStableFunc(out, func(a, b models.InboxMessage) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out
}

// AssignInboxMessage turns an inbox email into a seller message of a
// thread.
func (s *Store) AssignInboxMessage(userID, messageID, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.ownedThreadLocked(userID, threadID)
	if err != nil {
		return err
	}

	for _, in := range s.inbox {
		if in.msg.ID != messageID || in.owner != userID || in.assigned {
			continue
		}
		in.assigned = true
		s.messages[threadID] = append(s.messages[threadID], messageRecord{msg: models.Message{
			ID:        in.msg.ID,
			ThreadID:  threadID,
			Sender:    models.SenderSeller,
			Content:   in.msg.Content,
			Timestamp: in.msg.Timestamp,
		}})
		rec.thread.UnreadCount++
		s.refreshSummaryLocked(rec)
		return nil
	}
	return ErrMessageNotFound
}

// SendSMSReply answers the seller SMS messageID. The reply is stored as a
// user message of the same thread.
func (s *Store) SendSMSReply(userID, messageID, content string) (models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Message{}, fmt.Errorf("%w: content is required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for threadID, msgs := range s.messages {
		for _, m := range msgs {
			if m.msg.ID != messageID {
				continue
			}
			rec, err := s.ownedThreadLocked(userID, threadID)
			if err != nil {
				return models.Message{}, ErrMessageNotFound
			}
			if !m.sms || m.msg.Sender != models.SenderSeller || rec.thread.Phone == "" {
				return models.Message{}, ErrNotReplyable
			}

			reply := models.Message{
				ID:        uuid.NewString(),
				ThreadID:  threadID,
				Sender:    models.SenderUser,
				Content:   content,
				Timestamp: s.now().UTC(),
			}
			s.messages[threadID] = append(s.messages[threadID], messageRecord{msg: reply})
			s.refreshSummaryLocked(rec)
			s.sent = append(s.sent, SentSMS{
				To:        rec.thread.Phone,
				ReplyTo:   messageID,
				Content:   content,
				ThreadID:  threadID,
				MessageID: reply.ID,
			})
			return reply, nil
		}
	}
	return models.Message{}, ErrMessageNotFound
}

func (s *Store) SentSMS() []SentSMS {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.sent)
}

func (s *Store) SMSNumber() string { return s.smsNumber }

func (s *Store) GmailStatus(userID string) models.GmailStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gmail[userID]
}

// ConnectGmail marks the user's Gmail as connected, standing in for the
// OAuth callback.
func (s *Store) ConnectGmail(userID, gmailEmail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gmail[userID] = models.GmailStatus{Connected: true, GmailEmail: gmailEmail}
}

func (s *Store) DisconnectGmail(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.gmail, userID)
}

// SeedInboxMessage adds an unassigned email to the user's inbox.
func (s *Store) SeedInboxMessage(userID string, m models.InboxMessage) models.InboxMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = s.now().UTC()
	}
	s.inbox = append(s.inbox, &inboxRecord{msg: m, owner: userID})
	return m
}

// SeedMessage appends a message to a thread. A seller message with sms set
// arrived by text from phone, which becomes the thread's number.
func (s *Store) SeedMessage(threadID string, m models.Message, sms bool, phone string) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.threads[threadID]
	if !ok {
		return models.Message{}, ErrThreadNotFound
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Sender == "" {
		m.Sender = models.SenderSeller
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = s.now().UTC()
	}
	m.ThreadID = threadID

	s.messages[threadID] = append(s.messages[threadID], messageRecord{msg: m, sms: sms})
	if phone != "" {
		rec.thread.Phone = phone
	}
	if m.Sender != models.SenderUser {
		rec.thread.UnreadCount++
	}
	s.refreshSummaryLocked(rec)
	return m, nil
}

// SeedOffer records a tracked offer on a thread.
func (s *Store) SeedOffer(threadID, text string) (models.TrackedOffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.threads[threadID]; !ok {
		return models.TrackedOffer{}, ErrThreadNotFound
	}
	o := models.TrackedOffer{
		ID:        uuid.NewString(),
		ThreadID:  threadID,
		OfferText: text,
		TrackedAt: s.now().UTC(),
	}
	s.offers[threadID] = append(s.offers[threadID], o)
	return o, nil
}

// SetDisplayName names a thread the way the agent does once it recognises
// the seller.
func (s *Store) SetDisplayName(threadID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.threads[threadID]
	if !ok {
		return ErrThreadNotFound
	}
	rec.thread.DisplayName = name
	return nil
}
