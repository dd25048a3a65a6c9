package services

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/carbuyer/internal/client/client"
	"github.com/dmitrijs2005/carbuyer/internal/client/models"
	"github.com/dmitrijs2005/carbuyer/internal/logging"
)

// DashboardAPI is the part of the backend the dashboard talks to.
type DashboardAPI interface {
	client.ThreadAPI
	client.MessageAPI
}

// SessionReader exposes the read-only session projection.
type SessionReader interface {
	Snapshot() SessionView
}

// DashboardView is a copy of the dashboard state for rendering.
type DashboardView struct {
	Threads            []models.Thread
	SelectedThreadID   string
	Messages           []models.Message
	ReplyableMessageID string
	Offers             []models.TrackedOffer
	Inbox              []models.InboxMessage
	SelectedInboxID    string
	EditMode           bool
	Selection          []string

	ThreadsLoading  bool
	MessagesLoading bool
	InboxLoading    bool
}

// SelectedThread returns the selected thread, or nil.
func (v DashboardView) SelectedThread() *models.Thread {
	for i := range v.Threads {
		if v.Threads[i].ID == v.SelectedThreadID {
			return &v.Threads[i]
		}
	}
	return nil
}

// Dashboard holds the threads, messages, offers and inbox of one dashboard
// view and keeps them in step with the backend through explicit reloads and
// local updates of server responses.
type Dashboard struct {
	api     DashboardAPI
	session SessionReader
	events  *Events
	log     logging.Logger

	mu sync.Mutex

	loaded      bool
	threads     []models.Thread
	selectedID  string
	messages    []models.Message
	replyableID string
	offers      []models.TrackedOffer
	inbox       []models.InboxMessage
	inboxSel    string
	editMode    bool
	selection   []string

	threadsLoading  bool
	messagesLoading bool
	inboxLoading    bool

	// gen tags thread selections; only the latest may write messages.
	gen       uint64
	cancelSel context.CancelFunc
}

func NewDashboard(api DashboardAPI, session SessionReader, events *Events, log logging.Logger) *Dashboard {
	if events == nil {
		events = NewEvents()
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Dashboard{api: api, session: session, events: events, log: log}
}

func (d *Dashboard) Events() *Events { return d.events }

// Load fetches the thread list. It requires a session with preferences.
func (d *Dashboard) Load(ctx context.Context) error {
	if d.session.Snapshot().State != StateAuthenticated {
		return ErrNotAuthenticated
	}

	d.mu.Lock()
	d.threadsLoading = true
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.threadsLoading = false
		d.mu.Unlock()
	}()

	threads, err := d.api.GetThreads(ctx)
	if err != nil {
		d.log.Error(ctx, "load threads", "error", err)
		return err
	}

	d.mu.Lock()
	d.threads = threads
	d.loaded = true
	d.mu.Unlock()
	return nil
}

// Loaded reports whether the thread list was fetched at least once.
func (d *Dashboard) Loaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loaded
}

func (d *Dashboard) View() DashboardView {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DashboardView{
		Threads:            slices.Clone(d.threads),
		SelectedThreadID:   d.selectedID,
		Messages:           slices.Clone(d.messages),
		ReplyableMessageID: d.replyableID,
		Offers:             slices.Clone(d.offers),
		Inbox:              slices.Clone(d.inbox),
		SelectedInboxID:    d.inboxSel,
		EditMode:           d.editMode,
		Selection:          slices.Clone(d.selection),
		ThreadsLoading:     d.threadsLoading,
		MessagesLoading:    d.messagesLoading,
		InboxLoading:       d.inboxLoading,
	}
}

// Reset drops all dashboard state, cancelling an in-flight selection. It is
// used when the user signs out.
func (d *Dashboard) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancelSel != nil {
		d.cancelSel()
		d.cancelSel = nil
	}
	d.gen++
	d.loaded = false
	d.threads = nil
	d.selectedID = ""
	d.messages = nil
	d.replyableID = ""
	d.offers = nil
	d.inbox = nil
	d.inboxSel = ""
	d.editMode = false
	d.selection = nil
	d.threadsLoading = false
	d.messagesLoading = false
	d.inboxLoading = false
}

// TotalUnread sums the unread counters of all threads.
func (d *Dashboard) TotalUnread() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, t := range d.threads {
		n += t.UnreadCount
	}
	return n
}

// CreateThread creates a thread, appends the server's copy and selects it.
// A blank seller name fails without a request.
func (d *Dashboard) CreateThread(ctx context.Context, sellerName string, sellerType models.SellerType) (*models.Thread, error) {
	name := strings.TrimSpace(sellerName)
	if name == "" {
		return nil, ErrSellerNameRequired
	}
	if sellerType == "" {
		sellerType = models.DefaultSellerType
	}

	t, err := d.api.CreateThread(ctx, name, sellerType)
	if err != nil {
		d.log.Error(ctx, "create thread", "error", err)
		return nil, err
	}

	d.mu.Lock()
	d.threads = upsertThread(d.threads, *t)
	d.mu.Unlock()

	d.selectAfterWrite(ctx, t.ID)
	return t, nil
}

// selectAfterWrite selects a thread the user just produced. Message loading
// failures are already logged by SelectThread.
func (d *Dashboard) selectAfterWrite(ctx context.Context, id string) {
	_ = d.SelectThread(ctx, id)
}

func upsertThread(threads []models.Thread, t models.Thread) []models.Thread {
	for i := range threads {
		if threads[i].ID == t.ID {
			threads[i] = t
			return threads
		}
	}
	return append(threads, t)
}

// ToggleEditMode enters or leaves multi-select mode, clearing the selection.
func (d *Dashboard) ToggleEditMode() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.editMode = !d.editMode
	d.selection = nil
	return d.editMode
}

func (d *Dashboard) CancelEdit() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.editMode = false
	d.selection = nil
}

// ToggleSelection adds or removes a thread from the consolidation set and
// reports whether it is selected afterwards. It does nothing outside edit
// mode or for an unknown thread.
func (d *Dashboard) ToggleSelection(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.editMode || !slices.ContainsFunc(d.threads, func(t models.Thread) bool { return t.ID == id }) {
		return false
	}
	if i := slices.Index(d.selection, id); i >= 0 {
		d.selection = slices.Delete(d.selection, i, i+1)
		return false
	}
	d.selection = append(d.selection, id)
	return true
}

// Selection returns the consolidation set in selection order.
func (d *Dashboard) Selection() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.selection)
}

func (d *Dashboard) CanConsolidate() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.selection) >= 2
}

// Consolidate merges the selected threads. The superseded threads are
// removed from the list: those named by the server, or every selected
// thread other than the result when the server names none. The merged
// thread is then selected. With fewer than two threads selected nothing is
// sent.
func (d *Dashboard) Consolidate(ctx context.Context) (*models.Thread, error) {
	d.mu.Lock()
	if len(d.selection) < 2 {
		d.mu.Unlock()
		return nil, ErrNotEnoughThreads
	}
	ids := slices.Clone(d.selection)
	d.mu.Unlock()

	res, err := d.api.ConsolidateThreads(ctx, ids)
	if err != nil {
		d.log.Error(ctx, "consolidate threads", "error", err, "thread_ids", ids)
		return nil, err
	}

	superseded := res.SupersededIDs
	if len(superseded) == 0 {
		for _, id := range ids {
			if id != res.Thread.ID {
				superseded = append(superseded, id)
			}
		}
	}

	d.mu.Lock()
	d.editMode = false
	d.selection = nil
	d.threads = slices.DeleteFunc(d.threads, func(t models.Thread) bool {
		return t.ID != res.Thread.ID && slices.Contains(superseded, t.ID)
	})
	d.threads = upsertThread(d.threads, res.Thread)
	d.mu.Unlock()

	merged := res.Thread
	d.selectAfterWrite(ctx, merged.ID)
	return &merged, nil
}

// SelectThread makes id the selected thread and fetches its messages and
// tracked offers. Every call fetches again. A newer selection cancels the
// request of an older one, and an older response arriving late is dropped
// with ErrStaleSelection. The thread is then marked read on a best-effort
// basis.
func (d *Dashboard) SelectThread(ctx context.Context, id string) error {
	d.mu.Lock()
	if !slices.ContainsFunc(d.threads, func(t models.Thread) bool { return t.ID == id }) {
		d.mu.Unlock()
		return ErrUnknownThread
	}
	d.gen++
	gen := d.gen
	if d.cancelSel != nil {
		d.cancelSel()
	}
	selCtx, cancel := context.WithCancel(ctx)
	d.cancelSel = cancel
	d.selectedID = id
	d.messages = nil
	d.replyableID = ""
	d.offers = nil
	d.messagesLoading = true
	d.mu.Unlock()
	defer cancel()

	msgs, err := d.api.GetThreadMessages(selCtx, id)
	var (
		offers    []models.TrackedOffer
		offersErr error
	)
	if err == nil {
		offers, offersErr = d.api.GetTrackedOffers(selCtx, id)
	}

	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return ErrStaleSelection
	}
	d.messagesLoading = false
	d.cancelSel = nil
	if err != nil {
		d.mu.Unlock()
		d.log.Error(ctx, "load thread messages", "thread_id", id, "error", err)
		return err
	}
	d.messages = msgs.Messages
	d.replyableID = msgs.ReplyableMessageID
	if offersErr == nil {
		d.offers = offers
	}
	unread := false
	for i := range d.threads {
		if d.threads[i].ID == id && d.threads[i].UnreadCount > 0 {
			d.threads[i].UnreadCount = 0
			unread = true
		}
	}
	d.mu.Unlock()

	if offersErr != nil {
		d.log.Warn(ctx, "load tracked offers", "thread_id", id, "error", offersErr)
	}
	if unread {
		if err := d.api.MarkThreadRead(ctx, id); err != nil {
			d.log.Warn(ctx, "mark thread read", "thread_id", id, "error", err)
		}
	}
	return nil
}

// ReloadOffers fetches the tracked offers of the selected thread again.
func (d *Dashboard) ReloadOffers(ctx context.Context) error {
	d.mu.Lock()
	id := d.selectedID
	d.mu.Unlock()
	if id == "" {
		return ErrUnknownThread
	}

	offers, err := d.api.GetTrackedOffers(ctx, id)
	if err != nil {
		d.log.Warn(ctx, "load tracked offers", "thread_id", id, "error", err)
		return err
	}

	d.mu.Lock()
	if d.selectedID == id {
		d.offers = offers
	}
	d.mu.Unlock()
	return nil
}

// ArchiveThread removes a thread once the server has archived it.
func (d *Dashboard) ArchiveThread(ctx context.Context, id string) error {
	if err := d.api.ArchiveThread(ctx, id); err != nil {
		d.log.Error(ctx, "archive thread", "thread_id", id, "error", err)
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.threads = slices.DeleteFunc(d.threads, func(t models.Thread) bool { return t.ID == id })
	d.selection = slices.DeleteFunc(d.selection, func(s string) bool { return s == id })
	if d.selectedID == id {
		if d.cancelSel != nil {
			d.cancelSel()
			d.cancelSel = nil
		}
		d.gen++
		d.selectedID = ""
		d.messages = nil
		d.replyableID = ""
		d.offers = nil
		d.messagesLoading = false
	}
	return nil
}

// LoadInbox fetches the unassigned inbox messages.
func (d *Dashboard) LoadInbox(ctx context.Context) error {
	d.mu.Lock()
	d.inboxLoading = true
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.inboxLoading = false
		d.mu.Unlock()
	}()

	msgs, err := d.api.GetInboxMessages(ctx)
	if err != nil {
		d.log.Error(ctx, "load inbox", "error", err)
		return err
	}

	d.mu.Lock()
	d.inbox = msgs
	if !slices.ContainsFunc(msgs, func(m models.InboxMessage) bool { return m.ID == d.inboxSel }) {
		d.inboxSel = ""
	}
	d.mu.Unlock()
	return nil
}

func (d *Dashboard) SelectInboxMessage(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !slices.ContainsFunc(d.inbox, func(m models.InboxMessage) bool { return m.ID == id }) {
		return ErrNoInboxMessage
	}
	d.inboxSel = id
	return nil
}

// AssignInboxMessage assigns the selected inbox message to a thread. On
// success it broadcasts EventInboxRefresh and then calls onAssigned, if
// given. On failure the error is logged and returned and nothing changes
// locally.
func (d *Dashboard) AssignInboxMessage(ctx context.Context, threadID string, onAssigned func()) error {
	d.mu.Lock()
	msgID := d.inboxSel
	d.mu.Unlock()
	if msgID == "" {
		return ErrNoInboxMessage
	}

	if err := d.api.AssignInboxMessageToThread(ctx, msgID, threadID); err != nil {
		d.log.Error(ctx, "assign inbox message", "message_id", msgID, "thread_id", threadID, "error", err)
		return err
	}

	d.mu.Lock()
	if d.inboxSel == msgID {
		d.inboxSel = ""
	}
	d.mu.Unlock()

	d.events.Publish(Event{Topic: EventInboxRefresh, Payload: msgID})
	if onAssigned != nil {
		onAssigned()
	}
	return nil
}

// WatchInbox reloads the inbox on every EventInboxRefresh until ctx is done.
func (d *Dashboard) WatchInbox(ctx context.Context) {
	ch, cancel := d.events.Subscribe(EventInboxRefresh)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			if err := d.LoadInbox(ctx); err != nil && ctx.Err() == nil {
				d.log.Warn(ctx, "reload inbox after refresh signal", "error", err)
			}
		}
	}
}
