package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/DemosCVV/Oge/internal/config"
	"github.com/DemosCVV/Oge/internal/models"
	"github.com/DemosCVV/Oge/internal/ratelimit"
	"github.com/DemosCVV/Oge/internal/session"
)

// In-memory fakes mirroring the conditional-write semantics of the
// Postgres repositories.

type memPurchases struct {
	mu   sync.Mutex
	seq  int64
	rows map[int64]models.Purchase
}

func newMemPurchases() *memPurchases {
	return &memPurchases{rows: make(map[int64]models.Purchase)}
}

func (m *memPurchases) Create(_ context.Context, actorID int64, productSlug string, amount int64, now time.Time) (*models.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.rows {
		if p.ActorID == actorID && p.Status == models.StatusPending {
			return nil, models.ErrAlreadyPending
		}
	}

	m.seq++
	p := models.Purchase{
		ID:          m.seq,
		ActorID:     actorID,
		ProductSlug: productSlug,
		Amount:      amount,
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.rows[p.ID] = p
	return &p, nil
}

func (m *memPurchases) Get(_ context.Context, id int64) (*models.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.rows[id]
	if !ok {
		return nil, models.ErrPurchaseNotFound
	}
	return &p, nil
}

func (m *memPurchases) LatestPending(_ context.Context, actorID int64) (*models.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var latest *models.Purchase
	for id := range m.rows {
		p := m.rows[id]
		if p.ActorID == actorID && p.Status == models.StatusPending {
			if latest == nil || p.ID > latest.ID {
				latest = &p
			}
		}
	}
	if latest == nil {
		return nil, models.ErrPurchaseNotFound
	}
	return latest, nil
}

func (m *memPurchases) AttachReceipt(_ context.Context, id int64, artifactRef, fingerprint string, maxAttempts int, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.rows[id]
	if !ok || p.Status != models.StatusPending || p.ReceiptCount >= maxAttempts {
		return 0, models.ErrNotPending
	}
	p.ReceiptCount++
	p.ReceiptRef = artifactRef
	p.ReceiptFingerprint = fingerprint
	p.UpdatedAt = now
	m.rows[id] = p
	return p.ReceiptCount, nil
}

func (m *memPurchases) Decide(_ context.Context, id int64, status models.PurchaseStatus, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.rows[id]
	if !ok || p.Status != models.StatusPending {
		return 0, nil
	}
	p.Status = status
	p.UpdatedAt = now
	m.rows[id] = p
	return 1, nil
}

func (m *memPurchases) Stats(_ context.Context) (*models.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var st models.Stats
	for _, p := range m.rows {
		st.PurchasesTotal++
		switch p.Status {
		case models.StatusApproved:
			st.Approved++
			st.Revenue += p.Amount
		case models.StatusPending:
			st.Pending++
		case models.StatusDenied, models.StatusCanceled:
			st.Denied++
		}
	}
	return &st, nil
}

func (m *memPurchases) pendingCount(actorID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, p := range m.rows {
		if p.ActorID == actorID && p.Status == models.StatusPending {
			n++
		}
	}
	return n
}

type memLedger struct {
	mu   sync.Mutex
	rows map[string]models.ReceiptUse
}

func newMemLedger() *memLedger {
	return &memLedger{rows: make(map[string]models.ReceiptUse)}
}

func (m *memLedger) IsUsed(_ context.Context, fingerprint string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[fingerprint]
	return ok, nil
}

func (m *memLedger) MarkUsed(_ context.Context, fingerprint string, purchaseID, actorID int64, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[fingerprint]; ok {
		return false, nil
	}
	m.rows[fingerprint] = models.ReceiptUse{
		Fingerprint: fingerprint,
		PurchaseID:  purchaseID,
		ActorID:     actorID,
		CreatedAt:   now,
	}
	return true, nil
}

func (m *memLedger) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memActors struct {
	mu   sync.Mutex
	rows map[int64]models.Actor
}

func newMemActors() *memActors {
	return &memActors{rows: make(map[int64]models.Actor)}
}

func (m *memActors) Upsert(_ context.Context, actor models.Actor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.rows[actor.ID]; ok {
		actor.CreatedAt = existing.CreatedAt
	}
	m.rows[actor.ID] = actor
	return nil
}

func (m *memActors) Get(_ context.Context, id int64) (*models.Actor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return nil, models.ErrActorNotFound
	}
	return &a, nil
}

func (m *memActors) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.rows)), nil
}

func (m *memActors) AllIDs(_ context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]int64, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *memActors) FindByUsername(_ context.Context, username string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	username = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(username), "@"))
	for _, a := range m.rows {
		if strings.ToLower(a.Username) == username && username != "" {
			return a.ID, nil
		}
	}
	return 0, models.ErrActorNotFound
}

type memSettings struct {
	mu   sync.Mutex
	rows map[string]string
}

func newMemSettings() *memSettings {
	return &memSettings{rows: make(map[string]string)}
}

func (m *memSettings) Get(_ context.Context, key, def string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.rows[key]; ok && v != "" {
		return v, nil
	}
	return def, nil
}

func (m *memSettings) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[key] = value
	return nil
}

type memBalances struct {
	mu   sync.Mutex
	rows map[int64]int64
}

func newMemBalances() *memBalances {
	return &memBalances{rows: make(map[int64]int64)}
}

func (m *memBalances) Add(_ context.Context, actorID int64, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[actorID] += delta
	return m.rows[actorID], nil
}

// recDispatcher records every notification; individual actors can be
// marked unreachable.
type sentNotification struct {
	actorID int64
	kind    models.NotificationKind
	payload any
}

type recDispatcher struct {
	mu          sync.Mutex
	actorMsgs   []sentNotification
	opMsgs      []sentNotification
	unreachable map[int64]bool
}

func newRecDispatcher() *recDispatcher {
	return &recDispatcher{unreachable: make(map[int64]bool)}
}

func (d *recDispatcher) NotifyActor(_ context.Context, actorID int64, kind models.NotificationKind, payload any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.unreachable[actorID] {
		return fmt.Errorf("actor %d unreachable", actorID)
	}
	d.actorMsgs = append(d.actorMsgs, sentNotification{actorID: actorID, kind: kind, payload: payload})
	return nil
}

func (d *recDispatcher) NotifyOperator(_ context.Context, kind models.NotificationKind, payload any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opMsgs = append(d.opMsgs, sentNotification{kind: kind, payload: payload})
	return nil
}

func (d *recDispatcher) actorMessages(kind models.NotificationKind) []sentNotification {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []sentNotification
	for _, msg := range d.actorMsgs {
		if msg.kind == kind {
			out = append(out, msg)
		}
	}
	return out
}

func (d *recDispatcher) operatorMessages(kind models.NotificationKind) []sentNotification {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []sentNotification
	for _, msg := range d.opMsgs {
		if msg.kind == kind {
			out = append(out, msg)
		}
	}
	return out
}

type memPublisher struct {
	mu     sync.Mutex
	events []models.StateChangedEvent
}

func (p *memPublisher) PublishStateChanged(_ context.Context, event models.StateChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Test wiring.

const (
	testOperatorID  = int64(99)
	testMaxAttempts = 3
)

type fixture struct {
	purchases  *memPurchases
	ledger     *memLedger
	actors     *memActors
	settings   *memSettings
	balances   *memBalances
	dispatcher *recDispatcher
	publisher  *memPublisher
	sessions   *session.MemoryStore
	lifecycle  *Lifecycle
	conv       *Conversation

	clock time.Time
}

func newFixture() *fixture {
	f := &fixture{
		purchases:  newMemPurchases(),
		ledger:     newMemLedger(),
		actors:     newMemActors(),
		settings:   newMemSettings(),
		balances:   newMemBalances(),
		dispatcher: newRecDispatcher(),
		publisher:  &memPublisher{},
		sessions:   session.NewMemoryStore(),
		clock:      time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
	}

	log := zap.NewNop()
	f.lifecycle = NewLifecycle(
		f.purchases, f.ledger, f.settings, config.DefaultCatalog(),
		f.dispatcher, f.publisher, session.NewMemoryLocker(),
		testOperatorID, testMaxAttempts, log,
	)
	broadcaster := NewBroadcaster(f.actors, f.dispatcher, log)
	f.conv = NewConversation(
		f.sessions, ratelimit.New(2*time.Second), f.lifecycle,
		f.actors, f.settings, f.balances, f.dispatcher, broadcaster,
		testOperatorID, log,
	)
	f.conv.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}
