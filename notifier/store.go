// Package notifier holds the process-wide notification log and the
// simulated delivery step that moves entries from pending to sent.
package notifier

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"attire-service/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Listener receives a snapshot of the full log after every mutation.
type Listener func(log []models.Notification) error

type SubscriptionID uint64

// Store is an append-only notification log. Entries are never removed;
// only Status, Error and SentAt change after Record.
type Store struct {
	mu      sync.RWMutex
	entries []models.Notification
	index   map[uuid.UUID]int

	listenersMu sync.Mutex
	listeners   map[SubscriptionID]Listener
	nextSubID   SubscriptionID

	now    func() time.Time
	logger *zap.Logger
}

func NewStore(logger *zap.Logger, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		index:     make(map[uuid.UUID]int),
		listeners: make(map[SubscriptionID]Listener),
		now:       now,
		logger:    logger,
	}
}

// Record appends n and returns the stored copy.
func (s *Store) Record(n models.Notification) models.Notification {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}
	if n.ScheduledFor.IsZero() {
		n.ScheduledFor = n.CreatedAt
	}
	if n.Status == "" {
		n.Status = models.StatusPending
	}

	s.mu.Lock()
	s.index[n.ID] = len(s.entries)
	s.entries = append(s.entries, n)
	s.mu.Unlock()

	s.logger.Info("notification recorded",
		zap.String("notification_id", n.ID.String()),
		zap.String("order_id", n.OrderID.String()),
		zap.String("type", string(n.Type)),
	)
	s.notify()
	return n
}

// MarkAsSent is idempotent: a second call keeps the first SentAt.
func (s *Store) MarkAsSent(id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", models.ErrNotificationMissing, id)
	}
	if e := &s.entries[i]; e.Status != models.StatusSent {
		sentAt := at
		e.Status = models.StatusSent
		e.Error = ""
		e.SentAt = &sentAt
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// MarkAsFailed records a delivery failure. Sent entries stay sent.
func (s *Store) MarkAsFailed(id uuid.UUID, reason string) error {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", models.ErrNotificationMissing, id)
	}
	if e := &s.entries[i]; e.Status != models.StatusSent {
		e.Status = models.StatusFailed
		e.Error = reason
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *Store) Get(id uuid.UUID) (models.Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return models.Notification{}, false
	}
	return s.entries[i], true
}

// List returns a copy of the log, newest first when requested.
func (s *Store) List(newestFirst bool) []models.Notification {
	s.mu.RLock()
	out := make([]models.Notification, len(s.entries))
	copy(out, s.entries)
	s.mu.RUnlock()

	if newestFirst {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	return out
}

// Query filters the log newest first and returns one page plus the match count.
func (s *Store) Query(filter models.NotificationFilter) ([]models.Notification, int) {
	if filter.PageSize < 1 {
		filter.PageSize = defaultPageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}
	if filter.Page < 1 {
		filter.Page = 1
	}

	matched := make([]models.Notification, 0)
	for _, n := range s.List(true) {
		if filter.Type != "" && n.Type != filter.Type {
			continue
		}
		if filter.Status != "" && n.Status != filter.Status {
			continue
		}
		if filter.OrderID != uuid.Nil && n.OrderID != filter.OrderID {
			continue
		}
		if filter.CustomerID != uuid.Nil && n.CustomerID != filter.CustomerID {
			continue
		}
		matched = append(matched, n)
	}

	total := len(matched)
	start := (filter.Page - 1) * filter.PageSize
	if start >= total {
		return []models.Notification{}, total
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total
}

// Pending returns entries still waiting for delivery whose ScheduledFor is
// not after dueBy, oldest first.
func (s *Store) Pending(dueBy time.Time) []models.Notification {
	var due []models.Notification
	for _, n := range s.List(false) {
		if n.Status == models.StatusPending && !n.ScheduledFor.After(dueBy) {
			due = append(due, n)
		}
	}
	return due
}

func (s *Store) Subscribe(l Listener) SubscriptionID {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.nextSubID++
	s.listeners[s.nextSubID] = l
	return s.nextSubID
}

func (s *Store) Unsubscribe(id SubscriptionID) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	delete(s.listeners, id)
}

func (s *Store) notify() {
	s.listenersMu.Lock()
	listeners := make(map[SubscriptionID]Listener, len(s.listeners))
	for id, l := range s.listeners {
		listeners[id] = l
	}
	s.listenersMu.Unlock()

	for id, l := range listeners {
		s.invoke(id, l, s.List(true))
	}
}

// invoke shields the store from a failing listener.
func (s *Store) invoke(id SubscriptionID, l Listener, snapshot []models.Notification) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("notification listener panicked",
				zap.Uint64("subscription", uint64(id)),
				zap.Any("panic", r),
			)
		}
	}()
	if err := l(snapshot); err != nil {
		s.logger.Warn("notification listener failed",
			zap.Uint64("subscription", uint64(id)),
			zap.Error(err),
		)
	}
}
