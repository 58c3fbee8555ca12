package notify

import (
	"sync"
	"time"
)

type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

const (
	DefaultPendingTTL = 1500 * time.Millisecond
	DefaultResultTTL  = 2500 * time.Millisecond
)

// Notification is one toast. TTLMillis mirrors TTL for JSON consumers; 0 means it stays until replaced.
type Notification struct {
	ID        uint64        `json:"id"`
	Kind      Kind          `json:"kind"`
	Message   string        `json:"message"`
	ShownAt   time.Time     `json:"shown_at"`
	TTL       time.Duration `json:"-"`
	TTLMillis int64         `json:"ttl_ms"`
}

type EventType string

const (
	EventShown     EventType = "shown"
	EventDismissed EventType = "dismissed"
)

type Event struct {
	Type         EventType    `json:"type"`
	Notification Notification `json:"notification"`
}

// Notifier holds at most one visible notification. A newer one replaces it; each
// dismisses itself after its TTL.
type Notifier struct {
	mu          sync.Mutex
	current     *Notification
	timer       *time.Timer
	seq         uint64
	subscribers map[uint64]chan Event
	nextSub     uint64
	pendingTTL  time.Duration
	resultTTL   time.Duration
	closed      bool
}

func New(pendingTTL, resultTTL time.Duration) *Notifier {
	return &Notifier{
		subscribers: make(map[uint64]chan Event),
		pendingTTL:  pendingTTL,
		resultTTL:   resultTTL,
	}
}

// Pending announces an in-flight action ("Updating task status...").
func (n *Notifier) Pending(message string) Notification {
	return n.Show(KindInfo, message, n.pendingTTL)
}

func (n *Notifier) Success(message string) Notification {
	return n.Show(KindSuccess, message, n.resultTTL)
}

func (n *Notifier) Error(message string) Notification {
	return n.Show(KindError, message, n.resultTTL)
}

// Show publishes a notification. ttl <= 0 keeps it until replaced. After Close
// the notification is returned but neither shown nor timed.
func (n *Notifier) Show(kind Kind, message string, ttl time.Duration) Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.seq++
	note := Notification{
		ID:      n.seq,
		Kind:    kind,
		Message: message,
		ShownAt: time.Now(),
		TTL:     ttl,
	}
	if ttl > 0 {
		note.TTLMillis = ttl.Milliseconds()
	}
	if n.closed {
		return note
	}
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.current = &note
	n.broadcast(Event{Type: EventShown, Notification: note})

	if ttl > 0 {
		id := note.ID
		n.timer = time.AfterFunc(ttl, func() { n.dismiss(id) })
	}
	return note
}

// Current returns the visible notification, if any.
func (n *Notifier) Current() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Notification{}, false
	}
	return *n.current, true
}

func (n *Notifier) dismiss(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil || n.current.ID != id {
		return
	}
	note := *n.current
	n.current = nil
	n.timer = nil
	n.broadcast(Event{Type: EventDismissed, Notification: note})
}

// Subscribe streams shown/dismissed events. Slow readers miss events rather than block the notifier.
// The channel of a closed notifier is already closed.
func (n *Notifier) Subscribe() (<-chan Event, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan Event, 64)
	if n.closed {
		close(ch)
		return ch, func() {}
	}
	n.nextSub++
	id := n.nextSub
	n.subscribers[id] = ch

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			if c, ok := n.subscribers[id]; ok {
				delete(n.subscribers, id)
				close(c)
			}
		})
	}
	return ch, unsub
}

// Close stops the dismissal timer and ends every subscription.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	n.current = nil
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	for id, ch := range n.subscribers {
		delete(n.subscribers, id)
		close(ch)
	}
}

func (n *Notifier) broadcast(ev Event) {
	for _, ch := range n.subscribers {
		select {
		case ch <- ev:
		default:
			// drop if full
		}
	}
}
