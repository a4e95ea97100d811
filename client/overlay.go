package client

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// OverlayEntry is one in-flight action shown optimistically in the UI before
// the server confirms it. Entries never mutate hand or pot state; they only
// flag intent (e.g. "drawing", "discard index 2 pending").
type OverlayEntry struct {
	ActionID  string
	Kind      string
	CardIndex int
	Deadline  time.Time
}

const (
	overlayDraw    = "draw"
	overlayDiscard = "discard"
	overlayQuit    = "quit"
)

// overlay tracks pending actions keyed by action id. Entries resolve when the
// server responds or when their deadline passes, whichever comes first.
type overlay struct {
	mu      sync.Mutex
	ttl     time.Duration
	pending map[string]OverlayEntry
	now     func() time.Time
}

func newOverlay(ttl time.Duration) *overlay {
	return &overlay{ttl: ttl, pending: make(map[string]OverlayEntry), now: time.Now}
}

// begin registers a pending action and returns its id.
func (o *overlay) begin(kind string, cardIndex int) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := uuid.NewString()
	o.pending[id] = OverlayEntry{
		ActionID:  id,
		Kind:      kind,
		CardIndex: cardIndex,
		Deadline:  o.now().Add(o.ttl),
	}
	return id
}

// resolve removes a pending action once its server response lands, whether
// the call succeeded or failed.
func (o *overlay) resolve(actionID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.pending, actionID)
}

// entries returns live entries, expiring stale ones as a side effect so an
// action whose response never arrives cannot pin the UI forever.
func (o *overlay) entries() []OverlayEntry {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := o.now()
	out := make([]OverlayEntry, 0, len(o.pending))
	for id, e := range o.pending {
		if now.After(e.Deadline) {
			delete(o.pending, id)
			continue
		}
		out = append(out, e)
	}
	return out
}

// clear drops every pending entry; used on teardown.
func (o *overlay) clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = make(map[string]OverlayEntry)
}
