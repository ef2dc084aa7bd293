package core

import (
	"context"
	"time"

	"aulachat/internal/store"
)

// DefaultDedupWindow is the trailing interval within which an identical
// resubmission from the same sender is suppressed.
const DefaultDedupWindow = 5 * time.Second

// DedupWindow suppresses exact repeats of (room, sender, body) submitted
// within a trailing interval, absorbing client retransmissions without
// producing duplicate records.
//
// The check runs against the message store rather than a separate cache so
// the dedup horizon survives process restarts and stays consistent with the
// durable order of record. Comparison is exact string match: bodies differing
// only in whitespace or case are distinct messages.
type DedupWindow struct {
	messages store.MessageStore
	window   time.Duration
}

// NewDedupWindow builds a dedup check over the given store. A non-positive
// window falls back to DefaultDedupWindow.
func NewDedupWindow(messages store.MessageStore, window time.Duration) *DedupWindow {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	return &DedupWindow{messages: messages, window: window}
}

// Window returns the configured trailing interval.
func (d *DedupWindow) Window() time.Duration {
	return d.window
}

// ShouldAccept reports whether the message should be persisted. It returns
// false when the store already holds an identical message created within
// [now-window, now].
func (d *DedupWindow) ShouldAccept(ctx context.Context, roomID, senderID int64, body string, now time.Time) (bool, error) {
	match, err := d.messages.RecentMatch(ctx, roomID, senderID, body, now.Add(-d.window))
	if err != nil {
		return false, err
	}
	return !match, nil
}
