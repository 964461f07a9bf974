// Package channel defines the channel-history capability consumed by the
// context assembler.
package channel

import "context"

// Message is one channel-history record.
type Message struct {
	Speaker   string
	Timestamp int64 // unix seconds
	Text      string
}

// HistoryProvider yields the recent messages of one channel. An empty
// slice with a nil error means the channel has no readable messages; it
// is not a failure.
type HistoryProvider interface {
	FetchHistory(ctx context.Context, channelID string) ([]Message, error)
}
