// Package events defines the notifications a kiosk emits and the sinks
// that receive them. Emission is fire-and-forget: sinks cannot fail an
// operation.
package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mesh-intelligence/kiosk/pkg/types"
)

// Kind names an event.
type Kind string

// Event kinds.
const (
	ItemListed    Kind = "item_listed"
	ItemPurchased Kind = "item_purchased"
	ItemDelisted  Kind = "item_delisted"
)

// Event is a kiosk notification. AssetType indexes the event by the asset's
// type tag. Price is zero for ItemDelisted.
type Event struct {
	Kind      Kind
	AssetType string
	Kiosk     types.ID
	Item      types.ID
	Price     uint64
}

// Sink receives events.
type Sink interface {
	Emit(e Event)
}

// Discard drops every event.
type Discard struct{}

// Emit implements Sink.
func (Discard) Emit(Event) {}

// LogSink writes events as structured log records.
type LogSink struct {
	Logger *slog.Logger // nil uses slog.Default()
	Level  slog.Level
}

// Emit implements Sink.
func (s LogSink) Emit(e Event) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []slog.Attr{
		slog.String("type", e.AssetType),
		slog.String("kiosk", e.Kiosk.String()),
		slog.String("item", e.Item.String()),
	}
	if e.Kind != ItemDelisted {
		attrs = append(attrs, slog.Uint64("price", e.Price))
	}
	logger.LogAttrs(context.Background(), s.Level, string(e.Kind), attrs...)
}

// Recorder keeps every event in memory. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit implements Sink.
func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events in emission order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// ByAssetType returns the recorded events for one asset type.
func (r *Recorder) ByAssetType(assetType string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.AssetType == assetType {
			out = append(out, e)
		}
	}
	return out
}

// Multi fans an event out to several sinks.
type Multi []Sink

// Emit implements Sink.
func (m Multi) Emit(e Event) {
	for _, s := range m {
		s.Emit(e)
	}
}
