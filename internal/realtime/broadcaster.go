package realtime

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/openclub/bulletin/internal/board/store"
	"github.com/openclub/bulletin/internal/presence"
	"github.com/openclub/bulletin/pkg/logger"
	"github.com/openclub/bulletin/pkg/metrics"
)

// Bus topics. Every mutation produces one board.updated event carrying the
// whole document; register/disconnect produce presence.updated events.
const (
	TopicBoardUpdated    = "board.updated"
	TopicPresenceUpdated = "presence.updated"
)

// Broadcaster publishes full-state events on an in-process Pub/Sub. It is the
// service's Notifier: after a mutation it re-reads the store and pushes the
// entire document, no deltas.
type Broadcaster struct {
	bus      *gochannel.GoChannel
	store    store.Store
	presence *presence.Tracker
}

func NewBroadcaster(st store.Store, tr *presence.Tracker) *Broadcaster {
	bus := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NopLogger{})
	return &Broadcaster{bus: bus, store: st, presence: tr}
}

// NotifyUpdate re-reads the document and publishes it. A read failure is
// logged and dropped: a broadcast must never fail the triggering mutation.
func (b *Broadcaster) NotifyUpdate() {
	doc, err := b.store.Read(context.Background())
	if err != nil {
		logger.Warnf("broadcast skipped: %v", err)
		return
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		logger.Warnf("broadcast encode: %v", err)
		return
	}
	b.publish(TopicBoardUpdated, payload)
}

// NotifyPresence publishes the current roster.
func (b *Broadcaster) NotifyPresence() {
	payload, err := json.Marshal(b.presence.Roster())
	if err != nil {
		logger.Warnf("roster encode: %v", err)
		return
	}
	b.publish(TopicPresenceUpdated, payload)
}

func (b *Broadcaster) publish(topic string, payload []byte) {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := b.bus.Publish(topic, msg); err != nil {
		logger.Warnf("publish %s: %v", topic, err)
		return
	}
	metrics.BroadcastsTotal.WithLabelValues(topic).Inc()
}

// Subscribe hands out a bus subscription for the given topic.
func (b *Broadcaster) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.bus.Subscribe(ctx, topic)
}

// Close shuts the bus down; pending deliveries are dropped.
func (b *Broadcaster) Close() error {
	return b.bus.Close()
}
