// Package events fans session changes out to websocket subscribers and, optionally, Redis.
package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/park285/chess-session-server/pkg/chessdto"
)

type Publisher interface {
	Publish(ctx context.Context, ev chessdto.Event)
}

// Fanout publishes to every member in order.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, ev chessdto.Event) {
	for _, p := range f {
		if p != nil {
			p.Publish(ctx, ev)
		}
	}
}

// Bus is an in-process per-game broadcast. Slow subscribers lose events rather than block publishers.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{}
	buffer int
	log    *zap.Logger
}

type Subscription struct {
	C <-chan chessdto.Event

	ch     chan chessdto.Event
	gameID string
	bus    *Bus
	once   sync.Once
}

func NewBus(buffer int, log *zap.Logger) *Bus {
	if buffer <= 0 {
		buffer = 16
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{subs: make(map[string]map[*Subscription]struct{}), buffer: buffer, log: log}
}

func (b *Bus) Subscribe(gameID string) *Subscription {
	ch := make(chan chessdto.Event, b.buffer)
	sub := &Subscription{C: ch, ch: ch, gameID: gameID, bus: b}

	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.subs[gameID]
	if !ok {
		set = make(map[*Subscription]struct{})
		b.subs[gameID] = set
	}
	set[sub] = struct{}{}
	return sub
}

// Close detaches the subscription and closes its channel.
func (s *Subscription) Close() {
	s.once.Do(func() {
		b := s.bus
		b.mu.Lock()
		if set, ok := b.subs[s.gameID]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(b.subs, s.gameID)
			}
		}
		b.mu.Unlock()
		close(s.ch)
	})
}

func (b *Bus) Publish(_ context.Context, ev chessdto.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subs[ev.GameID] {
		select {
		case sub.ch <- ev:
		default:
			b.log.Debug("event_dropped", zap.String("game_id", ev.GameID), zap.String("type", ev.Type))
		}
	}
	// subscribers of a deleted game get nothing further
	if ev.Type == chessdto.EventDeleted {
		for sub := range b.subs[ev.GameID] {
			go sub.Close()
		}
	}
}

func (b *Bus) Subscribers(gameID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[gameID])
}
