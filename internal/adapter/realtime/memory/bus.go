// Package memory provides an in-process lobby feed: handlers run
// synchronously on the publisher's goroutine, which keeps unit tests
// deterministic.
package memory

import (
	"context"
	"sync"

	"lastcity/internal/app/ports"
)

type Bus struct {
	mu       sync.Mutex
	nextID   int
	handlers map[string]map[int]func(ports.LobbyChange)
}

func NewBus() *Bus {
	return &Bus{handlers: map[string]map[int]func(ports.LobbyChange){}}
}

func (b *Bus) Publish(_ context.Context, change ports.LobbyChange) error {
	b.mu.Lock()
	fns := make([]func(ports.LobbyChange), 0, len(b.handlers[change.LobbyID]))
	for _, fn := range b.handlers[change.LobbyID] {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
	return nil
}

func (b *Bus) Subscribe(lobbyID string, handler func(ports.LobbyChange)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	if b.handlers[lobbyID] == nil {
		b.handlers[lobbyID] = map[int]func(ports.LobbyChange){}
	}
	b.handlers[lobbyID][id] = handler
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[lobbyID], id)
	}, nil
}

var _ ports.LobbyFeed = (*Bus)(nil)
