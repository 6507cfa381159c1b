package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"lastcity/internal/app/ports"
)

// Feed publishes lobby changes over the embedded server. Each lobby gets
// its own subject so subscribers only see the lobby they are in.
type Feed struct {
	Server *Server
}

var _ ports.LobbyFeed = (*Feed)(nil)

func lobbySubject(lobbyID string) string {
	return "lobby." + lobbyID
}

func (f *Feed) Publish(ctx context.Context, change ports.LobbyChange) error {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("encoding lobby change: %w", err)
	}
	return f.Server.Publish(lobbySubject(change.LobbyID), data)
}

func (f *Feed) Subscribe(lobbyID string, handler func(ports.LobbyChange)) (func(), error) {
	return f.Server.Subscribe(lobbySubject(lobbyID), func(data []byte) {
		var change ports.LobbyChange
		if err := json.Unmarshal(data, &change); err != nil {
			slog.Warn("dropping malformed lobby change", "lobby_id", lobbyID, "err", err)
			return
		}
		handler(change)
	})
}
