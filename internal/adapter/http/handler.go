package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"

	"lastcity/internal/app/auth"
	"lastcity/internal/app/ports"
	"lastcity/internal/app/store"
	"lastcity/internal/domain/game"
)

const sessionTokenHeader = "X-Session-Token"

var ErrMissingSessionToken = errors.New("missing x-session-token header")
var ErrUnknownSessionToken = errors.New("unknown session token")

// Handler exposes the per-client game stores over HTTP. Each signed-in
// client gets its own store, addressed by an opaque session token.
type Handler struct {
	// NewStore builds a fresh store wired to the shared backend.
	NewStore func() *store.Store

	mu       sync.Mutex
	sessions map[string]*store.Store
}

func NewHandler(newStore func() *store.Store) *Handler {
	return &Handler{
		NewStore: newStore,
		sessions: map[string]*store.Store{},
	}
}

func (h *Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())

	api := s.Group("/api")
	api.POST("/auth/signup", h.signUp)
	api.POST("/auth/signin", h.signIn)
	api.POST("/auth/signout", h.signOut)

	api.GET("/state", h.state)
	api.GET("/lobbies", h.listLobbies)
	api.POST("/lobby", h.createLobby)
	api.POST("/lobby/join", h.joinLobby)
	api.POST("/lobby/leave", h.leaveLobby)
	api.POST("/lobby/ready", h.setReady)
	api.POST("/lobby/settings", h.updateSettings)
	api.POST("/lobby/kick", h.kickPlayer)
	api.POST("/lobby/start", h.startGame)

	api.POST("/world/move", h.movePlayer)
	api.POST("/world/explore", h.exploreHouse)
	api.POST("/world/select", h.selectHouse)
	api.POST("/world/loot", h.lootHouse)
	api.POST("/world/resource", h.addResource)
	api.POST("/world/event", h.addEvent)
	api.POST("/world/defense", h.updateDefense)
	api.POST("/world/survivor", h.updateSurvivor)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

func (h *Handler) signUp(c context.Context, ctx *app.RequestContext) {
	var body credentialsRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	st := h.NewStore()
	if err := st.SignUp(c, body.Email, body.Password, body.Name); err != nil {
		writeError(ctx, err)
		return
	}
	token := h.register(st)
	ctx.JSON(consts.StatusCreated, map[string]any{
		"token": token,
		"state": st.Snapshot(),
	})
}

func (h *Handler) signIn(c context.Context, ctx *app.RequestContext) {
	var body credentialsRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	st := h.NewStore()
	if err := st.SignIn(c, body.Email, body.Password); err != nil {
		writeError(ctx, err)
		return
	}
	token := h.register(st)
	ctx.JSON(consts.StatusOK, map[string]any{
		"token": token,
		"state": st.Snapshot(),
	})
}

func (h *Handler) signOut(c context.Context, ctx *app.RequestContext) {
	token, st, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	if err := st.SignOut(c); err != nil {
		writeError(ctx, err)
		return
	}
	h.mu.Lock()
	delete(h.sessions, token)
	h.mu.Unlock()
	ctx.JSON(consts.StatusOK, map[string]any{"signed_out": true})
}

func (h *Handler) state(_ context.Context, ctx *app.RequestContext) {
	_, st, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, st.Snapshot())
}

func (h *Handler) listLobbies(c context.Context, ctx *app.RequestContext) {
	_, st, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	lobbies, err := st.ListLobbies(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{"lobbies": lobbies})
}

type createLobbyRequest struct {
	Name       string `json:"name"`
	MaxPlayers int    `json:"max_players"`
}

func (h *Handler) createLobby(c context.Context, ctx *app.RequestContext) {
	_, st, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body createLobbyRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if err := st.CreateLobby(c, body.Name, body.MaxPlayers); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, st.Snapshot())
}

type lobbyIDRequest struct {
	LobbyID string `json:"lobby_id"`
}

func (h *Handler) joinLobby(c context.Context, ctx *app.RequestContext) {
	_, st, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body lobbyIDRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if err := st.JoinLobby(c, body.LobbyID); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, st.Snapshot())
}

func (h *Handler) leaveLobby(c context.Context, ctx *app.RequestContext) {
	_, st, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	if err := st.LeaveLobby(c); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, st.Snapshot())
}

type readyRequest struct {
	Ready bool `json:"ready"`
}

func (h *Handler) setReady(c context.Context, ctx *app.RequestContext) {
	_, st, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body readyRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if err := st.SetReady(c, body.Ready); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, st.Snapshot())
}

func (h *Handler) updateSettings(c context.Context, ctx *app.RequestContext) {
	_, st, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body game.LobbySettings
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if err := st.UpdateLobbySettings(c, body); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, st.Snapshot())
}

type kickRequest struct {
	PlayerID string `json:"player_id"`
}

func (h *Handler) kickPlayer(c context.Context, ctx *app.RequestContext) {
	_, st, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body kickRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if err := st.KickPlayer(c, body.PlayerID); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, st.Snapshot())
}

func (h *Handler) startGame(c context.Context, ctx *app.RequestContext) {
	_, st, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	if err := st.StartGame(c); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, st.Snapshot())
}

func (h *Handler) movePlayer(_ context.Context, ctx *app.RequestContext) {
	_, st, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body game.Position
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if err := st.MovePlayer(body); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, st.Snapshot())
}

type houseIDRequest struct {
	HouseID string `json:"house_id"`
}

func (h *Handler) exploreHouse(_ context.Context, ctx *app.RequestContext) {
	_, st, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body houseIDRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	st.ExploreHouse(body.HouseID)
	ctx.JSON(consts.StatusOK, st.Snapshot())
}

func (h *Handler) selectHouse(_ context.Context, ctx *app.RequestContext) {
	_, st, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body houseIDRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if err := st.SelectHouse(body.HouseID); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, st.Snapshot())
}

func (h *Handler) lootHouse(_ context.Context, ctx *app.RequestContext) {
	_, st, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body houseIDRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	collected, err := st.LootHouse(body.HouseID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{
		"collected": collected,
		"state":     st.Snapshot(),
	})
}

type resourceRequest struct {
	Kind   game.Resource `json:"kind"`
	Amount int           `json:"amount"`
}

func (h *Handler) addResource(_ context.Context, ctx *app.RequestContext) {
	_, st, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body resourceRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if err := st.AddResource(body.Kind, body.Amount); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, st.Snapshot())
}

type eventRequest struct {
	Text string `json:"text"`
}

func (h *Handler) addEvent(_ context.Context, ctx *app.RequestContext) {
	_, st, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body eventRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	st.AddEvent(body.Text)
	ctx.JSON(consts.StatusOK, st.Snapshot())
}

type defenseRequest struct {
	Value int `json:"value"`
}

func (h *Handler) updateDefense(_ context.Context, ctx *app.RequestContext) {
	_, st, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body defenseRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	st.UpdateBaseDefense(body.Value)
	ctx.JSON(consts.StatusOK, st.Snapshot())
}

type survivorRequest struct {
	SurvivorID  string `json:"survivor_id"`
	HealthDelta int    `json:"health_delta"`
	MoraleDelta int    `json:"morale_delta"`
}

func (h *Handler) updateSurvivor(_ context.Context, ctx *app.RequestContext) {
	_, st, err := h.requireSession(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body survivorRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if err := st.UpdateSurvivor(body.SurvivorID, body.HealthDelta, body.MoraleDelta); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, st.Snapshot())
}

func (h *Handler) register(st *store.Store) string {
	token := uuid.NewString()
	h.mu.Lock()
	h.sessions[token] = st
	h.mu.Unlock()
	return token
}

func (h *Handler) requireSession(ctx *app.RequestContext) (string, *store.Store, error) {
	token := strings.TrimSpace(string(ctx.GetHeader(sessionTokenHeader)))
	if token == "" {
		return "", nil, ErrMissingSessionToken
	}
	h.mu.Lock()
	st, ok := h.sessions[token]
	h.mu.Unlock()
	if !ok {
		return "", nil, ErrUnknownSessionToken
	}
	return token, st, nil
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, ErrMissingSessionToken):
		writeErrorBody(ctx, consts.StatusUnauthorized, "missing_session_token", err.Error())
	case errors.Is(err, ErrUnknownSessionToken):
		writeErrorBody(ctx, consts.StatusUnauthorized, "unknown_session_token", err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeErrorBody(ctx, consts.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, auth.ErrEmailTaken):
		writeErrorBody(ctx, consts.StatusConflict, "email_taken", err.Error())
	case errors.Is(err, store.ErrNotAuthenticated):
		writeErrorBody(ctx, consts.StatusUnauthorized, "not_authenticated", err.Error())
	case errors.Is(err, store.ErrNotHost):
		writeErrorBody(ctx, consts.StatusForbidden, "not_host", err.Error())
	case errors.Is(err, store.ErrCannotKickHost):
		writeErrorBody(ctx, consts.StatusForbidden, "cannot_kick_host", err.Error())
	case errors.Is(err, store.ErrAlreadyInLobby),
		errors.Is(err, store.ErrLobbyFull),
		errors.Is(err, store.ErrLobbyStarted),
		errors.Is(err, store.ErrHouseLooted),
		errors.Is(err, store.ErrSuperseded):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	case errors.Is(err, store.ErrNotInLobby),
		errors.Is(err, store.ErrGameNotStarted):
		writeErrorBody(ctx, consts.StatusConflict, "wrong_phase", err.Error())
	case errors.Is(err, store.ErrInvalidMove),
		errors.Is(err, store.ErrNightCurfew):
		writeErrorBody(ctx, consts.StatusConflict, "move_blocked", err.Error())
	case errors.Is(err, auth.ErrInvalidRequest),
		errors.Is(err, game.ErrInvalidLobbyName),
		errors.Is(err, game.ErrInvalidMaxPlayers),
		errors.Is(err, game.ErrInvalidLobbySettings):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	case errors.Is(err, ports.ErrNotConfigured):
		writeErrorBody(ctx, consts.StatusServiceUnavailable, "not_configured", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
