package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/CrowderSoup/taskboard/board"
	"github.com/CrowderSoup/taskboard/services"
)

// maxBodyBytes caps action request bodies.
const maxBodyBytes = 1 << 20

// Mutator is the write side the handlers need.
type Mutator interface {
	Apply(ctx context.Context, actor string, a board.Action) error
	ApplyAll(ctx context.Context, actor string, actions []board.Action) error
}

// TreeReader is the read side the handlers need.
type TreeReader interface {
	Tree(ctx context.Context, ownerID string) (board.Tree, error)
}

// BatchRequest is the body of POST /api/actions/batch.
type BatchRequest struct {
	Actions []board.Envelope `json:"actions"`
}

// DataHandler serves the tree, accepts actions and hosts the invalidation
// websocket.
type DataHandler struct {
	mutator  Mutator
	reader   TreeReader
	hub      *services.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewDataHandler(mutator Mutator, reader TreeReader, hub *services.Hub, logger *slog.Logger) *DataHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataHandler{
		mutator: mutator,
		reader:  reader,
		hub:     hub,
		upgrader: websocket.Upgrader{
			// Origins are already filtered by the CORS layer.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// GetTree returns the actor's full tree.
func (h *DataHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFrom(r.Context())
	if !ok {
		writeStatusError(w, http.StatusUnauthorized, "actor not found")
		return
	}

	tree, err := h.reader.Tree(r.Context(), actor)
	if err != nil {
		h.logger.Error("read tree", "actor", actor, "error", err)
		writeStatusError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeSuccess(w, tree)
}

// ApplyAction applies one action envelope.
func (h *DataHandler) ApplyAction(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFrom(r.Context())
	if !ok {
		writeStatusError(w, http.StatusUnauthorized, "actor not found")
		return
	}

	var env board.Envelope
	if err := decodeBody(w, r, &env); err != nil {
		writeMutationError(w, board.Fail(board.CodeValidation, err))
		return
	}
	a, err := board.Decode(env)
	if err != nil {
		writeMutationError(w, board.Fail(board.CodeValidation, err))
		return
	}

	if err := h.mutator.Apply(r.Context(), actor, a); err != nil {
		writeMutationError(w, err)
		return
	}
	writeSuccess(w, nil)
}

// ApplyBatch applies a list of envelopes atomically, in order.
func (h *DataHandler) ApplyBatch(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFrom(r.Context())
	if !ok {
		writeStatusError(w, http.StatusUnauthorized, "actor not found")
		return
	}

	var req BatchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeMutationError(w, board.Fail(board.CodeValidation, err))
		return
	}
	actions, err := board.DecodeBatch(req.Actions)
	if err != nil {
		writeMutationError(w, board.Fail(board.CodeValidation, err))
		return
	}

	if err := h.mutator.ApplyAll(r.Context(), actor, actions); err != nil {
		writeMutationError(w, err)
		return
	}
	writeSuccess(w, nil)
}

// HandleWebSocket upgrades the connection and subscribes it to the actor's
// invalidations.
func (h *DataHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFrom(r.Context())
	if !ok {
		writeStatusError(w, http.StatusUnauthorized, "actor not found")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "actor", actor, "error", err)
		return
	}

	client := services.NewClient(h.hub, conn, actor)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
