package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/net/websocket"

	"campusvote/internal/broadcast"
)

// Frame is one message on the live socket.
type Frame struct {
	Event string          `json:"event"`
	Data  broadcast.Event `json:"data"`
}

// LiveHandler streams tally updates over a websocket.
type LiveHandler struct {
	hub          *broadcast.Hub
	writeTimeout time.Duration
}

// NewLiveHandler creates a live handler. writeTimeout bounds each frame write so
// a stalled client cannot pin its subscription.
func NewLiveHandler(hub *broadcast.Hub, writeTimeout time.Duration) *LiveHandler {
	return &LiveHandler{hub: hub, writeTimeout: writeTimeout}
}

// Stream godoc
// @Summary Live tallies (websocket)
// @Description Upgrades to a websocket and sends {"event":"voteUpdated","data":{...}} frames.
// @Description Without electionId every election's updates are sent.
// @Tags votes
// @Param electionId query string false "Election ID"
// @Success 101 {string} string "Switching Protocols"
// @Failure 400 {object} errors.ErrorResponse
// @Router /ws [get]
func (h *LiveHandler) Stream(c echo.Context) error {
	electionID := uuid.Nil
	if raw := c.QueryParam("electionId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest("invalid electionId", "INVALID_UUID")
		}
		electionID = id
	}

	websocket.Handler(func(ws *websocket.Conn) {
		defer ws.Close()
		h.serve(c.Request().Context(), ws, electionID)
	}).ServeHTTP(c.Response(), c.Request())
	return nil
}

func (h *LiveHandler) serve(ctx context.Context, ws *websocket.Conn, electionID uuid.UUID) {
	sub := h.hub.Subscribe(electionID)
	defer sub.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// clients never send anything we use; reading detects the close
	go func() {
		defer cancel()
		var discard string
		for {
			if err := websocket.Message.Receive(ws, &discard); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sub.C:
			if !ok {
				return
			}
			if err := ws.SetWriteDeadline(time.Now().Add(h.writeTimeout)); err != nil {
				return
			}
			if err := websocket.JSON.Send(ws, Frame{Event: broadcast.EventVoteUpdated, Data: event}); err != nil {
				slog.Info("live client disconnected", "election_id", electionID, "error", err)
				return
			}
		}
	}
}
