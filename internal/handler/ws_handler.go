package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prepdesk/prepdesk-backend/internal/middleware"
	"github.com/prepdesk/prepdesk-backend/internal/service"
	ws "github.com/prepdesk/prepdesk-backend/internal/websocket"
	"github.com/rs/zerolog"
)

// clockTickInterval is how often the server pushes the remaining time.
const clockTickInterval = 1 * time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation. An
// empty allowedOrigins permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams the session clock over WebSocket so exam takers see the
// server-authoritative remaining time instead of trusting their local clock.
type WSHandler struct {
	sessionService *service.SessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// ClockStream godoc
// WS /ws/v1/sessions/:session_id/clock?token=...
// Pushes a tick event every second until the session is submitted or the
// client disconnects.
func (h *WSHandler) ClockStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sessionID, ok := pathUUID(c, "session_id")
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()

	// Ownership check before streaming anything.
	if _, err := h.sessionService.State(ctx, claims.UserID, sessionID); err != nil {
		ws.WriteError(conn, "session not available")
		return
	}

	wsLog := h.log.With().
		Int("user_id", claims.UserID).
		Str("session_id", sessionID.String()).
		Logger()
	wsLog.Debug().Msg("clock stream connected")

	// Reader pump: forwards pings and detects the client going away. All
	// writes happen below on this goroutine; the connection allows only one
	// concurrent writer.
	done := make(chan struct{})
	pings := make(chan struct{}, 1)
	go func() {
		defer close(done)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				return
			}
			if msg.Action == ws.ActionPing {
				select {
				case pings <- struct{}{}:
				default:
				}
			}
		}
	}()

	ticker := time.NewTicker(clockTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			wsLog.Debug().Msg("clock stream closed by client")
			return
		case <-ctx.Done():
			return
		case <-pings:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}
		case <-ticker.C:
			state, err := h.sessionService.State(ctx, claims.UserID, sessionID)
			if err != nil {
				ws.WriteError(conn, "session not available")
				return
			}
			if state.IsSubmitted {
				ws.WriteTyped(conn, ws.SubmittedResponse{Event: ws.EventSubmitted})
				return
			}
			if err := ws.WriteTyped(conn, ws.TickResponse{
				Event:            ws.EventTick,
				IsExam:           state.IsExam,
				IsSubmitted:      state.IsSubmitted,
				RemainingSeconds: state.RemainingSeconds,
			}); err != nil {
				return
			}
		}
	}
}
