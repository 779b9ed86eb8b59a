package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zatekoja/medtourclinic/internal/domain/providers"
	"github.com/zatekoja/medtourclinic/internal/infrastructure/observability"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
)

// WebSocketHandler pushes a tenant's lead and chat events to dashboard clients
type WebSocketHandler struct {
	eventBus   providers.EventBus
	upgrader   websocket.Upgrader
	pingPeriod time.Duration
}

// NewWebSocketHandler creates a handler accepting the given origins ("*" for any)
func NewWebSocketHandler(eventBus providers.EventBus, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		eventBus:   eventBus,
		pingPeriod: wsPingPeriod,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
	}
}

// Stream handles GET /ws/tenants/{tenantID}
func (h *WebSocketHandler) Stream(w http.ResponseWriter, r *http.Request) {
	tenantID, err := pathID(r, "tenantID")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	logger := observability.LoggerFromContext(r.Context()).With().Int64("tenant_id", tenantID).Logger()

	// Hijacked connections never cancel the request context.
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	events, err := h.eventBus.Subscribe(ctx, providers.TenantChannel(tenantID))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	logger.Info().Msg("websocket client connected")
	defer logger.Info().Msg("websocket client disconnected")

	// Reader: handles pongs and close frames; clients never send data.
	go func() {
		defer cancel()
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(wsWriteWait))
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(event); err != nil {
				logger.Debug().Err(err).Msg("websocket write failed")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
