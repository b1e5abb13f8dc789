package httpapi

import (
	"context"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/riskibarqy/matchcentre/internal/domain/match"
)

const (
	liveWriteWait  = 5 * time.Second
	livePongWait   = 30 * time.Second
	livePingPeriod = livePongWait * 9 / 10
)

type liveFrameDTO struct {
	Counts        match.Counts `json:"counts"`
	ServerHealthy bool         `json:"serverHealthy"`
	Initialized   bool         `json:"initialized"`
	SentAt        time.Time    `json:"sentAt"`
}

// LiveFeed upgrades to a websocket and pushes counts and server health on a
// fixed cadence until the client goes away.
func (h *Handler) LiveFeed(checkOrigin func(*http.Request) bool) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.WarnContext(r.Context(), "live feed upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		go h.readLive(conn, cancel)

		h.logger.DebugContext(ctx, "live feed connected", "remote_addr", r.RemoteAddr)
		h.writeLive(ctx, conn)
	}
}

// readLive drains client frames so control messages are handled and a close
// from the client cancels the writer.
func (h *Handler) readLive(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(livePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("live feed read failed", "error", err)
			}
			return
		}
	}
}

func (h *Handler) writeLive(ctx context.Context, conn *websocket.Conn) {
	push := time.NewTicker(h.liveInterval)
	defer push.Stop()
	ping := time.NewTicker(livePingPeriod)
	defer ping.Stop()

	if err := h.pushLiveFrame(conn); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(liveWriteWait))
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteWait)); err != nil {
				return
			}
		case <-push.C:
			if err := h.pushLiveFrame(conn); err != nil {
				return
			}
		}
	}
}

func (h *Handler) pushLiveFrame(conn *websocket.Conn) error {
	payload, err := sonic.Marshal(liveFrameDTO{
		Counts:        h.countService.Counts(),
		ServerHealthy: h.healthService.IsHealthy(),
		Initialized:   h.matchSync.Initialized(),
		SentAt:        time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
	return conn.WriteMessage(websocket.TextMessage, payload)
}
