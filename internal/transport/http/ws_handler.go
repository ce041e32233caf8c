package http

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	stdhttp "net/http"
	"slices"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatrelay/internal/config"
	"github.com/vovakirdan/chatrelay/internal/core"
	"github.com/vovakirdan/chatrelay/internal/utils"
)

// WSHandler runs one core.Session per WebSocket connection.
type WSHandler struct {
	hub          core.Hub
	log          *zerolog.Logger
	accept       *websocket.AcceptOptions
	readLimit    int64
	writeTimeout time.Duration
	outboxSize   int
}

// NewWSHandler builds a chat WebSocket handler.
func NewWSHandler(hub core.Hub, cfg *config.Config, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{
		hub:          hub,
		log:          logger,
		accept:       acceptOptions(cfg.AllowedOrigins),
		readLimit:    cfg.MaxMessageBytes,
		writeTimeout: cfg.WriteTimeout,
		outboxSize:   cfg.OutboxSize,
	}
}

func acceptOptions(origins []string) *websocket.AcceptOptions {
	if slices.Contains(origins, "*") {
		return &websocket.AcceptOptions{InsecureSkipVerify: true}
	}
	return &websocket.AcceptOptions{OriginPatterns: origins}
}

// ServeChat handles GET /ws/chat/:room_name/. The session joins its room
// before the upgrade is accepted; a failed join refuses the upgrade.
func (h *WSHandler) ServeChat(c *gin.Context) {
	room := c.Param("room_name")
	identity := IdentityFrom(c)

	session := core.NewSession(h.hub, utils.NewConnName(), room, identity, h.outboxSize, h.log)
	if err := session.Open(); err != nil {
		h.log.Error().Err(err).Str("room", room).Msg("rejecting chat connection")
		status := stdhttp.StatusServiceUnavailable
		if errors.Is(err, core.ErrEmptyRoom) {
			status = stdhttp.StatusBadRequest
		}
		c.AbortWithStatusJSON(status, ErrorResponse{Error: "handshake rejected"})
		return
	}
	defer session.Close()

	conn, err := websocket.Accept(newUpgradeWriter(c.Writer), c.Request, h.accept)
	if err != nil {
		h.log.Warn().Err(err).Str("conn", session.Name()).Int("status", c.Writer.Status()).Msg("ws accept error")
		return
	}
	defer conn.CloseNow()
	if h.readLimit > 0 {
		conn.SetReadLimit(h.readLimit)
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, session)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, session)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh
	session.Close()

	status, reason := closeReason(err)
	if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
		h.log.Warn().Err(err).Str("conn", session.Name()).Int("status", int(status)).Msg("ws connection closed with error")
	}
	_ = conn.Close(status, reason)
}

// upgradeWriter is the writer handed to websocket.Accept. It hides gin's
// WriteHeaderNow, after which gin refuses to hijack, and sends the 101 to the
// underlying writer only once the hijack is under way. Error responses from a
// failed accept go through gin so its recorded status stays accurate.
type upgradeWriter struct {
	w gin.ResponseWriter
}

func newUpgradeWriter(w gin.ResponseWriter) upgradeWriter {
	return upgradeWriter{w: w}
}

func (u upgradeWriter) Header() stdhttp.Header { return u.w.Header() }

func (u upgradeWriter) Write(b []byte) (int, error) { return u.w.Write(b) }

func (u upgradeWriter) WriteHeader(code int) { u.w.WriteHeader(code) }

func (u upgradeWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	raw, ok := u.w.(interface{ Unwrap() stdhttp.ResponseWriter })
	if !ok {
		u.w.WriteHeaderNow()
		return u.w.Hijack()
	}
	raw.Unwrap().WriteHeader(u.w.Status())
	return u.w.Hijack()
}

func closeReason(err error) (websocket.StatusCode, string) {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return websocket.StatusNormalClosure, "closing"
	}
	switch s := websocket.CloseStatus(err); s {
	case -1:
		return websocket.StatusInternalError, "internal error"
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return s, "closing"
	default:
		return s, err.Error()
	}
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, session *core.Session) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			h.log.Debug().Str("conn", session.Name()).Msg("dropping binary frame")
			continue
		}

		if err := session.Receive(data); err != nil {
			if errors.Is(err, core.ErrMalformedPayload) {
				h.log.Debug().Err(err).Str("conn", session.Name()).Msg("dropping malformed payload")
				continue
			}
			return err
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, session *core.Session) error {
	for {
		select {
		case event := <-session.Outbox():
			if err := h.write(ctx, conn, event); err != nil {
				h.log.Error().Err(err).Str("conn", session.Name()).Msg("write ws event")
				return err
			}
		case <-session.Done():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *WSHandler) write(ctx context.Context, conn *websocket.Conn, event *core.Event) error {
	if h.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.writeTimeout)
		defer cancel()
	}
	return wsjson.Write(ctx, conn, outboundFromEvent(event))
}
