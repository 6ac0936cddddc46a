package api

import (
	"context"
	"net/http"
	"time"

	"QuantDesk/internal/domain/models"
	xhttp "QuantDesk/pkg/http"
	xlogger "QuantDesk/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const quotePushInterval = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser dashboard connects cross-origin in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamQuotes upgrades to a WebSocket and pushes the current quote for
// the requested ticker on a fixed interval until the client disconnects.
func (h *TradingHandler) StreamQuotes(c echo.Context) error {
	req := &models.TickerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	ticker := time.NewTicker(quotePushInterval)
	defer ticker.Stop()

	// Drain control frames so pings and close messages are processed;
	// a read error means the peer went away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	// Push immediately, then on every tick.
	if err := h.pushQuote(ctx, conn, req.Ticker); err != nil {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := h.pushQuote(ctx, conn, req.Ticker); err != nil {
				return nil
			}
		}
	}
}

func (h *TradingHandler) pushQuote(ctx context.Context, conn *websocket.Conn, ticker string) error {
	quote, err := h.analyzer.Quote(ctx, ticker)
	if err != nil {
		h.logger.Warn("quote stream fetch failed",
			xlogger.String("ticker", ticker),
			xlogger.Error(err))
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(quote)
}
