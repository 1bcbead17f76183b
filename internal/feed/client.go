// Package feed hosts the market-data websocket client and the supervisor
// that keeps it connected under a bounded-retry policy.
package feed

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/yencarnacion/volume-delta/internal/market"
	"github.com/yencarnacion/volume-delta/internal/metrics"
)

// Handler consumes one delivery batch. Batches may be empty-filtered away;
// the handler is only invoked when at least one trade or quote decoded.
type Handler func(events []market.Event)

// Client is a Polygon-style websocket feed for a single instrument: auth
// frame, TRADE./QUOTE. channel subscriptions, then JSON arrays of events.
type Client struct {
	url    string
	apiKey string
	symbol string
	log    zerolog.Logger
}

// NewClient builds a client for symbol (uppercased to meet the API's
// channel naming).
func NewClient(url, apiKey, symbol string, log zerolog.Logger) *Client {
	return &Client{
		url:    url,
		apiKey: apiKey,
		symbol: strings.ToUpper(symbol),
		log:    log,
	}
}

type actionFrame struct {
	Action string `json:"action"`
	Params string `json:"params"`
}

// rawEvent covers every event shape the socket delivers; Ev discriminates.
type rawEvent struct {
	Ev     string  `json:"ev"`
	Sym    string  `json:"sym"`
	Price  float64 `json:"p"`
	Size   int64   `json:"s"`
	Bid    float64 `json:"bp"`
	Ask    float64 `json:"ap"`
	Ts     int64   `json:"t"`
	Status string  `json:"status"`
	Msg    string  `json:"message"`
}

// Run performs one full connect/auth/subscribe/consume cycle and blocks
// until the connection ends. A normal server close returns nil; transport
// errors come back as-is for the supervisor to classify. The connection is
// always closed before Run returns, so every retry starts from released
// resources.
func (c *Client) Run(ctx context.Context, handler Handler) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	if c.apiKey != "" {
		if err := conn.WriteJSON(actionFrame{Action: "auth", Params: c.apiKey}); err != nil {
			return err
		}
	}
	channels := "TRADE." + c.symbol + ",QUOTE." + c.symbol
	if err := conn.WriteJSON(actionFrame{Action: "subscribe", Params: channels}); err != nil {
		return err
	}
	c.log.Info().Str("channels", channels).Msg("connected market data feed")

	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		return nil
	})

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-pingCtx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}

		var raws []rawEvent
		if err := json.Unmarshal(message, &raws); err != nil {
			c.log.Warn().Err(err).Msg("failed to decode feed message")
			continue
		}

		events := make([]market.Event, 0, len(raws))
		for _, raw := range raws {
			switch raw.Ev {
			case "T":
				trade := market.Trade{
					Symbol: raw.Sym,
					Price:  raw.Price,
					Size:   raw.Size,
					Ts:     time.UnixMilli(raw.Ts),
				}
				events = append(events, market.Event{Trade: &trade})
				metrics.EventsTotal.WithLabelValues(c.symbol, "trade").Inc()
			case "Q":
				quote := market.Quote{
					Symbol: raw.Sym,
					Bid:    raw.Bid,
					Ask:    raw.Ask,
					Ts:     time.UnixMilli(raw.Ts),
				}
				events = append(events, market.Event{Quote: &quote})
				metrics.EventsTotal.WithLabelValues(c.symbol, "quote").Inc()
			case "status":
				if raw.Status == "auth_failed" || raw.Status == "error" {
					c.log.Warn().Str("status", raw.Status).Str("msg", raw.Msg).Msg("feed status")
				}
			}
		}
		if len(events) > 0 {
			handler(events)
		}
	}
}
