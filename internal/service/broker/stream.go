package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"TickPulse/internal/domain/models"
	drepo "TickPulse/internal/domain/repository"
	applogger "TickPulse/pkg/logger"

	"github.com/gorilla/websocket"
)

// Stream implements MarketStream over the brokerage WebSocket feed.
type Stream struct {
	apiKey         string
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *applogger.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool

	books chan *models.OrderBook
}

// NewStream creates a brokerage MarketStream.
func NewStream(apiKey, websocketURL string, symbols []string, reconnectDelay, pingInterval time.Duration, log *applogger.Logger) drepo.MarketStream {
	return &Stream{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            log,
		books:          make(chan *models.OrderBook, 64),
	}
}

func (s *Stream) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", s.websocketURL, s.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("broker connect: %w", err)
	}
	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.mu.Unlock()
	s.log.Info("broker stream connected", applogger.String("url", s.websocketURL))
	return nil
}

// Subscribe registers every configured symbol on the open connection.
func (s *Stream) Subscribe(ctx context.Context) error {
	for _, sym := range s.symbols {
		msg := map[string]string{"type": "subscribe", "symbol": sym}
		if err := s.writeJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", sym, err)
		}
		s.log.Info("subscribed symbol", applogger.String("symbol", sym))
	}
	return nil
}

// writeJSON and writeMessage serialize all writers under mu; the websocket
// connection supports only one concurrent writer.
func (s *Stream) writeJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil || !s.connected {
		return fmt.Errorf("broker stream not connected")
	}
	return s.conn.WriteJSON(v)
}

func (s *Stream) writeMessage(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil || !s.connected {
		return fmt.Errorf("broker stream not connected")
	}
	return s.conn.WriteMessage(messageType, data)
}

// tickFrame mirrors one streaming payload entry. Pointer fields keep partial
// frames detectable downstream; the ingest boundary decides what to drop.
type tickFrame struct {
	Symbol   string   `json:"symbol"`
	Close    *float64 `json:"close"`
	Volume   *int64   `json:"volume"`
	Datetime *int64   `json:"datetime"` // unix ms
}

type bookFrame struct {
	Symbol   string             `json:"symbol"`
	Bids     []models.BookLevel `json:"bids"`
	Asks     []models.BookLevel `json:"asks"`
	Datetime *int64             `json:"datetime"` // unix ms
}

type streamMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Read starts one read session: a ping loop and a read loop whose lifetimes
// are tied together. A read failure closes both channels and stops the ping
// loop; the caller owns reconnection and starts a fresh session with the next
// Read call.
func (s *Stream) Read(ctx context.Context) (<-chan *models.RawTick, <-chan error) {
	ticks := make(chan *models.RawTick, 1024)
	errs := make(chan error, 1)
	done := make(chan struct{})

	go s.pingLoop(ctx, done)

	go func() {
		defer close(done)
		defer close(ticks)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			s.mu.Lock()
			conn := s.conn
			s.mu.Unlock()
			if conn == nil {
				errs <- fmt.Errorf("broker stream: no connection")
				return
			}

			_, payload, err := conn.ReadMessage()
			if err != nil {
				errs <- fmt.Errorf("broker read: %w", err)
				return
			}

			var msg streamMessage
			if err := json.Unmarshal(payload, &msg); err != nil {
				s.log.Debug("unparseable frame skipped", applogger.Error(err))
				continue
			}
			switch msg.Type {
			case "tick":
				s.dispatchTicks(msg.Data, ticks)
			case "book":
				s.dispatchBooks(msg.Data)
			}
		}
	}()

	return ticks, errs
}

func (s *Stream) dispatchTicks(data json.RawMessage, ticks chan<- *models.RawTick) {
	var frames []tickFrame
	if err := json.Unmarshal(data, &frames); err != nil {
		s.log.Debug("bad tick batch skipped", applogger.Error(err))
		return
	}
	for _, d := range frames {
		raw := &models.RawTick{
			Symbol:   d.Symbol,
			Close:    d.Close,
			Volume:   d.Volume,
			Datetime: d.Datetime,
		}
		select {
		case ticks <- raw:
		default:
			s.log.Warn("tick channel full, dropping", applogger.String("symbol", d.Symbol))
		}
	}
}

func (s *Stream) dispatchBooks(data json.RawMessage) {
	var frames []bookFrame
	if err := json.Unmarshal(data, &frames); err != nil {
		s.log.Debug("bad book batch skipped", applogger.Error(err))
		return
	}
	for _, f := range frames {
		if f.Symbol == "" {
			continue
		}
		book := &models.OrderBook{Symbol: f.Symbol, Bids: f.Bids, Asks: f.Asks}
		if f.Datetime != nil && *f.Datetime > 0 {
			book.Timestamp = time.UnixMilli(*f.Datetime)
		} else {
			book.Timestamp = time.Now()
		}
		select {
		case s.books <- book:
		default:
			// stale depth is worthless, drop silently
		}
	}
}

// Books delivers order book snapshots. The channel is owned by the stream and
// survives reconnects.
func (s *Stream) Books() <-chan *models.OrderBook { return s.books }

// pingLoop keeps the connection alive for the duration of one read session
// and exits when that session's done channel closes.
func (s *Stream) pingLoop(ctx context.Context, done <-chan struct{}) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			if err := s.writeMessage(websocket.PingMessage, nil); err != nil {
				s.log.Warn("ping failed", applogger.Error(err))
			}
		}
	}
}

// Reconnect tears down the connection, waits the configured delay and
// re-subscribes.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.reconnectDelay):
	}
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Subscribe(ctx)
}

func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}

func (s *Stream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}
