package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/RawMal/AlgoEstate-sub000/core/utils"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
)

// wsStream is a live websocket subscription to the ledger transfer feed.
type wsStream struct {
	conn   *websocket.Conn
	events chan TransferEvent
	logger *zap.Logger

	// writeMu serializes control-frame and filter writes on the connection.
	writeMu sync.Mutex

	errMu sync.Mutex
	err   error

	done      chan struct{}
	closeOnce sync.Once
}

// openStream dials the feed endpoint and installs the initial filter.
func openStream(ctx context.Context, cfg Config, ledgerIDs []uint64, logger *zap.Logger) (*wsStream, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	header := http.Header{}
	if cfg.Token != "" {
		header.Set("X-API-Token", cfg.Token)
	}

	conn, _, err := dialer.DialContext(ctx, cfg.FeedEndpoint, header)
	if err != nil {
		return nil, fmt.Errorf("failed to dial ledger feed: %w", err)
	}

	s := &wsStream{
		conn:   conn,
		events: make(chan TransferEvent, 256),
		logger: logger,
		done:   make(chan struct{}),
	}

	if err := s.UpdateFilter(ledgerIDs); err != nil {
		_ = conn.Close()
		return nil, err
	}

	go s.readLoop()
	go s.pingLoop()
	return s, nil
}

// Events implements Stream.
func (s *wsStream) Events() <-chan TransferEvent { return s.events }

// UpdateFilter implements Stream. It sends a control frame replacing the
// asset-id filter on the live feed.
func (s *wsStream) UpdateFilter(ledgerIDs []uint64) error {
	frame := struct {
		Action   string   `json:"action"`
		AssetIDs []uint64 `json:"asset_ids"`
	}{Action: "set_filter", AssetIDs: ledgerIDs}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(frame); err != nil {
		return fmt.Errorf("failed to update feed filter: %w", err)
	}
	return nil
}

// Err implements Stream.
func (s *wsStream) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// Close implements Stream.
func (s *wsStream) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return s.conn.Close()
}

func (s *wsStream) fail(err error) {
	s.errMu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.errMu.Unlock()
}

// readLoop pumps feed frames into the events channel. Malformed frames are
// logged and skipped; they never reach consumers untyped.
func (s *wsStream) readLoop() {
	defer close(s.events)

	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
				// Clean shutdown, no terminal error.
			default:
				s.fail(err)
			}
			return
		}

		ev, ok, err := parseFrame(data)
		if err != nil {
			s.logger.Warn("Skipping malformed feed frame", zap.Error(err))
			continue
		}
		if !ok {
			continue
		}

		select {
		case s.events <- ev:
		case <-s.done:
			return
		}
	}
}

// pingLoop keeps the connection alive through proxies.
func (s *wsStream) pingLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.writeMu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			s.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

// parseFrame validates a loosely-typed feed frame and maps it into a typed
// TransferEvent. It returns ok=false for control frames (heartbeats, acks)
// and an error for frames that claim to be transfers but are malformed.
func parseFrame(data []byte) (TransferEvent, bool, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return TransferEvent{}, false, fmt.Errorf("invalid JSON frame: %w", err)
	}

	switch utils.ToString(raw["type"]) {
	case "transfer":
	case "heartbeat", "subscribed", "filter_updated":
		return TransferEvent{}, false, nil
	default:
		return TransferEvent{}, false, fmt.Errorf("unknown frame type %q", utils.ToString(raw["type"]))
	}

	ev := TransferEvent{
		TxID:      utils.ToString(raw["tx_id"]),
		LedgerID:  utils.ToUint64(raw["asset_id"]),
		From:      utils.ToString(raw["from"]),
		To:        utils.ToString(raw["to"]),
		Amount:    utils.ToUint64(raw["amount"]),
		Seq:       utils.ToUint64(raw["round"]),
		Confirmed: utils.ToBool(raw["confirmed"]),
	}

	if ev.TxID == "" {
		return TransferEvent{}, false, fmt.Errorf("transfer frame without tx_id")
	}
	if ev.LedgerID == 0 {
		return TransferEvent{}, false, fmt.Errorf("transfer %s without asset_id", ev.TxID)
	}
	if ev.Seq == 0 {
		return TransferEvent{}, false, fmt.Errorf("transfer %s without round", ev.TxID)
	}
	if ev.Amount > 0 && ev.To == "" {
		return TransferEvent{}, false, fmt.Errorf("transfer %s moves %d units to no account", ev.TxID, ev.Amount)
	}

	if ts := utils.ToUint64(raw["timestamp"]); ts > 0 {
		ev.Timestamp = time.Unix(int64(ts), 0).UTC()
	} else {
		ev.Timestamp = time.Now().UTC()
	}
	return ev, true, nil
}
