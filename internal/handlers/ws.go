package handlers

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"time"

	"failureguard/internal/models"
	"failureguard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB

	defaultPollInterval = 2 * time.Second // generator cadence
	maxPollInterval     = 30 * time.Second
)

// Envelope types pushed on /ws.
const (
	msgHealth  = "health"
	msgSummary = "summary"
	msgAlert   = "alert"
	msgError   = "error"
)

type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// The dashboard may be served from any origin, same as the REST CORS policy.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// healthFeed turns successive health maps into dashboard messages. It
// remembers the last reading it reported per machine so an unchanged fleet
// produces no traffic.
type healthFeed struct {
	monitoring service.Monitoring
	seen       map[string]models.DerivedReading // last pushed reading per machine
	anomalous  map[string]bool
	primed     bool
}

func newHealthFeed(m service.Monitoring) *healthFeed {
	return &healthFeed{
		monitoring: m,
		seen:       map[string]models.DerivedReading{},
		anomalous:  map[string]bool{},
	}
}

// next returns the messages describing what changed since the previous call:
// one alert per machine that has just turned anomalous, then the full health
// map and the fleet summary. The first call always reports, even for an
// empty fleet; later calls return nothing when no machine has a new reading.
func (f *healthFeed) next(ctx context.Context) ([]wsEnvelope, error) {
	health, err := f.monitoring.Health(ctx)
	if err != nil {
		return nil, err
	}

	changed := !f.primed
	f.primed = true
	var alerts []wsEnvelope
	for _, id := range sortedHealthIDs(health) {
		mh := health[id]
		if prev, ok := f.seen[id]; ok && prev == mh.LatestReading {
			continue
		}
		changed = true
		f.seen[id] = mh.LatestReading
		if mh.IsAnomaly && !f.anomalous[id] {
			alerts = append(alerts, wsEnvelope{Type: msgAlert, Data: mh})
		}
		f.anomalous[id] = mh.IsAnomaly
	}
	if !changed {
		return nil, nil
	}

	summary, err := f.monitoring.Summary(ctx)
	if err != nil {
		return nil, err
	}
	out := append(alerts,
		wsEnvelope{Type: msgHealth, Data: health},
		wsEnvelope{Type: msgSummary, Data: summary},
	)
	return out, nil
}

func sortedHealthIDs(health map[string]models.MachineHealth) []string {
	ids := make([]string, 0, len(health))
	for id := range health {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// @Summary      Live health stream
// @Description  On connect and whenever a machine has a new reading pushes "alert" envelopes for machines that just turned anomalous, then "health" (map machine_id -> health) and "summary". Polls every ?interval=2s or ?interval_ms=2000 (max 30s).
// @Tags         readings
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	closed := make(chan struct{})
	go h.discardIncoming(conn, closed)

	ctx := c.Request.Context()
	feed := newHealthFeed(h.services.Monitoring)
	if err := h.pushChanges(ctx, conn, feed); err != nil {
		return
	}

	poll := time.NewTicker(interval)
	defer poll.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case <-poll.C:
			if err := h.pushChanges(ctx, conn, feed); err != nil {
				return
			}
		}
	}
}

// pushChanges writes whatever the feed reports. A failed read is sent to the
// client as an error envelope and ends the stream.
func (h *Handler) pushChanges(ctx context.Context, conn *websocket.Conn, feed *healthFeed) error {
	msgs, err := feed.next(ctx)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_load_health_failed", "err", err)
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteJSON(wsEnvelope{Type: msgError, Error: errLoadReadings})
		return err
	}
	for _, m := range msgs {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(m); err != nil {
			if h.log != nil {
				h.log.Infow("ws_write_failed", "err", err, "type", m.Type)
			}
			return err
		}
	}
	return nil
}

// parseInterval reads ?interval=2s, falling back to ?interval_ms=2000, then
// to the default. Values outside (0, 30s] are ignored.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if d, err := time.ParseDuration(c.Query("interval")); err == nil && d > 0 && d <= maxPollInterval {
		return d
	}
	if ms, err := strconv.Atoi(c.Query("interval_ms")); err == nil {
		if d := time.Duration(ms) * time.Millisecond; d > 0 && d <= maxPollInterval {
			return d
		}
	}
	return defaultPollInterval
}

// discardIncoming reads until the peer goes away so control frames are
// handled, then closes closed.
func (h *Handler) discardIncoming(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	for {
		if _, _, err := conn.NextReader(); err != nil {
			if h.log != nil {
				h.log.Debugw("ws_peer_closed", "err", err)
			}
			return
		}
	}
}
