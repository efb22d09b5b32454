package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/Matrixuniverses/dt-service/internal/config"
	"github.com/Matrixuniverses/dt-service/internal/locale"
	"github.com/Matrixuniverses/dt-service/internal/metrics"
	"github.com/Matrixuniverses/dt-service/internal/protocol"
)

// Dispatcher waits on one UDP socket per language and answers each valid
// DT-Request with a DT-Response localized to the socket it arrived on.
// Invalid datagrams are logged and dropped; UDP offers no error channel
// back to the sender.
type Dispatcher struct {
	cfg     *config.ServerConfig
	logger  *slog.Logger
	metrics *metrics.Metrics // may be nil

	sockets []*languageSocket

	// Concurrency management
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Clock, overridable in tests
	now func() time.Time

	// Counters
	mu       sync.RWMutex
	received uint64
	replied  uint64
	dropped  uint64
}

// languageSocket pairs a bound socket with the language its port serves.
type languageSocket struct {
	lang locale.Language
	port int
	conn *net.UDPConn
}

// NewDispatcher creates a dispatcher for the three configured language
// ports. Metrics may be nil, in which case only the internal counters are
// kept.
func NewDispatcher(cfg *config.ServerConfig, logger *slog.Logger, m *metrics.Metrics) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	return &Dispatcher{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		ctx:     ctx,
		cancel:  cancel,
		now:     time.Now,
		sockets: []*languageSocket{
			{lang: locale.English, port: cfg.EnglishPort},
			{lang: locale.Maori, port: cfg.MaoriPort},
			{lang: locale.German, port: cfg.GermanPort},
		},
	}
}

// Start binds every language socket and launches their receive loops.
// A bind failure closes any sockets already bound and is returned to the
// caller; a partially listening server is never left behind.
func (d *Dispatcher) Start() error {
	for _, ls := range d.sockets {
		addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", d.cfg.BindAddress, ls.port))
		if err != nil {
			d.closeSockets()
			return fmt.Errorf("failed to resolve UDP address for %s: %w", ls.lang, err)
		}

		conn, err := net.ListenUDP("udp", addr)
		if err != nil {
			d.closeSockets()
			return fmt.Errorf("failed to listen on port %d (%s): %w", ls.port, ls.lang, err)
		}
		ls.conn = conn

		if err := conn.SetReadBuffer(d.cfg.BufferSize); err != nil {
			d.logger.Warn("Failed to set UDP read buffer size",
				slog.Int("buffer_size", d.cfg.BufferSize),
				slog.String("error", err.Error()),
			)
		}

		d.logger.Info("Language socket bound",
			slog.String("language", ls.lang.String()),
			slog.String("address", conn.LocalAddr().String()),
		)
	}

	for _, ls := range d.sockets {
		d.wg.Add(1)
		go d.receiveLoop(ls)
	}

	return nil
}

// Stop closes all sockets and waits for the receive loops to exit.
func (d *Dispatcher) Stop() {
	d.logger.Info("Stopping dispatcher...")

	d.cancel()
	d.closeSockets()
	d.wg.Wait()

	stats := d.Statistics()
	d.logger.Info("Dispatcher stopped",
		slog.Uint64("datagrams_received", stats.DatagramsReceived),
		slog.Uint64("replies_sent", stats.RepliesSent),
		slog.Uint64("datagrams_dropped", stats.DatagramsDropped),
	)
}

func (d *Dispatcher) closeSockets() {
	for _, ls := range d.sockets {
		if ls.conn != nil {
			if err := ls.conn.Close(); err != nil {
				d.logger.Warn("Error closing language socket",
					slog.String("language", ls.lang.String()),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// receiveLoop reads datagrams off one language socket until shutdown.
// The read deadline doubles as the liveness poll: it never drops a request,
// it only bounds how long the loop blocks before re-checking the context.
// Each iteration handles exactly one datagram before re-entering the wait.
func (d *Dispatcher) receiveLoop(ls *languageSocket) {
	defer d.wg.Done()

	buffer := make([]byte, protocol.MaxPacketSize)

	for {
		select {
		case <-d.ctx.Done():
			return
		default:
		}

		if err := ls.conn.SetReadDeadline(time.Now().Add(protocol.Timeout)); err != nil {
			d.logger.Error("Failed to set read deadline", slog.String("error", err.Error()))
			continue
		}

		n, remoteAddr, err := ls.conn.ReadFromUDP(buffer)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue // no socket ready within the poll window
			}

			select {
			case <-d.ctx.Done():
				return
			default:
				d.logger.Error("Failed to read UDP datagram",
					slog.String("language", ls.lang.String()),
					slog.String("error", err.Error()),
				)
				continue
			}
		}

		d.handleDatagram(ls, buffer[:n], remoteAddr)
	}
}

// handleDatagram validates one datagram and either replies or drops it.
func (d *Dispatcher) handleDatagram(ls *languageSocket, data []byte, remoteAddr *net.UDPAddr) {
	d.mu.Lock()
	d.received++
	d.mu.Unlock()
	if d.metrics != nil {
		d.metrics.RecordReceived(ls.lang.String())
	}

	kind, err := protocol.ParseRequest(data)
	if err != nil {
		d.drop(ls, remoteAddr, rejectReason(err), err.Error(), len(data))
		return
	}

	// A structurally valid request with an unknown kind carries nothing we
	// can answer; it is dropped rather than answered with empty text.
	if !kind.Recognized() {
		d.drop(ls, remoteAddr, "unrecognized_kind",
			fmt.Sprintf("unrecognized request kind 0x%04x", uint16(kind)), len(data))
		return
	}

	d.logger.Info("DT-Request received",
		slog.String("remote_addr", remoteAddr.String()),
		slog.String("kind", kind.String()),
		slog.String("language", ls.lang.String()),
	)

	reply := protocol.EncodeResponse(kind, ls.lang, d.now())
	if _, err := ls.conn.WriteToUDP(reply, remoteAddr); err != nil {
		d.logger.Error("Failed to send DT-Response",
			slog.String("remote_addr", remoteAddr.String()),
			slog.String("language", ls.lang.String()),
			slog.String("error", err.Error()),
		)
		return
	}

	d.mu.Lock()
	d.replied++
	d.mu.Unlock()
	if d.metrics != nil {
		d.metrics.RecordReply(ls.lang.String())
	}

	d.logger.Info("DT-Response sent",
		slog.String("remote_addr", remoteAddr.String()),
		slog.String("language", ls.lang.String()),
		slog.Int("packet_size", len(reply)),
	)
}

// drop records and logs a datagram that produced no reply.
func (d *Dispatcher) drop(ls *languageSocket, remoteAddr *net.UDPAddr, reason, detail string, size int) {
	d.mu.Lock()
	d.dropped++
	d.mu.Unlock()
	if d.metrics != nil {
		d.metrics.RecordDrop(reason)
	}

	d.logger.Warn("Dropping datagram",
		slog.String("remote_addr", remoteAddr.String()),
		slog.String("language", ls.lang.String()),
		slog.String("reason", reason),
		slog.String("detail", detail),
		slog.Int("packet_size", size),
	)
}

// rejectReason maps a parse error to a short label for logs and metrics.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, protocol.ErrMalformed):
		return "malformed"
	case errors.Is(err, protocol.ErrBadMagic):
		return "bad_magic"
	case errors.Is(err, protocol.ErrBadPacketType):
		return "bad_packet_type"
	default:
		return "other"
	}
}

// Statistics returns current dispatcher counters
func (d *Dispatcher) Statistics() DispatcherStatistics {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return DispatcherStatistics{
		DatagramsReceived: d.received,
		RepliesSent:       d.replied,
		DatagramsDropped:  d.dropped,
	}
}

// DispatcherStatistics represents dispatcher counters for monitoring
type DispatcherStatistics struct {
	DatagramsReceived uint64 `json:"datagrams_received"`
	RepliesSent       uint64 `json:"replies_sent"`
	DatagramsDropped  uint64 `json:"datagrams_dropped"`
}
