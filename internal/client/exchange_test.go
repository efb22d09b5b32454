package client

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/Matrixuniverses/dt-service/internal/locale"
	"github.com/Matrixuniverses/dt-service/internal/protocol"
)

// startFakeServer binds a loopback UDP socket and answers the first datagram
// with whatever handler returns. A nil return sends no reply, which is how
// the timeout tests starve the client.
func startFakeServer(t *testing.T, handler func(req []byte) []byte) *net.UDPAddr {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("failed to bind fake server: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	go func() {
		buffer := make([]byte, protocol.MaxPacketSize)
		n, remoteAddr, err := conn.ReadFromUDP(buffer)
		if err != nil {
			return
		}
		if reply := handler(buffer[:n]); reply != nil {
			conn.WriteToUDP(reply, remoteAddr)
		}
	}()

	return conn.LocalAddr().(*net.UDPAddr)
}

func TestExchangeRoundTrip(t *testing.T) {
	now := time.Date(2022, time.March, 14, 15, 9, 0, 0, time.UTC)

	addr := startFakeServer(t, func(req []byte) []byte {
		kind, err := protocol.ParseRequest(req)
		if err != nil {
			t.Errorf("server received an invalid request: %v", err)
			return nil
		}
		return protocol.EncodeResponse(kind, locale.Maori, now)
	})

	resp, err := Exchange(addr, protocol.RequestDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Language != locale.Maori {
		t.Errorf("expected Māori response, got %s", resp.Language)
	}
	want := locale.DateText(locale.Maori, 3, 14, 2022)
	if resp.Text != want {
		t.Errorf("expected text %q, got %q", want, resp.Text)
	}
}

func TestExchangeTimeout(t *testing.T) {
	// Server that listens but never replies.
	addr := startFakeServer(t, func(req []byte) []byte { return nil })

	start := time.Now()
	_, err := Exchange(addr, protocol.RequestTime)
	elapsed := time.Since(start)

	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if elapsed < protocol.Timeout-100*time.Millisecond {
		t.Errorf("timed out too early: %v", elapsed)
	}
	if elapsed > 3*protocol.Timeout {
		t.Errorf("timed out too late: %v", elapsed)
	}
}

func TestExchangeRejectsBadResponse(t *testing.T) {
	tests := []struct {
		name    string
		reply   []byte
		wantErr error
	}{
		{
			name:    "truncated response",
			reply:   []byte{0x49, 0x7E, 0x00, 0x02},
			wantErr: protocol.ErrMalformed,
		},
		{
			name: "bad magic",
			reply: []byte{
				0xDE, 0xAD, 0x00, 0x02, 0x00, 0x01, 0x07, 0xE6,
				0x03, 0x0E, 0x0F, 0x09, 0x00,
			},
			wantErr: protocol.ErrBadMagic,
		},
		{
			name: "length mismatch",
			reply: []byte{
				0x49, 0x7E, 0x00, 0x02, 0x00, 0x01, 0x07, 0xE6,
				0x03, 0x0E, 0x0F, 0x09, 0x05, // declares 5 text bytes, has none
			},
			wantErr: protocol.ErrLengthMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := startFakeServer(t, func(req []byte) []byte { return tt.reply })

			_, err := Exchange(addr, protocol.RequestDate)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
