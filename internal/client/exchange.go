package client

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/Matrixuniverses/dt-service/internal/protocol"
)

// ErrTimeout indicates the server did not respond within the protocol
// timeout. Terminal; the exchange is never retried.
var ErrTimeout = errors.New("timed out waiting for DT-Response")

// Exchange sends a DT-Request of the given kind to addr and waits up to
// protocol.Timeout for a single DT-Response. The socket is closed on every
// exit path. Any parse failure of the received datagram is returned as the
// protocol package's reject error.
func Exchange(addr *net.UDPAddr, kind protocol.RequestKind) (*protocol.Response, error) {
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to open UDP socket: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Write(protocol.EncodeRequest(kind)); err != nil {
		return nil, fmt.Errorf("failed to send DT-Request: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(protocol.Timeout)); err != nil {
		return nil, fmt.Errorf("failed to set read deadline: %w", err)
	}

	buffer := make([]byte, protocol.MaxPacketSize)
	n, err := conn.Read(buffer)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, fmt.Errorf("%w: %s did not respond within %s", ErrTimeout, addr, protocol.Timeout)
		}
		return nil, fmt.Errorf("failed to receive DT-Response: %w", err)
	}

	return protocol.ParseResponse(buffer[:n])
}
