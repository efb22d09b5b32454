package main

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/Matrixuniverses/dt-service/internal/client"
	"github.com/Matrixuniverses/dt-service/internal/config"
	"github.com/Matrixuniverses/dt-service/internal/protocol"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s date|time <host> <port>\n", os.Args[0])
	}
	flag.Parse()

	kind, addr, err := parseArgs(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	resp, err := client.Exchange(addr, kind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[%s] %v\n", failureCategory(err), err)
		os.Exit(1)
	}

	fmt.Printf("Magic number: 0x%04X\tPacket type: %d\tLanguage: %s\n",
		protocol.MagicNumber, protocol.PacketTypeResponse, resp.Language)
	fmt.Printf("Date: %04d-%02d-%02d\tTime: %02d:%02d\n",
		resp.Year, resp.Month, resp.Day, resp.Hour, resp.Minute)
	fmt.Printf("Text: %s\n", resp.Text)
}

// parseArgs validates the positional arguments and resolves the server
// address. Hostname resolution and port range checks happen here, before
// the exchange core is invoked.
func parseArgs(args []string) (protocol.RequestKind, *net.UDPAddr, error) {
	if len(args) != 3 {
		return 0, nil, fmt.Errorf("expected three arguments, got %d", len(args))
	}

	var kind protocol.RequestKind
	switch args[0] {
	case "date":
		kind = protocol.RequestDate
	case "time":
		kind = protocol.RequestTime
	default:
		return 0, nil, fmt.Errorf("request type must be 'date' or 'time', got %q", args[0])
	}

	port, err := strconv.Atoi(args[2])
	if err != nil {
		return 0, nil, fmt.Errorf("invalid port %q: %w", args[2], err)
	}
	if !config.ValidPort(port) {
		return 0, nil, fmt.Errorf("port must be in range %d-%d, got %d", config.MinPort, config.MaxPort, port)
	}

	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", args[1], port))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to resolve %q: %w", args[1], err)
	}

	return kind, addr, nil
}

// failureCategory maps an exchange error to the short category shown to the
// user.
func failureCategory(err error) string {
	switch {
	case errors.Is(err, client.ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, protocol.ErrMalformed):
		return "MALFORMED"
	case errors.Is(err, protocol.ErrBadMagic):
		return "WRONG MAGIC"
	case errors.Is(err, protocol.ErrBadPacketType):
		return "WRONG TYPE"
	case errors.Is(err, protocol.ErrLengthMismatch):
		return "LENGTH MISMATCH"
	case errors.Is(err, protocol.ErrBadLanguage),
		errors.Is(err, protocol.ErrBadYear),
		errors.Is(err, protocol.ErrBadMonth),
		errors.Is(err, protocol.ErrBadDay),
		errors.Is(err, protocol.ErrBadHour),
		errors.Is(err, protocol.ErrBadMinute):
		return "INVALID FIELD"
	case errors.Is(err, protocol.ErrBadEncoding):
		return "INVALID ENCODING"
	default:
		return "ERROR"
	}
}
