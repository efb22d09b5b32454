package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/Matrixuniverses/dt-service/internal/locale"
)

// Protocol constants from the DT wire format
const (
	// MagicNumber identifies DT traffic; anything else is rejected.
	MagicNumber = 0x497E

	// Packet types
	PacketTypeRequest  = 0x0001
	PacketTypeResponse = 0x0002

	// Packet structure sizes
	RequestSize        = 6  // 2 + 2 + 2 bytes
	ResponseHeaderSize = 13 // 2 + 2 + 2 + 2 + 1 + 1 + 1 + 1 + 1 bytes

	// MaxPacketSize bounds the receive buffer. The largest legal response is
	// 13 header bytes plus at most 255 bytes of text, so 1024 is plenty.
	MaxPacketSize = 1024
)

// Timeout is the protocol's single timing constant: the client waits this
// long for a response, and the server uses it as its multiplex poll interval.
const Timeout = 1 * time.Second

// Parse failures. Each validation rule has its own sentinel so callers can
// distinguish reject reasons with errors.Is.
var (
	ErrMalformed      = errors.New("malformed packet")
	ErrBadMagic       = errors.New("bad magic number")
	ErrBadPacketType  = errors.New("wrong packet type")
	ErrBadLanguage    = errors.New("invalid language code")
	ErrBadYear        = errors.New("invalid year")
	ErrBadMonth       = errors.New("invalid month")
	ErrBadDay         = errors.New("invalid day")
	ErrBadHour        = errors.New("invalid hour")
	ErrBadMinute      = errors.New("invalid minute")
	ErrLengthMismatch = errors.New("packet length mismatch")
	ErrBadEncoding    = errors.New("text is not valid UTF-8")
)

// RequestKind selects what the client is asking for.
type RequestKind uint16

// Request kinds
const (
	RequestDate RequestKind = 0x0001
	RequestTime RequestKind = 0x0002
)

// Recognized reports whether k is one of the two defined request kinds.
// ParseRequest does not enforce this; the dispatcher decides what to do
// with an unrecognized kind.
func (k RequestKind) Recognized() bool {
	return k == RequestDate || k == RequestTime
}

// String returns a human-readable name for the request kind.
func (k RequestKind) String() string {
	switch k {
	case RequestDate:
		return "date"
	case RequestTime:
		return "time"
	default:
		return fmt.Sprintf("Unknown(0x%04x)", uint16(k))
	}
}

// Response represents a parsed DT-Response.
// Wire layout: [Magic:2][Type:2][Language:2][Year:2][Month:1][Day:1][Hour:1][Minute:1][TextLen:1][Text:N]
type Response struct {
	Language locale.Language
	Year     uint16
	Month    uint8
	Day      uint8
	Hour     uint8
	Minute   uint8
	Text     string
}

// String returns a human-readable representation of the response.
func (r *Response) String() string {
	return fmt.Sprintf("Response{Lang:%s, Date:%04d-%02d-%02d, Time:%02d:%02d, Text:%q}",
		r.Language, r.Year, r.Month, r.Day, r.Hour, r.Minute, r.Text)
}

// EncodeRequest builds the 6-byte DT-Request for kind. The caller guarantees
// kind is one of the defined request kinds; no validation is performed here.
func EncodeRequest(kind RequestKind) []byte {
	buf := make([]byte, RequestSize)
	binary.BigEndian.PutUint16(buf[0:2], MagicNumber)
	binary.BigEndian.PutUint16(buf[2:4], PacketTypeRequest)
	binary.BigEndian.PutUint16(buf[4:6], uint16(kind))
	return buf
}

// ParseRequest validates data as a DT-Request and returns its request kind.
// Checks run in a fixed order and stop at the first failure: exact length,
// magic number, packet type. The kind itself is returned unvalidated so the
// caller owns the policy for unrecognized kinds.
func ParseRequest(data []byte) (RequestKind, error) {
	if len(data) != RequestSize {
		return 0, fmt.Errorf("%w: expected %d bytes, got %d", ErrMalformed, RequestSize, len(data))
	}

	if magic := binary.BigEndian.Uint16(data[0:2]); magic != MagicNumber {
		return 0, fmt.Errorf("%w: got 0x%04x", ErrBadMagic, magic)
	}

	if ptype := binary.BigEndian.Uint16(data[2:4]); ptype != PacketTypeRequest {
		return 0, fmt.Errorf("%w: expected 0x%04x, got 0x%04x", ErrBadPacketType, PacketTypeRequest, ptype)
	}

	return RequestKind(binary.BigEndian.Uint16(data[4:6])), nil
}

// EncodeResponse builds a complete DT-Response packet for the given request
// kind and language, taking the date/time fields from now and appending the
// localized text. The server always calls this with consistent inputs, so no
// validation is performed.
func EncodeResponse(kind RequestKind, lang locale.Language, now time.Time) []byte {
	var text string
	switch kind {
	case RequestDate:
		text = locale.DateText(lang, int(now.Month()), now.Day(), now.Year())
	case RequestTime:
		text = locale.TimeText(lang, now.Hour(), now.Minute())
	}

	buf := make([]byte, ResponseHeaderSize+len(text))
	binary.BigEndian.PutUint16(buf[0:2], MagicNumber)
	binary.BigEndian.PutUint16(buf[2:4], PacketTypeResponse)
	binary.BigEndian.PutUint16(buf[4:6], uint16(lang))
	binary.BigEndian.PutUint16(buf[6:8], uint16(now.Year()))
	buf[8] = uint8(now.Month())
	buf[9] = uint8(now.Day())
	buf[10] = uint8(now.Hour())
	buf[11] = uint8(now.Minute())
	buf[12] = uint8(len(text))
	copy(buf[ResponseHeaderSize:], text)
	return buf
}

// ParseResponse validates data as a DT-Response and returns the parsed
// fields. Checks run in a fixed order and stop at the first failure:
// minimum length, magic number, packet type, language code, year, month,
// day, hour, minute, declared text length, UTF-8 validity of the text.
// Hour 24 and minute 60 are accepted as structurally valid even though a
// correct server never produces them.
func ParseResponse(data []byte) (*Response, error) {
	if len(data) < ResponseHeaderSize {
		return nil, fmt.Errorf("%w: expected at least %d bytes, got %d", ErrMalformed, ResponseHeaderSize, len(data))
	}

	if magic := binary.BigEndian.Uint16(data[0:2]); magic != MagicNumber {
		return nil, fmt.Errorf("%w: got 0x%04x", ErrBadMagic, magic)
	}

	if ptype := binary.BigEndian.Uint16(data[2:4]); ptype != PacketTypeResponse {
		return nil, fmt.Errorf("%w: expected 0x%04x, got 0x%04x", ErrBadPacketType, PacketTypeResponse, ptype)
	}

	lang := locale.Language(binary.BigEndian.Uint16(data[4:6]))
	if !lang.Valid() {
		return nil, fmt.Errorf("%w: got 0x%04x", ErrBadLanguage, uint16(lang))
	}

	year := binary.BigEndian.Uint16(data[6:8])
	if year >= 2100 {
		return nil, fmt.Errorf("%w: got %d, must be below 2100", ErrBadYear, year)
	}

	month := data[8]
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: got %d", ErrBadMonth, month)
	}

	day := data[9]
	if day < 1 || day > 31 {
		return nil, fmt.Errorf("%w: got %d", ErrBadDay, day)
	}

	hour := data[10]
	if hour > 24 {
		return nil, fmt.Errorf("%w: got %d", ErrBadHour, hour)
	}

	minute := data[11]
	if minute > 60 {
		return nil, fmt.Errorf("%w: got %d", ErrBadMinute, minute)
	}

	textLen := int(data[12])
	if ResponseHeaderSize+textLen != len(data) {
		return nil, fmt.Errorf("%w: header declares %d text bytes, packet is %d bytes",
			ErrLengthMismatch, textLen, len(data))
	}

	text := data[ResponseHeaderSize:]
	if !utf8.Valid(text) {
		return nil, ErrBadEncoding
	}

	return &Response{
		Language: lang,
		Year:     year,
		Month:    month,
		Day:      day,
		Hour:     hour,
		Minute:   minute,
		Text:     string(text),
	}, nil
}
