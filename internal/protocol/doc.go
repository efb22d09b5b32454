// Package protocol implements DT packet encoding, parsing and validation.
// It handles the binary wire format: the 6-byte DT-Request, the 13-byte
// DT-Response header and its trailing UTF-8 text field. All multi-byte
// fields are big-endian.
package protocol
