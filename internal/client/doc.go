// Package client implements the single-shot DT exchange: send one
// DT-Request over a transient UDP socket and wait up to the protocol
// timeout for one validated DT-Response. There is no retry; the protocol
// is fire-once.
package client
