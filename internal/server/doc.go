// Package server implements the DT server: a dispatcher that binds one UDP
// socket per response language, validates incoming DT-Requests and replies
// with localized date or time text, plus an optional HTTP API for
// monitoring.
package server
