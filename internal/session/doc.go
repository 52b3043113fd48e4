// Package session persists the client's authenticated session.
//
// The record lives in a synchronous key-value Backend under four well-known
// keys. Reads never fail: a missing, partial, or corrupt record reads as
// absent (guest) and is never surfaced as an error. Only the auth gateway
// writes through Set and Clear; everything else receives a Reader.
package session
