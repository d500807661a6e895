// Package sender holds the channel adapter boundary: thin, fallible,
// timeout-bounded clients for the SMS and email providers, plus the error
// classification the dispatcher's retry policy depends on.
package sender

import (
	"context"
	"errors"
	"net"
)

var (
	// ErrPermanent marks provider rejections that a retry cannot fix
	// (invalid recipient, rejected content).
	ErrPermanent = errors.New("permanent channel failure")
	// ErrTransient marks provider/network failures worth retrying within
	// the bounded window.
	ErrTransient = errors.New("transient channel failure")
)

// Class is the dispatcher-facing classification of a send error.
type Class int

const (
	// ClassTransient: retry on a later tick, entry stays Reserved.
	ClassTransient Class = iota
	// ClassPermanent: mark Failed, never retry automatically.
	ClassPermanent
	// ClassTimeout: outcome unknown, the send may have gone through.
	// The entry stays Reserved and only the send is retried, bounded.
	ClassTimeout
)

func (c Class) String() string {
	switch c {
	case ClassPermanent:
		return "permanent"
	case ClassTimeout:
		return "timeout"
	default:
		return "transient"
	}
}

// Classify maps a send error to the retry policy class. Timeouts are
// checked first: a deadline expiry is ambiguous even when the underlying
// error also matches another class.
func Classify(err error) Class {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ClassTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassTimeout
	}

	if errors.Is(err, ErrPermanent) {
		return ClassPermanent
	}
	return ClassTransient
}
