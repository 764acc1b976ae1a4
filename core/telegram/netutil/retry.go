// Package netutil classifies network failures from the Telegram API client.
package netutil

import (
	"context"
	"errors"
	"net"
)

// ShouldRetry reports whether err looks like a transient transport
// failure worth retrying: timeouts, DNS hiccups and failed dials.
// API-level rejections are final and excluded. errors.As walks wrapped
// chains, so url.Error and op errors from net/http are covered.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTimeout || dnsErr.IsTemporary
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
