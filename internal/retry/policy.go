// Package retry bounds how often a failing call is attempted.
package retry

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy decides how many attempts a call gets, which errors are worth
// another attempt and how long to wait in between.
type Policy struct {
	// MaxAttempts counts the first attempt. Values below 1 are treated as 1.
	MaxAttempts int
	// WaitMin of zero means immediate retry. Otherwise waits grow
	// exponentially from WaitMin and are capped at WaitMax.
	WaitMin time.Duration
	WaitMax time.Duration
	// Retryable reports whether err warrants another attempt. Nil means IsTransient.
	Retryable func(error) bool
}

// NotifyFunc observes a failed attempt that is about to be retried after wait.
type NotifyFunc func(attempt int, err error, wait time.Duration)

func NewPolicy(maxAttempts int, waitMin, waitMax time.Duration) *Policy {
	return &Policy{
		MaxAttempts: maxAttempts,
		WaitMin:     waitMin,
		WaitMax:     waitMax,
		Retryable:   IsTransient,
	}
}

func (p *Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p *Policy) retryable(err error) bool {
	if p.Retryable == nil {
		return IsTransient(err)
	}
	return p.Retryable(err)
}

func (p *Policy) backOff() backoff.BackOff {
	if p.WaitMin <= 0 {
		return &backoff.ZeroBackOff{}
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.WaitMin
	b.MaxInterval = max(p.WaitMax, p.WaitMin)
	b.MaxElapsedTime = 0
	return b
}

// Do runs op until it succeeds, returns a non-retryable error, the attempt
// limit is reached or ctx is done. Attempts are strictly sequential. It
// returns the number of attempts made and the last error.
func (p *Policy) Do(ctx context.Context, op func(attempt int) error, notify NotifyFunc) (int, error) {
	b := backoff.WithContext(
		backoff.WithMaxRetries(p.backOff(), uint64(p.attempts()-1)),
		ctx,
	)

	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		err := op(attempt)
		if err == nil {
			return nil
		}
		if !p.retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b, func(err error, wait time.Duration) {
		if notify != nil {
			notify(attempt, err, wait)
		}
	})
	return attempt, err
}

// IsTransient reports whether err is a transport failure that may succeed on
// another attempt: timeouts, refused or reset connections, socket and
// resolver failures and truncated responses. TLS failures, unknown hosts
// and malformed URLs are not.
// Cancellation by the caller is never transient.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return !dnsErr.IsNotFound
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch opErr.Op {
		case "dial", "read", "write":
			return true
		}
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
