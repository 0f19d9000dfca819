// Package signer authenticates requests with an HMAC-SHA256 tag over their
// canonical encoding.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"mbx/internal/canonical"
	"mbx/pkg/core"
)

// ErrEmptySecret is returned by New when no secret key is supplied.
var ErrEmptySecret = errors.New("secret key is required for signing")

// Signer computes request signatures. It is immutable after New and safe for
// concurrent use.
type Signer struct {
	secret     []byte
	recvWindow int64
	now        func() time.Time
}

// Option configures a Signer.
type Option func(*Signer)

// WithRecvWindow sets the receive window, in milliseconds, injected when a
// request does not carry its own.
func WithRecvWindow(ms int64) Option {
	return func(s *Signer) {
		if ms > 0 {
			s.recvWindow = ms
		}
	}
}

// WithClock sets the time source for request timestamps. Clients pass a
// server-offset clock here.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) {
		if now != nil {
			s.now = now
		}
	}
}

func New(secret string, opts ...Option) (*Signer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	s := &Signer{
		secret:     []byte(secret),
		recvWindow: core.DefaultRecvWindow,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SignedRequest is a parameter set carrying timestamp, recvWindow and
// signature. It is built for one attempt and must not be reused.
type SignedRequest struct {
	Params    core.Params
	Timestamp int64
	// RecvWindow is the window as sent. It is zero when a caller-supplied
	// value is not an integer.
	RecvWindow int64
	Signature  string
}

// Encode returns the query string to transmit. It is the exact string that
// was signed with "&signature=..." appended.
func (r *SignedRequest) Encode() string {
	return canonical.Encode(r.Params)
}

// Sign stamps params with the current time and signs them.
func (s *Signer) Sign(params core.Params) *SignedRequest {
	return s.SignAt(params, s.now())
}

// SignAt signs params as if issued at t. The caller's set is not modified.
func (s *Signer) SignAt(params core.Params, t time.Time) *SignedRequest {
	signed := params.Clone()
	delete(signed, core.SignatureKey)

	recvWindow := s.recvWindow
	if v, ok := signed[core.RecvWindowKey]; ok {
		recvWindow, _ = strconv.ParseInt(canonical.Format(v), 10, 64)
	} else {
		signed[core.RecvWindowKey] = recvWindow
	}

	ts := t.UnixMilli()
	signed[core.TimestampKey] = ts

	sig := s.Digest(canonical.Encode(signed))
	signed[core.SignatureKey] = sig

	return &SignedRequest{
		Params:     signed,
		Timestamp:  ts,
		RecvWindow: recvWindow,
		Signature:  sig,
	}
}

// Digest returns the lowercase hex HMAC-SHA256 of payload keyed by the secret.
func (s *Signer) Digest(payload string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}
