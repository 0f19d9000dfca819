package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"math/rand"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mbx/internal/canonical"
	"mbx/pkg/core"
)

const testTimestamp int64 = 1499827319559

func referenceHMAC(secret, message string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}

func newTestSigner(t *testing.T, opts ...Option) *Signer {
	t.Helper()
	s, err := New("s", opts...)
	require.NoError(t, err)
	return s
}

func TestNew_EmptySecret(t *testing.T) {
	s, err := New("")
	assert.ErrorIs(t, err, ErrEmptySecret)
	assert.Nil(t, s)
}

func TestSignAt_MatchesReference(t *testing.T) {
	s := newTestSigner(t)
	params := core.Params{"symbol": "BTCUSDT", "side": "BUY"}

	signed := s.SignAt(params, time.UnixMilli(testTimestamp))

	canonicalString := "recvWindow=120000&side=BUY&symbol=BTCUSDT&timestamp=" + strconv.FormatInt(testTimestamp, 10)
	want := referenceHMAC("s", canonicalString)

	assert.Equal(t, want, signed.Signature)
	assert.Equal(t, want, signed.Params[core.SignatureKey])
	assert.Equal(t, testTimestamp, signed.Timestamp)
	assert.Equal(t, int64(120000), signed.RecvWindow)
	assert.Equal(t, canonicalString+"&signature="+want, signed.Encode())
}

func TestSignAt_DoesNotMutateInput(t *testing.T) {
	s := newTestSigner(t)
	params := core.Params{"symbol": "BTCUSDT"}

	s.SignAt(params, time.UnixMilli(testTimestamp))

	assert.Equal(t, core.Params{"symbol": "BTCUSDT"}, params)
}

func TestSignAt_Reproducible(t *testing.T) {
	s := newTestSigner(t)
	params := core.Params{"symbol": "ETHBTC", "quantity": "1.5", "type": "MARKET"}

	first := s.SignAt(params, time.UnixMilli(testTimestamp))
	second := s.SignAt(params, time.UnixMilli(testTimestamp))

	assert.Equal(t, first.Signature, second.Signature)
	assert.Equal(t, first.Encode(), second.Encode())
}

func TestSignAt_IgnoresExistingSignature(t *testing.T) {
	s := newTestSigner(t)
	clean := s.SignAt(core.Params{"symbol": "BTCUSDT"}, time.UnixMilli(testTimestamp))
	stale := s.SignAt(core.Params{"symbol": "BTCUSDT", "signature": "stale"}, time.UnixMilli(testTimestamp))

	assert.Equal(t, clean.Signature, stale.Signature)
	assert.NotEqual(t, "stale", stale.Params[core.SignatureKey])
}

func TestSignAt_RecvWindow(t *testing.T) {
	tests := []struct {
		name   string
		opts   []Option
		params core.Params
		want   int64
	}{
		{"default", nil, core.Params{}, 120000},
		{"configured_default", []Option{WithRecvWindow(5000)}, core.Params{}, 5000},
		{"caller_value_kept", nil, core.Params{"recvWindow": int64(60000)}, 60000},
		{"caller_int_kept", []Option{WithRecvWindow(5000)}, core.Params{"recvWindow": 10000}, 10000},
		{"caller_string_kept", nil, core.Params{"recvWindow": "5000"}, 5000},
		{"caller_uint_kept", nil, core.Params{"recvWindow": uint32(7000)}, 7000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSigner(t, tt.opts...)
			signed := s.SignAt(tt.params, time.UnixMilli(testTimestamp))

			assert.Equal(t, tt.want, signed.RecvWindow)
			assert.Equal(t, strconv.FormatInt(tt.want, 10), canonical.Format(signed.Params[core.RecvWindowKey]))
		})
	}
}

func TestSignAt_NonIntegerRecvWindow(t *testing.T) {
	s := newTestSigner(t)
	signed := s.SignAt(core.Params{"recvWindow": "soon"}, time.UnixMilli(testTimestamp))

	assert.Equal(t, "soon", signed.Params[core.RecvWindowKey])
	assert.Zero(t, signed.RecvWindow)
}

func TestSign_UsesClock(t *testing.T) {
	fixed := time.UnixMilli(testTimestamp)
	s := newTestSigner(t, WithClock(func() time.Time { return fixed }))

	signed := s.Sign(core.Params{"symbol": "BTCUSDT"})

	assert.Equal(t, testTimestamp, signed.Timestamp)
	assert.Equal(t, s.SignAt(core.Params{"symbol": "BTCUSDT"}, fixed).Signature, signed.Signature)
}

func TestSignAt_SingleFieldMutationChangesSignature(t *testing.T) {
	s := newTestSigner(t)
	rng := rand.New(rand.NewSource(42))
	keys := []string{"symbol", "side", "type", "quantity", "price", "timeInForce"}

	for i := 0; i < 200; i++ {
		params := core.Params{}
		for _, k := range keys {
			params[k] = strconv.Itoa(rng.Intn(1_000_000))
		}
		base := s.SignAt(params, time.UnixMilli(testTimestamp))

		mutated := params.Clone()
		key := keys[rng.Intn(len(keys))]
		mutated[key] = params[key].(string) + strconv.Itoa(1+rng.Intn(9))
		changed := s.SignAt(mutated, time.UnixMilli(testTimestamp))

		require.NotEqual(t, base.Signature, changed.Signature, "mutating %s must change the signature", key)
	}

	params := core.Params{"symbol": "BTCUSDT"}
	assert.NotEqual(t,
		s.SignAt(params, time.UnixMilli(testTimestamp)).Signature,
		s.SignAt(params, time.UnixMilli(testTimestamp+1)).Signature)
}

func TestDigest_DifferentSecrets(t *testing.T) {
	a, err := New("secret-a")
	require.NoError(t, err)
	b, err := New("secret-b")
	require.NoError(t, err)

	assert.NotEqual(t, a.Digest("symbol=BTCUSDT"), b.Digest("symbol=BTCUSDT"))
	assert.Equal(t, referenceHMAC("secret-a", "symbol=BTCUSDT"), a.Digest("symbol=BTCUSDT"))
}
