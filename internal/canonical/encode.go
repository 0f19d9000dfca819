// Package canonical serializes request parameters into the single, stable
// query string that is both signed and transmitted.
package canonical

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"mbx/pkg/core"
)

// Encode returns the canonical form of params: every pair except the
// signature sorted by key in byte order, query-escaped and joined with '&',
// followed by the signature pair when present. An empty set encodes to "".
func Encode(params core.Params) string {
	if len(params) == 0 {
		return ""
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		if k == core.SignatureKey {
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	for _, k := range keys {
		writePair(&b, k, params[k])
	}
	if sig, ok := params[core.SignatureKey]; ok {
		writePair(&b, core.SignatureKey, sig)
	}
	return b.String()
}

func writePair(b *strings.Builder, key string, value any) {
	if b.Len() > 0 {
		b.WriteByte('&')
	}
	b.WriteString(url.QueryEscape(key))
	b.WriteByte('=')
	b.WriteString(url.QueryEscape(Format(value)))
}

// Format renders a scalar parameter value.
func Format(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case apd.Decimal:
		return val.Text('f')
	case *apd.Decimal:
		if val == nil {
			return ""
		}
		return val.Text('f')
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}
