package core

import (
	"strconv"

	"github.com/bytedance/sonic"
)

// UsedWeightHeader reports the request weight used in the current minute.
const UsedWeightHeader = "X-Mbx-Used-Weight-1m"

// Payload is a successfully classified response. Value holds the decoded
// JSON document; the exchange schema is not interpreted here.
type Payload struct {
	StatusCode int               `json:"status_code"`
	Headers    map[string]string `json:"headers,omitempty"`
	Raw        []byte            `json:"-"`
	Value      any               `json:"value"`
}

// Decode unmarshals the raw body into v.
func (p *Payload) Decode(v any) error {
	return sonic.Unmarshal(p.Raw, v)
}

// UsedWeight returns the weight the exchange reports as used, or -1 when absent.
func (p *Payload) UsedWeight() int {
	return ParseUsedWeight(p.Headers)
}

// ParseUsedWeight reads UsedWeightHeader from canonically keyed headers.
// It returns -1 when the header is absent or malformed.
func ParseUsedWeight(headers map[string]string) int {
	v, ok := headers[UsedWeightHeader]
	if !ok {
		return -1
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}
