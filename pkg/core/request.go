package core

import (
	"maps"
	"net/http"
)

// Params is the parameter set of a single request. Keys are unique and
// insertion order is irrelevant: the wire order is always key-sorted, with the
// reserved SignatureKey last.
type Params map[string]any

// Reserved parameter names added by request signing.
const (
	SignatureKey  = "signature"
	TimestampKey  = "timestamp"
	RecvWindowKey = "recvWindow"
)

// Clone returns a shallow copy of p. A nil set clones to an empty one.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	maps.Copy(out, p)
	return out
}

// Set stores value under key and returns p for chaining.
func (p Params) Set(key string, value any) Params {
	p[key] = value
	return p
}

// SetIf stores value under key only when ok is true.
func (p Params) SetIf(ok bool, key string, value any) Params {
	if ok {
		p[key] = value
	}
	return p
}

// Request describes one REST call before signing.
type Request struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Query  Params `json:"query,omitempty"`
	// Signed marks endpoints that need timestamp, recvWindow and signature.
	Signed bool `json:"signed"`
	// Weight is the request weight charged by the exchange.
	Weight int `json:"weight"`
}

func NewRequest(method, path string) *Request {
	return &Request{
		Method: method,
		Path:   path,
		Query:  make(Params),
		Weight: 1,
	}
}

// NewRouteRequest builds a request for op using its route table entry.
func NewRouteRequest(op Operation) *Request {
	route := op.Route()
	req := NewRequest(route.Method, route.Path)
	req.Signed = route.Signed
	req.Weight = route.Weight
	return req
}

func (r *Request) SetQuery(key string, value any) *Request {
	if r.Query == nil {
		r.Query = make(Params)
	}
	r.Query[key] = value
	return r
}

func (r *Request) SetQueryParams(params Params) *Request {
	if r.Query == nil {
		r.Query = make(Params)
	}
	maps.Copy(r.Query, params)
	return r
}

func (r *Request) SetWeight(weight int) *Request {
	r.Weight = weight
	return r
}

func (r *Request) SetSigned(signed bool) *Request {
	r.Signed = signed
	return r
}

// Valid reports whether the method is one the transport can send.
func (r *Request) Valid() bool {
	switch r.Method {
	case http.MethodGet, http.MethodPost, http.MethodDelete:
		return r.Path != ""
	}
	return false
}
