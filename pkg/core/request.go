package core

import "maps"

// Params holds named operation parameters.
type Params map[string]any

// Request describes one HTTP call against the exchange before signing.
type Request struct {
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Query       Params            `json:"query,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Weight      int               `json:"weight"`
	RequireAuth bool              `json:"require_auth"`
}

// NewRequest creates a Request with the given method and path and a default
// weight of 1.
func NewRequest(method, path string) *Request {
	return &Request{
		Method:  method,
		Path:    path,
		Query:   make(Params),
		Headers: make(map[string]string),
		Weight:  1,
	}
}

// SetQuery sets a single query parameter and returns the request for chaining.
func (r *Request) SetQuery(key string, value any) *Request {
	if r.Query == nil {
		r.Query = make(Params)
	}
	r.Query[key] = value
	return r
}

// SetQueryParams merges the given params into the query.
func (r *Request) SetQueryParams(params Params) *Request {
	if r.Query == nil {
		r.Query = make(Params)
	}
	maps.Copy(r.Query, params)
	return r
}

// SetHeader sets a single header and returns the request for chaining.
func (r *Request) SetHeader(key, value string) *Request {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
	return r
}

// SetWeight sets the Binance request weight used for rate accounting.
func (r *Request) SetWeight(weight int) *Request {
	r.Weight = weight
	return r
}

// SetRequireAuth marks the request as needing an HMAC signature.
func (r *Request) SetRequireAuth(require bool) *Request {
	r.RequireAuth = require
	return r
}
