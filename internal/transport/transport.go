// Package transport performs one HTTP round trip per call and hands back the
// decoded-but-uninterpreted JSON body.
package transport

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
)

// Param is one query string pair. Order is preserved on the wire.
type Param struct {
	Key   string
	Value string
}

// Transport is the capability the session needs from the network layer.
// A call either returns one complete JSON value or fails with a
// *protocol.TransportError.
type Transport interface {
	Call(ctx context.Context, method, path string, query []Param, body string) (json.RawMessage, error)
}

// TransportFunc adapts a function to the Transport interface
type TransportFunc func(ctx context.Context, method, path string, query []Param, body string) (json.RawMessage, error)

// Call invokes f
func (f TransportFunc) Call(ctx context.Context, method, path string, query []Param, body string) (json.RawMessage, error) {
	return f(ctx, method, path, query, body)
}

// EncodeQuery renders params in the given order, escaping keys and values
func EncodeQuery(query []Param) string {
	if len(query) == 0 {
		return ""
	}

	var b strings.Builder
	for i, p := range query {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}
