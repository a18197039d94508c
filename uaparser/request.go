package uaparser

import (
	"context"
	"net/http"
)

type contextKey struct{}

// WithContext returns a copy of ctx carrying res.
func WithContext(ctx context.Context, res *Result) context.Context {
	return context.WithValue(ctx, contextKey{}, res)
}

// FromContext returns the Result stored by Middleware, if any.
func FromContext(ctx context.Context) (*Result, bool) {
	if ctx == nil {
		return nil, false
	}
	res, ok := ctx.Value(contextKey{}).(*Result)
	return res, ok && res != nil
}

// ParseRequest classifies the request's User-Agent header.
func (p *Parser) ParseRequest(r *http.Request) *Result {
	return p.Parse(r.UserAgent())
}

// Middleware classifies every request's User-Agent header and stores the
// Result in the request context.
func Middleware(p *Parser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), p.ParseRequest(r))))
		})
	}
}
