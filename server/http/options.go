package http

import (
	"context"
	"net/http"
	"time"

	"github.com/w-h-a/recall/server"
)

type middlewareKey struct{}

func WithMiddleware(ms ...func(h http.Handler) http.Handler) server.Option {
	return func(o *server.Options) {
		o.Context = context.WithValue(o.Context, middlewareKey{}, ms)
	}
}

func MiddlewareFrom(ctx context.Context) ([]func(h http.Handler) http.Handler, bool) {
	ms, ok := ctx.Value(middlewareKey{}).([]func(h http.Handler) http.Handler)
	return ms, ok
}

type streamIntervalKey struct{}

func WithStreamInterval(d time.Duration) server.Option {
	return func(o *server.Options) {
		o.Context = context.WithValue(o.Context, streamIntervalKey{}, d)
	}
}

func StreamIntervalFrom(ctx context.Context) (time.Duration, bool) {
	d, ok := ctx.Value(streamIntervalKey{}).(time.Duration)
	return d, ok
}
