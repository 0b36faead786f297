package server

import (
	"context"
	"net/http"
)

type Server interface {
	Run() error
	Stop(ctx context.Context) error
	Handler() http.Handler
}
