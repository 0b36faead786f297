package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/w-h-a/recall"
	"github.com/w-h-a/recall/server"
)

const defaultStreamInterval = 100 * time.Millisecond

type httpServer struct {
	options        server.Options
	service        *recall.Service
	streamInterval time.Duration
	handler        http.Handler
	server         *http.Server
}

func (s *httpServer) Run() error {
	s.server = &http.Server{
		Addr:              s.options.Address,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s.server.ListenAndServe()
}

func (s *httpServer) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	return s.server.Shutdown(ctx)
}

func (s *httpServer) Handler() http.Handler {
	return s.handler
}

func NewServer(service *recall.Service, opts ...server.Option) server.Server {
	options := server.NewOptions(opts...)

	if service == nil {
		panic("service is required")
	}

	s := &httpServer{
		options:        options,
		service:        service,
		streamInterval: defaultStreamInterval,
	}

	if d, ok := StreamIntervalFrom(options.Context); ok {
		s.streamInterval = d
	}

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(handleNotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(handleNotFound)

	router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	router.HandleFunc("/api/chat", s.handleChat).Methods(http.MethodPost)
	router.HandleFunc("/api/memory", s.handleListMemories).Methods(http.MethodGet)
	router.HandleFunc("/api/memory", s.handleMemorize).Methods(http.MethodPost)
	router.HandleFunc("/api/memory", s.handleForget).Methods(http.MethodDelete)

	var handler http.Handler = router

	if ms, ok := MiddlewareFrom(options.Context); ok {
		for i := len(ms) - 1; i >= 0; i-- {
			handler = ms[i](handler)
		}
	}

	s.handler = handler

	return s
}
