package recall

import (
	"context"
	"log/slog"
	"time"

	"github.com/w-h-a/recall/counter"
	"github.com/w-h-a/recall/embedder"
	"github.com/w-h-a/recall/generator"
	"github.com/w-h-a/recall/storer"
)

type Option func(*Options)

type Options struct {
	Generator    generator.Generator
	Embedder     embedder.Embedder
	Storer       storer.Storer
	Counter      counter.Counter
	TopK         int
	SystemPrompt string
	WriteTimeout time.Duration
	Logger       *slog.Logger
	Context      context.Context
}

func WithGenerator(g generator.Generator) Option {
	return func(o *Options) {
		o.Generator = g
	}
}

func WithEmbedder(e embedder.Embedder) Option {
	return func(o *Options) {
		o.Embedder = e
	}
}

func WithStorer(s storer.Storer) Option {
	return func(o *Options) {
		o.Storer = s
	}
}

func WithCounter(c counter.Counter) Option {
	return func(o *Options) {
		o.Counter = c
	}
}

func WithTopK(k int) Option {
	return func(o *Options) {
		o.TopK = k
	}
}

func WithSystemPrompt(prompt string) Option {
	return func(o *Options) {
		o.SystemPrompt = prompt
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.WriteTimeout = d
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		TopK:         3,
		SystemPrompt: defaultSystemPrompt,
		WriteTimeout: 10 * time.Second,
		Logger:       slog.Default(),
		Context:      context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
