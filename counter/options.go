package counter

import "context"

type Option func(*Options)

type Options struct {
	Location string
	Name     string
	Context  context.Context
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Name:    "memories",
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
