// Package di provides dependency wiring for the week cache components.
package di

import (
	"github.com/helioforecast/go-spaceweather-cache/weekcache"
)

// Container manages the singleton coordinator instance and its
// configuration. It exists so application code has one place to construct
// and tear down the cache layer.
type Container struct {
	coordinator *weekcache.Coordinator
	config      weekcache.Config
}

// NewContainer creates a DI container with the provided configuration. The
// coordinator starts its lazy database open immediately; construction does
// not wait for it.
func NewContainer(config weekcache.Config) (*Container, error) {
	coordinator, err := weekcache.New(config)
	if err != nil {
		return nil, err
	}

	return &Container{
		coordinator: coordinator,
		config:      config,
	}, nil
}

// NewContainerFromEnv creates a container whose configuration is read from
// environment variables on top of the defaults.
func NewContainerFromEnv() (*Container, error) {
	cfg, err := weekcache.FromEnv()
	if err != nil {
		return nil, err
	}
	return NewContainer(cfg)
}

// Coordinator returns the singleton cache coordinator.
func (c *Container) Coordinator() *weekcache.Coordinator {
	return c.coordinator
}

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() weekcache.Config {
	return c.config
}

// Close tears down the coordinator: the deletion watcher stops, in-flight
// background writes drain, and the database handle closes.
func (c *Container) Close() error {
	return c.coordinator.Close()
}
