// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package engine implements hybrid real-time rendering.
//
// A scene is uploaded once into device-local buffers and
// bottom/top-level acceleration structures are built over
// it. Each frame is then rendered either by a ray-traced
// pathtracer or by a rasterizer into a shared HDR target,
// which is tonemapped into the swapchain.
package engine

import (
	"github.com/pkg/errors"

	"github.com/gviegas/hybrid/log"
)

const (
	// The number of frames in flight.
	FramesInFlight = 2

	dflExposure   = 1
	dflMaxBounces = 4
	dflImageCount = 3
)

var logger = log.New("engine")

// Config is used to configure the renderer.
type Config struct {
	// Start rendering with the pathtracer rather
	// than the rasterizer.
	//
	// Default is true.
	Pathtracer bool

	// Exposure applied by the tonemap pass.
	//
	// Default is 1.
	Exposure float32

	// The maximum number of ray bounces in the
	// pathtracer.
	//
	// Default is 4.
	MaxBounces int

	// The number of swapchain images to request.
	//
	// Default is 3.
	ImageCount int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Pathtracer: true,
		Exposure:   dflExposure,
		MaxBounces: dflMaxBounces,
		ImageCount: dflImageCount,
	}
}

// Validate checks that every field holds a valid value.
func (c *Config) Validate() error {
	switch {
	case c.Exposure <= 0:
		return errors.New("engine: exposure must be positive")
	case c.MaxBounces < 1:
		return errors.New("engine: max bounces must be at least 1")
	case c.ImageCount < 2:
		return errors.New("engine: image count must be at least 2")
	}
	return nil
}
