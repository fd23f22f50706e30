// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"github.com/pkg/errors"

	"github.com/gviegas/hybrid/driver"
	"github.com/gviegas/hybrid/engine/internal/ctxt"
)

// Context holds the GPU used by the engine.
// Every engine object is created from a Context and must
// be destroyed before the Context is closed.
type Context struct {
	drv    driver.Driver
	gpu    driver.GPU
	limits driver.Limits
	tracer Tracer
}

// Open opens the first registered driver whose name
// contains name (case insensitive) and creates a Context
// for its GPU. The empty name matches any driver.
func Open(name string, cfg *driver.Config) (*Context, error) {
	drv, gpu, err := ctxt.Load(name, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "open driver %q", name)
	}
	if _, ok := gpu.(driver.Presenter); !ok {
		logger.Warningf("driver %s cannot present", drv.Name())
	}
	c := NewContext(gpu)
	c.drv = drv
	logger.Infof("using driver %s", drv.Name())
	return c, nil
}

// NewContext creates a Context for an already open GPU.
// Closing the Context does not close the GPU's driver.
func NewContext(gpu driver.GPU) *Context {
	return &Context{
		gpu:    gpu,
		limits: gpu.Limits(),
		tracer: nopTracer{},
	}
}

// GPU returns the driver.GPU.
func (c *Context) GPU() driver.GPU { return c.gpu }

// Limits returns GPU().Limits().
// This value is retrieved only once. It must not be
// changed by the caller.
func (c *Context) Limits() *driver.Limits { return &c.limits }

// SetTracer sets the tracer that receives timing spans.
// A nil t disables tracing.
func (c *Context) SetTracer(t Tracer) {
	if t == nil {
		t = nopTracer{}
	}
	c.tracer = t
}

// span starts a named span in the current tracer.
func (c *Context) span(name string) func() { return c.tracer.Span(name) }

// Close closes the driver if the Context opened it.
func (c *Context) Close() {
	if c.drv != nil {
		c.drv.Close()
	}
	*c = Context{}
}
