// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"github.com/pkg/errors"

	"github.com/gviegas/hybrid/driver"
)

// frameSlot holds the synchronization objects and command
// buffers of one frame in flight.
// inFlight is signaled once every command buffer of the
// slot has completed, so the slot can be reused.
type frameSlot struct {
	available driver.Semaphore
	ready     driver.Semaphore
	inFlight  driver.Fence
	render    driver.CmdBuffer
	present   driver.CmdBuffer
}

// frameRing is a ring of FramesInFlight slots.
type frameRing struct {
	slots [FramesInFlight]frameSlot
	cur   int
}

func newFrameRing(ctx *Context) (r *frameRing, err error) {
	r = new(frameRing)
	defer func(x *frameRing) {
		if err != nil {
			x.destroy()
			r = nil
		}
	}(r)
	for i := range r.slots {
		s := &r.slots[i]
		if s.available, err = ctx.gpu.NewSemaphore(); err != nil {
			return nil, errors.Wrap(err, "create frame semaphore")
		}
		if s.ready, err = ctx.gpu.NewSemaphore(); err != nil {
			return nil, errors.Wrap(err, "create frame semaphore")
		}
		// Signaled so the first wait returns immediately.
		if s.inFlight, err = ctx.gpu.NewFence(true); err != nil {
			return nil, errors.Wrap(err, "create frame fence")
		}
		if s.render, err = ctx.gpu.NewCmdBuffer(driver.QGraphics); err != nil {
			return nil, errors.Wrap(err, "create frame command buffer")
		}
		if s.present, err = ctx.gpu.NewCmdBuffer(driver.QGraphics); err != nil {
			return nil, errors.Wrap(err, "create frame command buffer")
		}
	}
	return r, nil
}

// Current returns the index of the current slot.
func (r *frameRing) Current() int { return r.cur }

// slot returns the current slot.
func (r *frameRing) slot() *frameSlot { return &r.slots[r.cur] }

// advance moves to the next slot.
func (r *frameRing) advance() { r.cur = (r.cur + 1) % FramesInFlight }

func (r *frameRing) destroy() {
	for i := range r.slots {
		s := &r.slots[i]
		for _, d := range [...]driver.Destroyer{s.available, s.ready, s.inFlight, s.render, s.present} {
			if d != nil {
				d.Destroy()
			}
		}
		*s = frameSlot{}
	}
}
