// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package drivertest provides an in-memory implementation of
// the driver interfaces for use in tests.
//
// Commands recorded into command buffers are executed on the
// CPU when submitted, so fences are signaled as soon as
// GPU.Submit returns. Buffer memory is backed by Go slices
// regardless of host visibility, and device addresses are
// assigned from a counter. Acceleration structure sizes are
// deterministic functions of the primitive count.
package drivertest

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gviegas/hybrid/driver"
)

const driverName = "drivertest"

// Errors reported by the fake device.
var (
	ErrFenceNeverSubmitted = errors.New("drivertest: wait on fence that was never submitted")
	ErrSemaphoreUnsignaled = errors.New("drivertest: wait on semaphore that is never signaled")
	ErrNotRecorded         = errors.New("drivertest: command buffer not ended")
	ErrBadAddress          = errors.New("drivertest: device address out of range")
	ErrQueryUnavailable    = errors.New("drivertest: query result not available")
)

// Driver implements driver.Driver.
type Driver struct {
	gpu *GPU
	cfg driver.Config
}

func init() {
	driver.Register(&Driver{})
}

// Open returns the driver's GPU, creating it on first use.
func (d *Driver) Open() (driver.GPU, error) {
	if d.gpu == nil {
		d.gpu = New()
		d.gpu.drv = d
		d.gpu.cfg = d.cfg
	}
	return d.gpu, nil
}

// Name returns the driver name.
func (d *Driver) Name() string { return driverName }

// Close discards the GPU.
func (d *Driver) Close() { d.gpu = nil }

// Configure implements driver.Configurer.
func (d *Driver) Configure(cfg *driver.Config) { d.cfg = *cfg }

// Build describes an executed acceleration structure build.
type Build struct {
	Level      driver.AccelLevel
	Flags      driver.AccelFlags
	Primitives []int
	// MaxVertex holds the MaxVertex of each triangle
	// geometry of bottom-level builds.
	MaxVertex []int
	// Instances holds the decoded instance records of
	// top-level builds.
	Instances []driver.AccelInstance
	Dst       uint64
	Scratch   uint64
}

// Compaction describes an executed compacting copy.
type Compaction struct {
	From, To         uint64
	FromSize, ToSize int64
	Compacted        int64
}

// Draw describes an executed indexed draw.
type Draw struct {
	IdxCount, InstCount, BaseIdx, VertOff, BaseInst int
}

// GPU implements driver.GPU and driver.Presenter.
type GPU struct {
	drv driver.Driver
	cfg driver.Config
	lim driver.Limits

	mu       sync.Mutex
	nextAddr uint64
	bufs     []*buffer
	accels   []*accel
	events   []string
	builds   []Build
	compacts []Compaction
	draws    []Draw
	traces   int
	nfence   int
	errs     []error
	live     map[string]int

	submitErr error
}

// New creates a new GPU that is not associated with a
// registered Driver.
func New() *GPU {
	return &GPU{
		drv:      &Driver{},
		nextAddr: 0x10000,
		live:     make(map[string]int),
		lim: driver.Limits{
			MaxImage2D:             16384,
			MaxLayers:              2048,
			MaxDescHeaps:           8,
			MaxDBuffer:             64,
			MaxDImage:              16,
			MaxDConstant:           16,
			MaxDTexture:            64,
			MaxDAccel:              4,
			MaxDBufferRange:        1 << 30,
			MaxDConstantRange:      1 << 16,
			MaxColorTargets:        8,
			MaxRenderSize:          [2]int{16384, 16384},
			MaxViewports:           16,
			MaxVertexIn:            16,
			MinScratchAlign:        128,
			MaxPrimitives:          1 << 29,
			MaxInstances:           1 << 24,
			ShaderGroupHandleSize:  32,
			ShaderGroupHandleAlign: 32,
			ShaderGroupBaseAlign:   64,
			MaxRayRecursion:        31,
		},
	}
}

// Driver returns the Driver that owns the GPU.
func (g *GPU) Driver() driver.Driver { return g.drv }

// Limits returns the fake device limits.
func (g *GPU) Limits() driver.Limits { return g.lim }

// Config returns the configuration the GPU was opened with.
func (g *GPU) Config() driver.Config { return g.cfg }

// FailSubmit causes every subsequent Submit call to fail
// with err. A nil err restores normal operation.
func (g *GPU) FailSubmit(err error) {
	g.mu.Lock()
	g.submitErr = err
	g.mu.Unlock()
}

// Events returns the ordered log of submissions, executed
// commands and destroyed objects.
func (g *GPU) Events() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.events...)
}

// ClearEvents discards the event log.
func (g *GPU) ClearEvents() {
	g.mu.Lock()
	g.events = g.events[:0]
	g.mu.Unlock()
}

// Builds returns every acceleration structure build
// executed so far.
func (g *GPU) Builds() []Build {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Build(nil), g.builds...)
}

// Compactions returns every compacting copy executed
// so far.
func (g *GPU) Compactions() []Compaction {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Compaction(nil), g.compacts...)
}

// Draws returns every indexed draw executed so far.
func (g *GPU) Draws() []Draw {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Draw(nil), g.draws...)
}

// ClearDraws discards the draw log.
func (g *GPU) ClearDraws() {
	g.mu.Lock()
	g.draws = g.draws[:0]
	g.mu.Unlock()
}

// Traces returns the number of TraceRays commands
// executed so far.
func (g *GPU) Traces() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.traces
}

// Errors returns misuse errors detected by the fake
// device, such as destroying an object twice.
func (g *GPU) Errors() []error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]error(nil), g.errs...)
}

// Live returns the number of objects of the given kind
// ("buffer", "image", "accel", "query") that were created
// and not yet destroyed.
func (g *GPU) Live(kind string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.live[kind]
}

func (g *GPU) event(format string, args ...any) {
	g.events = append(g.events, fmt.Sprintf(format, args...))
}

func (g *GPU) misuse(format string, args ...any) {
	g.errs = append(g.errs, fmt.Errorf("drivertest: "+format, args...))
}

func (g *GPU) created(kind string) {
	g.mu.Lock()
	g.live[kind]++
	g.mu.Unlock()
}

// destroyed records the destruction of an object.
// It reports a misuse if the object was destroyed before.
func (g *GPU) destroyed(kind string, done *bool, id uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if *done {
		g.misuse("%s %#x destroyed twice", kind, id)
		return
	}
	*done = true
	g.live[kind]--
	g.event("destroy %s %#x", kind, id)
}

// alloc assigns a device address range of the given size.
func (g *GPU) alloc(size int64) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	addr := g.nextAddr
	g.nextAddr += (uint64(size) + 255) &^ 255
	if size == 0 {
		g.nextAddr += 256
	}
	return addr
}

// resolve finds the live buffer containing addr and returns
// the slice of its memory starting there.
func (g *GPU) resolve(addr uint64) ([]byte, error) {
	i := sort.Search(len(g.bufs), func(i int) bool { return g.bufs[i].addr+uint64(len(g.bufs[i].data)) > addr })
	if i == len(g.bufs) || g.bufs[i].addr > addr || g.bufs[i].gone {
		return nil, fmt.Errorf("%w: %#x", ErrBadAddress, addr)
	}
	return g.bufs[i].data[addr-g.bufs[i].addr:], nil
}

// Submit executes the command buffers of each submission
// in order.
func (g *GPU) Submit(q driver.Queue, sub []driver.Submission, fnc driver.Fence) error {
	g.mu.Lock()
	err := g.submitErr
	g.mu.Unlock()
	if err != nil {
		return err
	}
	for i := range sub {
		for _, s := range sub[i].Wait {
			sem := s.(*semaphore)
			if !sem.signaled {
				return ErrSemaphoreUnsignaled
			}
			sem.signaled = false
		}
		g.mu.Lock()
		g.event("submit %d", len(sub[i].Cmd))
		g.mu.Unlock()
		for _, c := range sub[i].Cmd {
			cb := c.(*cmdBuffer)
			if cb.state != cbEnded {
				return ErrNotRecorded
			}
			if err := cb.execute(); err != nil {
				return err
			}
		}
		for _, s := range sub[i].Signal {
			s.(*semaphore).signaled = true
		}
	}
	if fnc != nil {
		f := fnc.(*fence)
		f.signaled = true
		g.mu.Lock()
		g.event("signal fence %d", f.id)
		g.mu.Unlock()
	}
	return nil
}

// WaitIdle returns immediately since every submission
// completes within Submit.
func (g *GPU) WaitIdle() error {
	g.mu.Lock()
	g.event("wait idle")
	g.mu.Unlock()
	return nil
}

// fence implements driver.Fence.
type fence struct {
	g        *GPU
	id       int
	signaled bool
}

// NewFence creates a new fence.
func (g *GPU) NewFence(signaled bool) (driver.Fence, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nfence++
	return &fence{g: g, id: g.nfence, signaled: signaled}, nil
}

// Wait returns ErrFenceNeverSubmitted if the fence is not
// signaled, since nothing could signal it later.
func (f *fence) Wait() error {
	if !f.signaled {
		return ErrFenceNeverSubmitted
	}
	f.g.mu.Lock()
	f.g.event("wait fence %d", f.id)
	f.g.mu.Unlock()
	return nil
}

// Reset unsignals the fence.
func (f *fence) Reset() error {
	f.signaled = false
	return nil
}

// Destroy is a no-op.
func (f *fence) Destroy() {}

// semaphore implements driver.Semaphore.
type semaphore struct {
	signaled bool
}

// NewSemaphore creates a new semaphore.
func (g *GPU) NewSemaphore() (driver.Semaphore, error) { return &semaphore{}, nil }

// Destroy is a no-op.
func (s *semaphore) Destroy() {}
