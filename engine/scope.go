// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"github.com/pkg/errors"

	"github.com/gviegas/hybrid/driver"
)

// ErrScopeFinished is returned when a scope is used after
// Finish was called.
var ErrScopeFinished = errors.New("engine: scope already finished")

type resourceKind int

const (
	rBuffer resourceKind = iota
	rImage
	rAccel
	rQuery
	rList
)

// Resource is a GPU object whose destruction is deferred
// until a scope's commands complete.
type Resource struct {
	kind  resourceKind
	buf   *Buffer
	img   *Image
	accel *AccelStruct
	query *QueryPool
	list  []Resource
}

// BufferResource wraps a buffer.
func BufferResource(b *Buffer) Resource { return Resource{kind: rBuffer, buf: b} }

// ImageResource wraps an image.
func ImageResource(im *Image) Resource { return Resource{kind: rImage, img: im} }

// AccelResource wraps an acceleration structure.
func AccelResource(as *AccelStruct) Resource { return Resource{kind: rAccel, accel: as} }

// QueryResource wraps a query pool.
func QueryResource(qp *QueryPool) Resource { return Resource{kind: rQuery, query: qp} }

// ListResource wraps a list of resources, which are
// destroyed in order.
func ListResource(r ...Resource) Resource { return Resource{kind: rList, list: r} }

// Destroy destroys the resource.
func (r Resource) Destroy() {
	switch r.kind {
	case rBuffer:
		r.buf.Destroy()
	case rImage:
		r.img.Destroy()
	case rAccel:
		r.accel.Destroy()
	case rQuery:
		r.query.Destroy()
	case rList:
		for _, x := range r.list {
			x.Destroy()
		}
	}
}

// Recorder is the interface of the scope types.
// It gives access to the command buffer being recorded and
// accepts resources that must outlive its commands.
type Recorder interface {
	CmdBuffer() driver.CmdBuffer
	Add(r Resource)
}

// Scope records commands into a command buffer and owns the
// resources those commands use.
//
// Finish submits the commands, waits for them to complete
// and then destroys every resource in the order they were
// added. It must be called exactly once.
type Scope struct {
	ctx   *Context
	cb    driver.CmdBuffer
	fence driver.Fence
	res   []Resource
	own   bool
	done  bool
	err   error
}

// NewScope begins recording into cb.
// The scope does not take ownership of cb.
func NewScope(ctx *Context, cb driver.CmdBuffer) (*Scope, error) {
	s := &Scope{ctx: ctx, cb: cb}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scope) init() error {
	fence, err := s.ctx.gpu.NewFence(false)
	if err != nil {
		return errors.Wrap(err, "create scope fence")
	}
	if err := s.cb.Begin(); err != nil {
		fence.Destroy()
		return errors.Wrap(err, "begin scope")
	}
	s.fence = fence
	return nil
}

// CmdBuffer returns the command buffer being recorded.
func (s *Scope) CmdBuffer() driver.CmdBuffer { return s.cb }

// Add adds a resource to the scope.
// Adding to a finished scope destroys r immediately, since
// no pending command can refer to it.
func (s *Scope) Add(r Resource) {
	if s.done {
		r.Destroy()
		return
	}
	s.res = append(s.res, r)
}

// submit ends recording, submits the commands and waits
// for them to complete.
func (s *Scope) submit() error {
	if err := s.cb.End(); err != nil {
		return errors.Wrap(err, "end scope")
	}
	sub := []driver.Submission{{Cmd: []driver.CmdBuffer{s.cb}}}
	if err := s.ctx.gpu.Submit(driver.QGraphics, sub, s.fence); err != nil {
		return errors.Wrap(err, "submit scope")
	}
	if err := s.fence.Wait(); err != nil {
		return errors.Wrap(err, "wait scope")
	}
	return errors.Wrap(s.fence.Reset(), "reset scope fence")
}

// Finish submits the recorded commands, waits for their
// completion and destroys the scope's resources.
// If submission fails, it waits for the GPU to become idle
// before destroying the resources, and returns the error.
func (s *Scope) Finish() error {
	if s.done {
		return ErrScopeFinished
	}
	s.done = true
	defer s.ctx.span("scope.finish")()
	err := s.err
	if err == nil {
		err = s.submit()
	}
	if err != nil {
		if e := s.ctx.gpu.WaitIdle(); e != nil {
			logger.Errorf("wait idle after scope failure: %v", e)
		}
	}
	for _, r := range s.res {
		r.Destroy()
	}
	s.res = nil
	s.fence.Destroy()
	if s.own {
		s.cb.Destroy()
	}
	return err
}

// OneshotScope is a Scope that owns its command buffer.
type OneshotScope struct {
	Scope
}

func newOwnedScope(ctx *Context) (*Scope, error) {
	cb, err := ctx.gpu.NewCmdBuffer(driver.QGraphics)
	if err != nil {
		return nil, errors.Wrap(err, "create scope command buffer")
	}
	s := &Scope{ctx: ctx, cb: cb, own: true}
	if err := s.init(); err != nil {
		cb.Destroy()
		return nil, err
	}
	return s, nil
}

// NewOneshotScope creates a new command buffer and begins
// recording into it.
// Finish destroys the command buffer after the resources.
func NewOneshotScope(ctx *Context) (*OneshotScope, error) {
	s, err := newOwnedScope(ctx)
	if err != nil {
		return nil, err
	}
	return &OneshotScope{*s}, nil
}

// FlushableScope is a OneshotScope that can be flushed.
type FlushableScope struct {
	Scope
}

// NewFlushableScope creates a new command buffer and
// begins recording into it.
func NewFlushableScope(ctx *Context) (*FlushableScope, error) {
	s, err := newOwnedScope(ctx)
	if err != nil {
		return nil, err
	}
	return &FlushableScope{*s}, nil
}

// Flush submits the commands recorded so far, waits for
// their completion and resumes recording.
// Resources are not destroyed. Once Flush fails, the scope
// can only be finished, which returns the same error.
func (s *FlushableScope) Flush() error {
	switch {
	case s.done:
		return ErrScopeFinished
	case s.err != nil:
		return s.err
	}
	defer s.ctx.span("scope.flush")()
	err := s.submit()
	if err == nil {
		err = errors.Wrap(s.cb.Reset(), "reset scope")
	}
	if err == nil {
		err = errors.Wrap(s.cb.Begin(), "begin scope")
	}
	s.err = err
	return err
}
