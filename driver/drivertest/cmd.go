// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package drivertest

import (
	"errors"
	"fmt"

	"github.com/gviegas/hybrid/driver"
)

// Command buffer states.
const (
	cbInitial = iota
	cbRecording
	cbEnded
)

// cmdBuffer implements driver.CmdBuffer.
// Commands are recorded as closures and run in order
// by execute.
type cmdBuffer struct {
	g      *GPU
	q      driver.Queue
	state  int
	inPass bool
	cmds   []command
	err    error
}

type command struct {
	name string
	run  func() error
}

// NewCmdBuffer creates a new command buffer.
func (g *GPU) NewCmdBuffer(q driver.Queue) (driver.CmdBuffer, error) {
	if q != driver.QGraphics && q != driver.QCompute {
		return nil, errors.New("drivertest: invalid queue")
	}
	return &cmdBuffer{g: g, q: q}, nil
}

func (cb *cmdBuffer) record(name string, run func() error) {
	switch {
	case cb.state != cbRecording:
		cb.err = fmt.Errorf("drivertest: %s recorded outside Begin/End", name)
	case cb.inPass && name != "Draw" && name != "DrawIndexed" && name != "Set":
		cb.err = fmt.Errorf("drivertest: %s recorded during a render pass", name)
	}
	cb.cmds = append(cb.cmds, command{name, run})
}

// execute runs the recorded commands.
func (cb *cmdBuffer) execute() error {
	for _, c := range cb.cmds {
		if c.name != "Set" {
			cb.g.mu.Lock()
			cb.g.event("exec %s", c.name)
			cb.g.mu.Unlock()
		}
		if c.run == nil {
			continue
		}
		if err := c.run(); err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
	}
	return nil
}

func (cb *cmdBuffer) Begin() error {
	if cb.state == cbRecording {
		return errors.New("drivertest: Begin called twice")
	}
	cb.state = cbRecording
	cb.cmds = cb.cmds[:0]
	cb.err = nil
	return nil
}

func (cb *cmdBuffer) BeginPass(width, height int, color []driver.ColorTarget, ds *driver.DSTarget) {
	cb.record("BeginPass", nil)
	cb.inPass = true
}

func (cb *cmdBuffer) EndPass() {
	cb.inPass = false
	cb.record("EndPass", nil)
}

func (cb *cmdBuffer) SetPipeline(pl driver.Pipeline) { cb.record("Set", nil) }

func (cb *cmdBuffer) SetViewport(vp []driver.Viewport) { cb.record("Set", nil) }

func (cb *cmdBuffer) SetScissor(sciss []driver.Scissor) { cb.record("Set", nil) }

func (cb *cmdBuffer) SetIndexBuf(format driver.IndexFmt, buf driver.Buffer, off int64) {
	cb.record("Set", nil)
}

func (cb *cmdBuffer) SetVertexBuf(start int, buf []driver.Buffer, off []int64) {
	cb.record("Set", nil)
}

func (cb *cmdBuffer) SetDescTableGraph(table driver.DescTable, start int, heapCopy []int) {
	cb.record("Set", nil)
}

func (cb *cmdBuffer) SetDescTableRay(table driver.DescTable, start int, heapCopy []int) {
	cb.record("SetDescTableRay", nil)
}

func (cb *cmdBuffer) Draw(vertCount, instCount, baseVert, baseInst int) {
	if !cb.inPass {
		cb.err = errors.New("drivertest: Draw outside render pass")
	}
	cb.record("Draw", nil)
}

func (cb *cmdBuffer) DrawIndexed(idxCount, instCount, baseIdx, vertOff, baseInst int) {
	if !cb.inPass {
		cb.err = errors.New("drivertest: DrawIndexed outside render pass")
	}
	d := Draw{idxCount, instCount, baseIdx, vertOff, baseInst}
	cb.record("DrawIndexed", func() error {
		cb.g.mu.Lock()
		cb.g.draws = append(cb.g.draws, d)
		cb.g.mu.Unlock()
		return nil
	})
}

func (cb *cmdBuffer) TraceRays(st *driver.ShaderTable, width, height, depth int) {
	t := *st
	cb.record("TraceRays", func() error {
		base := uint64(cb.g.lim.ShaderGroupBaseAlign)
		salign := int64(cb.g.lim.ShaderGroupHandleAlign)
		for _, r := range [...]driver.ShaderRegion{t.RayGen, t.Miss, t.Hit} {
			if r.Addr%base != 0 || r.Stride%salign != 0 {
				return errors.New("drivertest: misaligned shader binding table region")
			}
			if _, err := cb.g.resolve(r.Addr); err != nil {
				return err
			}
		}
		if t.RayGen.Size != t.RayGen.Stride {
			return errors.New("drivertest: ray generation region size must equal its stride")
		}
		cb.g.mu.Lock()
		cb.g.traces++
		cb.g.mu.Unlock()
		return nil
	})
}

func (cb *cmdBuffer) CopyBuffer(param *driver.BufferCopy) {
	p := *param
	cb.record("CopyBuffer", func() error {
		from := p.From.(*buffer)
		to := p.To.(*buffer)
		if from.gone || to.gone {
			return errors.New("drivertest: copy with destroyed buffer")
		}
		if p.FromOff+p.Size > from.Cap() || p.ToOff+p.Size > to.Cap() {
			return errors.New("drivertest: copy out of bounds")
		}
		copy(to.data[p.ToOff:p.ToOff+p.Size], from.data[p.FromOff:p.FromOff+p.Size])
		return nil
	})
}

func (cb *cmdBuffer) CopyBufToImg(param *driver.BufImgCopy) {
	cb.record("CopyBufToImg", nil)
}

func (cb *cmdBuffer) Fill(buf driver.Buffer, off int64, value byte, size int64) {
	cb.record("Fill", func() error {
		b := buf.(*buffer)
		for i := off; i < off+size; i++ {
			b.data[i] = value
		}
		return nil
	})
}

func (cb *cmdBuffer) BuildAccel(b *driver.AccelBuild) {
	bld := *b
	bld.Geometry = append([]driver.AccelGeometry(nil), b.Geometry...)
	cb.record("BuildAccel", func() error { return cb.g.buildAccel(&bld) })
}

func (cb *cmdBuffer) CopyAccel(from, to driver.AccelStruct, compact bool) {
	name := "CopyAccel"
	if compact {
		name = "CompactAccel"
	}
	cb.record(name, func() error { return cb.g.copyAccel(from.(*accel), to.(*accel), compact) })
}

func (cb *cmdBuffer) WriteCompactedSize(as []driver.AccelStruct, qp driver.QueryPool, first int) {
	as = append([]driver.AccelStruct(nil), as...)
	cb.record("WriteCompactedSize", func() error {
		p := qp.(*queryPool)
		for i, x := range as {
			a := x.(*accel)
			if !a.built || !a.compact {
				return errors.New("drivertest: compacted size of structure built without AAllowCompaction")
			}
			if !p.reset[first+i] {
				return errors.New("drivertest: query written before reset")
			}
			p.res[first+i] = uint64(a.compacted)
			p.avail[first+i] = true
			p.reset[first+i] = false
		}
		return nil
	})
}

func (cb *cmdBuffer) ResetQueries(qp driver.QueryPool, first, count int) {
	cb.record("ResetQueries", func() error {
		p := qp.(*queryPool)
		for i := first; i < first+count; i++ {
			p.avail[i] = false
			p.reset[i] = true
		}
		return nil
	})
}

func (cb *cmdBuffer) Barrier(b []driver.Barrier) {
	name := "Barrier"
	for _, x := range b {
		if x.AccessBefore&driver.AAccelWrite != 0 && x.AccessAfter&driver.AAccelRead != 0 {
			name = "Barrier(accel)"
		}
	}
	cb.record(name, nil)
}

func (cb *cmdBuffer) Transition(t []driver.Transition) {
	cb.record("Transition", nil)
}

func (cb *cmdBuffer) End() error {
	if cb.state != cbRecording {
		return errors.New("drivertest: End without Begin")
	}
	if cb.inPass {
		cb.err = errors.New("drivertest: End during render pass")
	}
	if cb.err != nil {
		cb.state = cbInitial
		cb.cmds = cb.cmds[:0]
		return cb.err
	}
	cb.state = cbEnded
	return nil
}

func (cb *cmdBuffer) Reset() error {
	cb.state = cbInitial
	cb.inPass = false
	cb.cmds = cb.cmds[:0]
	cb.err = nil
	return nil
}

func (cb *cmdBuffer) Destroy() {}
