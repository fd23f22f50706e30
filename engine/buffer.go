// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"github.com/pkg/errors"

	"github.com/gviegas/hybrid/driver"
)

// Location is a memory location hint for buffers.
type Location int

// Memory locations.
const (
	// Fast GPU memory that the CPU cannot access.
	DeviceLocal Location = iota
	// Memory that the CPU can map and write to.
	HostVisible
)

// Buffer is a GPU buffer owned by the engine.
type Buffer struct {
	buf  driver.Buffer
	size int64
}

// NewBuffer creates a new buffer with room for size bytes.
func NewBuffer(ctx *Context, size int64, usage driver.Usage, loc Location) (*Buffer, error) {
	if size <= 0 {
		return nil, errors.Errorf("engine: invalid buffer size %d", size)
	}
	buf, err := ctx.gpu.NewBuffer(size, loc == HostVisible, usage)
	if err != nil {
		return nil, errors.Wrapf(err, "create buffer (%d bytes)", size)
	}
	return &Buffer{buf: buf, size: size}, nil
}

// NewBufferWithData creates a host-visible buffer that
// contains a copy of data.
func NewBufferWithData(ctx *Context, data []byte, usage driver.Usage) (*Buffer, error) {
	b, err := NewBuffer(ctx, int64(len(data)), usage, HostVisible)
	if err != nil {
		return nil, err
	}
	if err := b.Write(0, data); err != nil {
		b.Destroy()
		return nil, err
	}
	return b, nil
}

// NewBufferWithStagedData creates a device-local buffer and
// records a copy of data into it from a staging buffer.
// The staging buffer is added to sc, so the data is only
// in place once sc is flushed or finished.
func NewBufferWithStagedData(ctx *Context, sc Recorder, data []byte, usage driver.Usage) (*Buffer, error) {
	stg, err := NewBufferWithData(ctx, data, driver.UCopySrc)
	if err != nil {
		return nil, errors.Wrap(err, "create staging buffer")
	}
	sc.Add(BufferResource(stg))
	b, err := NewBuffer(ctx, int64(len(data)), usage|driver.UCopyDst, DeviceLocal)
	if err != nil {
		return nil, err
	}
	stg.RecordCopy(sc.CmdBuffer(), b, 0, 0, int64(len(data)))
	return b, nil
}

// Write copies data into the buffer starting at off.
// The buffer must be host visible.
func (b *Buffer) Write(off int64, data []byte) error {
	p := b.buf.Bytes()
	switch {
	case p == nil:
		return errors.New("engine: write to buffer that is not host visible")
	case off < 0 || off+int64(len(data)) > b.size:
		return errors.Errorf("engine: write of %d bytes at %d exceeds buffer size %d", len(data), off, b.size)
	}
	copy(p[off:], data)
	return nil
}

// RecordCopy records a copy of size bytes from b, starting
// at srcOff, to dst, starting at dstOff.
func (b *Buffer) RecordCopy(cb driver.CmdBuffer, dst *Buffer, srcOff, dstOff, size int64) {
	cb.CopyBuffer(&driver.BufferCopy{
		From:    b.buf,
		FromOff: srcOff,
		To:      dst.buf,
		ToOff:   dstOff,
		Size:    size,
	})
}

// Addr returns the device address of the buffer, which is
// zero unless it was created with driver.UDeviceAddr.
func (b *Buffer) Addr() uint64 { return b.buf.Addr() }

// Size returns the size requested at creation.
func (b *Buffer) Size() int64 { return b.size }

// Driver returns the underlying driver.Buffer.
func (b *Buffer) Driver() driver.Buffer { return b.buf }

// Destroy destroys the buffer.
func (b *Buffer) Destroy() {
	if b.buf != nil {
		b.buf.Destroy()
	}
	*b = Buffer{}
}

// newAlignedBuffer creates a buffer with a device address
// and returns the offset from its start at which the
// address is aligned to align. At least size bytes are
// available from that offset.
func newAlignedBuffer(ctx *Context, size, align int64, usage driver.Usage, loc Location) (*Buffer, int64, error) {
	if align < 1 {
		align = 1
	}
	usage |= driver.UDeviceAddr
	b, err := NewBuffer(ctx, size, usage, loc)
	if err != nil {
		return nil, 0, err
	}
	addr := int64(b.Addr())
	if addr%align == 0 {
		return b, 0, nil
	}
	b.Destroy()
	if b, err = NewBuffer(ctx, size+align, usage, loc); err != nil {
		return nil, 0, err
	}
	addr = int64(b.Addr())
	return b, Align(addr, align) - addr, nil
}
