// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

// #include <proc.h>
import "C"

import (
	"github.com/gviegas/hybrid/driver"
)

// buffer implements driver.Buffer.
type buffer struct {
	m    *memory
	buf  C.VkBuffer
	addr uint64
}

// convBufferUsage converts a driver.Usage to the usage
// flags of a VkBuffer.
func convBufferUsage(usg driver.Usage) C.VkBufferUsageFlags {
	var u C.VkBufferUsageFlags = C.VK_BUFFER_USAGE_TRANSFER_SRC_BIT | C.VK_BUFFER_USAGE_TRANSFER_DST_BIT
	if usg&(driver.UShaderRead|driver.UShaderWrite) != 0 {
		u |= C.VK_BUFFER_USAGE_STORAGE_BUFFER_BIT
	}
	if usg&driver.UShaderConst != 0 {
		u |= C.VK_BUFFER_USAGE_UNIFORM_BUFFER_BIT
	}
	if usg&driver.UVertexData != 0 {
		u |= C.VK_BUFFER_USAGE_VERTEX_BUFFER_BIT
	}
	if usg&driver.UIndexData != 0 {
		u |= C.VK_BUFFER_USAGE_INDEX_BUFFER_BIT
	}
	if usg&driver.UDeviceAddr != 0 {
		u |= C.VK_BUFFER_USAGE_SHADER_DEVICE_ADDRESS_BIT
	}
	if usg&driver.UAccelInput != 0 {
		u |= C.VK_BUFFER_USAGE_ACCELERATION_STRUCTURE_BUILD_INPUT_READ_ONLY_BIT_KHR
	}
	if usg&driver.UAccelStorage != 0 {
		u |= C.VK_BUFFER_USAGE_ACCELERATION_STRUCTURE_STORAGE_BIT_KHR
	}
	if usg&driver.UShaderTable != 0 {
		u |= C.VK_BUFFER_USAGE_SHADER_BINDING_TABLE_BIT_KHR
	}
	return u
}

// NewBuffer creates a new buffer.
func (d *Driver) NewBuffer(size int64, visible bool, usg driver.Usage) (driver.Buffer, error) {
	// Acceleration structure storage and shader tables are
	// always accessed through device addresses.
	if usg&(driver.UAccelStorage|driver.UShaderTable|driver.UAccelInput) != 0 {
		usg |= driver.UDeviceAddr
	}
	info := C.VkBufferCreateInfo{
		sType:       C.VK_STRUCTURE_TYPE_BUFFER_CREATE_INFO,
		size:        C.VkDeviceSize(size),
		usage:       convBufferUsage(usg),
		sharingMode: C.VK_SHARING_MODE_EXCLUSIVE,
	}
	var buf C.VkBuffer
	err := checkResult(C.vkCreateBuffer(d.dev, &info, nil, &buf))
	if err != nil {
		return nil, err
	}

	var req C.VkMemoryRequirements
	C.vkGetBufferMemoryRequirements(d.dev, buf, &req)
	addr := usg&driver.UDeviceAddr != 0
	m, err := d.newMemory(req, visible, addr)
	if err != nil {
		C.vkDestroyBuffer(d.dev, buf, nil)
		return nil, err
	}
	err = checkResult(C.vkBindBufferMemory(d.dev, buf, m.mem, 0))
	if err != nil {
		m.free()
		C.vkDestroyBuffer(d.dev, buf, nil)
		return nil, err
	}
	m.bound = true
	if visible {
		// Keep the memory mapped for the lifetime of the buffer.
		if err = m.mmap(); err != nil {
			m.free()
			C.vkDestroyBuffer(d.dev, buf, nil)
			return nil, err
		}
	}

	b := &buffer{
		m:   m,
		buf: buf,
	}
	if addr {
		info := C.VkBufferDeviceAddressInfo{
			sType:  C.VK_STRUCTURE_TYPE_BUFFER_DEVICE_ADDRESS_INFO,
			buffer: buf,
		}
		b.addr = uint64(C.vkGetBufferDeviceAddress(d.dev, &info))
	}
	return b, nil
}

// Visible returns whether the buffer is host visible.
func (b *buffer) Visible() bool { return b.m.vis }

// Bytes returns a slice of length b.Cap() referring to the underlying data.
func (b *buffer) Bytes() []byte { return b.m.p }

// Cap returns the capacity of the buffer in bytes.
func (b *buffer) Cap() int64 { return b.m.size }

// Addr returns the device address of the buffer.
func (b *buffer) Addr() uint64 { return b.addr }

// Destroy destroys the buffer.
func (b *buffer) Destroy() {
	if b == nil {
		return
	}
	if b.m != nil {
		C.vkDestroyBuffer(b.m.d.dev, b.buf, nil)
		b.m.free()
	}
	*b = buffer{}
}
