// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

// #include <stdlib.h>
// #include <proc.h>
import "C"

import (
	"errors"
	"unsafe"

	"github.com/gviegas/hybrid/driver"
)

// accelAlign is the required alignment of the offset
// of an acceleration structure within its buffer.
const accelAlign = 256

// accelStruct implements driver.AccelStruct.
type accelStruct struct {
	d    *Driver
	as   C.VkAccelerationStructureKHR
	lvl  driver.AccelLevel
	addr uint64
}

// NewAccelStruct creates a new acceleration structure.
func (d *Driver) NewAccelStruct(lvl driver.AccelLevel, buf driver.Buffer, off, size int64) (driver.AccelStruct, error) {
	switch {
	case off&(accelAlign-1) != 0:
		return nil, errors.New("vk: misaligned acceleration structure offset")
	case size <= 0 || off+size > buf.Cap():
		return nil, errors.New("vk: acceleration structure out of buffer bounds")
	}
	info := C.VkAccelerationStructureCreateInfoKHR{
		sType:  C.VK_STRUCTURE_TYPE_ACCELERATION_STRUCTURE_CREATE_INFO_KHR,
		buffer: buf.(*buffer).buf,
		offset: C.VkDeviceSize(off),
		size:   C.VkDeviceSize(size),
		_type:  convAccelLevel(lvl),
	}
	as := &accelStruct{d: d, lvl: lvl}
	err := checkResult(C.vkCreateAccelerationStructureKHR(d.dev, &info, nil, &as.as))
	if err != nil {
		return nil, err
	}
	addrInfo := C.VkAccelerationStructureDeviceAddressInfoKHR{
		sType:                 C.VK_STRUCTURE_TYPE_ACCELERATION_STRUCTURE_DEVICE_ADDRESS_INFO_KHR,
		accelerationStructure: as.as,
	}
	as.addr = uint64(C.vkGetAccelerationStructureDeviceAddressKHR(d.dev, &addrInfo))
	return as, nil
}

// Level returns the level of the structure.
func (as *accelStruct) Level() driver.AccelLevel { return as.lvl }

// Addr returns the device address of the structure.
func (as *accelStruct) Addr() uint64 { return as.addr }

// Destroy destroys the acceleration structure.
// It does not destroy the buffer that backs it.
func (as *accelStruct) Destroy() {
	if as == nil {
		return
	}
	if as.d != nil {
		C.vkDestroyAccelerationStructureKHR(as.d.dev, as.as, nil)
	}
	*as = accelStruct{}
}

// AccelSizes computes the memory requirements of a build.
func (d *Driver) AccelSizes(b *driver.AccelBuild) (driver.AccelSizes, error) {
	if len(b.Geometry) == 0 {
		return driver.AccelSizes{}, errors.New("vk: acceleration structure build with no geometry")
	}
	if b.Level == driver.ATop && len(b.Geometry) != 1 {
		return driver.AccelSizes{}, errors.New("vk: top-level build must have exactly one geometry")
	}
	bi, free := newBuildInfo(b)
	defer free()
	cnt := make([]C.uint32_t, len(b.Geometry))
	for i := range b.Geometry {
		cnt[i] = C.uint32_t(b.Geometry[i].Range.PrimitiveCount)
	}
	sizes := C.VkAccelerationStructureBuildSizesInfoKHR{
		sType: C.VK_STRUCTURE_TYPE_ACCELERATION_STRUCTURE_BUILD_SIZES_INFO_KHR,
	}
	typ := C.VkAccelerationStructureBuildTypeKHR(C.VK_ACCELERATION_STRUCTURE_BUILD_TYPE_DEVICE_KHR)
	C.vkGetAccelerationStructureBuildSizesKHR(d.dev, typ, bi.info, &cnt[0], &sizes)
	return driver.AccelSizes{
		Size:        int64(sizes.accelerationStructureSize),
		ScratchSize: int64(sizes.buildScratchSize),
	}, nil
}

// buildInfo is the C representation of a
// driver.AccelBuild.
type buildInfo struct {
	info   *C.VkAccelerationStructureBuildGeometryInfoKHR
	geom   *C.VkAccelerationStructureGeometryKHR
	ranges *C.VkAccelerationStructureBuildRangeInfoKHR
}

// newBuildInfo converts b into a buildInfo whose memory is
// allocated by C. It does not set the destination and
// scratch fields. Calling free releases the memory.
func newBuildInfo(b *driver.AccelBuild) (bi buildInfo, free func()) {
	n := len(b.Geometry)
	bi.info = (*C.VkAccelerationStructureBuildGeometryInfoKHR)(C.calloc(1, C.sizeof_VkAccelerationStructureBuildGeometryInfoKHR))
	bi.geom = (*C.VkAccelerationStructureGeometryKHR)(C.calloc(C.size_t(max(n, 1)), C.sizeof_VkAccelerationStructureGeometryKHR))
	bi.ranges = (*C.VkAccelerationStructureBuildRangeInfoKHR)(C.calloc(C.size_t(max(n, 1)), C.sizeof_VkAccelerationStructureBuildRangeInfoKHR))
	free = func() {
		C.free(unsafe.Pointer(bi.ranges))
		C.free(unsafe.Pointer(bi.geom))
		C.free(unsafe.Pointer(bi.info))
	}

	*bi.info = C.VkAccelerationStructureBuildGeometryInfoKHR{
		sType:         C.VK_STRUCTURE_TYPE_ACCELERATION_STRUCTURE_BUILD_GEOMETRY_INFO_KHR,
		_type:         convAccelLevel(b.Level),
		flags:         convAccelFlags(b.Flags),
		mode:          C.VK_BUILD_ACCELERATION_STRUCTURE_MODE_BUILD_KHR,
		geometryCount: C.uint32_t(n),
		pGeometries:   bi.geom,
	}
	geom := unsafe.Slice(bi.geom, max(n, 1))
	ranges := unsafe.Slice(bi.ranges, max(n, 1))
	for i := range b.Geometry {
		g := &b.Geometry[i]
		geom[i].sType = C.VK_STRUCTURE_TYPE_ACCELERATION_STRUCTURE_GEOMETRY_KHR
		switch {
		case g.Triangles != nil:
			t := g.Triangles
			geom[i].geometryType = C.VK_GEOMETRY_TYPE_TRIANGLES_KHR
			if t.Opaque {
				geom[i].flags = C.VK_GEOMETRY_OPAQUE_BIT_KHR
			}
			tri := (*C.VkAccelerationStructureGeometryTrianglesDataKHR)(unsafe.Pointer(&geom[i].geometry))
			*tri = C.VkAccelerationStructureGeometryTrianglesDataKHR{
				sType:        C.VK_STRUCTURE_TYPE_ACCELERATION_STRUCTURE_GEOMETRY_TRIANGLES_DATA_KHR,
				vertexFormat: convVertexFmt(t.VertexFmt),
				vertexData:   constDevAddr(t.VertexAddr),
				vertexStride: C.VkDeviceSize(t.VertexStride),
				maxVertex:    C.uint32_t(t.MaxVertex),
				indexType:    convIndexFmt(t.IndexFmt),
				indexData:    constDevAddr(t.IndexAddr),
			}
		case g.Instances != nil:
			geom[i].geometryType = C.VK_GEOMETRY_TYPE_INSTANCES_KHR
			inst := (*C.VkAccelerationStructureGeometryInstancesDataKHR)(unsafe.Pointer(&geom[i].geometry))
			*inst = C.VkAccelerationStructureGeometryInstancesDataKHR{
				sType:           C.VK_STRUCTURE_TYPE_ACCELERATION_STRUCTURE_GEOMETRY_INSTANCES_DATA_KHR,
				arrayOfPointers: C.VK_FALSE,
				data:            constDevAddr(g.Instances.Addr),
			}
		}
		ranges[i] = C.VkAccelerationStructureBuildRangeInfoKHR{
			primitiveCount:  C.uint32_t(g.Range.PrimitiveCount),
			primitiveOffset: C.uint32_t(g.Range.PrimitiveOffset),
			firstVertex:     C.uint32_t(g.Range.FirstVertex),
		}
	}
	return
}

// devAddr creates a VkDeviceOrHostAddressKHR from a
// device address.
func devAddr(addr uint64) (a C.VkDeviceOrHostAddressKHR) {
	*(*C.VkDeviceAddress)(unsafe.Pointer(&a)) = C.VkDeviceAddress(addr)
	return
}

// constDevAddr creates a VkDeviceOrHostAddressConstKHR
// from a device address.
func constDevAddr(addr uint64) (a C.VkDeviceOrHostAddressConstKHR) {
	*(*C.VkDeviceAddress)(unsafe.Pointer(&a)) = C.VkDeviceAddress(addr)
	return
}

// convAccelLevel converts a driver.AccelLevel to a
// VkAccelerationStructureTypeKHR.
func convAccelLevel(lvl driver.AccelLevel) C.VkAccelerationStructureTypeKHR {
	if lvl == driver.ATop {
		return C.VK_ACCELERATION_STRUCTURE_TYPE_TOP_LEVEL_KHR
	}
	return C.VK_ACCELERATION_STRUCTURE_TYPE_BOTTOM_LEVEL_KHR
}

// convAccelFlags converts a driver.AccelFlags to a
// VkBuildAccelerationStructureFlagsKHR.
func convAccelFlags(f driver.AccelFlags) (flags C.VkBuildAccelerationStructureFlagsKHR) {
	if f&driver.AFastTrace != 0 {
		flags |= C.VK_BUILD_ACCELERATION_STRUCTURE_PREFER_FAST_TRACE_BIT_KHR
	}
	if f&driver.AFastBuild != 0 {
		flags |= C.VK_BUILD_ACCELERATION_STRUCTURE_PREFER_FAST_BUILD_BIT_KHR
	}
	if f&driver.AAllowCompaction != 0 {
		flags |= C.VK_BUILD_ACCELERATION_STRUCTURE_ALLOW_COMPACTION_BIT_KHR
	}
	return
}

// queryPool implements driver.QueryPool.
type queryPool struct {
	d     *Driver
	pool  C.VkQueryPool
	count int
}

// NewQueryPool creates a new query pool.
func (d *Driver) NewQueryPool(typ driver.QueryType, count int) (driver.QueryPool, error) {
	if typ != driver.QCompactedSize {
		return nil, errors.New("vk: unsupported query type")
	}
	if count <= 0 {
		return nil, errors.New("vk: query pool with no queries")
	}
	info := C.VkQueryPoolCreateInfo{
		sType:      C.VK_STRUCTURE_TYPE_QUERY_POOL_CREATE_INFO,
		queryType:  C.VK_QUERY_TYPE_ACCELERATION_STRUCTURE_COMPACTED_SIZE_KHR,
		queryCount: C.uint32_t(count),
	}
	qp := &queryPool{d: d, count: count}
	if err := checkResult(C.vkCreateQueryPool(d.dev, &info, nil, &qp.pool)); err != nil {
		return nil, err
	}
	return qp, nil
}

// Count returns the number of queries in the pool.
func (qp *queryPool) Count() int { return qp.count }

// Results copies query results into dst.
// It waits for the results to become available.
func (qp *queryPool) Results(first, count int, dst []uint64) error {
	switch {
	case first < 0 || count <= 0 || first+count > qp.count:
		return errors.New("vk: query range out of bounds")
	case len(dst) < count:
		return errors.New("vk: query results destination too small")
	}
	flags := C.VkQueryResultFlags(C.VK_QUERY_RESULT_64_BIT | C.VK_QUERY_RESULT_WAIT_BIT)
	size := C.size_t(count * 8)
	return checkResult(C.vkGetQueryPoolResults(qp.d.dev, qp.pool, C.uint32_t(first), C.uint32_t(count), size, unsafe.Pointer(&dst[0]), 8, flags))
}

// Destroy destroys the query pool.
func (qp *queryPool) Destroy() {
	if qp == nil {
		return
	}
	if qp.d != nil {
		C.vkDestroyQueryPool(qp.d.dev, qp.pool, nil)
	}
	*qp = queryPool{}
}
