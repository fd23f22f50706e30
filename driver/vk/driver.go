// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package vk implements driver interfaces using the Vulkan API.
//
// It requires Vulkan 1.3 and a device that supports hardware
// ray tracing. proc.h and proc.c are generated by procgen.go
// from the Vulkan registry.
package vk

//go:generate go run procgen.go vk.xml

// #cgo CFLAGS: -I${SRCDIR}
// #include <stdlib.h>
// #include <proc.h>
import "C"

import (
	"errors"
	"log"
	"sync"
	"unsafe"

	"github.com/gviegas/hybrid/driver"
)

const driverName = "vulkan"
const requiredAPIVersion = C.VK_API_VERSION_1_3

// Driver implements driver.Driver and driver.GPU.
type Driver struct {
	proc

	cfg   driver.Config
	inst  C.VkInstance
	ivers C.uint32_t
	pdev  C.VkPhysicalDevice
	dname string
	dvers C.uint32_t
	dev   C.VkDevice

	// One queue of every family exposed by the device,
	// indexed by family.
	ques []C.VkQueue

	// Mutexes for ques synchronization.
	// Queue submission requires that the queue handle
	// be externally synchronized, thus this is needed
	// to allow Submit calls to run concurrently.
	qmus []sync.Mutex

	// Queue families used for driver.Queue values.
	// QCompute may refer to the QGraphics family.
	qfam [2]C.uint32_t

	// Enabled extensions, indexed by ext* constants.
	exts [extN]bool

	// Used device memory, indexed by heap indices.
	mused []int64
	mprop C.VkPhysicalDeviceMemoryProperties

	// Limits of pdev.
	lim driver.Limits

	// Whether samplerAnisotropy is enabled.
	aniso bool
}

func init() {
	driver.Register(&Driver{})
}

// Configure sets the options used by the next call to Open.
func (d *Driver) Configure(cfg *driver.Config) {
	if d.dev == nil && cfg != nil {
		d.cfg = *cfg
	}
}

// initInstance initializes the Vulkan instance.
func (d *Driver) initInstance() error {
	C.getGlobalProcs()
	if C.enumerateInstanceVersion == nil || checkResult(C.vkEnumerateInstanceVersion(&d.ivers)) != nil {
		d.ivers = C.VK_API_VERSION_1_0
	}
	if isVariant(d.ivers) || d.ivers < requiredAPIVersion {
		return driver.ErrNoDevice
	}
	appInfo := (*C.VkApplicationInfo)(C.malloc(C.sizeof_VkApplicationInfo))
	defer C.free(unsafe.Pointer(appInfo))
	*appInfo = C.VkApplicationInfo{
		sType:      C.VK_STRUCTURE_TYPE_APPLICATION_INFO,
		apiVersion: requiredAPIVersion,
	}
	info := C.VkInstanceCreateInfo{
		sType:            C.VK_STRUCTURE_TYPE_INSTANCE_CREATE_INFO,
		pApplicationInfo: appInfo,
	}
	free, err := d.setInstanceExts(&info)
	defer free()
	if err != nil {
		return err
	}
	if err := checkResult(C.vkCreateInstance(&info, nil, &d.inst)); err != nil {
		return err
	}
	C.getInstanceProcs(d.inst)
	return nil
}

// candidate is a physical device that passed the
// preliminary checks of initDevice.
type candidate struct {
	dev   C.VkPhysicalDevice
	props C.VkPhysicalDeviceProperties
	gfam  int
	cfam  int
	nfam  int
	wgt   int
}

// initDevice initializes the Vulkan device.
func (d *Driver) initDevice() error {
	var n C.uint32_t
	if err := checkResult(C.vkEnumeratePhysicalDevices(d.inst, &n, nil)); err != nil {
		return err
	}
	if n == 0 {
		return driver.ErrNoDevice
	}
	p := (*C.VkPhysicalDevice)(C.malloc(C.sizeof_VkPhysicalDevice * C.size_t(n)))
	defer C.free(unsafe.Pointer(p))
	if err := checkResult(C.vkEnumeratePhysicalDevices(d.inst, &n, p)); err != nil {
		return err
	}

	// Select a suitable physical device to use. It must
	// support Vulkan 1.3, have a graphics queue and
	// support ray tracing. Hardware-accelerated devices
	// and devices that can present are preferred.
	var best *candidate
	noRT := false
	for _, dev := range unsafe.Slice(p, n) {
		c := candidate{dev: dev, gfam: -1, cfam: -1}
		C.vkGetPhysicalDeviceProperties(dev, &c.props)
		if isVariant(c.props.apiVersion) || c.props.apiVersion < requiredAPIVersion {
			continue
		}
		var nq C.uint32_t
		C.vkGetPhysicalDeviceQueueFamilyProperties(dev, &nq, nil)
		qp := make([]C.VkQueueFamilyProperties, nq)
		C.vkGetPhysicalDeviceQueueFamilyProperties(dev, &nq, unsafe.SliceData(qp))
		c.nfam = int(nq)
		for i := range qp {
			flg := qp[i].queueFlags
			switch {
			case c.gfam == -1 && flg&C.VK_QUEUE_GRAPHICS_BIT != 0:
				c.gfam = i
			case c.cfam == -1 && flg&C.VK_QUEUE_COMPUTE_BIT != 0 && flg&C.VK_QUEUE_GRAPHICS_BIT == 0:
				c.cfam = i
			}
		}
		if c.gfam == -1 {
			continue
		}
		exts, err := deviceExts(dev)
		if err != nil || !hasExts(exts, requiredDeviceExts) || !rayTracingFeatures(dev) {
			noRT = true
			continue
		}
		c.wgt = 1
		if c.props.deviceType == C.VK_PHYSICAL_DEVICE_TYPE_DISCRETE_GPU {
			c.wgt += 2
		} else if c.props.deviceType == C.VK_PHYSICAL_DEVICE_TYPE_INTEGRATED_GPU {
			c.wgt++
		}
		if hasExts(exts, []string{extSwapchainS}) {
			c.wgt += 4
		}
		if best == nil || c.wgt > best.wgt {
			cc := c
			best = &cc
		}
	}
	if best == nil {
		if noRT {
			return driver.ErrNoRayTracing
		}
		return driver.ErrNoDevice
	}
	d.pdev = best.dev
	best.props.deviceName[len(best.props.deviceName)-1] = 0
	d.dname = C.GoString(&best.props.deviceName[0])
	d.dvers = best.props.apiVersion
	d.ques = make([]C.VkQueue, best.nfam)
	d.qfam[driver.QGraphics] = C.uint32_t(best.gfam)
	d.qfam[driver.QCompute] = C.uint32_t(best.gfam)
	switch {
	case !d.cfg.SeparateCompute:
	case best.cfam == -1:
		log.Printf("[!] vk: %s has no dedicated compute queue, QCompute aliases QGraphics", d.dname)
	default:
		d.qfam[driver.QCompute] = C.uint32_t(best.cfam)
	}
	d.setLimits(&best.props.limits)
	C.vkGetPhysicalDeviceMemoryProperties(d.pdev, &d.mprop)
	d.mused = make([]int64, d.mprop.memoryHeapCount)

	// Create one queue of every family exposed by the device.
	// The families in d.qfam are used for commands. The
	// remaining queues only exist to increase the likelihood
	// of finding one that supports presentation.
	quePrio := (*C.float)(C.malloc(C.sizeof_float))
	defer C.free(unsafe.Pointer(quePrio))
	*quePrio = 1.0
	queInfos := (*C.VkDeviceQueueCreateInfo)(C.malloc(C.sizeof_VkDeviceQueueCreateInfo * C.size_t(len(d.ques))))
	defer C.free(unsafe.Pointer(queInfos))
	qis := unsafe.Slice(queInfos, len(d.ques))
	for i := range qis {
		qis[i] = C.VkDeviceQueueCreateInfo{
			sType:            C.VK_STRUCTURE_TYPE_DEVICE_QUEUE_CREATE_INFO,
			queueFamilyIndex: C.uint32_t(i),
			queueCount:       1,
			pQueuePriorities: quePrio,
		}
	}
	info := C.VkDeviceCreateInfo{
		sType:                C.VK_STRUCTURE_TYPE_DEVICE_CREATE_INFO,
		queueCreateInfoCount: C.uint32_t(len(d.ques)),
		pQueueCreateInfos:    queInfos,
	}
	free, err := d.setDeviceExts(&info)
	defer free()
	if err != nil {
		return err
	}
	defer d.setFeatures(&info)()
	if err := checkResult(C.vkCreateDevice(d.pdev, &info, nil, &d.dev)); err != nil {
		return err
	}
	C.getDeviceProcs(d.dev)
	for i := range d.ques {
		C.vkGetDeviceQueue(d.dev, C.uint32_t(i), 0, &d.ques[i])
	}
	return nil
}

// featureChain is a C-allocated chain of the feature
// structures that the driver depends on.
type featureChain struct {
	f2   *C.VkPhysicalDeviceFeatures2
	v12  *C.VkPhysicalDeviceVulkan12Features
	v13  *C.VkPhysicalDeviceVulkan13Features
	accl *C.VkPhysicalDeviceAccelerationStructureFeaturesKHR
	rtpl *C.VkPhysicalDeviceRayTracingPipelineFeaturesKHR
}

func newFeatureChain() *featureChain {
	c := &featureChain{
		f2:   (*C.VkPhysicalDeviceFeatures2)(C.calloc(1, C.sizeof_VkPhysicalDeviceFeatures2)),
		v12:  (*C.VkPhysicalDeviceVulkan12Features)(C.calloc(1, C.sizeof_VkPhysicalDeviceVulkan12Features)),
		v13:  (*C.VkPhysicalDeviceVulkan13Features)(C.calloc(1, C.sizeof_VkPhysicalDeviceVulkan13Features)),
		accl: (*C.VkPhysicalDeviceAccelerationStructureFeaturesKHR)(C.calloc(1, C.sizeof_VkPhysicalDeviceAccelerationStructureFeaturesKHR)),
		rtpl: (*C.VkPhysicalDeviceRayTracingPipelineFeaturesKHR)(C.calloc(1, C.sizeof_VkPhysicalDeviceRayTracingPipelineFeaturesKHR)),
	}
	c.rtpl.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_RAY_TRACING_PIPELINE_FEATURES_KHR
	c.accl.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_ACCELERATION_STRUCTURE_FEATURES_KHR
	c.accl.pNext = unsafe.Pointer(c.rtpl)
	c.v13.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_VULKAN_1_3_FEATURES
	c.v13.pNext = unsafe.Pointer(c.accl)
	c.v12.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_VULKAN_1_2_FEATURES
	c.v12.pNext = unsafe.Pointer(c.v13)
	c.f2.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_FEATURES_2
	c.f2.pNext = unsafe.Pointer(c.v12)
	return c
}

func (c *featureChain) free() {
	C.free(unsafe.Pointer(c.f2))
	C.free(unsafe.Pointer(c.v12))
	C.free(unsafe.Pointer(c.v13))
	C.free(unsafe.Pointer(c.accl))
	C.free(unsafe.Pointer(c.rtpl))
}

// rayTracingFeatures returns whether dev supports every
// feature that setFeatures enables.
func rayTracingFeatures(dev C.VkPhysicalDevice) bool {
	c := newFeatureChain()
	defer c.free()
	C.vkGetPhysicalDeviceFeatures2(dev, c.f2)
	return c.v12.bufferDeviceAddress == C.VK_TRUE &&
		c.v13.dynamicRendering == C.VK_TRUE &&
		c.v13.synchronization2 == C.VK_TRUE &&
		c.accl.accelerationStructure == C.VK_TRUE &&
		c.rtpl.rayTracingPipeline == C.VK_TRUE
}

// setLimits sets d.lim.
// Ray tracing limits are queried from d.pdev, which must
// have been set.
func (d *Driver) setLimits(lim *C.VkPhysicalDeviceLimits) {
	d.lim = driver.Limits{
		MaxImage2D: int(lim.maxImageDimension2D),
		MaxLayers:  int(lim.maxImageArrayLayers),

		MaxDescHeaps:      int(lim.maxBoundDescriptorSets),
		MaxDBuffer:        int(lim.maxPerStageDescriptorStorageBuffers),
		MaxDImage:         int(lim.maxPerStageDescriptorStorageImages),
		MaxDConstant:      int(lim.maxPerStageDescriptorUniformBuffers),
		MaxDTexture:       int(lim.maxPerStageDescriptorSampledImages),
		MaxDBufferRange:   int64(lim.maxStorageBufferRange),
		MaxDConstantRange: int64(lim.maxUniformBufferRange),

		MaxColorTargets: int(lim.maxColorAttachments),
		MaxRenderSize:   [2]int{int(lim.maxFramebufferWidth), int(lim.maxFramebufferHeight)},
		MaxViewports:    int(lim.maxViewports),
		MaxVertexIn:     int(lim.maxVertexInputBindings),
	}

	rt := (*C.VkPhysicalDeviceRayTracingPipelinePropertiesKHR)(C.calloc(1, C.sizeof_VkPhysicalDeviceRayTracingPipelinePropertiesKHR))
	defer C.free(unsafe.Pointer(rt))
	as := (*C.VkPhysicalDeviceAccelerationStructurePropertiesKHR)(C.calloc(1, C.sizeof_VkPhysicalDeviceAccelerationStructurePropertiesKHR))
	defer C.free(unsafe.Pointer(as))
	p2 := (*C.VkPhysicalDeviceProperties2)(C.calloc(1, C.sizeof_VkPhysicalDeviceProperties2))
	defer C.free(unsafe.Pointer(p2))
	rt.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_RAY_TRACING_PIPELINE_PROPERTIES_KHR
	as.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_ACCELERATION_STRUCTURE_PROPERTIES_KHR
	as.pNext = unsafe.Pointer(rt)
	p2.sType = C.VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_PROPERTIES_2
	p2.pNext = unsafe.Pointer(as)
	C.vkGetPhysicalDeviceProperties2(d.pdev, p2)

	d.lim.MaxDAccel = int(as.maxPerStageDescriptorAccelerationStructures)
	d.lim.MinScratchAlign = int64(as.minAccelerationStructureScratchOffsetAlignment)
	d.lim.MaxPrimitives = int64(as.maxPrimitiveCount)
	d.lim.MaxInstances = int64(as.maxInstanceCount)
	d.lim.ShaderGroupHandleSize = int(rt.shaderGroupHandleSize)
	d.lim.ShaderGroupHandleAlign = int(rt.shaderGroupHandleAlignment)
	d.lim.ShaderGroupBaseAlign = int(rt.shaderGroupBaseAlignment)
	d.lim.MaxRayRecursion = int(rt.maxRayRecursionDepth)
}

// setFeatures chooses which features to enable.
// Ray tracing, dynamic rendering, synchronization2 and
// buffer device address are required. Other features
// are enabled when supported.
func (d *Driver) setFeatures(info *C.VkDeviceCreateInfo) (free func()) {
	q := newFeatureChain()
	defer q.free()
	C.vkGetPhysicalDeviceFeatures2(d.pdev, q.f2)
	fq := &q.f2.features

	d.aniso = fq.samplerAnisotropy == C.VK_TRUE
	c := newFeatureChain()
	c.f2.features = C.VkPhysicalDeviceFeatures{
		fullDrawIndexUint32:                     fq.fullDrawIndexUint32,
		imageCubeArray:                          fq.imageCubeArray,
		independentBlend:                        fq.independentBlend,
		fillModeNonSolid:                        fq.fillModeNonSolid,
		multiViewport:                           fq.multiViewport,
		samplerAnisotropy:                       fq.samplerAnisotropy,
		fragmentStoresAndAtomics:                fq.fragmentStoresAndAtomics,
		shaderUniformBufferArrayDynamicIndexing: fq.shaderUniformBufferArrayDynamicIndexing,
		shaderSampledImageArrayDynamicIndexing:  fq.shaderSampledImageArrayDynamicIndexing,
		shaderStorageBufferArrayDynamicIndexing: fq.shaderStorageBufferArrayDynamicIndexing,
		shaderStorageImageArrayDynamicIndexing:  fq.shaderStorageImageArrayDynamicIndexing,
		shaderInt64:                             fq.shaderInt64,
	}
	c.v12.bufferDeviceAddress = C.VK_TRUE
	c.v12.scalarBlockLayout = q.v12.scalarBlockLayout
	c.v12.runtimeDescriptorArray = q.v12.runtimeDescriptorArray
	c.v12.shaderSampledImageArrayNonUniformIndexing = q.v12.shaderSampledImageArrayNonUniformIndexing
	c.v13.dynamicRendering = C.VK_TRUE
	c.v13.synchronization2 = C.VK_TRUE
	c.accl.accelerationStructure = C.VK_TRUE
	c.rtpl.rayTracingPipeline = C.VK_TRUE

	// pEnabledFeatures must be nil when
	// VkPhysicalDeviceFeatures2 is chained.
	info.pEnabledFeatures = nil
	proxy := (*C.VkBaseOutStructure)(unsafe.Pointer(info))
	for proxy.pNext != nil {
		proxy = proxy.pNext
	}
	proxy.pNext = (*C.VkBaseOutStructure)(unsafe.Pointer(c.f2))
	return c.free
}

// Open initializes the driver.
func (d *Driver) Open() (gpu driver.GPU, err error) {
	if d.dev != nil {
		return d, nil
	}
	if err = d.open(); err != nil {
		goto fail
	}
	if err = d.initInstance(); err != nil {
		goto fail
	}
	if err = d.initDevice(); err != nil {
		goto fail
	}
	d.qmus = make([]sync.Mutex, len(d.ques))
	return d, nil
fail:
	d.Close()
	return nil, err
}

// Name returns the driver name.
func (d *Driver) Name() string { return driverName }

// Close deinitializes the driver.
func (d *Driver) Close() {
	if d == nil {
		return
	}
	cfg := d.cfg
	// We check the instance and device handles here
	// because the procs might not have been loaded.
	if d.inst != nil {
		if d.dev != nil {
			C.vkDeviceWaitIdle(d.dev)
			C.vkDestroyDevice(d.dev, nil)
		}
		C.vkDestroyInstance(d.inst, nil)
	}
	C.clearProcs()
	d.close()
	*d = Driver{cfg: cfg}
}

// WaitIdle blocks until the device becomes idle.
func (d *Driver) WaitIdle() error {
	for i := range d.qmus {
		d.qmus[i].Lock()
		defer d.qmus[i].Unlock()
	}
	return checkResult(C.vkDeviceWaitIdle(d.dev))
}

// memory represents a device memory allocation.
type memory struct {
	d     *Driver
	size  int64
	vis   bool
	bound bool
	p     []byte
	mem   C.VkDeviceMemory
	typ   int
	heap  int
}

// selectMemory selects a suitable memory type from the device.
// It returns the index of the selected memory, or -1 if none suffices.
func (d *Driver) selectMemory(typeBits uint, prop C.VkMemoryPropertyFlags) int {
	for i := 0; i < int(d.mprop.memoryTypeCount); i++ {
		if 1<<i&typeBits != 0 {
			flags := d.mprop.memoryTypes[i].propertyFlags
			if flags&prop == prop {
				return i
			}
		}
	}
	return -1
}

// newMemory creates a new memory allocation.
// If addr is set, the allocation can be bound to buffers
// that have a device address.
func (d *Driver) newMemory(req C.VkMemoryRequirements, visible, addr bool) (*memory, error) {
	var prop C.VkMemoryPropertyFlags = C.VK_MEMORY_PROPERTY_DEVICE_LOCAL_BIT
	if visible {
		prop |= C.VK_MEMORY_PROPERTY_HOST_VISIBLE_BIT | C.VK_MEMORY_PROPERTY_HOST_COHERENT_BIT
	}

	typ := d.selectMemory(uint(req.memoryTypeBits), prop)
	if typ == -1 {
		// Device-local memory is desired but not required.
		prop &^= C.VK_MEMORY_PROPERTY_DEVICE_LOCAL_BIT
		typ = d.selectMemory(uint(req.memoryTypeBits), prop)
	}
	if typ == -1 {
		return nil, errors.New("vk: no suitable memory type found")
	}

	info := (*C.VkMemoryAllocateInfo)(C.malloc(C.sizeof_VkMemoryAllocateInfo))
	defer C.free(unsafe.Pointer(info))
	*info = C.VkMemoryAllocateInfo{
		sType:           C.VK_STRUCTURE_TYPE_MEMORY_ALLOCATE_INFO,
		allocationSize:  req.size,
		memoryTypeIndex: C.uint32_t(typ),
	}
	if addr {
		flags := (*C.VkMemoryAllocateFlagsInfo)(C.malloc(C.sizeof_VkMemoryAllocateFlagsInfo))
		defer C.free(unsafe.Pointer(flags))
		*flags = C.VkMemoryAllocateFlagsInfo{
			sType: C.VK_STRUCTURE_TYPE_MEMORY_ALLOCATE_FLAGS_INFO,
			flags: C.VK_MEMORY_ALLOCATE_DEVICE_ADDRESS_BIT,
		}
		info.pNext = unsafe.Pointer(flags)
	}
	var mem C.VkDeviceMemory
	if err := checkResult(C.vkAllocateMemory(d.dev, info, nil, &mem)); err != nil {
		return nil, err
	}
	heap := int(d.mprop.memoryTypes[typ].heapIndex)
	d.mused[heap] += int64(req.size)

	return &memory{
		d:    d,
		size: int64(req.size),
		vis:  visible,
		mem:  mem,
		typ:  typ,
		heap: heap,
	}, nil
}

// mmap maps the memory for host access.
// The memory must be host visible (m.vis) and must have been bound to a
// resource (m.bound).
func (m *memory) mmap() error {
	if !m.vis {
		panic("cannot map memory that is not host visible")
	}
	if !m.bound {
		panic("cannot map memory that is not bound to a resource")
	}
	if len(m.p) == 0 {
		var p unsafe.Pointer
		if err := checkResult(C.vkMapMemory(m.d.dev, m.mem, 0, C.VK_WHOLE_SIZE, 0, &p)); err != nil {
			return err
		}
		m.p = unsafe.Slice((*byte)(p), m.size)
	}
	return nil
}

// unmap unmaps the memory.
func (m *memory) unmap() {
	if len(m.p) != 0 {
		C.vkUnmapMemory(m.d.dev, m.mem)
		m.p = nil
	}
}

// free deallocates and invalidates the memory.
func (m *memory) free() {
	if m == nil {
		return
	}
	if m.d != nil {
		C.vkFreeMemory(m.d.dev, m.mem, nil)
		m.d.mused[m.heap] -= m.size
	}
	*m = memory{}
}

// Driver returns the receiver (for driver.GPU conformance).
func (d *Driver) Driver() driver.Driver { return d }

// Limits returns the implementation limits.
func (d *Driver) Limits() driver.Limits { return d.lim }

// checkResult returns an error derived from a VkResult value.
// If such value does not indicate an error, it returns nil instead.
func checkResult(res C.VkResult) error {
	if res >= 0 {
		// Not an error: VK_ERROR_* values are all negative.
		return nil
	}
	switch res {
	case C.VK_ERROR_OUT_OF_HOST_MEMORY:
		return errNoHostMemory
	case C.VK_ERROR_OUT_OF_DEVICE_MEMORY:
		return errNoDeviceMemory
	case C.VK_ERROR_INITIALIZATION_FAILED:
		return errInitFailed
	case C.VK_ERROR_DEVICE_LOST:
		return errDeviceLost
	case C.VK_ERROR_MEMORY_MAP_FAILED:
		return errMMapFailed
	case C.VK_ERROR_LAYER_NOT_PRESENT:
		return errNoLayer
	case C.VK_ERROR_EXTENSION_NOT_PRESENT:
		return errNoExtension
	case C.VK_ERROR_FEATURE_NOT_PRESENT:
		return errNoFeature
	case C.VK_ERROR_INCOMPATIBLE_DRIVER:
		return errDriverCompat
	case C.VK_ERROR_TOO_MANY_OBJECTS:
		return errTooManyObjects
	case C.VK_ERROR_FORMAT_NOT_SUPPORTED:
		return errUnsupportedFormat
	case C.VK_ERROR_FRAGMENTED_POOL:
		return errFragmentedPool
	case C.VK_ERROR_OUT_OF_POOL_MEMORY:
		return errNoPoolMemory
	case C.VK_ERROR_INVALID_EXTERNAL_HANDLE:
		return errExternalHandle
	case C.VK_ERROR_FRAGMENTATION:
		return errFragmentation
	case C.VK_ERROR_INVALID_OPAQUE_CAPTURE_ADDRESS:
		return errCaptureAddress
	case C.VK_ERROR_SURFACE_LOST_KHR:
		return errSurfaceLost
	case C.VK_ERROR_NATIVE_WINDOW_IN_USE_KHR:
		return errWindowInUse
	case C.VK_ERROR_OUT_OF_DATE_KHR:
		return errOutOfDate
	case C.VK_ERROR_INCOMPATIBLE_DISPLAY_KHR:
		return errDisplayCompat
	}
	return errUnknown
}

// Common Vulkan errors (VK_ERROR_*).
var (
	errNoHostMemory      = driver.ErrNoHostMemory
	errNoDeviceMemory    = driver.ErrNoDeviceMemory
	errInitFailed        = errors.New("vk: initialization failed")
	errDeviceLost        = driver.ErrFatal
	errMMapFailed        = errors.New("vk: memory map failed")
	errNoLayer           = errors.New("vk: layer not present")
	errNoExtension       = errors.New("vk: extension not present")
	errNoFeature         = errors.New("vk: feature not present")
	errDriverCompat      = errors.New("vk: incompatible driver")
	errTooManyObjects    = errors.New("vk: too many objects")
	errUnsupportedFormat = errors.New("vk: format not supported")
	errFragmentedPool    = errors.New("vk: fragmented pool")
	errUnknown           = errors.New("vk: unknown error")
	errNoPoolMemory      = errors.New("vk: out of pool memory")
	errExternalHandle    = errors.New("vk: invalid external handle")
	errFragmentation     = errors.New("vk: fragmentation")
	errCaptureAddress    = errors.New("vk: invalid opaque capture address")
	errSurfaceLost       = driver.ErrWindow
	errWindowInUse       = errors.New("vk: native window in use")
	errOutOfDate         = driver.ErrSwapchain
	errDisplayCompat     = errors.New("vk: incompatible display")
)

// DeviceName returns the name of the VkDevice that the driver
// is using.
func (d *Driver) DeviceName() string { return d.dname }

// InstanceVersion returns the version of the VkInstance that
// the driver is using.
func (d *Driver) InstanceVersion() (major, minor, patch int) {
	major = versionMajor(d.ivers)
	minor = versionMinor(d.ivers)
	patch = versionPatch(d.ivers)
	return
}

// DeviceVersion returns the version of the VkDevice that
// the driver is using.
func (d *Driver) DeviceVersion() (major, minor, patch int) {
	major = versionMajor(d.dvers)
	minor = versionMinor(d.dvers)
	patch = versionPatch(d.dvers)
	return
}

// MemoryUsage returns the amount of device memory allocated
// from each memory heap, in bytes.
func (d *Driver) MemoryUsage() []int64 {
	return append([]int64(nil), d.mused...)
}

// versionMajor extracts the major version number from v.
// v must have been generated by VK_MAKE_API_VERSION.
func versionMajor(v C.uint32_t) int { return int(v >> 22 & 0x7f) }

// versionMinor extracts the minor version number from v.
// v must have been generated by VK_MAKE_API_VERSION.
func versionMinor(v C.uint32_t) int { return int(v >> 12 & 0x3ff) }

// versionPatch extracts the patch version number from v.
// v must have been generated by VK_MAKE_API_VERSION.
func versionPatch(v C.uint32_t) int { return int(v & 0xfff) }

// isVariant returns whether version v identifies a variant
// implementation of the Vulkan API.
// v must have been generated by VK_MAKE_API_VERSION.
func isVariant(v C.uint32_t) bool { return v>>29 != 0 }
