// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

// #include <stdlib.h>
// #include <proc.h>
import "C"

import (
	"log"
	"unsafe"

	"github.com/gviegas/hybrid/driver"
)

// extension identifies a Vulkan extension.
type extension int

const (
	// Instance extensions.
	extSurface extension = iota
	extAndroidSurface
	extWaylandSurface
	extWin32Surface
	extXCBSurface
	extXlibSurface

	// Device extensions.
	extSwapchain
	extAccelStruct
	extRayTracing
	extDeferredOps

	extN
)

var extNames = [extN]string{
	extSurface:        "VK_KHR_surface",
	extAndroidSurface: "VK_KHR_android_surface",
	extWaylandSurface: "VK_KHR_wayland_surface",
	extWin32Surface:   "VK_KHR_win32_surface",
	extXCBSurface:     "VK_KHR_xcb_surface",
	extXlibSurface:    "VK_KHR_xlib_surface",
	extSwapchain:      "VK_KHR_swapchain",
	extAccelStruct:    "VK_KHR_acceleration_structure",
	extRayTracing:     "VK_KHR_ray_tracing_pipeline",
	extDeferredOps:    "VK_KHR_deferred_host_operations",
}

// name returns the extension name as defined by the API.
func (e extension) name() string { return extNames[e] }

const extSwapchainS = "VK_KHR_swapchain"

// requiredDeviceExts lists the device extensions without
// which the driver cannot be used.
var requiredDeviceExts = []string{
	extAccelStruct.name(),
	extRayTracing.name(),
	extDeferredOps.name(),
}

const validationLayer = "VK_LAYER_KHRONOS_validation"

// extInfo describes the extensions that a platform needs.
// Optional extensions are enabled when advertised.
type extInfo struct {
	required []extension
	optional []extension
}

// instanceExts returns a list containing the names of all instance extensions
// advertised by the Vulkan implementation.
func instanceExts() (exts []string, err error) {
	var n C.uint32_t
	if err = checkResult(C.vkEnumerateInstanceExtensionProperties(nil, &n, nil)); err != nil {
		return
	}
	if n == 0 {
		return
	}
	p := (*C.VkExtensionProperties)(C.malloc(C.sizeof_VkExtensionProperties * C.size_t(n)))
	defer C.free(unsafe.Pointer(p))
	if err = checkResult(C.vkEnumerateInstanceExtensionProperties(nil, &n, p)); err != nil {
		return
	}
	props := unsafe.Slice(p, n)
	exts = make([]string, n)
	for i, prop := range props {
		prop.extensionName[len(prop.extensionName)-1] = 0
		exts[i] = C.GoString(&prop.extensionName[0])
	}
	return
}

// deviceExts returns a list containing the names of all device extensions
// advertised by the Vulkan implementation.
func deviceExts(d C.VkPhysicalDevice) (exts []string, err error) {
	if d == nil {
		panic("vk.deviceExts called with nil physical device")
	}
	var n C.uint32_t
	if err = checkResult(C.vkEnumerateDeviceExtensionProperties(d, nil, &n, nil)); err != nil {
		return
	}
	if n == 0 {
		return
	}
	p := (*C.VkExtensionProperties)(C.malloc(C.sizeof_VkExtensionProperties * C.size_t(n)))
	defer C.free(unsafe.Pointer(p))
	if err = checkResult(C.vkEnumerateDeviceExtensionProperties(d, nil, &n, p)); err != nil {
		return
	}
	props := unsafe.Slice(p, n)
	exts = make([]string, n)
	for i, prop := range props {
		prop.extensionName[len(prop.extensionName)-1] = 0
		exts[i] = C.GoString(&prop.extensionName[0])
	}
	return
}

// hasLayer returns whether the instance layer name is
// advertised by the Vulkan implementation.
func hasLayer(name string) bool {
	var n C.uint32_t
	if checkResult(C.vkEnumerateInstanceLayerProperties(&n, nil)) != nil || n == 0 {
		return false
	}
	p := (*C.VkLayerProperties)(C.malloc(C.sizeof_VkLayerProperties * C.size_t(n)))
	defer C.free(unsafe.Pointer(p))
	if checkResult(C.vkEnumerateInstanceLayerProperties(&n, p)) != nil {
		return false
	}
	for _, prop := range unsafe.Slice(p, n) {
		prop.layerName[len(prop.layerName)-1] = 0
		if C.GoString(&prop.layerName[0]) == name {
			return true
		}
	}
	return false
}

// hasExts returns whether every extension in exts is
// present in from.
func hasExts(from []string, exts []string) bool {
extLoop:
	for _, e := range exts {
		for _, f := range from {
			if e == f {
				continue extLoop
			}
		}
		return false
	}
	return true
}

// cStrings creates a C array of C strings matching the
// contents of s.
// Call the free closure to deallocate the array and
// its strings.
func cStrings(s []string) (names **C.char, free func()) {
	if len(s) == 0 {
		return nil, func() {}
	}
	names = (**C.char)(C.malloc(C.size_t(unsafe.Sizeof(*names)) * C.size_t(len(s))))
	cs := unsafe.Slice(names, len(s))
	for i, e := range s {
		cs[i] = C.CString(e)
	}
	free = func() {
		for _, x := range cs {
			C.free(unsafe.Pointer(x))
		}
		C.free(unsafe.Pointer(names))
	}
	return
}

// selectExts resolves info against the advertised
// extensions in from, marking the chosen ones in d.exts.
// It returns errNoExtension if a required extension is
// not advertised.
func (d *Driver) selectExts(info extInfo, from []string) ([]string, error) {
	var names []string
	for _, e := range info.required {
		if !hasExts(from, []string{e.name()}) {
			return nil, errNoExtension
		}
		d.exts[e] = true
		names = append(names, e.name())
	}
	for _, e := range info.optional {
		if hasExts(from, []string{e.name()}) {
			d.exts[e] = true
			names = append(names, e.name())
		}
	}
	return names, nil
}

// setInstanceExts sets the extensions and layers of the
// instance to be created.
// Presentation is only possible if extSurface and at
// least one platform surface extension are enabled.
func (d *Driver) setInstanceExts(info *C.VkInstanceCreateInfo) (free func(), err error) {
	from, err := instanceExts()
	if err != nil {
		return func() {}, err
	}
	exts, err := d.selectExts(platformInstanceExts(), from)
	if err != nil {
		return func() {}, err
	}
	names, freeExts := cStrings(exts)
	info.enabledExtensionCount = C.uint32_t(len(exts))
	info.ppEnabledExtensionNames = names

	var layers []string
	if d.cfg.Validation {
		if hasLayer(validationLayer) {
			layers = []string{validationLayer}
		} else {
			log.Printf("[!] vk: %s not present, validation disabled", validationLayer)
		}
	}
	lnames, freeLayers := cStrings(layers)
	info.enabledLayerCount = C.uint32_t(len(layers))
	info.ppEnabledLayerNames = lnames
	return func() {
		freeExts()
		freeLayers()
	}, nil
}

// canPresent returns whether the instance was created with
// a surface extension.
func (d *Driver) canPresent() bool {
	if !d.exts[extSurface] {
		return false
	}
	for _, e := range [...]extension{extAndroidSurface, extWaylandSurface, extWin32Surface, extXCBSurface, extXlibSurface} {
		if d.exts[e] {
			return true
		}
	}
	return false
}

// setDeviceExts sets the extensions of the device to be
// created.
// The ray tracing extensions are always required.
func (d *Driver) setDeviceExts(info *C.VkDeviceCreateInfo) (free func(), err error) {
	from, err := deviceExts(d.pdev)
	if err != nil {
		return func() {}, err
	}
	ei := extInfo{required: []extension{extAccelStruct, extRayTracing, extDeferredOps}}
	if d.canPresent() {
		ei.optional = []extension{extSwapchain}
	}
	exts, err := d.selectExts(ei, from)
	if err != nil {
		if err == errNoExtension {
			err = driver.ErrNoRayTracing
		}
		return func() {}, err
	}
	names, free := cStrings(exts)
	info.enabledExtensionCount = C.uint32_t(len(exts))
	info.ppEnabledExtensionNames = names
	return free, nil
}
