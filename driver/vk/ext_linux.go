// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build !android

package vk

func platformInstanceExts() extInfo {
	return extInfo{
		optional: []extension{extSurface, extWaylandSurface, extXCBSurface, extXlibSurface},
	}
}
