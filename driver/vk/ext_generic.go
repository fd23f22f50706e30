// Copyright 2022 Gustavo C. Viegas. All rights reserved.

//go:build !linux && !windows && !android

package vk

func platformInstanceExts() extInfo {
	return extInfo{
		optional: []extension{extSurface, extXCBSurface, extXlibSurface},
	}
}
