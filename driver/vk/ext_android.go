// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

func platformInstanceExts() extInfo {
	return extInfo{
		optional: []extension{extSurface, extAndroidSurface},
	}
}
