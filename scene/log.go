// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package scene

import (
	"github.com/gviegas/hybrid/log"
)

var logger = log.New("scene")
