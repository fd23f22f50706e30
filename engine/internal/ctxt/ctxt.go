// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package ctxt selects and opens the GPU driver used in
// the engine.
package ctxt

import (
	"errors"
	"strings"

	"github.com/gviegas/hybrid/driver"
)

// ErrNoDriver means that no registered driver matched
// the requested name.
var ErrNoDriver = errors.New("ctxt: driver not found")

// Load attempts to open any driver whose name contains
// the name string. It is case insensitive.
// If name is the empty string, then all registered
// drivers are considered, in registration order.
// Drivers implementing driver.Configurer receive cfg
// before being opened. The error of the last driver
// that failed to open is returned if none succeeds.
func Load(name string, cfg *driver.Config) (driver.Driver, driver.GPU, error) {
	drivers := driver.Drivers()
	err := ErrNoDriver
	name = strings.ToLower(name)
	for i := range drivers {
		if !strings.Contains(strings.ToLower(drivers[i].Name()), name) {
			continue
		}
		if c, ok := drivers[i].(driver.Configurer); ok && cfg != nil {
			c.Configure(cfg)
		}
		var gpu driver.GPU
		if gpu, err = drivers[i].Open(); err != nil {
			continue
		}
		return drivers[i], gpu, nil
	}
	return nil, nil, err
}
