// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package ctxt

import (
	"errors"
	"testing"

	"github.com/gviegas/hybrid/driver"
	"github.com/gviegas/hybrid/driver/drivertest"
)

func TestLoad(t *testing.T) {
	drv, gpu, err := Load("DriverTest", &driver.Config{Validation: true})
	if err != nil {
		t.Fatalf("Load: unexpected error\nhave %v\nwant nil", err)
	}
	defer drv.Close()
	if drv.Name() != "drivertest" {
		t.Errorf("Load: Driver.Name\nhave %s\nwant drivertest", drv.Name())
	}
	if gpu == nil || gpu.Driver() != drv {
		t.Error("Load: unexpected GPU value")
	}
	if !gpu.(*drivertest.GPU).Config().Validation {
		t.Error("Load: configuration not forwarded to driver")
	}
}

func TestLoadMissing(t *testing.T) {
	if _, _, err := Load("no such driver", nil); !errors.Is(err, ErrNoDriver) {
		t.Errorf("Load: unexpected error\nhave %v\nwant %v", err, ErrNoDriver)
	}
}
