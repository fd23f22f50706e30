// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package main

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/gviegas/hybrid/driver"
)

// ListDevices prints the device selected by every
// registered driver along with its limits.
func ListDevices(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	drivers := driver.Drivers()
	if len(drivers) == 0 {
		fmt.Println("no drivers registered")
		return nil
	}
	for _, drv := range drivers {
		if c, ok := drv.(driver.Configurer); ok {
			c.Configure(cfg.DriverOptions())
		}
		gpu, err := drv.Open()
		if err != nil {
			fmt.Printf("[Driver %s]\n  unavailable: %v\n\n", drv.Name(), err)
			continue
		}
		fmt.Print(deviceInfo(drv, gpu))
		drv.Close()
	}
	return nil
}

// deviceInfo builds a tabular description of gpu.
func deviceInfo(drv driver.Driver, gpu driver.GPU) string {
	var buf bytes.Buffer
	name := "unknown device"
	if d, ok := drv.(interface{ DeviceName() string }); ok {
		name = d.DeviceName()
	}
	_, present := gpu.(driver.Presenter)
	fmt.Fprintf(&buf, "[Driver %s]\n  Device  %s\n  Present %t\n\n", drv.Name(), name, present)

	lim := gpu.Limits()
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Limit", "Value"})
	for _, x := range [...]struct {
		name string
		v    int64
	}{
		{"MaxImage2D", int64(lim.MaxImage2D)},
		{"MaxLayers", int64(lim.MaxLayers)},
		{"MaxDescHeaps", int64(lim.MaxDescHeaps)},
		{"MaxDBuffer", int64(lim.MaxDBuffer)},
		{"MaxDImage", int64(lim.MaxDImage)},
		{"MaxDAccel", int64(lim.MaxDAccel)},
		{"MaxColorTargets", int64(lim.MaxColorTargets)},
		{"MinScratchAlign", lim.MinScratchAlign},
		{"MaxPrimitives", lim.MaxPrimitives},
		{"MaxInstances", lim.MaxInstances},
		{"ShaderGroupHandleSize", int64(lim.ShaderGroupHandleSize)},
		{"ShaderGroupBaseAlign", int64(lim.ShaderGroupBaseAlign)},
		{"MaxRayRecursion", int64(lim.MaxRayRecursion)},
	} {
		table.Append([]string{x.name, strconv.FormatInt(x.v, 10)})
	}
	table.Append([]string{"MaxRenderSize", fmt.Sprintf("%dx%d", lim.MaxRenderSize[0], lim.MaxRenderSize[1])})
	table.Render()
	buf.WriteByte('\n')
	return buf.String()
}
