// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Command hybrid renders scenes with a ray-traced or a
// rasterized pipeline and manages scene assets.
package main

import (
	"os"

	"github.com/urfave/cli"

	_ "github.com/gviegas/hybrid/driver/vk"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "hybrid"
	app.Usage = "render scenes using hardware ray tracing or rasterization"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:   "config, c",
			Usage:  "load configuration from `FILE`",
			EnvVar: "HYBRID_CONFIG",
		},
	}
	app.Before = setupLogging
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a scene interactively",
			Description: `
Open a window and render the scene, starting with the pathtracer unless
disabled in the configuration.

Press Space to switch between the pathtracer and the rasterizer, the arrow
keys to orbit the camera and Escape to quit.`,
			ArgsUsage: "scene_file",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Usage: "window width (overrides configuration)",
				},
				cli.IntFlag{
					Name:  "height",
					Usage: "window height (overrides configuration)",
				},
				cli.BoolFlag{
					Name:  "raster",
					Usage: "start with the rasterizer",
				},
				cli.StringFlag{
					Name:  "shaders",
					Usage: "load SPIR-V shaders from `DIR` (overrides configuration)",
				},
				cli.StringFlag{
					Name:  "stats",
					Usage: "stream frame statistics on `ADDR` (overrides configuration)",
				},
			},
			Action: Render,
		},
		{
			Name:  "compile",
			Usage: "compile glTF scenes into the binary scene format",
			Description: `
Import a glTF (.gltf or .glb) scene, flatten its meshes into shared arrays and
write it to a compressed archive which can be supplied to the render command.`,
			ArgsUsage: "in.gltf [out.scene]",
			Action:    CompileScene,
		},
		{
			Name:      "inspect",
			Usage:     "print scene statistics",
			ArgsUsage: "scene_file",
			Action:    InspectScene,
		},
		{
			Name:   "list-devices",
			Usage:  "list available drivers and devices",
			Action: ListDevices,
		},
	}
	return app
}
