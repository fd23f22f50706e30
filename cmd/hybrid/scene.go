// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/gviegas/hybrid/driver"
	"github.com/gviegas/hybrid/engine"
	"github.com/gviegas/hybrid/scene"
)

// SceneExt is the extension of compiled scenes.
const SceneExt = ".scene"

func isGLTF(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		return true
	}
	return false
}

// loadScene reads a compiled scene or imports a glTF one.
func loadScene(path string) (*scene.Scene, error) {
	if isGLTF(path) {
		return scene.ImportGLTF(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open scene")
	}
	defer f.Close()
	return scene.ReadAsset(f)
}

// CompileScene imports a glTF scene and writes it in the
// binary scene format.
func CompileScene(ctx *cli.Context) error {
	if ctx.NArg() < 1 || ctx.NArg() > 2 {
		return cli.NewExitError("compile: expected input file and optional output file", 2)
	}
	in := ctx.Args().Get(0)
	if !isGLTF(in) {
		return errors.Errorf("compile: unsupported file %s", in)
	}
	out := ctx.Args().Get(1)
	if out == "" {
		out = strings.TrimSuffix(in, filepath.Ext(in)) + SceneExt
	}
	return compileScene(in, out)
}

func compileScene(in, out string) (err error) {
	logger.Infof("importing %s", in)
	sc, err := scene.ImportGLTF(in)
	if err != nil {
		return err
	}
	f, err := os.Create(out)
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	defer func() {
		if e := f.Close(); err == nil && e != nil {
			err = errors.Wrap(e, "close output")
		}
	}()
	if err = scene.WriteAsset(f, sc); err != nil {
		return err
	}
	logger.Noticef("wrote %s (%d primitives, %d instances, %d triangles)", out, len(sc.Primitives), len(sc.Instances), sc.Triangles())
	return nil
}

// InspectScene prints a table of scene statistics.
func InspectScene(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.NewExitError("inspect: expected one scene file", 2)
	}
	sc, err := loadScene(ctx.Args().First())
	if err != nil {
		return err
	}
	fmt.Print(sceneStats(sc))
	return nil
}

// sceneStats builds a tabular representation of sc.
func sceneStats(sc *scene.Scene) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Element", "Count", "Size"})
	table.Append([]string{"Vertices", strconv.Itoa(len(sc.Vertices)), fmtSize(len(sc.Vertices) * engine.VertexSize)})
	table.Append([]string{"Indices", strconv.Itoa(len(sc.Indices)), fmtSize(len(sc.Indices) * 4)})
	table.Append([]string{"Materials", strconv.Itoa(len(sc.Materials)), fmtSize(len(sc.Materials) * engine.MaterialSize)})
	table.Append([]string{"Primitives", strconv.Itoa(len(sc.Primitives)), fmtSize(len(sc.Primitives) * engine.PrimitiveInfoSize)})
	table.Append([]string{"Instances", strconv.Itoa(len(sc.Instances)), fmtSize(len(sc.Instances) * driver.InstanceSize)})
	table.Append([]string{"Triangles", strconv.Itoa(sc.Triangles()), " "})
	cam := "default"
	if sc.Camera != nil {
		cam = fmt.Sprintf("%.2v", sc.Camera.Position)
	}
	table.SetFooter([]string{"Camera", cam, " "})
	table.Render()
	return buf.String()
}

func fmtSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
