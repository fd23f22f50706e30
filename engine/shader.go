// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/gviegas/hybrid/driver"
)

// Shaders holds the SPIR-V binaries used by the renderer.
type Shaders struct {
	RayGen      []byte
	Miss        []byte
	ClosestHit  []byte
	RasterVert  []byte
	RasterFrag  []byte
	TonemapVert []byte
	TonemapFrag []byte
}

// Names of the shader files expected by LoadShaders.
const (
	RayGenFile      = "pathtrace.rgen.spv"
	MissFile        = "pathtrace.rmiss.spv"
	ClosestHitFile  = "pathtrace.rchit.spv"
	RasterVertFile  = "raster.vert.spv"
	RasterFragFile  = "raster.frag.spv"
	TonemapVertFile = "tonemap.vert.spv"
	TonemapFragFile = "tonemap.frag.spv"
)

// Every shader function is named main.
const shaderEntry = "main"

const spirvMagic = 0x07230203

func (s *Shaders) files() []struct {
	name string
	data *[]byte
} {
	return []struct {
		name string
		data *[]byte
	}{
		{RayGenFile, &s.RayGen},
		{MissFile, &s.Miss},
		{ClosestHitFile, &s.ClosestHit},
		{RasterVertFile, &s.RasterVert},
		{RasterFragFile, &s.RasterFrag},
		{TonemapVertFile, &s.TonemapVert},
		{TonemapFragFile, &s.TonemapFrag},
	}
}

// LoadShaders reads every shader binary from dir.
func LoadShaders(dir string) (*Shaders, error) {
	s := new(Shaders)
	for _, f := range s.files() {
		data, err := os.ReadFile(filepath.Join(dir, f.name))
		if err != nil {
			return nil, errors.Wrap(err, "load shaders")
		}
		if err := checkSPIRV(data); err != nil {
			return nil, errors.Wrap(err, f.name)
		}
		*f.data = data
	}
	return s, nil
}

func checkSPIRV(data []byte) error {
	if len(data) < 20 || len(data)%4 != 0 || binary.LittleEndian.Uint32(data) != spirvMagic {
		return errors.New("engine: not a SPIR-V binary")
	}
	return nil
}

// newShaderCodes creates a driver.ShaderCode for each
// binary in data. On failure, the codes already created
// are destroyed.
func newShaderCodes(ctx *Context, data ...[]byte) ([]driver.ShaderCode, error) {
	codes := make([]driver.ShaderCode, 0, len(data))
	for _, d := range data {
		c, err := ctx.gpu.NewShaderCode(d)
		if err != nil {
			for _, c := range codes {
				c.Destroy()
			}
			return nil, errors.Wrap(err, "create shader code")
		}
		codes = append(codes, c)
	}
	return codes, nil
}
