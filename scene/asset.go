// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package scene

import (
	"archive/zip"
	"bytes"
	"encoding/gob"
	"io"

	"github.com/pkg/errors"
)

// Name of the archive entry holding the encoded scene.
const assetEntry = "scene.bin"

// assetVersion is stored alongside the scene so that
// incompatible files can be rejected.
const assetVersion = 1

type assetHeader struct {
	Version int
}

// WriteAsset writes sc to w as a compressed asset.
// The asset is a zip archive containing a single gob
// stream.
func WriteAsset(w io.Writer, sc *Scene) error {
	zw := zip.NewWriter(w)
	cw, err := zw.CreateHeader(&zip.FileHeader{Name: assetEntry, Method: zip.Deflate})
	if err != nil {
		return errors.Wrap(err, "scene: create asset entry")
	}
	enc := gob.NewEncoder(cw)
	if err := enc.Encode(assetHeader{assetVersion}); err != nil {
		return errors.Wrap(err, "scene: encode asset header")
	}
	if err := enc.Encode(sc); err != nil {
		return errors.Wrap(err, "scene: encode asset")
	}
	return errors.Wrap(zw.Close(), "scene: close asset")
}

// ReadAsset reads a scene written by WriteAsset and
// validates it.
// The zip reader requires random access, so the whole
// asset is read into memory first.
func ReadAsset(r io.Reader) (*Scene, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "scene: read asset")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(err, "scene: open asset")
	}
	for _, f := range zr.File {
		if f.Name != assetEntry {
			logger.Warningf("unknown entry %s in scene asset; skipping", f.Name)
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "scene: open %s", f.Name)
		}
		defer rc.Close()
		dec := gob.NewDecoder(rc)
		var hdr assetHeader
		if err := dec.Decode(&hdr); err != nil {
			return nil, errors.Wrapf(err, "scene: decode %s header", f.Name)
		}
		if hdr.Version != assetVersion {
			return nil, errors.Errorf("scene: unsupported asset version %d", hdr.Version)
		}
		sc := new(Scene)
		if err := dec.Decode(sc); err != nil {
			return nil, errors.Wrapf(err, "scene: decode %s", f.Name)
		}
		if err := sc.Validate(); err != nil {
			return nil, err
		}
		logger.Infof("loaded scene: %d primitives, %d instances, %d triangles",
			len(sc.Primitives), len(sc.Instances), sc.Triangles())
		return sc, nil
	}
	return nil, errors.Errorf("scene: asset has no %s entry", assetEntry)
}
