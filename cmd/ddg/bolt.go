package main

import (
	"os"
	"path/filepath"

	"github.com/deadsy/sdfx/obj"
	sdfxrender "github.com/deadsy/sdfx/render"
	"github.com/soypat/ddg/mesh"
)

// boltCells is the marching cubes resolution along the bolt's longest side.
const boltCells = 120

// boltMesh tessellates a threaded NPT bolt with sdfx and welds the resulting
// STL into a closed mesh. Threads give a surface with strongly varying
// curvature.
func boltMesh(tol float64) (*mesh.Mesh, error) {
	object, err := obj.Bolt(&obj.BoltParms{
		Thread:      "npt_1/2",
		Style:       "hex",
		Tolerance:   0.1,
		TotalLength: 20,
		ShankLength: 10,
	})
	if err != nil {
		return nil, err
	}
	dir, err := os.MkdirTemp("", "ddg-bolt")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "bolt.stl")

	// sdfx reports progress on stdout.
	stdout := os.Stdout
	os.Stdout, err = os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		os.Stdout = stdout
		return nil, err
	}
	sdfxrender.ToSTL(object, boltCells, path, &sdfxrender.MarchingCubesOctree{})
	os.Stdout.Close()
	os.Stdout = stdout
	return loadMesh(path, tol)
}
