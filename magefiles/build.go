//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

var shaderSources = []string{
	"raster.vert",
	"quad.vert",
	"raster.frag",
	"raster_morpheus.frag",
	"mlp.frag",
	"mlp_morpheus.frag",
	"merged.frag",
	"merged_morpheus.frag",
}

// Compiles every GLSL shader to SPIR-V next to its source.
func (Build) Shaders() error {
	return buildShaders()
}

func buildShaders() error {
	for _, src := range shaderSources {
		in := filepath.Join("assets", "shaders", src)
		out := in + ".spv"
		if _, err := executeCmd("glslc", withArgs("--target-spv=spv1.4", in, "-o", out), withStream()); err != nil {
			return err
		}
	}
	return nil
}

// Compiles the shaders and builds the viewer binary.
func (Build) Viewer() error {
	if err := buildShaders(); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("build", "-o", "lumen", "."), withStream()); err != nil {
		return err
	}
	return nil
}
