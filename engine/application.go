package engine

import (
	"github.com/spaghettifunk/lumen/engine/core"
)

type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32
	// Window starting position y axis, if applicable.
	StartPosY uint32
	// Window starting width, if applicable.
	StartWidth uint32
	// Window starting height, if applicable.
	StartHeight uint32
	// The application name used in windowing, if applicable.
	Name     string
	LogLevel core.LogLevel

	// Path to the scene catalog document.
	CatalogPath string
	// Scene to load; empty picks the catalog's target scene.
	Scene string
	// Directory holding the baked model assets.
	AssetDir string
	// Directory holding the compiled shader binaries.
	ShaderDir string
}
