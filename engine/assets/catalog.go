package assets

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
)

// FeatureFormat names the numeric precision of the baked feature textures.
type FeatureFormat int

const (
	FeatureFormatR8Unorm FeatureFormat = iota
	FeatureFormatR16Float
	FeatureFormatR32Float
)

func (f FeatureFormat) String() string {
	switch f {
	case FeatureFormatR8Unorm:
		return "R8G8B8A8_UNORM"
	case FeatureFormatR16Float:
		return "R16G16B16A16_SFLOAT"
	case FeatureFormatR32Float:
		return "R32G32B32A32_SFLOAT"
	}
	return "unknown"
}

// ModelVariant selects the shader/sampler family a model was baked for.
// Original models use nearest feature sampling and have eight mesh shards per
// shape; converted ones use linear sampling and a single shard.
type ModelVariant int

const (
	VariantConverted ModelVariant = iota
	VariantOriginal
)

type ModelRef struct {
	Path    string
	Variant ModelVariant
}

type InstancingInfo struct {
	Dim      [3]int32
	Interval [3]float32
}

// SceneAssets is the resolved description of the scene to render. Immutable
// after Resolve.
type SceneAssets struct {
	Name           string
	Models         []ModelRef
	Combo          bool
	CameraPosition math.Vec3
	Instancing     InstancingInfo
	FeatureFormat  FeatureFormat
	Deferred       bool
	Rotation       bool
	// Viewport override; zero means use the native window size.
	ViewportWidth  uint32
	ViewportHeight uint32
}

type catalogDocument struct {
	Width       int                       `toml:"width"`
	Height      int                       `toml:"height"`
	TextureType string                    `toml:"texture_type"`
	TargetScene string                    `toml:"target_scene"`
	Deferred    bool                      `toml:"deferred"`
	Rotation    bool                      `toml:"rotation"`
	Scenes      map[string]map[string]any `toml:"scenes"`
}

// Catalog is the parsed scene configuration document. Scene tables stay
// dynamic until Resolve because the "original" key is a single flag for plain
// scenes and a list for combo scenes.
type Catalog struct {
	doc catalogDocument
}

func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		err := fmt.Errorf("failed to open scene catalog %s: %w", path, err)
		core.LogError(err.Error())
		return nil, err
	}
	return ParseCatalog(raw)
}

func ParseCatalog(raw []byte) (*Catalog, error) {
	c := &Catalog{}
	if err := toml.Unmarshal(raw, &c.doc); err != nil {
		err := fmt.Errorf("malformed scene catalog: %w", err)
		core.LogError(err.Error())
		return nil, err
	}
	return c, nil
}

// TargetScene returns the scene key the catalog selects by default.
func (c *Catalog) TargetScene() string {
	return c.doc.TargetScene
}

// Resolve turns the named scene entry into a SceneAssets. An empty name
// resolves the catalog's target scene. Every error returned here is an
// unrecoverable configuration problem; callers are expected to treat it as
// fatal before any GPU resource is created.
func (c *Catalog) Resolve(name string) (*SceneAssets, error) {
	if name == "" {
		name = c.doc.TargetScene
	}
	if name == "" {
		return nil, fmt.Errorf("scene catalog has no target_scene and no scene was requested")
	}
	entry, ok := c.doc.Scenes[name]
	if !ok {
		return nil, fmt.Errorf("scene %q not present in catalog", name)
	}

	sa := &SceneAssets{
		Name:           name,
		Deferred:       c.doc.Deferred,
		Rotation:       c.doc.Rotation,
		ViewportWidth:  uint32(max(c.doc.Width, 0)),
		ViewportHeight: uint32(max(c.doc.Height, 0)),
	}

	switch c.doc.TextureType {
	case "8bit":
		core.LogInfo("Using %s for feature texture", FeatureFormatR8Unorm)
		sa.FeatureFormat = FeatureFormatR8Unorm
	case "16bit":
		core.LogInfo("Using %s for feature texture", FeatureFormatR16Float)
		sa.FeatureFormat = FeatureFormatR16Float
	case "32bit":
		core.LogInfo("Using %s for feature texture", FeatureFormatR32Float)
		sa.FeatureFormat = FeatureFormatR32Float
	default:
		core.LogWarn("Unrecognized feature texture type %q, using %s", c.doc.TextureType, FeatureFormatR32Float)
		sa.FeatureFormat = FeatureFormatR32Float
	}

	combo, _ := entry["combo"].(bool)
	sa.Combo = combo

	if combo {
		paths, ok := toStringSlice(entry["models"])
		if !ok || len(paths) == 0 {
			return nil, fmt.Errorf("combo scene %q is missing a models list", name)
		}
		originals, ok := toBoolSlice(entry["original"])
		if !ok || len(originals) != len(paths) {
			return nil, fmt.Errorf("combo scene %q needs one original flag per model", name)
		}
		for i, p := range paths {
			sa.Models = append(sa.Models, ModelRef{Path: p, Variant: variantOf(originals[i])})
			core.LogInfo("Target scene: %s, asset path: %s", name, p)
		}
	} else {
		path, ok := entry["path"].(string)
		if !ok || path == "" {
			return nil, fmt.Errorf("scene %q is missing the model path", name)
		}
		original, ok := entry["original"].(bool)
		if !ok {
			return nil, fmt.Errorf("scene %q is missing the original flag", name)
		}
		sa.Models = []ModelRef{{Path: path, Variant: variantOf(original)}}
		core.LogInfo("Target scene: %s, asset path: %s", name, path)
	}

	if cam, ok := toFloatSlice(entry["camera"]); ok && len(cam) == 3 {
		sa.CameraPosition = math.NewVec3(cam[0], cam[1], cam[2])
	} else {
		core.LogWarn("Failed to read camera position for scene %q, using default", name)
	}

	inst, ok := entry["instancing"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("scene %q is missing the instancing table", name)
	}
	dim, ok := toFloatSlice(inst["dim"])
	if !ok || len(dim) != 3 {
		return nil, fmt.Errorf("scene %q has a malformed instancing dimension", name)
	}
	interval, ok := toFloatSlice(inst["interval"])
	if !ok || len(interval) != 3 {
		return nil, fmt.Errorf("scene %q has a malformed instancing interval", name)
	}
	for i := 0; i < 3; i++ {
		sa.Instancing.Dim[i] = int32(dim[i])
		sa.Instancing.Interval[i] = interval[i]
	}
	if err := sa.Instancing.Validate(); err != nil {
		return nil, fmt.Errorf("scene %q: %w", name, err)
	}

	return sa, nil
}

func variantOf(original bool) ModelVariant {
	if original {
		return VariantOriginal
	}
	return VariantConverted
}

func toStringSlice(v any) ([]string, bool) {
	raw, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		s, ok := e.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func toBoolSlice(v any) ([]bool, bool) {
	raw, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]bool, 0, len(raw))
	for _, e := range raw {
		b, ok := e.(bool)
		if !ok {
			return nil, false
		}
		out = append(out, b)
	}
	return out, true
}

func toFloatSlice(v any) ([]float32, bool) {
	raw, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]float32, 0, len(raw))
	for _, e := range raw {
		switch n := e.(type) {
		case float64:
			out = append(out, float32(n))
		case int64:
			out = append(out, float32(n))
		default:
			return nil, false
		}
	}
	return out, true
}
