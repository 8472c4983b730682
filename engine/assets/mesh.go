package assets

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
)

// MeshVertex matches the first vertex binding of the raster pipelines.
type MeshVertex struct {
	Position math.Vec3
	Texcoord math.Vec2
}

// MeshData accumulates the proxy geometry of one drawable model. Original
// variant models split each shape into several glTF shards; AppendGLTF is
// called once per shard and offsets indices past the vertices already held.
type MeshData struct {
	Vertices []MeshVertex
	Indices  []uint32
}

func (m *MeshData) AppendGLTF(path string) error {
	core.LogInfo("Parsing nerf mesh %s", path)

	doc, err := gltf.Open(path)
	if err != nil {
		err := fmt.Errorf("failed to open mesh %s: %w", path, err)
		core.LogError(err.Error())
		return err
	}

	for _, mesh := range doc.Meshes {
		for _, prim := range mesh.Primitives {
			if err := m.appendPrimitive(doc, prim, path); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *MeshData) appendPrimitive(doc *gltf.Document, prim *gltf.Primitive, path string) error {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return fmt.Errorf("mesh %s has a primitive without positions", path)
	}
	uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]
	if !ok {
		return fmt.Errorf("mesh %s has a primitive without texture coordinates", path)
	}

	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return fmt.Errorf("mesh %s: reading positions: %w", path, err)
	}
	texcoords, err := modeler.ReadTextureCoord(doc, doc.Accessors[uvIdx], nil)
	if err != nil {
		return fmt.Errorf("mesh %s: reading texture coordinates: %w", path, err)
	}
	if len(positions) != len(texcoords) {
		return fmt.Errorf("mesh %s: %d positions vs %d texture coordinates", path, len(positions), len(texcoords))
	}

	if prim.Indices == nil {
		return fmt.Errorf("mesh %s has a non-indexed primitive", path)
	}
	indexAccessor := doc.Accessors[*prim.Indices]
	if indexAccessor.ComponentType != gltf.ComponentUint {
		return fmt.Errorf("mesh %s must use 32-bit indices", path)
	}
	indices, err := modeler.ReadIndices(doc, indexAccessor, nil)
	if err != nil {
		return fmt.Errorf("mesh %s: reading indices: %w", path, err)
	}

	base := uint32(len(m.Vertices))
	for i := range positions {
		m.Vertices = append(m.Vertices, MeshVertex{
			Position: math.NewVec3(positions[i][0], positions[i][1], positions[i][2]),
			// Feature textures are baked with a top-left UV origin.
			Texcoord: math.NewVec2(texcoords[i][0], 1.0-texcoords[i][1]),
		})
	}
	for _, idx := range indices {
		m.Indices = append(m.Indices, base+idx)
	}
	return nil
}
