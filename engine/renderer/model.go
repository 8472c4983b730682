package renderer

import (
	"encoding/binary"
	"fmt"
	stdmath "math"
	"path/filepath"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/lumen/engine/assets"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/graph"
	"github.com/spaghettifunk/lumen/engine/renderer/vulkan"
)

// Model is one drawable entry of the scene. A top-level catalog model expands
// into obj_num sub-models; each sub-model carries its own geometry and feature
// textures but shares the top-level uniform and weights buffers.
type Model struct {
	ID string

	Variant assets.ModelVariant
	// Index of the top-level catalog model this entry belongs to. Combo
	// translations and shared buffers are keyed by it.
	ModelIndex int

	IndexCount   uint32
	VertexBuffer *vulkan.VulkanBuffer
	IndexBuffer  *vulkan.VulkanBuffer

	Feature0 *vulkan.VulkanImage
	Feature1 *vulkan.VulkanImage
	Sampler  vk.Sampler

	// Shared with the other sub-models of the same top-level model.
	UniformBuffer *vulkan.VulkanBuffer
	WeightsBuffer *vulkan.VulkanBuffer

	Pipeline *vulkan.VulkanPipeline
	// One set for deferred scenes, one per swapchain image for forward.
	DescriptorSets []vk.DescriptorSet
}

func (m *Model) Destroy(context *vulkan.VulkanContext) {
	if m.ID != "" {
		core.LogDebug("Destroying model %s", m.ID)
	}
	if m.Pipeline != nil {
		m.Pipeline.Destroy(context)
		m.Pipeline = nil
	}
	if m.Sampler != vk.NullSampler {
		vk.DestroySampler(context.Device.LogicalDevice, m.Sampler, context.Allocator)
		m.Sampler = vk.NullSampler
	}
	if m.Feature0 != nil {
		m.Feature0.ImageDestroy(context)
		m.Feature0 = nil
	}
	if m.Feature1 != nil {
		m.Feature1.ImageDestroy(context)
		m.Feature1 = nil
	}
	if m.VertexBuffer != nil {
		m.VertexBuffer.Destroy(context)
		m.VertexBuffer = nil
	}
	if m.IndexBuffer != nil {
		m.IndexBuffer.Destroy(context)
		m.IndexBuffer = nil
	}
}

// shardCount is how many glTF files one sub-model shape splits into. Original
// variant bakes produce eight shards per shape, converted ones a single file.
func shardCount(variant assets.ModelVariant) int {
	if variant == assets.VariantOriginal {
		return 8
	}
	return 1
}

// featureFilter picks the sampler filter the shaders were trained against.
func featureFilter(variant assets.ModelVariant) vk.Filter {
	if variant == assets.VariantOriginal {
		return vk.FilterNearest
	}
	return vk.FilterLinear
}

// loadModels expands the catalog scene into one Model per sub-model and
// uploads geometry, feature textures, MLP weights and uniform buffers. The
// returned slices of uniform and weights buffers are indexed by top-level
// model; they stay host-visible so the compositor can rewrite them per frame.
func loadModels(context *vulkan.VulkanContext, scene *assets.SceneAssets, assetDir string) ([]*Model, []*vulkan.VulkanBuffer, []*vulkan.VulkanBuffer, error) {
	var (
		models         []*Model
		uniformBuffers []*vulkan.VulkanBuffer
		weightsBuffers []*vulkan.VulkanBuffer
	)

	pool := context.Device.GraphicsCommandPool
	queue := context.Device.GraphicsQueue

	for modelIndex, ref := range scene.Models {
		base := filepath.Join(assetDir, ref.Path)

		weights, objNum, err := assets.LoadMLP(filepath.Join(base, "mlp.json"))
		if err != nil {
			return nil, nil, nil, err
		}

		core.LogInfo("Creating scene uniform buffer for model %d", modelIndex)
		uniformBuffer, err := vulkan.BufferCreate(context,
			vk.DeviceSize(graph.GlobalUniformSize),
			vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
			vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
		if err != nil {
			return nil, nil, nil, err
		}
		uniformBuffers = append(uniformBuffers, uniformBuffer)

		weightsBuffer, err := vulkan.BufferCreate(context,
			vk.DeviceSize(assets.MLPByteSize),
			vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
			vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
		if err != nil {
			return nil, nil, nil, err
		}
		if err := weightsBuffer.LoadData(context, 0, vk.DeviceSize(assets.MLPByteSize), weights.Bytes()); err != nil {
			return nil, nil, nil, err
		}
		weightsBuffers = append(weightsBuffers, weightsBuffer)

		for subModel := 0; subModel < objNum; subModel++ {
			m, err := loadSubModel(context, pool, queue, base, ref.Variant, modelIndex, subModel)
			if err != nil {
				return nil, nil, nil, err
			}
			m.UniformBuffer = uniformBuffer
			m.WeightsBuffer = weightsBuffer
			models = append(models, m)
		}
	}

	return models, uniformBuffers, weightsBuffers, nil
}

func loadSubModel(context *vulkan.VulkanContext, pool vk.CommandPool, queue vk.Queue, base string, variant assets.ModelVariant, modelIndex, subModel int) (*Model, error) {
	mesh := &assets.MeshData{}
	shards := shardCount(variant)
	for shard := 0; shard < shards; shard++ {
		path := filepath.Join(base, fmt.Sprintf("shape%d.gltf", subModel))
		if shards > 1 {
			path = filepath.Join(base, fmt.Sprintf("shape%d_%d.gltf", subModel, shard))
		}
		if err := mesh.AppendGLTF(path); err != nil {
			return nil, err
		}
	}
	if len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
		return nil, fmt.Errorf("model %s shape %d has no geometry", base, subModel)
	}

	m := &Model{
		ID:         core.IdentifierNewUUID(),
		Variant:    variant,
		ModelIndex: modelIndex,
		IndexCount: uint32(len(mesh.Indices)),
	}

	var err error
	m.VertexBuffer, err = uploadDeviceLocal(context, pool, queue, vertexBytes(mesh.Vertices), vk.BufferUsageVertexBufferBit)
	if err != nil {
		return nil, err
	}
	m.IndexBuffer, err = uploadDeviceLocal(context, pool, queue, indexBytes(mesh.Indices), vk.BufferUsageIndexBufferBit)
	if err != nil {
		return nil, err
	}

	core.LogInfo("Creating feature texture 0 for %s shape %d", base, subModel)
	m.Feature0, err = uploadFeatureTexture(context, pool, queue, filepath.Join(base, fmt.Sprintf("shape%d.pngfeat0.png", subModel)))
	if err != nil {
		return nil, err
	}
	core.LogInfo("Creating feature texture 1 for %s shape %d", base, subModel)
	m.Feature1, err = uploadFeatureTexture(context, pool, queue, filepath.Join(base, fmt.Sprintf("shape%d.pngfeat1.png", subModel)))
	if err != nil {
		return nil, err
	}

	m.Sampler, err = vulkan.SamplerCreate(context, featureFilter(variant))
	if err != nil {
		return nil, err
	}

	core.LogInfo("Model %s shape %d loaded as %s (%d indices)", base, subModel, m.ID, m.IndexCount)
	return m, nil
}

func uploadDeviceLocal(context *vulkan.VulkanContext, pool vk.CommandPool, queue vk.Queue, data []byte, usage vk.BufferUsageFlagBits) (*vulkan.VulkanBuffer, error) {
	buffer, err := vulkan.BufferCreate(context,
		vk.DeviceSize(len(data)),
		vk.BufferUsageFlags(usage|vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return nil, err
	}
	if err := vulkan.UploadBufferData(context, pool, queue, buffer, data); err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	return buffer, nil
}

func uploadFeatureTexture(context *vulkan.VulkanContext, pool vk.CommandPool, queue vk.Queue, path string) (*vulkan.VulkanImage, error) {
	img, err := assets.LoadImage(path)
	if err != nil {
		return nil, err
	}
	return vulkan.UploadTexture(context, pool, queue, img.Pixels, img.Width, img.Height, vk.FormatR8g8b8a8Unorm)
}

func vertexBytes(vertices []assets.MeshVertex) []byte {
	out := make([]byte, 0, len(vertices)*20)
	var scratch [4]byte
	put := func(f float32) {
		binary.LittleEndian.PutUint32(scratch[:], stdmath.Float32bits(f))
		out = append(out, scratch[:]...)
	}
	for _, v := range vertices {
		put(v.Position.X)
		put(v.Position.Y)
		put(v.Position.Z)
		put(v.Texcoord.X)
		put(v.Texcoord.Y)
	}
	return out
}

func indexBytes(indices []uint32) []byte {
	out := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(out[i*4:], idx)
	}
	return out
}

func offsetBytes(offsets []math.Vec3) []byte {
	out := make([]byte, 0, len(offsets)*12)
	var scratch [4]byte
	put := func(f float32) {
		binary.LittleEndian.PutUint32(scratch[:], stdmath.Float32bits(f))
		out = append(out, scratch[:]...)
	}
	for _, o := range offsets {
		put(o.X)
		put(o.Y)
		put(o.Z)
	}
	return out
}
