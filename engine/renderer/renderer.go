package renderer

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/lumen/engine/assets"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/platform"
	"github.com/spaghettifunk/lumen/engine/renderer/components"
	"github.com/spaghettifunk/lumen/engine/renderer/vulkan"
)

// RenderGraph ties one resolved scene to the device: the backend, the chosen
// topology, the loaded models, the shared instance lattice buffer and the
// camera. It is created once per run and rebuilt internally on resize.
type RenderGraph struct {
	backend *vulkan.VulkanRenderer

	scene     *assets.SceneAssets
	assetDir  string
	shaderDir string

	Camera   *components.Camera
	topology Topology

	models         []*Model
	uniformBuffers []*vulkan.VulkanBuffer
	weightsBuffers []*vulkan.VulkanBuffer
	instanceBuffer *vulkan.VulkanBuffer
	instanceCount  uint32

	descriptorPool vk.DescriptorPool

	compositor *FrameCompositor
}

// Config carries everything the graph needs that is not in the scene itself.
type Config struct {
	AppName   string
	Width     uint32
	Height    uint32
	AssetDir  string
	ShaderDir string
}

func featureVkFormat(f assets.FeatureFormat) vk.Format {
	switch f {
	case assets.FeatureFormatR8Unorm:
		return vk.FormatR8g8b8a8Unorm
	case assets.FeatureFormatR16Float:
		return vk.FormatR16g16b16a16Sfloat
	default:
		return vk.FormatR32g32b32a32Sfloat
	}
}

// New initializes the Vulkan backend for the window and prepares an empty
// graph for the scene. Build does the heavy lifting.
func New(p *platform.Platform, scene *assets.SceneAssets, cfg Config) (*RenderGraph, error) {
	backend := vulkan.New(p)

	width, height := cfg.Width, cfg.Height
	if scene.ViewportWidth > 0 && scene.ViewportHeight > 0 {
		width, height = scene.ViewportWidth, scene.ViewportHeight
	}

	if err := backend.Initialize(cfg.AppName, width, height); err != nil {
		return nil, err
	}

	rg := &RenderGraph{
		backend:   backend,
		scene:     scene,
		assetDir:  cfg.AssetDir,
		shaderDir: cfg.ShaderDir,
		Camera:    components.NewCamera(scene.CameraPosition),
	}
	backend.OnSwapchainRecreated = rg.onSwapchainRecreated
	return rg, nil
}

// Build loads every model of the scene, uploads the instance lattice and
// realizes the topology the catalog selected.
func (rg *RenderGraph) Build() error {
	ctx := rg.backend.Context()

	models, uniformBuffers, weightsBuffers, err := loadModels(ctx, rg.scene, rg.assetDir)
	if err != nil {
		return err
	}
	if len(models) == 0 {
		return fmt.Errorf("scene %q resolved to no models", rg.scene.Name)
	}
	rg.models = models
	rg.uniformBuffers = uniformBuffers
	rg.weightsBuffers = weightsBuffers

	if err := rg.uploadInstanceLattice(); err != nil {
		return err
	}

	if rg.scene.Deferred {
		core.LogInfo("Scene %q renders with the deferred topology", rg.scene.Name)
		rg.topology = &DeferredTopology{}
	} else {
		core.LogInfo("Scene %q renders with the forward topology", rg.scene.Name)
		rg.topology = &ForwardTopology{}
	}
	if err := rg.topology.Build(rg); err != nil {
		return err
	}

	rg.compositor = NewFrameCompositor(rg)
	return nil
}

func (rg *RenderGraph) uploadInstanceLattice() error {
	ctx := rg.backend.Context()

	offsets := rg.scene.Instancing.Offsets()
	rg.instanceCount = rg.scene.Instancing.Count()
	core.LogInfo("Instancing lattice holds %d instances", rg.instanceCount)

	buffer, err := vulkan.BufferCreate(ctx,
		vk.DeviceSize(len(offsets)*12),
		vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit|vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return err
	}
	if err := vulkan.UploadBufferData(ctx, ctx.Device.GraphicsCommandPool, ctx.Device.GraphicsQueue, buffer, offsetBytes(offsets)); err != nil {
		buffer.Destroy(ctx)
		return err
	}
	rg.instanceBuffer = buffer
	return nil
}

// DrawFrame records and submits one frame. A false return with no error means
// the frame was skipped because the swapchain is being rebuilt.
func (rg *RenderGraph) DrawFrame(deltaTime float64) (bool, error) {
	cb, ok, err := rg.backend.BeginFrame()
	if err != nil || !ok {
		return false, err
	}

	ctx := rg.backend.Context()
	if err := rg.compositor.ComposeFrame(cb, ctx.ImageIndex, deltaTime); err != nil {
		return false, err
	}

	if err := rg.backend.EndFrame(); err != nil {
		return false, err
	}
	return true, nil
}

// ReloadPipelines drops every pipeline and descriptor set owned by the
// topology and rebuilds them from the shader binaries currently on disk.
// Called when the shader watcher reports recompiled modules.
func (rg *RenderGraph) ReloadPipelines() error {
	ctx := rg.backend.Context()
	vk.DeviceWaitIdle(ctx.Device.LogicalDevice)

	rg.topology.Destroy(rg)
	for _, m := range rg.models {
		if m.Pipeline != nil {
			m.Pipeline.Destroy(ctx)
			m.Pipeline = nil
		}
		m.DescriptorSets = nil
	}
	if rg.descriptorPool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(ctx.Device.LogicalDevice, rg.descriptorPool, ctx.Allocator)
		rg.descriptorPool = vk.NullDescriptorPool
	}
	return rg.topology.Build(rg)
}

func (rg *RenderGraph) Resized(width, height uint16) error {
	return rg.backend.Resized(width, height)
}

func (rg *RenderGraph) onSwapchainRecreated() error {
	return rg.topology.OnResize(rg)
}

func (rg *RenderGraph) Shutdown() error {
	ctx := rg.backend.Context()
	vk.DeviceWaitIdle(ctx.Device.LogicalDevice)

	if rg.topology != nil {
		rg.topology.Destroy(rg)
	}
	for _, m := range rg.models {
		m.Destroy(ctx)
	}
	rg.models = nil
	for _, b := range rg.uniformBuffers {
		b.Destroy(ctx)
	}
	rg.uniformBuffers = nil
	for _, b := range rg.weightsBuffers {
		b.Destroy(ctx)
	}
	rg.weightsBuffers = nil
	if rg.instanceBuffer != nil {
		rg.instanceBuffer.Destroy(ctx)
		rg.instanceBuffer = nil
	}
	if rg.descriptorPool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(ctx.Device.LogicalDevice, rg.descriptorPool, ctx.Allocator)
		rg.descriptorPool = vk.NullDescriptorPool
	}

	return rg.backend.Shutdown()
}
