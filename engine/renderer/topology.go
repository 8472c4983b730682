package renderer

import (
	"path/filepath"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/lumen/engine/assets"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/graph"
	"github.com/spaghettifunk/lumen/engine/renderer/vulkan"
)

// Topology owns the render pass shape of the scene and everything derived
// from it: pipelines, descriptor sets and framebuffers. Forward scenes fuse
// feature sampling and the MLP into one subpass; deferred scenes write
// feature attachments first and resolve them in a second subpass.
type Topology interface {
	Build(rg *RenderGraph) error
	RecordFrame(rg *RenderGraph, cb *vulkan.VulkanCommandBuffer, imageIndex uint32) error
	// OnResize rebuilds the size-dependent resources after the swapchain has
	// been recreated.
	OnResize(rg *RenderGraph) error
	Destroy(rg *RenderGraph)
}

// firstPassFragment picks the fragment shader of the geometry subpass. The
// morpheus variants expect linearly filtered feature textures.
func firstPassFragment(variant assets.ModelVariant, deferred bool) string {
	switch {
	case deferred && variant == assets.VariantOriginal:
		return "raster.frag.spv"
	case deferred:
		return "raster_morpheus.frag.spv"
	case variant == assets.VariantOriginal:
		return "merged.frag.spv"
	default:
		return "merged_morpheus.frag.spv"
	}
}

func composeFragment(variant assets.ModelVariant) string {
	if variant == assets.VariantOriginal {
		return "mlp.frag.spv"
	}
	return "mlp_morpheus.frag.spv"
}

// buildModelPipelines creates one pipeline per model against the given
// subpass. All models share the vertex shader; the fragment shader follows
// each model's variant.
func buildModelPipelines(rg *RenderGraph, pass *vulkan.VulkanRenderpass, layout vk.DescriptorSetLayout, colorAttachmentCount uint32, deferred bool) error {
	ctx := rg.backend.Context()

	vert, err := vulkan.NewShaderModule(ctx, filepath.Join(rg.shaderDir, "raster.vert.spv"), vk.ShaderStageVertexBit)
	if err != nil {
		return err
	}
	defer vert.Destroy(ctx)

	frags := map[assets.ModelVariant]*vulkan.VulkanShaderStage{}
	defer func() {
		for _, f := range frags {
			f.Destroy(ctx)
		}
	}()

	for _, model := range rg.models {
		frag, ok := frags[model.Variant]
		if !ok {
			frag, err = vulkan.NewShaderModule(ctx, filepath.Join(rg.shaderDir, firstPassFragment(model.Variant, deferred)), vk.ShaderStageFragmentBit)
			if err != nil {
				return err
			}
			frags[model.Variant] = frag
		}

		model.Pipeline, err = vulkan.NewGraphicsPipeline(ctx, &vulkan.VulkanPipelineConfig{
			Renderpass:           pass,
			Subpass:              0,
			Stages:               []vk.PipelineShaderStageCreateInfo{vert.ShaderStageCreateInfo, frag.ShaderStageCreateInfo},
			DescriptorSetLayout:  layout,
			ColorAttachmentCount: colorAttachmentCount,
			DepthTest:            true,
			DepthWrite:           true,
			Instanced:            true,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// writeModelDescriptorSets allocates setsPerModel sets for every model and
// points them at the model's feature textures, uniform buffer and, for
// forward scenes, the MLP weights buffer.
func writeModelDescriptorSets(rg *RenderGraph, layout vk.DescriptorSetLayout, setsPerModel int, includeWeights bool) error {
	ctx := rg.backend.Context()

	for _, model := range rg.models {
		model.DescriptorSets = make([]vk.DescriptorSet, setsPerModel)
		for i := 0; i < setsPerModel; i++ {
			set, err := vulkan.DescriptorSetAllocate(ctx, rg.descriptorPool, layout)
			if err != nil {
				return err
			}
			model.DescriptorSets[i] = set

			writes := []vk.WriteDescriptorSet{
				vulkan.WriteCombinedImageSampler(set, 0, model.Feature0.View, model.Sampler),
				vulkan.WriteCombinedImageSampler(set, 1, model.Feature1.View, model.Sampler),
				vulkan.WriteUniformBuffer(set, 2, model.UniformBuffer),
			}
			if includeWeights {
				writes = append(writes, vulkan.WriteUniformBuffer(set, 3, model.WeightsBuffer))
			}
			vulkan.UpdateDescriptorSets(ctx, writes)
		}
	}
	return nil
}

func recordModelDraws(rg *RenderGraph, cb *vulkan.VulkanCommandBuffer, setIndex int) {
	for _, model := range rg.models {
		model.Pipeline.Bind(cb, vk.PipelineBindPointGraphics)
		vk.CmdBindDescriptorSets(cb.Handle, vk.PipelineBindPointGraphics, model.Pipeline.PipelineLayout,
			0, 1, []vk.DescriptorSet{model.DescriptorSets[setIndex]}, 0, nil)
		vk.CmdBindVertexBuffers(cb.Handle, 0, 1, []vk.Buffer{model.VertexBuffer.Handle}, []vk.DeviceSize{0})
		vk.CmdBindVertexBuffers(cb.Handle, 1, 1, []vk.Buffer{rg.instanceBuffer.Handle}, []vk.DeviceSize{0})
		vk.CmdBindIndexBuffer(cb.Handle, model.IndexBuffer.Handle, 0, vk.IndexTypeUint32)
		vk.CmdDrawIndexed(cb.Handle, model.IndexCount, rg.instanceCount, 0, 0, 0)
	}
}

// ForwardTopology renders straight to the swapchain in a single subpass with
// the fused sampling+MLP fragment shader.
type ForwardTopology struct {
	pass         *vulkan.VulkanRenderpass
	sceneLayout  vk.DescriptorSetLayout
	framebuffers []*vulkan.VulkanFramebuffer
}

func (t *ForwardTopology) Build(rg *RenderGraph) error {
	ctx := rg.backend.Context()

	plan := graph.BuildForwardPass(ctx.Device.DepthFormat, ctx.Swapchain.ImageFormat.Format)
	pass, err := vulkan.RenderpassCreate(ctx, plan, ctx.FramebufferWidth, ctx.FramebufferHeight)
	if err != nil {
		return err
	}
	t.pass = pass

	t.sceneLayout, err = vulkan.DescriptorSetLayoutCreate(ctx, graph.SceneSetLayout(true))
	if err != nil {
		return err
	}

	imageCount := ctx.Swapchain.ImageCount
	rg.descriptorPool, err = vulkan.DescriptorPoolCreate(ctx, graph.ForwardPoolPlan(uint32(len(rg.models)), imageCount))
	if err != nil {
		return err
	}

	if err := buildModelPipelines(rg, t.pass, t.sceneLayout, 1, false); err != nil {
		return err
	}
	// Uniform buffers are rewritten every frame, so each swapchain image
	// gets its own set even though the writes are identical today.
	if err := writeModelDescriptorSets(rg, t.sceneLayout, int(imageCount), true); err != nil {
		return err
	}
	return t.createFramebuffers(rg)
}

func (t *ForwardTopology) createFramebuffers(rg *RenderGraph) error {
	ctx := rg.backend.Context()
	t.framebuffers = make([]*vulkan.VulkanFramebuffer, ctx.Swapchain.ImageCount)
	for i := range t.framebuffers {
		views := []vk.ImageView{ctx.Swapchain.DepthAttachment.View, ctx.Swapchain.Views[i]}
		fb, err := vulkan.FramebufferCreate(ctx, t.pass, ctx.FramebufferWidth, ctx.FramebufferHeight, uint32(len(views)), views)
		if err != nil {
			return err
		}
		t.framebuffers[i] = fb
	}
	return nil
}

func (t *ForwardTopology) destroyFramebuffers(rg *RenderGraph) {
	ctx := rg.backend.Context()
	for _, fb := range t.framebuffers {
		if fb != nil {
			fb.Destroy(ctx)
		}
	}
	t.framebuffers = nil
}

func (t *ForwardTopology) RecordFrame(rg *RenderGraph, cb *vulkan.VulkanCommandBuffer, imageIndex uint32) error {
	t.pass.RenderpassBegin(cb, t.framebuffers[imageIndex].Handle)
	recordModelDraws(rg, cb, int(imageIndex))
	t.pass.RenderpassEnd(cb)
	return nil
}

func (t *ForwardTopology) OnResize(rg *RenderGraph) error {
	ctx := rg.backend.Context()
	t.destroyFramebuffers(rg)
	t.pass.W = ctx.FramebufferWidth
	t.pass.H = ctx.FramebufferHeight
	return t.createFramebuffers(rg)
}

func (t *ForwardTopology) Destroy(rg *RenderGraph) {
	ctx := rg.backend.Context()
	t.destroyFramebuffers(rg)
	if t.sceneLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(ctx.Device.LogicalDevice, t.sceneLayout, ctx.Allocator)
		t.sceneLayout = vk.NullDescriptorSetLayout
	}
	if t.pass != nil {
		t.pass.RenderpassDestroy(ctx)
		t.pass = nil
	}
}

// deferredAttachments is the per-swapchain-image set of intermediate targets
// of the geometry subpass: two feature buffers and the ray direction buffer.
type deferredAttachments struct {
	feature0 *vulkan.VulkanImage
	feature1 *vulkan.VulkanImage
	rayDirs  *vulkan.VulkanImage
}

func (da *deferredAttachments) destroy(ctx *vulkan.VulkanContext) {
	if da.feature0 != nil {
		da.feature0.ImageDestroy(ctx)
	}
	if da.feature1 != nil {
		da.feature1.ImageDestroy(ctx)
	}
	if da.rayDirs != nil {
		da.rayDirs.ImageDestroy(ctx)
	}
}

// DeferredTopology writes features and ray directions in subpass 0, then
// resolves them through input attachments with the MLP in subpass 1.
type DeferredTopology struct {
	pass          *vulkan.VulkanRenderpass
	sceneLayout   vk.DescriptorSetLayout
	composeLayout vk.DescriptorSetLayout

	composePipeline *vulkan.VulkanPipeline
	composeSets     []vk.DescriptorSet

	attachments  []deferredAttachments
	framebuffers []*vulkan.VulkanFramebuffer
}

func (t *DeferredTopology) Build(rg *RenderGraph) error {
	ctx := rg.backend.Context()

	plan := graph.BuildDeferredPass(featureVkFormat(rg.scene.FeatureFormat), ctx.Device.DepthFormat, ctx.Swapchain.ImageFormat.Format)
	pass, err := vulkan.RenderpassCreate(ctx, plan, ctx.FramebufferWidth, ctx.FramebufferHeight)
	if err != nil {
		return err
	}
	t.pass = pass

	t.sceneLayout, err = vulkan.DescriptorSetLayoutCreate(ctx, graph.SceneSetLayout(false))
	if err != nil {
		return err
	}
	t.composeLayout, err = vulkan.DescriptorSetLayoutCreate(ctx, graph.ComposeSetLayout())
	if err != nil {
		return err
	}

	imageCount := ctx.Swapchain.ImageCount
	rg.descriptorPool, err = vulkan.DescriptorPoolCreate(ctx, graph.DeferredPoolPlan(uint32(len(rg.models)), imageCount))
	if err != nil {
		return err
	}

	if err := buildModelPipelines(rg, t.pass, t.sceneLayout, 3, true); err != nil {
		return err
	}
	if err := t.buildComposePipeline(rg); err != nil {
		return err
	}
	if err := writeModelDescriptorSets(rg, t.sceneLayout, 1, false); err != nil {
		return err
	}

	if err := t.createAttachmentsAndFramebuffers(rg); err != nil {
		return err
	}

	// Compose sets are allocated once; their input-attachment writes are
	// refreshed whenever the attachments are recreated.
	t.composeSets = make([]vk.DescriptorSet, imageCount)
	for i := range t.composeSets {
		set, err := vulkan.DescriptorSetAllocate(ctx, rg.descriptorPool, t.composeLayout)
		if err != nil {
			return err
		}
		t.composeSets[i] = set
		vulkan.UpdateDescriptorSets(ctx, []vk.WriteDescriptorSet{
			vulkan.WriteUniformBuffer(set, 3, rg.models[0].WeightsBuffer),
		})
	}
	t.writeComposeInputs(rg)
	return nil
}

func (t *DeferredTopology) buildComposePipeline(rg *RenderGraph) error {
	ctx := rg.backend.Context()

	vert, err := vulkan.NewShaderModule(ctx, filepath.Join(rg.shaderDir, "quad.vert.spv"), vk.ShaderStageVertexBit)
	if err != nil {
		return err
	}
	defer vert.Destroy(ctx)
	frag, err := vulkan.NewShaderModule(ctx, filepath.Join(rg.shaderDir, composeFragment(rg.models[0].Variant)), vk.ShaderStageFragmentBit)
	if err != nil {
		return err
	}
	defer frag.Destroy(ctx)

	t.composePipeline, err = vulkan.NewGraphicsPipeline(ctx, &vulkan.VulkanPipelineConfig{
		Renderpass:           t.pass,
		Subpass:              1,
		Stages:               []vk.PipelineShaderStageCreateInfo{vert.ShaderStageCreateInfo, frag.ShaderStageCreateInfo},
		DescriptorSetLayout:  t.composeLayout,
		ColorAttachmentCount: 1,
		EmptyVertexInput:     true,
	})
	return err
}

func (t *DeferredTopology) createAttachmentsAndFramebuffers(rg *RenderGraph) error {
	ctx := rg.backend.Context()
	pool := ctx.Device.GraphicsCommandPool
	queue := ctx.Device.GraphicsQueue
	featureFormat := featureVkFormat(rg.scene.FeatureFormat)

	t.attachments = make([]deferredAttachments, ctx.Swapchain.ImageCount)
	for i := range t.attachments {
		var err error
		if t.attachments[i].feature0, err = vulkan.FrameAttachmentCreate(ctx, pool, queue, featureFormat, ctx.FramebufferWidth, ctx.FramebufferHeight); err != nil {
			return err
		}
		if t.attachments[i].feature1, err = vulkan.FrameAttachmentCreate(ctx, pool, queue, featureFormat, ctx.FramebufferWidth, ctx.FramebufferHeight); err != nil {
			return err
		}
		if t.attachments[i].rayDirs, err = vulkan.FrameAttachmentCreate(ctx, pool, queue, graph.RayDirectionFormat, ctx.FramebufferWidth, ctx.FramebufferHeight); err != nil {
			return err
		}
	}

	t.framebuffers = make([]*vulkan.VulkanFramebuffer, ctx.Swapchain.ImageCount)
	for i := range t.framebuffers {
		views := []vk.ImageView{
			t.attachments[i].feature0.View,
			t.attachments[i].feature1.View,
			t.attachments[i].rayDirs.View,
			ctx.Swapchain.DepthAttachment.View,
			ctx.Swapchain.Views[i],
		}
		fb, err := vulkan.FramebufferCreate(ctx, t.pass, ctx.FramebufferWidth, ctx.FramebufferHeight, uint32(len(views)), views)
		if err != nil {
			return err
		}
		t.framebuffers[i] = fb
	}
	return nil
}

func (t *DeferredTopology) destroyAttachmentsAndFramebuffers(rg *RenderGraph) {
	ctx := rg.backend.Context()
	for _, fb := range t.framebuffers {
		if fb != nil {
			fb.Destroy(ctx)
		}
	}
	t.framebuffers = nil
	for i := range t.attachments {
		t.attachments[i].destroy(ctx)
	}
	t.attachments = nil
}

func (t *DeferredTopology) writeComposeInputs(rg *RenderGraph) {
	ctx := rg.backend.Context()
	for i, set := range t.composeSets {
		vulkan.UpdateDescriptorSets(ctx, []vk.WriteDescriptorSet{
			vulkan.WriteInputAttachment(set, 0, t.attachments[i].feature0.View),
			vulkan.WriteInputAttachment(set, 1, t.attachments[i].feature1.View),
			vulkan.WriteInputAttachment(set, 2, t.attachments[i].rayDirs.View),
		})
	}
}

func (t *DeferredTopology) RecordFrame(rg *RenderGraph, cb *vulkan.VulkanCommandBuffer, imageIndex uint32) error {
	t.pass.RenderpassBegin(cb, t.framebuffers[imageIndex].Handle)

	recordModelDraws(rg, cb, 0)

	// Full screen resolve over the attachments written above.
	t.pass.NextSubpass(cb)
	t.composePipeline.Bind(cb, vk.PipelineBindPointGraphics)
	vk.CmdBindDescriptorSets(cb.Handle, vk.PipelineBindPointGraphics, t.composePipeline.PipelineLayout,
		0, 1, []vk.DescriptorSet{t.composeSets[imageIndex]}, 0, nil)
	vk.CmdDraw(cb.Handle, 3, 1, 0, 0)

	t.pass.RenderpassEnd(cb)
	return nil
}

func (t *DeferredTopology) OnResize(rg *RenderGraph) error {
	ctx := rg.backend.Context()
	t.destroyAttachmentsAndFramebuffers(rg)
	t.pass.W = ctx.FramebufferWidth
	t.pass.H = ctx.FramebufferHeight
	if err := t.createAttachmentsAndFramebuffers(rg); err != nil {
		return err
	}
	t.writeComposeInputs(rg)
	core.LogDebug("Deferred attachments recreated at %dx%d", ctx.FramebufferWidth, ctx.FramebufferHeight)
	return nil
}

func (t *DeferredTopology) Destroy(rg *RenderGraph) {
	ctx := rg.backend.Context()
	t.destroyAttachmentsAndFramebuffers(rg)
	if t.composePipeline != nil {
		t.composePipeline.Destroy(ctx)
		t.composePipeline = nil
	}
	if t.composeLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(ctx.Device.LogicalDevice, t.composeLayout, ctx.Allocator)
		t.composeLayout = vk.NullDescriptorSetLayout
	}
	if t.sceneLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(ctx.Device.LogicalDevice, t.sceneLayout, ctx.Allocator)
		t.sceneLayout = vk.NullDescriptorSetLayout
	}
	if t.pass != nil {
		t.pass.RenderpassDestroy(ctx)
		t.pass = nil
	}
}
