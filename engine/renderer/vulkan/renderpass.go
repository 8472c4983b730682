package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/graph"
)

type VulkanRenderPassState int

const (
	READY VulkanRenderPassState = iota
	RECORDING
	IN_RENDER_PASS
	RECORDING_ENDED
	SUBMITTED
	NOT_ALLOCATED
)

// VulkanRenderpass realizes a pass plan on the device. The plan stays
// attached so recording can pull clear values and subpass counts from it.
type VulkanRenderpass struct {
	Handle vk.RenderPass
	Plan   *graph.PassPlan
	W, H   uint32
	State  VulkanRenderPassState
}

func RenderpassCreate(context *VulkanContext, plan *graph.PassPlan, width, height uint32) (*VulkanRenderpass, error) {
	outRenderpass := &VulkanRenderpass{
		Plan: plan,
		W:    width,
		H:    height,
	}

	attachments := make([]vk.AttachmentDescription, len(plan.Attachments))
	for i, a := range plan.Attachments {
		attachments[i] = vk.AttachmentDescription{
			Format:         a.Format,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         a.LoadOp,
			StoreOp:        a.StoreOp,
			StencilLoadOp:  a.StencilLoadOp,
			StencilStoreOp: a.StencilStoreOp,
			InitialLayout:  a.InitialLayout,
			FinalLayout:    a.FinalLayout,
		}
		attachments[i].Deref()
	}

	toReferences := func(refs []graph.AttachmentRef) []vk.AttachmentReference {
		out := make([]vk.AttachmentReference, len(refs))
		for i, r := range refs {
			out[i] = vk.AttachmentReference{Attachment: r.Attachment, Layout: r.Layout}
			out[i].Deref()
		}
		return out
	}

	subpasses := make([]vk.SubpassDescription, len(plan.Subpasses))
	for i, sp := range plan.Subpasses {
		subpass := vk.SubpassDescription{
			PipelineBindPoint:    vk.PipelineBindPointGraphics,
			ColorAttachmentCount: uint32(len(sp.Colors)),
			PColorAttachments:    toReferences(sp.Colors),
			InputAttachmentCount: uint32(len(sp.Inputs)),
		}
		if len(sp.Inputs) > 0 {
			subpass.PInputAttachments = toReferences(sp.Inputs)
		}
		if sp.Depth != nil {
			depthReference := vk.AttachmentReference{Attachment: sp.Depth.Attachment, Layout: sp.Depth.Layout}
			depthReference.Deref()
			subpass.PDepthStencilAttachment = &depthReference
		}
		subpass.Deref()
		subpasses[i] = subpass
	}

	dependencies := make([]vk.SubpassDependency, len(plan.Dependencies))
	for i, d := range plan.Dependencies {
		dependencies[i] = vk.SubpassDependency{
			SrcSubpass:      d.SrcSubpass,
			DstSubpass:      d.DstSubpass,
			SrcStageMask:    d.SrcStageMask,
			DstStageMask:    d.DstStageMask,
			SrcAccessMask:   d.SrcAccessMask,
			DstAccessMask:   d.DstAccessMask,
			DependencyFlags: d.Flags,
		}
		dependencies[i].Deref()
	}

	renderpassCreateInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    uint32(len(subpasses)),
		PSubpasses:      subpasses,
		DependencyCount: uint32(len(dependencies)),
	}
	if len(dependencies) > 0 {
		renderpassCreateInfo.PDependencies = dependencies
	}
	renderpassCreateInfo.Deref()

	var pRenderPass vk.RenderPass
	if err := lockPool.SafeCall(RenderpassManagement, func() error {
		if res := vk.CreateRenderPass(context.Device.LogicalDevice, &renderpassCreateInfo, context.Allocator, &pRenderPass); res != vk.Success {
			return fmt.Errorf("failed to create render pass with %s", VulkanResultString(res, true))
		}
		return nil
	}); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	outRenderpass.Handle = pRenderPass
	return outRenderpass, nil
}

func (vr *VulkanRenderpass) RenderpassDestroy(context *VulkanContext) {
	if vr.Handle != nil {
		vk.DestroyRenderPass(context.Device.LogicalDevice, vr.Handle, context.Allocator)
		vr.Handle = nil
	}
}

func (vr *VulkanRenderpass) RenderpassBegin(commandBuffer *VulkanCommandBuffer, frameBuffer vk.Framebuffer) {
	clearValues := vr.Plan.ClearValues()

	beginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  vr.Handle,
		Framebuffer: frameBuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: vk.Extent2D{Width: vr.W, Height: vr.H},
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}
	beginInfo.Deref()

	vk.CmdBeginRenderPass(commandBuffer.Handle, &beginInfo, vk.SubpassContentsInline)
	commandBuffer.State = COMMAND_BUFFER_STATE_IN_RENDER_PASS
}

// NextSubpass advances recording into the resolve subpass.
func (vr *VulkanRenderpass) NextSubpass(commandBuffer *VulkanCommandBuffer) {
	vk.CmdNextSubpass(commandBuffer.Handle, vk.SubpassContentsInline)
}

func (vr *VulkanRenderpass) RenderpassEnd(commandBuffer *VulkanCommandBuffer) {
	vk.CmdEndRenderPass(commandBuffer.Handle)
	commandBuffer.State = COMMAND_BUFFER_STATE_RECORDING
}
