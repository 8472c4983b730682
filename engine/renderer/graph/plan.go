package graph

import (
	vk "github.com/goki/vulkan"
)

// RayDirectionFormat is the format of the intermediate attachment that
// carries per-pixel view ray directions between the two deferred subpasses.
const RayDirectionFormat = vk.FormatR16g16b16a16Sfloat

type AttachmentPlan struct {
	Format         vk.Format
	LoadOp         vk.AttachmentLoadOp
	StoreOp        vk.AttachmentStoreOp
	StencilLoadOp  vk.AttachmentLoadOp
	StencilStoreOp vk.AttachmentStoreOp
	InitialLayout  vk.ImageLayout
	FinalLayout    vk.ImageLayout
}

type AttachmentRef struct {
	Attachment uint32
	Layout     vk.ImageLayout
}

type SubpassPlan struct {
	Colors []AttachmentRef
	Inputs []AttachmentRef
	Depth  *AttachmentRef
}

type DependencyPlan struct {
	SrcSubpass    uint32
	DstSubpass    uint32
	SrcStageMask  vk.PipelineStageFlags
	DstStageMask  vk.PipelineStageFlags
	SrcAccessMask vk.AccessFlags
	DstAccessMask vk.AccessFlags
	Flags         vk.DependencyFlags
}

type ClearPlan struct {
	Color          [4]float32
	Depth          float32
	Stencil        uint32
	IsDepthStencil bool
}

// PassPlan is a host-side description of a render pass. It carries enough
// information to create the pass, size its framebuffers and begin recording,
// without touching the device.
type PassPlan struct {
	Attachments  []AttachmentPlan
	Subpasses    []SubpassPlan
	Dependencies []DependencyPlan
	Clears       []ClearPlan

	// Indices into Attachments for the attachments whose views come from
	// the swapchain and the depth buffer. The remaining attachments are
	// pass-owned intermediates.
	SwapchainAttachment uint32
	DepthAttachment     uint32
}

// IntermediateAttachments returns the indices of the attachments the pass
// has to allocate itself, in attachment order.
func (p *PassPlan) IntermediateAttachments() []uint32 {
	var out []uint32
	for i := range p.Attachments {
		idx := uint32(i)
		if idx != p.SwapchainAttachment && idx != p.DepthAttachment {
			out = append(out, idx)
		}
	}
	return out
}

// ClearValues converts the clear plan into the form vkCmdBeginRenderPass
// expects, one entry per attachment.
func (p *PassPlan) ClearValues() []vk.ClearValue {
	out := make([]vk.ClearValue, len(p.Clears))
	for i, c := range p.Clears {
		if c.IsDepthStencil {
			out[i].SetDepthStencil(c.Depth, c.Stencil)
		} else {
			out[i].SetColor(c.Color[:])
		}
	}
	return out
}

// BuildForwardPass describes the single-subpass layout used when every model
// carries its own network weights. Attachment 0 is the depth buffer and
// attachment 1 the swapchain image.
func BuildForwardPass(depthFormat, swapchainFormat vk.Format) *PassPlan {
	plan := &PassPlan{
		Attachments: []AttachmentPlan{
			{
				Format:         depthFormat,
				LoadOp:         vk.AttachmentLoadOpClear,
				StoreOp:        vk.AttachmentStoreOpDontCare,
				StencilLoadOp:  vk.AttachmentLoadOpDontCare,
				StencilStoreOp: vk.AttachmentStoreOpStore,
				InitialLayout:  vk.ImageLayoutUndefined,
				FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
			},
			{
				Format:         swapchainFormat,
				LoadOp:         vk.AttachmentLoadOpClear,
				StoreOp:        vk.AttachmentStoreOpStore,
				StencilLoadOp:  vk.AttachmentLoadOpDontCare,
				StencilStoreOp: vk.AttachmentStoreOpDontCare,
				InitialLayout:  vk.ImageLayoutUndefined,
				FinalLayout:    vk.ImageLayoutPresentSrc,
			},
		},
		Subpasses: []SubpassPlan{
			{
				Colors: []AttachmentRef{{Attachment: 1, Layout: vk.ImageLayoutColorAttachmentOptimal}},
				Depth:  &AttachmentRef{Attachment: 0, Layout: vk.ImageLayoutDepthStencilAttachmentOptimal},
			},
		},
		Clears: []ClearPlan{
			{Depth: 1.0, Stencil: 0, IsDepthStencil: true},
			{Color: [4]float32{0.0, 0.0, 0.0, 1.0}},
		},
		SwapchainAttachment: 1,
		DepthAttachment:     0,
	}
	return plan
}

// BuildDeferredPass describes the two-subpass layout where the first subpass
// rasterizes feature maps and ray directions, and the second evaluates the
// network once per pixel reading them back as input attachments.
//
// Attachments 0 and 1 hold the packed features, 2 the ray directions, 3 the
// depth buffer and 4 the swapchain image.
func BuildDeferredPass(featureFormat, depthFormat, swapchainFormat vk.Format) *PassPlan {
	feature := AttachmentPlan{
		Format:         featureFormat,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpDontCare,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutColorAttachmentOptimal,
	}
	ray := feature
	ray.Format = RayDirectionFormat

	plan := &PassPlan{
		Attachments: []AttachmentPlan{
			feature,
			feature,
			ray,
			{
				Format:         depthFormat,
				LoadOp:         vk.AttachmentLoadOpClear,
				StoreOp:        vk.AttachmentStoreOpDontCare,
				StencilLoadOp:  vk.AttachmentLoadOpDontCare,
				StencilStoreOp: vk.AttachmentStoreOpStore,
				InitialLayout:  vk.ImageLayoutUndefined,
				FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
			},
			{
				Format:         swapchainFormat,
				LoadOp:         vk.AttachmentLoadOpClear,
				StoreOp:        vk.AttachmentStoreOpStore,
				StencilLoadOp:  vk.AttachmentLoadOpDontCare,
				StencilStoreOp: vk.AttachmentStoreOpDontCare,
				InitialLayout:  vk.ImageLayoutUndefined,
				FinalLayout:    vk.ImageLayoutPresentSrc,
			},
		},
		Subpasses: []SubpassPlan{
			{
				Colors: []AttachmentRef{
					{Attachment: 0, Layout: vk.ImageLayoutColorAttachmentOptimal},
					{Attachment: 1, Layout: vk.ImageLayoutColorAttachmentOptimal},
					{Attachment: 2, Layout: vk.ImageLayoutColorAttachmentOptimal},
				},
				Depth: &AttachmentRef{Attachment: 3, Layout: vk.ImageLayoutDepthStencilAttachmentOptimal},
			},
			{
				Colors: []AttachmentRef{{Attachment: 4, Layout: vk.ImageLayoutColorAttachmentOptimal}},
				Inputs: []AttachmentRef{
					{Attachment: 0, Layout: vk.ImageLayoutShaderReadOnlyOptimal},
					{Attachment: 1, Layout: vk.ImageLayoutShaderReadOnlyOptimal},
					{Attachment: 2, Layout: vk.ImageLayoutShaderReadOnlyOptimal},
				},
			},
		},
		Dependencies: []DependencyPlan{
			{
				SrcSubpass:    vk.SubpassExternal,
				DstSubpass:    0,
				SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit),
				DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
				SrcAccessMask: 0,
				DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit | vk.AccessDepthStencilAttachmentWriteBit),
				Flags:         vk.DependencyFlags(vk.DependencyByRegionBit),
			},
			{
				SrcSubpass:    0,
				DstSubpass:    1,
				SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
				DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
				SrcAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
				DstAccessMask: vk.AccessFlags(vk.AccessInputAttachmentReadBit),
				Flags:         vk.DependencyFlags(vk.DependencyByRegionBit),
			},
			{
				SrcSubpass:    1,
				DstSubpass:    vk.SubpassExternal,
				SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
				DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit),
				SrcAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
				DstAccessMask: 0,
				Flags:         vk.DependencyFlags(vk.DependencyByRegionBit),
			},
		},
		Clears: []ClearPlan{
			{Color: [4]float32{0.025, 0.025, 0.025, 0.5}},
			{Color: [4]float32{0.025, 0.025, 0.025, 0.5}},
			{Color: [4]float32{0.025, 0.025, 0.025, 0.5}},
			{Depth: 1.0, Stencil: 0, IsDepthStencil: true},
			{Color: [4]float32{1.0, 1.0, 1.0, 0.5}},
		},
		SwapchainAttachment: 4,
		DepthAttachment:     3,
	}
	return plan
}
