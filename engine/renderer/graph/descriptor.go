package graph

import (
	vk "github.com/goki/vulkan"
)

type BindingPlan struct {
	Binding uint32
	Type    vk.DescriptorType
	Stages  vk.ShaderStageFlags
}

type LayoutPlan struct {
	Bindings []BindingPlan
}

type PoolSizePlan struct {
	Type  vk.DescriptorType
	Count uint32
}

type PoolPlan struct {
	Sizes   []PoolSizePlan
	MaxSets uint32
}

// SceneSetLayout is the per-model descriptor layout used by the geometry
// subpass. Bindings 0 and 1 sample the two feature textures, binding 2 feeds
// the vertex stage with the scene uniforms. When the pass renders in a single
// subpass the fragment stage additionally reads the packed network weights
// at binding 3.
func SceneSetLayout(includeWeights bool) LayoutPlan {
	plan := LayoutPlan{
		Bindings: []BindingPlan{
			{Binding: 0, Type: vk.DescriptorTypeCombinedImageSampler, Stages: vk.ShaderStageFlags(vk.ShaderStageFragmentBit)},
			{Binding: 1, Type: vk.DescriptorTypeCombinedImageSampler, Stages: vk.ShaderStageFlags(vk.ShaderStageFragmentBit)},
			{Binding: 2, Type: vk.DescriptorTypeUniformBuffer, Stages: vk.ShaderStageFlags(vk.ShaderStageVertexBit)},
		},
	}
	if includeWeights {
		plan.Bindings = append(plan.Bindings, BindingPlan{
			Binding: 3,
			Type:    vk.DescriptorTypeUniformBuffer,
			Stages:  vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		})
	}
	return plan
}

// ComposeSetLayout is the descriptor layout of the resolve subpass. It reads
// the three intermediate attachments back and evaluates the network from the
// weight buffer at binding 3.
func ComposeSetLayout() LayoutPlan {
	return LayoutPlan{
		Bindings: []BindingPlan{
			{Binding: 0, Type: vk.DescriptorTypeInputAttachment, Stages: vk.ShaderStageFlags(vk.ShaderStageFragmentBit)},
			{Binding: 1, Type: vk.DescriptorTypeInputAttachment, Stages: vk.ShaderStageFlags(vk.ShaderStageFragmentBit)},
			{Binding: 2, Type: vk.DescriptorTypeInputAttachment, Stages: vk.ShaderStageFlags(vk.ShaderStageFragmentBit)},
			{Binding: 3, Type: vk.DescriptorTypeUniformBuffer, Stages: vk.ShaderStageFlags(vk.ShaderStageFragmentBit)},
		},
	}
}

// DeferredPoolPlan sizes the descriptor pool for the two-subpass layout:
// one scene set per model plus one compose set per framebuffer.
func DeferredPoolPlan(modelCount, framebufferCount uint32) PoolPlan {
	return PoolPlan{
		Sizes: []PoolSizePlan{
			{Type: vk.DescriptorTypeCombinedImageSampler, Count: 2 * modelCount},
			{Type: vk.DescriptorTypeUniformBuffer, Count: 1 * modelCount},
			{Type: vk.DescriptorTypeInputAttachment, Count: 3 * framebufferCount},
			{Type: vk.DescriptorTypeUniformBuffer, Count: 1 * framebufferCount},
		},
		MaxSets: modelCount + framebufferCount,
	}
}

// ForwardPoolPlan sizes the descriptor pool for the single-subpass layout:
// one scene set per model per swapchain image, each carrying its own weight
// buffer binding.
func ForwardPoolPlan(modelCount, swapchainImageCount uint32) PoolPlan {
	n := modelCount * swapchainImageCount
	return PoolPlan{
		Sizes: []PoolSizePlan{
			{Type: vk.DescriptorTypeCombinedImageSampler, Count: 2 * n},
			{Type: vk.DescriptorTypeUniformBuffer, Count: 1 * n},
			{Type: vk.DescriptorTypeUniformBuffer, Count: 1 * n},
		},
		MaxSets: n,
	}
}
