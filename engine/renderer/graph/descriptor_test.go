package graph

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSceneSetLayout(t *testing.T) {
	deferred := SceneSetLayout(false)
	require.Len(t, deferred.Bindings, 3)
	assert.Equal(t, vk.DescriptorTypeCombinedImageSampler, deferred.Bindings[0].Type)
	assert.Equal(t, vk.DescriptorTypeCombinedImageSampler, deferred.Bindings[1].Type)
	assert.Equal(t, vk.DescriptorTypeUniformBuffer, deferred.Bindings[2].Type)
	assert.Equal(t, vk.ShaderStageFlags(vk.ShaderStageVertexBit), deferred.Bindings[2].Stages)

	forward := SceneSetLayout(true)
	require.Len(t, forward.Bindings, 4)
	weights := forward.Bindings[3]
	assert.Equal(t, uint32(3), weights.Binding)
	assert.Equal(t, vk.DescriptorTypeUniformBuffer, weights.Type)
	assert.Equal(t, vk.ShaderStageFlags(vk.ShaderStageFragmentBit), weights.Stages)
}

func TestComposeSetLayout(t *testing.T) {
	layout := ComposeSetLayout()
	require.Len(t, layout.Bindings, 4)
	for i := 0; i < 3; i++ {
		assert.Equal(t, uint32(i), layout.Bindings[i].Binding)
		assert.Equal(t, vk.DescriptorTypeInputAttachment, layout.Bindings[i].Type)
		assert.Equal(t, vk.ShaderStageFlags(vk.ShaderStageFragmentBit), layout.Bindings[i].Stages)
	}
	assert.Equal(t, vk.DescriptorTypeUniformBuffer, layout.Bindings[3].Type)
}

func TestDeferredPoolPlan(t *testing.T) {
	plan := DeferredPoolPlan(4, 3)
	require.Len(t, plan.Sizes, 4)
	assert.Equal(t, uint32(8), plan.Sizes[0].Count)
	assert.Equal(t, uint32(4), plan.Sizes[1].Count)
	assert.Equal(t, uint32(9), plan.Sizes[2].Count)
	assert.Equal(t, uint32(3), plan.Sizes[3].Count)
	assert.Equal(t, uint32(7), plan.MaxSets)
}

func TestForwardPoolPlan(t *testing.T) {
	plan := ForwardPoolPlan(2, 3)
	require.Len(t, plan.Sizes, 3)
	assert.Equal(t, uint32(12), plan.Sizes[0].Count)
	assert.Equal(t, uint32(6), plan.Sizes[1].Count)
	assert.Equal(t, uint32(6), plan.Sizes[2].Count)
	assert.Equal(t, uint32(6), plan.MaxSets)
}
