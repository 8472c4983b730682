package graph

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildForwardPass(t *testing.T) {
	plan := BuildForwardPass(vk.FormatD32Sfloat, vk.FormatB8g8r8a8Unorm)

	require.Len(t, plan.Attachments, 2)
	require.Len(t, plan.Subpasses, 1)
	assert.Empty(t, plan.Dependencies)

	assert.Equal(t, vk.FormatD32Sfloat, plan.Attachments[0].Format)
	assert.Equal(t, vk.ImageLayoutDepthStencilAttachmentOptimal, plan.Attachments[0].FinalLayout)
	assert.Equal(t, vk.FormatB8g8r8a8Unorm, plan.Attachments[1].Format)
	assert.Equal(t, vk.ImageLayoutPresentSrc, plan.Attachments[1].FinalLayout)

	sp := plan.Subpasses[0]
	require.Len(t, sp.Colors, 1)
	assert.Equal(t, uint32(1), sp.Colors[0].Attachment)
	assert.Empty(t, sp.Inputs)
	require.NotNil(t, sp.Depth)
	assert.Equal(t, uint32(0), sp.Depth.Attachment)

	assert.Equal(t, uint32(1), plan.SwapchainAttachment)
	assert.Equal(t, uint32(0), plan.DepthAttachment)
	assert.Empty(t, plan.IntermediateAttachments())

	require.Len(t, plan.Clears, 2)
	assert.True(t, plan.Clears[0].IsDepthStencil)
	assert.Equal(t, float32(1.0), plan.Clears[0].Depth)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, plan.Clears[1].Color)
}

func TestBuildDeferredPass(t *testing.T) {
	plan := BuildDeferredPass(vk.FormatR32Sfloat, vk.FormatD32Sfloat, vk.FormatB8g8r8a8Unorm)

	require.Len(t, plan.Attachments, 5)
	require.Len(t, plan.Subpasses, 2)
	require.Len(t, plan.Dependencies, 3)

	assert.Equal(t, vk.FormatR32Sfloat, plan.Attachments[0].Format)
	assert.Equal(t, vk.FormatR32Sfloat, plan.Attachments[1].Format)
	assert.Equal(t, vk.FormatR16g16b16a16Sfloat, plan.Attachments[2].Format)
	assert.Equal(t, vk.FormatD32Sfloat, plan.Attachments[3].Format)
	assert.Equal(t, vk.FormatB8g8r8a8Unorm, plan.Attachments[4].Format)

	geometry := plan.Subpasses[0]
	require.Len(t, geometry.Colors, 3)
	assert.Empty(t, geometry.Inputs)
	require.NotNil(t, geometry.Depth)
	assert.Equal(t, uint32(3), geometry.Depth.Attachment)

	compose := plan.Subpasses[1]
	require.Len(t, compose.Colors, 1)
	assert.Equal(t, uint32(4), compose.Colors[0].Attachment)
	require.Len(t, compose.Inputs, 3)
	for i, in := range compose.Inputs {
		assert.Equal(t, uint32(i), in.Attachment)
		assert.Equal(t, vk.ImageLayoutShaderReadOnlyOptimal, in.Layout)
	}
	assert.Nil(t, compose.Depth)

	for _, dep := range plan.Dependencies {
		assert.Equal(t, vk.DependencyFlags(vk.DependencyByRegionBit), dep.Flags)
	}
	assert.Equal(t, uint32(vk.SubpassExternal), plan.Dependencies[0].SrcSubpass)
	assert.Equal(t, uint32(0), plan.Dependencies[1].SrcSubpass)
	assert.Equal(t, uint32(1), plan.Dependencies[1].DstSubpass)
	assert.Equal(t, vk.AccessFlags(vk.AccessInputAttachmentReadBit), plan.Dependencies[1].DstAccessMask)
	assert.Equal(t, uint32(vk.SubpassExternal), plan.Dependencies[2].DstSubpass)

	assert.Equal(t, []uint32{0, 1, 2}, plan.IntermediateAttachments())

	require.Len(t, plan.Clears, 5)
	for i := 0; i < 3; i++ {
		assert.Equal(t, [4]float32{0.025, 0.025, 0.025, 0.5}, plan.Clears[i].Color)
	}
	assert.True(t, plan.Clears[3].IsDepthStencil)
	assert.Equal(t, [4]float32{1, 1, 1, 0.5}, plan.Clears[4].Color)
}

func TestClearValuesMatchAttachmentCount(t *testing.T) {
	forward := BuildForwardPass(vk.FormatD32Sfloat, vk.FormatB8g8r8a8Unorm)
	assert.Len(t, forward.ClearValues(), len(forward.Attachments))

	deferred := BuildDeferredPass(vk.FormatR16Sfloat, vk.FormatD32Sfloat, vk.FormatB8g8r8a8Unorm)
	assert.Len(t, deferred.ClearValues(), len(deferred.Attachments))
}
