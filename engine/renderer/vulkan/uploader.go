package vulkan

import (
	"fmt"
	"math"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/lumen/engine/core"
)

// The uploader moves asset data to device-local memory through a staging
// buffer. Every upload is synchronous: the copy is submitted with a fence
// and waited on before the staging buffer is released, so callers may free
// the source data immediately.

func UploadBufferData(context *VulkanContext, pool vk.CommandPool, queue vk.Queue, dest *VulkanBuffer, data []byte) error {
	size := vk.DeviceSize(len(data))
	if size == 0 {
		return fmt.Errorf("refusing to upload an empty buffer")
	}
	if size > dest.TotalSize {
		return fmt.Errorf("upload of %d bytes does not fit destination buffer of %d bytes", size, dest.TotalSize)
	}

	staging, err := BufferCreate(
		context,
		size,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return err
	}
	defer staging.Destroy(context)

	if err := staging.LoadData(context, 0, size, data); err != nil {
		return err
	}

	cb, err := AllocateAndBeginSingleUse(context, pool)
	if err != nil {
		return err
	}

	copyRegion := vk.BufferCopy{SrcOffset: 0, DstOffset: 0, Size: size}
	vk.CmdCopyBuffer(cb.Handle, staging.Handle, dest.Handle, 1, []vk.BufferCopy{copyRegion})

	// Make the copied data visible to the shader stages before any draw
	// consumes it.
	barrier := vk.BufferMemoryBarrier{
		SType:               vk.StructureTypeBufferMemoryBarrier,
		SrcAccessMask:       vk.AccessFlags(vk.AccessTransferWriteBit),
		DstAccessMask:       vk.AccessFlags(vk.AccessShaderReadBit | vk.AccessShaderWriteBit),
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Buffer:              dest.Handle,
		Offset:              0,
		Size:                size,
	}
	vk.CmdPipelineBarrier(
		cb.Handle,
		vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		vk.PipelineStageFlags(vk.PipelineStageAllGraphicsBit),
		0,
		0, nil,
		1, []vk.BufferMemoryBarrier{barrier},
		0, nil)

	return submitAndWait(context, pool, queue, cb)
}

// UploadTexture creates a device-local sampled image, fills it with the
// given pixels and leaves it in SHADER_READ_ONLY_OPTIMAL.
func UploadTexture(context *VulkanContext, pool vk.CommandPool, queue vk.Queue, pixels []byte, width, height uint32, format vk.Format) (*VulkanImage, error) {
	image, err := ImageCreate(
		context,
		vk.ImageType2d,
		width,
		height,
		format,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return nil, err
	}

	staging, err := BufferCreate(
		context,
		vk.DeviceSize(len(pixels)),
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, err
	}
	defer staging.Destroy(context)

	if err := staging.LoadData(context, 0, vk.DeviceSize(len(pixels)), pixels); err != nil {
		return nil, err
	}

	cb, err := AllocateAndBeginSingleUse(context, pool)
	if err != nil {
		return nil, err
	}

	aspect := vk.ImageAspectFlags(vk.ImageAspectColorBit)
	if err := image.TransitionLayout(context, cb, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal, aspect); err != nil {
		return nil, err
	}
	image.CopyFromBuffer(cb, staging)
	if err := image.TransitionLayout(context, cb, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal, aspect); err != nil {
		return nil, err
	}

	if err := submitAndWait(context, pool, queue, cb); err != nil {
		return nil, err
	}
	return image, nil
}

// FrameAttachmentCreate allocates a pass-owned color attachment that the
// resolve subpass reads back, and initializes its layout.
func FrameAttachmentCreate(context *VulkanContext, pool vk.CommandPool, queue vk.Queue, format vk.Format, width, height uint32) (*VulkanImage, error) {
	image, err := ImageCreate(
		context,
		vk.ImageType2d,
		width,
		height,
		format,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit|vk.ImageUsageInputAttachmentBit|vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return nil, err
	}

	cb, err := AllocateAndBeginSingleUse(context, pool)
	if err != nil {
		return nil, err
	}
	if err := image.TransitionLayout(context, cb, vk.ImageLayoutUndefined, vk.ImageLayoutGeneral, vk.ImageAspectFlags(vk.ImageAspectColorBit)); err != nil {
		return nil, err
	}
	if err := submitAndWait(context, pool, queue, cb); err != nil {
		return nil, err
	}
	return image, nil
}

func submitAndWait(context *VulkanContext, pool vk.CommandPool, queue vk.Queue, cb *VulkanCommandBuffer) error {
	if err := cb.End(); err != nil {
		return err
	}

	fence, err := NewFence(context, false)
	if err != nil {
		return err
	}
	defer fence.FenceDestroy(context)

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cb.Handle},
	}

	if err := lockPool.SafeQueueCall(uint32(context.Device.GraphicsQueueIndex), func() error {
		if res := vk.QueueSubmit(queue, 1, []vk.SubmitInfo{submitInfo}, fence.Handle); res != vk.Success {
			return fmt.Errorf("upload queue submit failed with %s", VulkanResultString(res, true))
		}
		return nil
	}); err != nil {
		core.LogError(err.Error())
		return err
	}

	if !fence.FenceWait(context, math.MaxUint64) {
		err := fmt.Errorf("upload fence wait failed")
		core.LogError(err.Error())
		return err
	}

	cb.Free(context, pool)
	return nil
}
