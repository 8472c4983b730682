package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/graph"
)

func DescriptorPoolCreate(context *VulkanContext, plan graph.PoolPlan) (vk.DescriptorPool, error) {
	sizes := make([]vk.DescriptorPoolSize, len(plan.Sizes))
	for i, s := range plan.Sizes {
		sizes[i] = vk.DescriptorPoolSize{
			Type:            s.Type,
			DescriptorCount: s.Count,
		}
		sizes[i].Deref()
	}

	createInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		PoolSizeCount: uint32(len(sizes)),
		PPoolSizes:    sizes,
		MaxSets:       plan.MaxSets,
	}
	createInfo.Deref()

	var pool vk.DescriptorPool
	if err := lockPool.SafeCall(ResourceManagement, func() error {
		if res := vk.CreateDescriptorPool(context.Device.LogicalDevice, &createInfo, context.Allocator, &pool); res != vk.Success {
			return fmt.Errorf("failed to create descriptor pool with %s", VulkanResultString(res, true))
		}
		return nil
	}); err != nil {
		core.LogError(err.Error())
		return vk.NullDescriptorPool, err
	}
	return pool, nil
}

func DescriptorSetLayoutCreate(context *VulkanContext, plan graph.LayoutPlan) (vk.DescriptorSetLayout, error) {
	bindings := make([]vk.DescriptorSetLayoutBinding, len(plan.Bindings))
	for i, b := range plan.Bindings {
		bindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:         b.Binding,
			DescriptorType:  b.Type,
			DescriptorCount: 1,
			StageFlags:      b.Stages,
		}
		bindings[i].Deref()
	}

	createInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}
	createInfo.Deref()

	var layout vk.DescriptorSetLayout
	if err := lockPool.SafeCall(ResourceManagement, func() error {
		if res := vk.CreateDescriptorSetLayout(context.Device.LogicalDevice, &createInfo, context.Allocator, &layout); res != vk.Success {
			return fmt.Errorf("failed to create descriptor set layout with %s", VulkanResultString(res, true))
		}
		return nil
	}); err != nil {
		core.LogError(err.Error())
		return vk.NullDescriptorSetLayout, err
	}
	return layout, nil
}

func DescriptorSetAllocate(context *VulkanContext, pool vk.DescriptorPool, layout vk.DescriptorSetLayout) (vk.DescriptorSet, error) {
	allocateInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{layout},
	}
	allocateInfo.Deref()

	sets := make([]vk.DescriptorSet, 1)
	if err := lockPool.SafeCall(ResourceManagement, func() error {
		if res := vk.AllocateDescriptorSets(context.Device.LogicalDevice, &allocateInfo, &sets[0]); res != vk.Success {
			return fmt.Errorf("failed to allocate descriptor set with %s", VulkanResultString(res, true))
		}
		return nil
	}); err != nil {
		core.LogError(err.Error())
		return vk.NullDescriptorSet, err
	}
	return sets[0], nil
}

func WriteCombinedImageSampler(set vk.DescriptorSet, binding uint32, view vk.ImageView, sampler vk.Sampler) vk.WriteDescriptorSet {
	imageInfo := vk.DescriptorImageInfo{
		Sampler:     sampler,
		ImageView:   view,
		ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
	}
	imageInfo.Deref()

	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      binding,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		DescriptorCount: 1,
		PImageInfo:      []vk.DescriptorImageInfo{imageInfo},
	}
	write.Deref()
	return write
}

func WriteUniformBuffer(set vk.DescriptorSet, binding uint32, buffer *VulkanBuffer) vk.WriteDescriptorSet {
	bufferInfo := vk.DescriptorBufferInfo{
		Buffer: buffer.Handle,
		Offset: 0,
		Range:  buffer.TotalSize,
	}
	bufferInfo.Deref()

	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      binding,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		DescriptorCount: 1,
		PBufferInfo:     []vk.DescriptorBufferInfo{bufferInfo},
	}
	write.Deref()
	return write
}

func WriteInputAttachment(set vk.DescriptorSet, binding uint32, view vk.ImageView) vk.WriteDescriptorSet {
	imageInfo := vk.DescriptorImageInfo{
		Sampler:     vk.NullSampler,
		ImageView:   view,
		ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
	}
	imageInfo.Deref()

	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      binding,
		DescriptorType:  vk.DescriptorTypeInputAttachment,
		DescriptorCount: 1,
		PImageInfo:      []vk.DescriptorImageInfo{imageInfo},
	}
	write.Deref()
	return write
}

func UpdateDescriptorSets(context *VulkanContext, writes []vk.WriteDescriptorSet) {
	vk.UpdateDescriptorSets(context.Device.LogicalDevice, uint32(len(writes)), writes, 0, nil)
}
