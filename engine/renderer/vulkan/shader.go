package vulkan

import (
	"encoding/binary"
	"fmt"
	"os"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/lumen/engine/core"
)

// VulkanShaderStage wraps a compiled SPIR-V module and the stage info a
// pipeline needs to bind it.
type VulkanShaderStage struct {
	Handle                vk.ShaderModule
	ShaderStageCreateInfo vk.PipelineShaderStageCreateInfo
}

// NewShaderModule loads a compiled .spv file from disk and wraps it for the
// given pipeline stage.
func NewShaderModule(context *VulkanContext, path string, stage vk.ShaderStageFlagBits) (*VulkanShaderStage, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		err := fmt.Errorf("unable to read shader module %s: %w", path, err)
		core.LogError(err.Error())
		return nil, err
	}
	if len(code) == 0 || len(code)%4 != 0 {
		err := fmt.Errorf("shader module %s is not valid SPIR-V: %d bytes", path, len(code))
		core.LogError(err.Error())
		return nil, err
	}

	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}

	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    words,
	}

	var handle vk.ShaderModule
	if err := lockPool.SafeCall(ShaderManagement, func() error {
		if res := vk.CreateShaderModule(context.Device.LogicalDevice, &createInfo, context.Allocator, &handle); res != vk.Success {
			return fmt.Errorf("vkCreateShaderModule failed for %s with %s", path, VulkanResultString(res, true))
		}
		return nil
	}); err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	return &VulkanShaderStage{
		Handle: handle,
		ShaderStageCreateInfo: vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  stage,
			Module: handle,
			PName:  VulkanSafeString("main"),
		},
	}, nil
}

func (ss *VulkanShaderStage) Destroy(context *VulkanContext) {
	if ss.Handle != nil {
		vk.DestroyShaderModule(context.Device.LogicalDevice, ss.Handle, context.Allocator)
		ss.Handle = nil
	}
}
