package vulkan

import (
	vk "github.com/goki/vulkan"
)

// Vertex layout shared by every proxy mesh: position at location 0 and
// texture coordinates at location 1, interleaved in binding 0. Instanced
// draws add a per-instance position offset in binding 1.
const (
	vertexStride   = 5 * 4
	instanceStride = 3 * 4
)

func VertexInputBindings(instanced bool) []vk.VertexInputBindingDescription {
	bindings := []vk.VertexInputBindingDescription{
		{
			Binding:   0,
			Stride:    vertexStride,
			InputRate: vk.VertexInputRateVertex,
		},
	}
	if instanced {
		bindings = append(bindings, vk.VertexInputBindingDescription{
			Binding:   1,
			Stride:    instanceStride,
			InputRate: vk.VertexInputRateInstance,
		})
	}
	return bindings
}

func VertexInputAttributes(instanced bool) []vk.VertexInputAttributeDescription {
	attributes := []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 0},
		{Location: 1, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: 3 * 4},
	}
	if instanced {
		attributes = append(attributes, vk.VertexInputAttributeDescription{
			Location: 2, Binding: 1, Format: vk.FormatR32g32b32Sfloat, Offset: 0,
		})
	}
	return attributes
}
