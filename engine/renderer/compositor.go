package renderer

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/graph"
	"github.com/spaghettifunk/lumen/engine/renderer/vulkan"
)

// lattice turn rate when the catalog enables rotation, radians per second
const rotationRate = 0.25

// FrameCompositor refreshes the per-model uniforms and records one frame of
// commands against the graph's topology. Uniform buffers are host visible and
// are rewritten only after the frame slot's fence has been waited on, which
// BeginFrame guarantees before recording starts.
type FrameCompositor struct {
	graph *RenderGraph

	// accumulated lattice rotation, radians
	angle float32
}

func NewFrameCompositor(rg *RenderGraph) *FrameCompositor {
	return &FrameCompositor{graph: rg}
}

func (fc *FrameCompositor) ComposeFrame(cb *vulkan.VulkanCommandBuffer, imageIndex uint32, deltaTime float64) error {
	if err := fc.updateUniforms(deltaTime); err != nil {
		return err
	}
	return fc.graph.topology.RecordFrame(fc.graph, cb, imageIndex)
}

func (fc *FrameCompositor) updateUniforms(deltaTime float64) error {
	rg := fc.graph
	ctx := rg.backend.Context()

	if rg.scene.Rotation {
		fc.angle += float32(deltaTime) * rotationRate
	}

	width := float32(ctx.FramebufferWidth)
	height := float32(ctx.FramebufferHeight)

	side, up, lookAt := rg.Camera.Basis()
	u := graph.GlobalUniform{
		View:           rg.Camera.View(),
		Proj:           rg.Camera.Projection(width / height),
		CameraPosition: rg.Camera.Position,
		CameraSide:     side,
		CameraUp:       up,
		CameraLookAt:   lookAt,
		ImgDim:         math.NewVec2(width, height),
		TanHalfFov:     rg.Camera.TanHalfFov(),
	}

	for i, buffer := range rg.uniformBuffers {
		u.Model = fc.modelMatrix(i)
		data := u.Bytes()
		if err := buffer.LoadData(ctx, 0, vk.DeviceSize(len(data)), data); err != nil {
			return err
		}
	}
	return nil
}

// modelMatrix places top-level model i: combo scenes get their fixed slot
// translation, and the whole lattice turns slowly when rotation is on.
func (fc *FrameCompositor) modelMatrix(i int) math.Mat4 {
	rg := fc.graph

	model := math.NewMat4Identity()
	if rg.scene.Rotation {
		model = math.NewMat4EulerY(fc.angle)
	}
	if rg.scene.Combo && i < len(graph.ComboTranslations) {
		model = model.Mul(math.NewMat4Translation(graph.ComboTranslations[i]))
	}
	return model
}
