package assets

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/math"
)

// Validate rejects lattices with non-positive dimensions or intervals.
func (ii InstancingInfo) Validate() error {
	for i := 0; i < 3; i++ {
		if ii.Dim[i] <= 0 {
			return fmt.Errorf("instancing dimension must be positive, got %v", ii.Dim)
		}
		if ii.Interval[i] <= 0 {
			return fmt.Errorf("instancing interval must be positive, got %v", ii.Interval)
		}
	}
	return nil
}

// Count returns the total number of instances in the lattice.
func (ii InstancingInfo) Count() uint32 {
	return uint32(ii.Dim[0]) * uint32(ii.Dim[1]) * uint32(ii.Dim[2])
}

// Offsets produces one position offset per instance, forming a regular grid
// centered on the origin. The x/y/z nesting order fixes the linear instance
// index; shaders that map an instance ID back to a lattice coordinate rely
// on it.
func (ii InstancingInfo) Offsets() []math.Vec3 {
	corner := math.NewVec3(
		-ii.Interval[0]*0.5*float32(ii.Dim[0]-1),
		-ii.Interval[1]*0.5*float32(ii.Dim[1]-1),
		-ii.Interval[2]*0.5*float32(ii.Dim[2]-1),
	)

	offsets := make([]math.Vec3, 0, ii.Count())
	for x := int32(0); x < ii.Dim[0]; x++ {
		for y := int32(0); y < ii.Dim[1]; y++ {
			for z := int32(0); z < ii.Dim[2]; z++ {
				offsets = append(offsets, math.NewVec3(
					corner.X+ii.Interval[0]*float32(x),
					corner.Y+ii.Interval[1]*float32(y),
					corner.Z+ii.Interval[2]*float32(z),
				))
			}
		}
	}
	return offsets
}
