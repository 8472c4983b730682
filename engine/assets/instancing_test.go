package assets

import (
	"testing"

	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstancingOffsetsCount(t *testing.T) {
	ii := InstancingInfo{
		Dim:      [3]int32{2, 3, 4},
		Interval: [3]float32{1, 1, 1},
	}
	require.NoError(t, ii.Validate())
	assert.Equal(t, uint32(24), ii.Count())
	assert.Len(t, ii.Offsets(), 24)
}

func TestInstancingSingleInstanceAtOrigin(t *testing.T) {
	ii := InstancingInfo{
		Dim:      [3]int32{1, 1, 1},
		Interval: [3]float32{2, 2, 2},
	}
	offsets := ii.Offsets()
	require.Len(t, offsets, 1)
	assert.Equal(t, math.NewVec3(0, 0, 0), offsets[0])
}

func TestInstancingLatticeIsCentered(t *testing.T) {
	ii := InstancingInfo{
		Dim:      [3]int32{2, 2, 2},
		Interval: [3]float32{1.5, 1.5, 1.5},
	}
	offsets := ii.Offsets()
	require.Len(t, offsets, 8)

	var sum math.Vec3
	for _, o := range offsets {
		sum = sum.Add(o)
	}
	assert.InDelta(t, 0, sum.X, 1e-6)
	assert.InDelta(t, 0, sum.Y, 1e-6)
	assert.InDelta(t, 0, sum.Z, 1e-6)

	// First corner sits at -interval/2 in every axis.
	assert.Equal(t, math.NewVec3(-0.75, -0.75, -0.75), offsets[0])
}

func TestInstancingIterationOrderIsZInnermost(t *testing.T) {
	ii := InstancingInfo{
		Dim:      [3]int32{2, 2, 2},
		Interval: [3]float32{1, 1, 1},
	}
	offsets := ii.Offsets()
	require.Len(t, offsets, 8)

	// Linear index advances z first, then y, then x.
	assert.Equal(t, offsets[0].X, offsets[1].X)
	assert.Equal(t, offsets[0].Y, offsets[1].Y)
	assert.NotEqual(t, offsets[0].Z, offsets[1].Z)

	assert.Equal(t, offsets[0].X, offsets[2].X)
	assert.NotEqual(t, offsets[0].Y, offsets[2].Y)

	assert.NotEqual(t, offsets[0].X, offsets[4].X)
}

func TestInstancingValidateRejectsNonPositive(t *testing.T) {
	cases := []InstancingInfo{
		{Dim: [3]int32{0, 1, 1}, Interval: [3]float32{1, 1, 1}},
		{Dim: [3]int32{1, -2, 1}, Interval: [3]float32{1, 1, 1}},
		{Dim: [3]int32{1, 1, 1}, Interval: [3]float32{0, 1, 1}},
		{Dim: [3]int32{1, 1, 1}, Interval: [3]float32{1, 1, -0.5}},
	}
	for _, ii := range cases {
		assert.Error(t, ii.Validate())
	}
}
