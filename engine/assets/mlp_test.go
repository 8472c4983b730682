package assets

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDescription() *MLPDescription {
	rows := func(rowCount, rowLen int, base float32) [][]float32 {
		out := make([][]float32, rowCount)
		v := base
		for i := range out {
			out[i] = make([]float32, rowLen)
			for j := range out[i] {
				out[i][j] = v
				v++
			}
		}
		return out
	}
	flat := func(n int, base float32) []float32 {
		out := make([]float32, n)
		for i := range out {
			out[i] = base + float32(i)
		}
		return out
	}
	return &MLPDescription{
		Weights0: rows(11, 16, 1),
		Bias0:    flat(Bias0Count, 1000),
		Weights1: rows(16, 16, 200),
		Bias1:    flat(Bias1Count, 2000),
		Weights2: rows(16, 3, 500),
		Bias2:    flat(Bias2RawCount, 3000),
		ObjNum:   1,
	}
}

func TestPadEveryFourth(t *testing.T) {
	packed := PadEveryFourth([]float32{1, 2, 3, 4, 5, 6})
	assert.Equal(t, []float32{1, 2, 3, 0, 4, 5, 6, 0}, packed)
}

func TestPadEveryFourthLength(t *testing.T) {
	for _, n := range []int{3, 6, 48} {
		src := make([]float32, n)
		for i := range src {
			src[i] = float32(i + 1)
		}
		packed := PadEveryFourth(src)
		assert.Len(t, packed, n+(n+2)/3)
		for i, f := range packed {
			if (i+1)%4 == 0 {
				assert.Zero(t, f, "expected zero pad at index %d", i)
			} else {
				assert.NotZero(t, f)
			}
		}
	}
}

func TestPadUnpadRoundTrip(t *testing.T) {
	src := make([]float32, Weights2RawCount)
	for i := range src {
		src[i] = float32(i) * 0.25
	}
	assert.Equal(t, src, UnpadEveryFourth(PadEveryFourth(src)))
}

func TestPackMLPLayout(t *testing.T) {
	desc := validDescription()
	w, err := PackMLP(desc)
	require.NoError(t, err)

	// Layers 0 and 1 are copied verbatim.
	assert.Equal(t, float32(1), w.Data[0])
	assert.Equal(t, float32(176), w.Data[Weights0Count-1])
	assert.Equal(t, float32(200), w.Data[Weights0Count])
	assert.Equal(t, float32(455), w.Data[Weights0Count+Weights1Count-1])

	// Layer 2 carries a zero at every 4th slot.
	layer2 := w.Data[Weights0Count+Weights1Count : Weights0Count+Weights1Count+Weights2Count]
	assert.Equal(t, float32(500), layer2[0])
	for i := 3; i < len(layer2); i += 4 {
		assert.Zero(t, layer2[i])
	}

	// Biases follow, with layer 2's bias padded the same way.
	biasBase := Weights0Count + Weights1Count + Weights2Count
	assert.Equal(t, float32(1000), w.Data[biasBase])
	assert.Equal(t, float32(2000), w.Data[biasBase+Bias0Count])
	assert.Equal(t, float32(3000), w.Data[biasBase+Bias0Count+Bias1Count])
	assert.Zero(t, w.Data[biasBase+Bias0Count+Bias1Count+3])
}

func TestPackMLPRejectsWrongShapes(t *testing.T) {
	mutations := []func(*MLPDescription){
		func(d *MLPDescription) { d.Weights0 = d.Weights0[1:] },
		func(d *MLPDescription) { d.Bias0 = d.Bias0[:Bias0Count-1] },
		func(d *MLPDescription) { d.Weights1 = append(d.Weights1, d.Weights1[0]) },
		func(d *MLPDescription) { d.Bias1 = append(d.Bias1, 1) },
		func(d *MLPDescription) { d.Weights2 = d.Weights2[:8] },
		func(d *MLPDescription) { d.Bias2 = d.Bias2[:1] },
	}
	for i, mutate := range mutations {
		desc := validDescription()
		mutate(desc)
		_, err := PackMLP(desc)
		assert.Error(t, err, "mutation %d should fail packing", i)
	}
}

func TestMLPWeightsByteSize(t *testing.T) {
	assert.Equal(t, 532, MLPElementCount)
	assert.Equal(t, 2128, MLPByteSize)

	w, err := PackMLP(validDescription())
	require.NoError(t, err)
	raw := w.Bytes()
	require.Len(t, raw, MLPByteSize)
	assert.Equal(t, uint32(0x3f800000), binary.LittleEndian.Uint32(raw[:4])) // 1.0f
}
