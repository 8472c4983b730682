package assets

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/spaghettifunk/lumen/engine/core"
)

// The fragment-shader MLP expects its weights in one flat uniform buffer with
// a fixed layout: layer 0 and 1 weights row-major, then layer 2 weights with
// a zero inserted after every third element so each output row occupies a
// full 16-byte vec4, then the three bias vectors with the same padding rule
// applied to layer 2. The counts below are padded sizes.
const (
	Weights0Count = 176
	Weights1Count = 256
	Weights2Count = 64
	Bias0Count    = 16
	Bias1Count    = 16
	Bias2Count    = 4

	// Raw (unpadded) sizes of the third layer.
	Weights2RawCount = Weights2Count - Weights2Count/4
	Bias2RawCount    = Bias2Count - Bias2Count/4

	// Total packed element count and byte size of the weights buffer.
	MLPElementCount = Weights0Count + Weights1Count + Weights2Count +
		Bias0Count + Bias1Count + Bias2Count
	MLPByteSize = MLPElementCount * 4
)

// MLPWeights is the packed weights buffer uploaded as-is to the GPU. One
// instance is shared by every sub-model of the same top-level model.
type MLPWeights struct {
	Data [MLPElementCount]float32
}

// Bytes serializes the packed buffer little-endian, matching the device
// memory layout the shader indexes into.
func (w *MLPWeights) Bytes() []byte {
	out := make([]byte, MLPByteSize)
	for i, f := range w.Data {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}

// MLPDescription mirrors the baked mlp.json document: three weight matrices
// as row lists, three flat bias vectors, and the number of sub-models that
// share this MLP.
type MLPDescription struct {
	Weights0 [][]float32 `json:"0_weights"`
	Bias0    []float32   `json:"0_bias"`
	Weights1 [][]float32 `json:"1_weights"`
	Bias1    []float32   `json:"1_bias"`
	Weights2 [][]float32 `json:"2_weights"`
	Bias2    []float32   `json:"2_bias"`
	ObjNum   int         `json:"obj_num"`
}

// LoadMLP reads and packs the mlp.json under the given model directory.
// It returns the packed buffer and the sub-model count.
func LoadMLP(path string) (*MLPWeights, int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		err := fmt.Errorf("failed to open mlp data %s: %w", path, err)
		core.LogError(err.Error())
		return nil, 0, err
	}
	core.LogInfo("Parsing mlp data %s", path)

	var desc MLPDescription
	if err := json.Unmarshal(raw, &desc); err != nil {
		err := fmt.Errorf("malformed mlp data %s: %w", path, err)
		core.LogError(err.Error())
		return nil, 0, err
	}
	w, err := PackMLP(&desc)
	if err != nil {
		return nil, 0, err
	}
	if desc.ObjNum < 1 {
		return nil, 0, fmt.Errorf("mlp data %s has a non-positive obj_num %d", path, desc.ObjNum)
	}
	return w, desc.ObjNum, nil
}

// PackMLP flattens and packs the description into the fixed buffer layout.
// A count that does not match the network's fixed shape is a hard error; the
// shader would read garbage from a partially filled buffer.
func PackMLP(desc *MLPDescription) (*MLPWeights, error) {
	weights0 := flatten(desc.Weights0)
	if len(weights0) != Weights0Count {
		return nil, fmt.Errorf("mlp layer 0 weights count is %d, rather than %d", len(weights0), Weights0Count)
	}
	if len(desc.Bias0) != Bias0Count {
		return nil, fmt.Errorf("mlp layer 0 bias count is %d, rather than %d", len(desc.Bias0), Bias0Count)
	}
	weights1 := flatten(desc.Weights1)
	if len(weights1) != Weights1Count {
		return nil, fmt.Errorf("mlp layer 1 weights count is %d, rather than %d", len(weights1), Weights1Count)
	}
	if len(desc.Bias1) != Bias1Count {
		return nil, fmt.Errorf("mlp layer 1 bias count is %d, rather than %d", len(desc.Bias1), Bias1Count)
	}
	weights2 := flatten(desc.Weights2)
	if len(weights2) != Weights2RawCount {
		return nil, fmt.Errorf("mlp layer 2 weights count is %d, rather than %d", len(weights2), Weights2RawCount)
	}
	if len(desc.Bias2) != Bias2RawCount {
		return nil, fmt.Errorf("mlp layer 2 bias count is %d, rather than %d", len(desc.Bias2), Bias2RawCount)
	}

	w := &MLPWeights{}
	cursor := 0
	cursor += copy(w.Data[cursor:], weights0)
	cursor += copy(w.Data[cursor:], weights1)
	cursor += copy(w.Data[cursor:], PadEveryFourth(weights2))
	cursor += copy(w.Data[cursor:], desc.Bias0)
	cursor += copy(w.Data[cursor:], desc.Bias1)
	copy(w.Data[cursor:], PadEveryFourth(desc.Bias2))
	return w, nil
}

// PadEveryFourth copies src inserting a zero at every 4th output position, so
// three source elements fill each 16-byte vec4 slot.
func PadEveryFourth(src []float32) []float32 {
	out := make([]float32, len(src)+(len(src)+2)/3)
	raw := 0
	for i := range out {
		if (i+1)%4 == 0 || raw >= len(src) {
			out[i] = 0
		} else {
			out[i] = src[raw]
			raw++
		}
	}
	return out
}

// UnpadEveryFourth inverts PadEveryFourth, dropping every 4th element.
func UnpadEveryFourth(packed []float32) []float32 {
	out := make([]float32, 0, len(packed)-len(packed)/4)
	for i, f := range packed {
		if (i+1)%4 == 0 {
			continue
		}
		out = append(out, f)
	}
	return out
}

func flatten(rows [][]float32) []float32 {
	var out []float32
	for _, row := range rows {
		out = append(out, row...)
	}
	return out
}
