package tagged

import (
	"math"

	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
)

// RawVertexAttributes is one polygon corner after attribute lookup.
type RawVertexAttributes struct {
	Position vec3.T
	Normal   vec3.T
	UV       vec2.T
	HasUV    bool
}

// VertexKey is the weld identity of a vertex: the bit patterns of every
// component. Two corners weld only if all bits agree, so -0 and +0 stay
// apart and no tolerance is ever applied.
type VertexKey [9]uint32

func (a *RawVertexAttributes) Key() VertexKey {
	var k VertexKey
	for i := 0; i < 3; i++ {
		k[i] = math.Float32bits(a.Position[i])
		k[3+i] = math.Float32bits(a.Normal[i])
	}
	if a.HasUV {
		k[6] = math.Float32bits(a.UV[0])
		k[7] = math.Float32bits(a.UV[1])
		k[8] = 1
	}
	return k
}

// Flatten appends the row components in output order.
func (a *RawVertexAttributes) Flatten(dst []float32) []float32 {
	dst = append(dst, a.Position[:]...)
	dst = append(dst, a.Normal[:]...)
	if a.HasUV {
		dst = append(dst, a.UV[:]...)
	}
	return dst
}

// Welder deduplicates vertices of a single mesh block. Indices are dense and
// handed out in first-seen order. A Welder is not safe for concurrent use and
// must not be shared between blocks.
type Welder struct {
	vertices []RawVertexAttributes
	indices  map[VertexKey]int
}

func NewWelder() *Welder {
	return &Welder{indices: make(map[VertexKey]int)}
}

// GetOrInsert returns the index of attrs, appending it if the key is new.
func (w *Welder) GetOrInsert(attrs RawVertexAttributes) int {
	k := attrs.Key()
	if idx, ok := w.indices[k]; ok {
		return idx
	}
	idx := len(w.vertices)
	w.indices[k] = idx
	w.vertices = append(w.vertices, attrs)
	return idx
}

func (w *Welder) Len() int {
	return len(w.vertices)
}

// Vertices returns the welded sequence in weld order.
func (w *Welder) Vertices() []RawVertexAttributes {
	return w.vertices
}

// FlipV converts between lower-left and upper-left texture origins.
// Applying it twice gives back the input.
func FlipV(uv vec2.T) vec2.T {
	return vec2.T{uv[0], 1.0 - uv[1]}
}
