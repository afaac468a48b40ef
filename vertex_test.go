package tagged

import (
	"math"
	"testing"

	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
)

func attrs(p, n vec3.T, uv *vec2.T) RawVertexAttributes {
	a := RawVertexAttributes{Position: p, Normal: n}
	if uv != nil {
		a.UV = *uv
		a.HasUV = true
	}
	return a
}

// TestWeldIdempotence inserts one value many times.
func TestWeldIdempotence(t *testing.T) {
	w := NewWelder()
	a := attrs(vec3.T{1, 2, 3}, vec3.T{0, 0, 1}, &vec2.T{0.25, 0.75})
	for i := 0; i < 10; i++ {
		if idx := w.GetOrInsert(a); idx != 0 {
			t.Fatalf("insert %d returned %d, want 0", i, idx)
		}
	}
	if w.Len() != 1 {
		t.Errorf("Len() = %d, want 1", w.Len())
	}
}

// TestWeldOrder checks that indices follow first occurrence only.
func TestWeldOrder(t *testing.T) {
	a := attrs(vec3.T{0, 0, 0}, vec3.T{0, 0, 1}, nil)
	b := attrs(vec3.T{1, 0, 0}, vec3.T{0, 0, 1}, nil)
	c := attrs(vec3.T{0, 1, 0}, vec3.T{0, 0, 1}, nil)

	tests := []struct {
		name  string
		input []RawVertexAttributes
		want  []int
	}{
		{"distinct", []RawVertexAttributes{a, b, c}, []int{0, 1, 2}},
		{"repeats", []RawVertexAttributes{b, b, a, b, c, a}, []int{0, 0, 1, 0, 2, 1}},
		{"late repeats", []RawVertexAttributes{c, a, b, c, c, c, b}, []int{0, 1, 2, 0, 0, 0, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWelder()
			for i, v := range tt.input {
				if got := w.GetOrInsert(v); got != tt.want[i] {
					t.Errorf("insert %d = %d, want %d", i, got, tt.want[i])
				}
			}
			if w.Len() != 3 {
				t.Errorf("Len() = %d, want 3", w.Len())
			}
			first := tt.input[0]
			if w.Vertices()[0] != first {
				t.Errorf("first vertex %+v, want %+v", w.Vertices()[0], first)
			}
		})
	}
}

// TestWeldBitExact keeps values apart that only compare equal as floats.
func TestWeldBitExact(t *testing.T) {
	negZero := float32(math.Copysign(0, -1))
	w := NewWelder()
	w.GetOrInsert(attrs(vec3.T{0, 0, 0}, vec3.T{0, 0, 1}, nil))
	if idx := w.GetOrInsert(attrs(vec3.T{negZero, 0, 0}, vec3.T{0, 0, 1}, nil)); idx != 1 {
		t.Errorf("-0 welded onto +0")
	}
	if idx := w.GetOrInsert(attrs(vec3.T{0, 0, 0}, vec3.T{0, 0, 1}, &vec2.T{0, 0})); idx != 2 {
		t.Errorf("vertex with zero UV welded onto vertex without UV")
	}
	if idx := w.GetOrInsert(attrs(vec3.T{0, 0, 1e-7}, vec3.T{0, 0, 1}, nil)); idx != 3 {
		t.Errorf("nearly equal positions welded")
	}
}

func TestFlatten(t *testing.T) {
	a := attrs(vec3.T{1, 2, 3}, vec3.T{4, 5, 6}, &vec2.T{7, 8})
	got := a.Flatten(nil)
	want := []float32{1, 2, 3, 4, 5, 6, 7, 8}
	if len(got) != len(want) {
		t.Fatalf("Flatten() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Flatten() = %v, want %v", got, want)
		}
	}
	a.HasUV = false
	if n := len(a.Flatten(nil)); n != 6 {
		t.Errorf("Flatten() without UV has %d components", n)
	}
}

// TestFlipVInvolution uses values whose complement is exact in float32.
func TestFlipVInvolution(t *testing.T) {
	for _, uv := range []vec2.T{{0, 0}, {0.25, 0.75}, {1, 1}, {0.5, 0.125}, {3, -2}} {
		once := FlipV(uv)
		if once[0] != uv[0] {
			t.Errorf("FlipV(%v) changed u", uv)
		}
		if once[1] != 1-uv[1] {
			t.Errorf("FlipV(%v) = %v", uv, once)
		}
		if twice := FlipV(once); twice != uv {
			t.Errorf("FlipV(FlipV(%v)) = %v", uv, twice)
		}
	}
}

func TestFlattenMatchesLayout(t *testing.T) {
	tests := []struct {
		layout VertexLayout
		uv     *vec2.T
	}{
		{LayoutP3N3, nil},
		{LayoutP3N3M2, &vec2.T{0.5, 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.layout.Tag(DialectCurrent), func(t *testing.T) {
			a := attrs(vec3.T{1, 2, 3}, vec3.T{0, 0, 1}, tt.uv)
			if n := len(a.Flatten(nil)); n != tt.layout.Components() {
				t.Errorf("Flatten() has %d floats, layout declares %d", n, tt.layout.Components())
			}
		})
	}
}
