package tagged

import (
	"fmt"
	"math"

	dvec3 "github.com/flywave/go3d/float64/vec3"

	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
)

// Corner is one polygon corner as handed over by a scene source. UV is nil
// for meshes without texture coordinates.
type Corner struct {
	Position vec3.T  `json:"position"`
	Normal   vec3.T  `json:"normal"`
	UV       *vec2.T `json:"uv,omitempty"`
}

// Polygon lists its corners in winding order.
type Polygon []Corner

type MeshOptions struct {
	HasUV   bool
	FlipUV  bool
	Policy  TrianglePolicy
	Dialect Dialect
}

// MeshBlock is an encoded, welded triangle mesh ready to be written.
type MeshBlock struct {
	Name      string                `json:"name"`
	Triangles [][3]uint32           `json:"triangles"`
	Vertices  []RawVertexAttributes `json:"vertices"`
	Layout    VertexLayout          `json:"layout"`
	IndexType IndexType             `json:"indexType"`
	Axes      []AxisMarker          `json:"axes,omitempty"`
}

func (m *MeshBlock) TriangleCount() int {
	return len(m.Triangles)
}

func (m *MeshBlock) VertexCount() int {
	return len(m.Vertices)
}

// EncodeMesh welds and triangulates the polygons of one mesh. The whole block
// fails on the first bad polygon; no partial block is returned.
func EncodeMesh(name string, polygons []Polygon, opts MeshOptions, axes []AxisMarker) (*MeshBlock, error) {
	layout := LayoutP3N3
	if opts.HasUV {
		layout = LayoutP3N3M2
	}

	welder := NewWelder()
	var tris [][3]uint32
	attrs := make([]RawVertexAttributes, 0, 4)

	for pi, poly := range polygons {
		if len(poly) < 3 {
			return nil, fmt.Errorf("mesh %q polygon %d: %w", name, pi, ErrInvalidGeometry)
		}
		attrs = attrs[:0]
		for ci := range poly {
			c := &poly[ci]
			if (c.UV != nil) != opts.HasUV {
				return nil, fmt.Errorf("mesh %q polygon %d corner %d: %w", name, pi, ci, ErrInconsistentVertexFormat)
			}
			a := RawVertexAttributes{Position: c.Position, Normal: c.Normal}
			if opts.HasUV {
				a.HasUV = true
				a.UV = *c.UV
				if opts.FlipUV {
					a.UV = FlipV(a.UV)
				}
			}
			attrs = append(attrs, a)
		}

		local, err := Triangulate(len(poly), opts.Policy)
		if err != nil {
			return nil, fmt.Errorf("mesh %q polygon %d: %w", name, pi, err)
		}
		for _, t := range local {
			tris = append(tris, [3]uint32{
				uint32(welder.GetOrInsert(attrs[t[0]])),
				uint32(welder.GetOrInsert(attrs[t[1]])),
				uint32(welder.GetOrInsert(attrs[t[2]])),
			})
		}
	}

	idxType := Index16
	if welder.Len() > math.MaxUint16+1 {
		if opts.Dialect == DialectLegacy {
			return nil, fmt.Errorf("mesh %q has %d vertices: %w", name, welder.Len(), ErrIndexOverflow)
		}
		idxType = Index32
	}

	mb := &MeshBlock{
		Name:      name,
		Triangles: tris,
		Vertices:  welder.Vertices(),
		Layout:    layout,
		IndexType: idxType,
	}
	if len(axes) > 0 {
		mb.Axes = axes
	}
	return mb, nil
}

// Bounds is the axis aligned box of the welded positions.
func (m *MeshBlock) Bounds() *[6]float64 {
	minX := math.MaxFloat64
	minY := math.MaxFloat64
	minZ := math.MaxFloat64
	maxX := -math.MaxFloat64
	maxY := -math.MaxFloat64
	maxZ := -math.MaxFloat64
	for i := range m.Vertices {
		p := &m.Vertices[i].Position
		minX = math.Min(minX, float64(p[0]))
		minY = math.Min(minY, float64(p[1]))
		minZ = math.Min(minZ, float64(p[2]))

		maxX = math.Max(maxX, float64(p[0]))
		maxY = math.Max(maxY, float64(p[1]))
		maxZ = math.Max(maxZ, float64(p[2]))
	}
	return &[6]float64{minX, minY, minZ, maxX, maxY, maxZ}
}

func boundsBox(bx *[6]float64) dvec3.Box {
	return dvec3.Box{
		Min: dvec3.T{bx[0], bx[1], bx[2]},
		Max: dvec3.T{bx[3], bx[4], bx[5]},
	}
}
