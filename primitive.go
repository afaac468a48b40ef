package tagged

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/flywave/go3d/vec3"
)

const DefaultPrimitiveCells = 64

const (
	SHAPE_BOX      = "box"
	SHAPE_SPHERE   = "sphere"
	SHAPE_CYLINDER = "cylinder"

	MODIFIER_UNION        = "union"
	MODIFIER_DIFFERENCE   = "difference"
	MODIFIER_INTERSECTION = "intersection"
)

// Solid is a centred SDF primitive placed in world space by At and Rotate
// (Euler degrees applied X, then Y, then Z).
type Solid struct {
	Shape  string
	Size   [3]float64
	Radius float64
	Height float64
	At     [3]float64
	Rotate [3]float64
}

// Modifier combines another solid with the base solid.
type Modifier struct {
	Op    string
	Solid Solid
}

// Primitive is a MeshSource that tessellates an SDF solid with marching
// cubes. Modifiers are the solid's modifier stack and are only evaluated when
// the exporter asks for it.
type Primitive struct {
	Base      Solid
	Modifiers []Modifier
	Cells     int
}

func (s *Solid) sdf3() (sdf.SDF3, error) {
	var base sdf.SDF3
	var err error
	switch s.Shape {
	case SHAPE_BOX:
		base, err = sdf.Box3D(v3.Vec{X: s.Size[0], Y: s.Size[1], Z: s.Size[2]}, 0)
	case SHAPE_SPHERE:
		base, err = sdf.Sphere3D(s.Radius)
	case SHAPE_CYLINDER:
		base, err = sdf.Cylinder3D(s.Height, s.Radius, 0)
	default:
		return nil, fmt.Errorf("unknown primitive shape %q", s.Shape)
	}
	if err != nil {
		return nil, fmt.Errorf("primitive %s: %w", s.Shape, err)
	}

	m := sdf.Translate3d(v3.Vec{X: s.At[0], Y: s.At[1], Z: s.At[2]})
	if s.Rotate != [3]float64{} {
		rx := s.Rotate[0] * math.Pi / 180.0
		ry := s.Rotate[1] * math.Pi / 180.0
		rz := s.Rotate[2] * math.Pi / 180.0
		m = m.Mul(sdf.RotateZ(rz).Mul(sdf.RotateY(ry)).Mul(sdf.RotateX(rx)))
	}
	return sdf.Transform3D(base, m), nil
}

func (p *Primitive) build(applyModifiers bool) (sdf.SDF3, error) {
	s, err := p.Base.sdf3()
	if err != nil {
		return nil, err
	}
	if !applyModifiers {
		return s, nil
	}
	for i := range p.Modifiers {
		mod := &p.Modifiers[i]
		o, err := mod.Solid.sdf3()
		if err != nil {
			return nil, fmt.Errorf("modifier %d: %w", i, err)
		}
		switch mod.Op {
		case MODIFIER_UNION:
			s = sdf.Union3D(s, o)
		case MODIFIER_DIFFERENCE:
			s = sdf.Difference3D(s, o)
		case MODIFIER_INTERSECTION:
			s = sdf.Intersect3D(s, o)
		default:
			return nil, fmt.Errorf("modifier %d: unknown operation %q", i, mod.Op)
		}
	}
	return s, nil
}

// Tessellate renders the solid into flat shaded triangles: every corner of a
// triangle carries the face normal.
func (p *Primitive) Tessellate(applyModifiers bool) (*MeshData, error) {
	s, err := p.build(applyModifiers)
	if err != nil {
		return nil, err
	}
	cells := p.Cells
	if cells <= 0 {
		cells = DefaultPrimitiveCells
	}
	triangles := render.ToTriangles(s, render.NewMarchingCubesUniform(cells))

	polys := make([]Polygon, 0, len(triangles))
	for _, tri := range triangles {
		n := tri.Normal()
		normal := vec3.T{float32(n.X), float32(n.Y), float32(n.Z)}
		poly := make(Polygon, 3)
		for j := 0; j < 3; j++ {
			v := tri[j]
			poly[j] = Corner{
				Position: vec3.T{float32(v.X), float32(v.Y), float32(v.Z)},
				Normal:   normal,
			}
		}
		polys = append(polys, poly)
	}
	return &MeshData{Polygons: polys}, nil
}
