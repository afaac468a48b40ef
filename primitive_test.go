package tagged

import (
	"testing"
)

func cube() *Primitive {
	return &Primitive{
		Base:  Solid{Shape: SHAPE_BOX, Size: [3]float64{2, 2, 2}},
		Cells: 8,
	}
}

func TestTessellateBox(t *testing.T) {
	data, err := cube().Tessellate(true)
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	if len(data.Polygons) == 0 || data.HasUV {
		t.Fatalf("got %d polygons, uv %v", len(data.Polygons), data.HasUV)
	}
	for _, p := range data.Polygons {
		if len(p) != 3 {
			t.Fatalf("polygon with %d corners", len(p))
		}
		if p[0].Normal != p[1].Normal || p[1].Normal != p[2].Normal {
			t.Errorf("corners of one triangle have different normals")
		}
		for _, c := range p {
			for k := 0; k < 3; k++ {
				if c.Position[k] < -1.1 || c.Position[k] > 1.1 {
					t.Fatalf("position %v outside the box", c.Position)
				}
			}
		}
	}
}

func TestTessellateMoved(t *testing.T) {
	p := &Primitive{
		Base:  Solid{Shape: SHAPE_SPHERE, Radius: 1, At: [3]float64{10, 0, 0}},
		Cells: 8,
	}
	data, err := p.Tessellate(false)
	if err != nil {
		t.Fatal(err)
	}
	for _, poly := range data.Polygons {
		for _, c := range poly {
			if c.Position[0] < 8.9 || c.Position[0] > 11.1 {
				t.Fatalf("position %v not around x=10", c.Position)
			}
		}
	}
}

func TestModifierStack(t *testing.T) {
	p := cube()
	p.Modifiers = []Modifier{{
		Op:    MODIFIER_DIFFERENCE,
		Solid: Solid{Shape: SHAPE_CYLINDER, Radius: 0.5, Height: 4},
	}}

	plain, err := p.Tessellate(false)
	if err != nil {
		t.Fatal(err)
	}
	base, err := cube().Tessellate(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(plain.Polygons) != len(base.Polygons) {
		t.Errorf("modifiers evaluated when not asked: %d != %d", len(plain.Polygons), len(base.Polygons))
	}

	drilled, err := p.Tessellate(true)
	if err != nil {
		t.Fatal(err)
	}
	if len(drilled.Polygons) == len(plain.Polygons) {
		t.Error("difference modifier did not change the surface")
	}
}

func TestPrimitiveErrors(t *testing.T) {
	bad := cube()
	bad.Modifiers = []Modifier{{Op: "smooth", Solid: Solid{Shape: SHAPE_SPHERE, Radius: 1}}}
	if _, err := bad.Tessellate(false); err != nil {
		t.Errorf("unused modifier stack failed: %v", err)
	}
	if _, err := bad.Tessellate(true); err == nil {
		t.Error("unknown modifier operation accepted")
	}

	shape := &Primitive{Base: Solid{Shape: "torus"}}
	if _, err := shape.Tessellate(false); err == nil {
		t.Error("unknown shape accepted")
	}
}

func TestEncodePrimitiveObject(t *testing.T) {
	b, err := EncodeObject(&Object{Name: "Crate", Type: ObjectMesh, Mesh: cube()}, DefaultOptions())
	if err != nil {
		t.Fatalf("EncodeObject: %v", err)
	}
	mb := b.Mesh
	if mb.Layout != LayoutP3N3 {
		t.Errorf("layout %v", mb.Layout)
	}
	// flat shading welds only corners sharing a face normal
	if mb.VertexCount() >= mb.TriangleCount()*3 {
		t.Errorf("nothing welded: %d vertices for %d triangles", mb.VertexCount(), mb.TriangleCount())
	}
}
