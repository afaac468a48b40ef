package tagged

import (
	"github.com/flywave/go3d/mat4"
	"github.com/flywave/go3d/vec3"
)

type ObjectType int

const (
	ObjectMesh ObjectType = iota
	ObjectCamera
	// ObjectEmpty marks helper objects; they are not exported on their own.
	ObjectEmpty
)

func (t ObjectType) String() string {
	switch t {
	case ObjectMesh:
		return "mesh"
	case ObjectCamera:
		return "camera"
	default:
		return "empty"
	}
}

// MeshData is tessellated, world space geometry handed over by a scene
// source. Every corner of every polygon has a UV iff HasUV.
type MeshData struct {
	Polygons []Polygon
	HasUV    bool
}

// MeshSource produces the geometry of one mesh object. applyModifiers asks
// the source to evaluate its modifier stack first.
type MeshSource interface {
	Tessellate(applyModifiers bool) (*MeshData, error)
}

// PolygonMesh is a MeshSource over polygons that already exist in memory.
type PolygonMesh struct {
	Polygons []Polygon
}

func (p *PolygonMesh) Tessellate(bool) (*MeshData, error) {
	hasUV := false
	if len(p.Polygons) > 0 && len(p.Polygons[0]) > 0 {
		hasUV = p.Polygons[0][0].UV != nil
	}
	return &MeshData{Polygons: p.Polygons, HasUV: hasUV}, nil
}

// CameraParams are the camera values computed by the scene.
type CameraParams struct {
	Resolution  [2]int
	PixelAspect [2]float32
	View        mat4.T
	Projection  mat4.T
}

// Axis is a child marker in the scene's native convention: the rotation
// quaternion is scalar first (w, x, y, z).
type Axis struct {
	Name     string
	Location vec3.T
	WXYZ     [4]float32
}

type Object struct {
	Name   string
	Type   ObjectType
	Mesh   MeshSource
	Camera *CameraParams
	Axes   []Axis
}

type Scene struct {
	Name    string
	Objects []*Object
}

func NewScene(name string) *Scene {
	return &Scene{Name: name}
}

func (s *Scene) Add(o *Object) *Scene {
	s.Objects = append(s.Objects, o)
	return s
}

func (s *Scene) ObjectCount() int {
	return len(s.Objects)
}

// axisMarkers converts scene axes to block markers.
func axisMarkers(axes []Axis) []AxisMarker {
	if len(axes) == 0 {
		return nil
	}
	markers := make([]AxisMarker, len(axes))
	for i, a := range axes {
		markers[i] = AxisMarker{
			Name:     AxisName(a.Name),
			Location: a.Location,
			Rotation: FromWXYZ(a.WXYZ),
		}
	}
	return markers
}
