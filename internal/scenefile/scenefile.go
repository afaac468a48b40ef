// Package scenefile reads YAML scene descriptions and builds exportable
// scenes from them.
package scenefile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flywave/go3d/vec2"
	"gopkg.in/yaml.v3"

	tagged "github.com/flywave/go-tagged"
)

var (
	ErrUnknownScene = errors.New("scenefile: unknown scene")
	ErrBadObject    = errors.New("scenefile: bad object")
)

// File is the root of a scene description.
type File struct {
	Scenes []SceneDef `yaml:"scenes"`

	dir string
}

type SceneDef struct {
	Name string `yaml:"name"`
	// Gltf names a glTF or GLB file whose objects come before Objects.
	Gltf    string      `yaml:"gltf,omitempty"`
	Objects []ObjectDef `yaml:"objects"`
}

type ObjectDef struct {
	Name      string        `yaml:"name"`
	Type      string        `yaml:"type"`
	Primitive *SolidDef     `yaml:"primitive,omitempty"`
	Cells     int           `yaml:"cells,omitempty"`
	Modifiers []ModifierDef `yaml:"modifiers,omitempty"`
	Polygons  [][]CornerDef `yaml:"polygons,omitempty"`
	Axes      []AxisDef     `yaml:"axes,omitempty"`
	Camera    *CameraDef    `yaml:"camera,omitempty"`
}

type SolidDef struct {
	Shape  string     `yaml:"shape"`
	Size   [3]float64 `yaml:"size,omitempty"`
	Radius float64    `yaml:"radius,omitempty"`
	Height float64    `yaml:"height,omitempty"`
	At     [3]float64 `yaml:"at,omitempty"`
	Rotate [3]float64 `yaml:"rotate,omitempty"`
}

type ModifierDef struct {
	Op    string   `yaml:"op"`
	Solid SolidDef `yaml:",inline"`
}

type CornerDef struct {
	P  [3]float32  `yaml:"p"`
	N  [3]float32  `yaml:"n"`
	UV *[2]float32 `yaml:"uv,omitempty"`
}

// AxisDef gives the rotation either as a w, x, y, z quaternion or as Euler
// degrees applied X, then Y, then Z.
type AxisDef struct {
	Name     string      `yaml:"name"`
	Location [3]float32  `yaml:"location"`
	Rotation *[4]float32 `yaml:"rotation,omitempty"`
	Euler    *[3]float32 `yaml:"euler,omitempty"`
}

// CameraDef takes explicit row-major matrices or a look-at lens.
type CameraDef struct {
	Resolution  [2]int         `yaml:"resolution,omitempty"`
	PixelAspect [2]float32     `yaml:"pixel_aspect,omitempty"`
	View        *[4][4]float32 `yaml:"view,omitempty"`
	Projection  *[4][4]float32 `yaml:"projection,omitempty"`
	Eye         *[3]float32    `yaml:"eye,omitempty"`
	Target      [3]float32     `yaml:"target,omitempty"`
	Up          *[3]float32    `yaml:"up,omitempty"`
	FovY        float32        `yaml:"fov_y,omitempty"`
	Near        float32        `yaml:"near,omitempty"`
	Far         float32        `yaml:"far,omitempty"`
}

// Load reads a scene description. Relative glTF paths resolve against the
// directory of path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.dir = filepath.Dir(path)
	return f, nil
}

func Parse(data []byte) (*File, error) {
	f := &File{}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) SceneNames() []string {
	names := make([]string, len(f.Scenes))
	for i := range f.Scenes {
		names[i] = f.Scenes[i].Name
	}
	return names
}

// Scene finds a scene by name; an empty name picks the first scene.
func (f *File) Scene(name string) (*SceneDef, error) {
	if len(f.Scenes) == 0 {
		return nil, fmt.Errorf("no scenes: %w", ErrUnknownScene)
	}
	if name == "" {
		return &f.Scenes[0], nil
	}
	for i := range f.Scenes {
		if f.Scenes[i].Name == name {
			return &f.Scenes[i], nil
		}
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownScene)
}

// Build turns the named scene into a tagged scene. cells is the marching
// cubes resolution for primitives that do not set their own.
func (f *File) Build(name string, cells int) (*tagged.Scene, error) {
	def, err := f.Scene(name)
	if err != nil {
		return nil, err
	}
	return def.Build(f.dir, cells)
}

func (s *SceneDef) Build(dir string, cells int) (*tagged.Scene, error) {
	scene := tagged.NewScene(s.Name)
	if s.Gltf != "" {
		path := s.Gltf
		if !filepath.IsAbs(path) && dir != "" {
			path = filepath.Join(dir, path)
		}
		imported, err := tagged.OpenGltfScene(path)
		if err != nil {
			return nil, fmt.Errorf("scene %q: %w", s.Name, err)
		}
		scene.Objects = append(scene.Objects, imported.Objects...)
	}
	for i := range s.Objects {
		o, err := s.Objects[i].object(cells)
		if err != nil {
			return nil, fmt.Errorf("scene %q: %w", s.Name, err)
		}
		scene.Add(o)
	}
	return scene, nil
}

func (d *ObjectDef) object(cells int) (*tagged.Object, error) {
	o := &tagged.Object{Name: d.Name}
	switch d.Type {
	case "mesh", "":
		o.Type = tagged.ObjectMesh
		src, err := d.meshSource(cells)
		if err != nil {
			return nil, err
		}
		o.Mesh = src
	case "camera":
		if d.Camera == nil {
			return nil, fmt.Errorf("camera %q has no camera section: %w", d.Name, ErrBadObject)
		}
		params, err := d.Camera.params()
		if err != nil {
			return nil, fmt.Errorf("camera %q: %w", d.Name, err)
		}
		o.Type = tagged.ObjectCamera
		o.Camera = params
	case "empty":
		o.Type = tagged.ObjectEmpty
	default:
		return nil, fmt.Errorf("object %q of type %q: %w", d.Name, d.Type, ErrBadObject)
	}

	for i := range d.Axes {
		o.Axes = append(o.Axes, d.Axes[i].axis())
	}
	return o, nil
}

func (d *ObjectDef) meshSource(cells int) (tagged.MeshSource, error) {
	switch {
	case d.Primitive != nil && len(d.Polygons) > 0:
		return nil, fmt.Errorf("mesh %q has both primitive and polygons: %w", d.Name, ErrBadObject)
	case d.Primitive != nil:
		p := &tagged.Primitive{Base: d.Primitive.solid(), Cells: cells}
		if d.Cells > 0 {
			p.Cells = d.Cells
		}
		for _, m := range d.Modifiers {
			p.Modifiers = append(p.Modifiers, tagged.Modifier{Op: m.Op, Solid: m.Solid.solid()})
		}
		return p, nil
	case len(d.Polygons) > 0:
		polys := make([]tagged.Polygon, len(d.Polygons))
		for i, pd := range d.Polygons {
			poly := make(tagged.Polygon, len(pd))
			for j, c := range pd {
				poly[j] = tagged.Corner{Position: c.P, Normal: c.N}
				if c.UV != nil {
					uv := *c.UV
					poly[j].UV = (*vec2.T)(&uv)
				}
			}
			polys[i] = poly
		}
		return &tagged.PolygonMesh{Polygons: polys}, nil
	}
	return nil, fmt.Errorf("mesh %q has no geometry: %w", d.Name, ErrBadObject)
}

func (s *SolidDef) solid() tagged.Solid {
	return tagged.Solid{
		Shape:  s.Shape,
		Size:   s.Size,
		Radius: s.Radius,
		Height: s.Height,
		At:     s.At,
		Rotate: s.Rotate,
	}
}

func (a *AxisDef) axis() tagged.Axis {
	ax := tagged.Axis{Name: a.Name, Location: a.Location, WXYZ: [4]float32{1, 0, 0, 0}}
	switch {
	case a.Rotation != nil:
		ax.WXYZ = *a.Rotation
	case a.Euler != nil:
		ax.WXYZ = EulerToWXYZ(*a.Euler)
	}
	return ax
}
