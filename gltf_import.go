package tagged

import (
	"encoding/binary"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/flywave/go3d/mat4"
	"github.com/flywave/go3d/quaternion"
	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
	"github.com/qmuntal/gltf"
)

const (
	gltfDefaultWidth  = 1920
	gltfDefaultHeight = 1080
)

// GltfToScene turns a glTF document into a scene. Mesh nodes become mesh
// objects with world space geometry, their childless helper children become
// axes and camera nodes become cameras.
type GltfToScene struct {
	doc   *gltf.Document
	scene *Scene
	names nameSet
}

func (g *GltfToScene) Convert(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return SceneFromGltf(name, doc)
}

func OpenGltfScene(path string) (*Scene, error) {
	g := &GltfToScene{}
	return g.Convert(path)
}

// SceneFromGltf walks the default scene of doc, or every root node when the
// document has no scenes.
func SceneFromGltf(name string, doc *gltf.Document) (*Scene, error) {
	g := &GltfToScene{doc: doc, scene: NewScene(name), names: make(nameSet)}
	for _, root := range g.roots() {
		if err := g.visit(root, mat4.Ident); err != nil {
			return nil, err
		}
	}
	return g.scene, nil
}

func (g *GltfToScene) roots() []uint32 {
	doc := g.doc
	if len(doc.Scenes) > 0 {
		si := uint32(0)
		if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
			si = *doc.Scene
		}
		return doc.Scenes[si].Nodes
	}
	isChild := make(map[uint32]bool)
	for _, nd := range doc.Nodes {
		for _, c := range nd.Children {
			isChild[c] = true
		}
	}
	var roots []uint32
	for i := range doc.Nodes {
		if !isChild[uint32(i)] {
			roots = append(roots, uint32(i))
		}
	}
	return roots
}

func (g *GltfToScene) nodeName(idx uint32) string {
	nd := g.doc.Nodes[idx]
	if nd.Name != "" {
		return nd.Name
	}
	if nd.Mesh != nil && int(*nd.Mesh) < len(g.doc.Meshes) && g.doc.Meshes[*nd.Mesh].Name != "" {
		return g.doc.Meshes[*nd.Mesh].Name
	}
	return fmt.Sprintf("node%d", idx)
}

func (g *GltfToScene) visit(idx uint32, parent mat4.T) error {
	if int(idx) >= len(g.doc.Nodes) {
		return fmt.Errorf("gltf node %d: %w", idx, ErrInvalidGeometry)
	}
	nd := g.doc.Nodes[idx]
	world := mulMat(&parent, localMatrix(nd))

	switch {
	case nd.Mesh != nil:
		obj, err := g.meshObject(idx, &world)
		if err != nil {
			return err
		}
		g.scene.Add(obj)
	case nd.Camera != nil:
		obj, err := g.cameraObject(idx, &world)
		if err != nil {
			return err
		}
		g.scene.Add(obj)
	}

	for _, c := range nd.Children {
		if int(c) >= len(g.doc.Nodes) {
			return fmt.Errorf("gltf node %d child %d: %w", idx, c, ErrInvalidGeometry)
		}
		// helpers below a mesh were taken as axes
		if nd.Mesh != nil && isHelper(g.doc.Nodes[c]) {
			continue
		}
		if err := g.visit(c, world); err != nil {
			return err
		}
	}
	return nil
}

func isHelper(nd *gltf.Node) bool {
	return nd.Mesh == nil && nd.Camera == nil && len(nd.Children) == 0
}

func (g *GltfToScene) meshObject(idx uint32, world *mat4.T) (*Object, error) {
	nd := g.doc.Nodes[idx]
	// nodes instancing one mesh share its name
	name := g.names.unique(g.nodeName(idx))
	if int(*nd.Mesh) >= len(g.doc.Meshes) {
		return nil, fmt.Errorf("gltf node %q mesh %d: %w", name, *nd.Mesh, ErrInvalidGeometry)
	}
	mh := g.doc.Meshes[*nd.Mesh]

	data := &MeshData{}
	for pi, ps := range mh.Primitives {
		if ps.Mode != gltf.PrimitiveTriangles {
			continue
		}
		polys, hasUV, err := g.primitivePolygons(ps, world)
		if err != nil {
			return nil, fmt.Errorf("gltf mesh %q primitive %d: %w", name, pi, err)
		}
		if len(data.Polygons) > 0 && hasUV != data.HasUV {
			return nil, fmt.Errorf("gltf mesh %q primitive %d: %w", name, pi, ErrInconsistentVertexFormat)
		}
		if len(data.Polygons) == 0 {
			data.HasUV = hasUV
		}
		data.Polygons = append(data.Polygons, polys...)
	}

	obj := &Object{
		Name: name,
		Type: ObjectMesh,
		Mesh: &PolygonMesh{Polygons: data.Polygons},
	}
	for _, c := range nd.Children {
		child := g.doc.Nodes[c]
		if !isHelper(child) {
			continue
		}
		t, r, _ := nodeTRS(child)
		obj.Axes = append(obj.Axes, Axis{
			Name:     g.nodeName(c),
			Location: t,
			WXYZ:     ToWXYZ(r),
		})
	}
	return obj, nil
}

func (g *GltfToScene) primitivePolygons(ps *gltf.Primitive, world *mat4.T) ([]Polygon, bool, error) {
	posIdx, ok := ps.Attributes["POSITION"]
	if !ok {
		return nil, false, fmt.Errorf("no POSITION attribute: %w", ErrInvalidGeometry)
	}
	positions, err := g.readVec3(posIdx)
	if err != nil {
		return nil, false, err
	}

	var normals []vec3.T
	if idx, ok := ps.Attributes["NORMAL"]; ok {
		if normals, err = g.readVec3(idx); err != nil {
			return nil, false, err
		}
		if len(normals) != len(positions) {
			return nil, false, fmt.Errorf("NORMAL count %d != POSITION count %d: %w", len(normals), len(positions), ErrInvalidGeometry)
		}
	}

	var uvs []vec2.T
	if idx, ok := ps.Attributes["TEXCOORD_0"]; ok {
		if uvs, err = g.readVec2(idx); err != nil {
			return nil, false, err
		}
		if len(uvs) != len(positions) {
			return nil, false, fmt.Errorf("TEXCOORD_0 count %d != POSITION count %d: %w", len(uvs), len(positions), ErrInvalidGeometry)
		}
	}

	var indices []uint32
	if ps.Indices != nil {
		if indices, err = g.readIndices(*ps.Indices); err != nil {
			return nil, false, err
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	if len(indices)%3 != 0 {
		return nil, false, fmt.Errorf("%d indices: %w", len(indices), ErrInvalidGeometry)
	}

	polys := make([]Polygon, 0, len(indices)/3)
	for t := 0; t < len(indices); t += 3 {
		poly := make(Polygon, 3)
		for j := 0; j < 3; j++ {
			vi := indices[t+j]
			if int(vi) >= len(positions) {
				return nil, false, fmt.Errorf("index %d of %d vertices: %w", vi, len(positions), ErrInvalidGeometry)
			}
			poly[j].Position = transformPoint(world, positions[vi])
			if normals != nil {
				poly[j].Normal = transformDir(world, normals[vi])
			}
			if uvs != nil {
				// glTF puts the UV origin at the top left
				uv := FlipV(uvs[vi])
				poly[j].UV = &uv
			}
		}
		if normals == nil {
			n := faceNormal(&poly[0].Position, &poly[1].Position, &poly[2].Position)
			for j := range poly {
				poly[j].Normal = n
			}
		}
		polys = append(polys, poly)
	}
	return polys, uvs != nil, nil
}

func (g *GltfToScene) cameraObject(idx uint32, world *mat4.T) (*Object, error) {
	nd := g.doc.Nodes[idx]
	name := g.names.unique(g.nodeName(idx))
	if int(*nd.Camera) >= len(g.doc.Cameras) {
		return nil, fmt.Errorf("gltf node %q camera %d: %w", name, *nd.Camera, ErrInvalidGeometry)
	}
	cam := g.doc.Cameras[*nd.Camera]

	params := &CameraParams{
		Resolution:  [2]int{gltfDefaultWidth, gltfDefaultHeight},
		PixelAspect: [2]float32{1, 1},
	}
	view, ok := invertMat(world)
	if !ok {
		return nil, fmt.Errorf("gltf camera %q has a singular transform: %w", name, ErrInvalidGeometry)
	}
	params.View = view

	switch {
	case cam.Perspective != nil:
		p := cam.Perspective
		aspect := float32(gltfDefaultWidth) / float32(gltfDefaultHeight)
		if p.AspectRatio != nil && float32(*p.AspectRatio) > 0 {
			aspect = float32(*p.AspectRatio)
			params.Resolution[0] = int(math.Round(float64(gltfDefaultHeight) * float64(aspect)))
		}
		zfar := float32(0)
		if p.Zfar != nil {
			zfar = float32(*p.Zfar)
		}
		params.Projection = perspectiveMat(float32(p.Yfov), aspect, float32(p.Znear), zfar)
	case cam.Orthographic != nil:
		o := cam.Orthographic
		params.Projection = orthographicMat(float32(o.Xmag), float32(o.Ymag), float32(o.Znear), float32(o.Zfar))
	default:
		return nil, fmt.Errorf("gltf camera %q has no projection: %w", name, ErrInvalidGeometry)
	}

	return &Object{Name: name, Type: ObjectCamera, Camera: params}, nil
}

func componentSize(ct gltf.ComponentType) int {
	switch ct {
	case gltf.ComponentByte, gltf.ComponentUbyte:
		return 1
	case gltf.ComponentShort, gltf.ComponentUshort:
		return 2
	default:
		return 4
	}
}

func componentCount(at gltf.AccessorType) int {
	switch at {
	case gltf.AccessorVec2:
		return 2
	case gltf.AccessorVec3:
		return 3
	case gltf.AccessorVec4, gltf.AccessorMat2:
		return 4
	case gltf.AccessorMat3:
		return 9
	case gltf.AccessorMat4:
		return 16
	default:
		return 1
	}
}

// accessorData returns the element rows of an accessor, honouring the byte
// stride of its buffer view.
func (g *GltfToScene) accessorData(idx uint32) ([][]byte, *gltf.Accessor, error) {
	doc := g.doc
	if int(idx) >= len(doc.Accessors) {
		return nil, nil, fmt.Errorf("accessor %d: %w", idx, ErrInvalidGeometry)
	}
	acc := doc.Accessors[idx]
	if acc.BufferView == nil || int(*acc.BufferView) >= len(doc.BufferViews) {
		return nil, nil, fmt.Errorf("accessor %d has no buffer view: %w", idx, ErrInvalidGeometry)
	}
	view := doc.BufferViews[*acc.BufferView]
	if int(view.Buffer) >= len(doc.Buffers) {
		return nil, nil, fmt.Errorf("buffer view %d: %w", *acc.BufferView, ErrInvalidGeometry)
	}
	data := doc.Buffers[view.Buffer].Data

	elem := componentSize(acc.ComponentType) * componentCount(acc.Type)
	stride := int(view.ByteStride)
	if stride == 0 {
		stride = elem
	}
	start := int(view.ByteOffset) + int(acc.ByteOffset)
	rows := make([][]byte, acc.Count)
	for i := range rows {
		b := start + i*stride
		if b+elem > len(data) || b+elem > int(view.ByteOffset+view.ByteLength) {
			return nil, nil, fmt.Errorf("accessor %d overruns its buffer: %w", idx, ErrInvalidGeometry)
		}
		rows[i] = data[b : b+elem]
	}
	return rows, acc, nil
}

func readFloats(row []byte, dst []float32) {
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(row[i*4:]))
	}
}

func (g *GltfToScene) readVec3(idx uint32) ([]vec3.T, error) {
	rows, acc, err := g.accessorData(idx)
	if err != nil {
		return nil, err
	}
	if acc.ComponentType != gltf.ComponentFloat || acc.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("accessor %d is not a float VEC3: %w", idx, ErrInvalidGeometry)
	}
	out := make([]vec3.T, len(rows))
	for i, r := range rows {
		readFloats(r, out[i][:])
	}
	return out, nil
}

func (g *GltfToScene) readVec2(idx uint32) ([]vec2.T, error) {
	rows, acc, err := g.accessorData(idx)
	if err != nil {
		return nil, err
	}
	if acc.ComponentType != gltf.ComponentFloat || acc.Type != gltf.AccessorVec2 {
		return nil, fmt.Errorf("accessor %d is not a float VEC2: %w", idx, ErrInvalidGeometry)
	}
	out := make([]vec2.T, len(rows))
	for i, r := range rows {
		readFloats(r, out[i][:])
	}
	return out, nil
}

func (g *GltfToScene) readIndices(idx uint32) ([]uint32, error) {
	rows, acc, err := g.accessorData(idx)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("index accessor %d is not SCALAR: %w", idx, ErrInvalidGeometry)
	}
	out := make([]uint32, len(rows))
	for i, r := range rows {
		switch acc.ComponentType {
		case gltf.ComponentUbyte:
			out[i] = uint32(r[0])
		case gltf.ComponentUshort:
			out[i] = uint32(binary.LittleEndian.Uint16(r))
		case gltf.ComponentUint:
			out[i] = binary.LittleEndian.Uint32(r)
		default:
			return nil, fmt.Errorf("index accessor %d component type %d: %w", idx, acc.ComponentType, ErrInvalidGeometry)
		}
	}
	return out, nil
}

// nodeTRS returns translation, rotation and scale. Unset fields of hand
// built nodes read as zero and are replaced by their identity.
func nodeTRS(nd *gltf.Node) (vec3.T, quaternion.T, vec3.T) {
	t := vec3.T{float32(nd.Translation[0]), float32(nd.Translation[1]), float32(nd.Translation[2])}
	r := quaternion.T{float32(nd.Rotation[0]), float32(nd.Rotation[1]), float32(nd.Rotation[2]), float32(nd.Rotation[3])}
	s := vec3.T{float32(nd.Scale[0]), float32(nd.Scale[1]), float32(nd.Scale[2])}
	if r == (quaternion.T{}) {
		r = quaternion.Ident
	}
	if s == (vec3.T{}) {
		s = vec3.T{1, 1, 1}
	}
	return t, r, s
}

func localMatrix(nd *gltf.Node) *mat4.T {
	var m mat4.T
	zero := true
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			m[c][r] = float32(nd.Matrix[c*4+r])
			if m[c][r] != 0 {
				zero = false
			}
		}
	}
	if !zero && m != mat4.Ident {
		return &m
	}
	t, q, s := nodeTRS(nd)
	m = trsMatrix(&t, &q, &s)
	return &m
}

// trsMatrix is T * R * S.
func trsMatrix(t *vec3.T, q *quaternion.T, s *vec3.T) mat4.T {
	var rot mat4.T
	rot.AssignQuaternion(q)
	scale := mat4.Ident
	scale.ScaleVec3(s)
	var m mat4.T
	m.AssignMul(&rot, &scale)
	m.SetTranslation(t)
	return m
}

func mulMat(a, b *mat4.T) mat4.T {
	var m mat4.T
	m.AssignMul(a, b)
	return m
}

func transformPoint(m *mat4.T, p vec3.T) vec3.T {
	return m.MulVec3W(&p, 1)
}

func transformDir(m *mat4.T, d vec3.T) vec3.T {
	out := m.MulVec3W(&d, 0)
	if out.Length() > 0 {
		out.Normalize()
	}
	return out
}

func faceNormal(a, b, c *vec3.T) vec3.T {
	e1 := vec3.Sub(b, a)
	e2 := vec3.Sub(c, a)
	n := vec3.Cross(&e1, &e2)
	if n.Length() > 0 {
		n.Normalize()
	}
	return n
}

// invertMat returns the inverse of m, or false when m is singular.
func invertMat(m *mat4.T) (mat4.T, bool) {
	if math32.Abs(m.Determinant()) < 1e-12 {
		return mat4.T{}, false
	}
	return m.Inverted(), true
}

// perspectiveMat follows the glTF projection; zfar 0 means infinite.
func perspectiveMat(yfov, aspect, znear, zfar float32) mat4.T {
	top := znear * math32.Tan(yfov/2)
	right := top * aspect
	var m mat4.T
	if zfar == 0 {
		m.AssignPerspectiveProjection(-right, right, -top, top, znear, 2*znear)
		// limit of the depth terms as zfar grows
		m[2][2] = -1
		m[3][2] = -2 * znear
		return m
	}
	m.AssignPerspectiveProjection(-right, right, -top, top, znear, zfar)
	return m
}

func orthographicMat(xmag, ymag, znear, zfar float32) mat4.T {
	var m mat4.T
	m.AssignOrthogonalProjection(-xmag, xmag, -ymag, ymag, znear, zfar)
	return m
}
