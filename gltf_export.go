package tagged

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/flywave/go3d/mat4"
	"github.com/qmuntal/gltf"
)

const (
	// GLTFVersion 定义GLTF规范版本
	GLTFVersion = "2.0"
)

// ContainerToGltf 将容器中的块转换为GLTF预览文档。网格块成为网格节点，
// 其轴作为命名子节点；相机成为位于视图矩阵逆变换处的空节点。
func ContainerToGltf(c *Container) (*gltf.Document, error) {
	return BlocksToGltf(c.Blocks)
}

// BlocksToGltf 将块列表转换为GLTF文档
func BlocksToGltf(blocks []Block) (*gltf.Document, error) {
	doc := CreateDoc()
	for i := range blocks {
		b := &blocks[i]
		switch b.Kind {
		case BlockMesh:
			if err := BuildGltf(doc, b.Mesh); err != nil {
				return nil, err
			}
		case BlockCamera:
			buildGltfCamera(doc, b.Camera)
		}
	}
	return doc, nil
}

// CreateDoc 创建一个新的GLTF文档
func CreateDoc() *gltf.Document {
	doc := &gltf.Document{}
	doc.Asset.Version = GLTFVersion
	doc.Asset.Generator = "go-tagged"
	srcIndex := uint32(0)
	doc.Scene = &srcIndex
	doc.Scenes = append(doc.Scenes, &gltf.Scene{})
	doc.Buffers = append(doc.Buffers, &gltf.Buffer{})
	return doc
}

// calcSizeWriter 用于计算缓冲区大小的写入器
type calcSizeWriter struct {
	writer io.Writer
	Size   int
}

func (w *calcSizeWriter) Write(p []byte) (n int, err error) {
	si := len(p)
	w.writer.Write(p)
	w.Size += si
	return si, nil
}

func (w *calcSizeWriter) Bytes() []byte {
	return w.writer.(*bytes.Buffer).Bytes()
}

func newSizeWriter() calcSizeWriter {
	return calcSizeWriter{writer: bytes.NewBuffer([]byte{})}
}

// calcPadding 计算需要的填充字节数
func calcPadding(offset, paddingUnit int) int {
	padding := offset % paddingUnit
	if padding != 0 {
		padding = paddingUnit - padding
	}
	return padding
}

// GetGltfBinary 将GLTF文档编码为二进制格式，并用空格填充到paddingUnit对齐
func GetGltfBinary(doc *gltf.Document, paddingUnit int) ([]byte, error) {
	w := newSizeWriter()
	enc := gltf.NewEncoder(&w)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	padding := calcPadding(w.Size, paddingUnit)
	if padding == 0 {
		return w.Bytes(), nil
	}
	w.Write(bytes.Repeat([]byte{0x20}, padding))
	return w.Bytes(), nil
}

// appendView 将数据按4字节对齐追加到第一个缓冲区，返回新缓冲区视图的索引
func appendView(doc *gltf.Document, data []byte, target gltf.Target) uint32 {
	buffer := doc.Buffers[0]
	if pad := calcPadding(len(buffer.Data), 4); pad > 0 {
		buffer.Data = append(buffer.Data, make([]byte, pad)...)
	}
	view := &gltf.BufferView{
		Buffer:     0,
		ByteOffset: uint32(len(buffer.Data)),
		ByteLength: uint32(len(data)),
		Target:     target,
	}
	buffer.Data = append(buffer.Data, data...)
	buffer.ByteLength = uint32(len(buffer.Data))
	doc.BufferViews = append(doc.BufferViews, view)
	return uint32(len(doc.BufferViews) - 1)
}

func appendAccessor(doc *gltf.Document, acc *gltf.Accessor) uint32 {
	doc.Accessors = append(doc.Accessors, acc)
	return uint32(len(doc.Accessors) - 1)
}

// BuildGltf 追加一个网格块：索引视图、每个顶点属性一个视图，以及带块名称的节点
func BuildGltf(doc *gltf.Document, mb *MeshBlock) error {
	if len(mb.Vertices) == 0 {
		return fmt.Errorf("mesh %q has no vertices: %w", mb.Name, ErrInvalidGeometry)
	}

	idxBuf := bytes.NewBuffer(nil)
	idxAcc := &gltf.Accessor{
		Type:  gltf.AccessorScalar,
		Count: uint32(len(mb.Triangles) * 3),
	}
	if mb.IndexType == Index32 {
		idxAcc.ComponentType = gltf.ComponentUint
		for _, t := range mb.Triangles {
			binary.Write(idxBuf, binary.LittleEndian, t)
		}
	} else {
		idxAcc.ComponentType = gltf.ComponentUshort
		for _, t := range mb.Triangles {
			binary.Write(idxBuf, binary.LittleEndian, [3]uint16{uint16(t[0]), uint16(t[1]), uint16(t[2])})
		}
	}
	bvIndex := appendView(doc, idxBuf.Bytes(), gltf.TargetElementArrayBuffer)
	idxAcc.BufferView = &bvIndex
	indices := appendAccessor(doc, idxAcc)

	posBuf := bytes.NewBuffer(nil)
	nlBuf := bytes.NewBuffer(nil)
	texBuf := bytes.NewBuffer(nil)
	for i := range mb.Vertices {
		v := &mb.Vertices[i]
		binary.Write(posBuf, binary.LittleEndian, v.Position)
		binary.Write(nlBuf, binary.LittleEndian, v.Normal)
		if mb.Layout == LayoutP3N3M2 {
			binary.Write(texBuf, binary.LittleEndian, v.UV)
		}
	}

	box := mb.Bounds()
	bvPos := appendView(doc, posBuf.Bytes(), gltf.TargetArrayBuffer)
	posacc := appendAccessor(doc, &gltf.Accessor{
		BufferView:    &bvPos,
		ComponentType: gltf.ComponentFloat,
		Type:          gltf.AccessorVec3,
		Count:         uint32(len(mb.Vertices)),
		Min:           []float32{float32(box[0]), float32(box[1]), float32(box[2])},
		Max:           []float32{float32(box[3]), float32(box[4]), float32(box[5])},
	})
	bvNl := appendView(doc, nlBuf.Bytes(), gltf.TargetArrayBuffer)
	nlacc := appendAccessor(doc, &gltf.Accessor{
		BufferView:    &bvNl,
		ComponentType: gltf.ComponentFloat,
		Type:          gltf.AccessorVec3,
		Count:         uint32(len(mb.Vertices)),
	})

	ps := &gltf.Primitive{
		Indices:    &indices,
		Mode:       gltf.PrimitiveTriangles,
		Attributes: gltf.Attribute{"POSITION": posacc, "NORMAL": nlacc},
	}
	if mb.Layout == LayoutP3N3M2 {
		bvTexc := appendView(doc, texBuf.Bytes(), gltf.TargetArrayBuffer)
		ps.Attributes["TEXCOORD_0"] = appendAccessor(doc, &gltf.Accessor{
			BufferView:    &bvTexc,
			ComponentType: gltf.ComponentFloat,
			Type:          gltf.AccessorVec2,
			Count:         uint32(len(mb.Vertices)),
		})
	}

	meshId := uint32(len(doc.Meshes))
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: mb.Name, Primitives: []*gltf.Primitive{ps}})

	nde := &gltf.Node{Name: mb.Name, Mesh: &meshId}
	for i := range mb.Axes {
		ax := &mb.Axes[i]
		nde.Children = append(nde.Children, uint32(len(doc.Nodes)))
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name:        ax.Name,
			Translation: [3]float32(ax.Location),
			Rotation:    [4]float32(ax.Rotation),
			Scale:       [3]float32{1, 1, 1},
		})
	}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)))
	doc.Nodes = append(doc.Nodes, nde)
	return nil
}

func buildGltfCamera(doc *gltf.Document, cb *CameraBlock) {
	nde := &gltf.Node{
		Name: cb.Name,
		Extras: map[string]interface{}{
			"resolution":  cb.Resolution,
			"pixelAspect": cb.PixelAspect,
			"view":        matrixRows(&cb.View),
			"projection":  matrixRows(&cb.Projection),
		},
	}
	if world, ok := invertMat(&cb.View); ok {
		nde.Matrix = columnArray(&world)
	}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)))
	doc.Nodes = append(doc.Nodes, nde)
}

func columnArray(m *mat4.T) [16]float32 {
	var ay [16]float32
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			ay[c*4+r] = m[c][r]
		}
	}
	return ay
}

// SavePreview 将容器写为GLTF预览；.glb路径写二进制格式，其他路径写内嵌缓冲区的JSON
func SavePreview(path string, c *Container) error {
	doc, err := ContainerToGltf(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".glb") {
		bt, err := GetGltfBinary(doc, 4)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, bt, 0644); err != nil {
			return fmt.Errorf("%w: %v", ErrIOFailure, err)
		}
		return nil
	}
	buffer := doc.Buffers[0]
	buffer.URI = "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(buffer.Data)
	if err := gltf.Save(doc, path); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	return nil
}
