package tagged

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	binBlockHeaderSize = 4 + 8
	binHeaderSize      = binBlockHeaderSize + 4 + 8
	binMeshSize        = binBlockHeaderSize + 4 + 8*4
	binCameraSize      = binBlockHeaderSize + 4*2 + 4*2 + 4*16*2
	binAxisSize        = BIN_NAME_SIZE + 4*3 + 4*4
	binOffsetSize      = BIN_NAME_SIZE + 8
)

func toLittleByteOrder(v interface{}) []byte {
	var buf []byte
	b := bytes.NewBuffer(buf)
	e := binary.Write(b, binary.LittleEndian, v)
	if e != nil {
		return nil
	}
	return b.Bytes()
}

func writeLittleByte(wt io.Writer, v interface{}) {
	buf := toLittleByteOrder(v)
	if buf != nil {
		wt.Write(buf)
	}
}

func fixedName(name string) [BIN_NAME_SIZE]byte {
	var n [BIN_NAME_SIZE]byte
	copy(n[:], name)
	return n
}

// checkFixedNames rejects names that only differ after BIN_NAME_SIZE bytes,
// since they would share one fixed record.
func checkFixedNames(c *Container) error {
	blocks := make(map[[BIN_NAME_SIZE]byte]string, len(c.Blocks))
	for i := range c.Blocks {
		n := c.Blocks[i].Name()
		k := fixedName(n)
		if prev, ok := blocks[k]; ok && prev != n {
			return fmt.Errorf("block %q truncates to the name of %q: %w", n, prev, ErrDuplicateBlock)
		}
		blocks[k] = n
	}
	keys := make(map[[BIN_NAME_SIZE]byte]string)
	for _, e := range c.TopEntries() {
		k := fixedName(e.Key)
		if prev, ok := keys[k]; ok {
			return fmt.Errorf("entry %q collides with %q: %w", e.Key, prev, ErrDuplicateBlock)
		}
		keys[k] = e.Key
	}
	return nil
}

func writeBlockHeader(wt io.Writer, tag string, size int) {
	var t [4]byte
	copy(t[:], tag)
	writeLittleByte(wt, t)
	writeLittleByte(wt, uint64(size))
}

// binaryBody accumulates blocks; offsets are absolute, counted from the
// start of the stream including the header.
type binaryBody struct {
	buf bytes.Buffer
}

func (b *binaryBody) offset() uint64 {
	return uint64(binHeaderSize + b.buf.Len())
}

func IndicesMarshal(b *binaryBody, mb *MeshBlock) uint64 {
	off := b.offset()
	if mb.IndexType == Index32 {
		writeBlockHeader(&b.buf, BIN_TAG_INDEX32, binBlockHeaderSize+len(mb.Triangles)*3*4)
		for _, t := range mb.Triangles {
			writeLittleByte(&b.buf, t)
		}
		return off
	}
	writeBlockHeader(&b.buf, BIN_TAG_INDEX16, binBlockHeaderSize+len(mb.Triangles)*3*2)
	for _, t := range mb.Triangles {
		writeLittleByte(&b.buf, [3]uint16{uint16(t[0]), uint16(t[1]), uint16(t[2])})
	}
	return off
}

func VerticesMarshal(b *binaryBody, mb *MeshBlock) uint64 {
	off := b.offset()
	comps := mb.Layout.Components()
	writeBlockHeader(&b.buf, mb.Layout.binaryTag(), binBlockHeaderSize+len(mb.Vertices)*comps*4)
	row := make([]float32, 0, comps)
	for i := range mb.Vertices {
		row = mb.Vertices[i].Flatten(row[:0])
		writeLittleByte(&b.buf, row)
	}
	return off
}

func AxesMarshal(b *binaryBody, axes []AxisMarker) uint64 {
	if len(axes) == 0 {
		return 0
	}
	off := b.offset()
	writeBlockHeader(&b.buf, BIN_TAG_AXES, binBlockHeaderSize+len(axes)*binAxisSize)
	for i := range axes {
		writeLittleByte(&b.buf, fixedName(axes[i].Name))
		writeLittleByte(&b.buf, axes[i].Location[:])
		writeLittleByte(&b.buf, axes[i].Rotation[:])
	}
	return off
}

// MeshBlockBinaryMarshal writes the child arrays first, then the MESH block
// pointing at them, and returns the offset of the MESH block.
func MeshBlockBinaryMarshal(b *binaryBody, mb *MeshBlock) uint64 {
	indices := IndicesMarshal(b, mb)
	vertices := VerticesMarshal(b, mb)
	axes := AxesMarshal(b, mb.Axes)

	off := b.offset()
	writeBlockHeader(&b.buf, BIN_TAG_MESH, binMeshSize)
	writeLittleByte(&b.buf, uint32(BIN_MESH_LAYOUT_TRIANGLES))
	writeLittleByte(&b.buf, indices)
	writeLittleByte(&b.buf, vertices)
	writeLittleByte(&b.buf, axes)
	writeLittleByte(&b.buf, uint64(0))
	return off
}

func CameraBlockBinaryMarshal(b *binaryBody, cb *CameraBlock) uint64 {
	off := b.offset()
	writeBlockHeader(&b.buf, BIN_TAG_CAMERA, binCameraSize)
	writeLittleByte(&b.buf, [2]uint32{uint32(cb.Resolution[0]), uint32(cb.Resolution[1])})
	writeLittleByte(&b.buf, cb.PixelAspect)
	writeLittleByte(&b.buf, matrixRows(&cb.View))
	writeLittleByte(&b.buf, matrixRows(&cb.Projection))
	return off
}

func OffsetTableMarshal(b *binaryBody, entries []Entry, offsets map[string]uint64) uint64 {
	off := b.offset()
	writeBlockHeader(&b.buf, BIN_TAG_OFFSETS, binBlockHeaderSize+len(entries)*binOffsetSize)
	for _, e := range entries {
		writeLittleByte(&b.buf, fixedName(e.Key))
		writeLittleByte(&b.buf, offsets[e.Ref])
	}
	return off
}

// WriteBinary writes the compiled form of c: an HDR3 header followed by every
// block and a trailing #OFS table that the header points at. Both aggregate
// styles compile to the same table.
func WriteBinary(wt io.Writer, c *Container) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := checkFixedNames(c); err != nil {
		return err
	}
	body := &binaryBody{}
	offsets := make(map[string]uint64, len(c.Blocks))
	for i := range c.Blocks {
		blk := &c.Blocks[i]
		switch blk.Kind {
		case BlockMesh:
			offsets[blk.Name()] = MeshBlockBinaryMarshal(body, blk.Mesh)
		case BlockCamera:
			offsets[blk.Name()] = CameraBlockBinaryMarshal(body, blk.Camera)
		}
	}
	top := OffsetTableMarshal(body, c.TopEntries(), offsets)

	header := bytes.NewBuffer(make([]byte, 0, binHeaderSize))
	writeBlockHeader(header, BIN_TAG_HEADER, binHeaderSize)
	writeLittleByte(header, uint32(BIN_HEADER_MAGIC))
	writeLittleByte(header, top)

	if _, err := wt.Write(header.Bytes()); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if _, err := wt.Write(body.buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	return nil
}
