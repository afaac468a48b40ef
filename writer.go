package tagged

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

type WriteOptions struct {
	Dialect Dialect
}

// errWriter keeps the first write error and turns later writes into no-ops.
type errWriter struct {
	wt  *bufio.Writer
	err error
}

func newErrWriter(wt io.Writer) *errWriter {
	return &errWriter{wt: bufio.NewWriter(wt)}
}

func (w *errWriter) str(s string) {
	if w.err != nil {
		return
	}
	_, w.err = w.wt.WriteString(s)
}

func (w *errWriter) line(indent int, tokens ...string) {
	for i := 0; i < indent; i++ {
		w.str("\t")
	}
	for i, t := range tokens {
		if i > 0 {
			w.str(" ")
		}
		w.str(t)
	}
	w.str("\n")
}

func (w *errWriter) flush() error {
	if w.err == nil {
		w.err = w.wt.Flush()
	}
	if w.err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, w.err)
	}
	return nil
}

// FormatFloat is the single float formatting used by every writer: the
// shortest decimal that reads back to the same float32.
func FormatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

func formatFloats(dst []string, fs []float32) []string {
	for _, f := range fs {
		dst = append(dst, FormatFloat(f))
	}
	return dst
}

// WriteText serializes c in the tagged text grammar. The container is
// validated first, so a dangling reference writes nothing.
func WriteText(wt io.Writer, c *Container, opts WriteOptions) error {
	if err := c.Validate(); err != nil {
		return err
	}
	w := newErrWriter(wt)
	for i := range c.Blocks {
		b := &c.Blocks[i]
		switch b.Kind {
		case BlockMesh:
			MeshBlockMarshal(w, b.Mesh, opts.Dialect)
		case BlockCamera:
			CameraBlockMarshal(w, b.Camera)
		}
		if w.err != nil {
			break
		}
	}
	AggregateMarshal(w, c)
	return w.flush()
}

func MeshBlockMarshal(w *errWriter, mb *MeshBlock, d Dialect) {
	w.line(0, mb.Name+":", KIND_MESH, MESH_LAYOUT_TRIANGLES)

	w.line(1, SECTION_INDICES+":", "array", mb.IndexType.Tag(d))
	for _, t := range mb.Triangles {
		w.line(2,
			strconv.FormatUint(uint64(t[0]), 10),
			strconv.FormatUint(uint64(t[1]), 10),
			strconv.FormatUint(uint64(t[2]), 10))
	}
	w.line(1, "end")

	w.line(1, SECTION_VERTICES+":", "array", mb.Layout.Tag(d))
	row := make([]float32, 0, mb.Layout.Components())
	tokens := make([]string, 0, 8)
	for i := range mb.Vertices {
		row = mb.Vertices[i].Flatten(row[:0])
		tokens = formatFloats(tokens[:0], row)
		w.line(2, tokens...)
	}
	w.line(1, "end")

	if len(mb.Axes) > 0 {
		w.line(1, SECTION_AXES+":", "array", TAG_AXIS)
		for i := range mb.Axes {
			ax := &mb.Axes[i]
			tokens = append(tokens[:0], ax.Name)
			tokens = formatFloats(tokens, ax.Location[:])
			tokens = formatFloats(tokens, ax.Rotation[:])
			w.line(2, tokens...)
		}
		w.line(1, "end")
	}

	w.line(0, "end")
	w.str("\n")
}

func CameraBlockMarshal(w *errWriter, cb *CameraBlock) {
	w.line(0, cb.Name+":", KIND_CAMERA)
	w.line(1,
		strconv.Itoa(cb.Resolution[0]),
		strconv.Itoa(cb.Resolution[1]),
		FormatFloat(cb.PixelAspect[0]),
		FormatFloat(cb.PixelAspect[1]))

	tokens := make([]string, 0, 4)
	for _, m := range []*[4][4]float32{rowsOf(&cb.View), rowsOf(&cb.Projection)} {
		for r := range m {
			tokens = formatFloats(tokens[:0], m[r][:])
			w.line(1, tokens...)
		}
	}

	w.line(0, "end")
	w.str("\n")
}

func AggregateMarshal(w *errWriter, c *Container) {
	w.line(0, TOP_NAME+":", c.Aggregate.String())
	for _, e := range c.TopEntries() {
		w.line(1, e.Key+":", "$"+e.Ref)
	}
	w.line(0, "end")
}
