package tagged

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flywave/go3d/mat4"
	"github.com/flywave/go3d/vec3"
)

func triangleAt(x float32) *PolygonMesh {
	return &PolygonMesh{Polygons: []Polygon{{
		{Position: vec3.T{x, 0, 0}, Normal: up},
		{Position: vec3.T{x + 1, 0, 0}, Normal: up},
		{Position: vec3.T{x, 1, 0}, Normal: up},
	}}}
}

func testScene(n int) *Scene {
	s := NewScene("Scene")
	for i := 0; i < n; i++ {
		s.Add(&Object{Name: fmt.Sprintf("Tri%02d", i), Type: ObjectMesh, Mesh: triangleAt(float32(i))})
	}
	return s
}

type brokenMesh struct{}

func (brokenMesh) Tessellate(bool) (*MeshData, error) {
	return &MeshData{Polygons: []Polygon{ngon(2)}}, nil
}

func TestEncodeSceneKeepsOrder(t *testing.T) {
	scene := testScene(20)
	scene.Add(&Object{Name: "Helper", Type: ObjectEmpty})
	scene.Add(&Object{Name: "Cam", Type: ObjectCamera, Camera: &CameraParams{
		Resolution:  [2]int{320, 200},
		PixelAspect: [2]float32{1, 1},
		View:        mat4.Ident,
		Projection:  mat4.Ident,
	}})

	for _, workers := range []int{0, 1, 4, 32} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Workers = workers
			c, err := EncodeScene(context.Background(), scene, opts)
			if err != nil {
				t.Fatalf("EncodeScene: %v", err)
			}
			if c.BlockCount() != 21 {
				t.Fatalf("got %d blocks, want 21", c.BlockCount())
			}
			for i := 0; i < 20; i++ {
				if name := c.Blocks[i].Name(); name != fmt.Sprintf("Tri%02d", i) {
					t.Errorf("block %d = %q", i, name)
				}
			}
			if c.Blocks[20].Kind != BlockCamera || c.Blocks[20].Name() != "Cam" {
				t.Errorf("last block = %v %q", c.Blocks[20].Kind, c.Blocks[20].Name())
			}
		})
	}
}

func TestEncodeObjectErrors(t *testing.T) {
	tests := []struct {
		name string
		obj  *Object
		want error
	}{
		{"mesh without source", &Object{Name: "M", Type: ObjectMesh}, ErrUnknownObject},
		{"camera without params", &Object{Name: "C", Type: ObjectCamera}, ErrUnknownObject},
		{"empty", &Object{Name: "E", Type: ObjectEmpty}, ErrUnknownObject},
		{"degenerate polygon", &Object{Name: "B", Type: ObjectMesh, Mesh: brokenMesh{}}, ErrInvalidGeometry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeObject(tt.obj, DefaultOptions())
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEncodeObjectSanitizesName(t *testing.T) {
	b, err := EncodeObject(&Object{Name: "Big Tri", Type: ObjectMesh, Mesh: triangleAt(0)}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if b.Name() != "Big-Tri" {
		t.Errorf("name = %q", b.Name())
	}
}

func TestExportAbortsOnFailure(t *testing.T) {
	scene := testScene(3)
	scene.Add(&Object{Name: "Broken", Type: ObjectMesh, Mesh: brokenMesh{}})

	var buf bytes.Buffer
	err := Export(context.Background(), &buf, scene, DefaultOptions())
	if !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("Export error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %d bytes on failure", buf.Len())
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "scene.tgd")
	err = ExportFile(context.Background(), path, scene, DefaultOptions())
	if !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("ExportFile error = %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("directory not empty after failed export: %v", entries)
	}
}

func TestExportCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	if err := Export(ctx, &buf, testScene(2), DefaultOptions()); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestExportFileMatchesExport(t *testing.T) {
	for _, binary := range []bool{false, true} {
		t.Run(fmt.Sprintf("binary=%v", binary), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Binary = binary
			opts.Workers = 3
			scene := testScene(5)

			var buf bytes.Buffer
			if err := Export(context.Background(), &buf, scene, opts); err != nil {
				t.Fatalf("Export: %v", err)
			}
			path := filepath.Join(t.TempDir(), "out", "scene.tgd")
			if err := ExportFile(context.Background(), path, scene, opts); err != nil {
				t.Fatalf("ExportFile: %v", err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(data, buf.Bytes()) {
				t.Error("file and buffer output differ")
			}
			if binary && !bytes.HasPrefix(data, []byte("HDR3")) {
				t.Errorf("binary output starts with %q", data[:4])
			}
			if !binary && !strings.HasPrefix(string(data), "Tri00: mesh triangles\n") {
				t.Errorf("text output starts with %q", string(data[:20]))
			}
		})
	}
}

func TestExportDialects(t *testing.T) {
	scene := NewScene("Quads").Add(&Object{Name: "Q", Type: ObjectMesh, Mesh: &PolygonMesh{Polygons: []Polygon{ngon(5)}}})

	opts := DefaultOptions()
	opts.Triangulate = false
	opts.Dialect = DialectLegacy
	var buf bytes.Buffer
	if err := Export(context.Background(), &buf, scene, opts); !errors.Is(err, ErrUnsupportedPolygonArity) {
		t.Errorf("legacy pentagon: got %v", err)
	}

	opts.Dialect = DialectCurrent
	buf.Reset()
	if err := Export(context.Background(), &buf, scene, opts); err != nil {
		t.Errorf("current pentagon: %v", err)
	}
}

func TestEncodeSceneUniqueNames(t *testing.T) {
	scene := NewScene("Clash").
		Add(&Object{Name: "a b", Type: ObjectMesh, Mesh: triangleAt(0)}).
		Add(&Object{Name: "a:b", Type: ObjectMesh, Mesh: triangleAt(1)}).
		Add(&Object{Name: "a$b", Type: ObjectMesh, Mesh: triangleAt(2)})

	c, err := EncodeScene(context.Background(), scene, DefaultOptions())
	if err != nil {
		t.Fatalf("EncodeScene: %v", err)
	}
	want := []string{"a-b", "a-b.001", "a-b.002"}
	for i, w := range want {
		if got := c.Blocks[i].Name(); got != w {
			t.Errorf("block %d = %q, want %q", i, got, w)
		}
	}
	var buf bytes.Buffer
	if err := Export(context.Background(), &buf, scene, DefaultOptions()); err != nil {
		t.Errorf("Export: %v", err)
	}
}
