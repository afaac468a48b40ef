package tagged

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options controls one export invocation.
type Options struct {
	ApplyModifiers bool
	// Triangulate fans polygons of any size; when false the dialect decides.
	Triangulate bool
	FlipUV      bool
	Aggregate   AggregateStyle
	Dialect     Dialect
	// Workers bounds how many blocks are encoded at once. Values below 2
	// encode sequentially.
	Workers int
	Binary  bool
	Logger  *zap.Logger
}

func DefaultOptions() Options {
	return Options{
		ApplyModifiers: true,
		Triangulate:    true,
		FlipUV:         true,
		Aggregate:      AggregateOffsetTable,
		Dialect:        DialectCurrent,
		Workers:        1,
	}
}

func (o *Options) policy() TrianglePolicy {
	if o.Triangulate {
		return PolicyFan
	}
	return o.Dialect.Policy()
}

func (o *Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// EncodeObject encodes one mesh or camera object into a block.
func EncodeObject(o *Object, opts Options) (Block, error) {
	return encodeObject(o, SafeName(o.Name), opts)
}

func encodeObject(o *Object, name string, opts Options) (Block, error) {
	switch o.Type {
	case ObjectMesh:
		if o.Mesh == nil {
			return Block{}, fmt.Errorf("object %q: %w", o.Name, ErrUnknownObject)
		}
		data, err := o.Mesh.Tessellate(opts.ApplyModifiers)
		if err != nil {
			return Block{}, fmt.Errorf("tessellate %q: %w", o.Name, err)
		}
		mb, err := EncodeMesh(name, data.Polygons, MeshOptions{
			HasUV:   data.HasUV,
			FlipUV:  opts.FlipUV,
			Policy:  opts.policy(),
			Dialect: opts.Dialect,
		}, axisMarkers(o.Axes))
		if err != nil {
			return Block{}, err
		}
		return MeshBlockOf(mb), nil
	case ObjectCamera:
		if o.Camera == nil {
			return Block{}, fmt.Errorf("object %q: %w", o.Name, ErrUnknownObject)
		}
		p := o.Camera
		return CameraBlockOf(EncodeCamera(name, p.Resolution, p.PixelAspect, p.View, p.Projection)), nil
	}
	return Block{}, fmt.Errorf("object %q of type %s: %w", o.Name, o.Type, ErrUnknownObject)
}

// EncodeScene encodes every mesh and camera object of the scene. Blocks are
// independent, so they may be encoded concurrently, but the container always
// lists them in scene order. The first failure aborts the whole scene.
func EncodeScene(ctx context.Context, scene *Scene, opts Options) (*Container, error) {
	log := opts.logger()

	var objs []*Object
	var names []string
	used := make(nameSet)
	for _, o := range scene.Objects {
		if o.Type != ObjectMesh && o.Type != ObjectCamera {
			log.Debug("skipping object", zap.String("object", o.Name), zap.Stringer("type", o.Type))
			continue
		}
		// distinct object names may collapse to one token
		name := used.unique(SafeName(o.Name))
		if name != SafeName(o.Name) {
			log.Debug("renamed object", zap.String("object", o.Name), zap.String("block", name))
		}
		objs = append(objs, o)
		names = append(names, name)
	}

	blocks := make([]Block, len(objs))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Workers > 1 {
		g.SetLimit(opts.Workers)
	} else {
		g.SetLimit(1)
	}
	for i, o := range objs {
		i, o := i, o
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := encodeObject(o, names[i], opts)
			if err != nil {
				return err
			}
			blocks[i] = b
			if b.Kind == BlockMesh {
				log.Debug("encoded mesh",
					zap.String("block", b.Mesh.Name),
					zap.Int("triangles", b.Mesh.TriangleCount()),
					zap.Int("vertices", b.Mesh.VertexCount()),
					zap.Int("axes", len(b.Mesh.Axes)))
			} else {
				log.Debug("encoded camera", zap.String("block", b.Camera.Name))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scene %q: %w", scene.Name, err)
	}

	c := NewContainer(opts.Aggregate)
	c.Blocks = blocks
	return c, nil
}

// Export encodes the scene and writes it to wt. Nothing is written unless
// every block encoded.
func Export(ctx context.Context, wt io.Writer, scene *Scene, opts Options) error {
	c, err := EncodeScene(ctx, scene, opts)
	if err != nil {
		return err
	}
	if err := writeContainer(wt, c, opts); err != nil {
		return err
	}
	opts.logger().Info("exported scene",
		zap.String("scene", scene.Name),
		zap.Int("blocks", c.BlockCount()),
		zap.Stringer("aggregate", c.Aggregate))
	return nil
}

func writeContainer(wt io.Writer, c *Container, opts Options) error {
	if opts.Binary {
		return WriteBinary(wt, c)
	}
	return WriteText(wt, c, WriteOptions{Dialect: opts.Dialect})
}

// ExportFile writes the scene to path through a temporary file in the same
// directory, so a failed export leaves no partial file behind.
func ExportFile(ctx context.Context, path string, scene *Scene, opts Options) error {
	c, err := EncodeScene(ctx, scene, opts)
	if err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	tmp := f.Name()
	if err := f.Chmod(0644); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if err := writeContainer(f, c, opts); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}

	bbox := c.Bounds()
	opts.logger().Info("exported scene",
		zap.String("scene", scene.Name),
		zap.String("path", path),
		zap.Int("blocks", c.BlockCount()),
		zap.Float64s("min", bbox.Min[:]),
		zap.Float64s("max", bbox.Max[:]))
	return nil
}
