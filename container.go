package tagged

import (
	"fmt"

	dvec3 "github.com/flywave/go3d/float64/vec3"
)

// Entry is one line of the top section: Key names the entry, Ref the block.
type Entry struct {
	Key string `json:"key"`
	Ref string `json:"ref"`
}

// Container is a whole export: blocks in scene order and the aggregate that
// references them.
type Container struct {
	Blocks    []Block        `json:"blocks"`
	Aggregate AggregateStyle `json:"aggregate"`
	// Entries overrides the top section. Nil means one entry per block.
	Entries []Entry `json:"entries,omitempty"`
}

func NewContainer(style AggregateStyle) *Container {
	return &Container{Aggregate: style}
}

func (c *Container) Append(b Block) {
	c.Blocks = append(c.Blocks, b)
}

func (c *Container) BlockCount() int {
	return len(c.Blocks)
}

// TopEntries returns the entries the top section will list.
func (c *Container) TopEntries() []Entry {
	if c.Entries != nil {
		return c.Entries
	}
	entries := make([]Entry, 0, len(c.Blocks))
	for i := range c.Blocks {
		n := c.Blocks[i].Name()
		entries = append(entries, Entry{Key: n, Ref: n})
	}
	return entries
}

// Validate checks referential closure before anything is written.
func (c *Container) Validate() error {
	names := make(map[string]struct{}, len(c.Blocks))
	for i := range c.Blocks {
		n := c.Blocks[i].Name()
		if n == "" {
			return fmt.Errorf("block %d: %w", i, ErrUnknownObject)
		}
		if _, ok := names[n]; ok {
			return fmt.Errorf("block %q: %w", n, ErrDuplicateBlock)
		}
		names[n] = struct{}{}
	}
	for _, e := range c.TopEntries() {
		if _, ok := names[e.Ref]; !ok {
			return fmt.Errorf("entry %q -> $%s: %w", e.Key, e.Ref, ErrDanglingReference)
		}
	}
	return nil
}

// Bounds joins the boxes of every mesh block.
func (c *Container) Bounds() dvec3.Box {
	bbox := dvec3.MinBox
	found := false
	for i := range c.Blocks {
		m := c.Blocks[i].Mesh
		if c.Blocks[i].Kind != BlockMesh || m == nil || len(m.Vertices) == 0 {
			continue
		}
		bx := boundsBox(m.Bounds())
		bbox.Join(&bx)
		found = true
	}
	if !found {
		return dvec3.Box{}
	}
	return bbox
}
