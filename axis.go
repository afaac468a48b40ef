package tagged

import (
	"fmt"
	"strings"

	"github.com/flywave/go3d/quaternion"
	"github.com/flywave/go3d/vec3"
)

// AxisMarker is a named attachment transform carried by a mesh block.
// Rotation is stored x, y, z, w as it is written.
type AxisMarker struct {
	Name     string       `json:"name"`
	Location vec3.T       `json:"location"`
	Rotation quaternion.T `json:"rotation"`
}

// FromWXYZ reorders a scalar-first quaternion into x, y, z, w.
func FromWXYZ(q [4]float32) quaternion.T {
	return quaternion.T{q[1], q[2], q[3], q[0]}
}

// ToWXYZ is the inverse of FromWXYZ.
func ToWXYZ(q quaternion.T) [4]float32 {
	return [4]float32{q[3], q[0], q[1], q[2]}
}

// SafeName turns an object name into a single grammar token.
func SafeName(name string) string {
	if name == "" {
		return "unnamed"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '\v', '\f', ':', '$':
			return '-'
		}
		return r
	}, name)
}

// AxisName drops the ".NNN" suffix authoring tools append to duplicated
// objects, so "Mount.001" and "Mount" both export as "Mount".
func AxisName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		suffix := name[i+1:]
		if suffix != "" && strings.Trim(suffix, "0123456789") == "" {
			name = name[:i]
		}
	}
	return SafeName(name)
}

// nameSet hands out unique names, numbering repeats the way authoring tools
// do: "Cube", "Cube.001", "Cube.002".
type nameSet map[string]struct{}

func (s nameSet) unique(name string) string {
	if _, ok := s[name]; !ok {
		s[name] = struct{}{}
		return name
	}
	for i := 1; ; i++ {
		n := fmt.Sprintf("%s.%03d", name, i)
		if _, ok := s[n]; !ok {
			s[n] = struct{}{}
			return n
		}
	}
}
