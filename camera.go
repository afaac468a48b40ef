package tagged

import (
	"github.com/flywave/go3d/mat4"
)

// CameraBlock carries render parameters and the two camera matrices exactly
// as the scene supplied them.
type CameraBlock struct {
	Name        string     `json:"name"`
	Resolution  [2]int     `json:"resolution"`
	PixelAspect [2]float32 `json:"pixelAspect"`
	View        mat4.T     `json:"view"`
	Projection  mat4.T     `json:"projection"`
}

// EncodeCamera is a pure transcription. Degenerate matrices pass through.
func EncodeCamera(name string, resolution [2]int, pixelAspect [2]float32, view, projection mat4.T) *CameraBlock {
	return &CameraBlock{
		Name:        name,
		Resolution:  resolution,
		PixelAspect: pixelAspect,
		View:        view,
		Projection:  projection,
	}
}

// matrixRows returns m in row-major order. go3d matrices are stored as
// columns, so row r collects element r of every column.
func matrixRows(m *mat4.T) [4][4]float32 {
	var rows [4][4]float32
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			rows[r][c] = m[c][r]
		}
	}
	return rows
}

func rowsOf(m *mat4.T) *[4][4]float32 {
	rows := matrixRows(m)
	return &rows
}

// MatrixFromRows builds a go3d matrix from row-major values.
func MatrixFromRows(rows [4][4]float32) mat4.T {
	var m mat4.T
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[c][r] = rows[r][c]
		}
	}
	return m
}
