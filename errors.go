package tagged

import "errors"

var (
	ErrInvalidGeometry          = errors.New("tagged: polygon has fewer than 3 corners")
	ErrInconsistentVertexFormat = errors.New("tagged: mixed uv presence within one mesh")
	ErrUnsupportedPolygonArity  = errors.New("tagged: quad split policy cannot handle more than 4 corners")
	ErrDanglingReference        = errors.New("tagged: aggregate references a block that was not emitted")
	ErrDuplicateBlock           = errors.New("tagged: block name emitted twice")
	ErrIndexOverflow            = errors.New("tagged: vertex index does not fit the index type")
	ErrUnknownObject            = errors.New("tagged: object has no encodable data")
	ErrIOFailure                = errors.New("tagged: write to destination failed")
)
