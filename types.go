package tagged

const TEXT_EXT string = ".tft"
const BINARY_EXT string = ".tfb"

// Block kinds as they appear in a block header line.
const (
	KIND_MESH   = "mesh"
	KIND_CAMERA = "camera"

	MESH_LAYOUT_TRIANGLES = "triangles"
)

// Array type tags of the current dialect.
const (
	TAG_INDEX16       = "index16"
	TAG_INDEX32       = "index32"
	TAG_VERTEX_P3N3   = "vertex-p3n3"
	TAG_VERTEX_P3N3M2 = "vertex-p3n3m2"
	TAG_AXIS          = "axis"
)

// Array type tags written by the first exporters.
const (
	LEGACY_TAG_INDEX16       = "2u"
	LEGACY_TAG_VERTEX_P3N3   = "3p3n"
	LEGACY_TAG_VERTEX_P3N3M2 = "3p3n2m"
)

const (
	SECTION_INDICES  = "indices"
	SECTION_VERTICES = "vertices"
	SECTION_AXES     = "axes"

	TOP_NAME = "top"
)

// Binary block tags, four ASCII bytes each.
const (
	BIN_TAG_HEADER   = "HDR3"
	BIN_TAG_MESH     = "MESH"
	BIN_TAG_INDEX16  = "IN16"
	BIN_TAG_INDEX32  = "IN32"
	BIN_TAG_P3N3     = "3300"
	BIN_TAG_P3N3M2   = "3320"
	BIN_TAG_AXES     = "#AXE"
	BIN_TAG_CAMERA   = "CAM4"
	BIN_TAG_OFFSETS  = "#OFS"
	BIN_HEADER_MAGIC = 42

	// matches GL_TRIANGLES
	BIN_MESH_LAYOUT_TRIANGLES = 4

	BIN_NAME_SIZE = 32
)

// VertexLayout is the per-mesh vertex format. A mesh either carries UVs on
// every vertex or on none.
type VertexLayout int

const (
	LayoutP3N3 VertexLayout = iota
	LayoutP3N3M2
)

// Floats per vertex row: position and normal, then uv for p3n3m2.
func (l VertexLayout) Components() int {
	if l == LayoutP3N3M2 {
		return 8
	}
	return 6
}

func (l VertexLayout) Tag(d Dialect) string {
	switch {
	case l == LayoutP3N3M2 && d == DialectLegacy:
		return LEGACY_TAG_VERTEX_P3N3M2
	case l == LayoutP3N3M2:
		return TAG_VERTEX_P3N3M2
	case d == DialectLegacy:
		return LEGACY_TAG_VERTEX_P3N3
	default:
		return TAG_VERTEX_P3N3
	}
}

func (l VertexLayout) binaryTag() string {
	if l == LayoutP3N3M2 {
		return BIN_TAG_P3N3M2
	}
	return BIN_TAG_P3N3
}

// IndexType is the integer width of the triangle index rows.
type IndexType int

const (
	Index16 IndexType = iota
	Index32
)

func (t IndexType) Tag(d Dialect) string {
	switch {
	case t == Index32:
		return TAG_INDEX32
	case d == DialectLegacy:
		return LEGACY_TAG_INDEX16
	default:
		return TAG_INDEX16
	}
}

// Dialect selects the type tag vocabulary and the default polygon policy.
type Dialect int

const (
	DialectCurrent Dialect = iota
	DialectLegacy
)

func (d Dialect) String() string {
	if d == DialectLegacy {
		return "legacy"
	}
	return "current"
}

// ParseDialect accepts "current" and "legacy"; anything else is current.
func ParseDialect(s string) Dialect {
	if s == "legacy" {
		return DialectLegacy
	}
	return DialectCurrent
}

// Policy is the triangulation policy the dialect implies.
func (d Dialect) Policy() TrianglePolicy {
	if d == DialectLegacy {
		return PolicyQuadSplit
	}
	return PolicyFan
}

// AggregateStyle is the kind of the trailing top section.
type AggregateStyle int

const (
	AggregateOffsetTable AggregateStyle = iota
	AggregateDictionary
)

func (s AggregateStyle) String() string {
	if s == AggregateDictionary {
		return "dictionary"
	}
	return "offset-table"
}

// ParseAggregateStyle accepts "dictionary" and "offset-table".
func ParseAggregateStyle(s string) (AggregateStyle, bool) {
	switch s {
	case "dictionary":
		return AggregateDictionary, true
	case "offset-table", "":
		return AggregateOffsetTable, true
	}
	return AggregateOffsetTable, false
}
