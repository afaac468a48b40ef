package tagged

type BlockKind int

const (
	BlockMesh BlockKind = iota
	BlockCamera
)

func (k BlockKind) String() string {
	if k == BlockCamera {
		return KIND_CAMERA
	}
	return KIND_MESH
}

// Block is one named top-level section. Exactly one payload is set and Kind
// says which.
type Block struct {
	Kind   BlockKind    `json:"kind"`
	Mesh   *MeshBlock   `json:"mesh,omitempty"`
	Camera *CameraBlock `json:"camera,omitempty"`
}

func MeshBlockOf(m *MeshBlock) Block {
	return Block{Kind: BlockMesh, Mesh: m}
}

func CameraBlockOf(c *CameraBlock) Block {
	return Block{Kind: BlockCamera, Camera: c}
}

func (b *Block) Name() string {
	switch b.Kind {
	case BlockCamera:
		if b.Camera != nil {
			return b.Camera.Name
		}
	default:
		if b.Mesh != nil {
			return b.Mesh.Name
		}
	}
	return ""
}
