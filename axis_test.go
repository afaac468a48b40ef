package tagged

import (
	"testing"

	"github.com/flywave/go3d/quaternion"
)

func TestQuaternionReorder(t *testing.T) {
	tests := []struct {
		wxyz [4]float32
		xyzw quaternion.T
	}{
		{[4]float32{1, 0, 0, 0}, quaternion.T{0, 0, 0, 1}},
		{[4]float32{0.5, 0.25, -0.125, 2}, quaternion.T{0.25, -0.125, 2, 0.5}},
	}
	for _, tt := range tests {
		got := FromWXYZ(tt.wxyz)
		if got != tt.xyzw {
			t.Errorf("FromWXYZ(%v) = %v, want %v", tt.wxyz, got, tt.xyzw)
		}
		if back := ToWXYZ(got); back != tt.wxyz {
			t.Errorf("ToWXYZ(FromWXYZ(%v)) = %v", tt.wxyz, back)
		}
	}
}

func TestSafeName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Cube", "Cube"},
		{"Main Camera", "Main-Camera"},
		{"a:b$c", "a-b-c"},
		{"tab\there", "tab-here"},
		{"", "unnamed"},
		{"Cube.001", "Cube.001"},
		{"über-Würfel", "über-Würfel"},
	}
	for _, tt := range tests {
		if got := SafeName(tt.in); got != tt.want {
			t.Errorf("SafeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAxisName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Mount", "Mount"},
		{"Mount.001", "Mount"},
		{"Mount.L", "Mount.L"},
		{"Mount.L.002", "Mount.L"},
		{"Gun Port.010", "Gun-Port"},
		{".001", ".001"},
		{"Mount.", "Mount."},
	}
	for _, tt := range tests {
		if got := AxisName(tt.in); got != tt.want {
			t.Errorf("AxisName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAxisMarkers(t *testing.T) {
	if axisMarkers(nil) != nil {
		t.Error("no axes should give nil markers")
	}
	m := axisMarkers([]Axis{{Name: "Hand.003", WXYZ: [4]float32{1, 0, 0, 0}}})
	if len(m) != 1 || m[0].Name != "Hand" || m[0].Rotation != (quaternion.T{0, 0, 0, 1}) {
		t.Errorf("axisMarkers = %+v", m)
	}
}

func TestNameSetUnique(t *testing.T) {
	used := make(nameSet)
	got := []string{
		used.unique("Cube"),
		used.unique("Cube"),
		used.unique("Cube.001"),
		used.unique("Cube"),
		used.unique("Cam"),
	}
	want := []string{"Cube", "Cube.001", "Cube.001.001", "Cube.002", "Cam"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("name %d = %q, want %q", i, got[i], want[i])
		}
	}
}
