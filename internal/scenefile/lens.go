package scenefile

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/flywave/go3d/mat4"
	"github.com/flywave/go3d/quaternion"
	"github.com/flywave/go3d/vec3"

	tagged "github.com/flywave/go-tagged"
)

const (
	defaultWidth  = 1920
	defaultHeight = 1080
	defaultFovY   = 39.6
	defaultNear   = 0.1
	defaultFar    = 100
)

func (c *CameraDef) params() (*tagged.CameraParams, error) {
	p := &tagged.CameraParams{
		Resolution:  c.Resolution,
		PixelAspect: c.PixelAspect,
	}
	if p.Resolution == [2]int{} {
		p.Resolution = [2]int{defaultWidth, defaultHeight}
	}
	if p.PixelAspect == [2]float32{} {
		p.PixelAspect = [2]float32{1, 1}
	}

	switch {
	case c.View != nil:
		p.View = tagged.MatrixFromRows(*c.View)
	case c.Eye != nil:
		up := vec3.T{0, 0, 1}
		if c.Up != nil {
			up = vec3.T(*c.Up)
		}
		view, err := LookAt(vec3.T(*c.Eye), vec3.T(c.Target), up)
		if err != nil {
			return nil, err
		}
		p.View = view
	default:
		return nil, fmt.Errorf("camera needs view rows or an eye: %w", ErrBadObject)
	}

	if c.Projection != nil {
		p.Projection = tagged.MatrixFromRows(*c.Projection)
		return p, nil
	}
	fov, near, far := c.FovY, c.Near, c.Far
	if fov == 0 {
		fov = defaultFovY
	}
	if near == 0 {
		near = defaultNear
	}
	if far == 0 {
		far = defaultFar
	}
	aspect := float32(p.Resolution[0]) * p.PixelAspect[0] / (float32(p.Resolution[1]) * p.PixelAspect[1])
	p.Projection = Perspective(fov, aspect, near, far)
	return p, nil
}

// LookAt returns the view matrix of a camera at eye looking at target, right
// handed with the camera looking down -Z.
func LookAt(eye, target, up vec3.T) (mat4.T, error) {
	f := vec3.Sub(&target, &eye)
	if f.Length() == 0 {
		return mat4.T{}, fmt.Errorf("eye and target coincide: %w", ErrBadObject)
	}
	f.Normalize()
	s := vec3.Cross(&f, &up)
	if s.Length() < 1e-6 {
		return mat4.T{}, fmt.Errorf("up is parallel to the view direction: %w", ErrBadObject)
	}
	s.Normalize()
	u := vec3.Cross(&s, &f)
	back := f.Inverted()

	var m mat4.T
	m.AssignCoordinateSystem(&s, &u, &back)
	m.SetTranslation(&vec3.T{-vec3.Dot(&s, &eye), -vec3.Dot(&u, &eye), vec3.Dot(&f, &eye)})
	return m, nil
}

// Perspective returns the OpenGL projection for a vertical field of view in
// degrees.
func Perspective(fovYDeg, aspect, near, far float32) mat4.T {
	top := near * math32.Tan(fovYDeg*math32.Pi/360)
	right := top * aspect
	var m mat4.T
	m.AssignPerspectiveProjection(-right, right, -top, top, near, far)
	return m
}

// EulerToWXYZ converts X, then Y, then Z rotations in degrees into a scalar
// first quaternion.
func EulerToWXYZ(deg [3]float32) [4]float32 {
	qx := quaternion.FromXAxisAngle(deg[0] * math32.Pi / 180)
	qy := quaternion.FromYAxisAngle(deg[1] * math32.Pi / 180)
	qz := quaternion.FromZAxisAngle(deg[2] * math32.Pi / 180)
	q := quaternion.Mul3(&qz, &qy, &qx)
	return tagged.ToWXYZ(q)
}
