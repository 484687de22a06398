// Package camera provides the camera geometry handle and the multi-camera rig
// registry used to associate observations back to a physical sensor.
package camera

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"go.viam.com/camgeom/transform"
)

// Camera is a single physical camera: a globally unique id, a human-readable
// label, and a pinhole model with lens distortion.
//
// Cameras are shared by handle: the same *Camera may be referenced by many
// frames and rigs at once so that they all see one calibration. Mutating the
// model through Model() is visible to every holder. That aliasing is
// intentional; callers that need isolation must copy. Access is not
// synchronized, so concurrent mutation must be serialized externally.
type Camera struct {
	id    uuid.UUID
	label string
	model *transform.PinholeCameraModel
}

// New creates a Camera with a freshly generated id.
func New(label string, model *transform.PinholeCameraModel) (*Camera, error) {
	return NewWithID(uuid.New(), label, model)
}

// NewWithID creates a Camera with the given id, for calibration files that
// carry stable sensor identities.
func NewWithID(id uuid.UUID, label string, model *transform.PinholeCameraModel) (*Camera, error) {
	if err := model.CheckValid(); err != nil {
		return nil, errors.Wrapf(err, "cannot create camera %q", label)
	}
	return &Camera{id: id, label: label, model: model}, nil
}

// ID returns the camera's unique id.
func (c *Camera) ID() uuid.UUID {
	return c.id
}

// Label returns the camera's label.
func (c *Camera) Label() string {
	return c.label
}

// Model returns the camera's pinhole model. The returned pointer is the shared
// calibration itself, not a copy; calibration refinement mutates through it.
func (c *Camera) Model() *transform.PinholeCameraModel {
	return c.model
}

// ProjectPoint projects a 3D point in the camera frame to a distorted pixel.
// Points at or behind the camera plane cannot be projected.
func (c *Camera) ProjectPoint(pt r3.Vector) (r2.Point, error) {
	if pt.Z <= 0 {
		return r2.Point{}, errors.Errorf("point (%v, %v, %v) is behind the camera", pt.X, pt.Y, pt.Z)
	}
	x := pt.X / pt.Z
	y := pt.Y / pt.Z
	if c.model.Distortion != nil {
		x, y = c.model.Distortion.Transform(x, y)
	}
	u := x*c.model.Fx + c.model.Ppx
	v := y*c.model.Fy + c.model.Ppy
	return r2.Point{X: u, Y: v}, nil
}

// UnprojectPixel maps an observed pixel to the unit-depth ray in the camera
// frame, removing lens distortion. An error is returned if the iterative
// undistortion fails to converge.
func (c *Camera) UnprojectPixel(u, v float64) (r3.Vector, error) {
	x := (u - c.model.Ppx) / c.model.Fx
	y := (v - c.model.Ppy) / c.model.Fy
	if undistorter, ok := c.model.Distortion.(transform.Undistorter); ok {
		res := undistorter.Undistort(r2.Point{X: x, Y: y})
		if !res.Converged {
			return r3.Vector{}, errors.Errorf(
				"undistortion of pixel (%v, %v) did not converge after %d iterations", u, v, res.Iterations)
		}
		x, y = res.Point.X, res.Point.Y
	}
	return r3.Vector{X: x, Y: y, Z: 1}, nil
}

// Equal reports whether two camera handles refer to the same underlying camera
// or hold structurally equal calibrations.
func (c *Camera) Equal(other *Camera) bool {
	if c == other {
		return true
	}
	if c == nil || other == nil {
		return false
	}
	return c.id == other.id && c.label == other.label && modelsEqual(c.model, other.model)
}

func modelsEqual(a, b *transform.PinholeCameraModel) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if *a.PinholeCameraIntrinsics != *b.PinholeCameraIntrinsics {
		return false
	}
	return distortersEqual(a.Distortion, b.Distortion)
}

func distortersEqual(a, b transform.Distorter) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.ModelType() != b.ModelType() {
		return false
	}
	ap, bp := a.Parameters(), b.Parameters()
	if len(ap) != len(bp) {
		return false
	}
	for i := range ap {
		if ap[i] != bp[i] {
			return false
		}
	}
	return true
}
