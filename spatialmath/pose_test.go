package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestZeroPose(t *testing.T) {
	zero := NewZeroPose()
	test.That(t, zero.Point(), test.ShouldResemble, r3.Vector{})
	test.That(t, OrientationAlmostEqual(zero.Orientation(), NewZeroOrientation()), test.ShouldBeTrue)
}

func TestPoseFromPoint(t *testing.T) {
	pt := r3.Vector{X: 1, Y: -2, Z: 3}
	pose := NewPoseFromPoint(pt)
	test.That(t, pose.Point().X, test.ShouldAlmostEqual, 1)
	test.That(t, pose.Point().Y, test.ShouldAlmostEqual, -2)
	test.That(t, pose.Point().Z, test.ShouldAlmostEqual, 3)
	test.That(t, OrientationAlmostEqual(pose.Orientation(), NewZeroOrientation()), test.ShouldBeTrue)
}

func TestTransformPoint(t *testing.T) {
	// 90 degrees about Z maps x onto y.
	rot := NewPoseFromOrientation(&R4AA{Theta: math.Pi / 2, RZ: 1})
	moved := TransformPoint(rot, r3.Vector{X: 1})
	test.That(t, moved.X, test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, moved.Y, test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, moved.Z, test.ShouldAlmostEqual, 0, 1e-9)

	// Rotation then translation.
	pose := NewPose(r3.Vector{X: 5, Y: 0, Z: 0}, &R4AA{Theta: math.Pi / 2, RZ: 1})
	moved = TransformPoint(pose, r3.Vector{X: 1})
	test.That(t, moved.X, test.ShouldAlmostEqual, 5, 1e-9)
	test.That(t, moved.Y, test.ShouldAlmostEqual, 1, 1e-9)
}

func TestComposeAndInverse(t *testing.T) {
	pose := NewPose(r3.Vector{X: 1, Y: 2, Z: 3}, &R4AA{Theta: math.Pi / 3, RX: 0, RY: 1, RZ: 0})
	identity := Compose(pose, PoseInverse(pose))
	test.That(t, PoseAlmostEqual(identity, NewZeroPose()), test.ShouldBeTrue)

	// Composing with the zero pose changes nothing.
	test.That(t, PoseAlmostEqual(Compose(pose, NewZeroPose()), pose), test.ShouldBeTrue)
	test.That(t, PoseAlmostEqual(Compose(NewZeroPose(), pose), pose), test.ShouldBeTrue)
}

func TestPoseAlmostEqualEps(t *testing.T) {
	a := NewPoseFromPoint(r3.Vector{X: 1, Y: 0, Z: 0})
	b := NewPoseFromPoint(r3.Vector{X: 1 + 1e-9, Y: 0, Z: 0})
	c := NewPoseFromPoint(r3.Vector{X: 1.1, Y: 0, Z: 0})
	test.That(t, PoseAlmostEqual(a, b), test.ShouldBeTrue)
	test.That(t, PoseAlmostEqual(a, c), test.ShouldBeFalse)
	test.That(t, PoseAlmostEqualEps(a, c, 0.2), test.ShouldBeTrue)
}

func TestQuatConversions(t *testing.T) {
	aa := &R4AA{Theta: math.Pi / 2, RX: 0, RY: 0, RZ: 1}
	q := aa.ToQuat()
	back := QuatToR4AA(q)
	test.That(t, back.Theta, test.ShouldAlmostEqual, math.Pi/2, 1e-9)
	test.That(t, back.RZ, test.ShouldAlmostEqual, 1, 1e-9)

	// A non-unit axis is normalized before conversion.
	skewed := &R4AA{Theta: math.Pi, RX: 2, RY: 0, RZ: 0}
	q = skewed.ToQuat()
	test.That(t, Norm(q), test.ShouldAlmostEqual, 1, 1e-9)
}
