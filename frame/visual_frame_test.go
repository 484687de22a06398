package frame

import (
	"image"
	"testing"

	"github.com/google/uuid"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/camgeom/camera"
	"go.viam.com/camgeom/transform"
)

func testCamera(t *testing.T) *camera.Camera {
	t.Helper()
	distortion, err := transform.NewRadialTangential([]float64{0.1, -0.05, 0.01, 0.02})
	test.That(t, err, test.ShouldBeNil)
	cam, err := camera.New("cam0", &transform.PinholeCameraModel{
		PinholeCameraIntrinsics: &transform.PinholeCameraIntrinsics{
			Width: 640, Height: 480, Fx: 500, Fy: 500, Ppx: 320, Ppy: 240,
		},
		Distortion: distortion,
	})
	test.That(t, err, test.ShouldBeNil)
	return cam
}

func TestNewVisualFrame(t *testing.T) {
	vf := NewVisualFrame()
	test.That(t, vf.ID(), test.ShouldNotResemble, uuid.UUID{})
	test.That(t, vf.HasKeypointMeasurements(), test.ShouldBeFalse)
	test.That(t, vf.HasKeypointUncertainties(), test.ShouldBeFalse)
	test.That(t, vf.HasKeypointOrientations(), test.ShouldBeFalse)
	test.That(t, vf.HasKeypointScales(), test.ShouldBeFalse)
	test.That(t, vf.HasDescriptors(), test.ShouldBeFalse)
	test.That(t, vf.HasImage(), test.ShouldBeFalse)
	test.That(t, vf.CameraGeometry(), test.ShouldBeNil)

	id := uuid.New()
	vf.SetID(id)
	test.That(t, vf.ID(), test.ShouldResemble, id)
}

func TestTimestampsAreIndependent(t *testing.T) {
	vf := NewVisualFrame()
	vf.SetTimestamp(100)
	vf.SetHardwareTimestamp(3)
	vf.SetSystemTimestamp(250)
	test.That(t, vf.Timestamp(), test.ShouldEqual, int64(100))
	test.That(t, vf.HardwareTimestamp(), test.ShouldEqual, int64(3))
	test.That(t, vf.SystemTimestamp(), test.ShouldEqual, int64(250))
}

func TestKeypointChannels(t *testing.T) {
	vf := NewVisualFrame()

	keypoints := mat.NewDense(2, 3, []float64{
		10, 20, 30,
		11, 21, 31,
	})
	test.That(t, vf.SetKeypointMeasurements(keypoints), test.ShouldBeNil)
	test.That(t, vf.HasKeypointMeasurements(), test.ShouldBeTrue)

	stored, err := vf.KeypointMeasurements()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, stored, test.ShouldEqual, keypoints)

	kp, err := vf.KeypointMeasurement(1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, kp.AtVec(0), test.ShouldEqual, 20.0)
	test.That(t, kp.AtVec(1), test.ShouldEqual, 21.0)

	// The single-keypoint accessor is a view into the backing matrix.
	keypoints.Set(0, 1, 99)
	test.That(t, kp.AtVec(0), test.ShouldEqual, 99.0)

	_, err = vf.KeypointMeasurement(3)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = vf.KeypointMeasurement(-1)
	test.That(t, err, test.ShouldNotBeNil)

	bad := mat.NewDense(3, 2, nil)
	test.That(t, vf.SetKeypointMeasurements(bad), test.ShouldNotBeNil)

	test.That(t, vf.SetKeypointUncertainties([]float64{0.5, 0.6, 0.7}), test.ShouldBeNil)
	u, err := vf.KeypointUncertainty(2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, u, test.ShouldEqual, 0.7)
	_, err = vf.KeypointUncertainty(3)
	test.That(t, err, test.ShouldNotBeNil)

	test.That(t, vf.SetKeypointOrientations([]float64{0.1, 0.2, 0.3}), test.ShouldBeNil)
	o, err := vf.KeypointOrientation(0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, o, test.ShouldEqual, 0.1)

	test.That(t, vf.SetKeypointScales([]float64{1, 2, 4}), test.ShouldBeNil)
	s, err := vf.KeypointScale(2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s, test.ShouldEqual, 4.0)
	_, err = vf.KeypointScale(-1)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestDescriptorChannels(t *testing.T) {
	vf := NewVisualFrame()
	descriptors := Descriptors{
		Descriptor{0x01, 0x02},
		Descriptor{0x03, 0x04},
	}
	test.That(t, vf.SetDescriptors(descriptors), test.ShouldBeNil)
	test.That(t, vf.HasDescriptors(), test.ShouldBeTrue)

	d, err := vf.Descriptor(1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, d, test.ShouldResemble, Descriptor{0x03, 0x04})

	_, err = vf.Descriptor(2)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestImageIsShallow(t *testing.T) {
	vf := NewVisualFrame()
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	test.That(t, vf.SetImage(img), test.ShouldBeNil)
	test.That(t, vf.HasImage(), test.ShouldBeTrue)

	stored, err := vf.Image()
	test.That(t, err, test.ShouldBeNil)
	// Shallow assignment: the frame shares pixel data with the caller.
	img.Pix[0] = 255
	test.That(t, stored.(*image.Gray).Pix[0], test.ShouldEqual, uint8(255))
}

func TestGenericChannelPassthrough(t *testing.T) {
	vf := NewVisualFrame()
	test.That(t, AddChannel[[]int](vf.Channels(), "track_ids"), test.ShouldBeNil)
	test.That(t, vf.HasChannel("track_ids"), test.ShouldBeTrue)
	test.That(t, SetChannelData(vf.Channels(), "track_ids", []int{7, 8}), test.ShouldBeNil)

	ids, err := ChannelData[[]int](vf.Channels(), "track_ids")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ids, test.ShouldResemble, []int{7, 8})
}

func TestSharedCameraGeometry(t *testing.T) {
	cam := testCamera(t)
	frameA := NewVisualFrame()
	frameB := NewVisualFrame()
	frameA.SetCameraGeometry(cam)
	frameB.SetCameraGeometry(cam)

	// Mutating the shared calibration through one frame's handle is visible
	// through the other; the handles alias one camera.
	frameA.CameraGeometry().Model().PinholeCameraIntrinsics.Fx = 555
	test.That(t, frameB.CameraGeometry().Model().Fx, test.ShouldEqual, 555.0)
	test.That(t, frameA.CameraGeometry(), test.ShouldEqual, frameB.CameraGeometry())
}
