package frame

import (
	"image"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/camgeom/camera"
)

// Well-known channel names. Other names are free for pipeline-specific data.
const (
	KeypointMeasurementsChannel  = "keypoint_measurements"
	KeypointUncertaintiesChannel = "keypoint_measurement_uncertainties"
	KeypointOrientationsChannel  = "keypoint_orientations"
	KeypointScalesChannel        = "keypoint_scales"
	DescriptorsChannel           = "descriptors"
	ImageChannel                 = "raw_image"
)

// Descriptor is one feature descriptor's bytes.
type Descriptor []byte

// Descriptors is the set of descriptors for a frame's keypoints.
type Descriptors []Descriptor

// VisualFrame holds the image and keypoint data from a single camera
// observation.
//
// The frame stores three timestamps, all in integer nanoseconds but on
// independent clocks that must never be conflated: Timestamp is the one used in
// processing, possibly corrected; HardwareTimestamp is the raw device stamp,
// whose scale and offset differ per device; SystemTimestamp is when the image
// was received at the host computer.
//
// The associated camera geometry is a shared handle; mutating the referenced
// camera's calibration is visible to every frame and rig that references the
// same camera.
type VisualFrame struct {
	id            uuid.UUID
	stamp         int64
	hardwareStamp int64
	systemStamp   int64
	channels      ChannelGroup
	camGeometry   *camera.Camera
}

// NewVisualFrame creates an empty frame with a freshly generated id.
func NewVisualFrame() *VisualFrame {
	return &VisualFrame{id: uuid.New()}
}

// ID returns the frame id.
func (vf *VisualFrame) ID() uuid.UUID {
	return vf.id
}

// SetID sets the frame id.
func (vf *VisualFrame) SetID(id uuid.UUID) {
	vf.id = id
}

// Timestamp returns the processing timestamp in nanoseconds.
func (vf *VisualFrame) Timestamp() int64 {
	return vf.stamp
}

// SetTimestamp sets the processing timestamp in nanoseconds.
func (vf *VisualFrame) SetTimestamp(stamp int64) {
	vf.stamp = stamp
}

// HardwareTimestamp returns the device timestamp.
func (vf *VisualFrame) HardwareTimestamp() int64 {
	return vf.hardwareStamp
}

// SetHardwareTimestamp sets the device timestamp.
func (vf *VisualFrame) SetHardwareTimestamp(stamp int64) {
	vf.hardwareStamp = stamp
}

// SystemTimestamp returns the host-system timestamp in nanoseconds.
func (vf *VisualFrame) SystemTimestamp() int64 {
	return vf.systemStamp
}

// SetSystemTimestamp sets the host-system timestamp in nanoseconds.
func (vf *VisualFrame) SetSystemTimestamp(stamp int64) {
	vf.systemStamp = stamp
}

// Channels exposes the frame's channel store for arbitrary named data; use the
// package-level generic accessors on it.
func (vf *VisualFrame) Channels() *ChannelGroup {
	return &vf.channels
}

// HasChannel reports whether a channel with this name is stored in the frame.
func (vf *VisualFrame) HasChannel(name string) bool {
	return vf.channels.HasChannel(name)
}

// CameraGeometry returns the shared camera geometry handle, or nil if unset.
func (vf *VisualFrame) CameraGeometry() *camera.Camera {
	return vf.camGeometry
}

// SetCameraGeometry associates the frame with a camera geometry handle.
func (vf *VisualFrame) SetCameraGeometry(cam *camera.Camera) {
	vf.camGeometry = cam
}

// HasKeypointMeasurements reports whether keypoint measurements are stored in this frame.
func (vf *VisualFrame) HasKeypointMeasurements() bool {
	return vf.channels.HasChannel(KeypointMeasurementsChannel)
}

// HasKeypointUncertainties reports whether keypoint measurement uncertainties are stored in this frame.
func (vf *VisualFrame) HasKeypointUncertainties() bool {
	return vf.channels.HasChannel(KeypointUncertaintiesChannel)
}

// HasKeypointOrientations reports whether keypoint orientations are stored in this frame.
func (vf *VisualFrame) HasKeypointOrientations() bool {
	return vf.channels.HasChannel(KeypointOrientationsChannel)
}

// HasKeypointScales reports whether keypoint scales are stored in this frame.
func (vf *VisualFrame) HasKeypointScales() bool {
	return vf.channels.HasChannel(KeypointScalesChannel)
}

// HasDescriptors reports whether descriptors are stored in this frame.
func (vf *VisualFrame) HasDescriptors() bool {
	return vf.channels.HasChannel(DescriptorsChannel)
}

// HasImage reports whether an image is stored in this frame.
func (vf *VisualFrame) HasImage() bool {
	return vf.channels.HasChannel(ImageChannel)
}

// KeypointMeasurements returns the 2xN matrix of keypoint image coordinates,
// one keypoint per column. The returned matrix is the backing storage itself.
func (vf *VisualFrame) KeypointMeasurements() (*mat.Dense, error) {
	return ChannelData[*mat.Dense](&vf.channels, KeypointMeasurementsChannel)
}

// SetKeypointMeasurements replaces the frame's keypoint measurements. The
// matrix must be 2xN.
func (vf *VisualFrame) SetKeypointMeasurements(keypoints *mat.Dense) error {
	if rows, cols := keypoints.Dims(); rows != 2 {
		return errors.Errorf("keypoint measurements must be 2xN, got %dx%d", rows, cols)
	}
	return SetChannelData(&vf.channels, KeypointMeasurementsChannel, keypoints)
}

// KeypointMeasurement returns a column view of the keypoint at index. The view
// aliases the backing matrix and must not be assumed to outlive a subsequent
// replacement of the whole channel.
func (vf *VisualFrame) KeypointMeasurement(index int) (mat.Vector, error) {
	keypoints, err := vf.KeypointMeasurements()
	if err != nil {
		return nil, err
	}
	if _, cols := keypoints.Dims(); index < 0 || index >= cols {
		return nil, errors.Errorf("keypoint index %d out of range, frame has %d keypoints", index, cols)
	}
	return keypoints.ColView(index), nil
}

// KeypointUncertainties returns the per-keypoint measurement uncertainties.
func (vf *VisualFrame) KeypointUncertainties() ([]float64, error) {
	return ChannelData[[]float64](&vf.channels, KeypointUncertaintiesChannel)
}

// SetKeypointUncertainties replaces the per-keypoint measurement uncertainties.
func (vf *VisualFrame) SetKeypointUncertainties(uncertainties []float64) error {
	return SetChannelData(&vf.channels, KeypointUncertaintiesChannel, uncertainties)
}

// KeypointUncertainty returns the measurement uncertainty of the keypoint at index.
func (vf *VisualFrame) KeypointUncertainty(index int) (float64, error) {
	uncertainties, err := vf.KeypointUncertainties()
	if err != nil {
		return 0, err
	}
	if index < 0 || index >= len(uncertainties) {
		return 0, errors.Errorf("keypoint index %d out of range, frame has %d uncertainties", index, len(uncertainties))
	}
	return uncertainties[index], nil
}

// KeypointOrientations returns the per-keypoint orientations in radians.
func (vf *VisualFrame) KeypointOrientations() ([]float64, error) {
	return ChannelData[[]float64](&vf.channels, KeypointOrientationsChannel)
}

// SetKeypointOrientations replaces the per-keypoint orientations.
func (vf *VisualFrame) SetKeypointOrientations(orientations []float64) error {
	return SetChannelData(&vf.channels, KeypointOrientationsChannel, orientations)
}

// KeypointOrientation returns the orientation of the keypoint at index.
func (vf *VisualFrame) KeypointOrientation(index int) (float64, error) {
	orientations, err := vf.KeypointOrientations()
	if err != nil {
		return 0, err
	}
	if index < 0 || index >= len(orientations) {
		return 0, errors.Errorf("keypoint index %d out of range, frame has %d orientations", index, len(orientations))
	}
	return orientations[index], nil
}

// KeypointScales returns the per-keypoint scales.
func (vf *VisualFrame) KeypointScales() ([]float64, error) {
	return ChannelData[[]float64](&vf.channels, KeypointScalesChannel)
}

// SetKeypointScales replaces the per-keypoint scales.
func (vf *VisualFrame) SetKeypointScales(scales []float64) error {
	return SetChannelData(&vf.channels, KeypointScalesChannel, scales)
}

// KeypointScale returns the scale of the keypoint at index.
func (vf *VisualFrame) KeypointScale(index int) (float64, error) {
	scales, err := vf.KeypointScales()
	if err != nil {
		return 0, err
	}
	if index < 0 || index >= len(scales) {
		return 0, errors.Errorf("keypoint index %d out of range, frame has %d scales", index, len(scales))
	}
	return scales[index], nil
}

// Descriptors returns the frame's descriptors.
func (vf *VisualFrame) Descriptors() (Descriptors, error) {
	return ChannelData[Descriptors](&vf.channels, DescriptorsChannel)
}

// SetDescriptors replaces the frame's descriptors.
func (vf *VisualFrame) SetDescriptors(descriptors Descriptors) error {
	return SetChannelData(&vf.channels, DescriptorsChannel, descriptors)
}

// Descriptor returns the descriptor at index. The bytes alias the backing
// storage.
func (vf *VisualFrame) Descriptor(index int) (Descriptor, error) {
	descriptors, err := vf.Descriptors()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(descriptors) {
		return nil, errors.Errorf("descriptor index %d out of range, frame has %d descriptors", index, len(descriptors))
	}
	return descriptors[index], nil
}

// Image returns the image stored in the frame.
func (vf *VisualFrame) Image() (image.Image, error) {
	return ChannelData[image.Image](&vf.channels, ImageChannel)
}

// SetImage stores an image in the frame. This is a shallow assignment: the
// frame shares the pixel data with the caller. Copy the image first if the
// frame should own it.
func (vf *VisualFrame) SetImage(img image.Image) error {
	return SetChannelData(&vf.channels, ImageChannel, img)
}
