package camera

import (
	"github.com/edaniels/golog"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"go.viam.com/camgeom/spatialmath"
)

var logger = golog.NewLogger("camera")

// Rig is a fixed collection of co-mounted cameras with known relative
// extrinsics, treated as one sensing unit. The cameras slice and the extrinsic
// transforms T_C_B (camera-from-body) are parallel: camera i is posed by
// extrinsic i, and the two always have the same length. An id-to-index map
// provides O(1) lookup of a camera's slot from its id.
//
// Rig does no internal synchronization; see the package documentation of the
// shared Camera handle for the aliasing and concurrency contract.
type Rig struct {
	id        uuid.UUID
	label     string
	cameras   []*Camera
	tCB       []spatialmath.Pose
	idToIndex map[uuid.UUID]int
}

// NewRig creates a rig from an id, the camera-from-body extrinsics, the camera
// geometries, and a label. The camera and extrinsic counts must match and every
// camera must be non-nil; a rig is never created in an inconsistent state.
func NewRig(id uuid.UUID, tCB []spatialmath.Pose, cameras []*Camera, label string) (*Rig, error) {
	if len(cameras) != len(tCB) {
		return nil, errors.Errorf(
			"number of cameras (%d) does not match number of extrinsic transforms (%d)",
			len(cameras), len(tCB))
	}
	rig := &Rig{
		id:      id,
		label:   label,
		cameras: append([]*Camera{}, cameras...),
		tCB:     append([]spatialmath.Pose{}, tCB...),
	}
	if err := rig.rebuildIndex(); err != nil {
		return nil, err
	}
	return rig, nil
}

func (rig *Rig) rebuildIndex() error {
	idToIndex := make(map[uuid.UUID]int, len(rig.cameras))
	for i, cam := range rig.cameras {
		if cam == nil {
			return errors.Errorf("camera at index %d is nil", i)
		}
		if rig.tCB[i] == nil {
			return errors.Errorf("extrinsic transform at index %d is nil", i)
		}
		if prev, ok := idToIndex[cam.ID()]; ok {
			// Later entries win, matching the historical behavior of the map.
			logger.Warnw("duplicate camera id in rig, index lookup will resolve to the later entry",
				"id", cam.ID(), "first_index", prev, "index", i)
		}
		idToIndex[cam.ID()] = i
	}
	rig.idToIndex = idToIndex
	return nil
}

// ID returns the rig's unique id.
func (rig *Rig) ID() uuid.UUID {
	return rig.id
}

// Label returns the rig's label.
func (rig *Rig) Label() string {
	return rig.label
}

// NumCameras returns the number of cameras in the rig.
func (rig *Rig) NumCameras() int {
	return len(rig.cameras)
}

func (rig *Rig) checkIndex(i int) error {
	if i < 0 || i >= len(rig.cameras) {
		return errors.Errorf("camera index %d out of range, rig has %d cameras", i, len(rig.cameras))
	}
	return nil
}

// Camera returns the shared geometry handle for camera i.
func (rig *Rig) Camera(i int) (*Camera, error) {
	if err := rig.checkIndex(i); err != nil {
		return nil, err
	}
	return rig.cameras[i], nil
}

// SetCamera replaces the geometry for camera i and rebuilds the id-to-index
// map, so id lookups never go stale after a replacement.
func (rig *Rig) SetCamera(i int, cam *Camera) error {
	if err := rig.checkIndex(i); err != nil {
		return err
	}
	if cam == nil {
		return errors.New("cannot set a nil camera")
	}
	rig.cameras[i] = cam
	return rig.rebuildIndex()
}

// TCB returns the camera-from-body extrinsic transform T_C_B for camera i.
func (rig *Rig) TCB(i int) (spatialmath.Pose, error) {
	if err := rig.checkIndex(i); err != nil {
		return nil, err
	}
	return rig.tCB[i], nil
}

// SetTCB replaces the camera-from-body extrinsic transform for camera i.
func (rig *Rig) SetTCB(i int, pose spatialmath.Pose) error {
	if err := rig.checkIndex(i); err != nil {
		return err
	}
	if pose == nil {
		return errors.New("cannot set a nil extrinsic transform")
	}
	rig.tCB[i] = pose
	return nil
}

// Cameras returns a copy of the camera slice. The handles themselves are shared.
func (rig *Rig) Cameras() []*Camera {
	return append([]*Camera{}, rig.cameras...)
}

// Transforms returns a copy of the extrinsic transform slice.
func (rig *Rig) Transforms() []spatialmath.Pose {
	return append([]spatialmath.Pose{}, rig.tCB...)
}

// CameraID returns the id of the camera at index i.
func (rig *Rig) CameraID(i int) (uuid.UUID, error) {
	if err := rig.checkIndex(i); err != nil {
		return uuid.UUID{}, err
	}
	return rig.cameras[i].ID(), nil
}

// CameraIndex returns the index of the camera with the given id, or -1 if the
// rig has no such camera.
func (rig *Rig) CameraIndex(id uuid.UUID) int {
	if i, ok := rig.idToIndex[id]; ok {
		return i
	}
	return -1
}

// HasCameraWithID reports whether the rig has a camera with this id.
func (rig *Rig) HasCameraWithID(id uuid.UUID) bool {
	_, ok := rig.idToIndex[id]
	return ok
}

// Equal reports structural equality: same camera count, label and rig id, and
// every camera/extrinsic pair equal pairwise in order. Camera comparison
// follows the shared-or-value-equal semantics of Camera.Equal.
func (rig *Rig) Equal(other *Rig) bool {
	if rig == other {
		return true
	}
	if rig == nil || other == nil {
		return false
	}
	if rig.NumCameras() != other.NumCameras() || rig.label != other.label || rig.id != other.id {
		return false
	}
	for i := range rig.cameras {
		if !rig.cameras[i].Equal(other.cameras[i]) {
			return false
		}
		if !spatialmath.PoseAlmostEqual(rig.tCB[i], other.tCB[i]) {
			return false
		}
	}
	return true
}
