package camera

import (
	"github.com/pkg/errors"

	"go.viam.com/camgeom/spatialmath"
	"go.viam.com/camgeom/transform"
)

// ErrRigFromConfigUnsupported is returned by NewRigFromConfig; building a rig
// from a configuration tree is a declared interface point that is not yet
// implemented.
var ErrRigFromConfigUnsupported = errors.New("building a rig from a configuration tree is unsupported")

// RigConfig is the configuration-tree form of a rig, as a hierarchical
// key-value configuration loader would produce it.
type RigConfig struct {
	Label   string            `json:"label"`
	Cameras []RigCameraConfig `json:"cameras"`
}

// RigCameraConfig is the configuration-tree form of one camera in a rig.
type RigCameraConfig struct {
	Label                string                             `json:"label"`
	Intrinsics           *transform.PinholeCameraIntrinsics `json:"intrinsic_parameters"`
	DistortionType       transform.DistortionType           `json:"distortion_type"`
	DistortionParameters []float64                          `json:"distortion_parameters"`
	Extrinsics           *spatialmath.R4AA                  `json:"extrinsic_rotation"`
}

// NewRigFromConfig would build a rig from its configuration-tree form. It
// always reports ErrRigFromConfigUnsupported rather than producing a partially
// initialized rig; callers should handle it as a normal control-flow branch.
func NewRigFromConfig(cfg *RigConfig) (*Rig, error) {
	return nil, ErrRigFromConfigUnsupported
}
