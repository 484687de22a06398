// Package transform provides the lens distortion and pinhole projection models
// used by the perception pipeline.
package transform

import (
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// DistortionType is the name of the distortion model.
type DistortionType string

const (
	// RadialTangentialDistortionType is the plumb-bob model with two radial and two
	// tangential coefficients, for narrow-field lenses modeled as pinhole cameras.
	RadialTangentialDistortionType = DistortionType("radial_tangential")
)

// Distorter defines a Transform that takes an undistorted point in the normalized
// image plane and distorts it according to the model.
type Distorter interface {
	ModelType() DistortionType
	CheckValid() error
	Parameters() []float64
	Transform(x, y float64) (float64, float64)
}

// Undistorter is a Distorter whose inverse is also available. The inverse may be
// iterative, so it reports convergence rather than returning a bare point.
type Undistorter interface {
	Distorter
	Undistort(pt r2.Point) UndistortionResult
}

// InvalidDistortionError is used when the distortion_parameters are invalid.
func InvalidDistortionError(msg string) error {
	return errors.Wrap(errors.New("invalid distortion_parameters"), msg)
}

// NewDistorter returns a Distorter given a valid DistortionType and its parameters.
func NewDistorter(distortionType DistortionType, parameters []float64) (Distorter, error) {
	switch distortionType {
	case RadialTangentialDistortionType:
		return NewRadialTangential(parameters)
	default:
		return nil, errors.Errorf("do not know how to parse %q distortion model", distortionType)
	}
}
