package transform

import (
	"fmt"
	"io"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// NumRadialTangentialParams is the length of a radial-tangential coefficient
// vector. The binding order is [k1, k2, p1, p2]: two radial coefficients
// followed by two tangential ones.
const NumRadialTangentialParams = 4

// Convergence contract for the iterative inverse. The forward model has no
// closed-form inverse, so Undistort runs Newton-Raphson seeded at the observed
// point until the squared correction falls below undistortTolerance² or the
// iteration cap is hit.
const (
	undistortMaxIterations = 20
	undistortTolerance     = 1e-10
)

// RadialTangential applies the standard radial-tangential distortion model for
// pinhole cameras:
//
//	r² = x² + y²
//	radial = 1 + k1*r² + k2*r⁴
//	x' = x*radial + 2*p1*x*y + p2*(r² + 2*x²)
//	y' = y*radial + 2*p2*x*y + p1*(r² + 2*y²)
//
// where (x, y) is a point in the normalized image plane and (x', y') the
// corresponding distorted point. The origin is a fixed point of the map for any
// coefficient values.
type RadialTangential struct {
	RadialK1     float64 `json:"rk1"`
	RadialK2     float64 `json:"rk2"`
	TangentialP1 float64 `json:"tp1"`
	TangentialP2 float64 `json:"tp2"`
}

// UndistortionResult is the outcome of the iterative inverse. Point holds the
// best available estimate whether or not the iteration converged; callers that
// care about stale estimates near the model's domain boundary must check
// Converged before trusting it.
type UndistortionResult struct {
	Point      r2.Point
	Converged  bool
	Iterations int
}

// ValidateParameters checks that a coefficient vector is structurally valid for
// this model: length exactly 4 and every value finite. It says nothing about
// the perceptual plausibility of the resulting distortion.
func ValidateParameters(coeffs []float64) error {
	if len(coeffs) != NumRadialTangentialParams {
		return InvalidDistortionError(
			fmt.Sprintf("expected %d parameters, got %d", NumRadialTangentialParams, len(coeffs)))
	}
	for i, c := range coeffs {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return InvalidDistortionError(fmt.Sprintf("parameter %d is not finite: %v", i, c))
		}
	}
	return nil
}

// NewRadialTangential takes a coefficient vector in [k1, k2, p1, p2] order and
// returns the distortion model, rejecting vectors of the wrong length or with
// non-finite values.
func NewRadialTangential(coeffs []float64) (*RadialTangential, error) {
	if err := ValidateParameters(coeffs); err != nil {
		return nil, err
	}
	return &RadialTangential{coeffs[0], coeffs[1], coeffs[2], coeffs[3]}, nil
}

// ModelType returns the type of distortion model.
func (rt *RadialTangential) ModelType() DistortionType {
	return RadialTangentialDistortionType
}

// CheckValid checks if the fields for RadialTangential have valid inputs.
func (rt *RadialTangential) CheckValid() error {
	if rt == nil {
		return InvalidDistortionError("RadialTangential shaped distortion_parameters not provided")
	}
	return ValidateParameters(rt.Parameters())
}

// Parameters returns the parameters of the distortion model as a list of floats
// in [k1, k2, p1, p2] order.
func (rt *RadialTangential) Parameters() []float64 {
	if rt == nil {
		return []float64{}
	}
	return []float64{rt.RadialK1, rt.RadialK2, rt.TangentialP1, rt.TangentialP2}
}

// Transform applies the distortion model to a point in the normalized image
// plane, satisfying the Distorter interface.
func (rt *RadialTangential) Transform(x, y float64) (float64, float64) {
	if rt == nil {
		return x, y
	}
	return distortRadTan(rt.RadialK1, rt.RadialK2, rt.TangentialP1, rt.TangentialP2, x, y)
}

// Distort applies the distortion model to a point in the normalized image plane.
func (rt *RadialTangential) Distort(pt r2.Point) r2.Point {
	x, y := rt.Transform(pt.X, pt.Y)
	return r2.Point{X: x, Y: y}
}

// DistortJacobian distorts a point and also returns the analytic 2x2 Jacobian
// of the distorted coordinates with respect to the input point.
func (rt *RadialTangential) DistortJacobian(pt r2.Point) (r2.Point, *mat.Dense) {
	return distortJacobianRadTan(rt.RadialK1, rt.RadialK2, rt.TangentialP1, rt.TangentialP2, pt)
}

// ParameterJacobian returns the analytic 2x4 Jacobian of the distorted
// coordinates with respect to (k1, k2, p1, p2), evaluated at the given
// undistorted point. Used by calibration refinement, not the forward pipeline.
func (rt *RadialTangential) ParameterJacobian(pt r2.Point) *mat.Dense {
	return parameterJacobianRadTan(pt)
}

// Undistort recovers the normalized-image-plane point corresponding to a
// distorted observation. See UndistortionResult for the convergence contract.
func (rt *RadialTangential) Undistort(pt r2.Point) UndistortionResult {
	return undistortRadTan(rt.RadialK1, rt.RadialK2, rt.TangentialP1, rt.TangentialP2, pt)
}

// DistortBatch distorts a 2xN matrix of normalized-image-plane points in place,
// one point per column.
func (rt *RadialTangential) DistortBatch(pts *mat.Dense) error {
	rows, cols := pts.Dims()
	if rows != 2 {
		return errors.Errorf("point batch must be 2xN, got %dx%d", rows, cols)
	}
	for j := 0; j < cols; j++ {
		x, y := rt.Transform(pts.At(0, j), pts.At(1, j))
		pts.Set(0, j, x)
		pts.Set(1, j, y)
	}
	return nil
}

// WriteParameters writes a human-readable rendering of the coefficients to w.
// The label is extra text used by the caller to distinguish cameras.
func (rt *RadialTangential) WriteParameters(w io.Writer, label string) {
	fmt.Fprintf(w, "%s distortion: radial_tangential\n", label)
	fmt.Fprintf(w, "  k1: %v, k2: %v, p1: %v, p2: %v\n",
		rt.RadialK1, rt.RadialK2, rt.TangentialP1, rt.TangentialP2)
}

func (rt *RadialTangential) String() string {
	return fmt.Sprintf("radial_tangential[k1: %v, k2: %v, p1: %v, p2: %v]",
		rt.RadialK1, rt.RadialK2, rt.TangentialP1, rt.TangentialP2)
}

// DistortWithCoefficients is the stateless variant of Distort for calibration
// optimization, where the coefficient vector is perturbed externally and any
// internally stored parameters must be ignored.
func DistortWithCoefficients(coeffs []float64, pt r2.Point) (r2.Point, error) {
	if err := ValidateParameters(coeffs); err != nil {
		return r2.Point{}, err
	}
	x, y := distortRadTan(coeffs[0], coeffs[1], coeffs[2], coeffs[3], pt.X, pt.Y)
	return r2.Point{X: x, Y: y}, nil
}

// DistortJacobianWithCoefficients is the stateless variant of DistortJacobian.
func DistortJacobianWithCoefficients(coeffs []float64, pt r2.Point) (r2.Point, *mat.Dense, error) {
	if err := ValidateParameters(coeffs); err != nil {
		return r2.Point{}, nil, err
	}
	distorted, jac := distortJacobianRadTan(coeffs[0], coeffs[1], coeffs[2], coeffs[3], pt)
	return distorted, jac, nil
}

// ParameterJacobianWithCoefficients is the stateless variant of ParameterJacobian.
func ParameterJacobianWithCoefficients(coeffs []float64, pt r2.Point) (*mat.Dense, error) {
	if err := ValidateParameters(coeffs); err != nil {
		return nil, err
	}
	return parameterJacobianRadTan(pt), nil
}

// UndistortWithCoefficients is the stateless variant of Undistort.
func UndistortWithCoefficients(coeffs []float64, pt r2.Point) (UndistortionResult, error) {
	if err := ValidateParameters(coeffs); err != nil {
		return UndistortionResult{}, err
	}
	return undistortRadTan(coeffs[0], coeffs[1], coeffs[2], coeffs[3], pt), nil
}

func distortRadTan(k1, k2, p1, p2, x, y float64) (float64, float64) {
	r2v := x*x + y*y
	radial := 1.0 + k1*r2v + k2*r2v*r2v
	xd := x*radial + 2.0*p1*x*y + p2*(r2v+2.0*x*x)
	yd := y*radial + 2.0*p2*x*y + p1*(r2v+2.0*y*y)
	return xd, yd
}

func distortJacobianRadTan(k1, k2, p1, p2 float64, pt r2.Point) (r2.Point, *mat.Dense) {
	x, y := pt.X, pt.Y
	r2v := x*x + y*y
	radial := 1.0 + k1*r2v + k2*r2v*r2v

	xd := x*radial + 2.0*p1*x*y + p2*(r2v+2.0*x*x)
	yd := y*radial + 2.0*p2*x*y + p1*(r2v+2.0*y*y)

	// d(radial)/dx = 2x*(k1 + 2*k2*r²), and symmetrically for y.
	dRadDx := 2.0 * x * (k1 + 2.0*k2*r2v)
	dRadDy := 2.0 * y * (k1 + 2.0*k2*r2v)

	jac := mat.NewDense(2, 2, []float64{
		radial + x*dRadDx + 2.0*p1*y + 6.0*p2*x,
		x*dRadDy + 2.0*p1*x + 2.0*p2*y,
		y*dRadDx + 2.0*p2*y + 2.0*p1*x,
		radial + y*dRadDy + 2.0*p2*x + 6.0*p1*y,
	})
	return r2.Point{X: xd, Y: yd}, jac
}

func parameterJacobianRadTan(pt r2.Point) *mat.Dense {
	x, y := pt.X, pt.Y
	r2v := x*x + y*y
	return mat.NewDense(2, NumRadialTangentialParams, []float64{
		x * r2v, x * r2v * r2v, 2.0 * x * y, r2v + 2.0*x*x,
		y * r2v, y * r2v * r2v, r2v + 2.0*y*y, 2.0 * x * y,
	})
}

func undistortRadTan(k1, k2, p1, p2 float64, observed r2.Point) UndistortionResult {
	// Start with the distorted point as initial guess.
	xu, yu := observed.X, observed.Y

	for i := 0; i < undistortMaxIterations; i++ {
		estimate, jac := distortJacobianRadTan(k1, k2, p1, p2, r2.Point{X: xu, Y: yu})
		errX := estimate.X - observed.X
		errY := estimate.Y - observed.Y

		a, b := jac.At(0, 0), jac.At(0, 1)
		c, d := jac.At(1, 0), jac.At(1, 1)
		det := a*d - b*c
		if det == 0 {
			return UndistortionResult{Point: r2.Point{X: xu, Y: yu}, Converged: false, Iterations: i}
		}

		// Newton correction: Δ = J⁻¹ * (distort(estimate) - observed).
		dx := (d*errX - b*errY) / det
		dy := (-c*errX + a*errY) / det
		xu -= dx
		yu -= dy

		if dx*dx+dy*dy < undistortTolerance*undistortTolerance {
			return UndistortionResult{Point: r2.Point{X: xu, Y: yu}, Converged: true, Iterations: i + 1}
		}
	}
	return UndistortionResult{
		Point:      r2.Point{X: xu, Y: yu},
		Converged:  false,
		Iterations: undistortMaxIterations,
	}
}
