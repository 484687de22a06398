package frame

import (
	"errors"
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
)

func TestAddChannel(t *testing.T) {
	var group ChannelGroup
	test.That(t, group.HasChannel("keypoints"), test.ShouldBeFalse)

	test.That(t, AddChannel[*mat.Dense](&group, "keypoints"), test.ShouldBeNil)
	test.That(t, group.HasChannel("keypoints"), test.ShouldBeTrue)

	// A default-valued entry exists immediately after registration.
	stored, err := ChannelData[*mat.Dense](&group, "keypoints")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, stored, test.ShouldBeNil)

	// Registering the same name again fails, with either type.
	err = AddChannel[*mat.Dense](&group, "keypoints")
	test.That(t, err, test.ShouldNotBeNil)
	err = AddChannel[[]float64](&group, "keypoints")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "already exists")
}

func TestChannelTypeSafety(t *testing.T) {
	var group ChannelGroup
	keypoints := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	test.That(t, SetChannelData(&group, "keypoints", keypoints), test.ShouldBeNil)

	// Fetching a 2-row coordinate matrix as an uncertainty vector must fail
	// with a type error, never reinterpret the stored data.
	_, err := ChannelData[[]float64](&group, "keypoints")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrChannelType), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "holds *mat.Dense")

	// Mutable access and replacement are held to the same contract.
	_, err = MutableChannelData[[]float64](&group, "keypoints")
	test.That(t, errors.Is(err, ErrChannelType), test.ShouldBeTrue)
	err = SetChannelData(&group, "keypoints", []float64{1, 2, 3})
	test.That(t, errors.Is(err, ErrChannelType), test.ShouldBeTrue)

	// The correctly typed accessor still works.
	stored, err := ChannelData[*mat.Dense](&group, "keypoints")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, stored, test.ShouldEqual, keypoints)
}

func TestChannelDataMissing(t *testing.T) {
	var group ChannelGroup
	_, err := ChannelData[[]float64](&group, "nope")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "does not exist")
}

func TestSetChannelDataReplacesWholesale(t *testing.T) {
	var group ChannelGroup
	test.That(t, SetChannelData(&group, "scales", []float64{1, 2, 3}), test.ShouldBeNil)
	test.That(t, SetChannelData(&group, "scales", []float64{9}), test.ShouldBeNil)

	scales, err := ChannelData[[]float64](&group, "scales")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, scales, test.ShouldResemble, []float64{9})
}

func TestMutableChannelData(t *testing.T) {
	var group ChannelGroup
	test.That(t, SetChannelData(&group, "scales", []float64{1, 2, 3}), test.ShouldBeNil)

	ptr, err := MutableChannelData[[]float64](&group, "scales")
	test.That(t, err, test.ShouldBeNil)
	*ptr = []float64{4, 5}

	scales, err := ChannelData[[]float64](&group, "scales")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, scales, test.ShouldResemble, []float64{4, 5})
}

func TestChannelNames(t *testing.T) {
	var group ChannelGroup
	test.That(t, SetChannelData(&group, "b", 2), test.ShouldBeNil)
	test.That(t, SetChannelData(&group, "a", 1), test.ShouldBeNil)
	test.That(t, SetChannelData(&group, "c", 3), test.ShouldBeNil)
	test.That(t, group.ChannelNames(), test.ShouldResemble, []string{"a", "b", "c"})
}
