package safety

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBoundsInclusive(t *testing.T) {
	v := NewValidator(DefaultLimits(), false)

	assert.NoError(t, v.WheelsAngle(0, 0))
	assert.NoError(t, v.WheelsAngle(200, 360))
	assert.Error(t, v.WheelsAngle(201, 90))
	assert.Error(t, v.WheelsAngle(100, 361))

	assert.NoError(t, v.WheelsTime(1))
	assert.NoError(t, v.WheelsTime(5000))
	assert.Error(t, v.WheelsTime(0))
	assert.Error(t, v.WheelsTime(5001))

	assert.NoError(t, v.WheelsDistance(100, 3000))
	assert.Error(t, v.WheelsDistance(100, 3001))
	assert.Error(t, v.WheelsDistance(-1, 100))

	assert.NoError(t, v.HeadAbsolute(-180, -90))
	assert.NoError(t, v.HeadAbsolute(180, 90))
	assert.Error(t, v.HeadAbsolute(181, 0))
	assert.Error(t, v.HeadAbsolute(0, -91))

	assert.NoError(t, v.HeadAxis(200, 90))
	assert.Error(t, v.HeadAxis(200, 91))
	assert.NoError(t, v.HeadTime(600000))
	assert.Error(t, v.HeadTime(600001))
	assert.Error(t, v.HeadNoAngle(255))

	assert.NoError(t, v.HandAngle(200, 90))
	assert.Error(t, v.HandAngle(200, 91))
	assert.NoError(t, v.HandTime(600000, 0))
	assert.Error(t, v.HandTime(0, 0))
	assert.NoError(t, v.HandNoAngle(0))
	assert.Error(t, v.HandNoAngle(201))
}

func TestUnsafeBypassesAllChecks(t *testing.T) {
	v := NewValidator(DefaultLimits(), true)

	assert.NoError(t, v.WheelsAngle(9999, -50))
	assert.NoError(t, v.WheelsTime(0))
	assert.NoError(t, v.WheelsDistance(-1, 100000))
	assert.NoError(t, v.HeadAbsolute(720, 720))
	assert.NoError(t, v.HeadAxis(255, 180))
	assert.NoError(t, v.HeadTime(-5))
	assert.NoError(t, v.HeadNoAngle(255))
	assert.NoError(t, v.HandAngle(255, 180))
	assert.NoError(t, v.HandTime(0, 999))
	assert.NoError(t, v.HandNoAngle(255))
}

func TestRangeErrorDetails(t *testing.T) {
	v := NewValidator(DefaultLimits(), false)

	err := v.WheelsTime(9000)
	require.Error(t, err)

	var re *RangeError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "wheel time ms", re.Field)
	assert.Equal(t, 9000, re.Value)
	assert.Equal(t, 1, re.Min)
	assert.Equal(t, 5000, re.Max)
	assert.Contains(t, err.Error(), "out of range")
}

func TestCustomLimits(t *testing.T) {
	limits := DefaultLimits()
	limits.WheelSpeedMax = 50
	v := NewValidator(limits, false)

	assert.NoError(t, v.WheelsAngle(50, 90))
	assert.Error(t, v.WheelsAngle(51, 90))
}
