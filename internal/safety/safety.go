// Package safety enforces motion limits before commands reach the MCUs.
package safety

import "fmt"

// Limits holds inclusive [min,max] bounds per motion family. The
// defaults are deliberately conservative; loosen them in config only if
// the environment allows it.
type Limits struct {
	WheelSpeedMin      int `yaml:"wheel_speed_min"`
	WheelSpeedMax      int `yaml:"wheel_speed_max"`
	WheelTimeMsMin     int `yaml:"wheel_time_ms_min"`
	WheelTimeMsMax     int `yaml:"wheel_time_ms_max"`
	WheelDistanceMmMin int `yaml:"wheel_distance_mm_min"`
	WheelDistanceMmMax int `yaml:"wheel_distance_mm_max"`
	WheelSpinDegMin    int `yaml:"wheel_spin_deg_min"`
	WheelSpinDegMax    int `yaml:"wheel_spin_deg_max"`

	HeadSpeedMin   int `yaml:"head_speed_min"`
	HeadSpeedMax   int `yaml:"head_speed_max"`
	HeadAbsHMin    int `yaml:"head_abs_h_min"`
	HeadAbsHMax    int `yaml:"head_abs_h_max"`
	HeadAbsVMin    int `yaml:"head_abs_v_min"`
	HeadAbsVMax    int `yaml:"head_abs_v_max"`
	HeadAxisDegMin int `yaml:"head_axis_deg_min"`
	HeadAxisDegMax int `yaml:"head_axis_deg_max"`
	HeadTimeMsMin  int `yaml:"head_time_ms_min"`
	HeadTimeMsMax  int `yaml:"head_time_ms_max"`

	HandSpeedMin  int `yaml:"hand_speed_min"`
	HandSpeedMax  int `yaml:"hand_speed_max"`
	HandDegMin    int `yaml:"hand_deg_min"`
	HandDegMax    int `yaml:"hand_deg_max"`
	HandTimeMsMin int `yaml:"hand_time_ms_min"`
	HandTimeMsMax int `yaml:"hand_time_ms_max"`
}

// DefaultLimits returns the conservative built-in bounds. Device speed
// maxima are 255; 200 keeps headroom.
func DefaultLimits() Limits {
	return Limits{
		WheelSpeedMin:      0,
		WheelSpeedMax:      200,
		WheelTimeMsMin:     1,
		WheelTimeMsMax:     5000,
		WheelDistanceMmMin: 0,
		WheelDistanceMmMax: 3000,
		WheelSpinDegMin:    0,
		WheelSpinDegMax:    360,

		HeadSpeedMin:   0,
		HeadSpeedMax:   200,
		HeadAbsHMin:    -180,
		HeadAbsHMax:    180,
		HeadAbsVMin:    -90,
		HeadAbsVMax:    90,
		HeadAxisDegMin: 0,
		HeadAxisDegMax: 90,
		HeadTimeMsMin:  1,
		HeadTimeMsMax:  600000,

		HandSpeedMin:  0,
		HandSpeedMax:  200,
		HandDegMin:    0,
		HandDegMax:    90,
		HandTimeMsMin: 1,
		HandTimeMsMax: 600000,
	}
}

// RangeError reports a value outside its configured bounds.
type RangeError struct {
	Field    string
	Value    int
	Min, Max int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s out of range [%d..%d]: %d", e.Field, e.Min, e.Max, e.Value)
}

// Validator checks motion parameters against a Limits value. Unsafe
// bypasses every check.
type Validator struct {
	Limits Limits
	Unsafe bool
}

func NewValidator(limits Limits, unsafe bool) *Validator {
	return &Validator{Limits: limits, Unsafe: unsafe}
}

func (v *Validator) check(field string, val, min, max int) error {
	if val < min || val > max {
		return &RangeError{Field: field, Value: val, Min: min, Max: max}
	}
	return nil
}

func (v *Validator) WheelsAngle(speed, deg int) error {
	if v.Unsafe {
		return nil
	}
	if err := v.check("wheel speed", speed, v.Limits.WheelSpeedMin, v.Limits.WheelSpeedMax); err != nil {
		return err
	}
	return v.check("wheel spin deg", deg, v.Limits.WheelSpinDegMin, v.Limits.WheelSpinDegMax)
}

func (v *Validator) WheelsTime(ms int) error {
	if v.Unsafe {
		return nil
	}
	return v.check("wheel time ms", ms, v.Limits.WheelTimeMsMin, v.Limits.WheelTimeMsMax)
}

func (v *Validator) WheelsDistance(speed, mm int) error {
	if v.Unsafe {
		return nil
	}
	if err := v.check("wheel speed", speed, v.Limits.WheelSpeedMin, v.Limits.WheelSpeedMax); err != nil {
		return err
	}
	return v.check("wheel distance mm", mm, v.Limits.WheelDistanceMmMin, v.Limits.WheelDistanceMmMax)
}

func (v *Validator) HeadAbsolute(hdeg, vdeg int) error {
	if v.Unsafe {
		return nil
	}
	if err := v.check("head hdeg", hdeg, v.Limits.HeadAbsHMin, v.Limits.HeadAbsHMax); err != nil {
		return err
	}
	return v.check("head vdeg", vdeg, v.Limits.HeadAbsVMin, v.Limits.HeadAbsVMax)
}

func (v *Validator) HeadAxis(speed, deg int) error {
	if v.Unsafe {
		return nil
	}
	if err := v.check("head speed", speed, v.Limits.HeadSpeedMin, v.Limits.HeadSpeedMax); err != nil {
		return err
	}
	return v.check("head deg", deg, v.Limits.HeadAxisDegMin, v.Limits.HeadAxisDegMax)
}

func (v *Validator) HeadTime(ms int) error {
	if v.Unsafe {
		return nil
	}
	return v.check("head time ms", ms, v.Limits.HeadTimeMsMin, v.Limits.HeadTimeMsMax)
}

func (v *Validator) HeadNoAngle(speed int) error {
	if v.Unsafe {
		return nil
	}
	return v.check("head speed", speed, v.Limits.HeadSpeedMin, v.Limits.HeadSpeedMax)
}

func (v *Validator) HandAngle(speed, deg int) error {
	if v.Unsafe {
		return nil
	}
	if err := v.check("hand speed", speed, v.Limits.HandSpeedMin, v.Limits.HandSpeedMax); err != nil {
		return err
	}
	return v.check("hand deg", deg, v.Limits.HandDegMin, v.Limits.HandDegMax)
}

func (v *Validator) HandTime(ms, deg int) error {
	if v.Unsafe {
		return nil
	}
	if err := v.check("hand time ms", ms, v.Limits.HandTimeMsMin, v.Limits.HandTimeMsMax); err != nil {
		return err
	}
	return v.check("hand deg", deg, v.Limits.HandDegMin, v.Limits.HandDegMax)
}

func (v *Validator) HandNoAngle(speed int) error {
	if v.Unsafe {
		return nil
	}
	return v.check("hand speed", speed, v.Limits.HandSpeedMin, v.Limits.HandSpeedMax)
}
