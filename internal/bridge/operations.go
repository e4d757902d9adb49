package bridge

import (
	"fmt"

	"github.com/sanbotlabs/mcu-bridge/internal/firmware"
	"github.com/sanbotlabs/mcu-bridge/internal/protocol"
)

// Operation methods. Motion commands validate against the safety
// limits before anything is encoded or written.

// ----- Wheels -----

func (r *Robot) WheelsAngle(direction byte, speed, deg int) (int, error) {
	if err := r.check.WheelsAngle(speed, deg); err != nil {
		return 0, err
	}
	return r.Send(protocol.WheelsAngle(direction, speed, deg))
}

func (r *Robot) WheelsTime(direction byte, ms int, circle bool) (int, error) {
	if err := r.check.WheelsTime(ms); err != nil {
		return 0, err
	}
	return r.Send(protocol.WheelsTime(direction, ms, circle))
}

func (r *Robot) WheelsDistance(direction byte, speed, mm int) (int, error) {
	if err := r.check.WheelsDistance(speed, mm); err != nil {
		return 0, err
	}
	return r.Send(protocol.WheelsDistance(direction, speed, mm))
}

// ----- Head -----

func (r *Robot) HeadAbsolute(hdeg, vdeg int) (int, error) {
	if err := r.check.HeadAbsolute(hdeg, vdeg); err != nil {
		return 0, err
	}
	return r.Send(protocol.HeadAbsolute(hdeg, vdeg))
}

func (r *Robot) HeadRelative(hdir byte, hdeg int, vdir byte, vdeg int) (int, error) {
	return r.Send(protocol.HeadRelative(hdir, hdeg, vdir, vdeg))
}

func (r *Robot) HeadAngle(horizontal bool, direction byte, speed, deg int) (int, error) {
	if err := r.check.HeadAxis(speed, deg); err != nil {
		return 0, err
	}
	return r.Send(protocol.HeadAngle(horizontal, direction, speed, deg))
}

func (r *Robot) HeadTime(direction byte, ms int, flag byte) (int, error) {
	if err := r.check.HeadTime(ms); err != nil {
		return 0, err
	}
	return r.Send(protocol.HeadTime(direction, ms, flag))
}

func (r *Robot) HeadNoAngle(direction byte, speed int) (int, error) {
	if err := r.check.HeadNoAngle(speed); err != nil {
		return 0, err
	}
	return r.Send(protocol.HeadNoAngle(direction, speed))
}

// ----- Hands -----

func (r *Robot) HandAngle(which, mode, direction byte, speed, deg int) (int, error) {
	if err := r.check.HandAngle(speed, deg); err != nil {
		return 0, err
	}
	return r.Send(protocol.HandAngle(which, mode, direction, speed, deg))
}

func (r *Robot) HandTime(which byte, ms, deg int) (int, error) {
	if err := r.check.HandTime(ms, deg); err != nil {
		return 0, err
	}
	return r.Send(protocol.HandTime(which, ms, deg))
}

func (r *Robot) HandNoAngle(which, direction byte, speed int) (int, error) {
	if err := r.check.HandNoAngle(speed); err != nil {
		return 0, err
	}
	return r.Send(protocol.HandNoAngle(which, direction, speed))
}

// ----- Lights and projector -----

func (r *Robot) LED(whichLight, switchMode, rate, random byte) (int, error) {
	return r.Send(protocol.LED(whichLight, switchMode, rate, random))
}

func (r *Robot) WhiteLight(level byte) (int, error) {
	return r.Send(protocol.WhiteLight(level))
}

func (r *Robot) ProjectorPower(on bool) (int, error) {
	return r.Send(protocol.ProjectorPower(on))
}

func (r *Robot) ProjectorImage(code byte) (int, error) {
	return r.Send(protocol.ProjectorImage(code))
}

func (r *Robot) ProjectorPicture(control, subType, degree byte) (int, error) {
	return r.Send(protocol.ProjectorPicture(control, subType, degree))
}

func (r *Robot) ProjectorExpert(adjustMode, controlMode, controlContent byte) (int, error) {
	return r.Send(protocol.ProjectorExpert(adjustMode, controlMode, controlContent))
}

func (r *Robot) ProjectorOther(switchMode byte) (int, error) {
	return r.Send(protocol.ProjectorOther(switchMode))
}

func (r *Robot) ProjectorType(projType byte) (int, error) {
	return r.Send(protocol.ProjectorType(projType))
}

func (r *Robot) ProjectorOutput(setting, hTilt, vTilt byte) (int, error) {
	return r.Send(protocol.ProjectorOutput(setting, hTilt, vTilt))
}

func (r *Robot) ProjectorQuality(contrast, brightness, chromaU, chromaV, saturationU, saturationV, acutance byte) (int, error) {
	return r.Send(protocol.ProjectorQuality(contrast, brightness, chromaU, chromaV, saturationU, saturationV, acutance))
}

func (r *Robot) ProjectorStatus() (int, error) {
	return r.Send(protocol.ProjectorStatusQuery())
}

func (r *Robot) ProjectorConnection() (int, error) {
	return r.Send(protocol.ProjectorConnectionQuery())
}

// ----- Expressions -----

func (r *Robot) ExpressionNormal(expressionType byte) (int, error) {
	return r.Send(protocol.ExpressionNormal(expressionType))
}

func (r *Robot) ExpressionStatus() (int, error) {
	return r.Send(protocol.ExpressionStatusQuery())
}

func (r *Robot) ExpressionVersionSet(version []byte) (int, error) {
	return r.Send(protocol.ExpressionVersionSet(version))
}

func (r *Robot) ExpressionVersion() (int, error) {
	return r.Send(protocol.ExpressionVersionQuery())
}

// ----- Motors and system switches -----

func (r *Robot) MotorLock(whichPart byte, enable bool) (int, error) {
	return r.Send(protocol.MotorLock(whichPart, enable))
}

func (r *Robot) MotorDefend(whichPart byte, enable bool) (int, error) {
	return r.Send(protocol.MotorDefend(whichPart, enable))
}

func (r *Robot) Speaker(enable bool) (int, error) {
	return r.Send(protocol.Speaker(enable))
}

func (r *Robot) AutoCharge(enable bool, threshold int) (int, error) {
	return r.Send(protocol.AutoCharge(enable, threshold))
}

func (r *Robot) Dance(enable bool) (int, error) {
	return r.Send(protocol.Dance(enable))
}

func (r *Robot) Wander(enable bool, wanderType byte) (int, error) {
	return r.Send(protocol.Wander(enable, wanderType))
}

func (r *Robot) BlackShield(enable bool) (int, error) {
	return r.Send(protocol.BlackShield(enable))
}

func (r *Robot) Follow(enable bool) (int, error) {
	return r.Send(protocol.Follow(enable))
}

func (r *Robot) HideMode(enable bool) (int, error) {
	return r.Send(protocol.HideMode(enable))
}

// BodyRecover resets body, head and arms to the neutral pose.
func (r *Robot) BodyRecover(switchMode byte) (int, error) {
	return r.Send(protocol.BodyRecover(switchMode))
}

func (r *Robot) MCUReset(tag protocol.Target, timeByte byte) (int, error) {
	return r.Send(protocol.MCUReset(tag, timeByte))
}

func (r *Robot) AutoReport(mode byte) (int, error) {
	return r.Send(protocol.AutoReport(mode))
}

// ----- Status queries -----

func (r *Robot) Battery(current int) (int, error) {
	return r.Send(protocol.BatteryQuery(current))
}

func (r *Robot) BatteryTemp(temp byte) (int, error) {
	return r.Send(protocol.BatteryTempQuery(temp))
}

func (r *Robot) Gyro(accelStatus, compassStatus int) (int, error) {
	return r.Send(protocol.GyroQuery(accelStatus, compassStatus))
}

func (r *Robot) Touch(turnal, info int) (int, error) {
	return r.Send(protocol.TouchQuery(turnal, info))
}

func (r *Robot) PIR(pirType, status int) (int, error) {
	return r.Send(protocol.PIRQuery(pirType, status))
}

func (r *Robot) Obstacle(direction, distance int) (int, error) {
	return r.Send(protocol.ObstacleQuery(direction, distance))
}

func (r *Robot) Button() (int, error) {
	return r.Send(protocol.ButtonQuery())
}

func (r *Robot) WorkStatus() (int, error) {
	return r.Send(protocol.WorkStatusQuery())
}

func (r *Robot) EncoderStatus() (int, error) {
	return r.Send(protocol.EncoderStatusQuery())
}

func (r *Robot) MCUVersion(tag protocol.Target) (int, error) {
	return r.Send(protocol.MCUVersionQuery(tag))
}

func (r *Robot) HeadMotorAbnormal(whichPart, status byte) (int, error) {
	return r.Send(protocol.HeadMotorAbnormal(whichPart, status))
}

func (r *Robot) MovementStatus(whichPart, status byte) (int, error) {
	return r.Send(protocol.MovementStatus(whichPart, status))
}

func (r *Robot) PhotocouplerAbnormal(whichPart byte) (int, error) {
	return r.Send(protocol.PhotocouplerAbnormal(whichPart))
}

func (r *Robot) OptocouplerStatus(whichPart byte) (int, error) {
	return r.Send(protocol.OptocouplerStatus(whichPart))
}

func (r *Robot) PhotoelectricSwitch(retain byte) (int, error) {
	return r.Send(protocol.PhotoelectricSwitch(retain))
}

func (r *Robot) IRSender() (int, error) {
	return r.Send(protocol.IRSenderQuery())
}

func (r *Robot) IRReceiveStatus() (int, error) {
	return r.Send(protocol.IRReceiveQuery())
}

func (r *Robot) IRSensor(content, info int) (int, error) {
	return r.Send(protocol.IRSensor(content, info))
}

func (r *Robot) UARTStatus() (int, error) {
	return r.Send(protocol.UARTStatusQuery())
}

func (r *Robot) SPIFlashStatus() (int, error) {
	return r.Send(protocol.SPIFlashQuery())
}

func (r *Robot) HideCatStatus(retain, status int) (int, error) {
	return r.Send(protocol.HideCatQuery(retain, status))
}

func (r *Robot) HideObstacleStatus(which, status int) (int, error) {
	return r.Send(protocol.HideObstacleQuery(which, status))
}

func (r *Robot) Detect3D(distance byte) (int, error) {
	return r.Send(protocol.Detect3D(distance))
}

func (r *Robot) VoiceLocation(hdeg, vdeg int) (int, error) {
	return r.Send(protocol.VoiceLocation(hdeg, vdeg))
}

// ----- ZigBee and charge pile -----

func (r *Robot) ZigbeeSend(payload []byte) (int, error) {
	return r.Send(protocol.ZigbeeSend(payload))
}

func (r *Robot) ZigbeeSendJSON(s string) (int, error) {
	return r.Send(protocol.ZigbeeJSON(s))
}

func (r *Robot) ZigbeeAllowJoin(seconds int) (int, error) {
	return r.Send(protocol.ZigbeeAllowJoin(seconds))
}

func (r *Robot) ZigbeeWhitelistSwitch(on bool) (int, error) {
	return r.Send(protocol.ZigbeeWhitelistSwitch(on))
}

func (r *Robot) ZigbeeWhitelistAdd(deviceID string) (int, error) {
	return r.Send(protocol.ZigbeeWhitelistAdd(deviceID))
}

func (r *Robot) ZigbeeWhitelistDelete(deviceID string) (int, error) {
	return r.Send(protocol.ZigbeeWhitelistDelete(deviceID))
}

func (r *Robot) ZigbeeWhitelistClear() (int, error) {
	return r.Send(protocol.ZigbeeWhitelistClear())
}

func (r *Robot) ZigbeeRemoveDevice(deviceID string) (int, error) {
	return r.Send(protocol.ZigbeeRemoveDevice(deviceID))
}

func (r *Robot) ZigbeeWhitelist() (int, error) {
	return r.Send(protocol.ZigbeeWhitelistGet())
}

func (r *Robot) ZigbeeList() (int, error) {
	return r.Send(protocol.ZigbeeListGet())
}

func (r *Robot) ChargePile(payload []byte) (int, error) {
	return r.Send(protocol.ChargePile(payload))
}

// ----- Upgrade -----

func (r *Robot) UpgradeStatus(head bool) (int, error) {
	return r.Send(protocol.UpgradeStatusQuery(head))
}

// MCUUpgrade streams a firmware image from disk to one MCU. The device
// reports progress through "upgrade_status" events while a listener
// runs.
func (r *Robot) MCUUpgrade(tag protocol.Target, path string, opts ...firmware.Option) error {
	b := r.bridgeFor(tag)
	if b == nil {
		return fmt.Errorf("upgrade target must be head or bottom, got %s", tag)
	}
	return firmware.UploadFile(b, tag, path, opts...)
}
