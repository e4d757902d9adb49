package protocol

import "fmt"

// Command is one encoded operation ready to be framed and routed.
type Command struct {
	Name    string
	Payload []byte
	Tag     Target
	Ack     byte
}

// Subsystem bytes (first payload byte).
const (
	subWheels     = 0x01
	subHead       = 0x02
	subHand       = 0x03
	subSystem     = 0x04
	subMotor      = 0x05
	subExpression = 0x06
	opQuery       = 0x81
	opSensor      = 0x82
	opVendor      = 0x83
	opAutoReport  = 0x80
	opZigbee      = 0xA0
	opChargePile  = 0xA1
)

// Motion mode bytes shared by wheels, head and hand payloads.
const (
	modeNoAngle  = 0x01
	modeAngleA   = 0x02
	modeAngleB   = 0x03
	modeTime     = 0x10
	modeDistance = 0x11
	modeHeadAbs  = 0x21
	modeHeadRel  = 0x22
)

// Wheel direction codes.
const (
	WheelBackward = 0x00
	WheelForward  = 0x01
	WheelLeft     = 0x02
	WheelRight    = 0x03
)

func cmd(name string, tag Target, payload ...byte) Command {
	return Command{Name: name, Payload: payload, Tag: tag, Ack: 1}
}

func lo(v int) byte { return byte(v) }
func hi(v int) byte { return byte(v >> 8) }

func onOff(enable bool) byte {
	if enable {
		return 0x01
	}
	return 0x00
}

// Heartbeat builds the keepalive payload routed to a single MCU.
func Heartbeat(tag Target, switchMode byte) Command {
	return cmd("heartbeat", tag, subSystem, 0x08, switchMode)
}

// ----- Wheels (bottom MCU) -----

// WheelsAngle spins in place by deg at speed. direction is WheelLeft or
// WheelRight.
func WheelsAngle(direction byte, speed, deg int) Command {
	return cmd("wheels_angle", TagBottom,
		subWheels, modeAngleA, direction, byte(speed), lo(deg), hi(deg))
}

// WheelsTime drives for ms milliseconds. circle selects the turning
// variant.
func WheelsTime(direction byte, ms int, circle bool) Command {
	return cmd("wheels_time", TagBottom,
		subWheels, modeTime, direction, lo(ms), hi(ms), onOff(circle))
}

// WheelsDistance drives mm millimeters at speed.
func WheelsDistance(direction byte, speed, mm int) Command {
	return cmd("wheels_distance", TagBottom,
		subWheels, modeDistance, direction, byte(speed), lo(mm), hi(mm))
}

// ----- Head (head MCU) -----

// HeadAbsolute points the head at absolute horizontal/vertical degrees.
func HeadAbsolute(hdeg, vdeg int) Command {
	return cmd("head_absolute", TagHead,
		subHead, modeHeadAbs, 0x00, lo(hdeg), hi(hdeg), lo(vdeg), hi(vdeg))
}

// HeadRelative moves the head by per-axis direction/degree pairs.
func HeadRelative(hdir byte, hdeg int, vdir byte, vdeg int) Command {
	return cmd("head_relative", TagHead,
		subHead, modeHeadRel, 0x00, hdir, byte(hdeg), vdir, byte(vdeg))
}

// HeadAngle moves one axis by deg at speed. horizontal selects the axis
// mode byte.
func HeadAngle(horizontal bool, direction byte, speed, deg int) Command {
	mode := byte(modeAngleB)
	if horizontal {
		mode = modeAngleA
	}
	return cmd("head_angle", TagHead,
		subHead, mode, direction, byte(speed), lo(deg), hi(deg))
}

// HeadTime moves the head for ms milliseconds in direction.
func HeadTime(direction byte, ms int, flag byte) Command {
	return cmd("head_time", TagHead,
		subHead, modeTime, direction, lo(ms), hi(ms), flag)
}

// HeadNoAngle starts continuous head motion at speed.
func HeadNoAngle(direction byte, speed int) Command {
	return cmd("head_noangle", TagHead, subHead, modeNoAngle, direction, byte(speed))
}

// ----- Hands (bottom MCU) -----

// HandAngle moves a hand by deg. which selects 0=both, 1=left, 2=right;
// mode is one of the two firmware angle variants (modeAngleA/modeAngleB).
func HandAngle(which, mode, direction byte, speed, deg int) Command {
	return cmd("hand_angle", TagBottom,
		subHand, mode, which, byte(speed), direction, lo(deg), hi(deg))
}

// HandTime raises a hand for ms milliseconds to deg.
func HandTime(which byte, ms, deg int) Command {
	return cmd("hand_time", TagBottom,
		subHand, modeTime, which, lo(ms), hi(ms), lo(deg), hi(deg))
}

// HandNoAngle starts continuous hand motion at speed.
func HandNoAngle(which, direction byte, speed int) Command {
	return cmd("hand_noangle", TagBottom,
		subHand, modeNoAngle, which, byte(speed), direction)
}

// ----- LEDs -----

// LED drives an LED group. whichLight 0 broadcasts to both MCUs;
// 0x04, 0x05 and 0x0A are head groups (0x0A encodes as 0x00); anything
// else is a bottom group.
func LED(whichLight, switchMode, rate, random byte) Command {
	encoded := whichLight
	if whichLight == 0x0A {
		encoded = 0x00
	}
	return cmd("led", LEDTag(whichLight),
		subSystem, 0x02, encoded, switchMode, rate, random)
}

// LEDTag reports the routing tag used for an LED group.
func LEDTag(whichLight byte) Target {
	switch whichLight {
	case 0x00:
		return TagBroadcast
	case 0x04, 0x05, 0x0A:
		return TagHead
	}
	return TagBottom
}

// WhiteLight sets the white illumination brightness.
func WhiteLight(level byte) Command {
	return cmd("white_light", TagHead, subSystem, 0x01, 0x02, level)
}

// ----- Projector (head MCU) -----

func ProjectorPower(on bool) Command {
	return cmd("projector_power", TagHead, subSystem, 0x03, onOff(on))
}

func ProjectorImage(controlContent byte) Command {
	return cmd("projector_image", TagHead, subSystem, 0x0A, 0x01, controlContent)
}

func ProjectorPicture(control, subType, degree byte) Command {
	return cmd("projector_picture", TagHead, subSystem, 0x0A, 0x03, control, subType, degree)
}

func ProjectorExpert(adjustMode, controlMode, controlContent byte) Command {
	return cmd("projector_expert", TagHead, subSystem, 0x0A, 0x04, adjustMode, controlMode, controlContent)
}

func ProjectorOther(switchMode byte) Command {
	return cmd("projector_other", TagHead, subSystem, 0x0A, 0x05, switchMode)
}

func ProjectorType(projType byte) Command {
	return cmd("projector_type", TagHead, subSystem, 0x0A, 0x06, projType)
}

func ProjectorOutput(setting, hTilt, vTilt byte) Command {
	return cmd("projector_output", TagHead, subSystem, 0x0A, 0x07, setting, hTilt, vTilt)
}

func ProjectorQuality(contrast, brightness, chromaU, chromaV, saturationU, saturationV, acutance byte) Command {
	return cmd("projector_quality", TagHead,
		subSystem, 0x0A, 0x08, contrast, brightness, chromaU, chromaV, saturationU, saturationV, acutance)
}

func ProjectorStatusQuery() Command {
	return cmd("projector_status", TagHead, opQuery, 0x18)
}

func ProjectorConnectionQuery() Command {
	return cmd("projector_connection", TagHead, opQuery, 0x12)
}

// ----- Expressions (head MCU) -----

func ExpressionNormal(expressionType byte) Command {
	return cmd("expression_normal", TagHead, subExpression, 0x01, expressionType)
}

func ExpressionStatusQuery() Command {
	return cmd("expression_status", TagHead, opQuery, 0x1C)
}

func ExpressionVersionSet(version []byte) Command {
	payload := append([]byte{subSystem, 0x11}, version...)
	return Command{Name: "expression_version_set", Payload: payload, Tag: TagHead, Ack: 1}
}

func ExpressionVersionQuery() Command {
	return cmd("expression_version_query", TagHead, opQuery, 0x1B)
}

// ----- Motor lock / protection -----

// motorTag: parts 1-3 are the head axes, everything else is bottom.
func motorTag(whichPart byte) Target {
	if whichPart >= 1 && whichPart <= 3 {
		return TagHead
	}
	return TagBottom
}

func MotorLock(whichPart byte, enable bool) Command {
	return cmd("motor_lock", motorTag(whichPart), subMotor, 0x01, whichPart, onOff(enable))
}

func MotorDefend(whichPart byte, enable bool) Command {
	return cmd("motor_defend", motorTag(whichPart), subMotor, 0x02, whichPart, onOff(enable))
}

// ----- System switches -----

func Speaker(enable bool) Command {
	return cmd("speaker", TagHead, subSystem, 0x04, onOff(enable))
}

// AutoCharge toggles return-to-dock charging. threshold < 0 omits the
// threshold byte.
func AutoCharge(enable bool, threshold int) Command {
	payload := []byte{subSystem, 0x05, onOff(enable)}
	if threshold >= 0 {
		payload = append(payload, byte(threshold))
	}
	return Command{Name: "auto_charge", Payload: payload, Tag: TagBottom, Ack: 1}
}

func Dance(enable bool) Command {
	return cmd("dance", TagBroadcast, subSystem, 0x06, onOff(enable))
}

func Wander(enable bool, wanderType byte) Command {
	return cmd("wander", TagHead, subSystem, 0x09, onOff(enable), wanderType)
}

func BlackShield(enable bool) Command {
	return cmd("black_shield", TagBottom, subSystem, 0x0D, onOff(enable))
}

func Follow(enable bool) Command {
	return cmd("follow", TagBottom, subSystem, 0x0E, onOff(enable))
}

func HideMode(enable bool) Command {
	return cmd("hide_mode", TagBottom, subSystem, 0x0F, onOff(enable))
}

// BodyRecover resets body, head and arms to their neutral pose.
func BodyRecover(switchMode byte) Command {
	return cmd("body_recover", TagHead, subSystem, 0x18, switchMode)
}

// MCUReset requests a delayed MCU reset on the selected unit.
func MCUReset(tag Target, timeByte byte) Command {
	return cmd("mcu_reset", tag, subSystem, 0x0C, 0x01, timeByte)
}

// AutoReport switches spontaneous MCU reporting on or off.
func AutoReport(mode byte) Command {
	return cmd("auto_report", TagBroadcast, opAutoReport, mode)
}

// ----- Status queries -----

// optional appends each non-negative value; negatives are skipped
// individually, so a later argument can still be encoded when an
// earlier one is absent. The firmware accepts the short forms.
func optional(payload []byte, vals ...int) []byte {
	for _, v := range vals {
		if v < 0 {
			continue
		}
		payload = append(payload, byte(v))
	}
	return payload
}

func BatteryQuery(current int) Command {
	p := optional([]byte{opQuery, 0x01}, current)
	return Command{Name: "battery_query", Payload: p, Tag: TagBottom, Ack: 1}
}

func BatteryTempQuery(temp byte) Command {
	return cmd("battery_temp_query", TagBottom, opQuery, 0x04, temp)
}

func GyroQuery(accelStatus, compassStatus int) Command {
	p := optional([]byte{opQuery, 0x08}, accelStatus, compassStatus)
	return Command{Name: "gyro_query", Payload: p, Tag: TagBottom, Ack: 1}
}

// TouchQuery routes by turnal: the head channels (1, 2, 5, 6, 11, 12,
// 13) go to the head MCU, 0x93 broadcasts, everything else is bottom.
func TouchQuery(turnal, info int) Command {
	p := optional([]byte{opQuery, 0x05}, turnal, info)
	return Command{Name: "touch_query", Payload: p, Tag: TouchTag(turnal), Ack: 1}
}

// TouchTag reports the routing tag for a touch channel.
func TouchTag(turnal int) Target {
	switch turnal {
	case 1, 2, 5, 6, 11, 12, 13:
		return TagHead
	case 0x93:
		return TagBroadcast
	}
	return TagBottom
}

func PIRQuery(pirType, status int) Command {
	p := optional([]byte{opQuery, 0x06}, pirType, status)
	return Command{Name: "pir_query", Payload: p, Tag: TagBottom, Ack: 1}
}

func ObstacleQuery(direction, distance int) Command {
	p := optional([]byte{opQuery, 0x02}, direction, distance)
	return Command{Name: "obstacle_query", Payload: p, Tag: TagBottom, Ack: 1}
}

func ButtonQuery() Command {
	return cmd("button_query", TagHead, opQuery, 0x17)
}

func WorkStatusQuery() Command {
	return cmd("work_status_query", TagBroadcast, opQuery, 0x22)
}

func EncoderStatusQuery() Command {
	return cmd("encoder_status_query", TagBottom, opQuery, 0x15)
}

// MCUVersionQuery asks one MCU for its firmware version.
func MCUVersionQuery(tag Target) Command {
	return cmd("mcu_version_query", tag, opQuery, 0x0D)
}

// HeadMotorAbnormal queries motor fault state; parts 4 and 5 live on
// the head MCU.
func HeadMotorAbnormal(whichPart, status byte) Command {
	tag := TagBottom
	if whichPart == 0x04 || whichPart == 0x05 {
		tag = TagHead
	}
	return cmd("head_motor_abnormal", tag, opQuery, 0x09, whichPart, status)
}

// MovementStatus shares the 0x81/0x09 channel with HeadMotorAbnormal.
func MovementStatus(whichPart, status byte) Command {
	c := HeadMotorAbnormal(whichPart, status)
	c.Name = "movement_status"
	return c
}

// PhotocouplerAbnormal queries the photoelectric fault state; parts 1
// and 2 are head-side.
func PhotocouplerAbnormal(whichPart byte) Command {
	tag := TagBottom
	if whichPart == 0x01 || whichPart == 0x02 {
		tag = TagHead
	}
	return cmd("photocoupler_abnormal", tag, opQuery, 0x19, whichPart)
}

// OptocouplerStatus queries an optocoupler; parts 3 and 4 are head-side.
func OptocouplerStatus(whichPart byte) Command {
	tag := TagBottom
	if whichPart == 0x03 || whichPart == 0x04 {
		tag = TagHead
	}
	return cmd("optocoupler_status", tag, opQuery, 0x12, whichPart)
}

func PhotoelectricSwitch(retain byte) Command {
	return cmd("photoelectric_switch", TagBroadcast, opQuery, 0x11, retain)
}

func IRSenderQuery() Command {
	return cmd("ir_sender_query", TagBroadcast, opQuery, 0x16)
}

func IRReceiveQuery() Command {
	return cmd("ir_receive_query", TagBottom, opQuery, 0x0B)
}

func IRSensor(content, info int) Command {
	p := optional([]byte{opVendor, opQuery, 0x02}, content, info)
	return Command{Name: "ir_sensor", Payload: p, Tag: TagBroadcast, Ack: 1}
}

func UARTStatusQuery() Command {
	return cmd("uart_status_query", TagBroadcast, opQuery, 0x13)
}

func SPIFlashQuery() Command {
	return cmd("spi_flash_query", TagBroadcast, opQuery, 0x14)
}

func HideCatQuery(retain, status int) Command {
	p := optional([]byte{opQuery, 0x1A}, retain, status)
	return Command{Name: "hide_cat_query", Payload: p, Tag: TagBottom, Ack: 1}
}

func HideObstacleQuery(which, status int) Command {
	p := optional([]byte{opQuery, 0x0A}, which, status)
	return Command{Name: "hide_obstacle_query", Payload: p, Tag: TagBottom, Ack: 1}
}

// Detect3D requests a 3D detect reading. The parameter is a raw device
// byte, passed through verbatim.
func Detect3D(distance byte) Command {
	return cmd("detect_3d", TagBottom, opSensor, 0x03, 0x01, distance)
}

// VoiceLocation reports a sound source bearing to the head MCU. Both
// angles go on the wire as little-endian 16-bit values, matching the
// firmware.
func VoiceLocation(hdeg, vdeg int) Command {
	return cmd("voice_location", TagHead,
		opSensor, 0x02, lo(hdeg), hi(hdeg), lo(vdeg), hi(vdeg))
}

// ----- ZigBee passthrough (head MCU, ack 0) -----

// ZigbeeSend wraps a raw module payload. The module speaks JSON; see
// ZigbeeJSON and the helpers below.
func ZigbeeSend(payload []byte) Command {
	data := append([]byte{opZigbee}, payload...)
	return Command{Name: "zigbee_send", Payload: data, Tag: TagHead, Ack: 0}
}

func ZigbeeJSON(s string) Command {
	c := ZigbeeSend([]byte(s))
	c.Name = "zigbee_json"
	return c
}

func ZigbeeAllowJoin(seconds int) Command {
	return ZigbeeJSON(fmt.Sprintf(`{"time":%d}`, seconds))
}

func ZigbeeWhitelistSwitch(on bool) Command {
	return ZigbeeJSON(fmt.Sprintf(`{"switch":%d}`, onOff(on)))
}

func ZigbeeWhitelistAdd(deviceID string) Command {
	return ZigbeeJSON(fmt.Sprintf(`{"id":%q}`, deviceID))
}

func ZigbeeWhitelistDelete(deviceID string) Command {
	return ZigbeeJSON(fmt.Sprintf(`{"id":%q}`, deviceID))
}

func ZigbeeRemoveDevice(deviceID string) Command {
	return ZigbeeJSON(fmt.Sprintf(`{"id":%q}`, deviceID))
}

func ZigbeeWhitelistClear() Command { return ZigbeeJSON("{}") }
func ZigbeeWhitelistGet() Command   { return ZigbeeJSON("{}") }
func ZigbeeListGet() Command        { return ZigbeeJSON("{}") }

// ----- Charge pile passthrough (bottom MCU) -----

func ChargePile(payload []byte) Command {
	data := append([]byte{opChargePile}, payload...)
	return Command{Name: "charge_pile", Payload: data, Tag: TagBottom, Ack: 1}
}

// ----- Firmware upgrade control -----

// UpgradePrepare switches the target MCU into YMODEM receive mode.
func UpgradePrepare() Command {
	return cmd("upgrade_prepare", TagBroadcast, subSystem, 0x0B, 0x01)
}

// UpgradeStatusQuery polls upgrade progress. head selects the type byte
// (0x01 head, 0x02 bottom).
func UpgradeStatusQuery(head bool) Command {
	t := byte(0x02)
	if head {
		t = 0x01
	}
	return cmd("upgrade_status_query", TagBroadcast, opQuery, 0x0C, 0x00, t)
}
