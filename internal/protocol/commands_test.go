package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWheelCommands(t *testing.T) {
	c := WheelsAngle(WheelLeft, 80, 300)
	assert.Equal(t, []byte{0x01, 0x02, 0x02, 80, 0x2C, 0x01}, c.Payload)
	assert.Equal(t, TagBottom, c.Tag)

	c = WheelsTime(WheelForward, 1500, true)
	assert.Equal(t, []byte{0x01, 0x10, 0x01, 0xDC, 0x05, 0x01}, c.Payload)

	c = WheelsDistance(WheelBackward, 120, 2000)
	assert.Equal(t, []byte{0x01, 0x11, 0x00, 120, 0xD0, 0x07}, c.Payload)
}

func TestHeadCommands(t *testing.T) {
	c := HeadAbsolute(-90, 30)
	// -90 as little-endian 16-bit two's complement.
	assert.Equal(t, []byte{0x02, 0x21, 0x00, 0xA6, 0xFF, 0x1E, 0x00}, c.Payload)
	assert.Equal(t, TagHead, c.Tag)

	c = HeadAngle(true, 0x01, 100, 45)
	assert.Equal(t, []byte{0x02, 0x02, 0x01, 100, 45, 0x00}, c.Payload)

	c = HeadAngle(false, 0x01, 100, 45)
	assert.Equal(t, byte(0x03), c.Payload[1])

	c = HeadTime(0x02, 600, 0)
	assert.Equal(t, []byte{0x02, 0x10, 0x02, 0x58, 0x02, 0x00}, c.Payload)

	c = HeadNoAngle(0x01, 50)
	assert.Equal(t, []byte{0x02, 0x01, 0x01, 50}, c.Payload)
}

func TestHandCommands(t *testing.T) {
	c := HandAngle(0x01, 0x02, 0x01, 90, 60)
	assert.Equal(t, []byte{0x03, 0x02, 0x01, 90, 0x01, 60, 0x00}, c.Payload)
	assert.Equal(t, TagBottom, c.Tag)

	c = HandTime(0x00, 2000, 45)
	assert.Equal(t, []byte{0x03, 0x10, 0x00, 0xD0, 0x07, 45, 0x00}, c.Payload)

	c = HandNoAngle(0x02, 0x01, 80)
	assert.Equal(t, []byte{0x03, 0x01, 0x02, 80, 0x01}, c.Payload)
}

func TestLEDRouting(t *testing.T) {
	cases := []struct {
		which byte
		tag   Target
	}{
		{0x00, TagBroadcast},
		{0x01, TagBottom},
		{0x04, TagHead},
		{0x05, TagHead},
		{0x0A, TagHead},
		{0x07, TagBottom},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.tag, LEDTag(tc.which), "which=0x%02X", tc.which)
	}

	// 0x0A encodes on the wire as 0x00.
	c := LED(0x0A, 0x01, 2, 3)
	assert.Equal(t, []byte{0x04, 0x02, 0x00, 0x01, 2, 3}, c.Payload)
	assert.Equal(t, TagHead, c.Tag)

	c = LED(0x01, 0x02, 0, 0)
	assert.Equal(t, []byte{0x04, 0x02, 0x01, 0x02, 0, 0}, c.Payload)
}

func TestTouchRouting(t *testing.T) {
	for _, turnal := range []int{1, 2, 5, 6, 11, 12, 13} {
		assert.Equal(t, TagHead, TouchTag(turnal), "turnal=%d", turnal)
	}
	assert.Equal(t, TagBroadcast, TouchTag(0x93))
	assert.Equal(t, TagBottom, TouchTag(3))
	assert.Equal(t, TagBottom, TouchTag(-1))
}

func TestMotorRouting(t *testing.T) {
	assert.Equal(t, TagHead, MotorLock(1, true).Tag)
	assert.Equal(t, TagHead, MotorLock(3, true).Tag)
	assert.Equal(t, TagBottom, MotorLock(4, true).Tag)
	assert.Equal(t, []byte{0x05, 0x01, 0x02, 0x01}, MotorLock(2, true).Payload)
	assert.Equal(t, []byte{0x05, 0x02, 0x04, 0x00}, MotorDefend(4, false).Payload)
}

func TestPartRouting(t *testing.T) {
	assert.Equal(t, TagHead, HeadMotorAbnormal(0x04, 0).Tag)
	assert.Equal(t, TagHead, HeadMotorAbnormal(0x05, 0).Tag)
	assert.Equal(t, TagBottom, HeadMotorAbnormal(0x01, 0).Tag)

	assert.Equal(t, TagHead, PhotocouplerAbnormal(0x01).Tag)
	assert.Equal(t, TagHead, PhotocouplerAbnormal(0x02).Tag)
	assert.Equal(t, TagBottom, PhotocouplerAbnormal(0x03).Tag)

	assert.Equal(t, TagHead, OptocouplerStatus(0x03).Tag)
	assert.Equal(t, TagHead, OptocouplerStatus(0x04).Tag)
	assert.Equal(t, TagBottom, OptocouplerStatus(0x01).Tag)
}

func TestBroadcastQueries(t *testing.T) {
	for _, c := range []Command{
		Dance(true),
		WorkStatusQuery(),
		IRSenderQuery(),
		UARTStatusQuery(),
		SPIFlashQuery(),
		PhotoelectricSwitch(1),
		AutoReport(1),
		IRSensor(-1, -1),
		UpgradePrepare(),
		UpgradeStatusQuery(true),
	} {
		assert.Equal(t, TagBroadcast, c.Tag, c.Name)
	}
}

func TestOptionalQueryArguments(t *testing.T) {
	assert.Equal(t, []byte{0x81, 0x08}, GyroQuery(-1, -1).Payload)
	assert.Equal(t, []byte{0x81, 0x08, 0x01, 0x02}, GyroQuery(1, 2).Payload)
	// Each argument is appended independently; an absent first argument
	// does not drop the second.
	assert.Equal(t, []byte{0x81, 0x08, 0x05}, GyroQuery(-1, 5).Payload)
	assert.Equal(t, []byte{0x81, 0x01}, BatteryQuery(-1).Payload)
	assert.Equal(t, []byte{0x81, 0x01, 0x55}, BatteryQuery(0x55).Payload)
	assert.Equal(t, []byte{0x81, 0x05, 0x01, 0x02}, TouchQuery(1, 2).Payload)
	assert.Equal(t, []byte{0x81, 0x05, 0x02}, TouchQuery(-1, 2).Payload)
}

func TestZigbeeCommands(t *testing.T) {
	c := ZigbeeAllowJoin(60)
	assert.Equal(t, TagHead, c.Tag)
	assert.Equal(t, byte(0), c.Ack)
	assert.Equal(t, append([]byte{0xA0}, []byte(`{"time":60}`)...), c.Payload)

	c = ZigbeeWhitelistSwitch(true)
	assert.Equal(t, append([]byte{0xA0}, []byte(`{"switch":1}`)...), c.Payload)

	c = ZigbeeWhitelistAdd("ab12")
	assert.Equal(t, append([]byte{0xA0}, []byte(`{"id":"ab12"}`)...), c.Payload)
}

func TestChargePile(t *testing.T) {
	c := ChargePile([]byte{0x01, 0x02})
	assert.Equal(t, []byte{0xA1, 0x01, 0x02}, c.Payload)
	assert.Equal(t, TagBottom, c.Tag)
	assert.Equal(t, byte(1), c.Ack)
}

func TestUpgradeCommands(t *testing.T) {
	assert.Equal(t, []byte{0x04, 0x0B, 0x01}, UpgradePrepare().Payload)
	assert.Equal(t, []byte{0x81, 0x0C, 0x00, 0x01}, UpgradeStatusQuery(true).Payload)
	assert.Equal(t, []byte{0x81, 0x0C, 0x00, 0x02}, UpgradeStatusQuery(false).Payload)
}

func TestHeartbeat(t *testing.T) {
	c := Heartbeat(TagBottom, 1)
	assert.Equal(t, []byte{0x04, 0x08, 0x01}, c.Payload)
	assert.Equal(t, TagBottom, c.Tag)
}
