package protocol

import "encoding/hex"

// Event is a decoded inbound payload. Fields are loosely typed; the
// decoder is best-effort and recognizes only the payloads the MCUs are
// known to emit.
type Event struct {
	Name   string
	Fields map[string]any
}

var touchPartNames = map[byte]string{
	0x01: "head_front",
	0x02: "head_back",
	0x05: "left_arm",
	0x06: "right_arm",
	0x0B: "chest_left",
	0x0C: "chest_mid",
	0x0D: "chest_right",
}

// Decode inspects an inbound payload and returns a named event, or nil
// when the payload is not recognized. It never fails on short input;
// missing trailing bytes simply leave fields unset.
func Decode(payload []byte) *Event {
	if len(payload) == 0 {
		return nil
	}
	b0 := payload[0]
	var b1 byte
	if len(payload) > 1 {
		b1 = payload[1]
	}

	switch b0 {
	case opQuery:
		return decodeQuery(b1, payload)
	case opSensor:
		switch b1 {
		case 0x03:
			return event("detect_3d", fields{"raw": hex.EncodeToString(payload)})
		case 0x02:
			f := fields{}
			if len(payload) >= 4 {
				f["hdeg"] = int(payload[2]) | int(payload[3])<<8
			}
			if len(payload) >= 6 {
				f["vdeg"] = int(payload[4]) | int(payload[5])<<8
			}
			return event("voice_location", f)
		}
	case opAutoReport:
		f := fields{"raw": hex.EncodeToString(payload)}
		if len(payload) > 1 {
			f["mode"] = payload[1]
		}
		return event("auto_report", f)
	case opVendor:
		if b1 == opQuery {
			return event("ir_sensor_cmd", fields{"raw": hex.EncodeToString(payload)})
		}
	case 0xFF:
		if b1 == 0xA6 {
			return decodePrivate(payload)
		}
	}
	return nil
}

type fields = map[string]any

func event(name string, f fields) *Event {
	return &Event{Name: name, Fields: f}
}

func decodeQuery(op byte, payload []byte) *Event {
	at := func(i int) (byte, bool) {
		if i < len(payload) {
			return payload[i], true
		}
		return 0, false
	}
	s16le := func(i int) (int, bool) {
		lo, ok1 := at(i)
		hi, ok2 := at(i + 1)
		if !ok1 || !ok2 {
			return 0, false
		}
		v := int(lo) | int(hi)<<8
		if v&0x8000 != 0 {
			v -= 0x10000
		}
		return v, true
	}

	switch op {
	case 0x01:
		f := fields{"raw": hex.EncodeToString(payload)}
		if level, ok := at(2); ok {
			f["level"] = level
		}
		return event("battery", f)
	case 0x03:
		f := fields{}
		if status, ok := at(2); ok {
			f["status"] = status
		}
		return event("battery_change", f)
	case 0x04:
		f := fields{}
		if temp, ok := at(2); ok {
			f["temp"] = temp
		}
		return event("battery_temp", f)
	case 0x05:
		f := fields{"raw": hex.EncodeToString(payload)}
		if len(payload) >= 4 {
			part := payload[2]
			name, known := touchPartNames[part]
			if !known {
				name = "unknown"
			}
			f["part"] = part
			f["part_name"] = name
			f["info"] = payload[3]
		}
		return event("touch", f)
	case 0x06:
		vals := payload[2:]
		f := fields{"values": append([]byte(nil), vals...)}
		if len(vals) == 3 {
			f["sensors"] = fields{"left": vals[0], "mid": vals[1], "right": vals[2]}
		} else if len(vals) >= 6 {
			f["sensors"] = fields{
				"front_low": vals[0], "front_high": vals[1], "front_arm": vals[2],
				"left": vals[3], "mid": vals[4], "right": vals[5],
			}
		}
		return event("pir", f)
	case 0x02:
		f := fields{"raw": hex.EncodeToString(payload)}
		if len(payload) >= 4 {
			f["direction"] = payload[2]
			f["distance"] = payload[3]
		}
		if vals := payload[min(4, len(payload)):]; len(vals) >= 6 {
			f["sensors"] = fields{
				"front_low": vals[0], "front_high": vals[1], "front_arm": vals[2],
				"left": vals[3], "mid": vals[4], "right": vals[5],
			}
		} else if len(vals) > 0 {
			f["values"] = append([]byte(nil), vals...)
		}
		return event("obstacle", f)
	case 0x08:
		vals := payload[2:]
		f := fields{"values": append([]byte(nil), vals...)}
		if drift, ok := s16le(2); ok && len(vals) >= 6 {
			f["drift_angle"] = drift
			if v, ok := s16le(4); ok {
				f["elevation"] = v
			}
			if v, ok := s16le(6); ok {
				f["roll_angle"] = v
			}
		}
		return event("gyro", f)
	case 0x09:
		f := fields{}
		if which, ok := at(2); ok {
			f["which_part"] = which
		}
		if status, ok := at(3); ok {
			f["status"] = status
		}
		return event("head_motor_abnormal", f)
	case 0x0A, 0x1A:
		f := fields{"raw": hex.EncodeToString(payload)}
		if op == 0x1A && len(payload) >= 4 {
			f["which"] = payload[2]
			f["status"] = payload[3]
		}
		return event("hide_obstacle_status", f)
	case 0x0B:
		return event("ir_receive_status", fields{"raw": hex.EncodeToString(payload)})
	case 0x0C:
		f := fields{"raw": hex.EncodeToString(payload)}
		if t, ok := at(3); ok {
			f["type"] = t
		}
		return event("upgrade_status", f)
	case 0x0D:
		return event("mcu_version", fields{"version_bytes": hex.EncodeToString(payload[2:])})
	case 0x11:
		return event("photoelectric_switch", fields{"raw": hex.EncodeToString(payload)})
	case 0x12:
		// Either a projector connection report (no argument) or an
		// optocoupler report carrying the part byte.
		f := fields{"raw": hex.EncodeToString(payload)}
		if which, ok := at(2); ok {
			f["which_part"] = which
		}
		return event("conn_or_optocoupler", f)
	case 0x13:
		f := fields{}
		if status, ok := at(2); ok {
			f["status"] = status
		}
		return event("uart_connection", f)
	case 0x14:
		return event("spi_flash_status", fields{"raw": hex.EncodeToString(payload)})
	case 0x15:
		f := fields{}
		if status, ok := at(2); ok {
			f["status"] = status
		}
		return event("bottom_encoder", f)
	case 0x16:
		f := fields{}
		if status, ok := at(2); ok {
			f["status"] = status
		}
		return event("ir_sender", f)
	case 0x17:
		f := fields{}
		if status, ok := at(2); ok {
			f["status"] = status
			f["pressed"] = status != 0
		}
		return event("button", f)
	case 0x18:
		f := fields{}
		if status, ok := at(2); ok {
			f["status"] = status
			if status == 0x00 || status == 0x01 {
				f["powered"] = status == 0x01
			}
		}
		return event("projector_status", f)
	case 0x19:
		f := fields{}
		if which, ok := at(2); ok {
			f["which_part"] = which
		}
		return event("photoelectric_abnormal", f)
	case 0x1B:
		return event("expression_version", fields{"version_bytes": hex.EncodeToString(payload[2:])})
	case 0x22:
		f := fields{}
		if mode, ok := at(2); ok {
			f["mode"] = mode
		}
		if follow, ok := at(3); ok {
			f["follow"] = follow
		}
		if obstacle, ok := at(4); ok {
			f["obstacle"] = obstacle
		}
		return event("work_status", f)
	}
	return nil
}

// decodePrivate handles the 0xFF 0xA6 private-peripheral envelope used
// by the charge pile and the IR telecontrol.
func decodePrivate(payload []byte) *Event {
	if len(payload) < 7 {
		return nil
	}
	ptype := payload[5]
	subtype := payload[6]
	raw := hex.EncodeToString(payload)
	switch ptype {
	case 0x00:
		return event("private_query_type", fields{"type": subtype, "raw": raw})
	case 0x01:
		f := fields{"raw": raw}
		if len(payload) > 7 {
			f["sub_device_type"] = payload[7]
		}
		return event("charge_pile_status", f)
	case 0x02:
		f := fields{"raw": raw}
		if len(payload) > 7 {
			f["sub_device_type"] = payload[7]
		}
		if len(payload) > 8 {
			f["back_message"] = payload[8]
		}
		if len(payload) > 9 {
			f["back_status"] = payload[9]
		}
		return event("telecontrol_status", f)
	}
	return event("private_peripheral", fields{"ptype": ptype, "subtype": subtype, "raw": raw})
}
