package mock

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wavetools/slxd/protocol"
)

// Dispatcher interprets incoming command lines against a Device and
// produces the response lines a real receiver would send. Invalid or
// unknown commands yield no response at all, mirroring the hardware's
// silence on garbage input.
type Dispatcher struct {
	device *Device
}

// NewDispatcher returns a Dispatcher operating on the given device state.
func NewDispatcher(device *Device) *Dispatcher {
	return &Dispatcher{device: device}
}

// Handle processes one command line. ok is false when the receiver would
// not respond.
func (p *Dispatcher) Handle(line string) (response string, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "<") || !strings.HasSuffix(line, ">") {
		return "", false
	}

	inner := strings.TrimSpace(line[1 : len(line)-1])
	if inner == "" {
		return "", false
	}

	parts := strings.Fields(inner)
	kind := strings.ToUpper(parts[0])
	parts = parts[1:]

	p.device.mu.Lock()
	defer p.device.mu.Unlock()

	switch kind {
	case string(protocol.Get):
		return p.handleGet(parts)
	case string(protocol.Set):
		return p.handleSet(parts)
	default:
		return "", false
	}
}

func splitChannel(parts []string) (channel int, hasChannel bool, rest []string) {
	if len(parts) == 0 {
		return 0, false, parts
	}
	channel, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false, parts
	}
	return channel, true, parts[1:]
}

func (p *Dispatcher) handleGet(parts []string) (string, bool) {
	channel, hasChannel, parts := splitChannel(parts)
	if len(parts) == 0 {
		return "", false
	}
	property := strings.ToUpper(parts[0])
	args := parts[1:]

	switch property {
	case protocol.PropModel:
		return repString(protocol.PropModel, p.device.Model, 0), true
	case protocol.PropDeviceID:
		return repString(protocol.PropDeviceID, p.device.DeviceID, 0), true
	case protocol.PropFirmware:
		return repString(protocol.PropFirmware, p.device.FirmwareVersion, 0), true
	case protocol.PropRFBand:
		return fmt.Sprintf("< REP RF_BAND %s >", p.device.RFBand), true
	case protocol.PropLockStatus:
		return fmt.Sprintf("< REP LOCK_STATUS %s >", p.device.LockStatus), true
	}

	if !hasChannel {
		return "", false
	}
	ch := p.device.channel(channel)
	if ch == nil {
		return "", false
	}

	switch property {
	case protocol.PropChannelName:
		return repString(protocol.PropChannelName, ch.Name, channel), true
	case protocol.PropAudioGain:
		return fmt.Sprintf("< REP %d AUDIO_GAIN %03d >", channel, ch.AudioGainRaw), true
	case protocol.PropAudioOutLevel:
		return fmt.Sprintf("< REP %d AUDIO_OUT_LVL %s >", channel, ch.AudioOutLevel), true
	case protocol.PropFrequency:
		return fmt.Sprintf("< REP %d FREQUENCY %07d >", channel, ch.FrequencyKHz), true
	case protocol.PropGroupChannel:
		return fmt.Sprintf("< REP %d GROUP_CHAN %s >", channel, ch.GroupChannel), true
	case protocol.PropAudioLevelPeak:
		return fmt.Sprintf("< REP %d AUDIO_LEVEL_PEAK %03d >", channel, ch.AudioPeakRaw), true
	case protocol.PropAudioLevelRMS:
		return fmt.Sprintf("< REP %d AUDIO_LEVEL_RMS %03d >", channel, ch.AudioRMSRaw), true
	case protocol.PropRSSI:
		return p.getRSSI(ch, channel, args)
	case protocol.PropTxModel:
		if tx := linkedTransmitter(ch); tx != nil {
			return fmt.Sprintf("< REP %d TX_MODEL %s >", channel, tx.Model), true
		}
		return fmt.Sprintf("< REP %d TX_MODEL UNKNOWN >", channel), true
	case protocol.PropTxBattBars:
		if tx := linkedTransmitter(ch); tx != nil {
			return fmt.Sprintf("< REP %d TX_BATT_BARS %03d >", channel, tx.BatteryBars), true
		}
		return fmt.Sprintf("< REP %d TX_BATT_BARS %03d >", channel, protocol.BattBarsUnknown), true
	case protocol.PropTxBattMins:
		if tx := linkedTransmitter(ch); tx != nil {
			return fmt.Sprintf("< REP %d TX_BATT_MINS %05d >", channel, tx.BatteryMinutes), true
		}
		return fmt.Sprintf("< REP %d TX_BATT_MINS %05d >", channel, protocol.BattMinsUnknown), true
	case protocol.PropMeterRate:
		// the hardware reports 0 when metering is off
		return fmt.Sprintf("< REP %d METER_RATE %05d >", channel, 0), true
	}
	return "", false
}

func (p *Dispatcher) getRSSI(ch *Channel, channel int, args []string) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	antenna, err := strconv.Atoi(args[0])
	if err != nil {
		return "", false
	}
	switch antenna {
	case 1:
		return fmt.Sprintf("< REP %d RSSI 1 %03d >", channel, ch.RSSIA1Raw), true
	case 2:
		return fmt.Sprintf("< REP %d RSSI 2 %03d >", channel, ch.RSSIA2Raw), true
	}
	return "", false
}

func (p *Dispatcher) handleSet(parts []string) (string, bool) {
	channel, hasChannel, parts := splitChannel(parts)

	if len(parts) == 0 {
		return "", false
	}
	property := strings.ToUpper(parts[0])

	if len(parts) < 2 {
		return "", false
	}
	value := parts[1]

	if property == protocol.PropFlash {
		if !hasChannel {
			return "< REP FLASH ON >", true
		}
		if p.device.channel(channel) == nil {
			return "", false
		}
		return fmt.Sprintf("< REP %d FLASH ON >", channel), true
	}

	if property == protocol.PropLockStatus {
		switch value {
		case "OFF", "MENU", "ALL":
			p.device.LockStatus = value
			return fmt.Sprintf("< REP LOCK_STATUS %s >", value), true
		}
		return "", false
	}

	if !hasChannel {
		return "", false
	}
	ch := p.device.channel(channel)
	if ch == nil {
		return "", false
	}

	switch property {
	case protocol.PropAudioGain:
		raw, err := strconv.Atoi(value)
		if err != nil || raw < protocol.GainRawMin || raw > protocol.GainRawMax {
			return "", false
		}
		ch.AudioGainRaw = raw
		return fmt.Sprintf("< REP %d AUDIO_GAIN %03d >", channel, raw), true
	case protocol.PropAudioOutLevel:
		switch value {
		case "MIC", "LINE":
			ch.AudioOutLevel = value
			return fmt.Sprintf("< REP %d AUDIO_OUT_LVL %s >", channel, value), true
		}
		return "", false
	case protocol.PropChannelName:
		if len(value) > 8 {
			value = value[:8]
		}
		ch.Name = value
		return repString(protocol.PropChannelName, value, channel), true
	case protocol.PropMeterRate:
		rate, err := strconv.Atoi(value)
		if err != nil || rate < 0 {
			return "", false
		}
		return fmt.Sprintf("< REP %d METER_RATE %05d >", channel, rate), true
	}
	return "", false
}

// GenerateSample produces a SAMPLE metering line for the given channel,
// reporting the currently dominant antenna (ties go to antenna 1).
func (p *Dispatcher) GenerateSample(channel int) (string, bool) {
	p.device.mu.Lock()
	defer p.device.mu.Unlock()

	ch := p.device.channel(channel)
	if ch == nil {
		return "", false
	}

	antenna := 1
	if ch.RSSIA2Raw > ch.RSSIA1Raw {
		antenna = 2
	}

	return fmt.Sprintf("< SAMPLE %d ALL %03d %03d %03d %03d %d >",
		channel, ch.AudioPeakRaw, ch.AudioRMSRaw, ch.RSSIA1Raw, ch.RSSIA2Raw, antenna), true
}

// linkedTransmitter returns the channel's transmitter when one is linked
// and connected.
func linkedTransmitter(ch *Channel) *Transmitter {
	if ch.Transmitter != nil && ch.Transmitter.Connected {
		return ch.Transmitter
	}
	return nil
}

// repString formats a REP line with a brace-wrapped, space-padded string
// value. channel 0 omits the channel number.
func repString(property, value string, channel int) string {
	padded := fmt.Sprintf("%-*s", protocol.StringPadWidth, value)
	if channel > 0 {
		return fmt.Sprintf("< REP %d %s {%s} >", channel, property, padded)
	}
	return fmt.Sprintf("< REP %s {%s} >", property, padded)
}
