// Package mock emulates a Shure SLX-D receiver: an in-memory device state
// model, a dispatcher for the command protocol, and a concurrent TCP server
// that behaves like the hardware's command interface, including periodic
// SAMPLE metering streams.
package mock

import (
	"errors"
	"fmt"
	"sync"

	"github.com/wavetools/slxd/protocol"
)

// ErrInvalidState indicates that a device state violates an invariant of
// the receiver family.
var ErrInvalidState = errors.New("invalid device state")

// Transmitter models a wireless transmitter linked to a receiver channel.
type Transmitter struct {
	Model          string // SLXD1, SLXD2, or UNKNOWN
	Connected      bool
	BatteryBars    int // 0..5, or 255 for unknown
	BatteryMinutes int
	Encryption     bool
}

// Channel models one receiver channel. All values are raw wire values.
type Channel struct {
	Number        int
	Name          string
	FrequencyKHz  int
	GroupChannel  string
	AudioGainRaw  int
	AudioOutLevel string // MIC or LINE
	AudioPeakRaw  int
	AudioRMSRaw   int
	RSSIA1Raw     int
	RSSIA2Raw     int
	Transmitter   *Transmitter
}

// Device is the emulated receiver state. It is shared between all
// connection handlers of a Server and the test harness; every read and
// write must happen while holding mu.
type Device struct {
	mu sync.Mutex

	Model           string
	DeviceID        string
	FirmwareVersion string
	RFBand          string
	LockStatus      string // OFF, MENU, or ALL
	Channels        []*Channel
}

// DeviceConfig carries the construction parameters of a Device. Zero
// values are replaced by the defaults of the reference dual-channel
// receiver.
type DeviceConfig struct {
	Model           string
	DeviceID        string
	FirmwareVersion string
	RFBand          string
	LockStatus      string
	Channels        []*Channel
}

// NewDevice constructs an emulated receiver. Channels are derived from the
// model name unless explicitly provided. It fails with ErrInvalidState when
// any invariant is violated.
func NewDevice(cfg DeviceConfig) (*Device, error) {
	device := &Device{
		Model:           defaultString(cfg.Model, "SLXD4D"),
		DeviceID:        defaultString(cfg.DeviceID, "2C2A3F01"),
		FirmwareVersion: defaultString(cfg.FirmwareVersion, "2.0.15.2"),
		RFBand:          defaultString(cfg.RFBand, "G55"),
		LockStatus:      defaultString(cfg.LockStatus, "OFF"),
		Channels:        cfg.Channels,
	}

	if device.Channels == nil {
		count := protocol.ChannelCountForModel(device.Model)
		device.Channels = make([]*Channel, count)
		for i := range device.Channels {
			device.Channels[i] = &Channel{
				Number:       i + 1,
				Name:         fmt.Sprintf("CH %d", i+1),
				FrequencyKHz: 578350 + i*250,
			}
		}
	}

	for _, channel := range device.Channels {
		applyChannelDefaults(channel)
	}

	if err := device.validate(); err != nil {
		return nil, err
	}
	return device, nil
}

func applyChannelDefaults(channel *Channel) {
	if channel.Name == "" {
		channel.Name = fmt.Sprintf("CH %d", channel.Number)
	}
	if channel.FrequencyKHz == 0 {
		channel.FrequencyKHz = 578350
	}
	if channel.AudioGainRaw == 0 {
		channel.AudioGainRaw = protocol.GainOffset // 0 dB
	}
	if channel.GroupChannel == "" {
		channel.GroupChannel = "1,1"
	}
	if channel.AudioOutLevel == "" {
		channel.AudioOutLevel = "MIC"
	}
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func (d *Device) validate() error {
	switch d.LockStatus {
	case "OFF", "MENU", "ALL":
	default:
		return fmt.Errorf("%w: lock status %q", ErrInvalidState, d.LockStatus)
	}

	for _, channel := range d.Channels {
		if channel.Number < 1 || channel.Number > protocol.MaxChannels {
			return fmt.Errorf("%w: channel number %d", ErrInvalidState, channel.Number)
		}
		if channel.AudioGainRaw < protocol.GainRawMin || channel.AudioGainRaw > protocol.GainRawMax {
			return fmt.Errorf("%w: audio gain %d on channel %d", ErrInvalidState, channel.AudioGainRaw, channel.Number)
		}
		switch channel.AudioOutLevel {
		case "MIC", "LINE":
		default:
			return fmt.Errorf("%w: audio out level %q on channel %d", ErrInvalidState, channel.AudioOutLevel, channel.Number)
		}
		if err := validateMeterRaw(channel); err != nil {
			return err
		}
		if channel.Transmitter != nil {
			if err := validateTransmitter(channel.Transmitter); err != nil {
				return fmt.Errorf("%w on channel %d", err, channel.Number)
			}
		}
	}
	return nil
}

func validateMeterRaw(channel *Channel) error {
	for _, raw := range []int{channel.AudioPeakRaw, channel.AudioRMSRaw, channel.RSSIA1Raw, channel.RSSIA2Raw} {
		if raw < protocol.MeterRawMin || raw > protocol.MeterRawMax {
			return fmt.Errorf("%w: meter value %d on channel %d", ErrInvalidState, raw, channel.Number)
		}
	}
	return nil
}

func validateTransmitter(tx *Transmitter) error {
	switch tx.Model {
	case "SLXD1", "SLXD2", "UNKNOWN":
	default:
		return fmt.Errorf("%w: transmitter model %q", ErrInvalidState, tx.Model)
	}
	if tx.BatteryBars != protocol.BattBarsUnknown &&
		(tx.BatteryBars < 0 || tx.BatteryBars > protocol.BattBarsMax) {
		return fmt.Errorf("%w: battery bars %d", ErrInvalidState, tx.BatteryBars)
	}
	return nil
}

// channel returns the channel with the given number. The caller must hold
// d.mu.
func (d *Device) channel(number int) *Channel {
	for _, channel := range d.Channels {
		if channel.Number == number {
			return channel
		}
	}
	return nil
}

// ChannelCount returns the number of channels of this device.
func (d *Device) ChannelCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Channels)
}

// ChannelState returns a copy of the given channel's current state.
func (d *Device) ChannelState(number int) (Channel, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	channel := d.channel(number)
	if channel == nil {
		return Channel{}, false
	}
	result := *channel
	if channel.Transmitter != nil {
		tx := *channel.Transmitter
		result.Transmitter = &tx
	}
	return result, true
}
