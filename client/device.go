package client

import "github.com/wavetools/slxd/protocol"

// LockStatus is the front-panel lock mode of a receiver.
type LockStatus string

// All front-panel lock modes.
const (
	LockOff  = LockStatus("OFF")
	LockMenu = LockStatus("MENU")
	LockAll  = LockStatus("ALL")
)

// OutputLevel is the audio output routing of a channel.
type OutputLevel string

// All audio output routings.
const (
	OutputMic  = OutputLevel("MIC")
	OutputLine = OutputLevel("LINE")
)

// TransmitterModel identifies the type of a linked transmitter.
type TransmitterModel string

// All transmitter models of the family.
const (
	TxBodypack = TransmitterModel("SLXD1")
	TxHandheld = TransmitterModel("SLXD2")
	TxUnknown  = TransmitterModel("UNKNOWN")
)

// BatteryStatus is a coarse classification of a transmitter's battery
// level.
type BatteryStatus string

// All battery status levels.
const (
	BatteryNormal   = BatteryStatus("normal")
	BatteryLow      = BatteryStatus("low")
	BatteryCritical = BatteryStatus("critical")
	BatteryUnknown  = BatteryStatus("unknown")
)

// UnknownReading marks a battery value the receiver does not know.
const UnknownReading = -1

// Transmitter is a snapshot of a wireless transmitter linked to a channel.
type Transmitter struct {
	Model TransmitterModel
	// BatteryBars is the battery level in bars (0..5), UnknownReading
	// when the receiver reports no value.
	BatteryBars int
	// BatteryMinutes is the estimated runtime, UnknownReading when the
	// receiver reports no value.
	BatteryMinutes int
}

// BatteryPercentage returns the battery level as a percentage, 20% per
// bar. ok is false when the level is unknown.
func (t Transmitter) BatteryPercentage() (percent int, ok bool) {
	if t.BatteryBars == UnknownReading {
		return 0, false
	}
	return t.BatteryBars * 20, true
}

// BatteryState classifies the battery level.
func (t Transmitter) BatteryState() BatteryStatus {
	switch t.BatteryBars {
	case UnknownReading:
		return BatteryUnknown
	case 0:
		return BatteryCritical
	case 1:
		return BatteryLow
	default:
		return BatteryNormal
	}
}

// Channel is a snapshot of one receiver channel. Snapshots are freshly
// constructed on every poll, they never share state with later polls.
type Channel struct {
	Number          int
	Name            string
	FrequencyKHz    int
	GroupChannel    string
	AudioGainDB     int
	AudioOutLevel   OutputLevel
	AudioPeakDBFS   int
	AudioRMSDBFS    int
	RSSIAntenna1DBm int
	RSSIAntenna2DBm int
	// Transmitter is nil when no transmitter is linked.
	Transmitter *Transmitter
}

// FrequencyMHz returns the operating frequency in MHz.
func (c Channel) FrequencyMHz() float64 {
	return float64(c.FrequencyKHz) / 1000.0
}

// Active indicates whether a transmitter is linked to this channel.
func (c Channel) Active() bool {
	return c.Transmitter != nil
}

// BestRSSI returns the stronger of the two antennas' signal strengths in
// dBm (diversity reception).
func (c Channel) BestRSSI() int {
	if c.RSSIAntenna2DBm > c.RSSIAntenna1DBm {
		return c.RSSIAntenna2DBm
	}
	return c.RSSIAntenna1DBm
}

// Device is a snapshot of a receiver and its channels.
type Device struct {
	Model           string
	DeviceID        string
	FirmwareVersion string
	RFBand          string
	LockStatus      LockStatus
	Channels        []Channel
}

// ChannelCount returns the number of channels derived from the model name.
func (d Device) ChannelCount() int {
	return protocol.ChannelCountForModel(d.Model)
}

// DualChannel indicates a two-channel receiver.
func (d Device) DualChannel() bool {
	return d.ChannelCount() == 2
}

// QuadChannel indicates a four-channel receiver.
func (d Device) QuadChannel() bool {
	return d.ChannelCount() == 4
}

// Channel returns the channel with the given number.
func (d Device) Channel(number int) (Channel, bool) {
	for _, channel := range d.Channels {
		if channel.Number == number {
			return channel, true
		}
	}
	return Channel{}, false
}
