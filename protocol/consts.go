package protocol

import "strings"

// DefaultPort of the SLX-D command interface.
const DefaultPort = 2202

// Kind discriminates the four line types of the SLX-D protocol.
type Kind string

// All line kinds of the SLX-D protocol.
const (
	Get    = Kind("GET")
	Set    = Kind("SET")
	Rep    = Kind("REP")
	Sample = Kind("SAMPLE")
)

// Device-level properties.
const (
	PropModel      = "MODEL"
	PropDeviceID   = "DEVICE_ID"
	PropFirmware   = "FW_VER"
	PropRFBand     = "RF_BAND"
	PropLockStatus = "LOCK_STATUS"
	PropFlash      = "FLASH"
)

// Channel-level properties.
const (
	PropChannelName    = "CHAN_NAME"
	PropFrequency      = "FREQUENCY"
	PropGroupChannel   = "GROUP_CHAN"
	PropAudioGain      = "AUDIO_GAIN"
	PropAudioOutLevel  = "AUDIO_OUT_LVL"
	PropAudioLevelPeak = "AUDIO_LEVEL_PEAK"
	PropAudioLevelRMS  = "AUDIO_LEVEL_RMS"
	PropRSSI           = "RSSI"
	PropTxModel        = "TX_MODEL"
	PropTxBattBars     = "TX_BATT_BARS"
	PropTxBattMins     = "TX_BATT_MINS"
	PropMeterRate      = "METER_RATE"
)

// Offsets between raw wire values and physical units.
const (
	GainOffset  = 18  // raw 0..60 <-> -18..+42 dB
	LevelOffset = 120 // raw 0..120 <-> -120..0 dBFS
	RSSIOffset  = 120 // raw 0..120 <-> -120..0 dBm
)

// Raw value bounds.
const (
	GainRawMin  = 0
	GainRawMax  = 60
	MeterRawMin = 0
	MeterRawMax = 120
)

// Sentinel wire values for transmitter battery readings.
const (
	BattMinsWarning     = 65533
	BattMinsCalculating = 65534
	BattMinsUnknown     = 65535
	BattBarsUnknown     = 255
	BattBarsMax         = 5
)

// Fixed field widths on the wire.
const (
	GainWidth      = 3
	FrequencyWidth = 7
	MeterRateWidth = 5
	BattBarsWidth  = 3
	BattMinsWidth  = 5

	// StringPadWidth is the width string values are space-padded to
	// inside braces in REP lines.
	StringPadWidth = 31
)

// MaxChannels is the highest channel count of any receiver in the family.
const MaxChannels = 4

// channelCounts maps known receiver models to their channel count.
var channelCounts = map[string]int{
	"SLXD4":   1,
	"SLXD4D":  2,
	"SLXD4Q":  4,
	"SLXD4Q+": 4,
}

// ChannelCountForModel returns the number of channels of the given receiver
// model. Unknown model names fall back to matching the naming convention of
// the family: a "Q" marks quad receivers, a "4D" or trailing "D" marks dual
// receivers, everything else is single-channel.
func ChannelCountForModel(model string) int {
	if count, ok := channelCounts[model]; ok {
		return count
	}
	switch {
	case strings.Contains(model, "Q"):
		return 4
	case strings.HasSuffix(model, "D"), strings.Contains(model, "4D"):
		return 2
	default:
		return 1
	}
}
