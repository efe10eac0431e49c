package client

import (
	"fmt"

	"github.com/wavetools/slxd/protocol"
)

func validateChannel(channel int) error {
	if channel < 1 || channel > protocol.MaxChannels {
		return fmt.Errorf("%w: channel %d out of range 1..%d", ErrInvalidArgument, channel, protocol.MaxChannels)
	}
	return nil
}

func validateAntenna(antenna int) error {
	if antenna != 1 && antenna != 2 {
		return fmt.Errorf("%w: antenna %d must be 1 or 2", ErrInvalidArgument, antenna)
	}
	return nil
}

// exchange builds a command, sends it, and expects a REP line back.
func (c *Client) exchange(kind protocol.Kind, property string, channel int, value string) (protocol.Response, error) {
	command, err := protocol.Build(kind, property, channel, value)
	if err != nil {
		return protocol.Response{}, err
	}
	response, err := c.SendCommand(command)
	if err != nil {
		return protocol.Response{}, err
	}
	// Active metering interleaves SAMPLE lines with the acknowledgement.
	// Skip them until the REP arrives.
	for response.Kind == protocol.Sample {
		response, err = c.readResponse()
		if err != nil {
			return protocol.Response{}, err
		}
	}
	if response.Kind != protocol.Rep {
		return protocol.Response{}, fmt.Errorf("%w: expected a REP line, got %s", protocol.ErrMalformedResponse, response.Kind)
	}
	return response, nil
}

func (c *Client) getString(property string, channel int) (string, error) {
	response, err := c.exchange(protocol.Get, property, channel, "")
	if err != nil {
		return "", err
	}
	return response.Value, nil
}

func (c *Client) getRaw(property string, channel int) (int, error) {
	response, err := c.exchange(protocol.Get, property, channel, "")
	if err != nil {
		return 0, err
	}
	if !response.Numeric {
		return 0, fmt.Errorf("%w: %s reported non-numeric value %q", protocol.ErrMalformedResponse, property, response.Value)
	}
	return response.Raw, nil
}

// GetModel reads the receiver's model name.
func (c *Client) GetModel() (string, error) {
	return c.getString(protocol.PropModel, protocol.NoChannel)
}

// GetDeviceID reads the receiver's device identifier.
func (c *Client) GetDeviceID() (string, error) {
	return c.getString(protocol.PropDeviceID, protocol.NoChannel)
}

// GetFirmwareVersion reads the receiver's firmware version.
func (c *Client) GetFirmwareVersion() (string, error) {
	return c.getString(protocol.PropFirmware, protocol.NoChannel)
}

// GetRFBand reads the receiver's RF band.
func (c *Client) GetRFBand() (string, error) {
	return c.getString(protocol.PropRFBand, protocol.NoChannel)
}

// GetLockStatus reads the front-panel lock mode.
func (c *Client) GetLockStatus() (LockStatus, error) {
	value, err := c.getString(protocol.PropLockStatus, protocol.NoChannel)
	if err != nil {
		return "", err
	}
	switch status := LockStatus(value); status {
	case LockOff, LockMenu, LockAll:
		return status, nil
	default:
		return "", fmt.Errorf("%w: unknown lock status %q", protocol.ErrMalformedResponse, value)
	}
}

// SetLockStatus sets the front-panel lock mode.
func (c *Client) SetLockStatus(status LockStatus) error {
	switch status {
	case LockOff, LockMenu, LockAll:
	default:
		return fmt.Errorf("%w: lock status %q", ErrInvalidArgument, status)
	}
	_, err := c.exchange(protocol.Set, protocol.PropLockStatus, protocol.NoChannel, string(status))
	return err
}

// GetChannelName reads a channel's display name, padding stripped.
func (c *Client) GetChannelName(channel int) (string, error) {
	if err := validateChannel(channel); err != nil {
		return "", err
	}
	return c.getString(protocol.PropChannelName, channel)
}

// SetChannelName sets a channel's display name, at most 8 characters, no
// spaces or protocol delimiters.
func (c *Client) SetChannelName(channel int, name string) error {
	if err := validateChannel(channel); err != nil {
		return err
	}
	if name == "" || len(name) > 8 {
		return fmt.Errorf("%w: channel name %q must be 1..8 characters", ErrInvalidArgument, name)
	}
	for _, r := range name {
		if r <= ' ' || r == '<' || r == '>' || r == '{' || r == '}' {
			return fmt.Errorf("%w: channel name %q contains %q", ErrInvalidArgument, name, r)
		}
	}
	_, err := c.exchange(protocol.Set, protocol.PropChannelName, channel, name)
	return err
}

// GetFrequency reads a channel's operating frequency in kHz.
func (c *Client) GetFrequency(channel int) (int, error) {
	if err := validateChannel(channel); err != nil {
		return 0, err
	}
	return c.getRaw(protocol.PropFrequency, channel)
}

// GetGroupChannel reads a channel's group/channel preset, e.g. "1,1".
func (c *Client) GetGroupChannel(channel int) (string, error) {
	if err := validateChannel(channel); err != nil {
		return "", err
	}
	return c.getString(protocol.PropGroupChannel, channel)
}

// GetAudioGain reads a channel's audio gain in dB.
func (c *Client) GetAudioGain(channel int) (int, error) {
	if err := validateChannel(channel); err != nil {
		return 0, err
	}
	raw, err := c.getRaw(protocol.PropAudioGain, channel)
	if err != nil {
		return 0, err
	}
	return protocol.GainToDB(raw), nil
}

// SetAudioGain sets a channel's audio gain in dB (-18..+42).
func (c *Client) SetAudioGain(channel int, gainDB int) error {
	if err := validateChannel(channel); err != nil {
		return err
	}
	raw := protocol.GainToRaw(gainDB)
	if raw < protocol.GainRawMin || raw > protocol.GainRawMax {
		return fmt.Errorf("%w: gain %d dB out of range %d..%d", ErrInvalidArgument, gainDB,
			protocol.GainToDB(protocol.GainRawMin), protocol.GainToDB(protocol.GainRawMax))
	}
	_, err := c.exchange(protocol.Set, protocol.PropAudioGain, channel, fmt.Sprintf("%03d", raw))
	return err
}

// GetAudioOutLevel reads a channel's audio output routing.
func (c *Client) GetAudioOutLevel(channel int) (OutputLevel, error) {
	if err := validateChannel(channel); err != nil {
		return "", err
	}
	value, err := c.getString(protocol.PropAudioOutLevel, channel)
	if err != nil {
		return "", err
	}
	switch level := OutputLevel(value); level {
	case OutputMic, OutputLine:
		return level, nil
	default:
		return "", fmt.Errorf("%w: unknown output level %q", protocol.ErrMalformedResponse, value)
	}
}

// SetAudioOutLevel sets a channel's audio output routing.
func (c *Client) SetAudioOutLevel(channel int, level OutputLevel) error {
	if err := validateChannel(channel); err != nil {
		return err
	}
	switch level {
	case OutputMic, OutputLine:
	default:
		return fmt.Errorf("%w: output level %q", ErrInvalidArgument, level)
	}
	_, err := c.exchange(protocol.Set, protocol.PropAudioOutLevel, channel, string(level))
	return err
}

// GetAudioLevelPeak reads a channel's peak audio level in dBFS.
func (c *Client) GetAudioLevelPeak(channel int) (int, error) {
	if err := validateChannel(channel); err != nil {
		return 0, err
	}
	raw, err := c.getRaw(protocol.PropAudioLevelPeak, channel)
	if err != nil {
		return 0, err
	}
	return protocol.LevelToDBFS(raw), nil
}

// GetAudioLevelRMS reads a channel's RMS audio level in dBFS.
func (c *Client) GetAudioLevelRMS(channel int) (int, error) {
	if err := validateChannel(channel); err != nil {
		return 0, err
	}
	raw, err := c.getRaw(protocol.PropAudioLevelRMS, channel)
	if err != nil {
		return 0, err
	}
	return protocol.LevelToDBFS(raw), nil
}

// GetRSSI reads a channel's signal strength in dBm for the given antenna
// (1 or 2).
func (c *Client) GetRSSI(channel, antenna int) (int, error) {
	if err := validateChannel(channel); err != nil {
		return 0, err
	}
	if err := validateAntenna(antenna); err != nil {
		return 0, err
	}
	response, err := c.exchange(protocol.Get, protocol.PropRSSI, channel, fmt.Sprintf("%d", antenna))
	if err != nil {
		return 0, err
	}
	if !response.Numeric {
		return 0, fmt.Errorf("%w: RSSI reported non-numeric value %q", protocol.ErrMalformedResponse, response.Value)
	}
	return protocol.RSSIToDBm(response.Raw), nil
}

// GetTxModel reads the model of the transmitter linked to a channel,
// TxUnknown when none is linked.
func (c *Client) GetTxModel(channel int) (TransmitterModel, error) {
	if err := validateChannel(channel); err != nil {
		return "", err
	}
	value, err := c.getString(protocol.PropTxModel, channel)
	if err != nil {
		return "", err
	}
	switch model := TransmitterModel(value); model {
	case TxBodypack, TxHandheld:
		return model, nil
	default:
		return TxUnknown, nil
	}
}

// GetTxBattBars reads the linked transmitter's battery level in bars
// (0..5). ok is false when the receiver reports no value.
func (c *Client) GetTxBattBars(channel int) (bars int, ok bool, err error) {
	if err := validateChannel(channel); err != nil {
		return 0, false, err
	}
	raw, err := c.getRaw(protocol.PropTxBattBars, channel)
	if err != nil {
		return 0, false, err
	}
	bars, ok = protocol.BatteryBars(raw)
	return bars, ok, nil
}

// GetTxBattMins reads the linked transmitter's estimated battery runtime
// in minutes. ok is false when the receiver reports no value.
func (c *Client) GetTxBattMins(channel int) (minutes int, ok bool, err error) {
	if err := validateChannel(channel); err != nil {
		return 0, false, err
	}
	raw, err := c.getRaw(protocol.PropTxBattMins, channel)
	if err != nil {
		return 0, false, err
	}
	minutes, ok = protocol.BatteryMinutes(raw)
	return minutes, ok, nil
}

// FlashDevice flashes the receiver's front panel for identification and
// awaits the acknowledgement.
func (c *Client) FlashDevice() error {
	_, err := c.exchange(protocol.Set, protocol.PropFlash, protocol.NoChannel, "ON")
	return err
}

// FlashChannel flashes a channel's LED for identification and awaits the
// acknowledgement.
func (c *Client) FlashChannel(channel int) error {
	if err := validateChannel(channel); err != nil {
		return err
	}
	_, err := c.exchange(protocol.Set, protocol.PropFlash, channel, "ON")
	return err
}

// StartMetering asks the receiver to emit SAMPLE lines for a channel
// every rateMs milliseconds. The lines arrive asynchronously on this
// connection; consume them with NextSample. Accessors skip SAMPLE
// lines interleaved with their acknowledgements, but a dedicated
// Meter keeps metering traffic off the command connection entirely.
func (c *Client) StartMetering(channel, rateMs int) error {
	if err := validateChannel(channel); err != nil {
		return err
	}
	if rateMs < 1 || rateMs > 99999 {
		return fmt.Errorf("%w: metering rate %d ms out of range 1..99999", ErrInvalidArgument, rateMs)
	}
	_, err := c.exchange(protocol.Set, protocol.PropMeterRate, channel, fmt.Sprintf("%05d", rateMs))
	return err
}

// StopMetering cancels the SAMPLE stream of a channel.
func (c *Client) StopMetering(channel int) error {
	if err := validateChannel(channel); err != nil {
		return err
	}
	_, err := c.exchange(protocol.Set, protocol.PropMeterRate, channel, "00000")
	return err
}

// FetchChannel polls all properties of a channel and returns a fresh
// snapshot.
func (c *Client) FetchChannel(channel int) (Channel, error) {
	if err := validateChannel(channel); err != nil {
		return Channel{}, err
	}

	result := Channel{Number: channel}
	var err error
	if result.Name, err = c.GetChannelName(channel); err != nil {
		return Channel{}, err
	}
	if result.FrequencyKHz, err = c.GetFrequency(channel); err != nil {
		return Channel{}, err
	}
	if result.GroupChannel, err = c.GetGroupChannel(channel); err != nil {
		return Channel{}, err
	}
	if result.AudioGainDB, err = c.GetAudioGain(channel); err != nil {
		return Channel{}, err
	}
	if result.AudioOutLevel, err = c.GetAudioOutLevel(channel); err != nil {
		return Channel{}, err
	}
	if result.AudioPeakDBFS, err = c.GetAudioLevelPeak(channel); err != nil {
		return Channel{}, err
	}
	if result.AudioRMSDBFS, err = c.GetAudioLevelRMS(channel); err != nil {
		return Channel{}, err
	}
	if result.RSSIAntenna1DBm, err = c.GetRSSI(channel, 1); err != nil {
		return Channel{}, err
	}
	if result.RSSIAntenna2DBm, err = c.GetRSSI(channel, 2); err != nil {
		return Channel{}, err
	}

	model, err := c.GetTxModel(channel)
	if err != nil {
		return Channel{}, err
	}
	if model != TxUnknown {
		tx := &Transmitter{Model: model, BatteryBars: UnknownReading, BatteryMinutes: UnknownReading}
		if bars, ok, err := c.GetTxBattBars(channel); err != nil {
			return Channel{}, err
		} else if ok {
			tx.BatteryBars = bars
		}
		if minutes, ok, err := c.GetTxBattMins(channel); err != nil {
			return Channel{}, err
		} else if ok {
			tx.BatteryMinutes = minutes
		}
		result.Transmitter = tx
	}
	return result, nil
}

// FetchDevice polls the whole receiver and returns a fresh snapshot of the
// device and all channels derived from its model name.
func (c *Client) FetchDevice() (Device, error) {
	result := Device{}
	var err error
	if result.Model, err = c.GetModel(); err != nil {
		return Device{}, err
	}
	if result.DeviceID, err = c.GetDeviceID(); err != nil {
		return Device{}, err
	}
	if result.FirmwareVersion, err = c.GetFirmwareVersion(); err != nil {
		return Device{}, err
	}
	if result.RFBand, err = c.GetRFBand(); err != nil {
		return Device{}, err
	}
	if result.LockStatus, err = c.GetLockStatus(); err != nil {
		return Device{}, err
	}

	count := result.ChannelCount()
	result.Channels = make([]Channel, 0, count)
	for number := 1; number <= count; number++ {
		channel, err := c.FetchChannel(number)
		if err != nil {
			return Device{}, err
		}
		result.Channels = append(result.Channels, channel)
	}
	return result, nil
}
