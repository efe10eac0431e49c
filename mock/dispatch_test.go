package mock

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	device, err := NewDevice(DeviceConfig{})
	require.NoError(t, err)
	return NewDispatcher(device)
}

func TestDispatchIgnoresGarbage(t *testing.T) {
	p := newTestDispatcher(t)
	for _, command := range []string{
		"",
		"GET",
		"< >",
		"NOTWRAPPED",
		"< PING MODEL >",
		"< GET >",
		"< GET NO_SUCH_PROP >",
		"< SET LOCK_STATUS >",
	} {
		t.Run(fmt.Sprintf("%q", command), func(t *testing.T) {
			_, ok := p.Handle(command)
			assert.False(t, ok)
		})
	}
}

func TestDispatchGetDeviceProperties(t *testing.T) {
	p := newTestDispatcher(t)
	tt := []struct {
		command  string
		expected string
	}{
		{"< GET MODEL >", "< REP MODEL {SLXD4D                          } >"},
		{"< GET DEVICE_ID >", "< REP DEVICE_ID {2C2A3F01                       } >"},
		{"< GET FW_VER >", "< REP FW_VER {2.0.15.2                       } >"},
		{"< GET RF_BAND >", "< REP RF_BAND G55 >"},
		{"< GET LOCK_STATUS >", "< REP LOCK_STATUS OFF >"},
		// property matching is case-insensitive on the device side
		{"< get model >", "< REP MODEL {SLXD4D                          } >"},
	}
	for _, tc := range tt {
		t.Run(tc.command, func(t *testing.T) {
			response, ok := p.Handle(tc.command)
			require.True(t, ok)
			assert.Equal(t, tc.expected, response)
		})
	}
}

func TestDispatchGetChannelProperties(t *testing.T) {
	p := newTestDispatcher(t)
	tt := []struct {
		command  string
		expected string
	}{
		{"< GET 1 CHAN_NAME >", "< REP 1 CHAN_NAME {CH 1                           } >"},
		{"< GET 1 AUDIO_GAIN >", "< REP 1 AUDIO_GAIN 018 >"},
		{"< GET 1 AUDIO_OUT_LVL >", "< REP 1 AUDIO_OUT_LVL MIC >"},
		{"< GET 1 FREQUENCY >", "< REP 1 FREQUENCY 0578350 >"},
		{"< GET 2 FREQUENCY >", "< REP 2 FREQUENCY 0578600 >"},
		{"< GET 1 GROUP_CHAN >", "< REP 1 GROUP_CHAN 1,1 >"},
		{"< GET 1 AUDIO_LEVEL_PEAK >", "< REP 1 AUDIO_LEVEL_PEAK 000 >"},
		{"< GET 1 AUDIO_LEVEL_RMS >", "< REP 1 AUDIO_LEVEL_RMS 000 >"},
		{"< GET 1 RSSI 1 >", "< REP 1 RSSI 1 000 >"},
		{"< GET 1 RSSI 2 >", "< REP 1 RSSI 2 000 >"},
		{"< GET 1 METER_RATE >", "< REP 1 METER_RATE 00000 >"},
	}
	for _, tc := range tt {
		t.Run(tc.command, func(t *testing.T) {
			response, ok := p.Handle(tc.command)
			require.True(t, ok)
			assert.Equal(t, tc.expected, response)
		})
	}

	// channel-level property without a channel, unknown channel, bad antenna
	for _, command := range []string{
		"< GET AUDIO_GAIN >",
		"< GET 3 AUDIO_GAIN >",
		"< GET 1 RSSI >",
		"< GET 1 RSSI 3 >",
		"< GET 1 RSSI x >",
	} {
		_, ok := p.Handle(command)
		assert.False(t, ok, command)
	}
}

func TestDispatchTransmitterSentinels(t *testing.T) {
	p := newTestDispatcher(t)

	// no transmitter linked: the documented sentinel values, not errors
	response, ok := p.Handle("< GET 1 TX_MODEL >")
	require.True(t, ok)
	assert.Equal(t, "< REP 1 TX_MODEL UNKNOWN >", response)

	response, ok = p.Handle("< GET 1 TX_BATT_BARS >")
	require.True(t, ok)
	assert.Equal(t, "< REP 1 TX_BATT_BARS 255 >", response)

	response, ok = p.Handle("< GET 1 TX_BATT_MINS >")
	require.True(t, ok)
	assert.Equal(t, "< REP 1 TX_BATT_MINS 65535 >", response)

	p.device.mu.Lock()
	p.device.channel(1).Transmitter = &Transmitter{
		Model: "SLXD2", Connected: true, BatteryBars: 4, BatteryMinutes: 380,
	}
	p.device.mu.Unlock()

	response, _ = p.Handle("< GET 1 TX_MODEL >")
	assert.Equal(t, "< REP 1 TX_MODEL SLXD2 >", response)
	response, _ = p.Handle("< GET 1 TX_BATT_BARS >")
	assert.Equal(t, "< REP 1 TX_BATT_BARS 004 >", response)
	response, _ = p.Handle("< GET 1 TX_BATT_MINS >")
	assert.Equal(t, "< REP 1 TX_BATT_MINS 00380 >", response)
}

func TestDispatchSetAudioGain(t *testing.T) {
	p := newTestDispatcher(t)

	response, ok := p.Handle("< SET 1 AUDIO_GAIN 040 >")
	require.True(t, ok)
	assert.Equal(t, "< REP 1 AUDIO_GAIN 040 >", response)

	state, _ := p.device.ChannelState(1)
	assert.Equal(t, 40, state.AudioGainRaw)

	// out-of-range and malformed values stay silent and do not mutate
	for _, command := range []string{
		"< SET 1 AUDIO_GAIN 061 >",
		"< SET 1 AUDIO_GAIN -1 >",
		"< SET 1 AUDIO_GAIN loud >",
	} {
		_, ok := p.Handle(command)
		assert.False(t, ok, command)
	}
	state, _ = p.device.ChannelState(1)
	assert.Equal(t, 40, state.AudioGainRaw)
}

func TestDispatchSetCommands(t *testing.T) {
	p := newTestDispatcher(t)

	response, ok := p.Handle("< SET 1 AUDIO_OUT_LVL LINE >")
	require.True(t, ok)
	assert.Equal(t, "< REP 1 AUDIO_OUT_LVL LINE >", response)
	state, _ := p.device.ChannelState(1)
	assert.Equal(t, "LINE", state.AudioOutLevel)

	_, ok = p.Handle("< SET 1 AUDIO_OUT_LVL AUX >")
	assert.False(t, ok)

	response, ok = p.Handle("< SET LOCK_STATUS MENU >")
	require.True(t, ok)
	assert.Equal(t, "< REP LOCK_STATUS MENU >", response)

	_, ok = p.Handle("< SET LOCK_STATUS SHUT >")
	assert.False(t, ok)

	// names are truncated to 8 characters and echoed padded
	response, ok = p.Handle("< SET 2 CHAN_NAME VOCALIST99 >")
	require.True(t, ok)
	assert.Equal(t, "< REP 2 CHAN_NAME {VOCALIST                       } >", response)
	state, _ = p.device.ChannelState(2)
	assert.Equal(t, "VOCALIST", state.Name)

	response, ok = p.Handle("< SET FLASH ON >")
	require.True(t, ok)
	assert.Equal(t, "< REP FLASH ON >", response)

	response, ok = p.Handle("< SET 1 FLASH ON >")
	require.True(t, ok)
	assert.Equal(t, "< REP 1 FLASH ON >", response)

	response, ok = p.Handle("< SET 1 METER_RATE 00100 >")
	require.True(t, ok)
	assert.Equal(t, "< REP 1 METER_RATE 00100 >", response)
}

func TestGenerateSample(t *testing.T) {
	p := newTestDispatcher(t)

	p.device.mu.Lock()
	ch := p.device.channel(1)
	ch.AudioPeakRaw = 90
	ch.AudioRMSRaw = 60
	ch.RSSIA1Raw = 85
	ch.RSSIA2Raw = 75
	p.device.mu.Unlock()

	sample, ok := p.GenerateSample(1)
	require.True(t, ok)
	assert.Equal(t, "< SAMPLE 1 ALL 090 060 085 075 1 >", sample)

	// the dominant antenna follows the stronger raw RSSI, ties go to 1
	p.device.mu.Lock()
	ch.RSSIA2Raw = 95
	p.device.mu.Unlock()
	sample, _ = p.GenerateSample(1)
	assert.Equal(t, "< SAMPLE 1 ALL 090 060 085 095 2 >", sample)

	p.device.mu.Lock()
	ch.RSSIA2Raw = 85
	p.device.mu.Unlock()
	sample, _ = p.GenerateSample(1)
	assert.Equal(t, "< SAMPLE 1 ALL 090 060 085 085 1 >", sample)

	_, ok = p.GenerateSample(7)
	assert.False(t, ok)
}
