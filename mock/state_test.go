package mock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeviceDefaults(t *testing.T) {
	device, err := NewDevice(DeviceConfig{})
	require.NoError(t, err)

	assert.Equal(t, "SLXD4D", device.Model)
	assert.Equal(t, "2C2A3F01", device.DeviceID)
	assert.Equal(t, "2.0.15.2", device.FirmwareVersion)
	assert.Equal(t, "G55", device.RFBand)
	assert.Equal(t, "OFF", device.LockStatus)
	require.Equal(t, 2, device.ChannelCount())

	ch1, ok := device.ChannelState(1)
	require.True(t, ok)
	assert.Equal(t, "CH 1", ch1.Name)
	assert.Equal(t, 578350, ch1.FrequencyKHz)
	assert.Equal(t, "1,1", ch1.GroupChannel)
	assert.Equal(t, 18, ch1.AudioGainRaw) // 0 dB
	assert.Equal(t, "MIC", ch1.AudioOutLevel)
	assert.Nil(t, ch1.Transmitter)

	ch2, ok := device.ChannelState(2)
	require.True(t, ok)
	assert.Equal(t, 578600, ch2.FrequencyKHz)
}

func TestNewDeviceChannelCountFromModel(t *testing.T) {
	tt := []struct {
		model    string
		expected int
	}{
		{"SLXD4", 1},
		{"SLXD4D", 2},
		{"SLXD4Q+", 4},
	}
	for _, tc := range tt {
		t.Run(tc.model, func(t *testing.T) {
			device, err := NewDevice(DeviceConfig{Model: tc.model})
			require.NoError(t, err)
			assert.Equal(t, tc.expected, device.ChannelCount())
		})
	}
}

func TestNewDeviceValidation(t *testing.T) {
	tt := []struct {
		desc string
		cfg  DeviceConfig
	}{
		{"invalid lock status", DeviceConfig{LockStatus: "LOCKED"}},
		{"channel number out of range", DeviceConfig{Channels: []*Channel{{Number: 5}}}},
		{"channel number zero", DeviceConfig{Channels: []*Channel{{Number: 0}}}},
		{"gain out of range", DeviceConfig{Channels: []*Channel{{Number: 1, AudioGainRaw: 61}}}},
		{"meter value out of range", DeviceConfig{Channels: []*Channel{{Number: 1, RSSIA1Raw: 121}}}},
		{"invalid out level", DeviceConfig{Channels: []*Channel{{Number: 1, AudioOutLevel: "AUX"}}}},
		{"invalid transmitter model", DeviceConfig{Channels: []*Channel{
			{Number: 1, Transmitter: &Transmitter{Model: "ULXD2"}},
		}}},
		{"invalid battery bars", DeviceConfig{Channels: []*Channel{
			{Number: 1, Transmitter: &Transmitter{Model: "SLXD2", BatteryBars: 6}},
		}}},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := NewDevice(tc.cfg)
			assert.ErrorIs(t, err, ErrInvalidState)
		})
	}
}

func TestChannelStateReturnsCopy(t *testing.T) {
	device, err := NewDevice(DeviceConfig{})
	require.NoError(t, err)

	state, ok := device.ChannelState(1)
	require.True(t, ok)
	state.AudioGainRaw = 42

	again, _ := device.ChannelState(1)
	assert.Equal(t, 18, again.AudioGainRaw)

	_, ok = device.ChannelState(3)
	assert.False(t, ok)
}
