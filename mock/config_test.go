package mock

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mock.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
model = "SLXD4Q+"
device_id = "STAGE001"
rf_band = "H55"
port = 2202

[[channels]]
number = 1
name = "VOCALS"
tx_connected = true
tx_model = "SLXD2"
tx_encryption = true
battery_bars = 4
battery_minutes = 380

[[channels]]
number = 3
name = "GUITAR"
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 2202, cfg.Port)
	assert.Equal(t, "127.0.0.1:2202", cfg.ListenAddr())

	device, err := cfg.BuildDevice()
	require.NoError(t, err)
	assert.Equal(t, "SLXD4Q+", device.Model)
	assert.Equal(t, "STAGE001", device.DeviceID)
	assert.Equal(t, "H55", device.RFBand)
	require.Equal(t, 4, device.ChannelCount())

	ch1, _ := device.ChannelState(1)
	assert.Equal(t, "VOCALS", ch1.Name)
	require.NotNil(t, ch1.Transmitter)
	assert.Equal(t, "SLXD2", ch1.Transmitter.Model)
	assert.True(t, ch1.Transmitter.Encryption)
	assert.Equal(t, 4, ch1.Transmitter.BatteryBars)
	assert.Equal(t, 80, ch1.RSSIA1Raw)

	ch3, _ := device.ChannelState(3)
	assert.Equal(t, "GUITAR", ch3.Name)
	assert.Nil(t, ch3.Transmitter)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestBuildDeviceRejectsUnknownChannel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Channels = []ChannelConfig{{Number: 3, Name: "X"}}
	_, err := cfg.BuildDevice()
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestBuildDeviceRejectsInvalidTransmitter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Channels = []ChannelConfig{{Number: 1, TxConnected: true, TxModel: "ULXD2"}}
	_, err := cfg.BuildDevice()
	assert.ErrorIs(t, err, ErrInvalidState)
}
