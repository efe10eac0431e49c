package mock

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config describes a standalone mock receiver process, as consumed by the
// mockserver command. All fields are optional; zero values fall back to the
// reference dual-channel receiver.
type Config struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Model    string `toml:"model"`
	DeviceID string `toml:"device_id"`
	Firmware string `toml:"firmware"`
	RFBand   string `toml:"rf_band"`

	Channels []ChannelConfig `toml:"channels"`
}

// ChannelConfig configures one channel of a mock receiver.
type ChannelConfig struct {
	Number         int    `toml:"number"`
	Name           string `toml:"name"`
	TxConnected    bool   `toml:"tx_connected"`
	TxModel        string `toml:"tx_model"`
	TxEncryption   bool   `toml:"tx_encryption"`
	BatteryBars    int    `toml:"battery_bars"`
	BatteryMinutes int    `toml:"battery_minutes"`
}

// LoadConfig reads a TOML config file and applies defaults.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("cannot load config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// DefaultConfig returns the configuration of the reference receiver.
func DefaultConfig() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	// Port 0 stays 0: bind an ephemeral port.
}

// BuildDevice constructs the emulated device described by this config.
func (c Config) BuildDevice() (*Device, error) {
	device, err := NewDevice(DeviceConfig{
		Model:           c.Model,
		DeviceID:        c.DeviceID,
		FirmwareVersion: c.Firmware,
		RFBand:          c.RFBand,
	})
	if err != nil {
		return nil, err
	}

	for _, chCfg := range c.Channels {
		channel := device.channel(chCfg.Number)
		if channel == nil {
			return nil, fmt.Errorf("%w: config for channel %d, device has %d channels",
				ErrInvalidState, chCfg.Number, len(device.Channels))
		}
		if chCfg.Name != "" {
			channel.Name = chCfg.Name
		}
		if chCfg.TxConnected {
			tx := &Transmitter{
				Model:          defaultString(chCfg.TxModel, "SLXD2"),
				Connected:      true,
				Encryption:     chCfg.TxEncryption,
				BatteryBars:    chCfg.BatteryBars,
				BatteryMinutes: chCfg.BatteryMinutes,
			}
			if err := validateTransmitter(tx); err != nil {
				return nil, fmt.Errorf("%w on channel %d", err, chCfg.Number)
			}
			channel.Transmitter = tx
			channel.RSSIA1Raw = 80
			channel.RSSIA2Raw = 75
		}
	}
	return device, nil
}

// ListenAddr returns the host:port string this config binds to.
func (c Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
