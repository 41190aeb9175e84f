package bridge

import (
	"errors"

	"github.com/spf13/viper"
)

// Config is the bridge runtime configuration, read from a config file
// with LYRA_-prefixed environment overrides.
type Config struct {
	// Port the websocket server listens on.
	Port int `mapstructure:"port"`
	// Advertise the bridge over mDNS.
	Advertise bool `mapstructure:"advertise"`
	// InstanceName is the mDNS instance name.
	InstanceName string `mapstructure:"instance_name"`
	// Secure is advertised to clients so they pick the right scheme.
	Secure bool `mapstructure:"secure"`
	// Players lists the MPRIS short names the bridge controls,
	// e.g. "spotify", "vlc".
	Players []string `mapstructure:"players"`
}

// LoadConfig reads the bridge config. An empty path falls back to
// lyra-bridge.yaml in the working directory or ~/.config/lyra; a
// missing default file just yields the defaults.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("port", 8000)
	v.SetDefault("advertise", true)
	v.SetDefault("instance_name", "Lyra Bridge")
	v.SetDefault("secure", true)
	v.SetDefault("players", []string{})

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("lyra-bridge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/lyra")
	}
	v.SetEnvPrefix("LYRA")
	v.AutomaticEnv()

	if readErr := v.ReadInConfig(); readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(readErr, &notFound) {
			return nil, readErr
		}
	}

	var cfg Config
	if unmarshalErr := v.Unmarshal(&cfg); unmarshalErr != nil {
		return nil, unmarshalErr
	}
	return &cfg, nil
}
