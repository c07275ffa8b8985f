package config

import "time"

// Config is the YAML configuration for the gofsk binary.
type Config struct {
	App        string  `yaml:"app"` // sendfsk, receivefsk or loopback
	Message    string  `yaml:"message"`
	Variable   string  `yaml:"variable"`
	Options    string  `yaml:"options"` // receive flags: 'h', 's'
	Modem      string  `yaml:"modem"`   // preset name, default bell103-ch2
	SampleRate int     `yaml:"sample_rate"`
	BlockLen   int     `yaml:"block_len"`
	Capacity   int     `yaml:"capacity"` // receive buffer, bytes
	Channel    Channel `yaml:"channel"`
	Monitor    struct {
		Port int `yaml:"port"`
	} `yaml:"monitor"`
	InfluxDB struct {
		Host         string `yaml:"host"`
		Organization string `yaml:"organization"`
		Bucket       string `yaml:"bucket"`
	} `yaml:"influxdb"`
}

// Channel picks the audio transport and its settings.
type Channel struct {
	Kind      string        `yaml:"kind"` // file or udp; the loopback app needs none
	ReadPath  string        `yaml:"read_path"`
	WritePath string        `yaml:"write_path"`
	Listen    string        `yaml:"listen"`
	Peer      string        `yaml:"peer"`
	Tick      time.Duration `yaml:"tick"`
}
