package events

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the sink and retry configuration, usually loaded from the file
// named by the CF_EVENTS_CONFIG environment variable.
type Config struct {
	Sinks struct {
		Webhook WebhookConfig `yaml:"webhook"`
		Redis   RedisConfig   `yaml:"redis"`
	} `yaml:"sinks"`
	Retry RetryConfig `yaml:"retry"`
}

// LoadConfig reads YAML from path. An empty path yields the zero config,
// which disables every sink.
func LoadConfig(path string) (Config, error) {
	var c Config
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	err = yaml.Unmarshal(data, &c)
	return c, err
}
