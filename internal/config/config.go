// Package config loads and validates the bridge's YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the raw YAML shape.
type Config struct {
	Device struct {
		ID    string `yaml:"id"`
		Type  string `yaml:"type"`
		Model string `yaml:"model"`
	} `yaml:"device"`

	Modbus struct {
		Port        string  `yaml:"port"`
		BaudRate    int     `yaml:"baud_rate"`
		SlaveID     uint8   `yaml:"slave_id"`
		TimeoutS    float64 `yaml:"timeout_s"`
		RetryCount  int     `yaml:"retry_count"`
		RetryDelayS float64 `yaml:"retry_delay_s"`
	} `yaml:"modbus"`

	MQTT struct {
		Broker      string `yaml:"broker"`
		ClientID    string `yaml:"client_id"`
		Username    string `yaml:"username"`
		Password    string `yaml:"password"`
		QoS         byte   `yaml:"qos"`
		KeepaliveS  int    `yaml:"keepalive_s"`
		TopicPrefix string `yaml:"topic_prefix"`
	} `yaml:"mqtt"`

	DataCollectionIntervalS int `yaml:"data_collection_interval_s"`
	HealthCheckIntervalS    int `yaml:"health_check_interval_s"`
	MaxConsecutiveFailures  int `yaml:"max_consecutive_failures"`
	MaxQueueSize            int `yaml:"max_queue_size"`
	CommandTimeoutS         int `yaml:"command_timeout_s"`
}

// LoadedConfig is Config plus the parsed durations derived from it: the
// raw YAML struct embedded, derived fields computed once at load time.
type LoadedConfig struct {
	Config

	ModbusTimeout          time.Duration
	ModbusRetryDelay       time.Duration
	DataCollectionInterval time.Duration
	HealthCheckInterval    time.Duration
	MQTTKeepalive          time.Duration
}

// Load reads and validates the YAML file at path.
func Load(path string) (*LoadedConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg LoadedConfig
	if err := yaml.Unmarshal(b, &cfg.Config); err != nil {
		return nil, err
	}

	if err := parseConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// parseConfig fills in defaults and derives durations.
func parseConfig(cfg *LoadedConfig) error {
	if cfg.Device.ID == "" {
		cfg.Device.ID = "inverter-001"
	}
	if cfg.Device.Type == "" {
		cfg.Device.Type = "inverter"
	}

	if cfg.Modbus.Port == "" {
		cfg.Modbus.Port = "/dev/ttyUSB0"
	}
	if cfg.Modbus.BaudRate == 0 {
		cfg.Modbus.BaudRate = 9600
	}
	if cfg.Modbus.SlaveID == 0 {
		cfg.Modbus.SlaveID = 1
	}
	if cfg.Modbus.TimeoutS == 0 {
		cfg.Modbus.TimeoutS = 3
	}
	if cfg.Modbus.RetryCount == 0 {
		cfg.Modbus.RetryCount = 3
	}
	if cfg.Modbus.RetryDelayS == 0 {
		cfg.Modbus.RetryDelayS = 1.0
	}
	cfg.ModbusTimeout = time.Duration(cfg.Modbus.TimeoutS * float64(time.Second))
	cfg.ModbusRetryDelay = time.Duration(cfg.Modbus.RetryDelayS * float64(time.Second))

	if cfg.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required")
	}
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "edge-bridge"
	}
	if cfg.MQTT.QoS == 0 {
		cfg.MQTT.QoS = 1
	}
	if cfg.MQTT.KeepaliveS == 0 {
		cfg.MQTT.KeepaliveS = 60
	}
	cfg.MQTTKeepalive = time.Duration(cfg.MQTT.KeepaliveS) * time.Second
	if cfg.MQTT.TopicPrefix == "" {
		cfg.MQTT.TopicPrefix = "nattery"
	}

	if cfg.DataCollectionIntervalS == 0 {
		cfg.DataCollectionIntervalS = 5
	}
	cfg.DataCollectionInterval = time.Duration(cfg.DataCollectionIntervalS) * time.Second

	if cfg.HealthCheckIntervalS == 0 {
		cfg.HealthCheckIntervalS = 30
	}
	cfg.HealthCheckInterval = time.Duration(cfg.HealthCheckIntervalS) * time.Second

	if cfg.MaxConsecutiveFailures == 0 {
		cfg.MaxConsecutiveFailures = 5
	}
	if cfg.MaxQueueSize == 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.CommandTimeoutS == 0 {
		cfg.CommandTimeoutS = 30
	}

	return nil
}
