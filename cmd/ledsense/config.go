package main

// This file contains the configuration handling for the tool.  Values are
// taken from the built in defaults, an optional YAML file, LEDSENSE_*
// environment variables and finally any flags given on the command line, each
// overriding the previous source.

import (
	"flag"
	"os"
	"time"

	"github.com/go-stack/stack"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/TeamNorCal/ledsense/errors"
)

const envPrefix = "LEDSENSE"

// Config holds every setting the tool understands.
type Config struct {
	Verbose bool `yaml:"verbose" envconfig:"VERBOSE"`

	// Sensor
	Bus         string `yaml:"bus" envconfig:"BUS"`
	AddrBit     bool   `yaml:"addr_bit" envconfig:"ADDR_BIT"`
	Calibration string `yaml:"calibration" envconfig:"CALIBRATION"`

	// Strip
	Pixels     int     `yaml:"pixels" envconfig:"PIXELS"`
	Brightness float64 `yaml:"brightness" envconfig:"BRIGHTNESS"`
	Linearize  bool    `yaml:"linearize" envconfig:"LINEARIZE"`

	// Outputs
	OPC        string `yaml:"opc" envconfig:"OPC"`
	OPCChannel int    `yaml:"opc_channel" envconfig:"OPC_CHANNEL"`
	MQTT       string `yaml:"mqtt" envconfig:"MQTT"`
	MQTTTopic  string `yaml:"mqtt_topic" envconfig:"MQTT_TOPIC"`

	// Calibration storage, one of memory, file or redis
	Store       string `yaml:"store" envconfig:"STORE"`
	StoreDir    string `yaml:"store_dir" envconfig:"STORE_DIR"`
	Redis       string `yaml:"redis" envconfig:"REDIS"`
	RedisPrefix string `yaml:"redis_prefix" envconfig:"REDIS_PREFIX"`

	Interval time.Duration `yaml:"interval" envconfig:"INTERVAL"`
	Period   time.Duration `yaml:"period" envconfig:"PERIOD"`
}

func defaultConfig() (cfg *Config) {
	return &Config{
		Calibration: "default",
		Pixels:      8,
		Brightness:  100,
		Linearize:   true,
		MQTTTopic:   "ledsense/strip",
		Store:       "file",
		StoreDir:    ".",
		RedisPrefix: "ledsense:",
		Interval:    100 * time.Millisecond,
		Period:      5 * time.Second,
	}
}

func bindFlags(fs *flag.FlagSet, cfg *Config, configFile *string) {
	fs.StringVar(configFile, "config", "", "YAML file with default settings")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "When enabled will print internal logging for this tool")

	fs.StringVar(&cfg.Bus, "bus", cfg.Bus, "I2C bus name, empty selects the first bus found")
	fs.BoolVar(&cfg.AddrBit, "addr-bit", cfg.AddrBit, "The sensor address pin is high, selecting 0x43")
	fs.StringVar(&cfg.Calibration, "calibration", cfg.Calibration, "Identifier the calibration is saved and loaded under")

	fs.IntVar(&cfg.Pixels, "pixels", cfg.Pixels, "Number of pixels on the strip")
	fs.Float64Var(&cfg.Brightness, "brightness", cfg.Brightness, "Maximum strip brightness in percent")
	fs.BoolVar(&cfg.Linearize, "linearize", cfg.Linearize, "Apply gamma correction to the strip")

	fs.StringVar(&cfg.OPC, "opc", cfg.OPC, "host:port of an Open Pixel Control server driving the strip")
	fs.IntVar(&cfg.OPCChannel, "opc-channel", cfg.OPCChannel, "OPC channel of the strip")
	fs.StringVar(&cfg.MQTT, "mqtt", cfg.MQTT, "MQTT broker URL frames and readings are published to, for example tcp://localhost:1883")
	fs.StringVar(&cfg.MQTTTopic, "mqtt-topic", cfg.MQTTTopic, "MQTT topic for frames, readings use <topic>/reading")

	fs.StringVar(&cfg.Store, "store", cfg.Store, "Calibration store, one of memory, file or redis")
	fs.StringVar(&cfg.StoreDir, "store-dir", cfg.StoreDir, "Directory used by the file store")
	fs.StringVar(&cfg.Redis, "redis", cfg.Redis, "host:port of the redis server used by the redis store")
	fs.StringVar(&cfg.RedisPrefix, "redis-prefix", cfg.RedisPrefix, "Key prefix used by the redis store")

	fs.DurationVar(&cfg.Interval, "interval", cfg.Interval, "Sensor polling interval for watch, and frame interval for rainbow")
	fs.DurationVar(&cfg.Period, "period", cfg.Period, "Time for one rotation of the rainbow")
}

// loadConfig parses args against fs and layers the configuration sources.
func loadConfig(fs *flag.FlagSet, args []string) (cfg *Config, err errors.Error) {
	cfg = defaultConfig()
	configFile := ""
	bindFlags(fs, cfg, &configFile)

	if errGo := fs.Parse(args); errGo != nil {
		return nil, errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime())
	}

	// Remember the flags given explicitly so they can win over the file and
	// the environment
	explicit := map[string]string{}
	fs.Visit(func(f *flag.Flag) {
		explicit[f.Name] = f.Value.String()
	})

	if len(configFile) != 0 {
		data, errGo := os.ReadFile(configFile)
		if errGo != nil {
			return nil, errors.Wrap(errGo).With("file", configFile).With("stack", stack.Trace().TrimRuntime())
		}
		if errGo = yaml.UnmarshalStrict(data, cfg); errGo != nil {
			return nil, errors.Wrap(errGo).With("file", configFile).With("stack", stack.Trace().TrimRuntime())
		}
	}

	if errGo := envconfig.Process(envPrefix, cfg); errGo != nil {
		return nil, errors.Wrap(errGo).With("prefix", envPrefix).With("stack", stack.Trace().TrimRuntime())
	}

	for name, value := range explicit {
		if errGo := fs.Set(name, value); errGo != nil {
			return nil, errors.Wrap(errGo).With("flag", name).With("stack", stack.Trace().TrimRuntime())
		}
	}

	if cfg.Pixels < 0 {
		return nil, errors.New("pixel count cannot be negative").With("pixels", cfg.Pixels).With("stack", stack.Trace().TrimRuntime())
	}
	return cfg, nil
}
