package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/analogtools/gmsweep/internal/domain/sweep"
)

// DeviceConfig describes one MOSFET model to characterize.
type DeviceConfig struct {
	Name string `yaml:"name"` // model/subcircuit name, e.g. sg13_lv_nmos
	// Instance is the spice instance name of the device under test and
	// Symbol the internal mosfet path used in output markers, e.g.
	// ("x1", "n.x1.nsg13_lv_nmos") for subcircuit models.
	Instance string  `yaml:"instance"`
	Symbol   string  `yaml:"symbol"`
	Width    float64 `yaml:"width"`
	NG       int     `yaml:"ng"`
	M        int     `yaml:"m"`

	Axes struct {
		Length sweep.AxisSpec `yaml:"length"`
		VGS    sweep.AxisSpec `yaml:"vgs"`
		VDS    sweep.AxisSpec `yaml:"vds"`
		VBS    sweep.AxisSpec `yaml:"vbs"`
	} `yaml:"axes"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"` // 0 disables the status server
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres | "" (disabled)
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Simulator struct {
		Path        string  `yaml:"path"`        // ngspice binary, default "ngspice"
		Temperature float64 `yaml:"temperature"` // celsius
	} `yaml:"simulator"`

	PDK struct {
		Root      string `yaml:"root"`      // falls back to $PDK_ROOT
		CornerLib string `yaml:"cornerLib"` // path relative to root
		Section   string `yaml:"section"`   // .lib section, e.g. mos_tt
	} `yaml:"pdk"`

	Sweep struct {
		OutputDir      string `yaml:"outputDir"`
		Workers        int    `yaml:"workers"`
		TimeoutSeconds int    `yaml:"timeoutSeconds"`
		Retries        int    `yaml:"retries"`
	} `yaml:"sweep"`

	Devices []DeviceConfig `yaml:"devices"`
}

// Load reads and validates the yaml config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if len(cfg.Devices) == 0 {
		return nil, fmt.Errorf("config: no devices configured")
	}
	for _, d := range cfg.Devices {
		if d.Name == "" {
			return nil, fmt.Errorf("config: device with empty name")
		}
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Simulator.Path == "" {
		c.Simulator.Path = "ngspice"
	}
	if c.Simulator.Temperature == 0 {
		c.Simulator.Temperature = 27
	}
	if c.PDK.Root == "" {
		c.PDK.Root = os.Getenv("PDK_ROOT")
	}
	if c.PDK.Section == "" {
		c.PDK.Section = "mos_tt"
	}
	if c.Sweep.OutputDir == "" {
		c.Sweep.OutputDir = "data"
	}
	if c.Sweep.Workers <= 0 {
		c.Sweep.Workers = DefaultWorkers()
	}
	if c.Sweep.TimeoutSeconds <= 0 {
		c.Sweep.TimeoutSeconds = 120
	}
	for i := range c.Devices {
		d := &c.Devices[i]
		if d.Instance == "" {
			d.Instance = "x1"
		}
		if d.Width == 0 {
			d.Width = 10e-6
		}
		if d.NG == 0 {
			d.NG = 1
		}
		if d.M == 0 {
			d.M = 1
		}
	}
}

// JobTimeout returns the per-job deadline.
func (c *Config) JobTimeout() time.Duration {
	return time.Duration(c.Sweep.TimeoutSeconds) * time.Second
}

// DefaultWorkers caps parallelism so simulator processes do not
// oversubscribe the host.
func DefaultWorkers() int {
	n := runtime.GOMAXPROCS(0)
	if n > 4 {
		n = 4
	}
	return n
}

// MySQLDSN builds the DSN for the mysql driver.
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds the DSN for lib/pq.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}
