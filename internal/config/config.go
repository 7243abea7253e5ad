package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/delta10/gibs-fetcher/internal/utils"
)

const DefaultBaseURL = "https://gibs.earthdata.nasa.gov/wms/epsg4326/best/wms.cgi"

type GetMap struct {
	Version string `yaml:"version"`
	Format  string `yaml:"format"`
	Style   string `yaml:"style"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
}

type Output struct {
	JSON     string `yaml:"json"`
	TSV      string `yaml:"tsv"`
	ImageDir string `yaml:"imageDir"`
}

type Config struct {
	BaseURL           string        `yaml:"baseUrl"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	GetMap            GetMap        `yaml:"getMap"`
	Output            Output        `yaml:"output"`
	Rewrite           string        `yaml:"rewrite"`
	ListenAddress     string        `yaml:"listenAddress"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
		Timeout: 60 * time.Second,
		GetMap: GetMap{
			Version: "1.3.0",
			Format:  "image/png",
			Style:   "default",
			Width:   1000,
			Height:  1000,
		},
		Output: Output{
			JSON:     "output.json",
			TSV:      "output.tsv",
			ImageDir: "images",
		},
		ListenAddress: "localhost:8080",
	}
}

// NewConfig returns a new decoded Config struct. A missing file yields the
// defaults; keys present in the file override them.
func NewConfig(configPath string) (*Config, error) {
	config := Default()

	file, err := os.Open(configPath)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not open config")
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(config); err != nil {
		return nil, errors.Wrapf(err, "could not decode %s", configPath)
	}

	config.expand()

	return config, config.Validate()
}

func (c *Config) expand() {
	c.BaseURL = utils.EnvSubst(c.BaseURL)
	c.Output.JSON = utils.EnvSubst(c.Output.JSON)
	c.Output.TSV = utils.EnvSubst(c.Output.TSV)
	c.Output.ImageDir = utils.EnvSubst(c.Output.ImageDir)
	c.ListenAddress = utils.EnvSubst(c.ListenAddress)
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return errors.New("baseUrl must be set")
	case c.Timeout <= 0:
		return errors.Errorf("timeout must be positive, got %s", c.Timeout)
	case c.RequestsPerSecond < 0:
		return errors.Errorf("requestsPerSecond must not be negative, got %v", c.RequestsPerSecond)
	case c.GetMap.Width <= 0 || c.GetMap.Height <= 0:
		return errors.Errorf("getMap size must be positive, got %dx%d", c.GetMap.Width, c.GetMap.Height)
	case c.Output.JSON == "" || c.Output.TSV == "" || c.Output.ImageDir == "":
		return errors.New("output paths must be set")
	}
	return nil
}
