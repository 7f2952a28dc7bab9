package jetson

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/creasty/defaults"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// Config holds the paths and tunables of the installer. All steps receive
// their configuration through this object, there are no environment
// variables or global flag files.
type Config struct {
	// StatePath is the location of the run state record.
	StatePath string `yaml:"state_path" default:"/var/lib/jetson-install/state.json"`
	// LogPath is the file the progress log is appended to. The log survives
	// reboots so failures can be diagnosed across the boot boundary.
	LogPath string `yaml:"log_path" default:"/var/log/jetson-install.log"`
	// DownloadDir is where fetched archives and wheels are kept.
	DownloadDir string `yaml:"download_dir" default:"/var/cache/jetson-install"`
	// ExecPath is the installer binary the resume trigger invokes. Resolved
	// from the running executable when empty.
	ExecPath string `yaml:"exec_path"`
	// DownloadRetries is the number of attempts a download gets.
	DownloadRetries int `yaml:"download_retries" default:"3"`
	// Source is the absolute path of the file this configuration was loaded
	// from, empty when running on defaults. The resume trigger forwards it
	// so the post-reboot invocation reads the same configuration.
	Source string `yaml:"-"`
}

// DefaultConfig returns a Config with the default values applied.
func DefaultConfig() (*Config, error) {
	c := &Config{}
	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("apply config defaults: %w", err)
	}
	if err := c.resolve(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadConfig reads a YAML config file and applies defaults for any fields
// it leaves out.
func LoadConfig(path string) (*Config, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand config path: %w", err)
	}
	source, err := filepath.Abs(expanded)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c := &Config{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("apply config defaults: %w", err)
	}
	c.Source = source
	if err := c.resolve(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) resolve() error {
	for _, p := range []*string{&c.StatePath, &c.LogPath, &c.DownloadDir, &c.ExecPath} {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expand path %q: %w", *p, err)
		}
		*p = expanded
	}
	if c.ExecPath == "" {
		executable, err := os.Executable()
		if err != nil {
			return fmt.Errorf("resolve executable path: %w", err)
		}
		c.ExecPath = executable
	}
	return nil
}
