package util

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

const Name = "crema"
const ConfigFileName = "config.yaml"

//go:embed config_default.yaml
var embeddedConfig []byte

type AppConfig struct {
	Conf struct {
		Host      string
		SshPort   int    `yaml:"sshPort"`
		HttpPort  int    `yaml:"httpPort"`
		WithWeb   bool   `yaml:"withWeb"`
		Fixtures  bool   `yaml:"fixtures"`
		Database  string `yaml:"database"`
		Sessions  string `yaml:"sessions"`
		PublicUrl string `yaml:"publicUrl"`
	}
}

// ReadConf loads the configuration from path, or from the resolved
// config.yaml when path is empty, and applies CREMA_* overrides.
func ReadConf(path string) (*AppConfig, error) {
	c := &AppConfig{}

	explicit := path != ""
	if !explicit {
		path = ResolveFilePath(ConfigFileName)
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		if explicit {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		log.Info("config file not found, using embedded defaults", "path", path)
		buf = embeddedConfig
		writeDefaultConf()
	}

	if err := yaml.Unmarshal(buf, c); err != nil {
		return nil, fmt.Errorf("in config file: %w", err)
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	return c, nil
}

func writeDefaultConf() {
	configDir, err := GetConfigDir()
	if err != nil {
		return
	}
	userConfigPath := filepath.Join(configDir, ConfigFileName)
	if _, err := os.Stat(userConfigPath); err == nil {
		return
	}
	if err := os.WriteFile(userConfigPath, embeddedConfig, 0644); err != nil {
		log.Warn("could not write default config", "path", userConfigPath, "err", err)
		return
	}
	log.Info("created default config file", "path", userConfigPath)
}

func (c *AppConfig) applyEnv() error {
	if v := os.Getenv("CREMA_HOST"); v != "" {
		c.Conf.Host = v
	}
	if v := os.Getenv("CREMA_SSHPORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CREMA_SSHPORT: %w", err)
		}
		c.Conf.SshPort = port
	}
	if v := os.Getenv("CREMA_HTTPPORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CREMA_HTTPPORT: %w", err)
		}
		c.Conf.HttpPort = port
	}
	if v := os.Getenv("CREMA_DATABASE"); v != "" {
		c.Conf.Database = v
	}
	if v := os.Getenv("CREMA_SESSIONS"); v != "" {
		c.Conf.Sessions = v
	}
	if v := os.Getenv("CREMA_PUBLIC_URL"); v != "" {
		c.Conf.PublicUrl = v
	}
	if os.Getenv("CREMA_WITH_WEB") == "true" {
		c.Conf.WithWeb = true
	}
	if os.Getenv("CREMA_FIXTURES") == "true" {
		c.Conf.Fixtures = true
	}
	return nil
}
