package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/domain"
)

type Config struct {
	Public  Public
	private Private
}

type Public struct {
	Port                   string   `yaml:"port"`
	LogLevel               string   `yaml:"log_level"`
	LogJSON                bool     `yaml:"log_json"`
	AllowedOrigins         []string `yaml:"allowed_origins"`
	SecureCookies          bool     `yaml:"secure_cookies"` // enables HSTS header
	IdentityBaseURL        string   `yaml:"identity_base_url"`
	NextcloudBaseURL       string   `yaml:"nextcloud_base_url"`
	RequiredDepartment     string   `yaml:"required_department"` // department whose members may register
	UpstreamTimeoutSeconds int      `yaml:"upstream_timeout_seconds"`
}

type Private struct {
	NextcloudAdminUser     string `yaml:"nextcloud_admin_user"`
	NextcloudAdminPassword string `yaml:"nextcloud_admin_password"`
}

func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.Public.UpstreamTimeoutSeconds) * time.Second
}

func (c *Config) NextcloudAdminUser() string {
	return c.private.NextcloudAdminUser
}

func (c *Config) NextcloudAdminPassword() domain.Secret {
	return domain.Secret(c.private.NextcloudAdminPassword)
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}
	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file")
	}
}

// MustLoad reads public.yaml and private.yaml from configFolder.
// The admin credential can also come from the environment
// (NEXTCLOUD_ADMIN_USER / NEXTCLOUD_ADMIN_PASSWORD), in which case
// private.yaml may be absent.
func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)
	applyPublicDefaults(&public)

	var private Private
	privatePath := path.Join(configFolder, "private.yaml")
	if _, err := os.Stat(privatePath); err == nil {
		mustLoadPath(privatePath, &private)
	}
	if v := os.Getenv("NEXTCLOUD_ADMIN_USER"); v != "" {
		private.NextcloudAdminUser = v
	}
	if v := os.Getenv("NEXTCLOUD_ADMIN_PASSWORD"); v != "" {
		private.NextcloudAdminPassword = v
	}

	cfg := &Config{public, private}
	mustValidate(cfg)
	return cfg
}

func applyPublicDefaults(p *Public) {
	if p.Port == "" {
		p.Port = "8080"
	}
	if p.LogLevel == "" {
		p.LogLevel = "info"
	}
	if p.RequiredDepartment == "" {
		p.RequiredDepartment = "IWI"
	}
	if p.UpstreamTimeoutSeconds == 0 {
		p.UpstreamTimeoutSeconds = 10
	}
}

func mustValidate(c *Config) {
	if c.Public.IdentityBaseURL == "" {
		panic("config: identity_base_url is required")
	}
	if c.Public.NextcloudBaseURL == "" {
		panic("config: nextcloud_base_url is required")
	}
	if c.private.NextcloudAdminUser == "" || c.private.NextcloudAdminPassword == "" {
		panic("config: nextcloud admin credential is required (private.yaml or environment)")
	}
}
