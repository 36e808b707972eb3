package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	CoreDatabaseURL string
	// CoreDBMaxConns caps the status-store pool. The engine is
	// single-threaded, so a handful of connections covers the panel API too.
	CoreDBMaxConns int32
	HTTPListenAddr string
	MetricsAddr    string
	LogLevel       string
	// WebRoot is the base directory under which per-user web space is created.
	WebRoot string
	// VhostConfDir receives rendered virtual host configuration files.
	VhostConfDir string
	MailRoot  string
	CertDir   string
	PluginDir string
	// SoftwareHelper is the external executable that installs/removes
	// software packages and instances, one process per task row.
	SoftwareHelper string
	// NetworkDevice is the default device for address reconciliation.
	NetworkDevice string
	ServiceName   string
}

func Load() (*Config, error) {
	cfg := &Config{
		CoreDatabaseURL: getEnv("CORE_DATABASE_URL", ""),
		CoreDBMaxConns:  getEnvInt32("CORE_DB_MAX_CONNS", 8),
		HTTPListenAddr:  getEnv("HTTP_LISTEN_ADDR", ":8090"),
		MetricsAddr:     getEnv("METRICS_LISTEN_ADDR", ":9310"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		WebRoot:         getEnv("WEB_ROOT", "/var/www/clients"),
		VhostConfDir:    getEnv("VHOST_CONF_DIR", "/etc/panelengine/vhosts"),
		MailRoot:        getEnv("MAIL_ROOT", "/var/mail/vhosts"),
		CertDir:         getEnv("CERT_DIR", "/etc/panelengine/certs"),
		PluginDir:       getEnv("PLUGIN_DIR", "/var/lib/panelengine/plugins"),
		SoftwareHelper:  getEnv("SOFTWARE_HELPER", "/usr/local/bin/panelengine-sw"),
		NetworkDevice:   getEnv("NETWORK_DEVICE", "eth0"),
		ServiceName:     getEnv("SERVICE_NAME", ""),
	}

	return cfg, nil
}

// Validate checks that the configuration required by the given component is
// present.
func (c *Config) Validate(component string) error {
	switch component {
	case "engine", "setup", "panel-api":
		if c.CoreDatabaseURL == "" {
			return fmt.Errorf("%s requires CORE_DATABASE_URL", component)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt32(key string, fallback int32) int32 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil && n > 0 {
			return int32(n)
		}
	}
	return fallback
}
