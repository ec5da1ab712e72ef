package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Credential is a username/password pair for one external service.
type Credential struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Credentials maps a service id to its credential.
type Credentials map[string]Credential

var ErrNoCredentials = errors.New("credentials not configured")

/**
 * Load the credentials file
 * @param {string} path - YAML file, relative paths resolve against the config file directory
 * @param {string} baseDir - Directory of the main config file
 * @returns {Credentials} Returns the decoded credentials
 * @returns {error} Returns ErrNoCredentials when the file does not exist
 */
func LoadCredentials(path, baseDir string) (Credentials, error) {
	if path == "" {
		return nil, ErrNoCredentials
	}
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, ErrNoCredentials
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("credentials: read %s: %w", path, err)
	}
	creds := Credentials{}
	if err := v.Unmarshal(&creds); err != nil {
		return nil, fmt.Errorf("credentials: decode %s: %w", path, err)
	}
	return creds, nil
}

// Lookup returns the credential for a service, ErrNoCredentials when absent or empty.
func (c Credentials) Lookup(service string) (Credential, error) {
	cred, ok := c[service]
	if !ok || cred.Username == "" {
		return Credential{}, ErrNoCredentials
	}
	return cred, nil
}
