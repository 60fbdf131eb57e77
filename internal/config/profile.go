package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Profile is the optional portalctl configuration file
// (~/.config/portalctl/config.yaml). Environment variables take precedence
// over profile values.
type Profile struct {
	BaseURL string `yaml:"base_url"`
	Portal  string `yaml:"portal"`
	DataDir string `yaml:"data_dir"`
}

// DefaultProfilePath returns the conventional profile location under the
// user's config directory.
func DefaultProfilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "[DefaultProfilePath] os.UserConfigDir")
	}
	return filepath.Join(dir, "portalctl", "config.yaml"), nil
}

// LoadProfile reads the profile at path. A missing file is not an error;
// an empty Profile is returned so env vars and defaults apply.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Profile{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[LoadProfile] os.ReadFile")
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(err, "[LoadProfile] yaml.Unmarshal")
	}
	return &p, nil
}

// Resolve merges the profile with environment variables, env winning.
func (p *Profile) Resolve() (baseURL string, kind PortalKind, dataDir string) {
	baseURL = GetEnv(baseURLVar, p.BaseURL)
	if baseURL == "" {
		baseURL = EnvVars{}.GetAPIBaseURL()
	}
	kindStr := GetEnv(portalKindVar, p.Portal)
	switch kindStr {
	case string(PortalCentralBank):
		kind = PortalCentralBank
	case string(PortalCustomer):
		kind = PortalCustomer
	default:
		kind = PortalBranch
	}
	dataDir = GetEnv(folderEnvVar, p.DataDir)
	if dataDir == "" {
		dataDir = EnvVars{}.GetDataFolder()
	}
	return baseURL, kind, dataDir
}
