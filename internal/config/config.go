package config

type Config interface {
	EnvConfig
	ClientConfig
	PortalConfig
}

type mainConfig struct {
	EnvVars
	Client
	Portal
}

func New() Config {
	return mainConfig{}
}
