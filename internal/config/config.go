package config

import "time"

type Config interface {
	EnvConfig
	StorageConfig
	DatabaseConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetBaseURL() string
}

type StorageConfig interface {
	GetStorageBackend() string
	GetDataFolder() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisKeyPrefix() string
}

type DatabaseConfig interface {
	GetDatabaseURL() string
	GetSeedFile() string
}

type SecurityConfig interface {
	GetCookieSecret() []byte
	GetClientCookieLifetime() time.Duration
	GetAllowLegacyPlaintext() bool
	GetRehashLegacyOnLogin() bool
	GetBcryptCost() int
	GetMinPasswordLength() int
}

type mainConfig struct {
	EnvVars
	Storage
	Database
	Security
}

func New() Config {
	return mainConfig{}
}
