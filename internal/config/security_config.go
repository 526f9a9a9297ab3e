package config

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Security struct{}

var _ SecurityConfig = Security{}

// GetCookieSecret signs the client identity cookie
func (Security) GetCookieSecret() []byte {
	return []byte(GetEnv("COOKIE_SECRET", "change-me-dev-only"))
}

func (Security) GetClientCookieLifetime() time.Duration {
	return 30 * 24 * time.Hour
}

// GetAllowLegacyPlaintext keeps the plaintext comparison for rows whose secret is not a bcrypt hash
func (Security) GetAllowLegacyPlaintext() bool {
	return GetEnvBool("ALLOW_LEGACY_PLAINTEXT", true)
}

// GetRehashLegacyOnLogin rewrites plaintext secrets as bcrypt after a successful login
func (Security) GetRehashLegacyOnLogin() bool {
	return GetEnvBool("REHASH_LEGACY_ON_LOGIN", false)
}

func (Security) GetBcryptCost() int {
	return GetEnvInt("BCRYPT_COST", bcrypt.DefaultCost)
}

func (Security) GetMinPasswordLength() int {
	return 6
}
