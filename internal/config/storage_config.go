package config

const (
	StorageBackendMemory = "memory"
	StorageBackendFile   = "file"
	StorageBackendRedis  = "redis"
)

type Storage struct{}

var _ StorageConfig = Storage{}

// GetStorageBackend selects where client session slots are kept: memory, file or redis
func (Storage) GetStorageBackend() string {
	return GetEnv("STORAGE_BACKEND", StorageBackendFile)
}

func (Storage) GetDataFolder() string {
	return GetEnv("FOLDER", "./data")
}

func (Storage) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Storage) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Storage) GetRedisDB() int {
	return GetEnvInt("REDIS_DB", 0)
}

func (Storage) GetRedisKeyPrefix() string {
	return GetEnv("REDIS_KEY_PREFIX", "dashboard")
}
