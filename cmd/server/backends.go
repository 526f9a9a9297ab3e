package main

import (
	"context"
	"fmt"

	"github.com/jrsteele09/sales-dashboard/internal/config"
	"github.com/jrsteele09/sales-dashboard/internal/database"
	"github.com/jrsteele09/sales-dashboard/server"
	"github.com/jrsteele09/sales-dashboard/storage"
	storepostgres "github.com/jrsteele09/sales-dashboard/stores/postgres"
	fakestorerepo "github.com/jrsteele09/sales-dashboard/stores/repofake"
	userpostgres "github.com/jrsteele09/sales-dashboard/users/postgres"
	fakeuserrepo "github.com/jrsteele09/sales-dashboard/users/repofake"
	"github.com/rs/zerolog/log"
)

// openBackends selects the credential and store tables and the session slot
// backend from config. The returned func releases connections.
func openBackends(ctx context.Context, c config.Config) (server.Repos, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var repos server.Repos
	if url := c.GetDatabaseURL(); url != "" {
		pool, err := database.Connect(ctx, database.NewConfig(url))
		if err != nil {
			return server.Repos{}, nil, err
		}
		closers = append(closers, pool.Close)
		repos.Users = userpostgres.NewUserRepository(pool)
		repos.Stores = storepostgres.NewStoreRepository(pool)
	} else {
		userRepo := fakeuserrepo.NewFakeUserRepo()
		storeRepo := fakestorerepo.NewFakeStoreRepo()
		if seedFile := c.GetSeedFile(); seedFile != "" {
			if err := loadSeed(seedFile, userRepo, storeRepo); err != nil {
				return server.Repos{}, nil, err
			}
		}
		log.Warn().Msg("DATABASE_URL not set, using in-memory users and stores")
		repos.Users = userRepo
		repos.Stores = storeRepo
	}

	switch backend := c.GetStorageBackend(); backend {
	case config.StorageBackendMemory:
		repos.Slots = storage.NewMemoryFactory()
	case config.StorageBackendFile:
		factory, err := storage.NewFileFactory(c.GetDataFolder())
		if err != nil {
			closeAll()
			return server.Repos{}, nil, err
		}
		repos.Slots = factory
	case config.StorageBackendRedis:
		client, err := storage.ConnectRedis(ctx, c.GetRedisAddr(), c.GetRedisPassword(), c.GetRedisDB())
		if err != nil {
			closeAll()
			return server.Repos{}, nil, err
		}
		closers = append(closers, func() { _ = client.Close() })
		repos.Slots = storage.NewRedisFactory(client, c.GetRedisKeyPrefix())
	default:
		closeAll()
		return server.Repos{}, nil, fmt.Errorf("unknown storage backend %q", backend)
	}
	log.Info().Str("storage", c.GetStorageBackend()).Msg("Session storage ready")

	return repos, closeAll, nil
}
