package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jrsteele09/sales-dashboard/stores"
	fakestorerepo "github.com/jrsteele09/sales-dashboard/stores/repofake"
	"github.com/jrsteele09/sales-dashboard/users"
	fakeuserrepo "github.com/jrsteele09/sales-dashboard/users/repofake"
	"github.com/rs/zerolog/log"
)

// seedUser is a users.User row with its secret, which users.User never serialises.
type seedUser struct {
	users.User
	Secret string `json:"senha"`
}

type seedData struct {
	Users  []seedUser     `json:"usuarios"`
	Stores []stores.Store `json:"lojas"`
}

func loadSeed(path string, userRepo *fakeuserrepo.FakeUserRepo, storeRepo *fakestorerepo.FakeStoreRepo) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	var data seedData
	if err := json.Unmarshal(content, &data); err != nil {
		return fmt.Errorf("decode seed file: %w", err)
	}

	for _, s := range data.Stores {
		storeRepo.Upsert(s)
	}
	for _, u := range data.Users {
		user := u.User
		user.Secret = u.Secret
		if _, err := userRepo.Insert(user); err != nil {
			return fmt.Errorf("seed user %q: %w", user.Login, err)
		}
	}
	log.Info().Int("users", len(data.Users)).Int("stores", len(data.Stores)).Msg("Seed data loaded")
	return nil
}
