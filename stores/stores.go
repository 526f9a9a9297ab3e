package stores

import (
	"context"
	"sort"
	"strconv"
	"strings"
)

// Headquarters rows that never appear in store pickers.
const (
	HeadquartersNumber = "00"
	HeadquartersID     = 99
)

// Store is a row of the lojas table.
type Store struct {
	ID     int     `json:"id"`
	Number string  `json:"numero"`
	Name   string  `json:"nome"`
	Region *string `json:"regiao,omitempty"`
}

// Repo is the store table accessor. Get returns an error wrapping errors.ErrNotFound.
type Repo interface {
	List(ctx context.Context) ([]*Store, error)
	Get(ctx context.Context, id int) (*Store, error)
}

// SortByNumber returns a copy of list ordered by the numeric value of Number.
func SortByNumber(list []*Store) []*Store {
	out := make([]*Store, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		return numberValue(out[i].Number) < numberValue(out[j].Number)
	})
	return out
}

// Selectable drops headquarters rows and orders by the numeric value of Number.
func Selectable(list []*Store) []*Store {
	out := make([]*Store, 0, len(list))
	for _, s := range list {
		if s.Number == HeadquartersNumber || s.ID == HeadquartersID {
			continue
		}
		out = append(out, s)
	}
	return SortByNumber(out)
}

func numberValue(number string) int {
	n, err := strconv.Atoi(strings.TrimSpace(number))
	if err != nil {
		return 0
	}
	return n
}

// Visible returns the stores an actor may pick. Without the all-stores view
// only the actor's own store is returned.
func Visible(list []*Store, viewAll bool, ownStoreID int) []*Store {
	selectable := Selectable(list)
	if viewAll {
		return selectable
	}
	for _, s := range selectable {
		if s.ID == ownStoreID {
			return []*Store{s}
		}
	}
	return []*Store{}
}
