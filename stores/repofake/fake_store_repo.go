package fakestorerepo

import (
	"context"
	"sort"
	"sync"

	dasherrors "github.com/jrsteele09/sales-dashboard/internal/errors"
	"github.com/jrsteele09/sales-dashboard/stores"
)

var _ stores.Repo = (*FakeStoreRepo)(nil)

type FakeStoreRepo struct {
	stores map[int]*stores.Store
	lock   sync.RWMutex

	// Err, when set, is returned by every call
	Err error
}

func NewFakeStoreRepo(initial ...stores.Store) *FakeStoreRepo {
	r := &FakeStoreRepo{stores: make(map[int]*stores.Store)}
	for _, s := range initial {
		r.Upsert(s)
	}
	return r
}

func (r *FakeStoreRepo) Upsert(store stores.Store) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.stores[store.ID] = &store
}

func (r *FakeStoreRepo) List(_ context.Context) ([]*stores.Store, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if r.Err != nil {
		return nil, r.Err
	}
	list := make([]*stores.Store, 0, len(r.stores))
	for _, s := range r.stores {
		cp := *s
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Number < list[j].Number
	})
	return list, nil
}

func (r *FakeStoreRepo) Get(_ context.Context, id int) (*stores.Store, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if r.Err != nil {
		return nil, r.Err
	}
	s, ok := r.stores[id]
	if !ok {
		return nil, dasherrors.Wrapf(dasherrors.ErrNotFound, "store %d", id)
	}
	cp := *s
	return &cp, nil
}
