package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync/atomic"
	"time"

	"github.com/angelmondragon/gocart-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/gocart-backend/pkg/errors"
	"github.com/angelmondragon/gocart-backend/pkg/logger"
	"github.com/angelmondragon/gocart-backend/pkg/redis"
	"github.com/angelmondragon/gocart-backend/pkg/types"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(userID string) string
}

// ProductChecker confirms a product id refers to a live catalog entry.
type ProductChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// View is the cart as returned to clients.
type View struct {
	Items map[string]int `json:"items"`
	Total int            `json:"total"`
}

func newView(items map[string]int) *View {
	if items == nil {
		items = map[string]int{}
	}
	return &View{Items: items, Total: Total(items)}
}

// Service exposes the persisted cart of a user.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*View, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID) (*View, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*View, error)
	DeleteItem(ctx context.Context, userID, productID uuid.UUID) (*View, error)
	Clear(ctx context.Context, userID uuid.UUID) (*View, error)
	// Prune removes purchased products inside the caller's transaction.
	Prune(ctx context.Context, tx *gorm.DB, userID uuid.UUID, productIDs []uuid.UUID) error
	// Invalidate drops the cached cart; call after the pruning transaction commits.
	Invalidate(ctx context.Context, userID uuid.UUID)
}

// ServiceParams wires the cart service.
type ServiceParams struct {
	Repo     *Repository
	Tx       txRunner
	Products ProductChecker
	Cache    cacheStore
	CacheTTL time.Duration
	Logger   *logger.Logger
}

type service struct {
	repo     *Repository
	tx       txRunner
	products ProductChecker
	cache    cacheStore
	ttl      time.Duration
	logg     *logger.Logger
	loads    singleflight.Group
	// bumped on every eviction; a fill stamped with an older value is dropped
	gens [64]atomic.Uint64
}

// NewService builds a cart service. Cache is optional.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product checker required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		products: params.Products,
		cache:    params.Cache,
		ttl:      ttl,
		logg:     params.Logger,
	}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*View, error) {
	v, err, _ := s.loads.Do(userID.String(), func() (any, error) {
		if items, ok := s.cached(ctx, userID); ok {
			return items, nil
		}
		gen := s.generation(userID).Load()
		items, err := s.repo.Load(ctx, userID)
		if err != nil {
			return nil, translateLoadErr(err, userID)
		}
		clean := NewState(items).Snapshot()
		s.remember(ctx, userID, clean, gen)
		return clean, nil
	})
	if err != nil {
		return nil, err
	}
	// shared between singleflight callers; hand each one its own copy
	return newView(NewState(v.(map[string]int)).Snapshot()), nil
}

func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID) (*View, error) {
	ok, err := s.products.Exists(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check product")
	}
	if !ok {
		return nil, pkgerrors.NotFound("Product", productID.String())
	}
	return s.mutate(ctx, userID, func(state *State) error {
		return state.Add(productID.String())
	})
}

func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*View, error) {
	return s.mutate(ctx, userID, func(state *State) error {
		state.Remove(productID.String())
		return nil
	})
}

func (s *service) DeleteItem(ctx context.Context, userID, productID uuid.UUID) (*View, error) {
	return s.mutate(ctx, userID, func(state *State) error {
		state.Delete(productID.String())
		return nil
	})
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) (*View, error) {
	return s.mutate(ctx, userID, func(state *State) error {
		state.Clear()
		return nil
	})
}

func (s *service) Prune(ctx context.Context, tx *gorm.DB, userID uuid.UUID, productIDs []uuid.UUID) error {
	if len(productIDs) == 0 {
		return nil
	}
	return s.apply(ctx, s.repo.WithTx(tx), userID, func(state *State) error {
		for _, id := range productIDs {
			state.Delete(id.String())
		}
		return nil
	}, nil)
}

func (s *service) Invalidate(ctx context.Context, userID uuid.UUID) {
	s.forget(ctx, userID)
}

func (s *service) mutate(ctx context.Context, userID uuid.UUID, fn func(*State) error) (*View, error) {
	var snapshot map[string]int
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.apply(ctx, s.repo.WithTx(tx), userID, fn, &snapshot)
	})
	if err != nil {
		return nil, err
	}
	s.forget(ctx, userID)
	return newView(snapshot), nil
}

func (s *service) apply(ctx context.Context, repo *Repository, userID uuid.UUID, fn func(*State) error, out *map[string]int) error {
	items, err := repo.LoadForUpdate(ctx, userID)
	if err != nil {
		return translateLoadErr(err, userID)
	}
	state := NewState(items)
	if err := fn(state); err != nil {
		return err
	}
	snapshot := state.Snapshot()
	if err := repo.Save(ctx, userID, types.CartItems(snapshot)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart")
	}
	if out != nil {
		*out = snapshot
	}
	return nil
}

func (s *service) cached(ctx context.Context, userID uuid.UUID) (map[string]int, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, s.cache.CartKey(userID.String()))
	if err != nil {
		if !redis.IsMiss(err) {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart.cache.read_failed")
		}
		return nil, false
	}
	items := map[string]int{}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.forget(ctx, userID)
		return nil, false
	}
	return items, true
}

func (s *service) remember(ctx context.Context, userID uuid.UUID, items map[string]int, gen uint64) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return
	}
	if s.generation(userID).Load() != gen {
		return
	}
	if err := s.cache.Set(ctx, s.cache.CartKey(userID.String()), string(payload), s.ttl); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart.cache.write_failed")
		return
	}
	// an eviction that raced the Set may have run before the value landed
	if s.generation(userID).Load() != gen {
		s.forget(ctx, userID)
	}
}

func (s *service) forget(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	s.generation(userID).Add(1)
	if err := s.cache.Del(ctx, s.cache.CartKey(userID.String())); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart.cache.evict_failed")
	}
}

// generation returns the eviction counter of the user's stripe. Users sharing a
// stripe only cost each other a skipped cache fill.
func (s *service) generation(userID uuid.UUID) *atomic.Uint64 {
	h := fnv.New32a()
	_, _ = h.Write(userID[:])
	return &s.gens[h.Sum32()%uint32(len(s.gens))]
}

func translateLoadErr(err error, userID uuid.UUID) error {
	if db.IsNotFound(err) {
		return pkgerrors.NotFound("User", userID.String())
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
}
