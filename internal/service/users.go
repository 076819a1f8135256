package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ecofinds/marketplace/internal/models"
	"github.com/ecofinds/marketplace/internal/store"
)

// Users is the account collaborator the rewards engine mutates. Each
// account's read-modify-write cycle is serialized by a per-user lock so
// concurrent listing and purchase rewards for the same user never lose
// updates. Persistence order is serialized separately so a save never
// overwrites a later one.
type Users struct {
	mu       sync.RWMutex
	accounts map[string]*models.UserAccount
	order    []string

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex

	persistMu sync.Mutex
	repo      store.Repository
}

func NewUsers(ctx context.Context, repo store.Repository) (*Users, error) {
	u := &Users{
		accounts: make(map[string]*models.UserAccount),
		locks:    make(map[string]*sync.Mutex),
		repo:     repo,
	}

	records, err := repo.LoadAll(ctx, store.CollectionUsers)
	if err != nil {
		return nil, fmt.Errorf("loading users: %w", err)
	}
	for _, rec := range records {
		var acc models.UserAccount
		if err := json.Unmarshal(rec, &acc); err != nil {
			return nil, fmt.Errorf("decoding user record: %w", err)
		}
		u.accounts[acc.ID] = &acc
		u.order = append(u.order, acc.ID)
	}
	return u, nil
}

// Create registers a bare account. The welcome bonus is a rewards rule, not
// an account concern; see Rewards.ApplyWelcomeBonus.
func (u *Users) Create(ctx context.Context, name, email string) (models.UserAccount, error) {
	u.mu.Lock()
	for _, id := range u.order {
		if u.accounts[id].Email == email {
			u.mu.Unlock()
			return models.UserAccount{}, &ValidationError{Field: "email", Reason: "already registered"}
		}
	}

	acc := models.UserAccount{
		ID:     uuid.New().String(),
		Name:   name,
		Email:  email,
		Badges: []string{},
	}
	u.accounts[acc.ID] = &acc
	u.order = append(u.order, acc.ID)
	u.mu.Unlock()

	if err := u.persist(ctx); err != nil {
		u.mu.Lock()
		delete(u.accounts, acc.ID)
		for i, id := range u.order {
			if id == acc.ID {
				u.order = append(u.order[:i], u.order[i+1:]...)
				break
			}
		}
		u.mu.Unlock()
		return models.UserAccount{}, err
	}
	return acc, nil
}

// Get returns a copy of the account or ErrUserNotFound.
func (u *Users) Get(id string) (models.UserAccount, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	acc, ok := u.accounts[id]
	if !ok {
		return models.UserAccount{}, ErrUserNotFound
	}
	return cloneAccount(acc), nil
}

// Update applies one combined read-modify-write to an account under that
// user's lock and persists the result. The mutation must not fail; on a
// persistence error the in-memory state is rolled back.
func (u *Users) Update(ctx context.Context, id string, mutate func(*models.UserAccount)) (models.UserAccount, error) {
	lock := u.userLock(id)
	lock.Lock()
	defer lock.Unlock()

	u.mu.Lock()
	acc, ok := u.accounts[id]
	if !ok {
		u.mu.Unlock()
		return models.UserAccount{}, ErrUserNotFound
	}
	backup := cloneAccount(acc)
	mutate(acc)
	updated := cloneAccount(acc)
	u.mu.Unlock()

	if err := u.persist(ctx); err != nil {
		u.mu.Lock()
		*u.accounts[id] = backup
		u.mu.Unlock()
		return models.UserAccount{}, err
	}
	return updated, nil
}

// Snapshot returns every account as a leaderboard view, in registration
// order. The order matters: leaderboard ties are broken by it.
func (u *Users) Snapshot() []models.UserSnapshot {
	u.mu.RLock()
	defer u.mu.RUnlock()

	out := make([]models.UserSnapshot, 0, len(u.order))
	for _, id := range u.order {
		acc := u.accounts[id]
		out = append(out, models.UserSnapshot{
			ID:          acc.ID,
			Name:        acc.Name,
			EcoPoints:   acc.EcoPoints,
			Badges:      append([]string(nil), acc.Badges...),
			TotalImpact: acc.TotalImpact,
		})
	}
	return out
}

func (u *Users) userLock(id string) *sync.Mutex {
	u.lockMu.Lock()
	defer u.lockMu.Unlock()

	l, ok := u.locks[id]
	if !ok {
		l = &sync.Mutex{}
		u.locks[id] = l
	}
	return l
}

// persist snapshots the collection and writes it back. persistMu keeps the
// snapshot and the save as one unit, so saves land in snapshot order.
func (u *Users) persist(ctx context.Context) error {
	u.persistMu.Lock()
	defer u.persistMu.Unlock()

	u.mu.RLock()
	records := make([]json.RawMessage, 0, len(u.order))
	for _, id := range u.order {
		rec, err := json.Marshal(u.accounts[id])
		if err != nil {
			u.mu.RUnlock()
			return fmt.Errorf("encoding user %s: %w", id, err)
		}
		records = append(records, rec)
	}
	u.mu.RUnlock()

	if err := u.repo.SaveAll(ctx, store.CollectionUsers, records); err != nil {
		return fmt.Errorf("persisting users: %w", err)
	}
	return nil
}

func cloneAccount(acc *models.UserAccount) models.UserAccount {
	out := *acc
	out.Badges = append([]string(nil), acc.Badges...)
	return out
}
