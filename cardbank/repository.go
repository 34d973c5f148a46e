package cardbank

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/alovak/cardbank-playground/cardbank/models"
)

var (
	ErrNotFound = fmt.Errorf("not found")
	ErrConflict = fmt.Errorf("conflict")
)

// Repository stores users and card snapshots. It runs either in-memory
// (tests, demos) or against Postgres; see repository_pg.go for the db paths.
//
// Writes are compare-and-swap on the snapshot version so a stale write can
// never clobber a newer one, whichever backend is active.
type Repository struct {
	mu    sync.RWMutex
	users map[string]*models.User
	cards map[string]*models.CardState

	db *pgHandle
}

func NewRepository() *Repository {
	return &Repository{
		users: make(map[string]*models.User),
		cards: make(map[string]*models.CardState),
	}
}

func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	if r.db != nil {
		return r.db.createUser(ctx, user)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; ok {
		return fmt.Errorf("user %s exists: %w", user.ID, ErrConflict)
	}
	u := *user
	r.users[user.ID] = &u
	return nil
}

// GetUser returns the user with its owned card numbers. The card set is
// derived from the card records, never stored on the user.
func (r *Repository) GetUser(ctx context.Context, id string) (*models.User, error) {
	if r.db != nil {
		return r.db.getUser(ctx, id)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u := *stored
	u.Cards = []string{}
	for number, c := range r.cards {
		if c.OwnerID == id {
			u.Cards = append(u.Cards, number)
		}
	}
	sort.Strings(u.Cards)
	return &u, nil
}

func (r *Repository) CreateCard(ctx context.Context, card *models.CardState) error {
	if r.db != nil {
		return r.db.createCard(ctx, card)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cards[card.Number]; ok {
		return fmt.Errorf("card number exists: %w", ErrConflict)
	}
	c := *card
	c.Version = 1
	r.cards[card.Number] = &c
	card.Version = c.Version
	return nil
}

// GetCard returns a copy of the snapshot; callers never alias stored state.
func (r *Repository) GetCard(ctx context.Context, number string) (*models.CardState, error) {
	if r.db != nil {
		return r.db.getCard(ctx, number)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.cards[number]
	if !ok {
		return nil, ErrNotFound
	}
	c := *stored
	return &c, nil
}

// ExistsCardNumber reports whether a card number is already taken.
func (r *Repository) ExistsCardNumber(ctx context.Context, number string) (bool, error) {
	if r.db != nil {
		return r.db.existsCardNumber(ctx, number)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.cards[number]
	return ok, nil
}

// UpdateCard replaces the stored snapshot if card.Version still matches the
// stored version; on a stale version it fails with ErrConflict and writes
// nothing. The version advances on success.
func (r *Repository) UpdateCard(ctx context.Context, card *models.CardState) error {
	if r.db != nil {
		return r.db.updateCard(ctx, card)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.cards[card.Number]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != card.Version {
		return fmt.Errorf("stale card version %d: %w", card.Version, ErrConflict)
	}
	c := *card
	c.Version++
	r.cards[card.Number] = &c
	card.Version = c.Version
	return nil
}

// Ping reports storage readiness.
func (r *Repository) Ping(ctx context.Context) error {
	if r.db != nil {
		return r.db.ping(ctx)
	}
	return nil
}
