package cardbank

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"github.com/alovak/cardbank-playground/cardbank/engine"
	"github.com/alovak/cardbank-playground/cardbank/models"
	"github.com/alovak/cardbank-playground/internal/cardgen"
	"github.com/alovak/cardbank-playground/internal/expiry"
)

// Service is the command processor: it loads the addressed snapshot, asks
// the engine to transition it, and persists the result. Commands against
// the same card are serialized; different cards proceed in parallel.
type Service struct {
	repo   *Repository
	cfg    *Config
	logger *slog.Logger

	// newID supplies identities for created users; injectable for tests.
	newID func() string

	mu        sync.Mutex
	cardLocks map[string]*cardLock
}

type cardLock struct {
	mu   sync.Mutex
	refs int
}

func NewService(repo *Repository, cfg *Config, logger *slog.Logger) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "service")),
		newID:     uuid.NewString,
		cardLocks: make(map[string]*cardLock),
	}
}

func (s *Service) CreateUser(ctx context.Context, req models.CreateUser) (*models.User, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, models.NewValidationError("name", "must not be empty")
	}
	user := &models.User{
		ID:      s.newID(),
		Name:    req.Name,
		Address: req.Address,
		Cards:   []string{},
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, s.bug(fmt.Errorf("creating user: %w", err))
	}
	return user, nil
}

// GetUser returns nil without error for an unknown id; absence is a valid
// query outcome.
func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.bug(fmt.Errorf("finding user: %w", err))
	}
	return user, nil
}

// CreateCard issues a card to an existing user. A supplied number must be
// unique; when no number is supplied one is generated with a uniqueness
// retry on insert, since two generators may race on the same number.
// The caller-supplied timestamp anchors the expiration check.
func (s *Service) CreateCard(ctx context.Context, ownerID string, req models.CreateCard, now time.Time) (*models.CardState, error) {
	if _, err := s.repo.GetUser(ctx, ownerID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &models.DataError{Kind: models.EntityNotFound}
		}
		return nil, s.bug(fmt.Errorf("finding owner: %w", err))
	}
	if strings.TrimSpace(req.HolderName) == "" {
		return nil, models.NewValidationError("holder_name", "must not be empty")
	}
	expYYMM, err := expiry.ParseCardFace(req.ExpirationDate)
	if err != nil {
		return nil, models.NewValidationError("expiration_date", err.Error())
	}
	expired, err := expiry.IsExpired(expYYMM, now, nil)
	if err != nil {
		return nil, models.NewValidationError("expiration_date", err.Error())
	}
	if expired {
		return nil, models.NewValidationError("expiration_date", "card is already expired")
	}
	limit := req.DailyLimit
	if limit == 0 {
		limit = s.cfg.DefaultDailyLimit
	}
	if _, err := models.NewDailyLimit(limit); err != nil {
		return nil, err
	}

	generated := req.Number == ""
	number := req.Number
	if generated {
		number, err = s.generateNumber(ctx)
		if err != nil {
			return nil, s.bug(err)
		}
	} else if err := models.ValidateCardNumber(number); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < 5; attempt++ {
		card := &models.CardState{
			Number:         number,
			OwnerID:        ownerID,
			HolderName:     req.HolderName,
			ExpirationDate: expYYMM,
			State:          models.StateActive,
			Balance:        0,
			DailyLimit:     limit,
			SpentToday:     0,
		}
		err = s.repo.CreateCard(ctx, card)
		if err == nil {
			return card, nil
		}
		if !errors.Is(err, ErrConflict) {
			return nil, s.bug(fmt.Errorf("creating card: %w", err))
		}
		if !generated {
			return nil, &models.DataError{Kind: models.Conflict}
		}
		number, err = s.generateNumber(ctx)
		if err != nil {
			return nil, s.bug(err)
		}
	}
	return nil, s.bug(fmt.Errorf("could not create unique card after retries"))
}

// GetCard returns nil without error for an unknown number.
func (s *Service) GetCard(ctx context.Context, number string) (*models.CardState, error) {
	card, err := s.repo.GetCard(ctx, number)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.bug(fmt.Errorf("finding card: %w", err))
	}
	return card, nil
}

func (s *Service) Activate(ctx context.Context, number string, now time.Time) (*models.CardState, error) {
	return s.execute(ctx, number, models.Activate{}, now)
}

func (s *Service) Deactivate(ctx context.Context, number string, now time.Time) (*models.CardState, error) {
	return s.execute(ctx, number, models.Deactivate{}, now)
}

func (s *Service) SetDailyLimit(ctx context.Context, number string, limit int64, now time.Time) (*models.CardState, error) {
	return s.execute(ctx, number, models.SetDailyLimit{Limit: limit}, now)
}

func (s *Service) ProcessPayment(ctx context.Context, number string, amount int64, now time.Time) (*models.CardState, error) {
	return s.execute(ctx, number, models.ProcessPayment{Amount: amount}, now)
}

func (s *Service) TopUp(ctx context.Context, number string, amount int64, now time.Time) (*models.CardState, error) {
	return s.execute(ctx, number, models.TopUp{Amount: amount}, now)
}

// execute runs the read-validate-write sequence for one command under the
// card's lock, so concurrent commands against the same card can never both
// pass validation against a stale read.
func (s *Service) execute(ctx context.Context, number string, cmd models.Command, now time.Time) (*models.CardState, error) {
	lock := s.lockCard(number)
	defer s.unlockCard(number, lock)

	card, err := s.repo.GetCard(ctx, number)
	if errors.Is(err, ErrNotFound) {
		return nil, &models.DataError{Kind: models.EntityNotFound}
	}
	if err != nil {
		return nil, s.bug(fmt.Errorf("loading card: %w", err))
	}

	next, err := engine.Apply(*card, cmd, now)
	if err != nil {
		// Engine failures pass through unchanged; nothing is written.
		return nil, err
	}

	if err := s.repo.UpdateCard(ctx, &next); err != nil {
		// A version conflict under the card lock means an out-of-band
		// writer touched the row; it is a fault, not a business outcome.
		return nil, s.bug(fmt.Errorf("persisting card %s: %w", number, err))
	}
	return &next, nil
}

// lockCard serializes commands per card number. Entries are reference
// counted and dropped when the last holder releases, so probing unknown
// numbers cannot grow the table without bound.
func (s *Service) lockCard(number string) *cardLock {
	s.mu.Lock()
	lock, ok := s.cardLocks[number]
	if !ok {
		lock = &cardLock{}
		s.cardLocks[number] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return lock
}

func (s *Service) unlockCard(number string, lock *cardLock) {
	lock.mu.Unlock()

	s.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(s.cardLocks, number)
	}
	s.mu.Unlock()
}

func (s *Service) generateNumber(ctx context.Context) (string, error) {
	prefix := s.cfg.CardNumberPrefix
	if cardgen.ValidatePrefix(prefix) != nil {
		prefix = "421234"
	}
	exists := func(number string) (bool, error) {
		return s.repo.ExistsCardNumber(ctx, number)
	}
	number, err := cardgen.GenerateUnique(prefix, 10, exists)
	if err != nil {
		return "", fmt.Errorf("generate card number: %w", err)
	}
	return number, nil
}

// bug records the underlying fault and returns the opaque variant; no
// internal detail crosses the domain boundary.
func (s *Service) bug(err error) error {
	s.logger.Error("internal fault", "err", err)
	return models.Bug(err)
}
