package cardbank

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/lib/pq"

	"github.com/alovak/cardbank-playground/cardbank/models"
)

// NewPGRepository constructs a db-backed repository. Schema: schema.sql.
func NewPGRepository(db *sql.DB) *Repository {
	return &Repository{db: &pgHandle{db: db}}
}

type pgHandle struct {
	db *sql.DB
}

func (h *pgHandle) createUser(ctx context.Context, user *models.User) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO cardbank.users(user_id, name, address)
		VALUES ($1,$2,$3)
	`, user.ID, user.Name, user.Address)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (h *pgHandle) getUser(ctx context.Context, id string) (*models.User, error) {
	row := h.db.QueryRowContext(ctx, `SELECT user_id, name, address FROM cardbank.users WHERE user_id=$1`, id)
	u := &models.User{}
	if err := row.Scan(&u.ID, &u.Name, &u.Address); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.Cards = []string{}
	rows, err := h.db.QueryContext(ctx, `SELECT card_number FROM cardbank.cards WHERE owner_id=$1 ORDER BY card_number`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return nil, err
		}
		u.Cards = append(u.Cards, number)
	}
	return u, rows.Err()
}

func (h *pgHandle) createCard(ctx context.Context, card *models.CardState) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO cardbank.cards(card_number, owner_id, holder_name, expiry_yymm,
		                           state, balance, daily_limit, spent_today, last_spent_day, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,1)
	`, card.Number, card.OwnerID, card.HolderName, card.ExpirationDate,
		string(card.State), card.Balance, card.DailyLimit, card.SpentToday, card.LastSpentDay)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err == nil {
		card.Version = 1
	}
	return err
}

func (h *pgHandle) getCard(ctx context.Context, number string) (*models.CardState, error) {
	row := h.db.QueryRowContext(ctx, `
		SELECT card_number, owner_id, holder_name, expiry_yymm,
		       state, balance, daily_limit, spent_today, last_spent_day, version
		  FROM cardbank.cards WHERE card_number=$1
	`, number)
	c := &models.CardState{}
	var state string
	if err := row.Scan(&c.Number, &c.OwnerID, &c.HolderName, &c.ExpirationDate,
		&state, &c.Balance, &c.DailyLimit, &c.SpentToday, &c.LastSpentDay, &c.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	c.State = models.AccountState(state)
	return c, nil
}

func (h *pgHandle) existsCardNumber(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := h.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM cardbank.cards WHERE card_number=$1)`, number).Scan(&exists)
	return exists, err
}

// updateCard is a single conditional UPDATE: the row moves to the new
// snapshot only when the version column still matches what the caller read.
func (h *pgHandle) updateCard(ctx context.Context, card *models.CardState) error {
	res, err := h.db.ExecContext(ctx, `
		UPDATE cardbank.cards
		   SET state=$2, balance=$3, daily_limit=$4, spent_today=$5,
		       last_spent_day=$6, version=version+1, updated_at=now()
		 WHERE card_number=$1 AND version=$7
	`, card.Number, string(card.State), card.Balance, card.DailyLimit,
		card.SpentToday, card.LastSpentDay, card.Version)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		exists, err := h.existsCardNumber(ctx, card.Number)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return fmt.Errorf("stale card version %d: %w", card.Version, ErrConflict)
	}
	card.Version++
	return nil
}

func (h *pgHandle) ping(ctx context.Context) error {
	return h.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var pe *pq.Error
	if errors.As(err, &pe) && pe.Code == "23505" {
		return true
	}
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) && pgerr.Code == "23505" {
		return true
	}
	return false
}
