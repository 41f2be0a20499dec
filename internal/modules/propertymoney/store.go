// README: PropertyMoney store backed by PostgreSQL.
package propertymoney

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"propertyapi/internal/types"
)

const selectColumns = `id, amount::text, currency, description, property_id`

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Create inserts pm and sets its ID from the generated key.
func (s *Store) Create(ctx context.Context, pm *PropertyMoney) error {
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO property_money (amount, currency, description, property_id)
		VALUES ($1::numeric, $2, $3, $4)
		RETURNING id`,
		amountText(pm.Amount),
		nullString(pm.Currency),
		nullString(pm.Description),
		pm.PropertyID,
	).Scan(&id)
	if err != nil {
		return err
	}
	pm.ID = &id
	return nil
}

// Update overwrites the row with pm.ID. It reports false when no such row exists.
func (s *Store) Update(ctx context.Context, pm *PropertyMoney) (bool, error) {
	if pm.ID == nil {
		return false, errors.New("update without id")
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE property_money
		SET amount = $1::numeric,
		    currency = $2,
		    description = $3,
		    property_id = $4
		WHERE id = $5`,
		amountText(pm.Amount),
		nullString(pm.Currency),
		nullString(pm.Description),
		pm.PropertyID,
		*pm.ID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) Get(ctx context.Context, id int64) (PropertyMoney, bool, error) {
	row := s.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM property_money WHERE id = $1`, id)
	pm, err := scanPropertyMoney(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return PropertyMoney{}, false, nil
	}
	if err != nil {
		return PropertyMoney{}, false, err
	}
	return pm, true, nil
}

func (s *Store) List(ctx context.Context, p types.Pageable) ([]PropertyMoney, error) {
	orderBy, err := orderByClause(p.Sort)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+selectColumns+` FROM property_money ORDER BY `+orderBy+` LIMIT $1 OFFSET $2`,
		p.Size, p.Offset(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]PropertyMoney, 0, p.Size)
	for rows.Next() {
		pm, err := scanPropertyMoney(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, pm)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM property_money`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Delete removes the row if present. Deleting a missing id is not an error.
func (s *Store) Delete(ctx context.Context, id int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM property_money WHERE id = $1`, id)
	return err
}

func scanPropertyMoney(row pgx.Row) (PropertyMoney, error) {
	var (
		pm                            PropertyMoney
		id                            int64
		amount, currency, description *string
	)
	if err := row.Scan(&id, &amount, &currency, &description, &pm.PropertyID); err != nil {
		return PropertyMoney{}, err
	}
	pm.ID = &id
	if amount != nil {
		d, err := decimal.NewFromString(*amount)
		if err != nil {
			return PropertyMoney{}, fmt.Errorf("scan amount %q: %w", *amount, err)
		}
		pm.Amount = &d
	}
	if currency != nil {
		pm.Currency = *currency
	}
	if description != nil {
		pm.Description = *description
	}
	return pm, nil
}

func orderByClause(sort []types.Order) (string, error) {
	parts := make([]string, 0, len(sort)+1)
	hasID := false
	for _, o := range sort {
		col, ok := sortColumns[o.Property]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrInvalidSort, o.Property)
		}
		dir := "ASC"
		if o.Direction == types.Desc {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
		if col == "id" {
			hasID = true
		}
	}
	if !hasID {
		parts = append(parts, "id ASC")
	}
	return strings.Join(parts, ", "), nil
}

func amountText(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
