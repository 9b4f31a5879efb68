package repo

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Skryldev/disposition-api/db"
	"github.com/Skryldev/disposition-api/models"
)

// DispositionRepository defines the contract for disposition persistence.
//
// Several rows may share a symbol; the "current" disposition of a symbol is
// the row with the latest end date. Rows whose end is NULL sort below every
// dated row, so they are only current when no dated row exists, and the
// choice among several NULL rows is left to the database.
type DispositionRepository interface {
	GetAll(ctx context.Context) ([]*models.Disposition, error)
	GetBySymbol(ctx context.Context, symbol int32) (*models.Disposition, error)
	Create(ctx context.Context, params models.CreateDispositionParams) (*models.Disposition, error)
	Update(ctx context.Context, symbol int32, params models.UpdateDispositionParams) (*models.Disposition, error)
}

type dispositionRepo struct {
	q db.Querier
}

// NewDispositionRepo returns a DispositionRepository backed by q.
func NewDispositionRepo(q db.Querier) DispositionRepository {
	return &dispositionRepo{q: q}
}

const (
	dispositionTable = "s_disposition"

	sqlListDispositions = `
		SELECT stock_date, market, symbol, name, ` + "`start`, `end`" + `, created_at, updated_at
		FROM   ` + dispositionTable

	// MySQL and SQLite both order NULL lowest, so DESC puts undated rows last.
	sqlCurrentDisposition = sqlListDispositions + `
		WHERE  symbol = ?
		ORDER  BY ` + "`end`" + ` DESC
		LIMIT  1`

	sqlInsertDisposition = `
		INSERT INTO ` + dispositionTable + ` (stock_date, market, symbol, name)
		VALUES (?, ?, ?, ?)`
)

// GetAll returns every disposition row in storage order.
func (r *dispositionRepo) GetAll(ctx context.Context) ([]*models.Disposition, error) {
	rows, err := r.q.Query(ctx, sqlListDispositions)
	if err != nil {
		return nil, fmt.Errorf("repo/disposition: list: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Disposition, 0)
	for rows.Next() {
		d, err := scanDisposition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo/disposition: list: %w", err)
	}
	return out, nil
}

// GetBySymbol returns the current disposition for symbol.
// Returns db.ErrNotFound when the symbol has no rows.
func (r *dispositionRepo) GetBySymbol(ctx context.Context, symbol int32) (*models.Disposition, error) {
	return scanDisposition(r.q.QueryRow(ctx, sqlCurrentDisposition, symbol))
}

// ParseSymbol parses a textual stock symbol as a base-10 int32.
func ParseSymbol(text string) (int32, error) {
	n, err := strconv.ParseInt(text, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w '%s': %v", ErrInvalidSymbol, text, err)
	}
	return int32(n), nil
}

// Create inserts a disposition and returns the symbol's current row. A new
// row has no end date, so when older dated rows exist for the same symbol the
// row returned is the latest of those rather than the one just inserted.
func (r *dispositionRepo) Create(ctx context.Context, params models.CreateDispositionParams) (*models.Disposition, error) {
	symbol, err := ParseSymbol(params.Symbol)
	if err != nil {
		return nil, err
	}

	if _, err := r.q.Exec(ctx, sqlInsertDisposition,
		params.StockDate.String(), params.Market, symbol, params.Name,
	); err != nil {
		return nil, fmt.Errorf("repo/disposition: insert: %w", err)
	}

	d, err := r.GetBySymbol(ctx, symbol)
	if db.IsNotFound(err) {
		return nil, fmt.Errorf("%w: disposition %d", ErrReadBack, symbol)
	}
	return d, err
}

// Update moves the disposition window of symbol, start before end. An empty
// patch runs no UPDATE and returns the current row.
//
// The UPDATE matches every row of the symbol, while the read-back returns only
// the current one. Historical windows of the same symbol are overwritten with
// the new dates; only the current row is meant to move, but a symbol has no
// row key that MySQL and SQLite can both target in a single UPDATE.
func (r *dispositionRepo) Update(ctx context.Context, symbol int32, params models.UpdateDispositionParams) (*models.Disposition, error) {
	if params.IsEmpty() {
		return r.GetBySymbol(ctx, symbol)
	}
	query, args := buildUpdate(dispositionTable, []assignment{
		dateField("`start`", params.Start),
		dateField("`end`", params.End),
	}, "symbol = ?", symbol)

	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("repo/disposition: update: %w", err)
	}
	return r.GetBySymbol(ctx, symbol)
}

func scanDisposition(s scanner) (*models.Disposition, error) {
	var (
		d                     models.Disposition
		stockDate, start, end db.Cell
		created, updated      db.Cell
	)
	err := s.Scan(&stockDate, &d.Market, &d.Symbol, &d.Name, &start, &end, &created, &updated)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("repo/disposition: scan: %w", err)
	}
	d.StockDate = db.CoerceDate(stockDate)
	d.Start = db.CoerceDate(start)
	d.End = db.CoerceDate(end)
	d.CreatedAt = db.CoerceTimestamp(created)
	d.UpdatedAt = db.CoerceTimestamp(updated)
	return &d, nil
}

var _ DispositionRepository = (*dispositionRepo)(nil)
