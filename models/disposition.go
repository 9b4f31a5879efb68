package models

import "cloud.google.com/go/civil"

// Disposition is one regulatory disposition window for a listed stock, a row
// of the "s_disposition" table. Symbol is not unique: a stock that was put
// under disposition several times has several rows.
type Disposition struct {
	StockDate *civil.Date     `json:"stock_date"`
	Market    string          `json:"market"`
	Symbol    int32           `json:"symbol"`
	Name      string          `json:"name"`
	Start     *civil.Date     `json:"start"`
	End       *civil.Date     `json:"end"`
	CreatedAt *civil.DateTime `json:"created_at"`
	UpdatedAt *civil.DateTime `json:"updated_at"`
}

// CreateDispositionParams is the input for a new disposition row. Symbol
// arrives as text and is parsed by the repository.
type CreateDispositionParams struct {
	StockDate civil.Date `json:"stock_date"`
	Market    string     `json:"market" binding:"required"`
	Symbol    string     `json:"symbol" binding:"required"`
	Name      string     `json:"name" binding:"required"`
}

// UpdateDispositionParams moves the disposition window. Only non-nil fields
// are written.
type UpdateDispositionParams struct {
	Start *civil.Date `json:"start"`
	End   *civil.Date `json:"end"`
}

// IsEmpty reports whether the patch sets no field at all.
func (p UpdateDispositionParams) IsEmpty() bool {
	return p.Start == nil && p.End == nil
}
