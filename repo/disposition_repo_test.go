package repo_test

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skryldev/disposition-api/db"
	"github.com/Skryldev/disposition-api/db/dbtest"
	"github.com/Skryldev/disposition-api/models"
	"github.com/Skryldev/disposition-api/repo"
)

func newDispositionRepo(t *testing.T) (repo.DispositionRepository, *db.Conn, *statementLog) {
	t.Helper()
	log := &statementLog{}
	conn := dbtest.Acquire(t, dbtest.Open(t, log))
	return repo.NewDispositionRepo(conn), conn, log
}

// seed inserts a row directly so tests can control the disposition window.
func seed(t *testing.T, conn *db.Conn, symbol int32, name string, start, end any) {
	t.Helper()
	_, err := conn.Exec(context.Background(),
		"INSERT INTO s_disposition (stock_date, market, symbol, name, `start`, `end`) VALUES (?, ?, ?, ?, ?, ?)",
		"2024-05-01", "TWSE", symbol, name, start, end)
	require.NoError(t, err)
}

func date(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

func datePtr(y int, m time.Month, d int) *civil.Date {
	v := date(y, m, d)
	return &v
}

// ─────────────────────────────────────────────────────────────────────────────
// Create
// ─────────────────────────────────────────────────────────────────────────────

func TestDispositionRepo_Create(t *testing.T) {
	r, _, _ := newDispositionRepo(t)
	ctx := context.Background()

	d, err := r.Create(ctx, models.CreateDispositionParams{
		StockDate: date(2024, time.May, 1),
		Market:    "TWSE",
		Symbol:    "2330",
		Name:      "TSMC",
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2330), d.Symbol)
	assert.Equal(t, "TWSE", d.Market)
	assert.Equal(t, "TSMC", d.Name)
	require.NotNil(t, d.StockDate)
	assert.Equal(t, date(2024, time.May, 1), *d.StockDate)
	assert.Nil(t, d.Start)
	assert.Nil(t, d.End)
	assert.NotNil(t, d.CreatedAt)
	assert.NotNil(t, d.UpdatedAt)

	again, err := r.GetBySymbol(ctx, 2330)
	require.NoError(t, err)
	assert.Equal(t, d, again)
}

func TestDispositionRepo_Create_InvalidSymbol(t *testing.T) {
	r, _, log := newDispositionRepo(t)

	_, err := r.Create(context.Background(), models.CreateDispositionParams{
		StockDate: date(2024, time.May, 1),
		Market:    "TWSE",
		Symbol:    "ABCD",
		Name:      "Nope",
	})
	require.ErrorIs(t, err, repo.ErrInvalidSymbol)
	assert.Contains(t, err.Error(), "ABCD")
	assert.Zero(t, log.count("INSERT"))
}

func TestParseSymbol(t *testing.T) {
	cases := []struct {
		in      string
		want    int32
		wantErr bool
	}{
		{"2330", 2330, false},
		{"-7", -7, false},
		{"0050", 50, false},
		{"2147483647", 2147483647, false},
		{"2147483648", 0, true},
		{"", 0, true},
		{" 2330", 0, true},
		{"23.5", 0, true},
		{"ABCD", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := repo.ParseSymbol(tc.in)
			if tc.wantErr {
				require.ErrorIs(t, err, repo.ErrInvalidSymbol)
				assert.Contains(t, err.Error(), "'"+tc.in+"'")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetBySymbol / GetAll
// ─────────────────────────────────────────────────────────────────────────────

func TestDispositionRepo_GetBySymbol_LatestEnd(t *testing.T) {
	r, conn, _ := newDispositionRepo(t)

	seed(t, conn, 1101, "early", "2024-01-01", "2024-01-10")
	seed(t, conn, 1101, "late", "2024-03-01", "2024-03-10")
	seed(t, conn, 1101, "middle", "2024-02-01", "2024-02-10")
	seed(t, conn, 1101, "open", nil, nil)
	seed(t, conn, 2002, "other", "2025-01-01", "2025-12-31")

	d, err := r.GetBySymbol(context.Background(), 1101)
	require.NoError(t, err)
	assert.Equal(t, "late", d.Name)
	assert.Equal(t, datePtr(2024, time.March, 1), d.Start)
	assert.Equal(t, datePtr(2024, time.March, 10), d.End)
}

func TestDispositionRepo_GetBySymbol_OnlyUndated(t *testing.T) {
	r, conn, _ := newDispositionRepo(t)
	seed(t, conn, 3008, "open", nil, nil)

	d, err := r.GetBySymbol(context.Background(), 3008)
	require.NoError(t, err)
	assert.Equal(t, "open", d.Name)
	assert.Nil(t, d.End)
}

func TestDispositionRepo_GetBySymbol_NotFound(t *testing.T) {
	r, _, _ := newDispositionRepo(t)

	d, err := r.GetBySymbol(context.Background(), 9999)
	assert.Nil(t, d)
	assert.True(t, db.IsNotFound(err), "got %v", err)
}

func TestDispositionRepo_GetAll(t *testing.T) {
	r, conn, _ := newDispositionRepo(t)
	ctx := context.Background()

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	seed(t, conn, 1101, "a", nil, nil)
	seed(t, conn, 1101, "b", "2024-01-01", "2024-01-10")
	seed(t, conn, 2002, "c", nil, nil)

	all, err = r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].Name, all[1].Name, all[2].Name})
}

func TestDispositionRepo_ZeroDateIsAbsent(t *testing.T) {
	r, conn, _ := newDispositionRepo(t)
	seed(t, conn, 4004, "zero", "0000-00-00", "2024-13-01")

	d, err := r.GetBySymbol(context.Background(), 4004)
	require.NoError(t, err)
	assert.Nil(t, d.Start)
	assert.Nil(t, d.End)
}

// ─────────────────────────────────────────────────────────────────────────────
// Update
// ─────────────────────────────────────────────────────────────────────────────

func TestDispositionRepo_Update(t *testing.T) {
	r, _, _ := newDispositionRepo(t)
	ctx := context.Background()

	_, err := r.Create(ctx, models.CreateDispositionParams{
		StockDate: date(2024, time.May, 1), Market: "TWSE", Symbol: "2330", Name: "TSMC",
	})
	require.NoError(t, err)

	d, err := r.Update(ctx, 2330, models.UpdateDispositionParams{
		Start: datePtr(2024, time.May, 2),
		End:   datePtr(2024, time.May, 16),
	})
	require.NoError(t, err)
	assert.Equal(t, datePtr(2024, time.May, 2), d.Start)
	assert.Equal(t, datePtr(2024, time.May, 16), d.End)

	d, err = r.Update(ctx, 2330, models.UpdateDispositionParams{End: datePtr(2024, time.May, 30)})
	require.NoError(t, err)
	assert.Equal(t, datePtr(2024, time.May, 2), d.Start)
	assert.Equal(t, datePtr(2024, time.May, 30), d.End)
}

func TestDispositionRepo_Update_TouchesEveryRowOfSymbol(t *testing.T) {
	r, conn, _ := newDispositionRepo(t)
	ctx := context.Background()

	seed(t, conn, 1101, "old", "2023-01-01", "2023-01-10")
	seed(t, conn, 1101, "new", "2024-01-01", "2024-01-10")
	seed(t, conn, 2002, "bystander", "2024-01-01", "2024-01-10")

	_, err := r.Update(ctx, 1101, models.UpdateDispositionParams{End: datePtr(2024, time.June, 30)})
	require.NoError(t, err)

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	for _, d := range all {
		if d.Symbol == 1101 {
			assert.Equal(t, datePtr(2024, time.June, 30), d.End, d.Name)
		} else {
			assert.Equal(t, datePtr(2024, time.January, 10), d.End, d.Name)
		}
	}
}

func TestDispositionRepo_Update_EmptyPatch(t *testing.T) {
	r, conn, log := newDispositionRepo(t)
	seed(t, conn, 1101, "only", "2024-01-01", "2024-01-10")

	before, err := r.GetBySymbol(context.Background(), 1101)
	require.NoError(t, err)

	after, err := r.Update(context.Background(), 1101, models.UpdateDispositionParams{})
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Zero(t, log.count("UPDATE"))
}

func TestDispositionRepo_Update_Missing(t *testing.T) {
	r, _, _ := newDispositionRepo(t)

	_, err := r.Update(context.Background(), 9999, models.UpdateDispositionParams{End: datePtr(2024, time.May, 1)})
	assert.True(t, db.IsNotFound(err), "got %v", err)
}

func TestDispositionRepo_Create_ReadBackFails(t *testing.T) {
	r, conn, _ := newDispositionRepo(t)
	ctx := context.Background()

	_, err := conn.Exec(ctx, "CREATE TRIGGER vanish_disposition AFTER INSERT ON s_disposition "+
		"BEGIN DELETE FROM s_disposition WHERE rowid = NEW.rowid; END")
	require.NoError(t, err)

	d, err := r.Create(ctx, models.CreateDispositionParams{
		StockDate: date(2024, time.May, 1), Market: "TWSE", Symbol: "2330", Name: "TSMC",
	})
	assert.Nil(t, d)
	require.ErrorIs(t, err, repo.ErrReadBack)
	assert.False(t, db.IsNotFound(err), "read-back failure must not look like a missing row")
	assert.Contains(t, err.Error(), "disposition 2330")
}
