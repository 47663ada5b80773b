package prices

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SourceDatabase Postgres 가격 저장소
const SourceDatabase = "database"

// Repository data.daily_prices 기반 가격 저장소
// ⭐ SSOT: 가격 테이블 SQL은 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new price repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Source returns "database"
func (r *Repository) Source() string { return SourceDatabase }

// EnsureSchema 스키마/테이블 생성 (멱등)
func (r *Repository) EnsureSchema(ctx context.Context) error {
	ddl := `
		CREATE SCHEMA IF NOT EXISTS data;
		CREATE TABLE IF NOT EXISTS data.daily_prices (
			stock_code  TEXT             NOT NULL,
			trade_date  DATE             NOT NULL,
			open_price  DOUBLE PRECISION,
			high_price  DOUBLE PRECISION,
			low_price   DOUBLE PRECISION,
			close_price DOUBLE PRECISION NOT NULL CHECK (close_price > 0),
			volume      BIGINT,
			source      TEXT             NOT NULL,
			updated_at  TIMESTAMPTZ      NOT NULL DEFAULT now(),
			PRIMARY KEY (stock_code, trade_date)
		);
	`
	if _, err := r.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure price schema: %w", err)
	}
	return nil
}

// History 최근 days 거래일 종가 이력
func (r *Repository) History(ctx context.Context, symbol string, days int) (*Series, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	if err := ValidateDays(days); err != nil {
		return nil, err
	}

	query := `
		SELECT trade_date, COALESCE(open_price, 0), COALESCE(high_price, 0), COALESCE(low_price, 0),
		       close_price, COALESCE(volume, 0)
		FROM (
			SELECT * FROM data.daily_prices
			WHERE stock_code = $1
			ORDER BY trade_date DESC
			LIMIT $2
		) recent
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, symbol, days)
	if err != nil {
		return nil, unavailable(SourceDatabase, symbol, err)
	}
	defer rows.Close()

	bars := make([]Bar, 0, days)
	for rows.Next() {
		var b Bar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, unavailable(SourceDatabase, symbol, err)
		}
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(SourceDatabase, symbol, err)
	}

	return &Series{Symbol: symbol, Source: SourceDatabase, Bars: bars}, nil
}

// SaveBars upsert (pgx batch, 한 번의 round trip)
func (r *Repository) SaveBars(ctx context.Context, symbol, source string, bars []Bar) (int, error) {
	if len(bars) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO data.daily_prices (stock_code, trade_date, open_price, high_price, low_price, close_price, volume, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (stock_code, trade_date) DO UPDATE SET
			open_price  = EXCLUDED.open_price,
			high_price  = EXCLUDED.high_price,
			low_price   = EXCLUDED.low_price,
			close_price = EXCLUDED.close_price,
			volume      = EXCLUDED.volume,
			source      = EXCLUDED.source,
			updated_at  = now()
	`

	batch := &pgx.Batch{}
	for _, b := range bars {
		batch.Queue(query, symbol, b.Date, b.Open, b.High, b.Low, b.Close, b.Volume, source)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := range bars {
		if _, err := results.Exec(); err != nil {
			return i, fmt.Errorf("upsert %s %s: %w", symbol, bars[i].Date.Format("2006-01-02"), err)
		}
	}
	return len(bars), nil
}

// LatestDate 저장된 최신 거래일
func (r *Repository) LatestDate(ctx context.Context, symbol string) (time.Time, bool, error) {
	var latest *time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT MAX(trade_date) FROM data.daily_prices WHERE stock_code = $1`, symbol,
	).Scan(&latest)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("latest date %s: %w", symbol, err)
	}
	if latest == nil {
		return time.Time{}, false, nil
	}
	return *latest, true, nil
}

// Symbols 저장된 종목 목록 (수집 대상 기본값)
func (r *Repository) Symbols(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT stock_code FROM data.daily_prices ORDER BY stock_code`)
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
