package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"ExchangeCore/internal/cache"
	"ExchangeCore/internal/domain"
)

// DB wraps the embedded sqlite engine. Each entity type lives in its own
// kv_<type> table (key TEXT PRIMARY KEY, value BLOB, updated_at INTEGER);
// batch writes go through one transaction.
type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) the embedded store at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// Single-process engine: one writer connection, WAL for readers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite pragma: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the underlying engine.
func (d *DB) Close() error {
	return d.db.Close()
}

// Table is the durable store adapter for one entity type. alloc constructs an
// empty entity for JSON decoding.
type Table[T cache.Entity[T]] struct {
	db    *sql.DB
	table string
	alloc func() T
}

// NewTable creates the kv table if absent and returns its adapter.
func NewTable[T cache.Entity[T]](d *DB, name string, alloc func() T) (*Table[T], error) {
	table := "kv_" + name
	ddl := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		)`, table)
	if _, err := d.db.Exec(ddl); err != nil {
		return nil, fmt.Errorf("create table %s: %w", table, err)
	}
	return &Table[T]{db: d.db, table: table, alloc: alloc}, nil
}

// GetAll returns every persisted entity of this type.
func (t *Table[T]) GetAll() ([]T, error) {
	rows, err := t.db.Query(fmt.Sprintf("SELECT value FROM %s", t.table))
	if err != nil {
		return nil, fmt.Errorf("%s get all: %w", t.table, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("%s scan: %w", t.table, err)
		}
		e := t.alloc()
		if err := json.Unmarshal(raw, e); err != nil {
			return nil, fmt.Errorf("%s decode: %w", t.table, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Get returns the entity stored under key, if any.
func (t *Table[T]) Get(key string) (T, bool, error) {
	var zero T
	var raw []byte
	err := t.db.QueryRow(fmt.Sprintf("SELECT value FROM %s WHERE key = ?", t.table), key).Scan(&raw)
	if err == sql.ErrNoRows {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("%s get: %w", t.table, err)
	}
	e := t.alloc()
	if err := json.Unmarshal(raw, e); err != nil {
		return zero, false, fmt.Errorf("%s decode: %w", t.table, err)
	}
	return e, true, nil
}

// Save upserts one entity.
func (t *Table[T]) Save(e T) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("%s encode: %w", t.table, err)
	}
	_, err = t.db.Exec(
		fmt.Sprintf("INSERT OR REPLACE INTO %s (key, value, updated_at) VALUES (?, ?, ?)", t.table),
		e.CacheKey(), raw, e.Timestamp(),
	)
	if err != nil {
		return fmt.Errorf("%s save: %w", t.table, err)
	}
	return nil
}

// SaveBatch upserts the whole batch in one transaction. An empty batch is a
// no-op.
func (t *Table[T]) SaveBatch(batch map[string]T) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := t.db.Begin()
	if err != nil {
		return fmt.Errorf("%s batch begin: %w", t.table, err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		fmt.Sprintf("INSERT OR REPLACE INTO %s (key, value, updated_at) VALUES (?, ?, ?)", t.table))
	if err != nil {
		return fmt.Errorf("%s batch prepare: %w", t.table, err)
	}
	defer stmt.Close()

	for key, e := range batch {
		raw, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("%s batch encode %s: %w", t.table, key, err)
		}
		if _, err := stmt.Exec(key, raw, e.Timestamp()); err != nil {
			return fmt.Errorf("%s batch exec %s: %w", t.table, key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s batch commit: %w", t.table, err)
	}
	return nil
}

// NewStores opens every per-entity table on the shared engine.
func NewStores(d *DB) (cache.Stores, error) {
	var s cache.Stores
	var err error

	if s.Accounts, err = NewTable(d, "account", func() *domain.Account { return &domain.Account{} }); err != nil {
		return s, err
	}
	if s.Histories, err = NewTable(d, "account_history", func() *domain.AccountHistory { return &domain.AccountHistory{} }); err != nil {
		return s, err
	}
	if s.Withdrawals, err = NewTable(d, "coin_withdrawal", func() *domain.CoinWithdrawal { return &domain.CoinWithdrawal{} }); err != nil {
		return s, err
	}
	if s.Deposits, err = NewTable(d, "coin_deposit", func() *domain.CoinDeposit { return &domain.CoinDeposit{} }); err != nil {
		return s, err
	}
	if s.Pools, err = NewTable(d, "amm_pool", func() *domain.AmmPool { return &domain.AmmPool{} }); err != nil {
		return s, err
	}
	if s.Positions, err = NewTable(d, "amm_position", func() *domain.AmmPosition { return &domain.AmmPosition{} }); err != nil {
		return s, err
	}
	if s.Orders, err = NewTable(d, "amm_order", func() *domain.AmmOrder { return &domain.AmmOrder{} }); err != nil {
		return s, err
	}
	if s.Ticks, err = NewTable(d, "tick", func() *domain.Tick { return &domain.Tick{} }); err != nil {
		return s, err
	}
	if s.TickBitmaps, err = NewTable(d, "tick_bitmap", func() *domain.TickBitmap { return &domain.TickBitmap{} }); err != nil {
		return s, err
	}
	if s.Trades, err = NewTable(d, "trade", func() *domain.Trade { return &domain.Trade{} }); err != nil {
		return s, err
	}
	if s.Offers, err = NewTable(d, "offer", func() *domain.Offer { return &domain.Offer{} }); err != nil {
		return s, err
	}
	if s.Locks, err = NewTable(d, "balance_lock", func() *domain.BalanceLock { return &domain.BalanceLock{} }); err != nil {
		return s, err
	}
	if s.Escrows, err = NewTable(d, "merchant_escrow", func() *domain.MerchantEscrow { return &domain.MerchantEscrow{} }); err != nil {
		return s, err
	}

	return s, nil
}
