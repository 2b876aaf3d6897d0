package authflow

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type slotRow struct {
	bun.BaseModel `bun:"table:slots,alias:slt"`
	Key           string `bun:"key,pk"`
	Value         []byte `bun:"value,notnull"`
}

// BunSlotStore is a durable SlotStore over a two column bun table. Each slot
// holds one JSON document; Remove deletes the row rather than leaving a null
// placeholder behind.
type BunSlotStore struct {
	db *bun.DB
}

var _ SlotStore = (*BunSlotStore)(nil)

func NewBunSlotStore(db *bun.DB) *BunSlotStore {
	return &BunSlotStore{db: db}
}

// OpenSQLiteSlotStore opens (or creates) a SQLite backed slot store at the
// given DSN and ensures the slots table exists.
func OpenSQLiteSlotStore(ctx context.Context, dsn string) (*BunSlotStore, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open slot database")
	}

	store := NewBunSlotStore(bun.NewDB(sqldb, sqlitedialect.New()))
	if err := store.Init(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// Init creates the slots table if needed.
func (s *BunSlotStore) Init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*slotRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create slots table")
	}

	return nil
}

// DB exposes the underlying handle so callers can share the connection.
func (s *BunSlotStore) DB() *bun.DB {
	return s.db
}

func (s *BunSlotStore) Get(ctx context.Context, key string, out any) (bool, error) {
	row := &slotRow{}

	err := s.db.NewSelect().
		Model(row).
		Where("? = ?", bun.Ident("key"), key).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read slot")
	}

	if err := json.Unmarshal(row.Value, out); err != nil {
		// unreadable state degrades to empty, never a failure
		return false, nil
	}

	return true, nil
}

func (s *BunSlotStore) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode slot value")
	}

	row := &slotRow{Key: key, Value: raw}

	if _, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to write slot")
	}

	return nil
}

func (s *BunSlotStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.NewDelete().
		Model((*slotRow)(nil)).
		Where("? = ?", bun.Ident("key"), key).
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to remove slot")
	}

	return nil
}
