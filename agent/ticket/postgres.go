package ticket

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type ticketRow struct {
	bun.BaseModel `bun:"table:tickets"`

	ID        string    `bun:"id,pk"`
	Status    string    `bun:"status,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// PostgresStore keeps tickets in a single "tickets" table.
type PostgresStore struct {
	db  *bun.DB
	now func() time.Time
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return NewPostgresStoreFromDB(bun.NewDB(sqldb, pgdialect.New())), nil
}

func NewPostgresStoreFromDB(db *bun.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

// EnsureSchema creates the tickets table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*ticketRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create tickets table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Ticket, error) {
	var row ticketRow
	err := s.db.NewSelect().
		Model(&row).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return Ticket{}, ErrTicketNotFound
	}
	if err != nil {
		return Ticket{}, fmt.Errorf("select ticket %s: %w", id, err)
	}
	return Ticket{ID: row.ID, Status: row.Status}, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, t Ticket) (Ticket, error) {
	if err := t.validate(); err != nil {
		return Ticket{}, err
	}
	row := &ticketRow{ID: t.ID, Status: t.Status, UpdatedAt: s.now().UTC()}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("status = EXCLUDED.status").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return Ticket{}, fmt.Errorf("upsert ticket %s: %w", t.ID, err)
	}
	return t, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
