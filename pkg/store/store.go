// SQL repository for generated business objects on SQLite or PostgreSQL
// The schema is applied from embedded migrations when the store is opened
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/andrewh/botest/pkg/bo"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pgx-contrib/pgxotel"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

//go:embed migrations
var migrations embed.FS

// ErrUnsupportedDriver is returned by Open for drivers other than
// DriverSQLite and DriverPostgres.
var ErrUnsupportedDriver = errors.New("unsupported driver")

// Store is a bo.Repository backed by a single objects table. Property values
// are stored as JSON text keyed by property name and restored through the
// class definitions. Many relationships are not stored; the single
// relationships of their items are.
type Store struct {
	db      *sql.DB
	driver  string
	classes *bo.ClassDefs
	logger  *zap.Logger
	now     func() time.Time
}

var _ bo.Repository = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open connects to dsn with driver, applies pending migrations and returns a
// store that restores objects using classes.
func Open(ctx context.Context, driver, dsn string, classes *bo.ClassDefs, opts ...Option) (*Store, error) {
	if classes == nil {
		classes = bo.NewClassDefs()
	}
	s := &Store{driver: driver, classes: classes, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	db, err := openDB(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to %s: %w", driver, err)
	}
	s.db = db

	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.logger.Debug("store opened", zap.String("driver", driver))
	return s, nil
}

func openDB(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverSQLite:
		db, err := sql.Open(DriverSQLite, dsn)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite: %w", err)
		}
		// SQLite permits a single writer.
		db.SetMaxOpenConns(1)
		return db, nil
	case DriverPostgres:
		cfg, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("parsing postgres dsn: %w", err)
		}
		cfg.Tracer = &pgxotel.QueryTracer{Name: "github.com/andrewh/botest/pkg/store"}
		return stdlib.OpenDB(*cfg), nil
	}
	return nil, fmt.Errorf("%w %q: use %q or %q", ErrUnsupportedDriver, driver, DriverSQLite, DriverPostgres)
}

func (s *Store) migrate() error {
	var (
		dir    string
		target database.Driver
		err    error
	)
	switch s.driver {
	case DriverSQLite:
		dir = "migrations/sqlite"
		target, err = migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	default:
		dir = "migrations/postgres"
		target, err = migratepgx.WithInstance(s.db, &migratepgx.Config{})
	}
	if err != nil {
		return fmt.Errorf("preparing migrations: %w", err)
	}
	src, err := iofs.New(migrations, dir)
	if err != nil {
		return fmt.Errorf("reading migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, s.driver, target)
	if err != nil {
		return fmt.Errorf("preparing migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts obj, or replaces the stored copy of an object with the same
// id, then marks it saved.
func (s *Store) Save(ctx context.Context, obj *bo.Object) error {
	props, err := encodeProps(obj)
	if err != nil {
		return fmt.Errorf("saving %s %s: %w", obj.Class().Name, obj.ID(), err)
	}
	refs, err := encodeRefs(obj)
	if err != nil {
		return fmt.Errorf("saving %s %s: %w", obj.Class().Name, obj.ID(), err)
	}
	query := s.rebind(`INSERT INTO objects (id, class, props, refs, saved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			class = excluded.class,
			props = excluded.props,
			refs = excluded.refs,
			saved_at = excluded.saved_at`)
	if _, err := s.db.ExecContext(ctx, query,
		obj.ID().String(), obj.Class().Name, props, refs, s.now().UTC(),
	); err != nil {
		return fmt.Errorf("saving %s %s: %w", obj.Class().Name, obj.ID(), err)
	}
	obj.MarkSaved()
	s.logger.Debug("saved business object",
		zap.String("class", obj.Class().Name),
		zap.Stringer("id", obj.ID()),
	)
	return nil
}

// Find restores the saved objects of class in save order.
func (s *Store) Find(ctx context.Context, class string) ([]*bo.Object, error) {
	def, err := s.classes.Get(class)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT id, props, refs FROM objects WHERE class = ? ORDER BY seq`), class)
	if err != nil {
		return nil, fmt.Errorf("finding %s: %w", class, err)
	}
	defer func() { _ = rows.Close() }()

	var objs []*bo.Object
	for rows.Next() {
		var id, props, refs string
		if err := rows.Scan(&id, &props, &refs); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", class, err)
		}
		obj, err := decodeObject(def, id, props, refs)
		if err != nil {
			return nil, fmt.Errorf("restoring %s %s: %w", class, id, err)
		}
		objs = append(objs, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("finding %s: %w", class, err)
	}
	return objs, nil
}

// Count returns the number of stored objects of class.
func (s *Store) Count(ctx context.Context, class string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM objects WHERE class = ?`), class).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", class, err)
	}
	return n, nil
}

// rebind rewrites ? placeholders into $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func decodeObject(def *bo.ClassDef, id, props, refs string) (*bo.Object, error) {
	oid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid id: %w", err)
	}
	values, err := decodeProps(def, props)
	if err != nil {
		return nil, err
	}
	related, err := decodeRefs(refs)
	if err != nil {
		return nil, err
	}
	return bo.Restore(def, oid, values, related), nil
}
