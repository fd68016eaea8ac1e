package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	forexScanner "github.com/malusev998/forex-scanner"
)

const MySQLTimeFormat = "2006-01-02 15:04:05"

var ErrNotEnoughBytesInGenerator = errors.New("generator has to provide at least 16 bytes for the id")

type (
	// IDGenerator supplies the raw bytes for row ids. A nil generator
	// falls back to random uuids.
	IDGenerator interface {
		Generate() []byte
	}

	sqlStorage struct {
		ctx         context.Context
		db          *sql.DB
		idGenerator IDGenerator
		tableName   string
	}
)

func NewSQLStorage(ctx context.Context, db *sql.DB, generator IDGenerator, tableName string, migrate bool) (forexScanner.Storage, error) {
	st := &sqlStorage{
		ctx:         ctx,
		db:          db,
		idGenerator: generator,
		tableName:   tableName,
	}

	if migrate {
		if err := st.Migrate(); err != nil {
			return nil, err
		}
	}

	return st, nil
}

func NewMySQLStorage(config MySQLConfig) (forexScanner.Storage, error) {
	db, err := sql.Open("mysql", config.ConnectionString)

	if err != nil {
		return nil, err
	}

	ctx := config.Cxt

	if ctx == nil {
		ctx = context.Background()
	}

	return NewSQLStorage(ctx, db, config.IDGenerator, config.TableName, config.Migrate)
}

func (s *sqlStorage) generateID() (uuid.UUID, error) {
	if s.idGenerator == nil {
		return uuid.New(), nil
	}

	bytes := s.idGenerator.Generate()

	if len(bytes) < 16 {
		return uuid.UUID{}, ErrNotEnoughBytesInGenerator
	}

	return uuid.FromBytes(bytes[:16])
}

func (s *sqlStorage) Store(quotes []forexScanner.Quote) ([]forexScanner.QuoteWithID, error) {
	tx, err := s.db.Begin()

	if err != nil {
		return nil, err
	}

	stmt, err := tx.PrepareContext(
		s.ctx,
		fmt.Sprintf("INSERT INTO %s(id, pair, rate, bid, ask, last_refreshed, created_at) VALUES (?,?,?,?,?,?,?);", s.tableName),
	)

	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	createdAt := time.Now()
	stored := make([]forexScanner.QuoteWithID, 0, len(quotes))

	for _, quote := range quotes {
		id, err := s.generateID()

		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}

		_, err = stmt.ExecContext(
			s.ctx,
			id.String(),
			quote.Pair,
			quote.Rate.String(),
			optionalDecimalString(quote.Bid),
			optionalDecimalString(quote.Ask),
			quote.LastRefreshed,
			createdAt.Format(MySQLTimeFormat),
		)

		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}

		stored = append(stored, forexScanner.QuoteWithID{
			Quote:     quote,
			ID:        id,
			CreatedAt: createdAt,
		})
	}

	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return stored, nil
}

func (s *sqlStorage) GetStorageProviderName() string {
	return string(MySQL)
}

func (s *sqlStorage) Migrate() error {
	_, err := s.db.ExecContext(s.ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s(
			id CHAR(36) NOT NULL PRIMARY KEY,
			pair VARCHAR(16) NOT NULL,
			rate VARCHAR(64) NOT NULL,
			bid VARCHAR(64) NULL,
			ask VARCHAR(64) NULL,
			last_refreshed VARCHAR(64) NOT NULL,
			created_at DATETIME NOT NULL,
			INDEX(pair, created_at)
		);`, s.tableName))

	return err
}

func (s *sqlStorage) Drop() error {
	_, err := s.db.ExecContext(s.ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s;", s.tableName))

	return err
}

func (s *sqlStorage) Close() error {
	return s.db.Close()
}
