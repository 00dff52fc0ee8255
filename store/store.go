package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/sygmaprotocol/bridge-indexer/types"
)

var ErrNotFound = errors.New("not_found")

// Writer upserts domain model entities on their natural keys.
type Writer interface {
	UpsertDomain(ctx context.Context, d Domain) error
	UpsertToken(ctx context.Context, t Token) error
	UpsertResource(ctx context.Context, r Resource) error
}

var _ Writer = (*Store)(nil)

type Store struct {
	db *gorm.DB
}

// Open connects to the database behind driver ("sqlite" or "mysql").
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case types.DriverSqlite:
		dialector = sqlite.Open(dsn)
	case types.DriverMysql:
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to open %s database: %w", driver, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Domain{}, &Token{}, &Resource{})
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Transaction runs fn inside a database transaction. The transaction is
// rolled back if fn returns an error or panics.
func (s *Store) Transaction(ctx context.Context, fn func(w Writer) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) UpsertDomain(ctx context.Context, d Domain) error {
	return s.upsert(ctx, &d,
		[]string{"id"},
		[]string{"type", "name", "icon_url", "explorer_url"},
	)
}

// UpsertToken inserts t or updates the row with the same (token_address, domain_id).
// The resource reference is only overwritten when t carries one.
func (s *Store) UpsertToken(ctx context.Context, t Token) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	updates := []string{"decimals", "token_symbol"}
	if t.ResourceID != nil {
		updates = append(updates, "resource_id")
	}
	return s.upsert(ctx, &t,
		[]string{"token_address", "domain_id"},
		updates,
	)
}

func (s *Store) UpsertResource(ctx context.Context, r Resource) error {
	return s.upsert(ctx, &r,
		[]string{"id"},
		[]string{"type"},
	)
}

func (s *Store) upsert(ctx context.Context, value any, conflictKeys, updates []string) error {
	columns := make([]clause.Column, 0, len(conflictKeys))
	for _, key := range conflictKeys {
		columns = append(columns, clause.Column{Name: key})
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   columns,
		DoUpdates: clause.AssignmentColumns(updates),
	}).Create(value).Error
}

func (s *Store) Domains(ctx context.Context) ([]Domain, error) {
	res := make([]Domain, 0)
	err := s.db.WithContext(ctx).Order("id").Find(&res).Error
	return res, err
}

func (s *Store) Domain(ctx context.Context, id string) (res Domain, err error) {
	err = s.db.WithContext(ctx).Where("id = ?", id).First(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrNotFound
	}
	return
}

func (s *Store) Tokens(ctx context.Context) ([]Token, error) {
	res := make([]Token, 0)
	err := s.db.WithContext(ctx).Order("domain_id, token_address").Find(&res).Error
	return res, err
}

func (s *Store) TokensByDomain(ctx context.Context, domainID string) ([]Token, error) {
	res := make([]Token, 0)
	err := s.db.WithContext(ctx).Where("domain_id = ?", domainID).Order("token_address").Find(&res).Error
	return res, err
}

func (s *Store) Resources(ctx context.Context) ([]Resource, error) {
	res := make([]Resource, 0)
	err := s.db.WithContext(ctx).Order("id").Find(&res).Error
	return res, err
}

func (s *Store) Resource(ctx context.Context, id string) (res Resource, err error) {
	err = s.db.WithContext(ctx).Where("id = ?", id).First(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrNotFound
	}
	return
}
