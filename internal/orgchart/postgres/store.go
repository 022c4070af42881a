package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/frahmantamala/salesdesk/internal/orgchart"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// Store binds the gorm user repository and the sqlx audit repository to one
// connection pool so a mutation commits users and audit rows together.
type Store struct {
	gdb *gorm.DB
	sdb *sqlx.DB
}

// NewStore expects gdb to be opened on the same *sql.DB that sdb wraps.
func NewStore(gdb *gorm.DB, sdb *sqlx.DB) *Store {
	return &Store{gdb: gdb, sdb: sdb}
}

func (s *Store) Users() orgchart.UserRepository {
	return NewUserRepository(s.gdb)
}

func (s *Store) Audit() orgchart.AuditRepository {
	return NewAuditRepository(s.sdb, s.sdb.DriverName())
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, users orgchart.UserRepository, audit orgchart.AuditRepository) error) error {
	return s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sqlTx, ok := tx.Statement.ConnPool.(*sql.Tx)
		if !ok {
			return fmt.Errorf("unexpected transaction type %T", tx.Statement.ConnPool)
		}
		auditTx := &sqlx.Tx{Tx: sqlTx, Mapper: s.sdb.Mapper}
		return fn(ctx, NewUserRepository(tx), NewAuditRepository(auditTx, s.sdb.DriverName()))
	})
}
