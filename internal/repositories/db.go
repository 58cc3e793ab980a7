package repositories

import (
	"context"
	"errors"
	"fmt"

	"fleetrent/internal/common"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools, so every repository
// runs the same way inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool is a DBTX that can start transactions.
type Pool interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

type scanner interface {
	Scan(dest ...any) error
}

// Stores groups the repositories that take part in a booking unit of work.
type Stores struct {
	Vehicles   VehicleRepository
	Clients    ClientRepository
	Bookings   BookingRepository
	Extensions ExtensionRepository
}

// NewStores binds every repository to db.
func NewStores(db DBTX) Stores {
	return Stores{
		Vehicles:   NewVehicleRepository(db),
		Clients:    NewClientRepository(db),
		Bookings:   NewBookingRepository(db),
		Extensions: NewExtensionRepository(db),
	}
}

// Transactor runs fn against repositories bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(s Stores) error) error
}

type pgTransactor struct {
	db Pool
}

func NewTransactor(db Pool) Transactor {
	return &pgTransactor{db: db}
}

func (t *pgTransactor) WithinTx(ctx context.Context, fn func(s Stores) error) error {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(NewStores(tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return translateError(fmt.Errorf("commit transaction: %w", err), "")
	}
	return nil
}

// Postgres error codes the repositories translate into domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgExclusionViolation  = "23P01"
	pgCheckViolation      = "23514"
)

var constraintFields = map[string]string{
	"vehicles_tenant_registration_key": "registration_number",
	"clients_tenant_id_number_key":     "id_number",
	"clients_tenant_email_key":         "email",
	"bookings_no_overlap":              "dates",
	"bookings_date_order":              "end_date",
	"bookings_price_positive":          "total_price",
}

// translateError maps driver errors onto the domain taxonomy. Unknown errors pass through
// untouched and are treated as infrastructure failures upstream.
func translateError(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return common.NotFoundError(resource)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	field := constraintFields[pgErr.ConstraintName]
	switch pgErr.Code {
	case pgUniqueViolation:
		if field == "" {
			field = resource
		}
		return common.ConflictError(field, "already exists for this account")
	case pgExclusionViolation:
		return common.ConflictError("dates", "vehicle is already booked for the requested dates")
	case pgForeignKeyViolation:
		return common.DependencyError(fmt.Sprintf("%s is referenced by other records", resource))
	case pgCheckViolation:
		if field == "" {
			field = resource
		}
		return common.ValidationError(field, "violates a data constraint")
	}
	return err
}

// expectAffected turns a zero-row write into a not-found error.
func expectAffected(tag pgconn.CommandTag, resource string) error {
	if tag.RowsAffected() == 0 {
		return common.NotFoundError(resource)
	}
	return nil
}
