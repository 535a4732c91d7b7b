package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func (r *PaymentRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *PaymentRepository) CreateSession(ctx context.Context, entity *CheckoutSessionEntity) error {
	query := `INSERT INTO checkout_session (remote_id, order_number, amount, currency, capture, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query, entity.RemoteID, entity.OrderNumber, entity.Amount,
		entity.Currency, entity.Capture, entity.CreatedAt)
	return errors.Wrap(err, "inserting checkout session")
}

func (r *PaymentRepository) SelectSessionByRemoteID(ctx context.Context, remoteID string) (*CheckoutSessionEntity, error) {
	query := `SELECT remote_id, order_number, amount, currency, capture, created_at, consumed_at
	          FROM checkout_session WHERE remote_id = $1`
	row := r.pool.QueryRow(ctx, query, remoteID)

	var entity CheckoutSessionEntity
	err := row.Scan(&entity.RemoteID, &entity.OrderNumber, &entity.Amount, &entity.Currency,
		&entity.Capture, &entity.CreatedAt, &entity.ConsumedAt)
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// ConsumeSession marks the session used so a replayed return cannot run
// the lifecycle twice.
func (r *PaymentRepository) ConsumeSession(ctx context.Context, remoteID string) error {
	query := `UPDATE checkout_session SET consumed_at = $2 WHERE remote_id = $1 AND consumed_at IS NULL`
	tag, err := r.pool.Exec(ctx, query, remoteID, time.Now())
	if err != nil {
		return errors.Wrap(err, "consuming checkout session")
	}
	if tag.RowsAffected() == 0 {
		return errors.Errorf("checkout session %s already consumed", remoteID)
	}
	return nil
}

func (r *PaymentRepository) Create(ctx context.Context, entity *PaymentEntity) error {
	query := `INSERT INTO payment (id, order_number, amount, refunded_amount, currency, state, remote_id, remote_state, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	now := time.Now()
	entity.CreatedAt = now
	entity.UpdatedAt = now
	_, err := r.pool.Exec(ctx, query, entity.ID, entity.OrderNumber, entity.Amount, entity.RefundedAmount,
		entity.Currency, entity.State, entity.RemoteID, entity.RemoteState, entity.CreatedAt, entity.UpdatedAt)
	return errors.Wrap(err, "inserting payment")
}

func (r *PaymentRepository) SelectByID(ctx context.Context, id uuid.UUID) (*PaymentEntity, error) {
	return r.selectOne(ctx, r.pool, `SELECT `+paymentColumns+` FROM payment WHERE id = $1`, id)
}

// SelectByRemoteID returns all payments created from one remote
// transaction; partial captures split a payment, so there can be more
// than one.
func (r *PaymentRepository) SelectByRemoteID(ctx context.Context, remoteID string) ([]*PaymentEntity, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+paymentColumns+` FROM payment WHERE remote_id = $1`, remoteID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting payments by remote id")
	}
	defer rows.Close()

	var entities []*PaymentEntity
	for rows.Next() {
		var entity PaymentEntity
		err := rows.Scan(&entity.ID, &entity.OrderNumber, &entity.Amount, &entity.RefundedAmount,
			&entity.Currency, &entity.State, &entity.RemoteID, &entity.RemoteState,
			&entity.CreatedAt, &entity.UpdatedAt)
		if err != nil {
			return nil, err
		}
		entities = append(entities, &entity)
	}
	return entities, rows.Err()
}

// SelectForUpdateByID locks the payment row for the lifetime of tx so
// concurrent capture/refund requests for one payment serialize.
func (r *PaymentRepository) SelectForUpdateByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*PaymentEntity, error) {
	return r.selectOne(ctx, tx, `SELECT `+paymentColumns+` FROM payment WHERE id = $1 FOR UPDATE`, id)
}

const paymentColumns = `id, order_number, amount, refunded_amount, currency, state, remote_id, remote_state, created_at, updated_at`

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *PaymentRepository) selectOne(ctx context.Context, q queryRower, query string, id uuid.UUID) (*PaymentEntity, error) {
	row := q.QueryRow(ctx, query, id)

	var entity PaymentEntity
	err := row.Scan(&entity.ID, &entity.OrderNumber, &entity.Amount, &entity.RefundedAmount,
		&entity.Currency, &entity.State, &entity.RemoteID, &entity.RemoteState,
		&entity.CreatedAt, &entity.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// Update writes back state, amounts and remote state inside tx.
func (r *PaymentRepository) Update(ctx context.Context, tx pgx.Tx, entity *PaymentEntity) error {
	query := `UPDATE payment SET amount = $2, refunded_amount = $3, state = $4, remote_state = $5, updated_at = $6
	          WHERE id = $1`
	entity.UpdatedAt = time.Now()
	_, err := tx.Exec(ctx, query, entity.ID, entity.Amount, entity.RefundedAmount,
		entity.State, entity.RemoteState, entity.UpdatedAt)
	return errors.Wrap(err, "updating payment")
}

// CreateInTx inserts a payment inside tx; used when a partial capture
// splits a payment in two.
func (r *PaymentRepository) CreateInTx(ctx context.Context, tx pgx.Tx, entity *PaymentEntity) error {
	query := `INSERT INTO payment (id, order_number, amount, refunded_amount, currency, state, remote_id, remote_state, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	now := time.Now()
	entity.CreatedAt = now
	entity.UpdatedAt = now
	_, err := tx.Exec(ctx, query, entity.ID, entity.OrderNumber, entity.Amount, entity.RefundedAmount,
		entity.Currency, entity.State, entity.RemoteID, entity.RemoteState, entity.CreatedAt, entity.UpdatedAt)
	return errors.Wrap(err, "inserting payment")
}
