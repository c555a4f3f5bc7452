package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"inkpress/api/internal/models"
)

var ErrTransactionNotFound = errors.New("transaction not found")

type TransactionRepository struct {
	pool *pgxpool.Pool
}

func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `reference, user_id, manuscript_id, channel, amount_minor, currency, payer_email, payer_phone, description, status, gateway_message, created_at, updated_at, settled_at`

// Insert writes one record per reference. The reference is the idempotency
// key: a duplicate insert is a no-op, never a second row.
func (r *TransactionRepository) Insert(ctx context.Context, tx models.Transaction) error {
	const query = `
		INSERT INTO transactions (
			reference, user_id, manuscript_id, channel, amount_minor, currency,
			payer_email, payer_phone, description, status, gateway_message,
			created_at, updated_at, settled_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			NOW(), NOW(), $12
		)
		ON CONFLICT (reference) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		tx.Reference,
		tx.UserID,
		tx.ManuscriptID,
		tx.Channel,
		tx.AmountMinor,
		tx.Currency,
		tx.PayerEmail,
		tx.PayerPhone,
		tx.Description,
		tx.Status,
		tx.GatewayMessage,
		tx.SettledAt,
	)
	return err
}

func (r *TransactionRepository) GetByReference(ctx context.Context, reference string) (models.Transaction, error) {
	const query = `SELECT ` + transactionColumns + ` FROM transactions WHERE reference = $1`
	var tx models.Transaction
	if err := scanTransaction(r.pool.QueryRow(ctx, query, reference), &tx); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Transaction{}, ErrTransactionNotFound
		}
		return models.Transaction{}, err
	}
	return tx, nil
}

func (r *TransactionRepository) ListByUser(ctx context.Context, userID string, limit int, offset int) ([]models.Transaction, error) {
	const query = `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, userID, limit, offset)
}

func (r *TransactionRepository) List(ctx context.Context, limit int, offset int) ([]models.Transaction, error) {
	const query = `
		SELECT ` + transactionColumns + `
		FROM transactions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	return r.list(ctx, query, limit, offset)
}

// ListUnsettled returns non-terminal transactions older than the cutoff; the
// reconciliation sweep re-verifies each against the gateway.
func (r *TransactionRepository) ListUnsettled(ctx context.Context, olderThan time.Time, limit int) ([]models.Transaction, error) {
	const query = `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE status IN ('pending', 'processing')
		  AND created_at < $1
		ORDER BY created_at ASC
		LIMIT $2
	`
	return r.list(ctx, query, olderThan, limit)
}

func (r *TransactionRepository) UpdateStatus(ctx context.Context, reference string, status models.TransactionStatus, gatewayMessage string, settledAt *time.Time) error {
	const query = `
		UPDATE transactions
		SET status = $2,
		    gateway_message = $3,
		    settled_at = COALESCE($4, settled_at),
		    updated_at = NOW()
		WHERE reference = $1
	`
	cmd, err := r.pool.Exec(ctx, query, reference, status, gatewayMessage, settledAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *TransactionRepository) list(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := scanTransaction(rows, &tx); err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

func scanTransaction(row pgx.Row, tx *models.Transaction) error {
	return row.Scan(
		&tx.Reference,
		&tx.UserID,
		&tx.ManuscriptID,
		&tx.Channel,
		&tx.AmountMinor,
		&tx.Currency,
		&tx.PayerEmail,
		&tx.PayerPhone,
		&tx.Description,
		&tx.Status,
		&tx.GatewayMessage,
		&tx.CreatedAt,
		&tx.UpdatedAt,
		&tx.SettledAt,
	)
}
