package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/quote-service/internal/domain"
)

// QuoteApprovalRepository stores approval workflow records, one per quote
// version.
type QuoteApprovalRepository interface {
	Create(ctx context.Context, approval *domain.QuoteApproval) error
	GetByQuote(ctx context.Context, quoteID string) (*domain.QuoteApproval, error)
	UpdateStatus(ctx context.Context, id string, status domain.ApprovalStatus, actorID string) error
}

type approvalRepository struct {
	pool *pgxpool.Pool
}

// NewQuoteApprovalRepository builds repository.
func NewQuoteApprovalRepository(pool *pgxpool.Pool) QuoteApprovalRepository {
	return &approvalRepository{pool: pool}
}

func (r *approvalRepository) Create(ctx context.Context, approval *domain.QuoteApproval) error {
	const query = `
        INSERT INTO quote_approvals (quote_id, approval_status, submitted_by_staff_id)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		approval.QuoteID,
		approval.Status,
		approval.SubmittedByID,
	).Scan(&approval.ID, &approval.CreatedAt, &approval.UpdatedAt)
}

func (r *approvalRepository) GetByQuote(ctx context.Context, quoteID string) (*domain.QuoteApproval, error) {
	const query = `
        SELECT id, quote_id, approval_status, submitted_by_staff_id, created_at, updated_at
        FROM quote_approvals WHERE quote_id=$1`
	var approval domain.QuoteApproval
	if err := r.pool.QueryRow(ctx, query, quoteID).Scan(
		&approval.ID,
		&approval.QuoteID,
		&approval.Status,
		&approval.SubmittedByID,
		&approval.CreatedAt,
		&approval.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &approval, nil
}

func (r *approvalRepository) UpdateStatus(ctx context.Context, id string, status domain.ApprovalStatus, actorID string) error {
	const query = `
        UPDATE quote_approvals SET approval_status=$1, submitted_by_staff_id=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, status, actorID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrQuoteNotFound
	}
	return nil
}
