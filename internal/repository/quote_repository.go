package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/quote-service/internal/domain"
)

const quoteColumns = `id, ticket_id, version, estimated_hours_min, estimated_hours_max,
               hourly_rate, fixed_cost, effort_level, confidence_level, resolution_multiplier,
               created_by_staff_id, created_at`

// QuoteRepository is the durable, versioned quote store. Historical versions
// are never deleted; the current quote for a ticket is the highest version.
type QuoteRepository interface {
	CreateInitial(ctx context.Context, quote *domain.Quote) error
	ApplyUpdate(ctx context.Context, next *domain.Quote, revisions []domain.QuoteDetailRevision) error
	GetByID(ctx context.Context, id string) (*domain.Quote, error)
	GetCurrent(ctx context.Context, ticketID string) (*domain.Quote, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Quote, error)
	ListRevisions(ctx context.Context, quoteID string) ([]domain.QuoteDetailRevision, error)
}

type quoteRepository struct {
	pool *pgxpool.Pool
}

// NewQuoteRepository instantiates repository.
func NewQuoteRepository(pool *pgxpool.Pool) QuoteRepository {
	return &quoteRepository{pool: pool}
}

// CreateInitial persists version 1 for a ticket. The unique (ticket_id,
// version) index rejects a second initial quote even under a race.
func (r *quoteRepository) CreateInitial(ctx context.Context, quote *domain.Quote) error {
	const query = `
        INSERT INTO quotes (ticket_id, version, estimated_hours_min, estimated_hours_max,
            hourly_rate, fixed_cost, effort_level, confidence_level, resolution_multiplier, created_by_staff_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		quote.TicketID,
		quote.Version,
		quote.EstimatedHoursMinimum,
		quote.EstimatedHoursMaximum,
		quote.HourlyRate,
		quote.FixedCost,
		quote.EffortLevel,
		quote.ConfidenceLevel,
		quote.ResolutionMultiplier,
		quote.CreatedByID,
	).Scan(&quote.ID, &quote.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateInitialQuote
	}
	return err
}

// ApplyUpdate atomically persists the next quote version together with its
// revision rows. The write is rejected with ErrStaleQuoteVersion when the
// store's current version no longer matches the version the caller based its
// changes on; the losing editor must re-read and retry.
func (r *quoteRepository) ApplyUpdate(ctx context.Context, next *domain.Quote, revisions []domain.QuoteDetailRevision) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var current int
	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM quotes WHERE ticket_id=$1`,
		next.TicketID,
	).Scan(&current); err != nil {
		return err
	}
	if current != next.Version-1 {
		return domain.ErrStaleQuoteVersion
	}

	const insertQuote = `
        INSERT INTO quotes (ticket_id, version, estimated_hours_min, estimated_hours_max,
            hourly_rate, fixed_cost, effort_level, confidence_level, resolution_multiplier, created_by_staff_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at`
	err = tx.QueryRow(ctx, insertQuote,
		next.TicketID,
		next.Version,
		next.EstimatedHoursMinimum,
		next.EstimatedHoursMaximum,
		next.HourlyRate,
		next.FixedCost,
		next.EffortLevel,
		next.ConfidenceLevel,
		next.ResolutionMultiplier,
		next.CreatedByID,
	).Scan(&next.ID, &next.CreatedAt)
	if isUniqueViolation(err) {
		// Concurrent writer inserted the same version between the check and
		// the insert.
		return domain.ErrStaleQuoteVersion
	}
	if err != nil {
		return err
	}

	const insertRevision = `
        INSERT INTO quote_detail_revisions (quote_id, field_name, old_value, new_value, reason, changed_by_staff_id, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id`
	for i := range revisions {
		revisions[i].QuoteID = next.ID
		revisions[i].CreatedAt = next.CreatedAt
		if err := tx.QueryRow(ctx, insertRevision,
			revisions[i].QuoteID,
			revisions[i].FieldName,
			revisions[i].OldValue,
			revisions[i].NewValue,
			revisions[i].Reason,
			revisions[i].ChangedByID,
			revisions[i].CreatedAt,
		).Scan(&revisions[i].ID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *quoteRepository) GetByID(ctx context.Context, id string) (*domain.Quote, error) {
	const query = `SELECT ` + quoteColumns + ` FROM quotes WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *quoteRepository) GetCurrent(ctx context.Context, ticketID string) (*domain.Quote, error) {
	const query = `SELECT ` + quoteColumns + `
        FROM quotes WHERE ticket_id=$1 ORDER BY version DESC LIMIT 1`
	return r.fetchSingle(ctx, query, ticketID)
}

func (r *quoteRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Quote, error) {
	var quote domain.Quote
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&quote.ID,
		&quote.TicketID,
		&quote.Version,
		&quote.EstimatedHoursMinimum,
		&quote.EstimatedHoursMaximum,
		&quote.HourlyRate,
		&quote.FixedCost,
		&quote.EffortLevel,
		&quote.ConfidenceLevel,
		&quote.ResolutionMultiplier,
		&quote.CreatedByID,
		&quote.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *quoteRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Quote, error) {
	const query = `SELECT ` + quoteColumns + `
        FROM quotes WHERE ticket_id=$1 ORDER BY version ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Quote
	for rows.Next() {
		var quote domain.Quote
		if err := rows.Scan(
			&quote.ID,
			&quote.TicketID,
			&quote.Version,
			&quote.EstimatedHoursMinimum,
			&quote.EstimatedHoursMaximum,
			&quote.HourlyRate,
			&quote.FixedCost,
			&quote.EffortLevel,
			&quote.ConfidenceLevel,
			&quote.ResolutionMultiplier,
			&quote.CreatedByID,
			&quote.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, quote)
	}
	return result, rows.Err()
}

func (r *quoteRepository) ListRevisions(ctx context.Context, quoteID string) ([]domain.QuoteDetailRevision, error) {
	const query = `
        SELECT id, quote_id, field_name, old_value, new_value, reason, changed_by_staff_id, created_at
        FROM quote_detail_revisions WHERE quote_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, quoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.QuoteDetailRevision
	for rows.Next() {
		var rev domain.QuoteDetailRevision
		if err := rows.Scan(
			&rev.ID,
			&rev.QuoteID,
			&rev.FieldName,
			&rev.OldValue,
			&rev.NewValue,
			&rev.Reason,
			&rev.ChangedByID,
			&rev.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, rev)
	}
	return result, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
