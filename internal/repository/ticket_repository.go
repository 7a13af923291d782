package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/quote-service/internal/domain"
)

// TicketRepository resolves ticket attributes for quote calculation. Ticket
// intake and triage belong to the ticket subsystem; this service only reads.
type TicketRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, organization_id, ticket_type_id, ticket_severity_id, business_impact_id,
               users_impacted, requester_user_id, title, created_at
        FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.OrganizationID,
		&ticket.TicketTypeID,
		&ticket.TicketSeverityID,
		&ticket.BusinessImpactID,
		&ticket.UsersImpacted,
		&ticket.RequesterID,
		&ticket.Title,
		&ticket.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
