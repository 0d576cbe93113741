package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/domain"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/repository"
	"github.com/jackc/pgx/v5"
)

const donationColumns = `id, donor_id, amount, currency, fund, method, status,
	reference, note, given_at, created_at, updated_at`

type DonationRepository struct {
	db *DB
}

func NewDonationRepository(db *DB) *DonationRepository {
	return &DonationRepository{db: db}
}

func (r *DonationRepository) Create(ctx context.Context, donation *domain.Donation) (*domain.Donation, error) {
	query := `
		INSERT INTO donations (donor_id, amount, currency, fund, method, status, reference, note, given_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + donationColumns

	row := r.db.q(ctx).QueryRow(ctx, query,
		donation.DonorID,
		donation.Amount,
		donation.Currency,
		donation.Fund,
		donation.Method,
		donation.Status,
		donation.Reference,
		donation.Note,
		donation.GivenAt,
	)
	return scanDonation(row)
}

func (r *DonationRepository) GetByID(ctx context.Context, id string) (*domain.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE id = $1`
	return scanDonation(r.db.q(ctx).QueryRow(ctx, query, id))
}

func (r *DonationRepository) List(ctx context.Context, input repository.ListDonationsInput) ([]*domain.Donation, error) {
	args := []any{}
	where := []string{"TRUE"}

	if input.DonorID != "" {
		args = append(args, input.DonorID)
		where = append(where, fmt.Sprintf("donor_id = $%d", len(args)))
	}
	if input.Fund != "" {
		args = append(args, input.Fund)
		where = append(where, fmt.Sprintf("fund = $%d", len(args)))
	}
	if input.Status != "" {
		args = append(args, input.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if input.From != nil {
		args = append(args, *input.From)
		where = append(where, fmt.Sprintf("given_at >= $%d", len(args)))
	}
	if input.To != nil {
		args = append(args, *input.To)
		where = append(where, fmt.Sprintf("given_at < $%d", len(args)))
	}
	if input.CursorTime != nil {
		args = append(args, *input.CursorTime, input.CursorID)
		where = append(where, fmt.Sprintf("(given_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}
	args = append(args, input.Limit)

	query := fmt.Sprintf(`
		SELECT %s FROM donations
		WHERE %s
		ORDER BY given_at DESC, id DESC
		LIMIT $%d`,
		donationColumns, strings.Join(where, " AND "), len(args))

	rows, err := r.db.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	defer rows.Close()

	var donations []*domain.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		donations = append(donations, d)
	}
	return donations, rows.Err()
}

func (r *DonationRepository) Summarize(ctx context.Context, from, to time.Time) ([]domain.FundTotal, error) {
	rows, err := r.db.q(ctx).Query(ctx, `
		SELECT fund, COUNT(*), COALESCE(SUM(amount), 0)
		FROM   donations
		WHERE  status   = 'completed'
		  AND  given_at >= $1
		  AND  given_at <  $2
		GROUP BY fund
		ORDER BY fund`, from, to)
	if err != nil {
		return nil, fmt.Errorf("summarize donations: %w", err)
	}
	defer rows.Close()

	var totals []domain.FundTotal
	for rows.Next() {
		var t domain.FundTotal
		if err := rows.Scan(&t.Fund, &t.Count, &t.Amount); err != nil {
			return nil, fmt.Errorf("scan fund total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func scanDonation(row rowScanner) (*domain.Donation, error) {
	var d domain.Donation
	err := row.Scan(
		&d.ID, &d.DonorID, &d.Amount, &d.Currency, &d.Fund, &d.Method,
		&d.Status, &d.Reference, &d.Note, &d.GivenAt,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDonationNotFound
		}
		return nil, fmt.Errorf("scan donation: %w", err)
	}
	return &d, nil
}
