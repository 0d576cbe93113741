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

const eventColumns = `id, title, description, event_type, status, starts_at, ends_at,
	location, capacity, registration_deadline, created_by, created_at, updated_at`

const registrationColumns = `id, event_id, user_id, status, registered_at`

type EventRepository struct {
	db *DB
}

func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	query := `
		INSERT INTO events (
			title, description, event_type, status, starts_at, ends_at,
			location, capacity, registration_deadline, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + eventColumns

	row := r.db.q(ctx).QueryRow(ctx, query,
		event.Title,
		event.Description,
		event.EventType,
		event.Status,
		event.StartsAt,
		event.EndsAt,
		event.Location,
		event.Capacity,
		event.RegistrationDeadline,
		event.CreatedBy,
	)
	return scanEvent(row)
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return scanEvent(r.db.q(ctx).QueryRow(ctx, query, id))
}

func (r *EventRepository) List(ctx context.Context, input repository.ListEventsInput) ([]*domain.Event, error) {
	args := []any{}
	where := []string{"TRUE"}

	if input.Status != "" {
		args = append(args, input.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if input.Type != "" {
		args = append(args, input.Type)
		where = append(where, fmt.Sprintf("event_type = $%d", len(args)))
	}
	if input.CursorTime != nil {
		args = append(args, *input.CursorTime, input.CursorID)
		where = append(where, fmt.Sprintf("(starts_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}
	args = append(args, input.Limit)

	query := fmt.Sprintf(`
		SELECT %s FROM events
		WHERE %s
		ORDER BY starts_at DESC, id DESC
		LIMIT $%d`,
		eventColumns, strings.Join(where, " AND "), len(args))

	return r.queryEvents(ctx, query, args...)
}

func (r *EventRepository) ListUpcoming(ctx context.Context, after time.Time, limit int) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + ` FROM events
		WHERE status = 'published' AND starts_at > $1
		ORDER BY starts_at ASC, id ASC
		LIMIT $2`
	return r.queryEvents(ctx, query, after, limit)
}

func (r *EventRepository) Update(ctx context.Context, id string, input repository.UpdateEventInput) (*domain.Event, error) {
	args := []any{id}
	set := []string{"updated_at = NOW()"}

	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if input.Title != nil {
		add("title", *input.Title)
	}
	if input.Description != nil {
		add("description", *input.Description)
	}
	if input.EventType != nil {
		add("event_type", *input.EventType)
	}
	if input.Status != nil {
		add("status", *input.Status)
	}
	if input.StartsAt != nil {
		add("starts_at", *input.StartsAt)
	}
	if input.EndsAt != nil {
		add("ends_at", *input.EndsAt)
	}
	if input.Location != nil {
		add("location", *input.Location)
	}
	if input.Capacity != nil {
		add("capacity", *input.Capacity)
	}
	if input.RegistrationDeadline != nil {
		add("registration_deadline", *input.RegistrationDeadline)
	}

	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $1
		RETURNING %s`,
		strings.Join(set, ", "), eventColumns)

	return scanEvent(r.db.q(ctx).QueryRow(ctx, query, args...))
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.q(ctx).Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *EventRepository) CreateRegistration(ctx context.Context, reg *domain.EventRegistration) (*domain.EventRegistration, error) {
	query := `
		INSERT INTO event_registrations (event_id, user_id, status)
		VALUES ($1, $2, $3)
		RETURNING ` + registrationColumns

	row := r.db.q(ctx).QueryRow(ctx, query, reg.EventID, reg.UserID, reg.Status)
	created, err := scanRegistration(row)
	if err != nil {
		if uniqueViolation(err) {
			return nil, domain.ErrAlreadyRegistered
		}
		return nil, err
	}
	return created, nil
}

func (r *EventRepository) GetRegistration(ctx context.Context, eventID, userID string) (*domain.EventRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM event_registrations
		WHERE event_id = $1 AND user_id = $2`
	return scanRegistration(r.db.q(ctx).QueryRow(ctx, query, eventID, userID))
}

func (r *EventRepository) ListRegistrations(ctx context.Context, eventID string) ([]*domain.EventRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM event_registrations
		WHERE event_id = $1 AND status != 'cancelled'
		ORDER BY registered_at ASC`

	rows, err := r.db.q(ctx).Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []*domain.EventRegistration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *EventRepository) CountActive(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.db.q(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM event_registrations
		WHERE event_id = $1 AND status = 'registered'`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}

func (r *EventRepository) UpdateRegistrationStatus(ctx context.Context, id string, status domain.RegistrationStatus) error {
	tag, err := r.db.q(ctx).Exec(ctx,
		`UPDATE event_registrations SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRegistrationNotFound
	}
	return nil
}

func (r *EventRepository) OldestWaitlisted(ctx context.Context, eventID string) (*domain.EventRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM event_registrations
		WHERE event_id = $1 AND status = 'waitlisted'
		ORDER BY registered_at ASC
		LIMIT 1`
	return scanRegistration(r.db.q(ctx).QueryRow(ctx, query, eventID))
}

func (r *EventRepository) CompletePast(ctx context.Context, before time.Time) (int, error) {
	tag, err := r.db.q(ctx).Exec(ctx, `
		UPDATE events
		SET    status     = 'completed',
		       updated_at = NOW()
		WHERE  status  = 'published'
		  AND  ends_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("complete past events: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *EventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.db.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.EventType, &e.Status,
		&e.StartsAt, &e.EndsAt, &e.Location, &e.Capacity,
		&e.RegistrationDeadline, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	return &e, nil
}

func scanRegistration(row rowScanner) (*domain.EventRegistration, error) {
	var reg domain.EventRegistration
	err := row.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.Status, &reg.RegisteredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("scan registration: %w", err)
	}
	return &reg, nil
}
