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

const prayerColumns = `id, requester_id, title, body, category, privacy, status,
	prayer_count, answered_at, testimony, created_at, updated_at`

type PrayerRepository struct {
	db *DB
}

func NewPrayerRepository(db *DB) *PrayerRepository {
	return &PrayerRepository{db: db}
}

func (r *PrayerRepository) Create(ctx context.Context, prayer *domain.Prayer) (*domain.Prayer, error) {
	query := `
		INSERT INTO prayers (requester_id, title, body, category, privacy, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + prayerColumns

	row := r.db.q(ctx).QueryRow(ctx, query,
		prayer.RequesterID,
		prayer.Title,
		prayer.Body,
		prayer.Category,
		prayer.Privacy,
		prayer.Status,
	)
	return scanPrayer(row)
}

func (r *PrayerRepository) GetByID(ctx context.Context, id string) (*domain.Prayer, error) {
	query := `SELECT ` + prayerColumns + ` FROM prayers WHERE id = $1`
	return scanPrayer(r.db.q(ctx).QueryRow(ctx, query, id))
}

func (r *PrayerRepository) List(ctx context.Context, input repository.ListPrayersInput) ([]*domain.Prayer, error) {
	args := []any{}
	where := []string{}

	// Visibility: privacy levels the viewer may see, plus always their
	// own requests.
	visibility := []string{}
	if len(input.Privacies) > 0 {
		args = append(args, input.Privacies)
		visibility = append(visibility, fmt.Sprintf("privacy = ANY($%d)", len(args)))
	}
	if input.OwnerID != "" {
		args = append(args, input.OwnerID)
		visibility = append(visibility, fmt.Sprintf("requester_id = $%d", len(args)))
	}
	if len(visibility) > 0 {
		where = append(where, "("+strings.Join(visibility, " OR ")+")")
	} else {
		where = append(where, "TRUE")
	}

	if input.Status != "" {
		args = append(args, input.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if input.Category != "" {
		args = append(args, input.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if input.CursorTime != nil {
		args = append(args, *input.CursorTime, input.CursorID)
		where = append(where, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}
	args = append(args, input.Limit)

	query := fmt.Sprintf(`
		SELECT %s FROM prayers
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d`,
		prayerColumns, strings.Join(where, " AND "), len(args))

	rows, err := r.db.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list prayers: %w", err)
	}
	defer rows.Close()

	var prayers []*domain.Prayer
	for rows.Next() {
		p, err := scanPrayer(rows)
		if err != nil {
			return nil, err
		}
		prayers = append(prayers, p)
	}
	return prayers, rows.Err()
}

func (r *PrayerRepository) Update(ctx context.Context, id string, input repository.UpdatePrayerInput) (*domain.Prayer, error) {
	args := []any{id}
	set := []string{"updated_at = NOW()"}

	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if input.Title != nil {
		add("title", *input.Title)
	}
	if input.Body != nil {
		add("body", *input.Body)
	}
	if input.Category != nil {
		add("category", *input.Category)
	}
	if input.Privacy != nil {
		add("privacy", *input.Privacy)
	}

	query := fmt.Sprintf(`
		UPDATE prayers SET %s
		WHERE id = $1
		RETURNING %s`,
		strings.Join(set, ", "), prayerColumns)

	return scanPrayer(r.db.q(ctx).QueryRow(ctx, query, args...))
}

func (r *PrayerRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.q(ctx).Exec(ctx, `DELETE FROM prayers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete prayer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPrayerNotFound
	}
	return nil
}

func (r *PrayerRepository) IncrementPrayerCount(ctx context.Context, id string) (int, error) {
	var count int
	err := r.db.q(ctx).QueryRow(ctx, `
		UPDATE prayers
		SET    prayer_count = prayer_count + 1,
		       updated_at   = NOW()
		WHERE id = $1
		RETURNING prayer_count`, id).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrPrayerNotFound
		}
		return 0, fmt.Errorf("increment prayer count: %w", err)
	}
	return count, nil
}

func (r *PrayerRepository) MarkAnswered(ctx context.Context, id string, answeredAt time.Time, testimony *string) error {
	tag, err := r.db.q(ctx).Exec(ctx, `
		UPDATE prayers
		SET    status      = 'answered',
		       answered_at = $2,
		       testimony   = $3,
		       updated_at  = NOW()
		WHERE id = $1 AND status = 'open'`, id, answeredAt, testimony)
	if err != nil {
		return fmt.Errorf("mark answered: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPrayerAlreadyAnswered
	}
	return nil
}

func (r *PrayerRepository) ArchiveAnswered(ctx context.Context, before time.Time) (int, error) {
	tag, err := r.db.q(ctx).Exec(ctx, `
		UPDATE prayers
		SET    status     = 'archived',
		       updated_at = NOW()
		WHERE  status      = 'answered'
		  AND  answered_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("archive answered prayers: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanPrayer(row rowScanner) (*domain.Prayer, error) {
	var p domain.Prayer
	err := row.Scan(
		&p.ID, &p.RequesterID, &p.Title, &p.Body, &p.Category, &p.Privacy,
		&p.Status, &p.PrayerCount, &p.AnsweredAt, &p.Testimony,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPrayerNotFound
		}
		return nil, fmt.Errorf("scan prayer: %w", err)
	}
	return &p, nil
}
