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

const sermonColumns = `id, title, speaker, series, scripture, summary, media_url, status,
	preached_at, published_at, view_count, created_by, created_at, updated_at`

type SermonRepository struct {
	db *DB
}

func NewSermonRepository(db *DB) *SermonRepository {
	return &SermonRepository{db: db}
}

func (r *SermonRepository) Create(ctx context.Context, sermon *domain.Sermon) (*domain.Sermon, error) {
	query := `
		INSERT INTO sermons (title, speaker, series, scripture, summary, media_url, status, preached_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + sermonColumns

	row := r.db.q(ctx).QueryRow(ctx, query,
		sermon.Title,
		sermon.Speaker,
		sermon.Series,
		sermon.Scripture,
		sermon.Summary,
		sermon.MediaURL,
		sermon.Status,
		sermon.PreachedAt,
		sermon.CreatedBy,
	)
	return scanSermon(row)
}

func (r *SermonRepository) GetByID(ctx context.Context, id string) (*domain.Sermon, error) {
	query := `SELECT ` + sermonColumns + ` FROM sermons WHERE id = $1`
	return scanSermon(r.db.q(ctx).QueryRow(ctx, query, id))
}

func (r *SermonRepository) List(ctx context.Context, input repository.ListSermonsInput) ([]*domain.Sermon, error) {
	args := []any{}
	where := []string{"TRUE"}

	if input.Status != "" {
		args = append(args, input.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if input.Series != "" {
		args = append(args, input.Series)
		where = append(where, fmt.Sprintf("series = $%d", len(args)))
	}
	if input.Speaker != "" {
		args = append(args, input.Speaker)
		where = append(where, fmt.Sprintf("speaker = $%d", len(args)))
	}
	if input.CursorTime != nil {
		args = append(args, *input.CursorTime, input.CursorID)
		where = append(where, fmt.Sprintf("(preached_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}
	args = append(args, input.Limit)

	query := fmt.Sprintf(`
		SELECT %s FROM sermons
		WHERE %s
		ORDER BY preached_at DESC, id DESC
		LIMIT $%d`,
		sermonColumns, strings.Join(where, " AND "), len(args))

	rows, err := r.db.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sermons: %w", err)
	}
	defer rows.Close()

	var sermons []*domain.Sermon
	for rows.Next() {
		s, err := scanSermon(rows)
		if err != nil {
			return nil, err
		}
		sermons = append(sermons, s)
	}
	return sermons, rows.Err()
}

func (r *SermonRepository) Update(ctx context.Context, id string, input repository.UpdateSermonInput) (*domain.Sermon, error) {
	args := []any{id}
	set := []string{"updated_at = NOW()"}

	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if input.Title != nil {
		add("title", *input.Title)
	}
	if input.Speaker != nil {
		add("speaker", *input.Speaker)
	}
	if input.Series != nil {
		add("series", *input.Series)
	}
	if input.Scripture != nil {
		add("scripture", *input.Scripture)
	}
	if input.Summary != nil {
		add("summary", *input.Summary)
	}
	if input.MediaURL != nil {
		add("media_url", *input.MediaURL)
	}
	if input.PreachedAt != nil {
		add("preached_at", *input.PreachedAt)
	}

	query := fmt.Sprintf(`
		UPDATE sermons SET %s
		WHERE id = $1
		RETURNING %s`,
		strings.Join(set, ", "), sermonColumns)

	return scanSermon(r.db.q(ctx).QueryRow(ctx, query, args...))
}

func (r *SermonRepository) Publish(ctx context.Context, id string, at time.Time) error {
	tag, err := r.db.q(ctx).Exec(ctx, `
		UPDATE sermons
		SET    status       = 'published',
		       published_at = $2,
		       updated_at   = NOW()
		WHERE id = $1 AND status = 'draft'`, id, at)
	if err != nil {
		return fmt.Errorf("publish sermon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSermonAlreadyPublished
	}
	return nil
}

func (r *SermonRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.q(ctx).Exec(ctx, `DELETE FROM sermons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sermon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSermonNotFound
	}
	return nil
}

func (r *SermonRepository) IncrementViewCount(ctx context.Context, id string) error {
	_, err := r.db.q(ctx).Exec(ctx, `
		UPDATE sermons SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment view count: %w", err)
	}
	return nil
}

func scanSermon(row rowScanner) (*domain.Sermon, error) {
	var s domain.Sermon
	err := row.Scan(
		&s.ID, &s.Title, &s.Speaker, &s.Series, &s.Scripture, &s.Summary,
		&s.MediaURL, &s.Status, &s.PreachedAt, &s.PublishedAt, &s.ViewCount,
		&s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSermonNotFound
		}
		return nil, fmt.Errorf("scan sermon: %w", err)
	}
	return &s, nil
}
