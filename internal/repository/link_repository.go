package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SergeiKhy/linkstack/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrLinkNotFound = errors.New("link not found")

type LinkRepository interface {
	Create(ctx context.Context, link *models.Link) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Link, error)
	ListByProfile(ctx context.Context, userID uuid.UUID, profile string) ([]models.Link, error)
	ListActiveByProfile(ctx context.Context, userID uuid.UUID, profile string) ([]models.Link, error)
	Update(ctx context.Context, link *models.Link) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	// ApplyPositions атомарно записывает is_active/position для набора ссылок одного профиля
	ApplyPositions(ctx context.Context, userID uuid.UUID, profile string, updates []models.PositionUpdate) error
}

type linkRepository struct {
	db *PostgresDB
}

func NewLinkRepository(db *PostgresDB) LinkRepository {
	return &linkRepository{db: db}
}

const linkColumns = `id, user_id, profile, title, url, icon, is_active, position, created_at`

func (r *linkRepository) Create(ctx context.Context, link *models.Link) error {
	query := `
		INSERT INTO links (id, user_id, profile, title, url, icon, is_active, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, NOW()))
		RETURNING created_at
	`

	// Нулевое время не должно перекрывать DEFAULT NOW()
	var createdAt *time.Time
	if !link.CreatedAt.IsZero() {
		createdAt = &link.CreatedAt
	}

	err := r.db.Pool.QueryRow(ctx, query,
		link.ID,
		link.UserID,
		link.Profile,
		link.Title,
		link.URL,
		link.Icon,
		link.IsActive,
		link.Position,
		createdAt,
	).Scan(&link.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create link: %w", err)
	}

	return nil
}

func (r *linkRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = $1`

	link, err := scanLink(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return link, nil
}

func (r *linkRepository) ListByProfile(ctx context.Context, userID uuid.UUID, profile string) ([]models.Link, error) {
	query := `
		SELECT ` + linkColumns + `
		FROM links
		WHERE user_id = $1 AND profile = $2
		ORDER BY position ASC, created_at ASC
	`
	return r.list(ctx, query, userID, profile)
}

func (r *linkRepository) ListActiveByProfile(ctx context.Context, userID uuid.UUID, profile string) ([]models.Link, error) {
	query := `
		SELECT ` + linkColumns + `
		FROM links
		WHERE user_id = $1 AND profile = $2 AND is_active = TRUE
		ORDER BY position ASC, created_at ASC
	`
	return r.list(ctx, query, userID, profile)
}

func (r *linkRepository) list(ctx context.Context, query string, args ...any) ([]models.Link, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	links := []models.Link{}
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, *link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return links, nil
}

func (r *linkRepository) Update(ctx context.Context, link *models.Link) error {
	query := `
		UPDATE links SET title = $3, url = $4, icon = $5
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.db.Pool.Exec(ctx, query, link.ID, link.UserID, link.Title, link.URL, link.Icon)
	if err != nil {
		return fmt.Errorf("failed to update link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}

	return nil
}

func (r *linkRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM links WHERE id = $1 AND user_id = $2`

	result, err := r.db.Pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}

	return nil
}

func (r *linkRepository) ApplyPositions(ctx context.Context, userID uuid.UUID, profile string, updates []models.PositionUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE links SET is_active = $4, position = $5
		WHERE user_id = $1 AND profile = $2 AND id = $3
	`

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(query, userID, profile, u.ID, u.IsActive, u.Position)
	}

	results := tx.SendBatch(ctx, batch)
	for range updates {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return fmt.Errorf("failed to update link position: %w", err)
		}
		// Вся пачка откатывается, если хотя бы одна ссылка не найдена
		if tag.RowsAffected() == 0 {
			results.Close()
			return ErrLinkNotFound
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit positions: %w", err)
	}

	return nil
}

func scanLink(row pgx.Row) (*models.Link, error) {
	link := &models.Link{}
	err := row.Scan(
		&link.ID,
		&link.UserID,
		&link.Profile,
		&link.Title,
		&link.URL,
		&link.Icon,
		&link.IsActive,
		&link.Position,
		&link.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan link: %w", err)
	}
	return link, nil
}
