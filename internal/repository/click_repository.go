package repository

import (
	"context"
	"fmt"

	"github.com/SergeiKhy/linkstack/internal/models"
	"github.com/google/uuid"
)

type ClickRepository interface {
	RecordClick(ctx context.Context, click *models.Click) error
	ListByProfile(ctx context.Context, userID uuid.UUID, profile string) ([]models.Click, error)
}

type clickRepository struct {
	db *PostgresDB
}

func NewClickRepository(db *PostgresDB) ClickRepository {
	return &clickRepository{db: db}
}

func (r *clickRepository) RecordClick(ctx context.Context, click *models.Click) error {
	query := `
		INSERT INTO link_clicks (id, link_id, user_id, profile, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		click.ID,
		click.LinkID,
		click.UserID,
		click.Profile,
		click.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to record click: %w", err)
	}

	return nil
}

func (r *clickRepository) ListByProfile(ctx context.Context, userID uuid.UUID, profile string) ([]models.Click, error) {
	query := `
		SELECT id, link_id, user_id, profile, created_at
		FROM link_clicks
		WHERE user_id = $1 AND profile = $2
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to list clicks: %w", err)
	}
	defer rows.Close()

	clicks := []models.Click{}
	for rows.Next() {
		var c models.Click
		if err := rows.Scan(&c.ID, &c.LinkID, &c.UserID, &c.Profile, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan click: %w", err)
		}
		clicks = append(clicks, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clicks: %w", err)
	}

	return clicks, nil
}
