package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/SergeiKhy/linkstack/internal/models"
	"github.com/google/uuid"
)

type VisitorRepository interface {
	Exists(ctx context.Context, ownerID uuid.UUID, pagePath, visitorKey string, day time.Time) (bool, error)
	// Insert возвращает false, если строка уже была записана параллельным запросом
	Insert(ctx context.Context, visit *models.Visit) (bool, error)
	ListByPage(ctx context.Context, ownerID uuid.UUID, pagePath string) ([]models.Visit, error)
}

type visitorRepository struct {
	db *PostgresDB
}

func NewVisitorRepository(db *PostgresDB) VisitorRepository {
	return &visitorRepository{db: db}
}

func (r *visitorRepository) Exists(ctx context.Context, ownerID uuid.UUID, pagePath, visitorKey string, day time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM visitor_analytics
			WHERE user_id = $1 AND page_path = $2 AND visitor_key = $3 AND visit_day = $4
		)
	`

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, query, ownerID, pagePath, visitorKey, day).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check visit: %w", err)
	}
	return exists, nil
}

func (r *visitorRepository) Insert(ctx context.Context, visit *models.Visit) (bool, error) {
	query := `
		INSERT INTO visitor_analytics
			(id, user_id, page_path, referrer, device, browser, os, visited_by, visitor_key, visit_day, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id, page_path, visitor_key, visit_day) DO NOTHING
	`

	result, err := r.db.Pool.Exec(ctx, query,
		visit.ID,
		visit.UserID,
		visit.PagePath,
		visit.Referrer,
		visit.Device,
		visit.Browser,
		visit.OS,
		visit.VisitedBy,
		visit.VisitorKey,
		visit.VisitDay,
		visit.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert visit: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *visitorRepository) ListByPage(ctx context.Context, ownerID uuid.UUID, pagePath string) ([]models.Visit, error) {
	query := `
		SELECT id, user_id, page_path, referrer, device, browser, os, visited_by, visitor_key, visit_day, created_at
		FROM visitor_analytics
		WHERE user_id = $1 AND page_path = $2
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, ownerID, pagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	defer rows.Close()

	visits := []models.Visit{}
	for rows.Next() {
		var v models.Visit
		if err := rows.Scan(
			&v.ID, &v.UserID, &v.PagePath, &v.Referrer, &v.Device, &v.Browser, &v.OS,
			&v.VisitedBy, &v.VisitorKey, &v.VisitDay, &v.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		visits = append(visits, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating visits: %w", err)
	}

	return visits, nil
}
