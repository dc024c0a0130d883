package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SergeiKhy/linkstack/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrUsernameExists  = errors.New("username already exists")
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]models.Profile, error)
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, profile *models.Profile) error
}

type profileRepository struct {
	db *PostgresDB
}

func NewProfileRepository(db *PostgresDB) ProfileRepository {
	return &profileRepository{db: db}
}

const profileColumns = `id, username, display_name, bio, avatar_url, theme_config, created_at`

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	theme, err := json.Marshal(profile.ThemeConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal theme: %w", err)
	}

	query := `
		INSERT INTO profiles (id, username, display_name, bio, avatar_url, theme_config, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err = r.db.Pool.QueryRow(ctx, query,
		profile.ID,
		profile.Username,
		profile.DisplayName,
		profile.Bio,
		profile.AvatarURL,
		theme,
		profile.CreatedAt,
	).Scan(&profile.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameExists
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

func (r *profileRepository) ListByOwner(ctx context.Context, userID uuid.UUID) ([]models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1 ORDER BY created_at ASC`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	profiles := []models.Profile{}
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}

	return profiles, nil
}

func (r *profileRepository) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE LOWER(username) = LOWER($1)`

	profile, err := scanProfile(r.db.Pool.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (r *profileRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM profiles WHERE LOWER(username) = LOWER($1))`

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	theme, err := json.Marshal(profile.ThemeConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal theme: %w", err)
	}

	query := `
		UPDATE profiles
		SET display_name = $3, bio = $4, avatar_url = $5, theme_config = $6
		WHERE id = $1 AND username = $2
	`

	result, err := r.db.Pool.Exec(ctx, query,
		profile.ID,
		profile.Username,
		profile.DisplayName,
		profile.Bio,
		profile.AvatarURL,
		theme,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}

	return nil
}

// scanProfile сканирует строку профиля и валидирует theme_config на границе хранилища
func scanProfile(row pgx.Row) (*models.Profile, error) {
	profile := &models.Profile{}
	var theme []byte
	err := row.Scan(
		&profile.ID,
		&profile.Username,
		&profile.DisplayName,
		&profile.Bio,
		&profile.AvatarURL,
		&theme,
		&profile.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}

	cfg, err := models.ParseThemeConfig(theme)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", profile.Username, err)
	}
	profile.ThemeConfig = cfg

	return profile, nil
}
