package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SergeiKhy/linkstack/internal/models"
	"github.com/SergeiKhy/linkstack/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultPublicCacheTTL = 10 * time.Minute

// PublicService публичная страница профиля и учёт посещений и кликов
type PublicService interface {
	GetProfile(ctx context.Context, username string) (*models.PublicProfile, error)
	// TrackVisit возвращает true, если посещение записано
	TrackVisit(ctx context.Context, page *models.PublicProfile, input models.VisitInput) (bool, error)
	// TrackClick возвращает ссылку для редиректа; клик владельца не учитывается
	TrackClick(ctx context.Context, username string, linkID uuid.UUID, viewerID *uuid.UUID) (*models.Link, error)
}

type publicService struct {
	profileRepo repository.ProfileRepository
	linkRepo    repository.LinkRepository
	visitorRepo repository.VisitorRepository
	cacheRepo   repository.CacheRepository
	clicks      ClickProcessor
	cacheTTL    time.Duration
	now         func() time.Time
	logger      *zap.Logger
}

func NewPublicService(
	profileRepo repository.ProfileRepository,
	linkRepo repository.LinkRepository,
	visitorRepo repository.VisitorRepository,
	cacheRepo repository.CacheRepository,
	clicks ClickProcessor,
	cacheTTL time.Duration,
	logger *zap.Logger,
) PublicService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = defaultPublicCacheTTL
	}
	return &publicService{
		profileRepo: profileRepo,
		linkRepo:    linkRepo,
		visitorRepo: visitorRepo,
		cacheRepo:   cacheRepo,
		clicks:      clicks,
		cacheTTL:    cacheTTL,
		now:         time.Now,
		logger:      logger,
	}
}

// GetProfile сначала проверяет кеш, затем собирает страницу из БД
func (s *publicService) GetProfile(ctx context.Context, username string) (*models.PublicProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	page, err := s.cacheRepo.GetPublicProfile(ctx, username)
	if err == nil {
		return page, nil
	}
	if !errors.Is(err, redis.Nil) {
		s.logger.Warn("Ошибка чтения кеша профиля", zap.String("username", username), zap.Error(err))
	}

	profile, err := s.profileRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	links, err := s.linkRepo.ListActiveByProfile(ctx, profile.ID, profile.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to load public links: %w", err)
	}

	page = &models.PublicProfile{Profile: *profile, Links: links}

	if err := s.cacheRepo.SetPublicProfile(ctx, page, s.cacheTTL); err != nil {
		s.logger.Warn("Не удалось закешировать профиль", zap.String("username", username), zap.Error(err))
	}

	return page, nil
}

func (s *publicService) TrackVisit(ctx context.Context, page *models.PublicProfile, input models.VisitInput) (bool, error) {
	owner := page.Profile.ID

	var visitorKey string
	switch {
	case input.ViewerID != nil:
		if *input.ViewerID == owner {
			return false, nil
		}
		visitorKey = input.ViewerID.String()
	case input.AnonymousID != "":
		visitorKey = "anon:" + input.AnonymousID
	default:
		// Без идентификатора дедупликация невозможна
		return false, nil
	}

	pagePath := input.PagePath
	if pagePath == "" {
		pagePath = "/" + page.Profile.Username
	}

	now := s.now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	exists, err := s.visitorRepo.Exists(ctx, owner, pagePath, visitorKey, day)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	info := ParseUserAgent(input.UserAgent)
	visit := &models.Visit{
		ID:         uuid.New(),
		UserID:     owner,
		PagePath:   pagePath,
		Referrer:   input.Referrer,
		Device:     info.Device,
		Browser:    info.Browser,
		OS:         info.OS,
		VisitedBy:  input.ViewerID,
		VisitorKey: visitorKey,
		VisitDay:   day,
		CreatedAt:  now,
	}

	// Уникальный индекс отсекает параллельную вставку того же посещения
	return s.visitorRepo.Insert(ctx, visit)
}

func (s *publicService) TrackClick(ctx context.Context, username string, linkID uuid.UUID, viewerID *uuid.UUID) (*models.Link, error) {
	page, err := s.GetProfile(ctx, username)
	if err != nil {
		return nil, err
	}

	var link *models.Link
	for i := range page.Links {
		if page.Links[i].ID == linkID {
			link = &page.Links[i]
			break
		}
	}
	if link == nil {
		return nil, ErrLinkNotFound
	}

	if viewerID != nil && *viewerID == page.Profile.ID {
		return link, nil
	}

	event := &models.ClickEvent{
		LinkID:  link.ID,
		OwnerID: page.Profile.ID,
		Profile: page.Profile.Username,
	}
	if err := s.clicks.Enqueue(ctx, event); err != nil {
		s.logger.Warn("Клик не поставлен в очередь", zap.String("link_id", linkID.String()), zap.Error(err))
	}

	return link, nil
}
