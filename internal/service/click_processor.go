package service

import (
	"context"
	"sync"
	"time"

	"github.com/SergeiKhy/linkstack/internal/models"
	"github.com/SergeiKhy/linkstack/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Константы worker pool
const (
	defaultWorkerCount   = 3    // Количество воркеров
	defaultChannelBuffer = 1000 // Размер буфера канала
	maxRetries           = 3    // Максимальное количество попыток записи
	retryBackoff         = 100 * time.Millisecond
)

// ClickProcessor асинхронная запись кликов по ссылкам публичных страниц
type ClickProcessor interface {
	Start()
	Stop()
	// Enqueue ставит событие в очередь и никогда не блокирует запрос
	Enqueue(ctx context.Context, event *models.ClickEvent) error
	GetChannelStats() ChannelStats
}

// clickProcessor реализация процессора кликов с использованием Worker Pool
type clickProcessor struct {
	clickRepo    repository.ClickRepository
	logger       *zap.Logger
	clickChannel chan *models.ClickEvent
	workerCount  int
	backoff      time.Duration
	wg           sync.WaitGroup
	ctx          context.Context
	cancel       context.CancelFunc
}

// NewClickProcessor создаёт новый экземпляр процессора кликов
func NewClickProcessor(clickRepo repository.ClickRepository, logger *zap.Logger) ClickProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &clickProcessor{
		clickRepo:    clickRepo,
		logger:       logger,
		clickChannel: make(chan *models.ClickEvent, defaultChannelBuffer),
		workerCount:  defaultWorkerCount,
		backoff:      retryBackoff,
	}
}

// Start запускает worker pool
func (p *clickProcessor) Start() {
	p.ctx, p.cancel = context.WithCancel(context.Background())

	p.logger.Info("Запуск воркеров процессора кликов", zap.Int("count", p.workerCount))

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop корректно останавливает worker pool
func (p *clickProcessor) Stop() {
	p.logger.Info("Остановка процессора кликов...")
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.logger.Info("Процессор кликов остановлен")
}

func (p *clickProcessor) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("Воркер кликов запущен", zap.Int("id", id))

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("Воркер кликов остановлен", zap.Int("id", id))
			return

		case event, ok := <-p.clickChannel:
			if !ok {
				return
			}
			p.processClick(event)
		}
	}
}

// processClick записывает одно событие клика с повторами и линейной задержкой
func (p *clickProcessor) processClick(event *models.ClickEvent) {
	ctx, cancel := context.WithTimeout(p.ctx, 5*time.Second)
	defer cancel()

	click := &models.Click{
		ID:        uuid.New(),
		LinkID:    event.LinkID,
		UserID:    event.OwnerID,
		Profile:   event.Profile,
		CreatedAt: time.Now(),
	}

	var err error
	for i := 0; i < maxRetries; i++ {
		if err = p.clickRepo.RecordClick(ctx, click); err == nil {
			return
		}
		if i < maxRetries-1 {
			p.logger.Debug("Повторная попытка записи клика",
				zap.String("link_id", event.LinkID.String()),
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(i+1) * p.backoff):
			}
		}
	}

	p.logger.Error("Не удалось записать клик после всех попыток",
		zap.String("link_id", event.LinkID.String()),
		zap.String("profile", event.Profile),
		zap.Error(err),
	)
}

func (p *clickProcessor) Enqueue(ctx context.Context, event *models.ClickEvent) error {
	// Отменённый контекст проверяется до select: иначе при свободном буфере выбор случаен
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case p.clickChannel <- event:
		return nil
	default:
		// Канал заполнен, событие теряется, запрос не блокируется
		p.logger.Warn("Буфер канала кликов заполнен, событие потеряно",
			zap.String("link_id", event.LinkID.String()),
		)
		return nil
	}
}

// GetChannelStats возвращает статистику канала для мониторинга
func (p *clickProcessor) GetChannelStats() ChannelStats {
	return ChannelStats{
		BufferSize:  cap(p.clickChannel),
		BufferUsed:  len(p.clickChannel),
		WorkerCount: p.workerCount,
	}
}

// ChannelStats статистика канала worker pool
type ChannelStats struct {
	BufferSize  int `json:"buffer_size"`  // Общая ёмкость канала
	BufferUsed  int `json:"buffer_used"`  // Текущее использование
	WorkerCount int `json:"worker_count"` // Количество воркеров
}
