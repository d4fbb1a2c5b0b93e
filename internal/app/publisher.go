package app

import (
	"context"

	"github.com/ccmarris/b1td-country-ip-blocking/internal/domain"
	"github.com/ccmarris/b1td-country-ip-blocking/internal/logger"
	"github.com/ccmarris/b1td-country-ip-blocking/internal/ports"
	"golang.org/x/sync/errgroup"
)

// publishConcurrency — максимум одновременных запросов создания списков.
const publishConcurrency = 4

// CollectionPublisher создаёт батчи как именованные custom lists.
// Существующий список с тем же именем не модифицируется (skipped-exists):
// перезапись чужого списка запрещена. Ошибка одного батча не прерывает
// публикацию остальных — результат собирается по каждому батчу.
type CollectionPublisher struct {
	store ports.CollectionStore
	log   *logger.Logger
}

func NewCollectionPublisher(store ports.CollectionStore, log *logger.Logger) *CollectionPublisher {
	return &CollectionPublisher{store: store, log: log}
}

// Publish публикует все батчи и возвращает по одному результату на батч
// в порядке планирования. Ошибки фиксируются в результатах, а не возвращаются:
// частичный успех — штатный исход.
func (p *CollectionPublisher) Publish(ctx context.Context, batches []domain.Batch) domain.PublishSummary {
	results := make([]domain.PublishResult, len(batches))

	// Батчи независимы, создаём параллельно. Горутины не возвращают ошибок,
	// чтобы падение одного батча не отменяло запросы остальных.
	var g errgroup.Group
	g.SetLimit(publishConcurrency)

	for i, b := range batches {
		i, b := i, b
		g.Go(func() error {
			results[i] = p.publishOne(ctx, b)
			return nil
		})
	}
	_ = g.Wait()

	return domain.PublishSummary{Results: results}
}

func (p *CollectionPublisher) publishOne(ctx context.Context, b domain.Batch) domain.PublishResult {
	id, err := p.store.FindCollectionByName(ctx, b.Name)
	if err != nil {
		p.log.Error("custom list lookup failed", "name", b.Name, "error", err)
		return domain.PublishResult{Name: b.Name, Outcome: domain.OutcomeFailed, Err: err}
	}

	if id != "" {
		p.log.Warn("custom list already exists, skipping", "name", b.Name, "id", id)
		return domain.PublishResult{Name: b.Name, Outcome: domain.OutcomeSkippedExists}
	}

	if err := p.store.CreateCollection(ctx, b.Name, b.Items); err != nil {
		p.log.Error("custom list create failed", "name", b.Name, "error", err)
		return domain.PublishResult{Name: b.Name, Outcome: domain.OutcomeFailed, Err: err}
	}

	p.log.Info("custom list created", "name", b.Name, "items", len(b.Items))
	return domain.PublishResult{Name: b.Name, Outcome: domain.OutcomeCreated}
}
