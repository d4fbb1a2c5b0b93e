package batch

import (
	"errors"
	"fmt"

	"github.com/ccmarris/b1td-country-ip-blocking/internal/domain"
)

var ErrInvalidMaxItems = errors.New("max items per batch must be positive")

// Plan разбивает последовательность элементов на минимальное число батчей
// размером не более maxItems, без переупорядочивания, потерь и дублей.
// Один батч получает baseName без изменений; несколько — "{baseName}-{index}"
// с индексом от 0 в порядке следования элементов.
// Пустой вход даёт пустой план, это не ошибка.
func Plan(baseName string, items []domain.Item, maxItems int) ([]domain.Batch, error) {
	if maxItems <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMaxItems, maxItems)
	}

	if len(items) == 0 {
		return nil, nil
	}

	if len(items) <= maxItems {
		return []domain.Batch{{Name: baseName, Items: items}}, nil
	}

	batchCount := (len(items) + maxItems - 1) / maxItems
	batches := make([]domain.Batch, 0, batchCount)
	for i := 0; i < batchCount; i++ {
		start := i * maxItems
		end := start + maxItems
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, domain.Batch{
			Name:  fmt.Sprintf("%s-%d", baseName, i),
			Items: items[start:end],
		})
	}

	return batches, nil
}
