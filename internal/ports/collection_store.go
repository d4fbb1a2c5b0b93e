package ports

import (
	"context"

	"github.com/ccmarris/b1td-country-ip-blocking/internal/domain"
)

// CollectionStore — абстракция хранилища custom lists удалённого API.
type CollectionStore interface {
	// FindCollectionByName возвращает идентификатор списка
	// или пустую строку, если списка с таким именем нет.
	FindCollectionByName(ctx context.Context, name string) (string, error)
	CreateCollection(ctx context.Context, name string, items []domain.Item) error
}
