package ports

import (
	"context"

	"github.com/ccmarris/b1td-country-ip-blocking/internal/domain"
)

// PolicyStore — абстракция хранилища security policies удалённого API.
// Документ политики читается и пишется целиком (read-modify-write).
type PolicyStore interface {
	// FindPolicyByName возвращает идентификатор политики
	// или пустую строку, если политики с таким именем нет.
	FindPolicyByName(ctx context.Context, name string) (string, error)
	FetchPolicy(ctx context.Context, id string) (*domain.Policy, error)
	UpdatePolicy(ctx context.Context, policy *domain.Policy) error
}
