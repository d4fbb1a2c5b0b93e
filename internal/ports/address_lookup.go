package ports

import (
	"context"

	"github.com/ccmarris/b1td-country-ip-blocking/internal/domain"
)

// AddressLookup — абстракция lookup-сервиса подсетей по коду страны.
type AddressLookup interface {
	FetchCountryAddresses(ctx context.Context, country string) ([]domain.AddressRecord, error)
}
