package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ccmarris/b1td-country-ip-blocking/internal/domain"
	"github.com/ccmarris/b1td-country-ip-blocking/internal/domain/batch"
	"github.com/ccmarris/b1td-country-ip-blocking/internal/domain/subnet"
	"github.com/ccmarris/b1td-country-ip-blocking/internal/logger"
	"github.com/ccmarris/b1td-country-ip-blocking/internal/ports"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoCountries       = errors.New("no countries specified")
	ErrInvalidCountry    = errors.New("invalid country code")
	ErrPublisherNotReady = errors.New("collection publisher not configured")
)

// lookupConcurrency — максимум одновременных lookup-запросов по странам.
const lookupConcurrency = 4

// BlockListService — оркестрация конвейера: lookup по странам,
// нормализация подсетей, план батчей, публикация custom lists.
type BlockListService struct {
	lookup      ports.AddressLookup
	partitioner *subnet.Partitioner
	publisher   *CollectionPublisher
	maxItems    int
	log         *logger.Logger
}

func NewBlockListService(
	lookup ports.AddressLookup,
	partitioner *subnet.Partitioner,
	publisher *CollectionPublisher,
	maxItems int,
	log *logger.Logger,
) *BlockListService {
	return &BlockListService{
		lookup:      lookup,
		partitioner: partitioner,
		publisher:   publisher,
		maxItems:    maxItems,
		log:         log,
	}
}

// ParseCountries разбирает строку вида "GB,FR, de" в список кодов стран.
// Коды нормализуются к верхнему регистру. Пустой или неалфавитный токен —
// ошибка входных данных, фатальная для запуска.
func ParseCountries(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, ErrNoCountries
	}

	parts := strings.Split(s, ",")
	countries := make([]string, 0, len(parts))
	for _, part := range parts {
		code := strings.ToUpper(strings.TrimSpace(part))
		if code == "" || !isAlpha(code) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCountry, part)
		}
		countries = append(countries, code)
	}
	return countries, nil
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// CollectAddresses выполняет lookup по каждой стране.
// Запросы независимы и идут параллельно, но итоговый порядок записей
// детерминирован: страны в порядке передачи. Ошибка одной страны
// не прерывает остальные, все ошибки возвращаются списком.
func (s *BlockListService) CollectAddresses(ctx context.Context, countries []string) ([]domain.AddressRecord, []error) {
	perCountry := make([][]domain.AddressRecord, len(countries))
	errsPerCountry := make([]error, len(countries))

	var g errgroup.Group
	g.SetLimit(lookupConcurrency)

	for i, country := range countries {
		i, country := i, country
		g.Go(func() error {
			recs, err := s.lookup.FetchCountryAddresses(ctx, country)
			if err != nil {
				s.log.Error("country lookup failed", "country", country, "error", err)
				errsPerCountry[i] = fmt.Errorf("lookup %s: %w", country, err)
				return nil
			}
			s.log.Debug("country lookup done", "country", country, "subnets", len(recs))
			perCountry[i] = recs
			return nil
		})
	}
	_ = g.Wait()

	records := make([]domain.AddressRecord, 0)
	for _, recs := range perCountry {
		records = append(records, recs...)
	}

	errs := make([]error, 0)
	for _, err := range errsPerCountry {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return records, errs
}

// PublishCustomLists прогоняет записи через нормализацию и план батчей
// и публикует каждый батч отдельным custom list с именем на основе baseName.
// Некорректный CIDR фатален для всего вызова — частичная публикация
// с нарушенными гарантиями размера недопустима.
func (s *BlockListService) PublishCustomLists(
	ctx context.Context,
	baseName string,
	records []domain.AddressRecord,
) (domain.PublishSummary, error) {
	if s.publisher == nil {
		return domain.PublishSummary{}, ErrPublisherNotReady
	}

	items, err := s.partitioner.Partition(records)
	if err != nil {
		return domain.PublishSummary{}, fmt.Errorf("partition subnets: %w", err)
	}

	batches, err := batch.Plan(baseName, items, s.maxItems)
	if err != nil {
		return domain.PublishSummary{}, fmt.Errorf("plan batches: %w", err)
	}

	if len(batches) == 0 {
		s.log.Warn("nothing to publish", "name", baseName)
		return domain.PublishSummary{}, nil
	}

	s.log.Info("publishing custom lists",
		"name", baseName, "items", len(items), "batches", len(batches))

	return s.publisher.Publish(ctx, batches), nil
}
