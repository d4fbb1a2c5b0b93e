package b1client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ccmarris/b1td-country-ip-blocking/internal/config"
	"github.com/ccmarris/b1td-country-ip-blocking/internal/domain"
	"github.com/ccmarris/b1td-country-ip-blocking/internal/ports"
	"github.com/google/uuid"
)

// Проверка реализации портов на этапе компиляции.
var (
	_ ports.AddressLookup   = (*Client)(nil)
	_ ports.CollectionStore = (*Client)(nil)
	_ ports.PolicyStore     = (*Client)(nil)
)

var (
	ErrEmptyBaseURL    = errors.New("empty API base URL")
	ErrCountryNotFound = errors.New("country not found")
)

// APIError — неуспешный ответ API. Статус и тело сохраняются как есть
// для диагностики оператором.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Body)
}

const (
	countryIPsPath       = "/api/atcfw/v1/country_ips"
	namedListsPath       = "/api/atcfw/v1/named_lists"
	securityPoliciesPath = "/api/atcfw/v1/security_policies"
)

// Client — HTTP-клиент BloxOne Threat Defense API.
// Реализует порты AddressLookup, CollectionStore и PolicyStore.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	requestID  string
}

// New создает клиента BloxOne TD API.
// Таймаут транспорта берётся из конфига и ограничивает каждый вызов.
func New(cfg *config.API) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrEmptyBaseURL
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		requestID:  uuid.NewString(),
	}, nil
}

// FetchCountryAddresses возвращает подсети, привязанные к коду страны.
func (c *Client) FetchCountryAddresses(ctx context.Context, country string) ([]domain.AddressRecord, error) {
	query := url.Values{"country": []string{country}}

	var resp struct {
		CountryIP []domain.AddressRecord `json:"country_ip"`
	}
	if err := c.do(ctx, http.MethodGet, countryIPsPath, query, nil, &resp); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %q", ErrCountryNotFound, country)
		}
		return nil, fmt.Errorf("fetch country %q: %w", country, err)
	}

	return resp.CountryIP, nil
}

// FindCollectionByName возвращает идентификатор named list по имени
// или пустую строку, если списка нет. Фильтрация по имени на стороне клиента.
func (c *Client) FindCollectionByName(ctx context.Context, name string) (string, error) {
	var resp struct {
		Results []struct {
			ID   json.Number `json:"id"`
			Name string      `json:"name"`
		} `json:"results"`
	}
	if err := c.do(ctx, http.MethodGet, namedListsPath, nil, nil, &resp); err != nil {
		return "", fmt.Errorf("list named lists: %w", err)
	}

	for _, lst := range resp.Results {
		if lst.Name == name {
			return lst.ID.String(), nil
		}
	}
	return "", nil
}

// CreateCollection создает named list типа custom_list с переданными элементами.
func (c *Client) CreateCollection(ctx context.Context, name string, items []domain.Item) error {
	type describedItem struct {
		Item        string `json:"item"`
		Description string `json:"description"`
	}

	described := make([]describedItem, 0, len(items))
	for _, item := range items {
		described = append(described, describedItem{Item: item.Value, Description: item.Label})
	}

	body := struct {
		Name           string          `json:"name"`
		Type           string          `json:"type"`
		ItemsDescribed []describedItem `json:"items_described"`
	}{
		Name:           name,
		Type:           "custom_list",
		ItemsDescribed: described,
	}

	if err := c.do(ctx, http.MethodPost, namedListsPath, nil, body, nil); err != nil {
		return fmt.Errorf("create named list %q: %w", name, err)
	}
	return nil
}

// FindPolicyByName возвращает идентификатор security policy по имени
// или пустую строку, если политики нет.
func (c *Client) FindPolicyByName(ctx context.Context, name string) (string, error) {
	var resp struct {
		Results []struct {
			ID   json.Number `json:"id"`
			Name string      `json:"name"`
		} `json:"results"`
	}
	if err := c.do(ctx, http.MethodGet, securityPoliciesPath, nil, nil, &resp); err != nil {
		return "", fmt.Errorf("list security policies: %w", err)
	}

	for _, p := range resp.Results {
		if p.Name == name {
			return p.ID.String(), nil
		}
	}
	return "", nil
}

// FetchPolicy читает документ security policy целиком.
// Поля, кроме правил, сохраняются в Extra как есть для записи обратно.
func (c *Client) FetchPolicy(ctx context.Context, id string) (*domain.Policy, error) {
	var resp struct {
		Results map[string]json.RawMessage `json:"results"`
	}
	if err := c.do(ctx, http.MethodGet, securityPoliciesPath+"/"+id, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch policy %s: %w", id, err)
	}

	policy := &domain.Policy{
		ID:    id,
		Extra: resp.Results,
	}
	if raw, ok := resp.Results["name"]; ok {
		if err := json.Unmarshal(raw, &policy.Name); err != nil {
			return nil, fmt.Errorf("decode policy %s name: %w", id, err)
		}
	}
	if raw, ok := resp.Results["rules"]; ok {
		if err := json.Unmarshal(raw, &policy.Rules); err != nil {
			return nil, fmt.Errorf("decode policy %s rules: %w", id, err)
		}
		delete(policy.Extra, "rules")
	}

	return policy, nil
}

// UpdatePolicy пишет документ security policy обратно целиком.
func (c *Client) UpdatePolicy(ctx context.Context, policy *domain.Policy) error {
	rules, err := json.Marshal(policy.Rules)
	if err != nil {
		return fmt.Errorf("encode policy %s rules: %w", policy.ID, err)
	}

	doc := make(map[string]json.RawMessage, len(policy.Extra)+1)
	for k, v := range policy.Extra {
		doc[k] = v
	}
	doc["rules"] = rules

	if err := c.do(ctx, http.MethodPut, securityPoliciesPath+"/"+policy.ID, nil, doc, nil); err != nil {
		return fmt.Errorf("update policy %s: %w", policy.ID, err)
	}
	return nil
}

// do выполняет один вызов API без повторов.
// Неуспешный статус превращается в *APIError с телом ответа как есть.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("X-Request-ID", c.requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
