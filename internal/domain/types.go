package domain

import "encoding/json"

// AddressRecord — одна подсеть, полученная из lookup-сервиса,
// с кодом страны, к которой она привязана.
type AddressRecord struct {
	CIDR    string `json:"cidr"`
	Country string `json:"country"`
}

// Item — элемент custom list после нормализации подсетей.
// Value гарантированно не шире минимального префикса политики разбиения.
type Item struct {
	Value string
	Label string
}

// Batch — порция элементов для загрузки одним custom list,
// размер не превышает лимит remote API.
type Batch struct {
	Name  string
	Items []Item
}

// PublishOutcome представляет исход публикации одного батча.
type PublishOutcome string

const (
	OutcomeCreated       PublishOutcome = "created"
	OutcomeSkippedExists PublishOutcome = "skipped-exists"
	OutcomeFailed        PublishOutcome = "failed"
)

// PublishResult — исход публикации одного батча.
// Err заполнен только для OutcomeFailed.
type PublishResult struct {
	Name    string
	Outcome PublishOutcome
	Err     error
}

// PublishSummary — итог публикации всех батчей, по одному результату на батч,
// в порядке планирования.
type PublishSummary struct {
	Results []PublishResult
}

// CreatedNames возвращает имена реально созданных списков.
// Имена skipped-exists не включаются: содержимое таких списков неизвестно,
// и для привязки к политике они непригодны.
func (s PublishSummary) CreatedNames() []string {
	names := make([]string, 0, len(s.Results))
	for _, r := range s.Results {
		if r.Outcome == OutcomeCreated {
			names = append(names, r.Name)
		}
	}
	return names
}

// FailedCount возвращает количество батчей, завершившихся ошибкой.
func (s PublishSummary) FailedCount() int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome == OutcomeFailed {
			n++
		}
	}
	return n
}

// Rule — одно правило security policy.
type Rule struct {
	Action string `json:"action"`
	Data   string `json:"data"`
	Type   string `json:"type"`
}

// Policy — документ security policy удалённого API.
// Документ читается и пишется целиком: Extra хранит все поля, кроме правил,
// в исходном виде, чтобы запись обратно не теряла незнакомые поля.
type Policy struct {
	ID    string
	Name  string
	Rules []Rule
	Extra map[string]json.RawMessage
}
