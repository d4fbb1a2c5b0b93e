package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/ccmarris/b1td-country-ip-blocking/internal/domain"
	"github.com/ccmarris/b1td-country-ip-blocking/internal/logger"
	"github.com/ccmarris/b1td-country-ip-blocking/internal/ports"
)

var (
	ErrPolicyNotFound  = errors.New("security policy not found")
	ErrNothingToAttach = errors.New("no custom lists to attach")
)

// PolicyAttacher добавляет block-правила на созданные custom lists
// в существующую security policy. Документ читается и пишется один раз;
// существующие правила и их порядок сохраняются.
type PolicyAttacher struct {
	store ports.PolicyStore
	log   *logger.Logger
}

func NewPolicyAttacher(store ports.PolicyStore, log *logger.Logger) *PolicyAttacher {
	return &PolicyAttacher{store: store, log: log}
}

// Attach дописывает по одному block-правилу на каждое имя списка.
// Вызов с пустым списком имён — нарушение предусловия вызывающей стороны.
// Шаг атомарен на уровне документа: либо одна запись со всеми правилами,
// либо ничего не записано.
func (a *PolicyAttacher) Attach(ctx context.Context, policyName string, listNames []string) error {
	if len(listNames) == 0 {
		return ErrNothingToAttach
	}

	id, err := a.store.FindPolicyByName(ctx, policyName)
	if err != nil {
		return fmt.Errorf("resolve policy %q: %w", policyName, err)
	}
	if id == "" {
		return fmt.Errorf("%w: %q", ErrPolicyNotFound, policyName)
	}

	policy, err := a.store.FetchPolicy(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch policy %q: %w", policyName, err)
	}

	for _, name := range listNames {
		policy.Rules = append(policy.Rules, domain.Rule{
			Action: "action_block",
			Data:   name,
			Type:   "custom_list",
		})
	}

	if err := a.store.UpdatePolicy(ctx, policy); err != nil {
		return fmt.Errorf("update policy %q: %w", policyName, err)
	}

	a.log.Info("custom lists attached to policy", "policy", policyName, "lists", len(listNames))
	return nil
}
