package upgrade

import (
	"context"

	"go.uber.org/zap"
)

const (
	logMessageStrategySelectedConstant = "selected installer strategy"
	logFieldStrategyKindConstant       = "strategy"
	logFieldRuleConstant               = "rule"
	logFieldForcedConstant             = "forced"
)

// ServiceDependencies enumerates collaborators required by Service.
type ServiceDependencies struct {
	Executor CommandExecutor
	Logger   *zap.Logger
	Selector *Selector
	Registry *StrategyRegistry
}

// Service selects, constructs and runs the strategy for an install spec.
type Service struct {
	executor CommandExecutor
	logger   *zap.Logger
	selector *Selector
	registry *StrategyRegistry
}

// Plan describes the strategy chosen for one install spec.
type Plan struct {
	Kind     StrategyKind
	RuleName string
	Forced   bool
}

// NewService validates dependencies and fills defaults for the selector and registry.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	selector := dependencies.Selector
	if selector == nil {
		selector = NewDefaultSelector()
	}
	registry := dependencies.Registry
	if registry == nil {
		registry = NewDefaultStrategyRegistry()
	}
	return &Service{executor: dependencies.Executor, logger: logger, selector: selector, registry: registry}, nil
}

// Plan resolves the strategy kind for the install spec. A non-empty forcedKind bypasses the selector.
func (service *Service) Plan(spec InstallSpec, forcedKind StrategyKind) Plan {
	if len(forcedKind) > 0 {
		return Plan{Kind: forcedKind, Forced: true}
	}
	rule := service.selector.SelectRule(spec.InstallCommand)
	return Plan{Kind: rule.Kind, RuleName: rule.Name}
}

// Upgrade plans, constructs and runs the strategy for the install spec.
func (service *Service) Upgrade(executionContext context.Context, spec InstallSpec, forcedKind StrategyKind) (ExecutionResult, error) {
	plan := service.Plan(spec, forcedKind)
	service.logger.Debug(
		logMessageStrategySelectedConstant,
		zap.String(logFieldToolConstant, spec.Name),
		zap.String(logFieldStrategyKindConstant, string(plan.Kind)),
		zap.String(logFieldRuleConstant, plan.RuleName),
		zap.Bool(logFieldForcedConstant, plan.Forced),
	)
	strategy, buildError := service.registry.Build(plan.Kind, spec, StrategyDependencies{Executor: service.executor, Logger: service.logger})
	if buildError != nil {
		return ExecutionResult{Name: spec.Name, Version: spec.TargetVersion, Status: StatusFailed}, buildError
	}
	return Run(executionContext, spec, strategy, service.logger)
}
