package upgrade

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"
)

const (
	unknownStrategyKindTemplateConstant = "unknown strategy kind %q"
	strategyKindRequiredMessageConstant = "strategy kind must not be empty"
	strategyConstructorMessageConstant  = "strategy constructor must not be nil"
)

var (
	// ErrStrategyKindRequired indicates registration without a kind.
	ErrStrategyKindRequired = errors.New(strategyKindRequiredMessageConstant)
	// ErrStrategyConstructorRequired indicates registration without a constructor.
	ErrStrategyConstructorRequired = errors.New(strategyConstructorMessageConstant)
)

// UnknownStrategyKindError reports a kind with no registered constructor.
type UnknownStrategyKindError struct {
	Kind StrategyKind
}

// Error describes the unknown kind.
func (kindError UnknownStrategyKindError) Error() string {
	return fmt.Sprintf(unknownStrategyKindTemplateConstant, kindError.Kind)
}

// StrategyDependencies carries collaborators shared by every strategy.
type StrategyDependencies struct {
	Executor CommandExecutor
	Logger   *zap.Logger
}

// StrategyConstructor builds a strategy for one install spec.
type StrategyConstructor func(spec InstallSpec, dependencies StrategyDependencies) Strategy

// StrategyRegistry maps strategy kinds to constructors.
type StrategyRegistry struct {
	constructors map[StrategyKind]StrategyConstructor
}

// NewStrategyRegistry builds an empty registry.
func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{constructors: map[StrategyKind]StrategyConstructor{}}
}

// NewDefaultStrategyRegistry builds a registry with the npm, pip and shell strategies.
func NewDefaultStrategyRegistry() *StrategyRegistry {
	registry := NewStrategyRegistry()
	registry.constructors[StrategyKindNpm] = func(spec InstallSpec, dependencies StrategyDependencies) Strategy {
		return NewNpmStrategy(spec, dependencies)
	}
	registry.constructors[StrategyKindPip] = func(spec InstallSpec, dependencies StrategyDependencies) Strategy {
		return NewPipStrategy(spec, dependencies)
	}
	registry.constructors[StrategyKindShell] = func(spec InstallSpec, dependencies StrategyDependencies) Strategy {
		return NewShellStrategy(spec, dependencies)
	}
	return registry
}

// Register adds or replaces the constructor for a kind.
func (registry *StrategyRegistry) Register(kind StrategyKind, constructor StrategyConstructor) error {
	if len(kind) == 0 {
		return ErrStrategyKindRequired
	}
	if constructor == nil {
		return ErrStrategyConstructorRequired
	}
	registry.constructors[kind] = constructor
	return nil
}

// Build constructs the strategy registered for kind.
func (registry *StrategyRegistry) Build(kind StrategyKind, spec InstallSpec, dependencies StrategyDependencies) (Strategy, error) {
	constructor, found := registry.constructors[kind]
	if !found {
		return nil, UnknownStrategyKindError{Kind: kind}
	}
	return constructor(spec, dependencies), nil
}

// Supports reports whether kind has a registered constructor.
func (registry *StrategyRegistry) Supports(kind StrategyKind) bool {
	_, found := registry.constructors[kind]
	return found
}

// Kinds lists the registered kinds in lexical order.
func (registry *StrategyRegistry) Kinds() []StrategyKind {
	kinds := make([]StrategyKind, 0, len(registry.constructors))
	for kind := range registry.constructors {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	return kinds
}
