package upgrade

import (
	"strings"
)

// StrategyKind identifies a concrete installer strategy.
type StrategyKind string

// Known strategy kinds.
const (
	StrategyKindNpm   StrategyKind = StrategyKind("npm")
	StrategyKindPip   StrategyKind = StrategyKind("pip")
	StrategyKindShell StrategyKind = StrategyKind("shell")
)

const (
	npmRuleNameConstant           = "npm-install"
	curlPipeShellRuleNameConstant = "curl-pipe-shell"
	defaultRuleNameConstant       = "default"
	npmTokenConstant              = "npm"
	installTokenConstant          = "install"
	curlTokenConstant             = "curl"
)

var curlPipeShellMarkers = []string{"| sh", "|bash", "| sh -"}

// SelectionRule maps a normalized (lowercased) install command to a strategy kind.
type SelectionRule struct {
	Name    string
	Matches func(normalizedCommand string) bool
	Kind    StrategyKind
}

// DefaultSelectionRules returns the built-in rules, fallback last.
func DefaultSelectionRules() []SelectionRule {
	return []SelectionRule{
		{Name: npmRuleNameConstant, Matches: matchesNpmInstall, Kind: StrategyKindNpm},
		{Name: curlPipeShellRuleNameConstant, Matches: matchesCurlPipeShell, Kind: StrategyKindShell},
		fallbackRule(),
	}
}

func fallbackRule() SelectionRule {
	return SelectionRule{
		Name:    defaultRuleNameConstant,
		Matches: func(string) bool { return true },
		Kind:    StrategyKindShell,
	}
}

func matchesNpmInstall(normalizedCommand string) bool {
	return strings.Contains(normalizedCommand, npmTokenConstant) && strings.Contains(normalizedCommand, installTokenConstant)
}

func matchesCurlPipeShell(normalizedCommand string) bool {
	if !strings.Contains(normalizedCommand, curlTokenConstant) {
		return false
	}
	for _, marker := range curlPipeShellMarkers {
		if strings.Contains(normalizedCommand, marker) {
			return true
		}
	}
	return false
}

// Selector picks a strategy kind for an install command. The first matching rule wins.
type Selector struct {
	rules []SelectionRule
}

// NewDefaultSelector builds a Selector with the built-in rules.
func NewDefaultSelector() *Selector {
	return &Selector{rules: DefaultSelectionRules()}
}

// NewSelector builds a Selector that evaluates additionalRules before the built-in rules.
func NewSelector(additionalRules ...SelectionRule) *Selector {
	rules := make([]SelectionRule, 0, len(additionalRules)+3)
	for _, rule := range additionalRules {
		if rule.Matches == nil {
			continue
		}
		rules = append(rules, rule)
	}
	rules = append(rules, DefaultSelectionRules()...)
	return &Selector{rules: rules}
}

// Select returns the strategy kind for the install command.
func (selector *Selector) Select(installCommand string) StrategyKind {
	return selector.SelectRule(installCommand).Kind
}

// SelectRule returns the first rule matching the install command.
func (selector *Selector) SelectRule(installCommand string) SelectionRule {
	normalizedCommand := strings.ToLower(installCommand)
	for _, rule := range selector.rules {
		if rule.Matches(normalizedCommand) {
			return rule
		}
	}
	return fallbackRule()
}
