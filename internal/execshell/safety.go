package execshell

import (
	"regexp"
	"strings"
)

const (
	redirectLabelPrefixConstant     = "> "
	operatorSpacingConstant         = " "
	bareRootRedirectPatternConstant = "> /"
)

var (
	// chainedCommandExpression matches a control operator followed, after any whitespace, by a denied command.
	chainedCommandExpression = regexp.MustCompile(`(\|\||&&|[|;&])\s*(rm|curl|wget|sudo|su)(?:\s|$)`)

	// protectedRedirectExpression matches >, >> or >| into /etc/ or /root/, with any whitespace and an optional quote.
	protectedRedirectExpression = regexp.MustCompile(`(?:>>?|>\|)\s*["']?(/etc/|/root/)`)

	// bareRootRedirectExpression matches a redirection whose target is the filesystem root itself.
	bareRootRedirectExpression = regexp.MustCompile(`(?:>>?|>\|)\s*["']?/["']?(?:\s|$|[;&|])`)
)

// SafetyGuard screens shell-bound command lines against a fixed denylist.
type SafetyGuard struct {
	additionalPatterns []string
}

// NewSafetyGuard builds the default denylist extended with additional substrings.
func NewSafetyGuard(additionalPatterns []string) *SafetyGuard {
	sanitizedPatterns := make([]string, 0, len(additionalPatterns))
	for _, additionalPattern := range additionalPatterns {
		trimmedPattern := strings.ToLower(strings.TrimSpace(additionalPattern))
		if len(trimmedPattern) == 0 {
			continue
		}
		sanitizedPatterns = append(sanitizedPatterns, trimmedPattern)
	}
	return &SafetyGuard{additionalPatterns: sanitizedPatterns}
}

// Inspect returns a label for the first denied pattern found in the command line.
// Built-in rules report a normalized label such as "&& rm" or "> /etc/".
func (guard *SafetyGuard) Inspect(commandLine string) (string, bool) {
	normalizedCommandLine := strings.ToLower(commandLine)
	if submatches := chainedCommandExpression.FindStringSubmatch(normalizedCommandLine); submatches != nil {
		return submatches[1] + operatorSpacingConstant + submatches[2], true
	}
	if submatches := protectedRedirectExpression.FindStringSubmatch(normalizedCommandLine); submatches != nil {
		return redirectLabelPrefixConstant + submatches[1], true
	}
	if bareRootRedirectExpression.MatchString(normalizedCommandLine) {
		return bareRootRedirectPatternConstant, true
	}
	for _, deniedPattern := range guard.additionalPatterns {
		if strings.Contains(normalizedCommandLine, deniedPattern) {
			return deniedPattern, true
		}
	}
	return "", false
}

// Validate converts a denylist match into a CommandSafetyViolationError.
func (guard *SafetyGuard) Validate(commandLine string) error {
	if matchedPattern, denied := guard.Inspect(commandLine); denied {
		return CommandSafetyViolationError{CommandLine: commandLine, Pattern: matchedPattern}
	}
	return nil
}
