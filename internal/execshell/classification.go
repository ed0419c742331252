package execshell

import (
	"strings"

	"github.com/google/shlex"
)

// shellControlTokens lists the operators that can only be honored by a shell interpreter.
var shellControlTokens = []string{"|", ">", "<", ">>", "<<", "&&", "||", ";", "&"}

// RequiresShell reports whether the command line contains shell control syntax.
func RequiresShell(commandLine string) bool {
	for _, token := range shellControlTokens {
		if strings.Contains(commandLine, token) {
			return true
		}
	}
	return false
}

const (
	commentMarkerRuneConstant = '#'
	escapeRuneConstant        = '\\'
	singleQuoteRuneConstant   = '\''
	doubleQuoteRuneConstant   = '"'
	noQuoteRuneConstant       = rune(0)
)

// SplitArguments splits a command line into argv honoring shell quoting rules.
// A "#" starting a word is kept as a literal argument rather than opening a comment.
func SplitArguments(commandLine string) ([]string, error) {
	if len(strings.TrimSpace(commandLine)) == 0 {
		return nil, ErrEmptyCommand
	}
	arguments, splitError := shlex.Split(escapeCommentMarkers(commandLine))
	if splitError != nil {
		return nil, CommandSplitError{CommandLine: commandLine, Cause: splitError}
	}
	if len(arguments) == 0 {
		return nil, ErrEmptyCommand
	}
	return arguments, nil
}

// escapeCommentMarkers backslash-escapes every unquoted, unescaped "#".
func escapeCommentMarkers(commandLine string) string {
	if !strings.ContainsRune(commandLine, commentMarkerRuneConstant) {
		return commandLine
	}
	var builder strings.Builder
	activeQuote := noQuoteRuneConstant
	escaped := false
	for _, character := range commandLine {
		switch {
		case escaped:
			escaped = false
		case character == escapeRuneConstant && activeQuote != singleQuoteRuneConstant:
			escaped = true
		case activeQuote != noQuoteRuneConstant:
			if character == activeQuote {
				activeQuote = noQuoteRuneConstant
			}
		case character == singleQuoteRuneConstant || character == doubleQuoteRuneConstant:
			activeQuote = character
		case character == commentMarkerRuneConstant:
			builder.WriteRune(escapeRuneConstant)
		}
		builder.WriteRune(character)
	}
	return builder.String()
}
