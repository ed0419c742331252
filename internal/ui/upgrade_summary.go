package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/Chat2AnyLLM/code-assistant-manager-sub002/internal/upgrade"
)

const (
	outcomeSuccessTemplateConstant          = "%s: upgraded%s\n"
	outcomeDryRunTemplateConstant           = "%s: dry run complete%s\n"
	outcomeRolledBackTemplateConstant       = "%s: failed (rolled back): %v\n"
	outcomeFailedTemplateConstant           = "%s: failed: %v\n"
	outcomeVersionChangeTemplateConstant    = "%s: upgraded (%s -> %s)\n"
	outcomeVersionUnchangedTemplateConstant = "%s: no upgrade (version unchanged at %s)\n"
	outcomeAlreadyLatestTemplateConstant    = "%s: already up to date (%s)\n"
	outcomeVersionSuffixTemplateConstant    = " to %s"
	summaryTotalsTemplateConstant           = "%d succeeded, %d failed\n"
	summaryTotalsSkippedTemplateConstant    = "%d succeeded, %d failed, %d already up to date\n"
	toolRowTemplateConstant                 = "%-16s %-14s %-8s %s\n"
	toolRowEmptyValueConstant               = "-"
)

// UpgradeSummaryPrinter writes per-tool upgrade outcomes for terminal users.
type UpgradeSummaryPrinter struct {
	writer io.Writer
}

// NewUpgradeSummaryPrinter builds a printer that writes to writer.
func NewUpgradeSummaryPrinter(writer io.Writer) UpgradeSummaryPrinter {
	if writer == nil {
		writer = io.Discard
	}
	return UpgradeSummaryPrinter{writer: writer}
}

// PrintReport writes one line per outcome followed by the totals.
func (printer UpgradeSummaryPrinter) PrintReport(report upgrade.BatchReport, dryRun bool) {
	for _, outcome := range report.Outcomes {
		fmt.Fprint(printer.writer, FormatOutcome(outcome, dryRun))
	}
	failures := report.FailureCount()
	if skipped := report.SkippedCount(); skipped > 0 {
		fmt.Fprintf(printer.writer, summaryTotalsSkippedTemplateConstant, len(report.Outcomes)-failures, failures, skipped)
		return
	}
	fmt.Fprintf(printer.writer, summaryTotalsTemplateConstant, len(report.Outcomes)-failures, failures)
}

// FormatOutcome renders a single batch outcome. Known installed versions
// take precedence over the target version suffix.
func FormatOutcome(outcome upgrade.BatchOutcome, dryRun bool) string {
	result := outcome.Result
	if outcome.Error == nil && result.Succeeded() {
		switch {
		case outcome.Skipped:
			return fmt.Sprintf(outcomeAlreadyLatestTemplateConstant, result.Name, outcome.CurrentVersion)
		case outcome.VersionUnchanged():
			return fmt.Sprintf(outcomeVersionUnchangedTemplateConstant, result.Name, outcome.CurrentVersion)
		case len(outcome.PreviousVersion) > 0 && len(outcome.CurrentVersion) > 0:
			return fmt.Sprintf(outcomeVersionChangeTemplateConstant, result.Name, outcome.PreviousVersion, outcome.CurrentVersion)
		}
		versionSuffix := emptyStringConstant
		if len(result.Version) > 0 {
			versionSuffix = fmt.Sprintf(outcomeVersionSuffixTemplateConstant, result.Version)
		}
		if dryRun {
			return fmt.Sprintf(outcomeDryRunTemplateConstant, result.Name, versionSuffix)
		}
		return fmt.Sprintf(outcomeSuccessTemplateConstant, result.Name, versionSuffix)
	}
	if result.Status == upgrade.StatusRolledBack {
		return fmt.Sprintf(outcomeRolledBackTemplateConstant, result.Name, outcome.Error)
	}
	return fmt.Sprintf(outcomeFailedTemplateConstant, result.Name, outcome.Error)
}

// ToolRow is one line of the tool listing.
type ToolRow struct {
	Key         string
	CommandName string
	Strategy    string
	Package     string
}

// PrintToolRows writes an aligned tool listing.
func (printer UpgradeSummaryPrinter) PrintToolRows(rows []ToolRow) {
	for _, row := range rows {
		fmt.Fprintf(printer.writer, toolRowTemplateConstant, row.Key, valueOrPlaceholder(row.CommandName), valueOrPlaceholder(row.Strategy), valueOrPlaceholder(row.Package))
	}
}

func valueOrPlaceholder(value string) string {
	if len(strings.TrimSpace(value)) == 0 {
		return toolRowEmptyValueConstant
	}
	return value
}
