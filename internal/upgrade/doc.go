// Package upgrade drives the install/upgrade lifecycle of external CLI tools.
//
// Run sequences a Strategy through pre-check, fetch, install and post-check,
// attempts a single rollback when any step fails, and always finishes with
// cleanup. Selector maps raw install command lines to strategy kinds and
// StrategyRegistry constructs the matching NpmStrategy, PipStrategy or
// ShellStrategy. All process spawning is delegated to a CommandExecutor.
package upgrade
