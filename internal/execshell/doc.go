// Package execshell runs installer command lines on behalf of the upgrade engine.
//
// ShellExecutor classifies each command line: plain commands are split into argv
// and spawned directly, while command lines carrying shell control operators are
// screened by a denylist and only then handed to a POSIX shell. OSCommandRunner
// performs the actual process spawning and CommandEventObserver receives
// lifecycle notifications for every execution.
package execshell
