// Package versions reads installed and published versions of managed tools
// through the shell executor so upgrades can be skipped when nothing is newer.
package versions
