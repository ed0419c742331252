// Package cli constructs the code-assistant-manager command-line interface,
// wiring the Cobra command hierarchy, configuration loader, and structured
// logging primitives around the upgrade engine.
package cli
