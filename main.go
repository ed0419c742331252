package main

import (
	"fmt"
	"os"

	"github.com/Chat2AnyLLM/code-assistant-manager-sub002/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the code-assistant-manager command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(1)
	}
}
