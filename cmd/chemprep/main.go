// Command chemprep is the molecular dataset curation and similarity toolkit.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/turtacn/ChemPrep/internal/interfaces/cli"
	"github.com/turtacn/ChemPrep/pkg/errors"
)

// Exit codes: 1 for internal failures, 2 for bad input or configuration.
const (
	exitInternal = 1
	exitUsage    = 2
)

func main() {
	root := cli.NewRootCommand()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "chemprep: %v\n", err)
		switch errors.GetCode(err) {
		case errors.ErrCodeInvalidParam, errors.ErrCodeValidation,
			errors.ErrCodeInvalidSMILES, errors.ErrCodeUnknownMetric,
			errors.ErrCodeColumnNotFound, errors.ErrCodeSelfComparisonTooSmall,
			errors.ErrCodeConfigInvalid:
			os.Exit(exitUsage)
		default:
			os.Exit(exitInternal)
		}
	}
}
