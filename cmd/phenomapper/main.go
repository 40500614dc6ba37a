// Command phenomapper validates tabular clinical datasets against a data
// model schema.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gofhir/phenomapper"
)

// errInvalid signals a completed run that found errors. The report has
// already been printed.
var errInvalid = errors.New("dataset is invalid")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errInvalid) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := newConfig()

	root := &cobra.Command{
		Use:           "phenomapper",
		Short:         "Validate clinical datasets against a data model",
		Version:       phenomapper.BuildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.load(cmd)
		},
	}
	cfg.registerPersistent(root)

	root.AddCommand(validateCmd(cfg))
	root.AddCommand(codeSystemsCmd(cfg))
	return root
}
