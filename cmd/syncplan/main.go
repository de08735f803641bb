package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var noColor bool

	rootCmd := &cobra.Command{
		Use:   "syncplan",
		Short: "Inspect how a push would be synced to the catalog",
		Long: `syncplan resolves the commits of a push webhook payload into the final
added, modified and removed catalog paths and prints the depth ordered
upload batches, without contacting any server.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newPlanCmd())
	return rootCmd
}

func newPlanCmd() *cobra.Command {
	var opts planOptions

	planCmd := &cobra.Command{
		Use:   "plan <payload.json|->",
		Short: "Print the resolved change set and upload batches of a push payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			return runPlan(cmd.OutOrStdout(), payload, opts)
		},
	}

	planCmd.Flags().StringVar(&opts.Provider, "provider", "github", "payload format: github or gitea")
	planCmd.Flags().StringVar(&opts.Branch, "branch", "", "fail unless the push targets this branch")
	planCmd.Flags().BoolVar(&opts.JSON, "json", false, "print the plan as JSON")

	return planCmd
}

func readPayload(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading payload: %w", err)
	}
	return data, nil
}
