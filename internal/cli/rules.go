package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"expandd/internal/ipc"
	"expandd/internal/rules"
)

// NewRulesCommand groups rule management subcommands.
func NewRulesCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage expansion rules",
	}
	cmd.AddCommand(newRulesListCommand(opts))
	cmd.AddCommand(newRulesLoadCommand(opts))
	return cmd
}

func newRulesListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := dial(opts)
			if err != nil {
				return err
			}
			defer client.Close()

			dtos, err := client.GetRules()
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts, dtos, func(w io.Writer) {
				if len(dtos) == 0 {
					fmt.Fprintln(w, "no rules loaded")
					return
				}
				for _, r := range dtos {
					fmt.Fprintf(w, "%-20s %s\n", r.Trigger, r.Replacement)
				}
			})
		},
	}
}

func newRulesLoadCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "load <file>",
		Short: "Load rules from a JSON or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			rs, err := rules.ParseDocument(data, rules.FormatForPath(args[0]))
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			client, err := dial(opts)
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.SetRules(ipc.RulesToDTO(rs))
			if err != nil {
				return err
			}
			if !resp.Success {
				return fmt.Errorf("load rules: %s", resp.Error)
			}
			return emit(cmd.OutOrStdout(), opts, resp, func(w io.Writer) {
				fmt.Fprintf(w, "loaded %d rules\n", resp.Count)
				if resp.Error != "" {
					fmt.Fprintf(w, "warning: %s\n", resp.Error)
				}
			})
		},
	}
}
