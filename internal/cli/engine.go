package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewStatusCommand reports daemon and engine status.
func NewStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := dial(opts)
			if err != nil {
				return err
			}
			defer client.Close()

			st, err := client.Status()
			if err != nil {
				return err
			}

			return emit(cmd.OutOrStdout(), opts, st, func(w io.Writer) {
				fmt.Fprintf(w, "expandd %s (up %ds)\n", st.Version, st.UptimeSec)
				fmt.Fprintf(w, "  engine:   running=%v scope=%s\n", st.Running, st.Scope)
				fmt.Fprintf(w, "  paused:   %v\n", st.Paused)
				fmt.Fprintf(w, "  options:  dry_run=%v verbose=%v\n", st.DryRun, st.Verbose)
				fmt.Fprintf(w, "  activity: %d events, %d rules\n", st.EventCount, st.RuleCount)
			})
		},
	}
}

// NewStartCommand starts the expansion engine.
func NewStartCommand(opts *RootOptions) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the expansion engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := dial(opts)
			if err != nil {
				return err
			}
			defer client.Close()

			var v *bool
			if cmd.Flags().Changed("verbose") {
				v = &verbose
			}
			resp, err := client.StartEngine(v)
			if err != nil {
				return err
			}
			if !resp.Success {
				return fmt.Errorf("start failed: %s", resp.Error)
			}

			return emit(cmd.OutOrStdout(), opts, resp, func(w io.Writer) {
				if resp.Scope == "none" {
					fmt.Fprintln(w, "engine started but no keyboard tap installed (check permissions)")
				} else {
					fmt.Fprintf(w, "engine started (%s scope)\n", resp.Scope)
				}
			})
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable per-keystroke logging")
	return cmd
}

// NewStopCommand stops the expansion engine.
func NewStopCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the expansion engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := dial(opts)
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.StopEngine()
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts, resp, func(w io.Writer) {
				fmt.Fprintln(w, "engine stopped")
			})
		},
	}
}

// NewOptionsCommand updates runtime flags.
func NewOptionsCommand(opts *RootOptions) *cobra.Command {
	var verbose, dryRun bool

	cmd := &cobra.Command{
		Use:   "options",
		Short: "Update runtime options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := dial(opts)
			if err != nil {
				return err
			}
			defer client.Close()

			var v, d *bool
			if cmd.Flags().Changed("verbose") {
				v = &verbose
			}
			if cmd.Flags().Changed("dry-run") {
				d = &dryRun
			}
			if v == nil && d == nil {
				return fmt.Errorf("nothing to change: pass --verbose and/or --dry-run")
			}

			resp, err := client.SetOptions(v, d)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts, resp, func(w io.Writer) {
				fmt.Fprintf(w, "options: dry_run=%v verbose=%v\n", resp.DryRun, resp.Verbose)
			})
		},
	}

	cmd.Flags().BoolVar(&verbose, "verbose", false, "per-keystroke logging")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log expansions instead of injecting")
	return cmd
}

// NewInjectCommand types text on the daemon's keyboard.
func NewInjectCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inject <text>",
		Short: "Type text directly, bypassing trigger matching",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := dial(opts)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.InjectText(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "injected")
			return nil
		},
	}
}

// NewIconCommand drives the status indicator. The daemon rejects unknown
// state names.
func NewIconCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "icon <state>",
		Short:     "Set the status indicator state",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"active", "paused", "warning", "error"},
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := dial(opts)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.SetIconState(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "icon state set to %s\n", args[0])
			return nil
		},
	}
}

// NewLogsCommand fetches recent diagnostics lines.
func NewLogsCommand(opts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent daemon log lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := dial(opts)
			if err != nil {
				return err
			}
			defer client.Close()

			lines, err := client.GetLogs(limit)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts, lines, func(w io.Writer) {
				for _, line := range lines {
					fmt.Fprintln(w, line)
				}
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "max lines to fetch (0 for all)")
	return cmd
}
