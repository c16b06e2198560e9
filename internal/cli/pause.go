package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"expandd/internal/ipc"
)

func printPauseState(w io.Writer, st *ipc.PauseStateResponse) {
	if !st.IsPaused {
		fmt.Fprintln(w, "expansions active")
		return
	}
	fmt.Fprintf(w, "expansions paused (by_user=%v secure_input=%v)\n",
		st.PausedByUser, st.PausedBySecureInput)
	if st.PauseTimestamp != "" {
		fmt.Fprintf(w, "  since: %s\n", st.PauseTimestamp)
	}
	if !st.CanResume {
		fmt.Fprintln(w, "  cannot be resumed manually; waiting for secure input to end")
	}
}

// NewPauseCommand pauses expansions.
func NewPauseCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause expansions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := dial(opts)
			if err != nil {
				return err
			}
			defer client.Close()

			st, err := client.SetPauseState(true, true)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts, st, func(w io.Writer) {
				printPauseState(w, st)
			})
		},
	}
}

// NewResumeCommand resumes expansions paused by the user.
func NewResumeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume expansions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := dial(opts)
			if err != nil {
				return err
			}
			defer client.Close()

			st, err := client.SetPauseState(false, true)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts, st, func(w io.Writer) {
				printPauseState(w, st)
			})
		},
	}
}

// NewPauseStateCommand reports the pause state without changing it.
func NewPauseStateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pause-state",
		Short: "Show the pause state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := dial(opts)
			if err != nil {
				return err
			}
			defer client.Close()

			st, err := client.GetPauseState()
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), opts, st, func(w io.Writer) {
				printPauseState(w, st)
			})
		},
	}
}

// NewToggleCommand flips the user pause flag.
func NewToggleCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Toggle the pause state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := dial(opts)
			if err != nil {
				return err
			}
			defer client.Close()

			paused, err := client.TogglePause()
			if err != nil {
				return err
			}
			if paused {
				fmt.Fprintln(cmd.OutOrStdout(), "expansions paused")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "expansions resumed")
			}
			return nil
		},
	}
}
