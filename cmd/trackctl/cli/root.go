package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "trackctl",
	Short: "trackctl is the operator CLI for a jobtracker cluster",
	Long: `trackctl submits, inspects, and kills map/reduce jobs by talking to
a local trackerd node's control socket.

Examples:
  trackctl submit <job-id> --name wordcount --code wordcount --input /data/in.txt
  trackctl status <job-id>
  trackctl plan <job-id>
  trackctl counters <job-id>
  trackctl kill <job-id>`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&SocketPath, "socket", "/var/run/jobtracker/trackerd.sock",
		"Path to the trackerd control socket")
	rootCmd.PersistentFlags().BoolVar(&JSONOutput, "json", false,
		"Output in JSON format")

	rootCmd.AddCommand(NewSubmitCmd())
	rootCmd.AddCommand(NewStatusCmd())
	rootCmd.AddCommand(NewKillCmd())
	rootCmd.AddCommand(NewPlanCmd())
	rootCmd.AddCommand(NewCountersCmd())
}
