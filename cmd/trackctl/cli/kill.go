package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func NewKillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kill <job-id>",
		Short: "Request cancellation of a running job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobID := args[0]

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			killed, err := newClient().Kill(ctx, jobID)
			if err != nil {
				return fmt.Errorf("kill failed: %w", err)
			}

			if JSONOutput {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{"jobId": jobID, "killed": killed})
			}
			if killed {
				fmt.Printf("job %s: cancellation requested\n", jobID)
			} else {
				fmt.Printf("job %s: already finished, nothing to kill\n", jobID)
			}
			return nil
		},
	}
	return cmd
}
