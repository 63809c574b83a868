package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <job-id>",
		Short: "Get the phase of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobID := args[0]

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			phase, err := newClient().Status(ctx, jobID)
			if err != nil {
				return fmt.Errorf("status failed: %w", err)
			}

			if JSONOutput {
				return json.NewEncoder(os.Stdout).Encode(map[string]string{"jobId": jobID, "phase": phase})
			}
			fmt.Printf("job %s: %s\n", jobID, phase)
			return nil
		},
	}
	return cmd
}
