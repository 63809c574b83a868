package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func NewPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <job-id>",
		Short: "Show the split/reducer assignment plan for a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobID := args[0]

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			p, err := newClient().Plan(ctx, jobID)
			if err != nil {
				return fmt.Errorf("plan failed: %w", err)
			}

			if JSONOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(p)
			}

			fmt.Printf("job %s: %d reducers\n", jobID, p.ReducerTotal)
			fmt.Println("mapper assignments:")
			for node, splits := range p.MapperAssignments {
				fmt.Printf("  %s:\n", node)
				for _, s := range splits {
					fmt.Printf("    split %s (%s, offset=%d, length=%d)\n", s.SplitID, s.URI, s.Offset, s.Length)
				}
			}
			fmt.Println("reducer assignments:")
			for node, reducers := range p.ReducerAssignments {
				fmt.Printf("  %s: %v\n", node, reducers)
			}
			return nil
		},
	}
	return cmd
}
