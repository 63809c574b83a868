package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

func NewCountersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counters <job-id>",
		Short: "Show the aggregated counters reported for a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobID := args[0]

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			counters, err := newClient().Counters(ctx, jobID)
			if err != nil {
				return fmt.Errorf("counters failed: %w", err)
			}

			if JSONOutput {
				return json.NewEncoder(os.Stdout).Encode(counters)
			}

			names := make([]string, 0, len(counters))
			for name := range counters {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("%s: %d\n", name, counters[name])
			}
			return nil
		},
	}
	return cmd
}
