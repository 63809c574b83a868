package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gridforge/jobtracker/internal/job"

	"github.com/spf13/cobra"
)

func NewSubmitCmd() *cobra.Command {
	var (
		name        string
		code        string
		inputs      []string
		stagingRoot string
		configPairs []string
	)

	cmd := &cobra.Command{
		Use:   "submit <job-id>",
		Short: "Submit a new job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobID := args[0]

			cfg := make(map[string]string, len(configPairs))
			for _, pair := range configPairs {
				k, v, ok := strings.Cut(pair, "=")
				if !ok {
					return fmt.Errorf("--config %q: expected key=value", pair)
				}
				cfg[k] = v
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			c := newClient()
			err := c.Submit(ctx, jobID, job.Info{
				Name:        name,
				Code:        code,
				Config:      cfg,
				InputURIs:   inputs,
				StagingRoot: stagingRoot,
			})
			if err != nil {
				return fmt.Errorf("submit failed: %w", err)
			}

			if JSONOutput {
				return json.NewEncoder(os.Stdout).Encode(map[string]string{"jobId": jobID, "status": "submitted"})
			}
			fmt.Printf("job %s submitted\n", jobID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "human-readable job name")
	cmd.Flags().StringVar(&code, "code", "", "job code reference (selects the registered task function)")
	cmd.Flags().StringSliceVar(&inputs, "input", nil, "input URI, repeatable")
	cmd.Flags().StringVar(&stagingRoot, "staging-root", "", "override staging directory root")
	cmd.Flags().StringArrayVar(&configPairs, "config", nil, "job config entry key=value, repeatable")

	return cmd
}
