package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// NewHealthCmd создаёт команду проверки состояния сервера.
func NewHealthCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show server health and resource counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			health, err := client.Health()
			if err != nil {
				return err
			}

			out.Print(
				[]string{"STATUS", "VERSION", "WORK_POOLS", "DEPLOYMENTS", "FLOW_RUNS"},
				[][]string{{
					health.Status,
					health.Version,
					strconv.Itoa(health.WorkPools),
					strconv.Itoa(health.Deployments),
					strconv.Itoa(health.FlowRuns),
				}},
				health,
			)
			return nil
		},
	}
}
