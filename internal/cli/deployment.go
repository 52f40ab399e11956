package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewDeploymentCmd создаёт группу команд для управления deployments.
func NewDeploymentCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deployment",
		Short: "Manage deployments",
	}

	cmd.AddCommand(
		newDeploymentListCmd(clientFn, outputFn),
		newDeploymentCreateCmd(clientFn, outputFn),
		newDeploymentShowCmd(clientFn, outputFn),
	)

	return cmd
}

func newDeploymentListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List deployments",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			deps, err := client.ListDeployments()
			if err != nil {
				return err
			}

			headers := []string{"ID", "NAME", "FLOW", "POOL", "TAGS", "CREATED"}
			rows := make([][]string, len(deps))
			for i, d := range deps {
				rows[i] = []string{d.ID, d.Name, d.FlowName, d.WorkPoolName, strings.Join(d.Tags, ","), d.Created}
			}

			out.Print(headers, rows, deps)
			return nil
		},
	}
}

func newDeploymentCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var flowName string
	var poolName string
	var description string
	var tags []string
	var params []string
	var cronExpr string
	var intervalSec int
	var timezone string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a deployment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := CreateDeploymentRequest{
				Name:         args[0],
				FlowName:     flowName,
				WorkPoolName: poolName,
				Tags:         tags,
				Description:  description,
			}

			if len(params) > 0 {
				req.Parameters = make(map[string]any)
				for _, kv := range params {
					parts := strings.SplitN(kv, "=", 2)
					if len(parts) != 2 {
						return fmt.Errorf("invalid parameter format %q, expected KEY=VALUE", kv)
					}
					req.Parameters[parts[0]] = parts[1]
				}
			}

			if cronExpr != "" || intervalSec > 0 {
				req.Schedule = &ScheduleSpec{
					Cron:            cronExpr,
					IntervalSeconds: intervalSec,
					Timezone:        timezone,
				}
			}

			dep, err := client.CreateDeployment(req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Deployment created: %s", dep.ID))
			out.Print(
				[]string{"ID", "NAME", "FLOW", "POOL", "CREATED"},
				[][]string{{dep.ID, dep.Name, dep.FlowName, dep.WorkPoolName, dep.Created}},
				dep,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&flowName, "flow", "", "Flow name (required)")
	cmd.Flags().StringVar(&poolName, "pool", "", "Work pool name (required)")
	cmd.Flags().StringVar(&description, "description", "", "Deployment description")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Default tags (repeatable)")
	cmd.Flags().StringSliceVar(&params, "param", nil, "Default parameters as KEY=VALUE (repeatable)")
	cmd.Flags().StringVar(&cronExpr, "cron", "", "Cron schedule expression")
	cmd.Flags().IntVar(&intervalSec, "interval", 0, "Interval schedule in seconds")
	cmd.Flags().StringVar(&timezone, "timezone", "", "Schedule timezone (default: UTC)")
	cmd.MarkFlagRequired("flow")
	cmd.MarkFlagRequired("pool")

	return cmd
}

func newDeploymentShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show deployment details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			dep, err := client.GetDeployment(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "NAME", "FLOW", "POOL", "TAGS", "CREATED"},
				[][]string{{dep.ID, dep.Name, dep.FlowName, dep.WorkPoolName, strings.Join(dep.Tags, ","), dep.Created}},
				dep,
			)
			return nil
		},
	}
}
