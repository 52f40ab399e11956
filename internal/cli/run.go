package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// NewRunCmd создаёт группу команд для управления flow runs.
func NewRunCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Manage flow runs",
	}

	cmd.AddCommand(
		newRunListCmd(clientFn, outputFn),
		newRunStartCmd(clientFn, outputFn),
		newRunShowCmd(clientFn, outputFn),
		newRunSetStateCmd(clientFn, outputFn),
		newRunTasksCmd(clientFn, outputFn),
		newRunWatchCmd(clientFn, outputFn),
	)

	return cmd
}

func runRow(r *FlowRunResponse) []string {
	return []string{r.ID, r.FlowName, r.WorkPoolName, r.State.Type, strconv.Itoa(len(r.TaskRuns)), r.Created}
}

var runHeaders = []string{"ID", "FLOW", "POOL", "STATE", "TASKS", "CREATED"}

func newRunListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List flow runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			runs, err := client.ListFlowRuns()
			if err != nil {
				return err
			}

			if state != "" {
				filtered := runs[:0]
				for _, r := range runs {
					if r.State.Type == state {
						filtered = append(filtered, r)
					}
				}
				runs = filtered
			}

			rows := make([][]string, len(runs))
			for i := range runs {
				rows[i] = runRow(&runs[i])
			}

			out.Print(runHeaders, rows, runs)
			return nil
		},
	}

	cmd.Flags().StringVar(&state, "state", "", "Filter by state (SCHEDULED, PENDING, RUNNING, COMPLETED, FAILED, CANCELLED)")

	return cmd
}

func newRunStartCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var params []string
	var tags []string
	var watch bool

	cmd := &cobra.Command{
		Use:   "start DEPLOYMENT_ID",
		Short: "Start a new flow run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := CreateFlowRunRequest{Tags: tags}

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

			run, err := client.CreateFlowRun(args[0], req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Flow run started: %s", run.ID))

			if watch {
				return watchRun(client, out, run.ID)
			}

			out.Print(runHeaders, [][]string{runRow(run)}, run)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&params, "param", nil, "Override parameters as KEY=VALUE (repeatable)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Extra tags (repeatable)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Wait for the run to finish")

	return cmd
}

func newRunShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show flow run details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			run, err := client.GetFlowRun(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "FLOW", "POOL", "STATE", "MESSAGE", "TASKS", "CREATED"},
				[][]string{{run.ID, run.FlowName, run.WorkPoolName, run.State.Type, run.State.Message, strconv.Itoa(len(run.TaskRuns)), run.Created}},
				run,
			)
			return nil
		},
	}
}

func newRunSetStateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "set-state ID STATE",
		Short: "Force a flow run into a state (e.g. CANCELLED)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			run, err := client.SetFlowRunState(args[0], SetStateRequest{
				Type:    args[1],
				Message: message,
			})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Run %s set to %s", run.ID, run.State.Type))
			return nil
		},
	}

	cmd.Flags().StringVar(&message, "message", "", "State message")

	return cmd
}

func newRunTasksCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "tasks RUN_ID",
		Short: "List task runs in a flow run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			tasks, err := client.ListTaskRuns(args[0])
			if err != nil {
				return err
			}

			headers := []string{"ID", "TASK_KEY", "NAME", "TOOL", "STATE", "CREATED"}
			rows := make([][]string, len(tasks))
			for i, t := range tasks {
				rows[i] = []string{t.ID, t.TaskKey, t.Name, t.Tool, t.State.Type, t.Created}
			}

			out.Print(headers, rows, tasks)
			return nil
		},
	}
}

func newRunWatchCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "watch ID",
		Short: "Watch a flow run until it reaches a terminal state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchRun(clientFn(), outputFn(), args[0])
		},
	}
}

// watchRun опрашивает run до конечного состояния, печатая переходы.
func watchRun(client *Client, out *Output, id string) error {
	run, err := client.WatchFlowRun(id, 200*time.Millisecond, 5*time.Minute, func(r *FlowRunResponse) {
		out.Success(fmt.Sprintf("%s  %s", r.State.Type, r.State.Message))
	})
	if err != nil {
		return err
	}

	out.Print(runHeaders, [][]string{runRow(run)}, run)
	return nil
}
