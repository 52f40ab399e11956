package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewPoolCmd создаёт группу команд для управления work pools.
func NewPoolCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Manage work pools",
	}

	cmd.AddCommand(
		newPoolListCmd(clientFn, outputFn),
		newPoolCreateCmd(clientFn, outputFn),
		newPoolShowCmd(clientFn, outputFn),
	)

	return cmd
}

func newPoolListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List work pools",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			pools, err := client.ListWorkPools()
			if err != nil {
				return err
			}

			headers := []string{"NAME", "TYPE", "STATUS", "PENDING_WORK", "CREATED"}
			rows := make([][]string, len(pools))
			for i, p := range pools {
				rows[i] = []string{p.Name, p.Type, p.Status, strconv.Itoa(p.PendingWork), p.Created}
			}

			out.Print(headers, rows, pools)
			return nil
		},
	}
}

func newPoolCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var poolType string
	var description string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a work pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			pool, err := client.CreateWorkPool(CreateWorkPoolRequest{
				Name:        args[0],
				Type:        poolType,
				Description: description,
			})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Work pool created: %s", pool.Name))
			out.Print(
				[]string{"NAME", "TYPE", "STATUS", "PENDING_WORK", "CREATED"},
				[][]string{{pool.Name, pool.Type, pool.Status, strconv.Itoa(pool.PendingWork), pool.Created}},
				pool,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&poolType, "type", "", "Pool type (default: process)")
	cmd.Flags().StringVar(&description, "description", "", "Pool description")

	return cmd
}

func newPoolShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show work pool details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			pool, err := client.GetWorkPool(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"NAME", "TYPE", "STATUS", "PENDING_WORK", "DESCRIPTION", "CREATED"},
				[][]string{{pool.Name, pool.Type, pool.Status, strconv.Itoa(pool.PendingWork), pool.Description, pool.Created}},
				pool,
			)
			return nil
		},
	}
}
