package commands

import (
	"fmt"
	"strconv"

	"gvp-client/cmd/gvp/utils"
	"gvp-client/internal/serviceutil"
	"gvp-client/pkg/gvp"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	eventsDetails     *bool
	eventsConcurrency *int
)

func init() {
	eventsDetails = eventsCmd.Flags().BoolP("details", "d", false, "Fetch the details of every event.")
	eventsConcurrency = eventsCmd.Flags().Int("concurrency", 4, "The amount of detail requests in flight with --details.")
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(eventCmd)
}

func approval(approved bool) string {
	if approved {
		return "approved"
	}
	return "proposed"
}

func startTime(details gvp.EventDetails) string {
	if details.Preliminary {
		return details.StartTime.Format("2006-01") + " (preliminary)"
	}
	return utils.FormatTime(details.StartTime)
}

var eventsCmd = &cobra.Command{
	Use:   "events [--details]",
	Short: "Lists the events of the current school year.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		events, err := client(cmd).Events(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to list events", err)
		}

		if !*eventsDetails {
			done, err := utils.Output(outputMode(), events)
			if err != nil {
				serviceutil.Fatal("failed to write output", err)
			}
			if done {
				return
			}

			t := utils.NewTable()
			t.AppendHeader(table.Row{"Id", "Name", "Organizator", "Status"})
			for _, event := range events {
				t.AppendRow(table.Row{event.Id, event.Name, event.Organizator, approval(event.Approved)})
			}
			t.Render()
			return
		}

		details := make([]gvp.EventDetails, len(events))
		group, ctx := errgroup.WithContext(cmd.Context())
		group.SetLimit(max(*eventsConcurrency, 1))
		for i, event := range events {
			group.Go(func() error {
				result, err := event.Details(ctx)
				if err != nil {
					return fmt.Errorf("event %d: %w", event.Id, err)
				}
				details[i] = result
				return nil
			})
		}
		err = group.Wait()
		if err != nil {
			serviceutil.Fatal("failed to get event details", err)
		}

		done, err := utils.Output(outputMode(), details)
		if err != nil {
			serviceutil.Fatal("failed to write output", err)
		}
		if done {
			return
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Id", "Start", "Name", "Organizator", "Place", "Status"})
		for i, d := range details {
			t.AppendRow(table.Row{
				d.Id,
				startTime(d),
				d.Name,
				d.Organizator,
				d.Place,
				approval(events[i].Approved),
			})
		}
		t.Render()
	},
}

var eventCmd = &cobra.Command{
	Use:   "event <id>",
	Short: "Shows the details of a single event.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			serviceutil.Fatal("invalid event id", err)
		}
		details, err := client(cmd).Event(cmd.Context(), id)
		if err != nil {
			serviceutil.Fatal("failed to get event", err)
		}
		done, err := utils.Output(outputMode(), details)
		if err != nil {
			serviceutil.Fatal("failed to write output", err)
		}
		if done {
			return
		}

		fmt.Printf("# %s\n\n", details.Name)
		fmt.Printf("When:        %s\n", startTime(details))
		fmt.Printf("Where:       %s\n", details.Place)
		fmt.Printf("Organizator: %s\n", details.Organizator)
		if details.Description != "" {
			fmt.Printf("\n%s\n", details.Description)
		}
	},
}
