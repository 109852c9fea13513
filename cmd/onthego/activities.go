package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/2beens/onthego/internal/activity"
	"github.com/2beens/onthego/internal/config"
	"github.com/2beens/onthego/internal/garmin"
	"github.com/2beens/onthego/internal/session"
	"github.com/2beens/onthego/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var errMissingCredentials = errors.New("garmin credentials not set. use GARMIN_USERNAME and GARMIN_PASSWORD")

func newActivitiesCmd(opts *rootOptions) *cobra.Command {
	activitiesCmd := &cobra.Command{
		Use:   "activities",
		Short: "Inspect garmin connect activities without the dashboard",
	}

	var count int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent activities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			count = session.ClampActivityCount(count)
			return withGarminClient(cmd.Context(), opts.cfg, func(ctx context.Context, client *garmin.Client) error {
				activities, err := client.ListActivities(ctx, 0, count)
				if err != nil {
					return err
				}
				return writeActivities(cmd, activities)
			})
		},
	}
	listCmd.Flags().IntVar(&count, "count", config.DefaultActivitiesCount, "number of recent activities to list (5..50)")

	exportCmd := &cobra.Command{
		Use:   "export <activityId>",
		Short: "Export the flattened metrics of one activity as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			activityID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid activity id [%s]: %w", args[0], err)
			}
			return withGarminClient(cmd.Context(), opts.cfg, func(ctx context.Context, client *garmin.Client) error {
				details, err := client.ActivityDetails(ctx, activityID)
				if err != nil {
					return err
				}
				table, err := activity.Flatten(details)
				if err != nil {
					return err
				}
				if table.Empty() {
					log.Warnf("activity %d has no detailed metrics", activityID)
				}
				return table.WriteCSV(cmd.OutOrStdout())
			})
		},
	}

	activitiesCmd.AddCommand(listCmd)
	activitiesCmd.AddCommand(exportCmd)
	return activitiesCmd
}

// withGarminClient logs in with the credentials from the environment, runs fn
// and always logs out afterwards.
func withGarminClient(ctx context.Context, cfg *config.Config, fn func(ctx context.Context, client *garmin.Client) error) (err error) {
	username := os.Getenv("GARMIN_USERNAME")
	password := os.Getenv("GARMIN_PASSWORD")
	if username == "" || password == "" {
		return errMissingCredentials
	}

	client := garmin.NewClient(garmin.ClientParams{
		BaseURL:    cfg.GarminBaseURL,
		Username:   username,
		Password:   password,
		HTTPClient: &http.Client{Timeout: cfg.RequestTimeout()},
		Metrics:    metrics.NewStandaloneManager("cli"),
	})

	if err := client.Login(ctx); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	log.Debugf("logged in to garmin connect as %s", client.Username())
	defer func() {
		if logoutErr := client.Logout(ctx); logoutErr != nil {
			log.Warnf("logout failed: %s", logoutErr)
		}
	}()

	return fn(ctx, client)
}

func writeActivities(cmd *cobra.Command, activities []activity.Summary) error {
	if len(activities) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No recent activities found.")
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tACTIVITY")
	for _, a := range activities {
		fmt.Fprintf(tw, "%d\t%s\n", a.ID, a.Label())
	}
	return tw.Flush()
}
