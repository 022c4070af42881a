package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/salesdesk/internal/core/events"
	"github.com/frahmantamala/salesdesk/internal/metrics"
	"github.com/frahmantamala/salesdesk/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Manage events: publish test org events and watch them reach their handlers`,
}

var publishEventCmd = &cobra.Command{
	Use:       "publish [event-type]",
	Short:     "Publish a test org event",
	Long:      `Publish a test org event to an in-process bus wired like the server's`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: events.OrgEventTypes,
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishTestEvent(args[0])
	},
}

var (
	eventUserID string
	eventSync   bool
)

func publishTestEvent(eventType string) error {
	known := false
	for _, t := range events.OrgEventTypes {
		if t == eventType {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown event type %q, expected one of %v", eventType, events.OrgEventTypes)
	}

	lg := logger.LoggerWrapper()
	eventBus := events.NewEventBus(lg)
	metrics.Subscribe(eventBus)

	eventBus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
		lg.Info("test handler received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	tenant := tenantID
	if tenant == "" {
		tenant = "cli"
	}
	testEvent := events.NewOrgUserEvent(eventType, tenant, eventUserID, "User", nil, "")

	lg.Info("publishing test event", "event_type", eventType, "event_id", testEvent.EventID())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if eventSync {
		// handlers run in order on this goroutine and the first failure aborts
		if err := eventBus.PublishSync(ctx, testEvent); err != nil {
			return fmt.Errorf("publish event: %w", err)
		}
	} else {
		if err := eventBus.Publish(ctx, testEvent); err != nil {
			return fmt.Errorf("publish event: %w", err)
		}
		if err := eventBus.Drain(ctx); err != nil {
			return fmt.Errorf("wait for handlers: %w", err)
		}
	}

	lg.Info("test event published successfully")
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventUserID, "user", "test-user", "user id carried by the event")
	publishEventCmd.Flags().BoolVar(&eventSync, "sync", false, "run handlers synchronously and fail on the first handler error")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
