package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/core/events"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers such as the notification event consumer.`,
}

var notificationWorkerCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Start notification event worker",
	Long:  `Consume report lifecycle events and deliver notifications`,
	Run: func(cmd *cobra.Command, args []string) {
		startNotificationWorker()
	},
}

func init() {
	workerCmd.AddCommand(notificationWorkerCmd)
}

func startNotificationWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	log := logger.L()

	eventBus := events.NewEventBus(log)
	registerNotificationHandlers(eventBus, log)

	log.Info("notification worker started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	log.Info("notification worker stopping", "signal", sig)
}

// registerNotificationHandlers wires the report lifecycle events to their
// notification side effects. Delivery is log-based for now; handlers run
// async so a slow consumer never blocks the lifecycle engine.
func registerNotificationHandlers(bus *events.EventBus, log *slog.Logger) {
	bus.Subscribe(events.ReportSubmitted, func(ctx context.Context, event events.Event) error {
		log.Info("notify approvers of submitted report",
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	})

	bus.Subscribe(events.ReportApproved, func(ctx context.Context, event events.Event) error {
		log.Info("notify author of approved report",
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	})

	bus.Subscribe(events.ReportRejected, func(ctx context.Context, event events.Event) error {
		log.Info("notify author of rejected report",
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	})
}
