package app

import "github.com/rabotim/marketplace/internal/services"

var (
	globalAlertService  services.AlertService
	globalNotifyService services.NotifyService
	globalTaskService   services.TaskService
)

// MustInitServices wires the service graph: the task service dispatches
// new tasks through the notifier, which snapshots subscriptions from
// the alert service.
func MustInitServices() {
	globalAlertService = services.NewAlertService(globalLogger, globalPostgresPool)
	globalNotifyService = services.NewNotifyService(globalLogger, globalPostgresPool, globalAlertService)
	globalTaskService = services.NewTaskService(globalLogger, globalPostgresPool, globalNotifyService)

	globalLogger.Info().Msg("initialized services")
}
