package worker

// NotificationRegistrar is implemented by services that subscribe handlers to
// the event dispatcher.
type NotificationRegistrar interface {
	RegisterHandlers()
}

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(registrar NotificationRegistrar) {
	if registrar == nil {
		return
	}
	registrar.RegisterHandlers()
}
