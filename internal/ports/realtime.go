package ports

// RealtimePublisher pushes best-effort, at-most-once events to every
// dashboard session subscribed to a store's room. There is no delivery
// guarantee; the dashboard's source of truth stays the REST API.
type RealtimePublisher interface {
	Publish(storeID string, event string, payload interface{})
}
