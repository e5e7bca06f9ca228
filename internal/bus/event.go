package bus

import "time"

// Event kinds published by the sync core. Subscribers filter by prefix,
// e.g. "thread." for anything that should trigger a re-render.
const (
	KindThreadUpdated = "thread.updated"      // payload: scope string
	KindThreadLoaded  = "thread.loaded"       // payload: scope string (initial backfill done)
	KindMessageQueued = "message.queued"      // payload: QueuedNotice
	KindMessageFailed = "message.send_failed" // payload: FailedNotice
	KindNetOnline     = "net.online"
	KindNetOffline    = "net.offline"
	KindQueueDrained  = "queue.drained" // payload: DrainReport
)

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// QueuedNotice tells the UI a failed text message will retry automatically.
type QueuedNotice struct {
	Scope   string
	LocalID string
}

// FailedNotice tells the UI a media/structured send failed and needs a
// manual resend.
type FailedNotice struct {
	Scope   string
	LocalID string
	Reason  string
}

// DrainReport summarizes one offline-queue drain pass.
type DrainReport struct {
	Scope     string
	Succeeded int
	Remaining int
}
