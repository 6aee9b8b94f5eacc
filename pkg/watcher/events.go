package watcher

// EventType defines the type of event being broadcast.
type EventType string

const (
	EventStateReplaced       EventType = "state_replaced"
	EventBlocksUpdated       EventType = "blocks_updated"
	EventRateUpdated         EventType = "rate_updated"
	EventTokenBalanceUpdated EventType = "token_balance_updated"
	EventViewUpdated         EventType = "view_updated"
	EventStatusUpdated       EventType = "status_updated"
	EventRefreshDone         EventType = "refresh_done"
)

// Event represents a snapshot change. EventViewUpdated carries a
// selectors.SendView; EventStatusUpdated carries an error message.
type Event struct {
	Type EventType
	Data interface{}
}

// Subscriber is a channel that receives events.
type Subscriber chan Event
