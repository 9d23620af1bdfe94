package core

// IEvent is anything that can travel between the agent and its driver.
type IEvent interface {
	GetId() string // Returns the unique identifier of the event.
}
