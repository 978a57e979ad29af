package services

import "time"

type EventType string

const (
	EventHousePurchased EventType = "house_purchased"
	EventHeroesMinted   EventType = "heroes_minted"
	EventRewardsClaimed EventType = "rewards_claimed"
	EventHalving        EventType = "halving"
	EventHouseUpgraded  EventType = "house_upgraded"
	EventGameStarted    EventType = "game_started"
	EventGamePaused     EventType = "game_paused"
	EventGameResumed    EventType = "game_resumed"
	EventConfigUpdated  EventType = "config_updated"
	EventEconomyStats   EventType = "economy_stats"
)

// Event is the envelope broadcast to live subscribers.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
	Sender  string    `json:"sender"`
	Time    time.Time `json:"time"`
}

// EventPublisher delivers events after the state they describe is committed.
// Publish must not block the caller.
type EventPublisher interface {
	Publish(e Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}

// NopPublisher drops every event.
var NopPublisher EventPublisher = nopPublisher{}
