package pubsub

import (
	"sync"

	"cloud.google.com/go/pubsub"
)

type client struct {
	client   *pubsub.Client
	mu       sync.Mutex
	topics   map[string]*pubsub.Topic
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventResultRecorded     EventType = "result-recorded"
	EventRecomputeCompleted EventType = "recompute-completed"
)

// ResultRecordedEvent announces newly recorded match results.
type ResultRecordedEvent struct {
	Sport    string   `msgpack:"sport"`
	RoomID   string   `msgpack:"room_id"`
	MatchIDs []string `msgpack:"match_ids"`
}

// RecomputeCompletedEvent announces a finished per-sport history recompute,
// so downstream consumers (achievements, caches) can rebuild their derived
// state.
type RecomputeCompletedEvent struct {
	Sport          string `msgpack:"sport"`
	Matches        int    `msgpack:"matches"`
	Rooms          int    `msgpack:"rooms"`
	Players        int    `msgpack:"players"`
	SkippedPlayers int    `msgpack:"skipped_players"`
}
