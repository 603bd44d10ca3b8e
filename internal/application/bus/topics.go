package bus

// Topic names one bus channel.
type Topic string

// Fixed topics.
const (
	// TopicJournalAll receives every parsed journal event.
	TopicJournalAll Topic = "journal:*"
	// TopicCompanionAll receives every sidecar update.
	TopicCompanionAll Topic = "companion:*"
	// TopicGameStateChange receives a StateChange after every slice
	// mutation the projector broadcasts.
	TopicGameStateChange Topic = "gamestate:change"

	// Watcher lifecycle.
	TopicWatcherStarted Topic = "watcher:started"
	TopicWatcherStopped Topic = "watcher:stopped"
	TopicWatcherError   Topic = "watcher:error"
)

// JournalTopic returns the per-kind channel for a journal event name,
// e.g. "journal:FSDJump".
func JournalTopic(kind string) Topic {
	return Topic("journal:" + kind)
}

// CompanionTopic returns the per-file channel for a sidecar basename,
// e.g. "companion:Status.json".
func CompanionTopic(file string) Topic {
	return Topic("companion:" + file)
}

// CompanionUpdate is the payload published on sidecar topics: the file's
// basename plus its parsed document.
type CompanionUpdate struct {
	File string         `json:"file"`
	Data map[string]any `json:"data"`
}

// StateChange is the payload published on gamestate:change.
type StateChange struct {
	Section string `json:"section"`
	Data    any    `json:"data"`
}

// WatcherEvent is the payload published on the watcher lifecycle topics.
type WatcherEvent struct {
	Watcher string `json:"watcher"`
	Dir     string `json:"dir,omitempty"`
	Err     string `json:"error,omitempty"`
}
