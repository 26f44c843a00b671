package models

import "time"

// Message is one direct message inside a thread.
type Message struct {
	ID       string    `json:"id"`
	ThreadID string    `json:"threadId"`
	From     Person    `json:"from"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sentAt"`
}

// Thread is a local message-thread record. Threads live only in the session
// store and the key-value cache; there is no server sync.
type Thread struct {
	ID           string    `json:"id"`
	Participants []Person  `json:"participants"`
	LastActivity time.Time `json:"lastActivity"`
	LastReadAt   time.Time `json:"lastReadAt"`
}
