package models

import "time"

// ConversationEntry is one question and the answer it received. Failed LLM
// calls store their error text as the answer.
type ConversationEntry struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"askedAt"`
}
