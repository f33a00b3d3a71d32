package service

import "time"

// AlertFilter narrows the alert history by time range and machine.
type AlertFilter struct {
	From      time.Time // inclusive; zero means no lower bound
	To        time.Time // inclusive; zero means no upper bound
	MachineID string    // empty means all machines
}

// QueryResult is the assistant's answer and the documents it was given.
type QueryResult struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}
