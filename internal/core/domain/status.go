package domain

import "fmt"

// Status is the lifecycle state of a crowdfund.
type Status string

const (
	StatusCreated            Status = "created"
	StatusRejected           Status = "rejected"
	StatusInProgress         Status = "in_progress"
	StatusOutOfTime          Status = "out_of_time"
	StatusBuying             Status = "buying"
	StatusFailedBuying       Status = "failed_buying"
	StatusTransporting       Status = "transporting"
	StatusFailedTransporting Status = "failed_transporting"
	StatusTokenized          Status = "tokenized"
)

// transitions lists the forward edges of the lifecycle. Statuses without an
// entry are terminal. Only InProgress->Transporting and
// Transporting->Tokenized are driven today; the rest are reserved.
var transitions = map[Status][]Status{
	StatusCreated:      {StatusInProgress, StatusRejected},
	StatusInProgress:   {StatusOutOfTime, StatusBuying, StatusTransporting},
	StatusBuying:       {StatusFailedBuying, StatusTransporting},
	StatusTransporting: {StatusFailedTransporting, StatusTokenized},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusRejected, StatusInProgress, StatusOutOfTime,
		StatusBuying, StatusFailedBuying, StatusTransporting,
		StatusFailedTransporting, StatusTokenized:
		return true
	}
	return false
}

// AcceptsFunding reports whether contributions may be applied in s.
func (s Status) AcceptsFunding() bool {
	return s == StatusInProgress
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition reports whether the lifecycle allows moving from s to next.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseStatus converts a stored value into a Status.
func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown crowdfund status %q", v)
	}
	return s, nil
}
