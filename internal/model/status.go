package model

import (
	"errors"
	"strings"
)

// Status is the board column an issue sits in.
type Status string

const (
	StatusToDo       Status = "to_do"
	StatusInProgress Status = "in_progress"
	StatusInReview   Status = "in_review"
	StatusDone       Status = "done"
)

// Statuses is the fixed column order of the board.
var Statuses = []Status{StatusToDo, StatusInProgress, StatusInReview, StatusDone}

var ErrInvalidStatus = errors.New("invalid status")

var statusLabels = map[Status]string{
	StatusToDo:       "To Do",
	StatusInProgress: "In Progress",
	StatusInReview:   "In Review",
	StatusDone:       "Completed",
}

// Label returns the column title. Unknown statuses are shown as-is.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.TrimSpace(raw))
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// Priority is the P1 (highest) .. P5 (lowest) scale used for both internal and client priority.
type Priority string

const (
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
	PriorityP3 Priority = "P3"
	PriorityP4 Priority = "P4"
	PriorityP5 Priority = "P5"
)

var ErrInvalidPriority = errors.New("invalid priority")

// legacy word-scale values still returned for old issues
var priorityAliases = map[string]Priority{
	"highest": PriorityP1,
	"high":    PriorityP2,
	"medium":  PriorityP3,
	"low":     PriorityP4,
	"lowest":  PriorityP5,
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityP1, PriorityP2, PriorityP3, PriorityP4, PriorityP5:
		return true
	}
	return false
}

// NormalizePriority accepts P1..P5 (any case) or a legacy alias.
func NormalizePriority(raw string) (Priority, error) {
	v := strings.TrimSpace(raw)
	if p := Priority(strings.ToUpper(v)); p.Valid() {
		return p, nil
	}
	if p, ok := priorityAliases[strings.ToLower(v)]; ok {
		return p, nil
	}
	return "", ErrInvalidPriority
}
