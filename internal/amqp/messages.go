package amqp

import (
	"encoding/json"
	"time"
)

// EventOp names the store mutation an event reports.
type EventOp string

const (
	OpCreated   EventOp = "created"
	OpUpdated   EventOp = "updated"
	OpDeleted   EventOp = "deleted"
	OpBudgetSet EventOp = "budget_set"
	OpReset     EventOp = "reset"
)

// ExpenseEvent tells consumers that the store changed. It carries only the ID;
// consumers that need the record read the export.
type ExpenseEvent struct {
	Op        EventOp   `json:"op"`
	ID        int64     `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseEvent(op EventOp, id int64) *ExpenseEvent {
	return &ExpenseEvent{
		Op:        op,
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var msg ExpenseEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
