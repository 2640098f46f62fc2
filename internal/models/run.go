package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/jinzhu/gorm"
)

// StringSlice represents a slice of strings that can be stored in the database
type StringSlice []string

// Value converts the slice to a JSON string for storage
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan converts the database value back to a slice
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("unsupported type for StringSlice")
	}
}

// RunRecord is the stored summary of one evaluation run
type RunRecord struct {
	gorm.Model
	RunID      string `gorm:"unique_index"`
	Scenario   string `gorm:"index"`
	Seed       int64
	Bots       int
	Menu       StringSlice `gorm:"type:text"`
	StartTime  time.Time
	EndTime    time.Time
	SimElapsed time.Duration

	Score            int
	OrdersPlaced     int
	OrdersDelivered  int
	OrdersExpired    int
	DeliveryRate     float64
	AvgDeliveryTime  float64
	RejectedActions  int
	Aborts           int
	Debrief          string           `gorm:"type:text"`
	Events           []RunEvent       `gorm:"foreignkey:RunRecordID"`
	Actions          []AgentActionLog `gorm:"foreignkey:RunRecordID"`
}

// TableName sets the table name for RunRecord
func (RunRecord) TableName() string {
	return "runs"
}

// RunEvent is one kitchen event recorded during a run
type RunEvent struct {
	gorm.Model
	RunRecordID uint `gorm:"index"`
	At          time.Duration
	Type        string
	OrderID     string
	Item        string
	Points      int
}

// TableName sets the table name for RunEvent
func (RunEvent) TableName() string {
	return "run_events"
}

// AgentActionLog is one entry of a bot's decision journal
type AgentActionLog struct {
	gorm.Model
	RunRecordID uint `gorm:"index"`
	Player      int
	At          time.Duration
	Kind        string
	Details     string `gorm:"type:text"`
}

// TableName sets the table name for AgentActionLog
func (AgentActionLog) TableName() string {
	return "agent_actions"
}
