package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// ReportRequestMessage asks a worker to build one report and save it.
// Only the fields relevant to Report are set.
type ReportRequestMessage struct {
	ID       string `json:"id"`
	Report   string `json:"report"`
	Anchor   string `json:"anchor,omitempty"`
	Window   string `json:"window,omitempty"`
	Date     string `json:"date,omitempty"`
	Category string `json:"category,omitempty"`
	Year     int    `json:"year,omitempty"`
	Month    int    `json:"month,omitempty"`
	Filename string `json:"filename,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// NewReportRequestMessage stamps a request with the current time.
func NewReportRequestMessage(id, report string) *ReportRequestMessage {
	return &ReportRequestMessage{
		ID:        id,
		Report:    report,
		Timestamp: time.Now(),
	}
}

// Validate checks the fields every request needs.
func (m *ReportRequestMessage) Validate() error {
	if m.ID == "" {
		return errors.New("report request without id")
	}
	if m.Report == "" {
		return errors.New("report request without report name")
	}
	return nil
}

func (m *ReportRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReportRequestMessageFromJSON(data []byte) (*ReportRequestMessage, error) {
	var msg ReportRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
