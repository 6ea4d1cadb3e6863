package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"shopfloor/internal/analytics"
	"shopfloor/internal/core"
)

// Routing keys on the direct exchange.
const (
	RoutingTimeEntryRecorded = "timeentry.recorded"
	RoutingReportComputed    = "report.computed"
)

// TimeEntryRecordedMessage carries a batch of raw clock events from the
// shop floor. Entries are validated by the consumer, not the producer.
type TimeEntryRecordedMessage struct {
	ID        string              `json:"id"`
	Entries   []core.RawTimeEntry `json:"entries"`
	Timestamp time.Time           `json:"timestamp"`
}

// NewTimeEntryRecordedMessage wraps entries in a message with a fresh ID
func NewTimeEntryRecordedMessage(entries []core.RawTimeEntry) *TimeEntryRecordedMessage {
	return &TimeEntryRecordedMessage{
		ID:        uuid.NewString(),
		Entries:   entries,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TimeEntryRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TimeEntryRecordedMessageFromJSON decodes a message. A message without
// entries is rejected.
func TimeEntryRecordedMessageFromJSON(data []byte) (*TimeEntryRecordedMessage, error) {
	var msg TimeEntryRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if len(msg.Entries) == 0 {
		return nil, errors.New("time entry message has no entries")
	}
	return &msg, nil
}

// ReportComputedMessage announces a resolved analytics pass. Consumers
// fetch the charts from the HTTP API or the report archive.
type ReportComputedMessage struct {
	ID          string    `json:"id"`
	PassID      string    `json:"passId"`
	GeneratedAt time.Time `json:"generatedAt"`
	Entries     int       `json:"entries"`
	Rejected    int       `json:"rejected"`
	Titles      []string  `json:"titles"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewReportComputedMessage summarises report
func NewReportComputedMessage(report analytics.Report) *ReportComputedMessage {
	titles := make([]string, len(report.Definitions))
	for i, d := range report.Definitions {
		titles[i] = d.Title
	}
	return &ReportComputedMessage{
		ID:          uuid.NewString(),
		PassID:      report.PassID,
		GeneratedAt: report.GeneratedAt,
		Entries:     report.Entries,
		Rejected:    report.Rejected,
		Titles:      titles,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReportComputedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportComputedMessageFromJSON decodes a report message
func ReportComputedMessageFromJSON(data []byte) (*ReportComputedMessage, error) {
	var msg ReportComputedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
