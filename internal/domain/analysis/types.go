// Package analysis defines the data shapes exchanged with the analysis backend:
// the enqueue request, job status payloads and persisted history records.
package analysis

import (
	"fmt"
	"strings"
)

const (
	// NameMaxLen bounds each name part.
	NameMaxLen = 50
	// BirthHourMin is the earliest accepted birth hour.
	BirthHourMin = 0
	// BirthHourMax is the latest accepted birth hour.
	BirthHourMax = 23
)

// Request is the enqueue body.
type Request struct {
	NameSei   string `json:"name_sei"`
	NameMei   string `json:"name_mei"`
	BirthDate string `json:"birth_date"`
	BirthHour int    `json:"birth_hour"`
}

// FullName joins the family and given name the way the backend stores it.
func (r Request) FullName() string {
	return strings.TrimSpace(r.NameSei + " " + r.NameMei)
}

// JobStatus is the payload returned while polling a job.
type JobStatus struct {
	Status string `json:"status"`
	Result any    `json:"result"`
}

// Record is one persisted analysis in the user's history.
type Record struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	BirthDate   string         `json:"birth_date"`
	BirthHour   int            `json:"birth_hour"`
	ResultName  map[string]any `json:"result_name"`
	ResultBirth map[string]any `json:"result_birth"`
	Summary     string         `json:"summary"`
	Detail      string         `json:"detail"`
	CreatedAt   string         `json:"created_at"`
}

// Display is the resolved shape handed to presentation.
type Display struct {
	ID          int64
	Title       string
	Birth       string
	Summary     string
	Detail      string
	ResultName  map[string]any
	ResultBirth map[string]any
}

// Display projects the record for rendering.
func (r Record) Display() Display {
	return Display{
		ID:          r.ID,
		Title:       r.Name,
		Birth:       fmt.Sprintf("%s %02d:00", r.BirthDate, r.BirthHour),
		Summary:     r.Summary,
		Detail:      r.Detail,
		ResultName:  r.ResultName,
		ResultBirth: r.ResultBirth,
	}
}

// FindRecord returns the record with the given id.
func FindRecord(records []Record, id int64) (Record, bool) {
	for _, r := range records {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}
