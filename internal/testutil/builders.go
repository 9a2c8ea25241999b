package testutil

import (
	domain "github.com/fortunes/fortunes-web/internal/domain/analysis"
)

// RecordBuilder provides a fluent interface for building history records for testing.
type RecordBuilder struct {
	rec domain.Record
}

// NewRecord creates a new RecordBuilder with sensible defaults.
func NewRecord(id int64) *RecordBuilder {
	return &RecordBuilder{
		rec: domain.Record{
			ID:          id,
			Name:        "田中 太郎",
			BirthDate:   "1990-01-01",
			BirthHour:   12,
			ResultName:  map[string]any{"tenkaku": 12.0},
			ResultBirth: map[string]any{"meishiki": map[string]any{}},
			Summary:     "summary",
			Detail:      "detail",
			CreatedAt:   "2024-05-10T12:00:00",
		},
	}
}

// WithName sets the record name.
func (b *RecordBuilder) WithName(name string) *RecordBuilder {
	b.rec.Name = name
	return b
}

// WithSummary sets the summary text.
func (b *RecordBuilder) WithSummary(summary string) *RecordBuilder {
	b.rec.Summary = summary
	return b
}

// WithDetail sets the detail text.
func (b *RecordBuilder) WithDetail(detail string) *RecordBuilder {
	b.rec.Detail = detail
	return b
}

// Build returns the built record.
func (b *RecordBuilder) Build() domain.Record {
	return b.rec
}
