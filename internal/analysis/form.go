package analysis

import (
	"maps"
	"strconv"
	"strings"
	"sync"
	"time"

	domain "github.com/fortunes/fortunes-web/internal/domain/analysis"
	"github.com/fortunes/fortunes-web/internal/validation"
	"golang.org/x/text/unicode/norm"
)

// Field names match the enqueue body keys.
const (
	FieldNameSei   = "name_sei"
	FieldNameMei   = "name_mei"
	FieldBirthDate = "birth_date"
	FieldBirthHour = "birth_hour"
)

// Fields lists the form fields in display order.
var Fields = []string{FieldNameSei, FieldNameMei, FieldBirthDate, FieldBirthHour}

// Form holds the analysis input and its per-field errors. Set revalidates the
// changed field for inline display; Validate is the submit-time gate.
type Form struct {
	now func() time.Time

	mu     sync.Mutex
	values map[string]string
	errors map[string]string
}

// NewForm creates an empty form. now defaults to time.Now.
func NewForm(now func() time.Time) *Form {
	if now == nil {
		now = time.Now
	}
	return &Form{
		now:    now,
		values: make(map[string]string, len(Fields)),
		errors: make(map[string]string),
	}
}

// Set stores value for field and returns the field's current error, if any.
func (f *Form) Set(field, value string) string {
	value = normalize(field, value)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[field] = value
	msg := f.validator(field)(value)
	if msg == "" {
		delete(f.errors, field)
	} else {
		f.errors[field] = msg
	}
	return msg
}

// Value returns the stored value for field.
func (f *Form) Value(field string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[field]
}

// Errors returns a copy of the per-field errors.
func (f *Form) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return maps.Clone(f.errors)
}

// Validate checks every field and returns the request when all pass.
// Field errors are replaced by the outcome of this check.
func (f *Form) Validate() (domain.Request, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fv := validation.New()
	for _, field := range Fields {
		fv.Validate(field, f.values[field], f.validator(field))
	}
	f.errors = maps.Clone(fv.Errors())
	if !fv.Valid() {
		return domain.Request{}, false
	}

	hour, _ := strconv.Atoi(strings.TrimSpace(f.values[FieldBirthHour]))
	return domain.Request{
		NameSei:   f.values[FieldNameSei],
		NameMei:   f.values[FieldNameMei],
		BirthDate: strings.TrimSpace(f.values[FieldBirthDate]),
		BirthHour: hour,
	}, true
}

func (f *Form) validator(field string) validation.Validator {
	switch field {
	case FieldNameSei:
		return validation.Required("Family name", domain.NameMaxLen)
	case FieldNameMei:
		return validation.Required("Given name", domain.NameMaxLen)
	case FieldBirthDate:
		return validation.NotFutureDate("Birth date", f.now)
	case FieldBirthHour:
		return validation.IntRange("Birth hour", domain.BirthHourMin, domain.BirthHourMax)
	default:
		return func(string) string { return "" }
	}
}

// normalize applies NFKC so full-width digits and letters from Japanese
// input methods compare the same as what the backend stores.
func normalize(field, value string) string {
	switch field {
	case FieldNameSei, FieldNameMei, FieldBirthDate, FieldBirthHour:
		return strings.TrimSpace(norm.NFKC.String(value))
	default:
		return value
	}
}
