package resume

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldEmail    FieldType = "email"
	FieldPhone    FieldType = "phone"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldTextarea, FieldEmail, FieldPhone, FieldNumber, FieldDate, FieldSelect, FieldCheckbox:
		return true
	}
	return false
}

const MaxFields = 50

type Field struct {
	Key      string    `json:"key"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Options  []string  `json:"options,omitempty"`
	HelpText string    `json:"help_text,omitempty"`
}

type Template struct {
	ID          uuid.UUID
	VenueID     uuid.UUID
	Name        string
	Description string
	Fields      []Field
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var (
	ErrInvalidTemplate = errors.New("invalid template")

	fieldKeyRe = regexp.MustCompile(`^[a-z][a-z0-9_]{0,39}$`)
)

// Normalize trims user input in place and checks the builder rules. The
// returned error wraps ErrInvalidTemplate and names the first offending field.
func (t *Template) Normalize() error {
	t.Name = strings.TrimSpace(t.Name)
	t.Description = strings.TrimSpace(t.Description)
	if t.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidTemplate)
	}
	if len(t.Fields) == 0 || len(t.Fields) > MaxFields {
		return fmt.Errorf("%w: between 1 and %d fields required", ErrInvalidTemplate, MaxFields)
	}

	seen := make(map[string]struct{}, len(t.Fields))
	for i := range t.Fields {
		f := &t.Fields[i]
		f.Key = strings.TrimSpace(f.Key)
		f.Label = strings.TrimSpace(f.Label)
		f.HelpText = strings.TrimSpace(f.HelpText)

		if !fieldKeyRe.MatchString(f.Key) {
			return fmt.Errorf("%w: field %d has invalid key %q", ErrInvalidTemplate, i+1, f.Key)
		}
		if _, dup := seen[f.Key]; dup {
			return fmt.Errorf("%w: duplicate key %q", ErrInvalidTemplate, f.Key)
		}
		seen[f.Key] = struct{}{}

		if f.Label == "" {
			return fmt.Errorf("%w: field %q needs a label", ErrInvalidTemplate, f.Key)
		}
		if !f.Type.Valid() {
			return fmt.Errorf("%w: field %q has unknown type %q", ErrInvalidTemplate, f.Key, f.Type)
		}

		opts := make([]string, 0, len(f.Options))
		for _, o := range f.Options {
			o = strings.TrimSpace(o)
			if o != "" {
				opts = append(opts, o)
			}
		}
		f.Options = opts
		if f.Type == FieldSelect && len(f.Options) == 0 {
			return fmt.Errorf("%w: select field %q needs options", ErrInvalidTemplate, f.Key)
		}
		if f.Type != FieldSelect && len(f.Options) > 0 {
			return fmt.Errorf("%w: only select fields take options (%q)", ErrInvalidTemplate, f.Key)
		}
	}
	return nil
}
