package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// QuestionTypeKind discriminates the shape of a question's config payload.
type QuestionTypeKind string

const (
	KindShortText    QuestionTypeKind = "short_text"
	KindLongText     QuestionTypeKind = "long_text"
	KindSingleChoice QuestionTypeKind = "single_choice"
	KindMultiChoice  QuestionTypeKind = "multi_choice"
	KindNumericRange QuestionTypeKind = "numeric_range"
	KindPercentage   QuestionTypeKind = "percentage"
	KindYearMatrix   QuestionTypeKind = "year_matrix"
)

// QuestionConfig carries the type-specific payload. The sync engine
// copies it verbatim; unknown kinds pass through without interpretation.
type QuestionConfig struct {
	raw json.RawMessage
}

// NewQuestionConfig wraps a raw JSON payload.
func NewQuestionConfig(raw json.RawMessage) QuestionConfig {
	return QuestionConfig{raw: raw}
}

// MustConfig marshals v into a QuestionConfig; panics on marshal failure.
// Intended for literals in tests and fixtures.
func MustConfig(v interface{}) QuestionConfig {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return QuestionConfig{raw: data}
}

func (c QuestionConfig) MarshalJSON() ([]byte, error) {
	if len(c.raw) == 0 {
		return []byte("null"), nil
	}
	return c.raw, nil
}

func (c *QuestionConfig) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		c.raw = nil
		return nil
	}
	c.raw = append([]byte(nil), data...)
	return nil
}

// Raw returns the underlying payload bytes.
func (c QuestionConfig) Raw() json.RawMessage {
	return c.raw
}

// IsZero reports whether no payload is present.
func (c QuestionConfig) IsZero() bool {
	return len(c.raw) == 0
}

// Clone copies the payload bytes.
func (c QuestionConfig) Clone() QuestionConfig {
	if c.raw == nil {
		return QuestionConfig{}
	}
	return QuestionConfig{raw: append([]byte(nil), c.raw...)}
}

// Decode unmarshals the payload into one of the typed config structs.
func (c QuestionConfig) Decode(v interface{}) error {
	if len(c.raw) == 0 {
		return fmt.Errorf("question config is empty")
	}
	return json.Unmarshal(c.raw, v)
}

// Typed configs for the known question kinds.

type ShortTextConfig struct {
	MaxLength   int    `json:"max_length,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
}

type LongTextConfig struct {
	MaxLength int `json:"max_length,omitempty"`
	Rows      int `json:"rows,omitempty"`
}

type ChoiceConfig struct {
	Options    []string `json:"options"`
	AllowOther bool     `json:"allow_other,omitempty"`
}

type NumericRangeConfig struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step,omitempty"`
}

type PercentageConfig struct {
	Items []string `json:"items"`
}

type YearMatrixConfig struct {
	Rows      []string `json:"rows"`
	StartYear int      `json:"start_year"`
	EndYear   int      `json:"end_year"`
}

// JSON schemas for the known kinds, compiled once at init. Kinds absent
// from this map are opaque and skip validation.
var configSchemas = map[QuestionTypeKind]*gojsonschema.Schema{}

var configSchemaSources = map[QuestionTypeKind]string{
	KindShortText: `{
		"type": "object",
		"properties": {
			"max_length": {"type": "integer", "minimum": 1},
			"placeholder": {"type": "string"}
		},
		"additionalProperties": false
	}`,
	KindLongText: `{
		"type": "object",
		"properties": {
			"max_length": {"type": "integer", "minimum": 1},
			"rows": {"type": "integer", "minimum": 1}
		},
		"additionalProperties": false
	}`,
	KindSingleChoice: `{
		"type": "object",
		"properties": {
			"options": {"type": "array", "items": {"type": "string"}, "minItems": 1},
			"allow_other": {"type": "boolean"}
		},
		"required": ["options"],
		"additionalProperties": false
	}`,
	KindMultiChoice: `{
		"type": "object",
		"properties": {
			"options": {"type": "array", "items": {"type": "string"}, "minItems": 1},
			"allow_other": {"type": "boolean"}
		},
		"required": ["options"],
		"additionalProperties": false
	}`,
	KindNumericRange: `{
		"type": "object",
		"properties": {
			"min": {"type": "number"},
			"max": {"type": "number"},
			"step": {"type": "number", "exclusiveMinimum": 0}
		},
		"required": ["min", "max"],
		"additionalProperties": false
	}`,
	KindPercentage: `{
		"type": "object",
		"properties": {
			"items": {"type": "array", "items": {"type": "string"}, "minItems": 1}
		},
		"required": ["items"],
		"additionalProperties": false
	}`,
	KindYearMatrix: `{
		"type": "object",
		"properties": {
			"rows": {"type": "array", "items": {"type": "string"}, "minItems": 1},
			"start_year": {"type": "integer"},
			"end_year": {"type": "integer"}
		},
		"required": ["rows", "start_year", "end_year"],
		"additionalProperties": false
	}`,
}

func init() {
	for kind, src := range configSchemaSources {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
		if err != nil {
			panic(fmt.Sprintf("question config schema for %s: %v", kind, err))
		}
		configSchemas[kind] = schema
	}
}

// ValidateConfig checks a question's config payload against the schema
// for its kind. Unknown kinds and empty payloads pass.
func ValidateConfig(q Question) error {
	schema, known := configSchemas[q.TypeKind]
	if !known || q.Config.IsZero() {
		return nil
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(q.Config.Raw()))
	if err != nil {
		return fmt.Errorf("config validation for question %s: %w", q.ID, err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, resErr := range result.Errors() {
		msgs = append(msgs, resErr.String())
	}
	return fmt.Errorf("config for question %s invalid: %s", q.ID, strings.Join(msgs, "; "))
}
