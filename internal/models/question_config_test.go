package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		kind    QuestionTypeKind
		config  interface{}
		wantErr bool
	}{
		{
			name:   "short text with limits",
			kind:   KindShortText,
			config: ShortTextConfig{MaxLength: 80, Placeholder: "Company name"},
		},
		{
			name:    "short text zero max length",
			kind:    KindShortText,
			config:  map[string]interface{}{"max_length": 0},
			wantErr: true,
		},
		{
			name:   "single choice with options",
			kind:   KindSingleChoice,
			config: ChoiceConfig{Options: []string{"Yes", "No"}, AllowOther: true},
		},
		{
			name:    "single choice empty options",
			kind:    KindSingleChoice,
			config:  map[string]interface{}{"options": []string{}},
			wantErr: true,
		},
		{
			name:    "multi choice missing options",
			kind:    KindMultiChoice,
			config:  map[string]interface{}{"allow_other": true},
			wantErr: true,
		},
		{
			name:   "numeric range",
			kind:   KindNumericRange,
			config: NumericRangeConfig{Min: 0, Max: 100, Step: 0.5},
		},
		{
			name:    "numeric range missing bounds",
			kind:    KindNumericRange,
			config:  map[string]interface{}{"min": 1},
			wantErr: true,
		},
		{
			name:   "year matrix",
			kind:   KindYearMatrix,
			config: YearMatrixConfig{Rows: []string{"Revenue"}, StartYear: 2020, EndYear: 2025},
		},
		{
			name:    "year matrix without rows",
			kind:    KindYearMatrix,
			config:  map[string]interface{}{"start_year": 2020, "end_year": 2025},
			wantErr: true,
		},
		{
			name:    "unknown property rejected",
			kind:    KindPercentage,
			config:  map[string]interface{}{"items": []string{"A"}, "bogus": true},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Question{ID: "q-1", TypeKind: tt.kind, Config: MustConfig(tt.config)}
			err := ValidateConfig(q)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateConfigUnknownKindPasses(t *testing.T) {
	q := Question{
		ID:       "q-1",
		TypeKind: QuestionTypeKind("custom_widget"),
		Config:   NewQuestionConfig(json.RawMessage(`{"anything": "goes"}`)),
	}
	assert.NoError(t, ValidateConfig(q))
}

func TestValidateConfigEmptyPayloadPasses(t *testing.T) {
	q := Question{ID: "q-1", TypeKind: KindShortText}
	assert.NoError(t, ValidateConfig(q))
}

func TestQuestionConfigRoundTrip(t *testing.T) {
	q := Question{
		ID:       "q-1",
		Text:     "Coverage tier",
		TypeKind: KindSingleChoice,
		Config:   MustConfig(ChoiceConfig{Options: []string{"Bronze", "Gold"}}),
	}

	data, err := json.Marshal(q)
	require.NoError(t, err)

	var decoded Question
	require.NoError(t, json.Unmarshal(data, &decoded))

	var cfg ChoiceConfig
	require.NoError(t, decoded.Config.Decode(&cfg))
	assert.Equal(t, []string{"Bronze", "Gold"}, cfg.Options)
}

func TestTemplateCloneIsDeep(t *testing.T) {
	original := Template{
		ID:         "tpl-1",
		SurveyCode: "SUR-1",
		Sections:   map[string]int{"Coverage": 0},
		Questions: []Question{
			{ID: "q-1", Text: "A", TypeKind: KindShortText, Order: 0,
				Config: MustConfig(ShortTextConfig{MaxLength: 10})},
		},
	}

	clone := original.Clone()
	clone.Questions[0].Text = "changed"
	clone.Sections["Coverage"] = 5

	assert.Equal(t, "A", original.Questions[0].Text)
	assert.Equal(t, 0, original.Sections["Coverage"])
}
