package ai

import (
	"errors"
	"testing"
)

func TestParseSummary(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		wantSummary    string
		wantNextAction string
		wantErr        bool
	}{
		{
			name:           "plain json",
			input:          `{"summary": "Strong lead", "next_action": "Call tomorrow"}`,
			wantSummary:    "Strong lead",
			wantNextAction: "Call tomorrow",
		},
		{
			name:           "json code fence",
			input:          "```json\n{\"summary\": \"Strong lead\", \"next_action\": \"Call tomorrow\"}\n```",
			wantSummary:    "Strong lead",
			wantNextAction: "Call tomorrow",
		},
		{
			name:           "bare code fence",
			input:          "```\n{\"summary\": \"Strong lead\", \"next_action\": \"Call tomorrow\"}\n```",
			wantSummary:    "Strong lead",
			wantNextAction: "Call tomorrow",
		},
		{
			name:           "surrounding whitespace",
			input:          "\n\n  {\"summary\": \"Strong lead\", \"next_action\": \"Call tomorrow\"}  \n",
			wantSummary:    "Strong lead",
			wantNextAction: "Call tomorrow",
		},
		{
			name:    "not json",
			input:   "Here is my analysis of the lead...",
			wantErr: true,
		},
		{
			name:    "truncated json",
			input:   `{"summary": "Strong lead", "next_ac`,
			wantErr: true,
		},
		{
			name:    "empty summary",
			input:   `{"summary": "", "next_action": "Call tomorrow"}`,
			wantErr: true,
		},
		{
			name:    "whitespace next action",
			input:   `{"summary": "Strong lead", "next_action": "   "}`,
			wantErr: true,
		},
		{
			name:    "missing fields",
			input:   `{"other": "value"}`,
			wantErr: true,
		},
		{
			name:    "empty response",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSummary(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformed) {
					t.Fatalf("expected ErrMalformed, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSummary returned error: %v", err)
			}
			if got.Summary != tt.wantSummary {
				t.Errorf("summary = %q, want %q", got.Summary, tt.wantSummary)
			}
			if got.NextAction != tt.wantNextAction {
				t.Errorf("next_action = %q, want %q", got.NextAction, tt.wantNextAction)
			}
		})
	}
}
