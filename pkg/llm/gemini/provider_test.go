package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractAnswer(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr string
	}{
		{
			name: "candidate shape",
			body: `{"candidates":[{"content":{"parts":[{"text":"The slab cures in 7 days."}],"role":"model"}}]}`,
			want: "The slab cures in 7 days.",
		},
		{
			name:    "error shape",
			body:    `{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`,
			wantErr: "RESOURCE_EXHAUSTED",
		},
		{
			name:    "blocked prompt shape",
			body:    `{"promptFeedback":{"blockReason":"SAFETY"}}`,
			wantErr: "prompt blocked",
		},
		{
			name:    "candidate without parts",
			body:    `{"candidates":[{"content":{"parts":[],"role":"model"}}]}`,
			wantErr: "no content parts",
		},
		{
			name:    "unrecognized shape",
			body:    `{"result":"something else entirely"}`,
			wantErr: "unrecognized response shape",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractAnswer([]byte(tt.body))
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
