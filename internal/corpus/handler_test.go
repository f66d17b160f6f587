package corpus

import (
	"strings"
	"testing"
)

func TestValidateIngestRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     IngestRequest
		wantErr bool
	}{
		{"valid", IngestRequest{ExternalID: "t1", Author: "alice", Text: "hello"}, false},
		{"empty text is valid", IngestRequest{ExternalID: "t1"}, false},
		{"missing external id", IngestRequest{Text: "hello"}, true},
		{"blank external id", IngestRequest{ExternalID: "   ", Text: "hello"}, true},
		{"external id too long", IngestRequest{ExternalID: strings.Repeat("x", 300)}, true},
		{"author too long", IngestRequest{ExternalID: "t1", Author: strings.Repeat("a", 300)}, true},
		{"text too long", IngestRequest{ExternalID: "t1", Text: strings.Repeat("b", maxTextLength+1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIngestRequest(&tt.req)
			if tt.wantErr && err == nil {
				t.Fatalf("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := ValidateIngestRequest(&IngestRequest{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "external_id") {
		t.Errorf("error message should name the failing field, got %q", err.Error())
	}
}
