package errors

import (
	"testing"
)

func TestValidateLayoutName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "shipping-label", false},
		{"valid with underscore", "inventory_card", false},
		{"valid with dot", "v2.final", false},
		{"valid with spaces", "office door sign", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 200)), true},
		{"path traversal", "../secrets", true},
		{"forward slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"hidden file", ".hidden", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLayoutName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLayoutName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSessionID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid uuid", "1b4e28ba-2fa1-11d2-883f-0016d3cca427", false},
		{"valid short", "abc123", false},
		{"valid underscore", "sess_42", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 100)), true},
		{"slash", "a/b", true},
		{"space", "a b", true},
		{"colon", "a:b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSessionID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSessionID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateMediaID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid tape", "tape-12", false},
		{"valid die cut", "die-cut-17x54", false},

		{"empty", "", true},
		{"uppercase", "Tape-12", true},
		{"underscore", "tape_12", true},
		{"slash", "tape/12", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMediaID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMediaID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
