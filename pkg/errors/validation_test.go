package errors

import "testing"

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "src/main.c", false},
		{"valid nested", "lib/util/strings.cpp", false},
		{"valid filename only", "main.c", false},
		{"valid with dots", "v1.2.3/parser.h", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 600)), true},
		{"absolute path", "/etc/passwd", true},
		{"path traversal", "../../../etc/passwd", true},
		{"path traversal middle", "foo/../bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateSourcePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "main.c", false},
		{"absolute", "/home/me/src/main.c", false},
		{"parent", "../other/main.c", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"null byte", "a\x00.c", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSourcePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSourcePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"0", false},
		{"0.0", false},
		{"0.12.3", false},
		{"", true},
		{"1", true},
		{"0.", true},
		{"0.01", true},
		{"0.-1", true},
		{"0.a", true},
	}
	for _, tt := range tests {
		err := ValidateNodeID(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if err != nil && !Is(err, ErrCodeInvalidInput) {
			t.Errorf("ValidateNodeID(%q) returned wrong error code: %v", tt.input, err)
		}
	}
}

func TestValidateViewID(t *testing.T) {
	if err := ValidateViewID("6f1c1c1e-8d55-4c4e-9a57-3e4a0e7f3b21"); err != nil {
		t.Errorf("valid uuid rejected: %v", err)
	}
	for _, bad := range []string{"", "abc", "6f1c1c1e-8d55-4c4e-9a57"} {
		if err := ValidateViewID(bad); !Is(err, ErrCodeInvalidInput) {
			t.Errorf("ValidateViewID(%q) = %v", bad, err)
		}
	}
}
