package uuid

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !IsValid(a) {
		t.Fatalf("New() = %q is not a valid UUID", a)
	}
	if a[14] != '7' {
		t.Errorf("New() = %q, want version 7", a)
	}

	b, _ := New()
	if a == b {
		t.Error("expected distinct identifiers")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "canonical", in: "0190a6f0-0000-7000-8000-000000000001", want: "0190a6f0-0000-7000-8000-000000000001"},
		{name: "upper case", in: "0190A6F0-0000-7000-8000-0000000000AA", want: "0190a6f0-0000-7000-8000-0000000000aa"},
		{name: "garbage", in: "not-a-uuid", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	if IsValid(strings.Repeat("x", 36)) {
		t.Error("expected invalid")
	}
}
