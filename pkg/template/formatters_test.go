package template

import (
	"testing"
	"time"
)

func TestCurrencyFormatter(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"whole dollars", 4999, "$49.99"},
		{"exact dollar", 100, "$1.00"},
		{"single cent", 1, "$0.01"},
		{"zero", 0, "$0.00"},
		{"large amount", 1234567, "$12345.67"},
		{"numeric string", "2500", "$25.00"},
		{"float cents", 2500.0, "$25.00"},
		{"non-numeric passthrough", "free", "free"},
		{"empty string passthrough", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApplyFormatter(tt.value, "currency"); got != tt.want {
				t.Errorf("currency(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestDateFormatters(t *testing.T) {
	tests := []struct {
		name      string
		formatter string
		value     any
		want      string
	}{
		{"formatDate rfc3339", "formatDate", "2024-03-15T00:00:00Z", "March 15, 2024"},
		{"formatDate date only", "formatDate", "2024-12-01", "December 1, 2024"},
		{"formatDate time.Time", "formatDate", time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC), "July 4, 2025"},
		{"formatDate garbage", "formatDate", "yesterday", "yesterday"},
		{"formatDateTime", "formatDateTime", "2024-03-15T14:30:00Z", "Mar 15, 2024, 2:30 PM"},
		{"formatDateTime morning", "formatDateTime", "2024-03-15T09:05:00Z", "Mar 15, 2024, 9:05 AM"},
		{"formatDateTime garbage", "formatDateTime", "not a date", "not a date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApplyFormatter(tt.value, tt.formatter); got != tt.want {
				t.Errorf("%s(%v) = %q, want %q", tt.formatter, tt.value, got, tt.want)
			}
		})
	}
}

func TestCaseFormatters(t *testing.T) {
	tests := []struct {
		formatter string
		value     any
		want      string
	}{
		{"uppercase", "cold greens", "COLD GREENS"},
		{"lowercase", "Cold Greens", "cold greens"},
		{"capitalize", "ana maria", "Ana maria"},
		{"capitalize", "A", "A"},
		{"capitalize", "", ""},
		{"uppercase", 12, "12"},
	}
	for _, tt := range tests {
		t.Run(tt.formatter+"/"+formatValue(tt.value), func(t *testing.T) {
			if got := ApplyFormatter(tt.value, tt.formatter); got != tt.want {
				t.Errorf("%s(%v) = %q, want %q", tt.formatter, tt.value, got, tt.want)
			}
		})
	}
}

func TestNumberFormatter(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"thousands", 1234567, "1,234,567"},
		{"small", 42, "42"},
		{"string input", "9000", "9,000"},
		{"decimal", 1234.5, "1,234.5"},
		{"garbage passthrough", "a lot", "a lot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApplyFormatter(tt.value, "number"); got != tt.want {
				t.Errorf("number(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestPercentFormatter(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"integer", 15, "15%"},
		{"float", 12.5, "12.5%"},
		{"string", "20", "20%"},
		{"garbage passthrough", "half", "half"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApplyFormatter(tt.value, "percent"); got != tt.want {
				t.Errorf("percent(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestUnknownFormatterFallsBack(t *testing.T) {
	if got := ApplyFormatter("hello", "sparkle"); got != "hello" {
		t.Errorf("got %q", got)
	}
	if got := ApplyFormatter(42, "sparkle"); got != "42" {
		t.Errorf("got %q", got)
	}
}

func TestFormatterInTemplate(t *testing.T) {
	data := map[string]any{"pct": 10, "n": 1500}
	got := Substitute("Save {{pct|percent}} on {{n|number}} bottles", data)
	want := "Save 10% on 1,500 bottles"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
