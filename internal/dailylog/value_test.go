package dailylog

import "testing"

func TestParseDurationToSeconds(t *testing.T) {
	cases := []struct {
		raw     string
		want    *int
		wantErr string
	}{
		{"", nil, ""},
		{"  ", nil, ""},
		{"01:30:00", intPtr(5400), ""},
		{"0:00:30", intPtr(30), ""},
		{"12:59:59", intPtr(46799), ""},
		{"1:60:00", nil, "Duration minutes/seconds must be between 00 and 59."},
		{"1:00:60", nil, "Duration minutes/seconds must be between 00 and 59."},
		{"90 minutes", nil, "Duration must be in HH:MM:SS format."},
		{"1:2:3", nil, "Duration must be in HH:MM:SS format."},
		{"aa:bb:cc", nil, "Duration must be in HH:MM:SS format."},
		{"123:00:00", nil, "Duration must be in HH:MM:SS format."},
	}

	for _, tc := range cases {
		got, err := ParseDurationToSeconds(tc.raw)
		if tc.wantErr != "" {
			if err == nil || err.Error() != tc.wantErr {
				t.Fatalf("ParseDurationToSeconds(%q): got err %v, want %q", tc.raw, err, tc.wantErr)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseDurationToSeconds(%q): %v", tc.raw, err)
		}
		if (got == nil) != (tc.want == nil) || (got != nil && *got != *tc.want) {
			t.Fatalf("ParseDurationToSeconds(%q): got %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestFormatSecondsToDuration(t *testing.T) {
	if got := FormatSecondsToDuration(nil); got != "" {
		t.Fatalf("nil: got %q", got)
	}
	if got := FormatSecondsToDuration(intPtr(5400)); got != "01:30:00" {
		t.Fatalf("5400: got %q", got)
	}
	if got := FormatSecondsToDuration(intPtr(-5)); got != "00:00:00" {
		t.Fatalf("negative: got %q", got)
	}
}

func TestParseBooleanInput(t *testing.T) {
	truthy := []string{"true", "1", "YES", " y ", "on"}
	for _, raw := range truthy {
		if got := ParseBooleanInput(raw); got == nil || !*got {
			t.Fatalf("ParseBooleanInput(%q): want true", raw)
		}
	}
	falsy := []string{"false", "0", "No", "n", "OFF"}
	for _, raw := range falsy {
		if got := ParseBooleanInput(raw); got == nil || *got {
			t.Fatalf("ParseBooleanInput(%q): want false", raw)
		}
	}
	if got := ParseBooleanInput("maybe"); got != nil {
		t.Fatalf("ParseBooleanInput(maybe): want nil")
	}
	if got := ParseBooleanInput(""); got != nil {
		t.Fatalf("ParseBooleanInput(empty): want nil")
	}
}

func TestParseNumericInput(t *testing.T) {
	got, err := ParseNumericInput("12,5")
	if err != nil || got == nil || *got != 12.5 {
		t.Fatalf("ParseNumericInput(12,5): got %v, %v", got, err)
	}
	got, err = ParseNumericInput("  ")
	if err != nil || got != nil {
		t.Fatalf("ParseNumericInput(blank): got %v, %v", got, err)
	}
	if _, err = ParseNumericInput("abc"); err == nil {
		t.Fatalf("ParseNumericInput(abc): expected error")
	}
}

func intPtr(v int) *int { return &v }
