package dailylog

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseDurationToSeconds parses an "HH:MM:SS" duration into seconds. An empty
// input clears the value (nil, no error).
func ParseDurationToSeconds(raw string) (*int, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	parts := strings.Split(value, ":")
	if len(parts) != 3 || len(parts[0]) == 0 || len(parts[0]) > 2 || len(parts[1]) != 2 || len(parts[2]) != 2 ||
		!allDigits(parts[0]) || !allDigits(parts[1]) || !allDigits(parts[2]) {
		return nil, fmt.Errorf("Duration must be in HH:MM:SS format.")
	}

	hours, _ := strconv.Atoi(parts[0])
	minutes, _ := strconv.Atoi(parts[1])
	seconds, _ := strconv.Atoi(parts[2])

	if minutes > 59 || seconds > 59 {
		return nil, fmt.Errorf("Duration minutes/seconds must be between 00 and 59.")
	}

	total := hours*3600 + minutes*60 + seconds
	return &total, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatSecondsToDuration renders seconds as "HH:MM:SS". Nil and negative
// inputs render empty.
func FormatSecondsToDuration(value *int) string {
	if value == nil {
		return ""
	}
	total := *value
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// ParseBooleanInput interprets the accepted truthy/falsy spellings. Anything
// else, including empty input, is nil.
func ParseBooleanInput(raw string) *bool {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "true", "1", "yes", "y", "on":
		v := true
		return &v
	case "false", "0", "no", "n", "off":
		v := false
		return &v
	}
	return nil
}

// ParseNumericInput parses a manual numeric entry, accepting a comma decimal
// separator. Empty input clears the value.
func ParseNumericInput(raw string) (*float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(strings.Replace(trimmed, ",", ".", 1), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, fmt.Errorf("Invalid numeric value.")
	}
	return &value, nil
}
