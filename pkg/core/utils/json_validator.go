package utils

import (
	"encoding/json"
	"fmt"
	"reflect"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// RepairJSON attempts to fix common JSON errors in third-party payloads.
// Uses github.com/RealAlexandreAI/json-repair for intelligent repair.
// Supported repairs:
// - Missing quotes around keys
// - Single quotes instead of double quotes
// - Unclosed arrays/objects
// - Trailing commas
// - Leading/trailing whitespace and markdown code blocks
func RepairJSON(malformedJSON string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformedJSON)
	if err != nil {
		return "", fmt.Errorf("JSON_REPAIR_FAILED: %v", err)
	}
	return repaired, nil
}

// ParseHJSON parses Human-friendly JSON (Hjson) and returns standard JSON.
func ParseHJSON(hjsonData string) (string, error) {
	var result interface{}
	err := hjson.Unmarshal([]byte(hjsonData), &result)
	if err != nil {
		return "", fmt.Errorf("HJSON_PARSE_ERROR: %v", err)
	}

	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("JSON_MARSHAL_ERROR: %v", err)
	}

	return string(jsonBytes), nil
}

// SmartParse tries multiple parsing strategies to decode input into schema,
// which must be a non-nil pointer.
// Order of attempts:
// 1. Standard JSON parse
// 2. JSON repair
// 3. Hjson parse (most lenient)
//
// schema is reset to its zero value before each retry so a failed attempt
// never leaks partially decoded fields into the result.
// Returns the JSON text that was finally decoded.
func SmartParse(input string, schema interface{}) (string, error) {
	rv := reflect.ValueOf(schema)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return "", fmt.Errorf("SMART_PARSE_FAILED: schema must be a non-nil pointer")
	}
	reset := func() { rv.Elem().Set(reflect.Zero(rv.Elem().Type())) }

	// Try 1: Standard JSON
	firstErr := json.Unmarshal([]byte(input), schema)
	if firstErr == nil {
		return input, nil
	}

	// Try 2: JSON Repair
	if repaired, err := RepairJSON(input); err == nil {
		reset()
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return repaired, nil
		}
	}

	// Try 3: Hjson (most lenient)
	if hjsonResult, err := ParseHJSON(input); err == nil {
		reset()
		if err := json.Unmarshal([]byte(hjsonResult), schema); err == nil {
			return hjsonResult, nil
		}
	}

	reset()
	return "", fmt.Errorf("SMART_PARSE_FAILED: all parsing strategies failed: %w", firstErr)
}
