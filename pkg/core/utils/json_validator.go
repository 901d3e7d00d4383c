package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

var codeFenceRe = regexp.MustCompile("```(?:json|JSON)?\\s*|\\s*```")

// StripCodeFences removes ```json ... ``` wrappers that chat models put around JSON answers.
func StripCodeFences(s string) string {
	return strings.TrimSpace(codeFenceRe.ReplaceAllString(s, ""))
}

// ExtractJSONObject returns the outermost {...} span of s, or s unchanged when none is found.
// Models occasionally prefix the object with a sentence despite being told not to.
func ExtractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return s
	}
	return s[start : end+1]
}

// RepairJSON attempts to fix common JSON errors from LLM outputs.
// Uses github.com/RealAlexandreAI/json-repair:
// - Missing quotes around keys
// - Single quotes instead of double quotes
// - Unclosed arrays/objects
// - Trailing commas
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
	if err := hjson.Unmarshal([]byte(hjsonData), &result); err != nil {
		return "", fmt.Errorf("HJSON_PARSE_ERROR: %v", err)
	}

	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("JSON_MARSHAL_ERROR: %v", err)
	}
	return string(jsonBytes), nil
}

// SmartParse tries multiple parsing strategies to decode input into schema.
// Order of attempts:
// 1. Standard JSON parse
// 2. JSON repair
// 3. Hjson parse (most lenient)
func SmartParse(input string, schema interface{}) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("SMART_PARSE_FAILED: empty input")
	}

	if err := json.Unmarshal([]byte(input), schema); err == nil {
		return input, nil
	}

	if repaired, err := RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return repaired, nil
		}
	}

	if hjsonResult, err := ParseHJSON(input); err == nil {
		if err := json.Unmarshal([]byte(hjsonResult), schema); err == nil {
			return hjsonResult, nil
		}
	}

	return "", fmt.Errorf("SMART_PARSE_FAILED: all parsing strategies failed for input")
}
