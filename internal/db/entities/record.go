package entities

import "time"

// Field accessors shared by the *FromRecord converters. Records come back
// from the repositories as map[string]interface{}; absent or null columns
// yield zero values here.

func stringField(record map[string]interface{}, key string) string {
	if v, ok := record[key].(string); ok {
		return v
	}
	return ""
}

func boolField(record map[string]interface{}, key string) bool {
	if v, ok := record[key].(bool); ok {
		return v
	}
	return false
}

func timeField(record map[string]interface{}, key string) time.Time {
	if v, ok := record[key].(time.Time); ok {
		return v
	}
	return time.Time{}
}

func nullableStringField(record map[string]interface{}, key string) *string {
	if v, ok := record[key].(string); ok && v != "" {
		return &v
	}
	return nil
}
