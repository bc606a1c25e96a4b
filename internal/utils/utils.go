package utils

import "strings"

// ParseTopicArea extracts the area segment from a sensor topic of the form
// office/sensors/<area>/<kind>. Returns "" when the topic does not match.
func ParseTopicArea(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != "office" || parts[1] != "sensors" {
		return ""
	}
	return parts[2]
}
