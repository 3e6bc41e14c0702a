package domain

import "fmt"

// RecordID derives the deterministic store identifier for an attribute event.
// Replaying the same logical change yields the same identifier, which makes
// the creation write naturally idempotent: the store rejects the duplicate
// instead of overwriting the original.
func RecordID(instanceID int64, attribute string, version int, eventType EventType) string {
	return fmt.Sprintf("%d:%s:%d:%s", instanceID, attribute, version, eventType)
}
