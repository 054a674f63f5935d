package auditlog

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"gorm.io/gorm"
)

// fieldChange is one before/after pair in the serialized changes document.
type fieldChange struct {
	Old interface{} `json:"old"`
	New interface{} `json:"new"`
}

// Diff compares two field snapshots and returns the sorted keys whose values
// differ, with their old/new pairs. A nil snapshot means "no object", so a
// create diffs against nothing and a delete diffs to nothing.
func Diff(before, after map[string]interface{}) ([]string, map[string]fieldChange) {
	keys := map[string]struct{}{}
	for key := range before {
		keys[key] = struct{}{}
	}
	for key := range after {
		keys[key] = struct{}{}
	}

	changed := []string{}
	changes := map[string]fieldChange{}
	for key := range keys {
		oldValue, hadOld := before[key]
		newValue, hasNew := after[key]
		if hadOld && hasNew && reflect.DeepEqual(oldValue, newValue) {
			continue
		}
		changed = append(changed, key)
		changes[key] = fieldChange{Old: oldValue, New: newValue}
	}
	sort.Strings(changed)
	return changed, changes
}

// Record writes an audit row inside the caller's transaction. The actor is
// always an explicit parameter; repositories must pass the staff user
// performing the mutation rather than read it from ambient state.
//
// Updates that change nothing are not recorded.
func Record(tx *gorm.DB, table, objectID, action string, before, after map[string]interface{}, actorID string) error {
	changed, changes := Diff(before, after)
	if action == ActionUpdate && len(changed) == 0 {
		return nil
	}

	payload, err := json.Marshal(changes)
	if err != nil {
		return fmt.Errorf("marshal audit changes: %w", err)
	}

	entry := AuditLog{
		Table:       table,
		ObjectID:    objectID,
		Action:      action,
		ChangedKeys: changed,
		Changes:     string(payload),
		ActorID:     actorID,
	}
	return tx.Create(&entry).Error
}
