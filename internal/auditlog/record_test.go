package auditlog

import (
	"reflect"
	"testing"
)

func TestDiffDetectsChanges(t *testing.T) {
	before := map[string]interface{}{"name": "Fade", "price_cents": 3000, "active": true}
	after := map[string]interface{}{"name": "Fade", "price_cents": 3500, "active": false}

	changed, changes := Diff(before, after)
	if !reflect.DeepEqual(changed, []string{"active", "price_cents"}) {
		t.Errorf("unexpected changed keys %v", changed)
	}
	if changes["price_cents"].Old != 3000 || changes["price_cents"].New != 3500 {
		t.Errorf("unexpected price change %+v", changes["price_cents"])
	}
	if _, present := changes["name"]; present {
		t.Error("unchanged field must not appear in the diff")
	}
}

func TestDiffCreateAndDelete(t *testing.T) {
	snapshot := map[string]interface{}{"name": "Fade"}

	changed, changes := Diff(nil, snapshot)
	if !reflect.DeepEqual(changed, []string{"name"}) {
		t.Errorf("create diff keys = %v", changed)
	}
	if changes["name"].Old != nil || changes["name"].New != "Fade" {
		t.Errorf("create diff values = %+v", changes["name"])
	}

	changed, changes = Diff(snapshot, nil)
	if !reflect.DeepEqual(changed, []string{"name"}) {
		t.Errorf("delete diff keys = %v", changed)
	}
	if changes["name"].Old != "Fade" || changes["name"].New != nil {
		t.Errorf("delete diff values = %+v", changes["name"])
	}
}

func TestDiffEqualSnapshots(t *testing.T) {
	snapshot := map[string]interface{}{"name": "Fade", "ids": []interface{}{1, 2}}
	same := map[string]interface{}{"name": "Fade", "ids": []interface{}{1, 2}}

	changed, _ := Diff(snapshot, same)
	if len(changed) != 0 {
		t.Errorf("equal snapshots must diff to nothing, got %v", changed)
	}
}

func TestDiffKeysSorted(t *testing.T) {
	changed, _ := Diff(
		map[string]interface{}{"zeta": 1, "alpha": 1, "mid": 1},
		map[string]interface{}{"zeta": 2, "alpha": 2, "mid": 2},
	)
	if !reflect.DeepEqual(changed, []string{"alpha", "mid", "zeta"}) {
		t.Errorf("changed keys must be sorted, got %v", changed)
	}
}
