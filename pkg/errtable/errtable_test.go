package errtable

import (
	"reflect"
	"testing"

	"github.com/intentlab-dev/iopc/pkg/intent"
)

func TestBuild_OrderAndLookup(t *testing.T) {
	table := Build([]intent.ErrorRule{
		{Condition: "store unreachable", Action: "retry three times"},
		{Condition: "signing failure", Action: "alert the operator"},
	})

	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}
	want := []string{"store unreachable", "signing failure"}
	if got := table.Conditions(); !reflect.DeepEqual(got, want) {
		t.Errorf("Conditions() = %v, want %v", got, want)
	}

	action, ok := table.Resolve("signing failure")
	if !ok || action != "alert the operator" {
		t.Errorf("Resolve() = %q, %v", action, ok)
	}
	if _, ok := table.Resolve("unknown"); ok {
		t.Error("Resolve() found an entry for an unknown condition")
	}
}

func TestBuild_FirstRuleWins(t *testing.T) {
	table := Build([]intent.ErrorRule{
		{Condition: "timeout", Action: "retry"},
		{Condition: "timeout", Action: "abort"},
	})

	if table.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", table.Len())
	}
	if action, _ := table.Resolve("timeout"); action != "retry" {
		t.Errorf("Resolve(timeout) = %q, want the first rule", action)
	}
}

func TestBuild_Empty(t *testing.T) {
	table := Build(nil)
	if table.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", table.Len())
	}
	if entries := table.Entries(); len(entries) != 0 {
		t.Errorf("Entries() = %v, want none", entries)
	}
}

func TestEntries_Ordered(t *testing.T) {
	table := Build([]intent.ErrorRule{
		{Condition: "b", Action: "second"},
		{Condition: "a", Action: "first"},
	})

	want := []Entry{{Condition: "b", Action: "second"}, {Condition: "a", Action: "first"}}
	if got := table.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("Entries() = %v, want declaration order %v", got, want)
	}
}

func TestConditions_CopyIsolated(t *testing.T) {
	table := Build([]intent.ErrorRule{{Condition: "x", Action: "y"}})
	got := table.Conditions()
	got[0] = "mutated"
	if again := table.Conditions(); again[0] != "x" {
		t.Errorf("table mutated through returned slice: %v", again)
	}
}
