package content

import (
	"strings"
	"testing"
)

func topicIDs(ts []Topic) string {
	ids := make([]string, len(ts))
	for i, t := range ts {
		ids[i] = t.ID
	}
	return strings.Join(ids, ",")
}

func TestTopologicalOrder(t *testing.T) {
	topics := []Topic{
		{ID: "c", Order: 1, Prerequisites: []string{"b"}},
		{ID: "b", Order: 2, Prerequisites: []string{"a"}},
		{ID: "a", Order: 3},
		{ID: "d", Order: 0, Prerequisites: []string{"external"}},
	}
	if got, want := topicIDs(TopologicalOrder(topics)), "d,a,b,c"; got != want {
		t.Errorf("order = %s, want %s", got, want)
	}
}

func TestTopologicalOrderAppendsCycles(t *testing.T) {
	topics := []Topic{
		{ID: "x", Order: 2, Prerequisites: []string{"y"}},
		{ID: "y", Order: 1, Prerequisites: []string{"x"}},
		{ID: "z", Order: 3, Prerequisites: []string{"x"}},
		{ID: "root", Order: 9},
	}
	if got, want := topicIDs(TopologicalOrder(topics)), "root,y,x,z"; got != want {
		t.Errorf("order = %s, want %s", got, want)
	}
	if cyc := cyclicTopics(topics); len(cyc) != 3 {
		t.Errorf("cyclic = %v, want x y z", cyc)
	}
}

func TestValidatePrerequisites(t *testing.T) {
	ok := []Topic{{ID: "a"}, {ID: "b", Prerequisites: []string{"a"}}}
	if err := ValidatePrerequisites(ok); err != nil {
		t.Fatalf("valid graph: %v", err)
	}

	bad := []Topic{{ID: "a"}, {ID: "a"}, {ID: "b", Prerequisites: []string{"nope"}}}
	err := ValidatePrerequisites(bad)
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"duplicate topic", "unknown prerequisite"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}
