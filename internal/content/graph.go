package content

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// TopologicalOrder returns topics ordered so every topic follows its
// prerequisites (Kahn's algorithm). Ties break on Order then ID.
// Prerequisites outside the set are ignored; topics on a cycle are appended
// last in Order.
func TopologicalOrder(topics []Topic) []Topic {
	ordered, rest := kahn(topics)
	return append(ordered, rest...)
}

// kahn returns the topics it could order and, separately, the topics left
// over because they sit on or behind a prerequisite cycle.
func kahn(topics []Topic) (ordered, rest []Topic) {
	byID := make(map[string]Topic, len(topics))
	for _, t := range topics {
		byID[t.ID] = t
	}

	inDegree := make(map[string]int, len(topics))
	dependents := make(map[string][]string)
	for _, t := range topics {
		for _, p := range t.Prerequisites {
			if _, ok := byID[p]; !ok {
				continue
			}
			inDegree[t.ID]++
			dependents[p] = append(dependents[p], t.ID)
		}
	}

	less := func(a, b string) int {
		ta, tb := byID[a], byID[b]
		if c := cmp.Compare(ta.Order, tb.Order); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	}

	var queue []string
	for _, t := range topics {
		if inDegree[t.ID] == 0 {
			queue = append(queue, t.ID)
		}
	}
	slices.SortFunc(queue, less)

	visited := make(map[string]bool, len(topics))
	result := make([]Topic, 0, len(topics))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited[id] = true
		result = append(result, byID[id])

		var ready []string
		for _, dep := range dependents[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
		queue = append(queue, ready...)
		slices.SortFunc(queue, less)
	}

	for _, t := range topics {
		if !visited[t.ID] {
			rest = append(rest, t)
		}
	}
	slices.SortFunc(rest, func(a, b Topic) int { return less(a.ID, b.ID) })
	return result, rest
}

// ValidatePrerequisites checks for duplicate ids, dangling prerequisites
// and cycles. Returns a joined error describing every problem found.
func ValidatePrerequisites(topics []Topic) error {
	var errs []error

	ids := make(map[string]bool, len(topics))
	for _, t := range topics {
		if ids[t.ID] {
			errs = append(errs, fmt.Errorf("duplicate topic id %q", t.ID))
		}
		ids[t.ID] = true
	}

	for _, t := range topics {
		for _, p := range t.Prerequisites {
			if !ids[p] {
				errs = append(errs, fmt.Errorf("topic %q references unknown prerequisite %q", t.ID, p))
			}
		}
	}

	if cyc := cyclicTopics(topics); len(cyc) > 0 {
		errs = append(errs, fmt.Errorf("prerequisite cycle among %v", cyc))
	}

	return errors.Join(errs...)
}

// cyclicTopics returns the ids Kahn's algorithm could not order.
func cyclicTopics(topics []Topic) []string {
	_, rest := kahn(topics)
	ids := make([]string, 0, len(rest))
	for _, t := range rest {
		ids = append(ids, t.ID)
	}
	slices.Sort(ids)
	return ids
}
