// Package catalog is the static misconception knowledge base. It links
// recurring wrong answers to the conceptual error behind them and to the
// strategies used to remediate it.
package catalog

import "strings"

// Misconception describes a known misconception pattern.
type Misconception struct {
	ID          string
	Name        string
	Subject     string
	Description string

	// CommonErrors are short examples of the wrong answers this
	// misconception tends to produce.
	CommonErrors []string

	// AffectedTopics are topic-id substrings. A topic is affected when its
	// id contains any of them.
	AffectedTopics []string

	// Strategies are remediation strategies in recommended order.
	Strategies []string
}

// AffectsTopic reports whether topicID contains any affected-topic substring.
func (m *Misconception) AffectsTopic(topicID string) bool {
	id := strings.ToLower(topicID)
	for _, t := range m.AffectedTopics {
		if t != "" && strings.Contains(id, t) {
			return true
		}
	}
	return false
}

// registry is the package-level misconception registry, keyed by ID.
var registry map[string]*Misconception

// bySubject indexes misconceptions by subject.
var bySubject map[string][]*Misconception

// ordered preserves seed order so iteration is deterministic.
var ordered []*Misconception

func init() {
	registry = make(map[string]*Misconception, len(seedMisconceptions))
	bySubject = make(map[string][]*Misconception)
	ordered = make([]*Misconception, 0, len(seedMisconceptions))
	for i := range seedMisconceptions {
		m := &seedMisconceptions[i]
		registry[m.ID] = m
		bySubject[m.Subject] = append(bySubject[m.Subject], m)
		ordered = append(ordered, m)
	}
}

// Get returns a misconception by ID, or nil if not found.
func Get(id string) *Misconception {
	return registry[id]
}

// ForSubject returns all misconceptions for a subject. An empty subject
// returns the whole catalog.
func ForSubject(subject string) []*Misconception {
	if subject == "" {
		return All()
	}
	return bySubject[subject]
}

// All returns every misconception in seed order.
func All() []*Misconception {
	result := make([]*Misconception, len(ordered))
	copy(result, ordered)
	return result
}
