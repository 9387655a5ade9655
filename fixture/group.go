package fixture

import (
	"fmt"
	"sort"
)

type Group struct {
	Fixtures map[string]*Fixture
}

// Create a new FixtureGroup object with reasonable defaults for real usage.
func NewGroup() *Group {
	return &Group{
		Fixtures: make(map[string]*Fixture),
	}
}

func (fg *Group) GetFixture(id string) (*Fixture, error) {
	if fixture, found := fg.Fixtures[id]; found {
		return fixture, nil
	}
	return nil, fmt.Errorf("the fixture group does not contain a fixture with the id: %s", id)
}

func (fg *Group) HasFixture(id string) bool {
	_, found := fg.Fixtures[id]
	return found
}

func (fg *Group) AddFixture(id string, fixture *Fixture) {
	fg.Fixtures[id] = fixture
}

// Merge copies the fixtures of the other groups into fg. Later groups win on a name collision.
func (fg *Group) Merge(groups ...*Group) *Group {
	for _, g := range groups {
		for id, fixture := range g.Fixtures {
			fg.Fixtures[id] = fixture
		}
	}
	return fg
}

// Each calls fn for every fixture in name order.
func (fg *Group) Each(fn func(id string, fixture *Fixture)) {
	ids := make([]string, 0, len(fg.Fixtures))
	for id := range fg.Fixtures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fn(id, fg.Fixtures[id])
	}
}

// HasFixtures returns true if there are fixtures in the group
func (fg *Group) HasFixtures() bool {
	return len(fg.Fixtures) > 0
}

// Count returns the number of fixtures in the group
func (fg *Group) Count() int {
	return len(fg.Fixtures)
}
