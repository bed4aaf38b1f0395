// Package crew defines the static station roster whose blood samples can be tested.
// This package is PURE and must NOT import any infrastructure packages.
package crew

// Lifecycle marks whether a sample comes from a living crew member or from storage.
// It only changes flavor text, never mechanics.
type Lifecycle string

const (
	LifecycleAlive    Lifecycle = "alive"
	LifecycleArchived Lifecycle = "archived" // Died before the blood-test scene; freezer/autopsy draw
)

// Member is one immutable roster entry.
type Member struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Lifecycle Lifecycle `json:"lifecycle"`
}

// IsArchived reports whether the sample is an archived draw.
func (m Member) IsArchived() bool {
	return m.Lifecycle == LifecycleArchived
}

// SampleTag is the short label used on the test console for untested samples.
func (m Member) SampleTag() string {
	if m.IsArchived() {
		return "ARCHIVED SAMPLE"
	}
	return "LIVE SAMPLE"
}

var roster = []Member{
	{ID: "macready", Name: "MACREADY", Lifecycle: LifecycleAlive},

	{ID: "garry", Name: "GARRY", Lifecycle: LifecycleAlive},
	{ID: "windows", Name: "WINDOWS", Lifecycle: LifecycleAlive},
	{ID: "nauls", Name: "NAULS", Lifecycle: LifecycleAlive},
	{ID: "palmer", Name: "PALMER", Lifecycle: LifecycleAlive},

	{ID: "norris", Name: "NORRIS", Lifecycle: LifecycleArchived},
	{ID: "copper", Name: "COPPER", Lifecycle: LifecycleArchived},
	{ID: "clark", Name: "CLARK", Lifecycle: LifecycleArchived},
	{ID: "fuchs", Name: "FUCHS", Lifecycle: LifecycleArchived},
	{ID: "bennings", Name: "BENNINGS", Lifecycle: LifecycleArchived},
}

// Roster returns a copy of the ten-member roster in display order.
func Roster() []Member {
	out := make([]Member, len(roster))
	copy(out, roster)
	return out
}

// IDs returns the roster ids in display order.
func IDs() []string {
	ids := make([]string, len(roster))
	for i, m := range roster {
		ids[i] = m.ID
	}
	return ids
}

// Lookup finds a member by id.
func Lookup(id string) (Member, bool) {
	for _, m := range roster {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}

// DisplayName returns the member's name, or the raw id when it is not on the roster.
func DisplayName(id string) string {
	if m, ok := Lookup(id); ok {
		return m.Name
	}
	return id
}
