package attribute

// AdvanceMode selects the read or write visibility axis
type AdvanceMode int

const (
	AdvanceRead AdvanceMode = iota
	AdvanceWrite
)

// String returns the string representation of the mode
func (m AdvanceMode) String() string {
	if m == AdvanceWrite {
		return "write"
	}
	return "read"
}

type advanceLevel struct {
	level uint
	set   bool
}

// advanceLevels holds local read/write levels, each optionally unset
type advanceLevels [2]advanceLevel

func (a *advanceLevels) local(mode AdvanceMode) (uint, bool) {
	l := a[mode]
	return l.level, l.set
}

func (a *advanceLevels) setLocal(mode AdvanceMode, level uint) {
	a[mode] = advanceLevel{level: level, set: true}
}

func (a *advanceLevels) unset(mode AdvanceMode) {
	a[mode] = advanceLevel{}
}

func maxLevel(a, b uint) uint {
	if a > b {
		return a
	}
	return b
}
