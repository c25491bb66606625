package attribute

// GroupItem holds rows of child items, one row per group instance
type GroupItem struct {
	item
	def  *GroupItemDefinition
	rows [][]Item
}

// GroupDefinition returns the typed definition
func (g *GroupItem) GroupDefinition() *GroupItemDefinition { return g.def }

func (g *GroupItem) NumberOfGroups() int { return len(g.rows) }
func (g *GroupItem) NumberOfRequiredGroups() int { return g.def.numRequired }
func (g *GroupItem) NumberOfItemsPerGroup() int { return len(g.def.children) }
func (g *GroupItem) IsExtensible() bool { return g.def.extensible }
func (g *GroupItem) MaxNumberOfGroups() int { return g.def.maxGroups }

func (g *GroupItem) buildRow() []Item {
	row := make([]Item, 0, len(g.def.children))
	for _, cd := range g.def.children {
		row = append(row, cd.newItem(g.att, g))
	}
	return row
}

// AppendGroup adds a row of freshly instantiated children
func (g *GroupItem) AppendGroup() error {
	if err := checkResize(g.Name(), len(g.rows)+1, g.def.numRequired, g.def.extensible, g.def.maxGroups); err != nil {
		return err
	}
	g.rows = append(g.rows, g.buildRow())
	return nil
}

// RemoveGroup deletes row i together with its children
func (g *GroupItem) RemoveGroup(i int) error {
	if err := checkResize(g.Name(), len(g.rows)-1, g.def.numRequired, g.def.extensible, g.def.maxGroups); err != nil {
		return err
	}
	if err := checkIndex(g.Name(), i, len(g.rows)); err != nil {
		return err
	}
	g.detach(g.rows[i])
	g.rows = append(g.rows[:i], g.rows[i+1:]...)
	return nil
}

// SetNumberOfGroups grows or shrinks to n rows
func (g *GroupItem) SetNumberOfGroups(n int) error {
	if n == len(g.rows) {
		return nil
	}
	if err := checkResize(g.Name(), n, g.def.numRequired, g.def.extensible, g.def.maxGroups); err != nil {
		return err
	}
	for len(g.rows) > n {
		g.detach(g.rows[len(g.rows)-1])
		g.rows = g.rows[:len(g.rows)-1]
	}
	for len(g.rows) < n {
		g.rows = append(g.rows, g.buildRow())
	}
	return nil
}

// detach drops any link rows held by reference items in row
func (g *GroupItem) detach(row []Item) {
	for _, it := range row {
		detachItem(it)
	}
}

// Items returns the children of row
func (g *GroupItem) Items(row int) []Item {
	if row < 0 || row >= len(g.rows) {
		return nil
	}
	return append([]Item(nil), g.rows[row]...)
}

// Item returns child i of row
func (g *GroupItem) Item(row, i int) Item {
	if row < 0 || row >= len(g.rows) || i < 0 || i >= len(g.rows[row]) {
		return nil
	}
	return g.rows[row][i]
}

// FindInGroup returns the child named name in row
func (g *GroupItem) FindInGroup(row int, name string) Item {
	if row < 0 || row >= len(g.rows) {
		return nil
	}
	for _, it := range g.rows[row] {
		if it.Name() == name {
			return it
		}
	}
	return nil
}

// Find returns the child named name in the first row
func (g *GroupItem) Find(name string) Item {
	return g.FindInGroup(0, name)
}

// Reset re-sizes to the required count and resets every child
func (g *GroupItem) Reset() {
	g.enabled = g.def.IsEnabledByDefault()
	for len(g.rows) > g.def.numRequired {
		g.detach(g.rows[len(g.rows)-1])
		g.rows = g.rows[:len(g.rows)-1]
	}
	for len(g.rows) < g.def.numRequired {
		g.rows = append(g.rows, g.buildRow())
	}
	for _, row := range g.rows {
		for _, it := range row {
			it.Reset()
		}
	}
}

// IsValid reports whether the group is disabled or every enabled child in
// every row is valid. Conditional groups also need the selected choice
// count to be within bounds.
func (g *GroupItem) IsValid() bool {
	if !g.IsEnabled() {
		return true
	}
	for _, row := range g.rows {
		chosen := 0
		for _, it := range row {
			if it.IsOptional() && it.LocalEnabled() {
				chosen++
			}
			if !it.IsValid() {
				return false
			}
		}
		if g.def.conditional {
			if chosen < g.def.minChoices || (g.def.maxChoices > 0 && chosen > g.def.maxChoices) {
				return false
			}
		}
	}
	return true
}
