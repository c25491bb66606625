package attribute

import (
	"sort"
)

// Analysis is one node of the analysis tree. Selecting an analysis turns on
// its categories; exclusive analyses allow only one child at a time.
type Analysis struct {
	name       string
	label      string
	parent     *Analysis
	children   []*Analysis
	exclusive  bool
	required   bool
	categories map[string]struct{}
}

func (a *Analysis) Name() string { return a.name }
func (a *Analysis) Parent() *Analysis { return a.parent }
func (a *Analysis) IsExclusive() bool { return a.exclusive }
func (a *Analysis) SetExclusive(b bool) { a.exclusive = b }
func (a *Analysis) IsRequired() bool { return a.required }
func (a *Analysis) SetRequired(b bool) { a.required = b }
func (a *Analysis) SetLabel(label string) { a.label = label }
func (a *Analysis) HasLabel() bool { return a.label != "" }

// Label returns the display label, falling back to the name
func (a *Analysis) Label() string {
	if a.label == "" {
		return a.name
	}
	return a.label
}

// Children returns the child analyses in insertion order
func (a *Analysis) Children() []*Analysis {
	return append([]*Analysis(nil), a.children...)
}

// AddCategory adds a category turned on by the analysis
func (a *Analysis) AddCategory(c string) { a.categories[c] = struct{}{} }

// Categories returns the local categories, sorted
func (a *Analysis) Categories() []string {
	out := make([]string, 0, len(a.categories))
	for c := range a.categories {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// AllCategories returns the local categories plus every ancestor's
func (a *Analysis) AllCategories() []string {
	all := make(map[string]struct{})
	for cur := a; cur != nil; cur = cur.parent {
		for c := range cur.categories {
			all[c] = struct{}{}
		}
	}
	out := make([]string, 0, len(all))
	for c := range all {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Analyses is the set of analyses of a resource, arranged as a forest
type Analyses struct {
	byName            map[string]*Analysis
	order             []*Analysis
	topLevelExclusive bool
}

// NewAnalyses creates an empty set
func NewAnalyses() *Analyses {
	return &Analyses{byName: make(map[string]*Analysis)}
}

// Create adds a top-level analysis
func (s *Analyses) Create(name string) (*Analysis, error) {
	if _, exists := s.byName[name]; exists {
		return nil, enrich(ErrDuplicateName, "analysis %q", name)
	}
	a := &Analysis{name: name, categories: make(map[string]struct{})}
	s.byName[name] = a
	s.order = append(s.order, a)
	return a, nil
}

// Find returns the analysis named name, or nil
func (s *Analyses) Find(name string) *Analysis { return s.byName[name] }

// Len returns the number of analyses
func (s *Analyses) Len() int { return len(s.order) }

// All returns every analysis in creation order
func (s *Analyses) All() []*Analysis { return append([]*Analysis(nil), s.order...) }

// SetParent moves analysis name under parent. Cycles are refused.
func (s *Analyses) SetParent(name, parent string) error {
	a, p := s.byName[name], s.byName[parent]
	if a == nil || p == nil {
		return enrich(ErrNotFound, "analysis %q or parent %q", name, parent)
	}
	for cur := p; cur != nil; cur = cur.parent {
		if cur == a {
			return enrich(ErrPrerequisiteCycle, "analysis %q cannot be its own ancestor", name)
		}
	}
	if a.parent != nil {
		old := a.parent
		for i, c := range old.children {
			if c == a {
				old.children = append(old.children[:i], old.children[i+1:]...)
				break
			}
		}
	}
	a.parent = p
	p.children = append(p.children, a)
	return nil
}

// TopLevel returns the analyses without a parent
func (s *Analyses) TopLevel() []*Analysis {
	var out []*Analysis
	for _, a := range s.order {
		if a.parent == nil {
			out = append(out, a)
		}
	}
	return out
}

func (s *Analyses) AreTopLevelExclusive() bool { return s.topLevelExclusive }
func (s *Analyses) SetTopLevelExclusive(b bool) { s.topLevelExclusive = b }

// AnalysisItemName is the item holding the choice when top-level analyses
// are exclusive
const AnalysisItemName = "Analysis"

// BuildDefinition creates a definition whose items mirror the analysis
// tree. Exclusive levels become discrete string items with one choice per
// child; other levels become optional void or group items.
func (s *Analyses) BuildDefinition(r *Resource, typeName string) (*Definition, error) {
	def, err := r.CreateDefinition(typeName, "")
	if err != nil {
		return nil, err
	}
	top := s.TopLevel()
	if s.topLevelExclusive {
		sdef, err := buildExclusiveItem(AnalysisItemName, "", top)
		if err != nil {
			return nil, err
		}
		return def, def.AddItemDefinition(sdef)
	}
	for _, a := range top {
		idef, err := buildAnalysisItem(a)
		if err != nil {
			return nil, err
		}
		idef.SetIsOptional(!a.required)
		if err := def.AddItemDefinition(idef); err != nil {
			return nil, err
		}
	}
	return def, nil
}

func buildAnalysisItem(a *Analysis) (ItemDefinition, error) {
	var idef ItemDefinition
	switch {
	case len(a.children) == 0:
		idef = NewVoidItemDefinition(a.name)
	case a.exclusive:
		sdef, err := buildExclusiveItem(a.name, a.label, a.children)
		if err != nil {
			return nil, err
		}
		idef = sdef
	default:
		g := NewGroupItemDefinition(a.name)
		for _, c := range a.children {
			child, err := buildAnalysisItem(c)
			if err != nil {
				return nil, err
			}
			child.SetIsOptional(!c.required)
			if err := g.AddItemDefinition(child); err != nil {
				return nil, err
			}
		}
		idef = g
	}
	if a.label != "" {
		idef.SetLabel(a.label)
	}
	for c := range a.categories {
		idef.LocalCategories().InsertInclusion(c)
	}
	return idef, nil
}

func buildExclusiveItem(name, label string, choices []*Analysis) (*ValueItemDefinition, error) {
	sdef := NewStringItemDefinition(name)
	if label != "" {
		sdef.SetLabel(label)
	}
	for _, c := range choices {
		if err := sdef.AddDiscreteValue(c.Label(), c.name); err != nil {
			return nil, err
		}
		if len(c.children) == 0 {
			continue
		}
		child, err := buildAnalysisItem(c)
		if err != nil {
			return nil, err
		}
		if err := sdef.AddChildItemDefinition(child); err != nil {
			return nil, err
		}
		if err := sdef.AddConditionalItem(c.Label(), c.name); err != nil {
			return nil, err
		}
	}
	return sdef, nil
}
