package stack

import (
	"slices"
	"sort"

	"github.com/skt-inc/quicklink-infra/internal/common"
)

// EffectAllow is the only effect grants carry; the composer never emits
// deny statements.
const EffectAllow = "Allow"

// GrantStatement binds a principal to the minimal action set satisfying one
// requested capability on one resource. Statements for the same
// principal/resource pair accumulate by action-set union.
type GrantStatement struct {
	Principal common.LogicalID
	Resource  common.LogicalID
	Actions   []string
	Effect    string
}

// OutputDeclaration declares one entry of the stack's output manifest.
// Parts mixes literal strings and References; the resolved value is their
// concatenation, which covers derived values like a health-check URL built
// from a gateway URL plus a fixed suffix.
type OutputDeclaration struct {
	Name        string
	Parts       []any
	Description string
}

// Graph is the ordered collection of descriptors, grants, and output
// declarations for one stack. A Graph is built once, consumed once by the
// synthesizer, and discarded; nothing is shared between runs.
type Graph struct {
	descriptors []*Descriptor
	index       map[common.LogicalID]*Descriptor
	grants      []GrantStatement
	outputs     []OutputDeclaration
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{index: make(map[common.LogicalID]*Descriptor)}
}

// Add registers a new descriptor. It fails with DuplicateIdentityError when
// the logical ID is taken, MissingPropertyError when a required property is
// absent or empty, and OutOfOrderConstructionError when any Reference in the
// properties points at a descriptor not yet in the graph.
func (g *Graph) Add(kind common.ResourceKind, id common.LogicalID, properties map[string]any) (*Descriptor, error) {
	if _, exists := g.index[id]; exists {
		return nil, &DuplicateIdentityError{LogicalID: id}
	}
	for _, prop := range requiredProperties[kind] {
		value, ok := properties[prop]
		if !ok || value == nil {
			return nil, &MissingPropertyError{LogicalID: id, Property: prop}
		}
		if str, isString := value.(string); isString && str == "" {
			return nil, &MissingPropertyError{LogicalID: id, Property: prop}
		}
	}
	for _, ref := range references(properties) {
		if _, exists := g.index[ref.Source]; !exists {
			return nil, &OutOfOrderConstructionError{LogicalID: id, DependsOn: ref.Source}
		}
	}

	desc := &Descriptor{LogicalID: id, Kind: kind, Properties: properties}
	g.descriptors = append(g.descriptors, desc)
	g.index[id] = desc
	return desc, nil
}

// Lookup returns the descriptor registered under the given logical ID.
func (g *Graph) Lookup(id common.LogicalID) (*Descriptor, bool) {
	desc, ok := g.index[id]
	return desc, ok
}

// Descriptors returns all descriptors in insertion order.
func (g *Graph) Descriptors() []*Descriptor {
	return g.descriptors
}

// AttachGrant records a grant statement. A statement for an already granted
// principal/resource pair merges into the existing one: the action sets
// union, stay sorted, and never duplicate.
func (g *Graph) AttachGrant(st GrantStatement) GrantStatement {
	for i, existing := range g.grants {
		if existing.Principal == st.Principal && existing.Resource == st.Resource {
			merged := existing.Actions
			for _, action := range st.Actions {
				if !slices.Contains(merged, action) {
					merged = append(merged, action)
				}
			}
			sort.Strings(merged)
			g.grants[i].Actions = merged
			return g.grants[i]
		}
	}
	actions := slices.Clone(st.Actions)
	sort.Strings(actions)
	st.Actions = actions
	st.Effect = EffectAllow
	g.grants = append(g.grants, st)
	return st
}

// Grants returns all grant statements in insertion order.
func (g *Graph) Grants() []GrantStatement {
	return g.grants
}

// GrantsFor returns the statements attached to the given principal.
func (g *Graph) GrantsFor(principal common.LogicalID) []GrantStatement {
	var out []GrantStatement
	for _, st := range g.grants {
		if st.Principal == principal {
			out = append(out, st)
		}
	}
	return out
}

// DeclareOutput appends an output declaration. Every Reference in the parts
// must point at an existing descriptor.
func (g *Graph) DeclareOutput(decl OutputDeclaration) error {
	for _, part := range decl.Parts {
		for _, ref := range references(part) {
			if _, exists := g.index[ref.Source]; !exists {
				return &OutOfOrderConstructionError{LogicalID: common.LogicalID(decl.Name), DependsOn: ref.Source}
			}
		}
	}
	g.outputs = append(g.outputs, decl)
	return nil
}

// OutputDeclarations returns declarations in declaration order.
func (g *Graph) OutputDeclarations() []OutputDeclaration {
	return g.outputs
}
