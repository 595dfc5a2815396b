package stack

import (
	"fmt"

	"github.com/skt-inc/quicklink-infra/internal/common"
)

// DuplicateIdentityError reports two descriptors sharing a logical ID.
type DuplicateIdentityError struct {
	LogicalID common.LogicalID
}

func (e *DuplicateIdentityError) Error() string {
	return fmt.Sprintf("duplicate logical ID %q", e.LogicalID)
}

// MissingPropertyError reports a required property absent (or empty) at
// descriptor creation time.
type MissingPropertyError struct {
	LogicalID common.LogicalID
	Property  string
}

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf("resource %q is missing required property %q", e.LogicalID, e.Property)
}

// OutOfOrderConstructionError reports a descriptor or output declaration that
// references a logical ID not yet present in the graph.
type OutOfOrderConstructionError struct {
	LogicalID common.LogicalID
	DependsOn common.LogicalID
}

func (e *OutOfOrderConstructionError) Error() string {
	return fmt.Sprintf("resource %q references %q, which does not exist in the graph yet", e.LogicalID, e.DependsOn)
}

// DanglingGrantError reports a grant whose principal or resource descriptor
// does not exist in the graph.
type DanglingGrantError struct {
	Principal common.LogicalID
	Resource  common.LogicalID
	Missing   common.LogicalID
}

func (e *DanglingGrantError) Error() string {
	return fmt.Sprintf("grant from %q to %q references %q, which does not exist in the graph", e.Principal, e.Resource, e.Missing)
}

// UnsupportedCapabilityError reports a grant request for a capability the
// resource kind has no action mapping for.
type UnsupportedCapabilityError struct {
	Resource   common.LogicalID
	Kind       common.ResourceKind
	Capability string
}

func (e *UnsupportedCapabilityError) Error() string {
	return fmt.Sprintf("capability %q is not supported by %q (%s)", e.Capability, e.Resource, e.Kind)
}

// UnresolvedReferenceError reports a Reference whose target output was never
// produced by its source descriptor.
type UnresolvedReferenceError struct {
	Source common.LogicalID
	Output common.OutputName
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("reference to %q output %q cannot be resolved", e.Source, e.Output)
}
