package stack

import (
	"github.com/skt-inc/quicklink-infra/internal/common"
)

// Reference is a deferred symbolic pointer to another descriptor's
// runtime-assigned output. It stands in for a value that only exists once the
// target resource is provisioned (a generated queue URL, a table name) and
// stays opaque until synthesis resolves it in a single pass.
type Reference struct {
	Source common.LogicalID
	Output common.OutputName
}

// Ref builds a Reference to the named output of the given descriptor.
func Ref(source common.LogicalID, output common.OutputName) Reference {
	return Reference{Source: source, Output: output}
}

// Descriptor declares one infrastructure primitive. Property values may be
// literals or References; References are stored unresolved. Descriptors are
// immutable once registered in a Graph.
type Descriptor struct {
	LogicalID  common.LogicalID
	Kind       common.ResourceKind
	Properties map[string]any
}

// requiredProperties lists, per kind, the properties that must be present and
// non-empty at creation. Nothing is ever silently defaulted.
var requiredProperties = map[common.ResourceKind][]string{
	common.KindTable:    {"TableName", "PartitionKey"},
	common.KindQueue:    {"QueueName"},
	common.KindFunction: {"FunctionName", "Runtime", "Handler", "Code"},
	common.KindRestApi:  {"RestApiName", "StageName", "ThrottlingRateLimit", "ThrottlingBurstLimit"},
}

// kindOutputs lists the runtime-assigned outputs each kind exposes. A
// Reference to anything outside this set fails synthesis with
// UnresolvedReferenceError.
var kindOutputs = map[common.ResourceKind][]common.OutputName{
	common.KindTable:    {"TableName", "TableArn"},
	common.KindQueue:    {"QueueName", "QueueUrl", "QueueArn"},
	common.KindFunction: {"FunctionName", "FunctionArn"},
	common.KindRestApi:  {"RestApiId", "Url"},
}

// arnOutput names the output that carries the ARN grants resolve resource
// statements against. The gateway is never a grant target.
var arnOutput = map[common.ResourceKind]common.OutputName{
	common.KindTable:    "TableArn",
	common.KindQueue:    "QueueArn",
	common.KindFunction: "FunctionArn",
}

// Outputs returns the output names the given kind exposes.
func Outputs(kind common.ResourceKind) []common.OutputName {
	return kindOutputs[kind]
}

// HasOutput reports whether the descriptor's kind exposes the named output.
func (d *Descriptor) HasOutput(name common.OutputName) bool {
	for _, out := range kindOutputs[d.Kind] {
		if out == name {
			return true
		}
	}
	return false
}

// ArnOutput returns the name of the ARN output for the descriptor's kind.
func (d *Descriptor) ArnOutput() (common.OutputName, bool) {
	out, ok := arnOutput[d.Kind]
	return out, ok
}

// references collects every Reference reachable through a property value.
func references(v any) []Reference {
	switch val := v.(type) {
	case Reference:
		return []Reference{val}
	case map[string]any:
		var refs []Reference
		for _, nested := range val {
			refs = append(refs, references(nested)...)
		}
		return refs
	case []any:
		var refs []Reference
		for _, nested := range val {
			refs = append(refs, references(nested)...)
		}
		return refs
	default:
		return nil
	}
}
