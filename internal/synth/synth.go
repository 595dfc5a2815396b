// Package synth walks a completed stack graph, resolves every deferred
// Reference against a freshly computed identifier snapshot, and serializes
// the result into a deployable template plus an output manifest.
package synth

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/skt-inc/quicklink-infra/internal/common"
	"github.com/skt-inc/quicklink-infra/internal/config"
	"github.com/skt-inc/quicklink-infra/internal/stack"
)

// Document is the synthesized template: resource definitions keyed by
// logical ID, each carrying its kind, resolved properties, and attached
// policy statements. JSON marshaling sorts map keys, which keeps repeated
// synthesis byte-identical.
type Document struct {
	Resources map[string]*ResourceEntry `json:"Resources"`
	Outputs   map[string]OutputEntry    `json:"Outputs,omitempty"`
}

// ResourceEntry is one resource definition in the template.
type ResourceEntry struct {
	Type       string            `json:"Type"`
	Properties map[string]any    `json:"Properties"`
	Policy     []PolicyStatement `json:"Policy,omitempty"`
}

// PolicyStatement is a resolved grant: the resource column carries the
// concrete ARN of the grant target.
type PolicyStatement struct {
	Effect   string   `json:"Effect"`
	Action   []string `json:"Action"`
	Resource string   `json:"Resource"`
}

// OutputEntry is the template-side form of an output declaration.
type OutputEntry struct {
	Value       string `json:"Value"`
	Description string `json:"Description,omitempty"`
}

// Output is one entry of the human-readable manifest, in declaration order.
type Output struct {
	Name        string
	Value       string
	Description string
}

// Synthesize resolves the graph into a template document and the ordered
// output manifest. It performs no I/O; on any error nothing is produced, so
// a failed run never leaves a partial artifact behind.
func Synthesize(g *stack.Graph, stackName common.StackName, env config.Environment) (*Document, []Output, error) {
	env = env.Normalize()
	snapshot, err := computeOutputs(g, stackName, env)
	if err != nil {
		return nil, nil, err
	}

	doc := &Document{Resources: make(map[string]*ResourceEntry, len(g.Descriptors()))}
	for _, d := range g.Descriptors() {
		resolved, err := resolveValue(snapshot, d.Properties)
		if err != nil {
			return nil, nil, err
		}
		doc.Resources[string(d.LogicalID)] = &ResourceEntry{
			Type:       string(d.Kind),
			Properties: resolved.(map[string]any),
		}
		glog.V(2).Infof("resolved resource %s (%s)", d.LogicalID, d.Kind)
	}

	for _, st := range g.Grants() {
		target, ok := g.Lookup(st.Resource)
		if !ok {
			return nil, nil, &stack.DanglingGrantError{Principal: st.Principal, Resource: st.Resource, Missing: st.Resource}
		}
		arnName, ok := target.ArnOutput()
		if !ok {
			return nil, nil, &stack.UnresolvedReferenceError{Source: st.Resource, Output: "Arn"}
		}
		resourceArn, err := lookupOutput(snapshot, st.Resource, arnName)
		if err != nil {
			return nil, nil, err
		}
		entry, ok := doc.Resources[string(st.Principal)]
		if !ok {
			return nil, nil, &stack.DanglingGrantError{Principal: st.Principal, Resource: st.Resource, Missing: st.Principal}
		}
		entry.Policy = append(entry.Policy, PolicyStatement{
			Effect:   st.Effect,
			Action:   st.Actions,
			Resource: resourceArn,
		})
	}

	manifest := make([]Output, 0, len(g.OutputDeclarations()))
	for _, decl := range g.OutputDeclarations() {
		value, err := resolveParts(snapshot, decl.Parts)
		if err != nil {
			return nil, nil, err
		}
		manifest = append(manifest, Output{Name: decl.Name, Value: value, Description: decl.Description})
	}
	if len(manifest) > 0 {
		doc.Outputs = make(map[string]OutputEntry, len(manifest))
		for _, out := range manifest {
			doc.Outputs[out.Name] = OutputEntry{Value: out.Value, Description: out.Description}
		}
	}

	return doc, manifest, nil
}

func lookupOutput(snapshot map[common.LogicalID]map[common.OutputName]string, source common.LogicalID, output common.OutputName) (string, error) {
	value, ok := snapshot[source][output]
	if !ok {
		return "", &stack.UnresolvedReferenceError{Source: source, Output: output}
	}
	return value, nil
}

// resolveValue replaces every Reference in a property tree with its concrete
// identifier. Everything else passes through untouched.
func resolveValue(snapshot map[common.LogicalID]map[common.OutputName]string, v any) (any, error) {
	switch value := v.(type) {
	case stack.Reference:
		return lookupOutput(snapshot, value.Source, value.Output)
	case map[string]any:
		out := make(map[string]any, len(value))
		for key, nested := range value {
			resolved, err := resolveValue(snapshot, nested)
			if err != nil {
				return nil, err
			}
			out[key] = resolved
		}
		return out, nil
	case []any:
		out := make([]any, len(value))
		for i, nested := range value {
			resolved, err := resolveValue(snapshot, nested)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return v, nil
	}
}

// resolveParts concatenates literal strings and resolved References into the
// final output value.
func resolveParts(snapshot map[common.LogicalID]map[common.OutputName]string, parts []any) (string, error) {
	var value string
	for _, part := range parts {
		switch p := part.(type) {
		case stack.Reference:
			resolved, err := lookupOutput(snapshot, p.Source, p.Output)
			if err != nil {
				return "", err
			}
			value += resolved
		case string:
			value += p
		default:
			value += fmt.Sprint(p)
		}
	}
	return value, nil
}
