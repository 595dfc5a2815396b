// Package grants maps abstract capabilities onto minimal provider action
// sets and attaches the resulting least-privilege statements to a stack
// graph. Callers request exactly the capability they need per resource;
// there is no blanket administrative grant.
package grants

import (
	"github.com/skt-inc/quicklink-infra/internal/common"
	"github.com/skt-inc/quicklink-infra/internal/stack"
)

// Capability is an abstract access right a principal can request on a
// resource.
type Capability string

const (
	ReadData        Capability = "ReadData"
	ReadWriteData   Capability = "ReadWriteData"
	SendMessage     Capability = "SendMessage"
	ConsumeMessages Capability = "ConsumeMessages"
	InvokeFunction  Capability = "InvokeFunction"
)

// actionTable is the fixed capability-to-action mapping per resource kind.
// Grants are never widened or narrowed beyond these entries.
var actionTable = map[common.ResourceKind]map[Capability][]string{
	common.KindTable: {
		ReadData: {
			"dynamodb:GetItem",
			"dynamodb:Query",
			"dynamodb:Scan",
		},
		ReadWriteData: {
			"dynamodb:DeleteItem",
			"dynamodb:GetItem",
			"dynamodb:PutItem",
			"dynamodb:Query",
			"dynamodb:Scan",
			"dynamodb:UpdateItem",
		},
	},
	common.KindQueue: {
		SendMessage: {
			"sqs:SendMessage",
		},
		ConsumeMessages: {
			"sqs:DeleteMessage",
			"sqs:ReceiveMessage",
		},
	},
	common.KindFunction: {
		InvokeFunction: {
			"lambda:InvokeFunction",
		},
	},
}

// Actions returns the fixed action list for a capability on a kind.
func Actions(kind common.ResourceKind, capability Capability) ([]string, bool) {
	actions, ok := actionTable[kind][capability]
	return actions, ok
}

// Grant attaches the minimal statement satisfying the capability to the
// principal's policy collection on the graph. It fails with
// DanglingGrantError when either descriptor is missing and
// UnsupportedCapabilityError when the resource kind has no mapping for the
// capability. Repeat grants on the same principal/resource pair union their
// action sets instead of duplicating statements.
func Grant(g *stack.Graph, principal, resource common.LogicalID, capability Capability) (stack.GrantStatement, error) {
	if _, ok := g.Lookup(principal); !ok {
		return stack.GrantStatement{}, &stack.DanglingGrantError{Principal: principal, Resource: resource, Missing: principal}
	}
	target, ok := g.Lookup(resource)
	if !ok {
		return stack.GrantStatement{}, &stack.DanglingGrantError{Principal: principal, Resource: resource, Missing: resource}
	}
	actions, ok := Actions(target.Kind, capability)
	if !ok {
		return stack.GrantStatement{}, &stack.UnsupportedCapabilityError{
			Resource:   resource,
			Kind:       target.Kind,
			Capability: string(capability),
		}
	}
	return g.AttachGrant(stack.GrantStatement{
		Principal: principal,
		Resource:  resource,
		Actions:   actions,
		Effect:    stack.EffectAllow,
	}), nil
}
