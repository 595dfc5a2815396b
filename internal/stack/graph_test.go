package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skt-inc/quicklink-infra/internal/common"
)

func tableProps(name string) map[string]any {
	return map[string]any{
		"TableName": name,
		"PartitionKey": map[string]any{
			"Name": "pk",
			"Type": "S",
		},
	}
}

func functionProps() map[string]any {
	return map[string]any{
		"FunctionName": "svc",
		"Runtime":      "java17",
		"Handler":      "com.example.Handler::handleRequest",
		"Code":         "app.jar",
	}
}

func TestAddRegistersDescriptor(t *testing.T) {
	g := NewGraph()

	desc, err := g.Add(common.KindTable, "UrlsTable", tableProps("urls"))
	require.NoError(t, err)
	assert.Equal(t, common.LogicalID("UrlsTable"), desc.LogicalID)
	assert.Equal(t, common.KindTable, desc.Kind)

	found, ok := g.Lookup("UrlsTable")
	require.True(t, ok)
	assert.Same(t, desc, found)
}

func TestAddDuplicateLogicalIDFails(t *testing.T) {
	g := NewGraph()
	_, err := g.Add(common.KindTable, "Thing", tableProps("a"))
	require.NoError(t, err)

	// Same ID with a different kind still collides.
	_, err = g.Add(common.KindQueue, "Thing", map[string]any{"QueueName": "q"})
	var dup *DuplicateIdentityError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, common.LogicalID("Thing"), dup.LogicalID)
}

func TestAddMissingRequiredPropertyFails(t *testing.T) {
	g := NewGraph()

	_, err := g.Add(common.KindTable, "Broken", map[string]any{"TableName": "urls"})
	var missing *MissingPropertyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "PartitionKey", missing.Property)

	// An empty code path counts as missing; the package is opaque but the
	// path must be non-empty.
	props := functionProps()
	props["Code"] = ""
	_, err = g.Add(common.KindFunction, "Fn", props)
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Code", missing.Property)
	assert.Equal(t, common.LogicalID("Fn"), missing.LogicalID)
}

func TestAddRejectsReferenceToMissingDescriptor(t *testing.T) {
	g := NewGraph()
	props := functionProps()
	props["Environment"] = map[string]any{
		"TABLE": Ref("UrlsTable", "TableName"),
	}

	_, err := g.Add(common.KindFunction, "Fn", props)
	var outOfOrder *OutOfOrderConstructionError
	require.ErrorAs(t, err, &outOfOrder)
	assert.Equal(t, common.LogicalID("Fn"), outOfOrder.LogicalID)
	assert.Equal(t, common.LogicalID("UrlsTable"), outOfOrder.DependsOn)
}

func TestAttachGrantMergesPerPrincipalResourcePair(t *testing.T) {
	g := NewGraph()
	_, err := g.Add(common.KindFunction, "Fn", functionProps())
	require.NoError(t, err)
	_, err = g.Add(common.KindTable, "UrlsTable", tableProps("urls"))
	require.NoError(t, err)

	g.AttachGrant(GrantStatement{Principal: "Fn", Resource: "UrlsTable", Actions: []string{"dynamodb:Scan", "dynamodb:GetItem"}})
	merged := g.AttachGrant(GrantStatement{Principal: "Fn", Resource: "UrlsTable", Actions: []string{"dynamodb:PutItem", "dynamodb:GetItem"}})

	require.Len(t, g.Grants(), 1)
	assert.Equal(t, []string{"dynamodb:GetItem", "dynamodb:PutItem", "dynamodb:Scan"}, merged.Actions)
	assert.Equal(t, EffectAllow, g.Grants()[0].Effect)
}

func TestDeclareOutputRejectsDanglingReference(t *testing.T) {
	g := NewGraph()

	err := g.DeclareOutput(OutputDeclaration{
		Name:  "ApiUrl",
		Parts: []any{Ref("Api", "Url")},
	})
	var outOfOrder *OutOfOrderConstructionError
	require.ErrorAs(t, err, &outOfOrder)
	assert.Equal(t, common.LogicalID("Api"), outOfOrder.DependsOn)
	assert.Empty(t, g.OutputDeclarations())
}

func TestHasOutputFollowsKind(t *testing.T) {
	g := NewGraph()
	desc, err := g.Add(common.KindQueue, "Q", map[string]any{"QueueName": "q"})
	require.NoError(t, err)

	assert.True(t, desc.HasOutput("QueueUrl"))
	assert.False(t, desc.HasOutput("TableName"))

	assert.Equal(t, []common.OutputName{"QueueName", "QueueUrl", "QueueArn"}, Outputs(common.KindQueue))
	assert.Equal(t, []common.OutputName{"TableName", "TableArn"}, Outputs(common.KindTable))
}
