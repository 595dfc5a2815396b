package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skt-inc/quicklink-infra/internal/config"
	"github.com/skt-inc/quicklink-infra/internal/stack"
)

func canonicalOptions() Options {
	return Options{
		AnalyticsQueue: true,
		CodePath:       "../target/quicklink-1.0.0-aws.jar",
		RateLimit:      config.DefaultRateLimit,
		BurstLimit:     config.DefaultBurstLimit,
	}
}

func TestStackCanonicalTopology(t *testing.T) {
	g, err := Stack(canonicalOptions())
	require.NoError(t, err)

	descriptors := g.Descriptors()
	require.Len(t, descriptors, 5)
	// Insertion order mirrors the construction stages.
	assert.Equal(t, UrlsTableID, descriptors[0].LogicalID)
	assert.Equal(t, TokensTableID, descriptors[1].LogicalID)
	assert.Equal(t, AnalyticsQueueID, descriptors[2].LogicalID)
	assert.Equal(t, FunctionID, descriptors[3].LogicalID)
	assert.Equal(t, RestApiID, descriptors[4].LogicalID)

	require.Len(t, g.Grants(), 3)
	// Every grant names the function as principal.
	assert.Len(t, g.GrantsFor(FunctionID), 3)
	require.Len(t, g.OutputDeclarations(), 4)

	names := make([]string, 0, 4)
	for _, decl := range g.OutputDeclarations() {
		names = append(names, decl.Name)
	}
	assert.Equal(t, []string{"ApiUrl", "HealthEndpoint", "LambdaFunctionName", "AnalyticsQueueUrl"}, names)
}

func TestOnlyUrlsTableExpiresRecords(t *testing.T) {
	g, err := Stack(canonicalOptions())
	require.NoError(t, err)

	urls, ok := g.Lookup(UrlsTableID)
	require.True(t, ok)
	assert.Equal(t, "expiresAt", urls.Properties["TimeToLiveAttribute"])

	// The tokens table keeps entries indefinitely; this asymmetry is
	// data-model policy, not an accident.
	tokens, ok := g.Lookup(TokensTableID)
	require.True(t, ok)
	_, hasTTL := tokens.Properties["TimeToLiveAttribute"]
	assert.False(t, hasTTL)
}

func TestStackWithoutAnalyticsQueue(t *testing.T) {
	opts := canonicalOptions()
	opts.AnalyticsQueue = false

	g, err := Stack(opts)
	require.NoError(t, err)

	_, ok := g.Lookup(AnalyticsQueueID)
	assert.False(t, ok)
	assert.Len(t, g.GrantsFor(FunctionID), 2)

	fn, ok := g.Lookup(FunctionID)
	require.True(t, ok)
	env := fn.Properties["Environment"].(map[string]any)
	_, hasQueueURL := env["AWS_SQS_ANALYTICS_QUEUE_URL"]
	assert.False(t, hasQueueURL)

	for _, decl := range g.OutputDeclarations() {
		assert.NotEqual(t, "AnalyticsQueueUrl", decl.Name)
	}
	assert.Len(t, g.OutputDeclarations(), 3)
}

func TestFunctionEnvironmentBindsReferences(t *testing.T) {
	g, err := Stack(canonicalOptions())
	require.NoError(t, err)

	fn, ok := g.Lookup(FunctionID)
	require.True(t, ok)
	env := fn.Properties["Environment"].(map[string]any)
	assert.Equal(t, "prod", env["SPRING_PROFILES_ACTIVE"])
	assert.Equal(t, stack.Ref(UrlsTableID, "TableName"), env["DYNAMODB_TABLE_URLS"])
	assert.Equal(t, stack.Ref(TokensTableID, "TableName"), env["DYNAMODB_TABLE_TOKENS"])
	assert.Equal(t, stack.Ref(AnalyticsQueueID, "QueueUrl"), env["AWS_SQS_ANALYTICS_QUEUE_URL"])
}

func TestGatewayCarriesExplicitThrottling(t *testing.T) {
	g, err := Stack(canonicalOptions())
	require.NoError(t, err)

	api, ok := g.Lookup(RestApiID)
	require.True(t, ok)
	assert.Equal(t, 50, api.Properties["ThrottlingRateLimit"])
	assert.Equal(t, 100, api.Properties["ThrottlingBurstLimit"])
}

func TestRestApiBeforeFunctionFails(t *testing.T) {
	b := NewBuilder()

	_, err := b.AddRestApi(RestApiID, RestApiSpec{
		RestApiName:          "quicklink-api",
		StageName:            "prod",
		Handler:              FunctionID,
		ThrottlingRateLimit:  50,
		ThrottlingBurstLimit: 100,
	})
	var outOfOrder *stack.OutOfOrderConstructionError
	require.ErrorAs(t, err, &outOfOrder)
	assert.Equal(t, RestApiID, outOfOrder.LogicalID)
	assert.Equal(t, FunctionID, outOfOrder.DependsOn)
	assert.Empty(t, b.Graph().Descriptors())
}

func TestThrottlingIsNeverDefaulted(t *testing.T) {
	b := NewBuilder()
	_, err := b.AddFunction(FunctionID, FunctionSpec{
		FunctionName: "quicklink-service",
		Runtime:      "java17",
		Handler:      "inc.skt.quicklink.StreamLambdaHandler::handleRequest",
		Code:         "app.jar",
	})
	require.NoError(t, err)

	_, err = b.AddRestApi(RestApiID, RestApiSpec{
		RestApiName: "quicklink-api",
		StageName:   "prod",
		Handler:     FunctionID,
	})
	var missing *stack.MissingPropertyError
	require.ErrorAs(t, err, &missing)
	assert.Contains(t, missing.Property, "Throttling")
}

func TestGrantBeforeResourceFails(t *testing.T) {
	b := NewBuilder()
	_, err := b.AddFunction(FunctionID, FunctionSpec{
		FunctionName: "quicklink-service",
		Runtime:      "java17",
		Handler:      "inc.skt.quicklink.StreamLambdaHandler::handleRequest",
		Code:         "app.jar",
	})
	require.NoError(t, err)

	_, err = b.Grant(FunctionID, AnalyticsQueueID, "SendMessage")
	var dangling *stack.DanglingGrantError
	require.ErrorAs(t, err, &dangling)
	assert.Equal(t, AnalyticsQueueID, dangling.Missing)
}

func TestRunsDoNotShareState(t *testing.T) {
	first, err := Stack(canonicalOptions())
	require.NoError(t, err)
	second, err := Stack(canonicalOptions())
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Len(t, first.Grants(), 3)
	assert.Len(t, second.Grants(), 3)

	d1, _ := first.Lookup(UrlsTableID)
	d2, _ := second.Lookup(UrlsTableID)
	assert.NotSame(t, d1, d2)
}
