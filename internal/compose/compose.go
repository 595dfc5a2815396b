// Package compose builds the QuickLink stack graph in its fixed dependency
// order: storage and queue first, then the compute function, then grants,
// then the gateway, then outputs. Construction-order mistakes surface here
// as typed errors rather than at synthesis.
package compose

import (
	"github.com/golang/glog"

	"github.com/skt-inc/quicklink-infra/internal/common"
	"github.com/skt-inc/quicklink-infra/internal/grants"
	"github.com/skt-inc/quicklink-infra/internal/stack"
)

// Logical IDs of the canonical topology.
const (
	UrlsTableID      common.LogicalID = "UrlsTable"
	TokensTableID    common.LogicalID = "TokensTable"
	AnalyticsQueueID common.LogicalID = "AnalyticsQueue"
	FunctionID       common.LogicalID = "QuickLinkFunction"
	RestApiID        common.LogicalID = "QuickLinkApi"
)

// HealthPathSuffix is appended to the gateway URL to form the health-check
// output.
const HealthPathSuffix = "api/v1/health"

// Attribute describes a table key attribute.
type Attribute struct {
	Name string
	Type string
}

// TableSpec declares one keyed table.
type TableSpec struct {
	TableName           string
	PartitionKey        Attribute
	TimeToLiveAttribute string // empty disables time-based expiry
	BillingMode         string
	RemovalPolicy       string
}

// QueueSpec declares one event queue.
type QueueSpec struct {
	QueueName                string
	RetentionPeriodDays      int
	VisibilityTimeoutSeconds int
}

// FunctionSpec declares the compute function. Environment values may be
// stack.References bound at synthesis. Code is an opaque path to a pre-built
// package; it is never inspected beyond being non-empty.
type FunctionSpec struct {
	FunctionName   string
	Runtime        string
	Handler        string
	Code           string
	MemorySize     int
	TimeoutSeconds int
	Environment    map[string]any
}

// RestApiSpec declares the HTTP gateway. Handler names the backing function
// descriptor; throttling numbers are explicit configuration, not defaults.
type RestApiSpec struct {
	RestApiName          string
	StageName            string
	Handler              common.LogicalID
	ThrottlingRateLimit  int
	ThrottlingBurstLimit int
	Proxy                bool
	BinaryMediaTypes     []string
}

// Builder assembles a stack graph while enforcing the construction stages.
type Builder struct {
	graph *stack.Graph
}

// NewBuilder starts from an empty graph.
func NewBuilder() *Builder {
	return &Builder{graph: stack.NewGraph()}
}

// Graph returns the graph under construction.
func (b *Builder) Graph() *stack.Graph {
	return b.graph
}

// AddTable registers a keyed table. Tables have no dependencies.
func (b *Builder) AddTable(id common.LogicalID, spec TableSpec) (*stack.Descriptor, error) {
	props := map[string]any{
		"TableName": spec.TableName,
		"PartitionKey": map[string]any{
			"Name": spec.PartitionKey.Name,
			"Type": spec.PartitionKey.Type,
		},
	}
	if spec.PartitionKey.Name == "" {
		props["PartitionKey"] = nil
	}
	if spec.TimeToLiveAttribute != "" {
		props["TimeToLiveAttribute"] = spec.TimeToLiveAttribute
	}
	if spec.BillingMode != "" {
		props["BillingMode"] = spec.BillingMode
	}
	if spec.RemovalPolicy != "" {
		props["RemovalPolicy"] = spec.RemovalPolicy
	}
	return b.graph.Add(common.KindTable, id, props)
}

// AddQueue registers an event queue. Queues have no dependencies.
func (b *Builder) AddQueue(id common.LogicalID, spec QueueSpec) (*stack.Descriptor, error) {
	props := map[string]any{
		"QueueName": spec.QueueName,
	}
	if spec.RetentionPeriodDays > 0 {
		props["RetentionPeriodDays"] = spec.RetentionPeriodDays
	}
	if spec.VisibilityTimeoutSeconds > 0 {
		props["VisibilityTimeoutSeconds"] = spec.VisibilityTimeoutSeconds
	}
	return b.graph.Add(common.KindQueue, id, props)
}

// AddFunction registers the compute function. Any Reference in its
// environment must point at an already registered descriptor, else the graph
// rejects it with OutOfOrderConstructionError.
func (b *Builder) AddFunction(id common.LogicalID, spec FunctionSpec) (*stack.Descriptor, error) {
	props := map[string]any{
		"FunctionName": spec.FunctionName,
		"Runtime":      spec.Runtime,
		"Handler":      spec.Handler,
		"Code":         spec.Code,
	}
	if spec.MemorySize > 0 {
		props["MemorySize"] = spec.MemorySize
	}
	if spec.TimeoutSeconds > 0 {
		props["TimeoutSeconds"] = spec.TimeoutSeconds
	}
	if len(spec.Environment) > 0 {
		env := make(map[string]any, len(spec.Environment))
		for k, v := range spec.Environment {
			env[k] = v
		}
		props["Environment"] = env
	}
	return b.graph.Add(common.KindFunction, id, props)
}

// Grant issues a least-privilege grant from principal to resource. Both
// descriptors must already exist.
func (b *Builder) Grant(principal, resource common.LogicalID, capability grants.Capability) (stack.GrantStatement, error) {
	return grants.Grant(b.graph, principal, resource, capability)
}

// AddRestApi registers the gateway. The backing function must already exist
// in the graph.
func (b *Builder) AddRestApi(id common.LogicalID, spec RestApiSpec) (*stack.Descriptor, error) {
	handler, ok := b.graph.Lookup(spec.Handler)
	if !ok || handler.Kind != common.KindFunction {
		return nil, &stack.OutOfOrderConstructionError{LogicalID: id, DependsOn: spec.Handler}
	}
	props := map[string]any{
		"RestApiName":          spec.RestApiName,
		"StageName":            spec.StageName,
		"Handler":              stack.Ref(spec.Handler, "FunctionArn"),
		"ThrottlingRateLimit":  spec.ThrottlingRateLimit,
		"ThrottlingBurstLimit": spec.ThrottlingBurstLimit,
		"Proxy":                spec.Proxy,
	}
	if spec.ThrottlingRateLimit == 0 {
		props["ThrottlingRateLimit"] = nil
	}
	if spec.ThrottlingBurstLimit == 0 {
		props["ThrottlingBurstLimit"] = nil
	}
	if len(spec.BinaryMediaTypes) > 0 {
		types := make([]any, len(spec.BinaryMediaTypes))
		for i, t := range spec.BinaryMediaTypes {
			types[i] = t
		}
		props["BinaryMediaTypes"] = types
	}
	return b.graph.Add(common.KindRestApi, id, props)
}

// Output declares a manifest entry built from literal strings and
// References.
func (b *Builder) Output(name string, description string, parts ...any) error {
	return b.graph.DeclareOutput(stack.OutputDeclaration{
		Name:        name,
		Parts:       parts,
		Description: description,
	})
}

// Options selects between the observed topology variants and carries the
// values that must be explicit configuration.
type Options struct {
	// AnalyticsQueue enables the event queue, its grant, the function's
	// queue environment binding, and the queue URL output.
	AnalyticsQueue bool
	// CodePath is the opaque path to the pre-built function package.
	CodePath string
	// Gateway throttling. Passed through verbatim.
	RateLimit  int
	BurstLimit int
}

// Stack builds the canonical QuickLink topology in stage order and returns
// the completed graph.
func Stack(opts Options) (*stack.Graph, error) {
	b := NewBuilder()

	// Stage 1: keyed tables and the event queue. Only the short-link table
	// expires stale records; the tokens table keeps everything.
	if _, err := b.AddTable(UrlsTableID, TableSpec{
		TableName:           "quicklink-urls",
		PartitionKey:        Attribute{Name: "shortCode", Type: "S"},
		TimeToLiveAttribute: "expiresAt",
		BillingMode:         "PAY_PER_REQUEST",
		RemovalPolicy:       "DESTROY",
	}); err != nil {
		return nil, err
	}
	if _, err := b.AddTable(TokensTableID, TableSpec{
		TableName:     "quicklink-tokens",
		PartitionKey:  Attribute{Name: "tokenId", Type: "S"},
		BillingMode:   "PAY_PER_REQUEST",
		RemovalPolicy: "DESTROY",
	}); err != nil {
		return nil, err
	}
	if opts.AnalyticsQueue {
		if _, err := b.AddQueue(AnalyticsQueueID, QueueSpec{
			QueueName:                "quicklink-analytics",
			RetentionPeriodDays:      4,
			VisibilityTimeoutSeconds: 30,
		}); err != nil {
			return nil, err
		}
	}
	glog.V(2).Info("stage 1 complete: storage and queue registered")

	// Stage 2: the compute function, with each dependency's runtime identity
	// injected as an unresolved Reference.
	env := map[string]any{
		"SPRING_PROFILES_ACTIVE": "prod",
		"DYNAMODB_TABLE_URLS":    stack.Ref(UrlsTableID, "TableName"),
		"DYNAMODB_TABLE_TOKENS":  stack.Ref(TokensTableID, "TableName"),
	}
	if opts.AnalyticsQueue {
		env["AWS_SQS_ANALYTICS_QUEUE_URL"] = stack.Ref(AnalyticsQueueID, "QueueUrl")
	}
	if _, err := b.AddFunction(FunctionID, FunctionSpec{
		FunctionName:   "quicklink-service",
		Runtime:        "java17",
		Handler:        "inc.skt.quicklink.StreamLambdaHandler::handleRequest",
		Code:           opts.CodePath,
		MemorySize:     512,
		TimeoutSeconds: 10,
		Environment:    env,
	}); err != nil {
		return nil, err
	}

	// Stage 3: grants from the function to each dependency.
	if _, err := b.Grant(FunctionID, UrlsTableID, grants.ReadWriteData); err != nil {
		return nil, err
	}
	if _, err := b.Grant(FunctionID, TokensTableID, grants.ReadWriteData); err != nil {
		return nil, err
	}
	if opts.AnalyticsQueue {
		if _, err := b.Grant(FunctionID, AnalyticsQueueID, grants.SendMessage); err != nil {
			return nil, err
		}
	}
	glog.V(2).Infof("stage 3 complete: %d grant statements", len(b.graph.Grants()))

	// Stage 4: the gateway, backed by the function.
	if _, err := b.AddRestApi(RestApiID, RestApiSpec{
		RestApiName:          "quicklink-api",
		StageName:            "prod",
		Handler:              FunctionID,
		ThrottlingRateLimit:  opts.RateLimit,
		ThrottlingBurstLimit: opts.BurstLimit,
		Proxy:                true,
		BinaryMediaTypes:     []string{"*/*"},
	}); err != nil {
		return nil, err
	}

	// Stage 5: the output manifest.
	if err := b.Output("ApiUrl", "API Gateway endpoint URL", stack.Ref(RestApiID, "Url")); err != nil {
		return nil, err
	}
	if err := b.Output("HealthEndpoint", "Health check endpoint URL", stack.Ref(RestApiID, "Url"), HealthPathSuffix); err != nil {
		return nil, err
	}
	if err := b.Output("LambdaFunctionName", "Lambda function name", stack.Ref(FunctionID, "FunctionName")); err != nil {
		return nil, err
	}
	if opts.AnalyticsQueue {
		if err := b.Output("AnalyticsQueueUrl", "SQS analytics queue URL", stack.Ref(AnalyticsQueueID, "QueueUrl")); err != nil {
			return nil, err
		}
	}

	return b.Graph(), nil
}
