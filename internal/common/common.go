package common

// Logical stack name, ex. QuickLinkStack
type StackName string

// The logical ID of a resource, unique within a stack.
// See https://docs.aws.amazon.com/AWSCloudFormation/latest/UserGuide/resources-section-structure.html#resources-section-logical-id
type LogicalID string

// The name of a runtime-assigned output a resource exposes for
// reference by other resources, ex. TableName, QueueUrl
type OutputName string

// The provider type of the resource, ex. AWS::DynamoDB::Table
type ResourceKind string

const (
	KindTable    ResourceKind = "AWS::DynamoDB::Table"
	KindQueue    ResourceKind = "AWS::SQS::Queue"
	KindFunction ResourceKind = "AWS::Lambda::Function"
	KindRestApi  ResourceKind = "AWS::ApiGateway::RestApi"
)
