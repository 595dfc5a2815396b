package synth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws/arn"

	"github.com/skt-inc/quicklink-infra/internal/common"
	"github.com/skt-inc/quicklink-infra/internal/config"
	"github.com/skt-inc/quicklink-infra/internal/stack"
)

// restApiID derives a deterministic gateway identifier. The provider would
// assign a random one; synthesis must be byte-identical across runs, so the
// identifier is a digest of the stack and logical names instead.
func restApiID(stackName common.StackName, id common.LogicalID) string {
	sum := sha256.Sum256([]byte(string(stackName) + "/" + string(id)))
	return hex.EncodeToString(sum[:])[:10]
}

func resourceARN(service, region, account, resource string) string {
	return arn.ARN{
		Partition: "aws",
		Service:   service,
		Region:    region,
		AccountID: account,
		Resource:  resource,
	}.String()
}

func stringProp(d *stack.Descriptor, key string) (string, error) {
	value, ok := d.Properties[key].(string)
	if !ok || value == "" {
		return "", &stack.MissingPropertyError{LogicalID: d.LogicalID, Property: key}
	}
	return value, nil
}

// computeOutputs builds the per-run snapshot of concrete identifiers every
// Reference resolves against: one (logical ID, output name) -> value map,
// freshly computed, never cached across runs.
func computeOutputs(g *stack.Graph, stackName common.StackName, env config.Environment) (map[common.LogicalID]map[common.OutputName]string, error) {
	snapshot := make(map[common.LogicalID]map[common.OutputName]string, len(g.Descriptors()))
	for _, d := range g.Descriptors() {
		outputs := make(map[common.OutputName]string)
		switch d.Kind {
		case common.KindTable:
			name, err := stringProp(d, "TableName")
			if err != nil {
				return nil, err
			}
			outputs["TableName"] = name
			outputs["TableArn"] = resourceARN("dynamodb", env.Region, env.Account, "table/"+name)
		case common.KindQueue:
			name, err := stringProp(d, "QueueName")
			if err != nil {
				return nil, err
			}
			outputs["QueueName"] = name
			outputs["QueueUrl"] = fmt.Sprintf("https://sqs.%s.amazonaws.com/%s/%s", env.Region, env.Account, name)
			outputs["QueueArn"] = resourceARN("sqs", env.Region, env.Account, name)
		case common.KindFunction:
			name, err := stringProp(d, "FunctionName")
			if err != nil {
				return nil, err
			}
			outputs["FunctionName"] = name
			outputs["FunctionArn"] = resourceARN("lambda", env.Region, env.Account, "function:"+name)
		case common.KindRestApi:
			stage, err := stringProp(d, "StageName")
			if err != nil {
				return nil, err
			}
			id := restApiID(stackName, d.LogicalID)
			outputs["RestApiId"] = id
			outputs["Url"] = fmt.Sprintf("https://%s.execute-api.%s.amazonaws.com/%s/", id, env.Region, stage)
		}
		snapshot[d.LogicalID] = outputs
	}
	return snapshot, nil
}
