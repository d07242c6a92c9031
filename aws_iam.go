package main

import (
	"encoding/json"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

const policyVersion = "2012-10-17"

var organizationsActions = []string{
	"organizations:CreateOrganizationalUnit",
	"organizations:CreateAccount",
	"organizations:DescribeCreateAccountStatus",
	"organizations:MoveAccount",
	"organizations:TagResource",
}

type policyPrincipal struct {
	Service string
}

type policyStatement struct {
	Effect    string
	Principal *policyPrincipal `json:",omitempty"`
	Action    []string
	Resource  []string `json:",omitempty"`
}

// policyDocument is built up with allow/allowOn. Resources that only exist
// as outputs are written as "%s" and filled in by output.
type policyDocument struct {
	Version   string
	Statement []policyStatement

	resourceArgs []interface{}
}

func assumeRolePolicy(service string) *policyDocument {
	return &policyDocument{
		Version: policyVersion,
		Statement: []policyStatement{
			{
				Effect:    "Allow",
				Principal: &policyPrincipal{Service: service},
				Action:    []string{"sts:AssumeRole"},
			},
		},
	}
}

// lambdaExecutionPolicy lets a function write CloudWatch Logs and X-Ray traces.
func lambdaExecutionPolicy() *policyDocument {
	return (&policyDocument{Version: policyVersion}).
		allow([]string{"logs:CreateLogGroup", "logs:CreateLogStream", "logs:PutLogEvents"}, "arn:aws:logs:*:*:*").
		allow([]string{
			"xray:PutTraceSegments",
			"xray:PutTelemetryRecords",
			"xray:GetSamplingRules",
			"xray:GetSamplingTargets",
			"xray:GetSamplingStatisticSummaries",
		}, "*")
}

func provisioningPolicy(statusTopicArn pulumi.StringInput) *policyDocument {
	return lambdaExecutionPolicy().
		allow(organizationsActions, "*").
		allow([]string{"ses:SendEmail"}, "*").
		allowOn([]string{"sns:Publish"}, statusTopicArn)
}

func (d *policyDocument) allow(actions []string, resources ...string) *policyDocument {
	d.Statement = append(d.Statement, policyStatement{
		Effect:   "Allow",
		Action:   actions,
		Resource: resources,
	})
	return d
}

func (d *policyDocument) allowOn(actions []string, arn pulumi.StringInput) *policyDocument {
	d.resourceArgs = append(d.resourceArgs, arn)
	return d.allow(actions, "%s")
}

func (d *policyDocument) json() (string, error) {
	b, err := json.Marshal(d)
	return string(b), err
}

func (d *policyDocument) output() (pulumi.StringOutput, error) {
	doc, err := d.json()
	if err != nil {
		return pulumi.StringOutput{}, err
	}
	return pulumi.Sprintf(doc, d.resourceArgs...), nil
}
