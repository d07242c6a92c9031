package main

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/iam"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/lambda"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

const projectName = "account-vending"

type lambdaArgs struct {
	name    string
	policy  *policyDocument
	env     pulumi.StringMap
	timeout int
}

// makeLambda deploys ./build/<name>.zip, a provided.al2023 bootstrap built
// by the Makefile, with its own role. Async invocations are not retried
// since the handlers are not idempotent.
func makeLambda(ctx *pulumi.Context, args lambdaArgs) (*lambda.Function, error) {
	roleName := fmt.Sprintf("%s-%s-lambda-role", projectName, args.name)
	policyName := fmt.Sprintf("%s-%s-lambda-policy", projectName, args.name)
	functionName := fmt.Sprintf("%s-%s", projectName, args.name)

	trustPolicy, err := assumeRolePolicy("lambda.amazonaws.com").json()
	if err != nil {
		return nil, err
	}

	role, err := iam.NewRole(ctx, roleName, &iam.RoleArgs{
		AssumeRolePolicy: pulumi.String(trustPolicy),
	})
	if err != nil {
		return nil, err
	}

	policy, err := args.policy.output()
	if err != nil {
		return nil, err
	}

	rolePolicy, err := iam.NewRolePolicy(ctx, policyName, &iam.RolePolicyArgs{
		Role:   role.Name,
		Policy: policy,
	})
	if err != nil {
		return nil, err
	}

	function, err := lambda.NewFunction(ctx, functionName, &lambda.FunctionArgs{
		Handler:       pulumi.String("bootstrap"),
		Role:          role.Arn,
		Runtime:       pulumi.String("provided.al2023"),
		Architectures: pulumi.StringArray{pulumi.String("arm64")},
		Code:          pulumi.NewFileArchive(fmt.Sprintf("./build/%s.zip", args.name)),
		Timeout:       pulumi.Int(args.timeout),
		Environment: &lambda.FunctionEnvironmentArgs{
			Variables: args.env,
		},
		TracingConfig: &lambda.FunctionTracingConfigArgs{
			Mode: pulumi.String("Active"),
		},
	}, pulumi.DependsOn([]pulumi.Resource{rolePolicy}))
	if err != nil {
		return nil, err
	}

	_, err = lambda.NewFunctionEventInvokeConfig(ctx, functionName+"-invoke-config", &lambda.FunctionEventInvokeConfigArgs{
		FunctionName:         function.Name,
		MaximumRetryAttempts: pulumi.Int(0),
	})
	if err != nil {
		return nil, err
	}

	return function, nil
}
