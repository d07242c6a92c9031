package main

import (
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/lambda"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/sns"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// Lambda's ceiling; the poller gives up before this by attempt count.
const provisionAccountTimeout = 900

type stackConfig struct {
	fromEmail           string
	welcomeEmailSubject string
	welcomeEmailBody    string
	pollMaxAttempts     string
}

func (c stackConfig) env(statusTopicArn pulumi.StringInput) pulumi.StringMap {
	env := pulumi.StringMap{
		"STATUS_TOPIC_ARN": statusTopicArn,
		"FROM_EMAIL":       pulumi.String(c.fromEmail),
	}
	if c.welcomeEmailSubject != "" {
		env["WELCOME_EMAIL_SUBJECT"] = pulumi.String(c.welcomeEmailSubject)
	}
	if c.welcomeEmailBody != "" {
		env["WELCOME_EMAIL_BODY"] = pulumi.String(c.welcomeEmailBody)
	}
	if c.pollMaxAttempts != "" {
		env["POLL_MAX_ATTEMPTS"] = pulumi.String(c.pollMaxAttempts)
	}
	return env
}

func configureAccountProvisioning(ctx *pulumi.Context, cfg stackConfig) error {
	requestTopic, err := sns.NewTopic(ctx, projectName+"-requests", &sns.TopicArgs{})
	if err != nil {
		return err
	}

	statusTopic, err := sns.NewTopic(ctx, projectName+"-status", &sns.TopicArgs{})
	if err != nil {
		return err
	}

	function, err := makeLambda(ctx, lambdaArgs{
		name:    "provision-account",
		policy:  provisioningPolicy(statusTopic.Arn),
		env:     cfg.env(statusTopic.Arn),
		timeout: provisionAccountTimeout,
	})
	if err != nil {
		return err
	}

	permission, err := lambda.NewPermission(ctx, projectName+"-provision-account-sns-permission", &lambda.PermissionArgs{
		Action:    pulumi.String("lambda:InvokeFunction"),
		Function:  function.Name,
		Principal: pulumi.String("sns.amazonaws.com"),
		SourceArn: requestTopic.Arn,
	})
	if err != nil {
		return err
	}

	_, err = sns.NewTopicSubscription(ctx, projectName+"-provision-account-subscription", &sns.TopicSubscriptionArgs{
		Topic:    requestTopic.Arn,
		Protocol: pulumi.String("lambda"),
		Endpoint: function.Arn,
	}, pulumi.DependsOn([]pulumi.Resource{permission}))
	if err != nil {
		return err
	}

	ctx.Export("requestTopicArn", requestTopic.Arn)
	ctx.Export("statusTopicArn", statusTopic.Arn)
	ctx.Export("functionName", function.Name)

	return nil
}
