package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/organizations"
	"github.com/aws/aws-sdk-go/service/organizations/organizationsiface"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/aws/aws-sdk-go/service/sns/snsiface"
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/common/log"
	"github.com/sethvargo/go-retry"
)

type deps struct {
	organizations organizationsiface.OrganizationsAPI
	ses           sesiface.SESAPI
	sns           snsiface.SNSAPI
	validate      *validator.Validate
	logger        log.Logger
	backoff       func() retry.Backoff
	cfg           *config
}

func (deps *deps) handler(ctx context.Context, event events.SNSEvent) error {
	logger := deps.logger
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		logger = logger.With("aws_request_id", lc.AwsRequestID)
	}

	for _, record := range event.Records {
		recordLogger := logger.With("sns_message_id", record.SNS.MessageID)

		req, err := parseRequest(record.SNS.Message, deps.validate)
		if err != nil {
			recordLogger.Errorf("Rejected provisioning request: %v", err)
			return err
		}

		recordLogger = recordLogger.With("email", req.Email).With("account_name", req.AccountName)

		result, err := deps.provision(ctx, recordLogger, req)
		if err != nil {
			return err
		}

		recordLogger.Infof("Provisioning finished with state %s", result.State)
	}

	return nil
}

func constantBackoff(cfg *config) func() retry.Backoff {
	return func() retry.Backoff {
		return retry.WithMaxRetries(cfg.PollMaxAttempts-1, retry.NewConstant(cfg.PollInterval))
	}
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logger := log.Base()
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		log.Fatalf("Error setting log level: %v", err)
	}
	if cfg.LogJSON {
		if err := logger.SetFormat("logger:stdout?json=true"); err != nil {
			log.Fatalf("Error setting log format: %v", err)
		}
	}

	sess := session.Must(session.NewSession())

	organizations := organizations.New(sess)
	ses := ses.New(sess)
	sns := sns.New(sess)

	xray.AWS(organizations.Client)
	xray.AWS(ses.Client)
	xray.AWS(sns.Client)

	deps := deps{
		organizations: organizations,
		ses:           ses,
		sns:           sns,
		validate:      validator.New(),
		logger:        logger,
		backoff:       constantBackoff(cfg),
		cfg:           cfg,
	}

	lambda.Start(deps.handler)
}
