package main

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const defaultWelcomeEmailBody = `Hi Team,

Your new AWS account is ready.

Sign in to the AWS Console at https://console.aws.amazon.com/ with this email address as the root user.
The first time, use the "Forgot your password" link to set a password.

Please create your own IAM users, roles and policies rather than working as the root user.

Regards,
The Cloud Platform Team`

type config struct {
	StatusTopicArn      string        `envconfig:"STATUS_TOPIC_ARN" required:"true"`
	FromEmail           string        `envconfig:"FROM_EMAIL" required:"true"`
	WelcomeEmailSubject string        `envconfig:"WELCOME_EMAIL_SUBJECT" default:"Welcome to your new AWS account"`
	WelcomeEmailBody    string        `envconfig:"WELCOME_EMAIL_BODY"`
	PollInterval        time.Duration `envconfig:"POLL_INTERVAL" default:"2s"`
	PollMaxAttempts     uint64        `envconfig:"POLL_MAX_ATTEMPTS" default:"400"`
	LogLevel            string        `envconfig:"LOG_LEVEL" default:"info"`
	LogJSON             bool          `envconfig:"LOG_JSON" default:"false"`
}

func loadConfig() (*config, error) {
	var cfg config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.WelcomeEmailBody == "" {
		cfg.WelcomeEmailBody = defaultWelcomeEmailBody
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL must be positive, got %s", cfg.PollInterval)
	}
	if cfg.PollMaxAttempts == 0 {
		cfg.PollMaxAttempts = 1
	}
	return &cfg, nil
}
