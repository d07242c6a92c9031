package main

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/prometheus/common/log"
)

const (
	charset = "UTF-8"

	// SNS rejects subjects of 100 characters or more.
	maxSubjectLength = 99
)

type statusMessage struct {
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

func successMessage(accountID string) statusMessage {
	return statusMessage{Message: "AWS account created successfully with account id: " + accountID}
}

func failureMessage(reason string) statusMessage {
	return statusMessage{Message: "Failed to create AWS account", Reason: reason}
}

// statusSubject keeps to what SNS accepts in a subject: printable ASCII
// under 100 characters.
func statusSubject(email string) string {
	var b strings.Builder
	for _, r := range "Status of new AWS account for: " + email {
		if b.Len() == maxSubjectLength {
			break
		}
		if r >= ' ' && r <= '~' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// snsJSONMessage wraps the payload for MessageStructure=json: every
// protocol gets the indented payload under "default".
func snsJSONMessage(msg statusMessage) (string, error) {
	payload, err := json.MarshalIndent(msg, "", "    ")
	if err != nil {
		return "", err
	}

	envelope, err := json.Marshal(map[string]string{"default": string(payload)})
	if err != nil {
		return "", err
	}
	return string(envelope), nil
}

func (deps *deps) sendWelcomeEmail(ctx context.Context, logger log.Logger, destination string) error {
	_, err := deps.ses.SendEmailWithContext(ctx, &ses.SendEmailInput{
		Source: aws.String(deps.cfg.FromEmail),
		Destination: &ses.Destination{
			ToAddresses: []*string{aws.String(destination)},
		},
		Message: &ses.Message{
			Subject: &ses.Content{
				Data:    aws.String(deps.cfg.WelcomeEmailSubject),
				Charset: aws.String(charset),
			},
			Body: &ses.Body{
				Text: &ses.Content{
					Data:    aws.String(deps.cfg.WelcomeEmailBody),
					Charset: aws.String(charset),
				},
			},
		},
	})
	if err != nil {
		logger.Errorf("Error sending welcome email to %s: %v", destination, err)
		return newProvisioningError(kindEmailFailed, err)
	}

	logger.Infof("Welcome email sent to %s", destination)
	return nil
}

func (deps *deps) publishStatus(ctx context.Context, logger log.Logger, email string, msg statusMessage) error {
	message, err := snsJSONMessage(msg)
	if err != nil {
		return newProvisioningError(kindPublishFailed, err)
	}

	_, err = deps.sns.PublishWithContext(ctx, &sns.PublishInput{
		TargetArn:        aws.String(deps.cfg.StatusTopicArn),
		Subject:          aws.String(statusSubject(email)),
		Message:          aws.String(message),
		MessageStructure: aws.String("json"),
	})
	if err != nil {
		logger.Errorf("Error publishing status to %s: %v", deps.cfg.StatusTopicArn, err)
		return newProvisioningError(kindPublishFailed, err)
	}

	logger.Infof("Status published to %s", deps.cfg.StatusTopicArn)
	return nil
}
