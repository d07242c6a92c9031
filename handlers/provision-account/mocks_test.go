package main

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/organizations"
	"github.com/aws/aws-sdk-go/service/organizations/organizationsiface"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/aws/aws-sdk-go/service/sns/snsiface"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/common/log"
	"github.com/sethvargo/go-retry"
)

type callLog struct {
	calls []string
}

func (c *callLog) record(name string) {
	c.calls = append(c.calls, name)
}

type mockOrganizations struct {
	organizationsiface.OrganizationsAPI

	log *callLog

	ouID      string
	ouErr     error
	requestID string
	createErr error
	states    []*organizations.CreateAccountStatus
	statusErr error
	moveErr   error

	ouIn       *organizations.CreateOrganizationalUnitInput
	createIn   *organizations.CreateAccountInput
	moveIn     *organizations.MoveAccountInput
	describeIn []*organizations.DescribeCreateAccountStatusInput
}

func (m *mockOrganizations) CreateOrganizationalUnitWithContext(ctx aws.Context, in *organizations.CreateOrganizationalUnitInput, opts ...request.Option) (*organizations.CreateOrganizationalUnitOutput, error) {
	m.log.record("CreateOrganizationalUnit")
	m.ouIn = in
	if m.ouErr != nil {
		return nil, m.ouErr
	}
	return &organizations.CreateOrganizationalUnitOutput{
		OrganizationalUnit: &organizations.OrganizationalUnit{Id: aws.String(m.ouID)},
	}, nil
}

func (m *mockOrganizations) CreateAccountWithContext(ctx aws.Context, in *organizations.CreateAccountInput, opts ...request.Option) (*organizations.CreateAccountOutput, error) {
	m.log.record("CreateAccount")
	m.createIn = in
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &organizations.CreateAccountOutput{
		CreateAccountStatus: &organizations.CreateAccountStatus{
			Id:    aws.String(m.requestID),
			State: aws.String(organizations.CreateAccountStateInProgress),
		},
	}, nil
}

func (m *mockOrganizations) DescribeCreateAccountStatusWithContext(ctx aws.Context, in *organizations.DescribeCreateAccountStatusInput, opts ...request.Option) (*organizations.DescribeCreateAccountStatusOutput, error) {
	m.log.record("DescribeCreateAccountStatus")
	m.describeIn = append(m.describeIn, in)
	if m.statusErr != nil {
		return nil, m.statusErr
	}

	// The last state repeats once the sequence runs out.
	status := m.states[len(m.states)-1]
	if len(m.describeIn) <= len(m.states) {
		status = m.states[len(m.describeIn)-1]
	}
	return &organizations.DescribeCreateAccountStatusOutput{CreateAccountStatus: status}, nil
}

func (m *mockOrganizations) MoveAccountWithContext(ctx aws.Context, in *organizations.MoveAccountInput, opts ...request.Option) (*organizations.MoveAccountOutput, error) {
	m.log.record("MoveAccount")
	m.moveIn = in
	if m.moveErr != nil {
		return nil, m.moveErr
	}
	return &organizations.MoveAccountOutput{}, nil
}

type mockSES struct {
	sesiface.SESAPI

	log *callLog
	err error
	in  *ses.SendEmailInput
}

func (m *mockSES) SendEmailWithContext(ctx aws.Context, in *ses.SendEmailInput, opts ...request.Option) (*ses.SendEmailOutput, error) {
	m.log.record("SendEmail")
	m.in = in
	if m.err != nil {
		return nil, m.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("ses-message-id")}, nil
}

type mockSNS struct {
	snsiface.SNSAPI

	log *callLog
	err error
	in  []*sns.PublishInput
}

func (m *mockSNS) PublishWithContext(ctx aws.Context, in *sns.PublishInput, opts ...request.Option) (*sns.PublishOutput, error) {
	m.log.record("Publish")
	m.in = append(m.in, in)
	if m.err != nil {
		return nil, m.err
	}
	return &sns.PublishOutput{MessageId: aws.String("sns-message-id")}, nil
}

func inProgress() *organizations.CreateAccountStatus {
	return &organizations.CreateAccountStatus{
		Id:    aws.String("car-1234"),
		State: aws.String(organizations.CreateAccountStateInProgress),
	}
}

func succeeded(accountID string) *organizations.CreateAccountStatus {
	return &organizations.CreateAccountStatus{
		Id:        aws.String("car-1234"),
		State:     aws.String(organizations.CreateAccountStateSucceeded),
		AccountId: aws.String(accountID),
	}
}

func failed(reason string) *organizations.CreateAccountStatus {
	return &organizations.CreateAccountStatus{
		Id:            aws.String("car-1234"),
		State:         aws.String(organizations.CreateAccountStateFailed),
		FailureReason: aws.String(reason),
	}
}

type fixture struct {
	calls  *callLog
	org    *mockOrganizations
	ses    *mockSES
	sns    *mockSNS
	sleeps int
	deps   *deps
}

func newFixture(t *testing.T, maxAttempts uint64) *fixture {
	t.Helper()

	calls := &callLog{}
	f := &fixture{
		calls: calls,
		org: &mockOrganizations{
			log:       calls,
			ouID:      "ou-abcd-12345678",
			requestID: "car-1234",
			states:    []*organizations.CreateAccountStatus{succeeded("123456789012")},
		},
		ses: &mockSES{log: calls},
		sns: &mockSNS{log: calls},
	}

	f.deps = &deps{
		organizations: f.org,
		ses:           f.ses,
		sns:           f.sns,
		validate:      validator.New(),
		logger:        log.Base(),
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(maxAttempts-1, retry.BackoffFunc(func() (time.Duration, bool) {
				f.sleeps++
				return time.Millisecond, false
			}))
		},
		cfg: &config{
			StatusTopicArn:      "arn:aws:sns:us-east-1:111111111111:account-status",
			FromEmail:           "platform@example.com",
			WelcomeEmailSubject: "Welcome",
			WelcomeEmailBody:    defaultWelcomeEmailBody,
			PollInterval:        time.Millisecond,
			PollMaxAttempts:     maxAttempts,
			LogLevel:            "info",
		},
	}

	return f
}

func testRequest() *provisioningRequest {
	return &provisioningRequest{
		Email:           "team@example.com",
		AccountName:     "team-sandbox",
		RoleName:        "OrganizationAccountAccessRole",
		AccessToBilling: "DENY",
		RootID:          "r-abcd",
		OUName:          "sandbox",
		OUParentID:      "r-abcd",
		OUTags:          map[string]string{"team": "platform"},
		AccountTags:     map[string]string{"env": "sandbox", "cost-center": "42"},
	}
}
