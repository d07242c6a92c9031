package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/organizations"
	"github.com/prometheus/common/log"
)

type provisioningResult struct {
	OUID          string
	RequestID     string
	State         string
	AccountID     string
	FailureReason string
}

// provision runs the workflow for one request. Steps that already completed
// are left in place when a later step fails.
func (deps *deps) provision(ctx context.Context, logger log.Logger, req *provisioningRequest) (*provisioningResult, error) {
	ouID, err := deps.createOrganizationalUnit(ctx, logger, req)
	if err != nil {
		return nil, err
	}

	requestID, err := deps.createAccount(ctx, logger, req)
	if err != nil {
		return nil, err
	}

	logger = logger.With("create_account_request_id", requestID)

	status, err := deps.waitForAccount(ctx, logger, requestID)
	if err != nil {
		return nil, err
	}

	result := &provisioningResult{
		OUID:      ouID,
		RequestID: requestID,
		State:     aws.StringValue(status.State),
	}

	switch result.State {
	case organizations.CreateAccountStateSucceeded:
		result.AccountID = aws.StringValue(status.AccountId)
		logger = logger.With("account_id", result.AccountID)

		if err := deps.moveAccount(ctx, logger, result.AccountID, req.RootID, ouID); err != nil {
			return result, err
		}
		if err := deps.sendWelcomeEmail(ctx, logger, req.Email); err != nil {
			return result, err
		}
		if err := deps.publishStatus(ctx, logger, req.Email, successMessage(result.AccountID)); err != nil {
			return result, err
		}

	case organizations.CreateAccountStateFailed:
		result.FailureReason = aws.StringValue(status.FailureReason)
		logger.Warnf("Account creation failed: %s", result.FailureReason)

		if err := deps.publishStatus(ctx, logger, req.Email, failureMessage(result.FailureReason)); err != nil {
			return result, err
		}

	default:
		return result, newProvisioningError(kindStatusFailed, fmt.Errorf("unexpected account creation state %q", result.State))
	}

	return result, nil
}
