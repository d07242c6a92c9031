package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/organizations"
	"github.com/prometheus/common/log"
	"github.com/sethvargo/go-retry"
)

var (
	errCreationInProgress = errors.New("account creation still in progress")
	errDescribeCanceled   = errors.New("describe call canceled")
)

// isRequestCanceled reports whether a failed SDK call was cut short by the
// context. The SDK wraps ctx.Err() in an awserr that does not unwrap.
func isRequestCanceled(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	aerr, ok := err.(awserr.Error)
	return ok && aerr.Code() == request.CanceledErrorCode
}

func (deps *deps) createOrganizationalUnit(ctx context.Context, logger log.Logger, req *provisioningRequest) (string, error) {
	out, err := deps.organizations.CreateOrganizationalUnitWithContext(ctx, &organizations.CreateOrganizationalUnitInput{
		ParentId: aws.String(req.OUParentID),
		Name:     aws.String(req.OUName),
		Tags:     organizationsTags(req.OUTags),
	})
	if err != nil {
		logger.Errorf("Error creating organizational unit %s: %v", req.OUName, err)
		return "", newProvisioningError(kindOUCreateFailed, err)
	}

	ouID := aws.StringValue(out.OrganizationalUnit.Id)
	logger.With("ou_id", ouID).Infof("Organizational unit %s created", req.OUName)
	return ouID, nil
}

func (deps *deps) createAccount(ctx context.Context, logger log.Logger, req *provisioningRequest) (string, error) {
	out, err := deps.organizations.CreateAccountWithContext(ctx, &organizations.CreateAccountInput{
		Email:                  aws.String(req.Email),
		AccountName:            aws.String(req.AccountName),
		RoleName:               aws.String(req.RoleName),
		IamUserAccessToBilling: aws.String(req.AccessToBilling),
		Tags:                   organizationsTags(req.AccountTags),
	})
	if err != nil {
		logger.Errorf("Error creating account %s: %v", req.AccountName, err)
		return "", newProvisioningError(kindAccountCreateFailed, err)
	}

	requestID := aws.StringValue(out.CreateAccountStatus.Id)
	logger.With("create_account_request_id", requestID).Infof("Account creation for %s requested", req.AccountName)
	return requestID, nil
}

// waitForAccount polls the create-account request until it leaves
// IN_PROGRESS. The first query is immediate; later ones follow the backoff.
// Running out of attempts or context yields POLL_TIMEOUT.
func (deps *deps) waitForAccount(ctx context.Context, logger log.Logger, requestID string) (*organizations.CreateAccountStatus, error) {
	var status *organizations.CreateAccountStatus

	err := retry.Do(ctx, deps.backoff(), func(ctx context.Context) error {
		out, err := deps.organizations.DescribeCreateAccountStatusWithContext(ctx, &organizations.DescribeCreateAccountStatusInput{
			CreateAccountRequestId: aws.String(requestID),
		})
		if err != nil {
			if isRequestCanceled(ctx, err) {
				return fmt.Errorf("%w: %v", errDescribeCanceled, err)
			}
			return newProvisioningError(kindStatusFailed, err)
		}

		status = out.CreateAccountStatus
		state := aws.StringValue(status.State)
		logger.Infof("Account creation state is: %s", state)

		if state == organizations.CreateAccountStateInProgress {
			return retry.RetryableError(errCreationInProgress)
		}
		return nil
	})

	switch {
	case err == nil:
		return status, nil
	case errors.Is(err, errCreationInProgress),
		errors.Is(err, errDescribeCanceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		logger.Errorf("Gave up waiting for create-account request %s: %v", requestID, err)
		return nil, newProvisioningError(kindPollTimeout, fmt.Errorf("create-account request %s: %w", requestID, err))
	default:
		logger.Errorf("Error describing create-account request %s: %v", requestID, err)
		return nil, err
	}
}

func (deps *deps) moveAccount(ctx context.Context, logger log.Logger, accountID, sourceParentID, destinationParentID string) error {
	_, err := deps.organizations.MoveAccountWithContext(ctx, &organizations.MoveAccountInput{
		AccountId:           aws.String(accountID),
		SourceParentId:      aws.String(sourceParentID),
		DestinationParentId: aws.String(destinationParentID),
	})
	if err != nil {
		logger.Errorf("Error moving account %s to %s: %v", accountID, destinationParentID, err)
		return newProvisioningError(kindMoveFailed, err)
	}

	logger.Infof("Account %s moved to %s", accountID, destinationParentID)
	return nil
}
