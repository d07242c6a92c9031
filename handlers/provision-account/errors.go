package main

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws/awserr"
)

type errorKind string

const (
	kindInvalidRequest      errorKind = "INVALID_REQUEST"
	kindOUCreateFailed      errorKind = "OU_CREATE_FAILED"
	kindAccountCreateFailed errorKind = "ACCOUNT_CREATE_FAILED"
	kindStatusFailed        errorKind = "STATUS_FAILED"
	kindPollTimeout         errorKind = "POLL_TIMEOUT"
	kindMoveFailed          errorKind = "MOVE_FAILED"
	kindEmailFailed         errorKind = "EMAIL_FAILED"
	kindPublishFailed       errorKind = "PUBLISH_FAILED"
)

// provisioningError tells the caller which step of the workflow failed.
// Code holds the AWS error code when the SDK returned one.
type provisioningError struct {
	Kind errorKind
	Code string
	Err  error
}

func newProvisioningError(kind errorKind, err error) *provisioningError {
	pe := &provisioningError{Kind: kind, Err: err}
	if aerr, ok := err.(awserr.Error); ok {
		pe.Code = aerr.Code()
	}
	return pe
}

func (e *provisioningError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s): %v", e.Kind, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *provisioningError) Unwrap() error {
	return e.Err
}
