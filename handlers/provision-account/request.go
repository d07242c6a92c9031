package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/organizations"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

type provisioningRequest struct {
	Email           string            `mapstructure:"email" validate:"required,email"`
	AccountName     string            `mapstructure:"account_name" validate:"required"`
	RoleName        string            `mapstructure:"role_name" validate:"required"`
	AccessToBilling string            `mapstructure:"access_to_billing" validate:"required,oneof=ALLOW DENY"`
	RootID          string            `mapstructure:"root_id" validate:"required"`
	OUName          string            `mapstructure:"ou_name" validate:"required"`
	OUParentID      string            `mapstructure:"ou_parent_id" validate:"required"`
	OUTags          map[string]string `mapstructure:"ou_tags"`
	AccountTags     map[string]string `mapstructure:"account_tags"`
}

var tagMapType = reflect.TypeOf(map[string]string{})

// parseRequest decodes an SNS message body into a provisioningRequest. Every
// key of the request must be present, even the tag mappings.
func parseRequest(message string, validate *validator.Validate) (*provisioningRequest, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(message), &raw); err != nil {
		return nil, newProvisioningError(kindInvalidRequest, err)
	}
	if raw == nil {
		return nil, newProvisioningError(kindInvalidRequest, errors.New("request must be a JSON object"))
	}

	// A null value counts as absent.
	for k, v := range raw {
		if v == nil {
			delete(raw, k)
		}
	}

	var req provisioningRequest
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: tagListHook,
		MatchName:  exactMatch,
		Metadata:   &md,
		Result:     &req,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, newProvisioningError(kindInvalidRequest, err)
	}

	if len(md.Unset) > 0 {
		sort.Strings(md.Unset)
		return nil, newProvisioningError(kindInvalidRequest,
			fmt.Errorf("missing required fields: %s", strings.Join(md.Unset, ", ")))
	}

	if err := validate.Struct(&req); err != nil {
		return nil, newProvisioningError(kindInvalidRequest, err)
	}

	return &req, nil
}

func exactMatch(mapKey, fieldName string) bool {
	return mapKey == fieldName
}

// tagListHook accepts tags in the Organizations API shape,
// [{"Key": "k", "Value": "v"}], alongside a plain {"k": "v"} object.
func tagListHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != tagMapType || from.Kind() != reflect.Slice {
		return data, nil
	}

	items, ok := data.([]interface{})
	if !ok {
		return data, nil
	}

	tags := make(map[string]string, len(items))
	for i, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("tag %d: expected an object with Key and Value", i)
		}
		key, ok := entry["Key"].(string)
		if !ok || key == "" {
			return nil, fmt.Errorf("tag %d: Key must be a non-empty string", i)
		}
		value, ok := entry["Value"].(string)
		if !ok {
			return nil, fmt.Errorf("tag %d: Value must be a string", i)
		}
		tags[key] = value
	}

	return tags, nil
}

func organizationsTags(tags map[string]string) []*organizations.Tag {
	if len(tags) == 0 {
		return nil
	}

	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*organizations.Tag, 0, len(keys))
	for _, k := range keys {
		out = append(out, &organizations.Tag{
			Key:   aws.String(k),
			Value: aws.String(tags[k]),
		})
	}
	return out
}
