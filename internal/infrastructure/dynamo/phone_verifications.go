package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/materio/backend/internal/domain"
)

// PhoneVerificationRepo manages one-time phone verification codes.
// PK: code_id (ULID); the phone+code_id GSI orders each phone's codes by
// creation time.
type PhoneVerificationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPhoneVerificationRepo(client *dynamodb.Client, tableName string) *PhoneVerificationRepo {
	return &PhoneVerificationRepo{client: client, tableName: tableName}
}

func (r *PhoneVerificationRepo) Put(ctx context.Context, v *domain.PhoneVerification) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal phone verification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// DeleteByPhone removes every code stored for the phone number. Each row is
// deleted individually; there is no cross-item transaction with the insert
// that typically follows, so this is best-effort cleanup.
func (r *PhoneVerificationRepo) DeleteByPhone(ctx context.Context, phone string) error {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("phone-code_id-index"),
		KeyConditionExpression:    aws.String("phone = :p"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":p": &types.AttributeValueMemberS{Value: phone}},
		ProjectionExpression:      aws.String("code_id"),
	})
	if err != nil {
		return err
	}
	for _, item := range out.Items {
		idAttr, ok := item["code_id"].(*types.AttributeValueMemberS)
		if !ok {
			continue
		}
		if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key:       strKey("code_id", idAttr.Value),
		}); err != nil {
			return err
		}
	}
	return nil
}

// LatestActive returns the most recently created unverified, unexpired code
// for the phone number. Expired and already-verified codes are invisible
// here, so "never requested" and "expired" both surface as ErrNotFound.
func (r *PhoneVerificationRepo) LatestActive(ctx context.Context, phone string, now time.Time) (*domain.PhoneVerification, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("phone-code_id-index"),
		KeyConditionExpression: aws.String("phone = :p"),
		FilterExpression:       aws.String("verified = :f AND expires_at > :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p":   &types.AttributeValueMemberS{Value: phone},
			":f":   &types.AttributeValueMemberBOOL{Value: false},
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Unix(), 10)},
		},
		ScanIndexForward: aws.Bool(false), // newest first
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("no active verification code: %w", domain.ErrNotFound)
	}
	var v domain.PhoneVerification
	if err := attributevalue.UnmarshalMap(out.Items[0], &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// IncrementAttempts bumps the attempt counter only while it is below limit.
// The condition makes the read-compare-increment a single atomic store
// operation; a failed condition maps to ErrTooManyAttempts, so concurrent
// verifies cannot slip past the limit together.
func (r *PhoneVerificationRepo) IncrementAttempts(ctx context.Context, codeID string, limit int) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("code_id", codeID),
		UpdateExpression:    aws.String("SET attempts = attempts + :one"),
		ConditionExpression: aws.String("attempts < :limit"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one":   &types.AttributeValueMemberN{Value: "1"},
			":limit": &types.AttributeValueMemberN{Value: strconv.Itoa(limit)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("attempt limit reached: %w", domain.ErrTooManyAttempts)
		}
		return err
	}
	return nil
}

// MarkVerified flips the code to verified. The condition keeps the code
// single-use: a second concurrent verify of the same record fails here.
func (r *PhoneVerificationRepo) MarkVerified(ctx context.Context, codeID string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("code_id", codeID),
		UpdateExpression:    aws.String("SET verified = :t"),
		ConditionExpression: aws.String("verified = :f"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
			":f": &types.AttributeValueMemberBOOL{Value: false},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("code already used: %w", domain.ErrNotFound)
		}
		return err
	}
	return nil
}
