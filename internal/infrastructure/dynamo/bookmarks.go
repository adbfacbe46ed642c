package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/materio/backend/internal/domain"
)

// BookmarkRepo provides typed DynamoDB operations for the bookmarks table.
// PK: user_id, SK: bookmark_id.
type BookmarkRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewBookmarkRepo(client *dynamodb.Client, tableName string) *BookmarkRepo {
	return &BookmarkRepo{client: client, tableName: tableName}
}

func (r *BookmarkRepo) Put(ctx context.Context, b *domain.Bookmark) error {
	item, err := attributevalue.MarshalMap(b)
	if err != nil {
		return fmt.Errorf("marshal bookmark: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListByUser returns all of a user's bookmarks in creation order.
func (r *BookmarkRepo) ListByUser(ctx context.Context, userID string) ([]domain.Bookmark, error) {
	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":uid": &types.AttributeValueMemberS{Value: userID}},
	}
	var bookmarks []domain.Bookmark
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		var page []domain.Bookmark
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, page...)
		if out.LastEvaluatedKey == nil {
			return bookmarks, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func (r *BookmarkRepo) Delete(ctx context.Context, userID, bookmarkID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("user_id", userID, "bookmark_id", bookmarkID),
	})
	return err
}
