package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/materio/backend/internal/domain"
)

// ListingRepo provides typed DynamoDB operations for the listings table.
type ListingRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewListingRepo(client *dynamodb.Client, tableName string) *ListingRepo {
	return &ListingRepo{client: client, tableName: tableName}
}

func (r *ListingRepo) Put(ctx context.Context, l *domain.Listing) error {
	item, err := attributevalue.MarshalMap(l)
	if err != nil {
		return fmt.Errorf("marshal listing: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ListingRepo) Get(ctx context.Context, listingID string) (*domain.Listing, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("listing_id", listingID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("listing not found: %w", domain.ErrNotFound)
	}
	var l domain.Listing
	if err := attributevalue.UnmarshalMap(out.Item, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *ListingRepo) Update(ctx context.Context, listingID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("listing_id", listingID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *ListingRepo) Delete(ctx context.Context, listingID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("listing_id", listingID),
	})
	return err
}

// ListByUser queries the user_id GSI for all of a user's listings.
func (r *ListingRepo) ListByUser(ctx context.Context, userID string) ([]domain.Listing, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("user_id-index"),
		KeyConditionExpression:    aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":uid": &types.AttributeValueMemberS{Value: userID}},
	})
	if err != nil {
		return nil, err
	}
	var listings []domain.Listing
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// QueryCandidates queries the status+created_at GSI with the remaining
// filters applied as a conjunctive filter expression. The creation-time
// window rides on the key condition; everything else is a filter. All
// pages are drained so the caller sees the full candidate set in the
// store's return order.
func (r *ListingRepo) QueryCandidates(ctx context.Context, f domain.CandidateFilter) ([]domain.Listing, error) {
	keyCond := "#st = :status"
	names := map[string]string{"#st": "status"}
	values := map[string]types.AttributeValue{
		":status": &types.AttributeValueMemberS{Value: f.Status},
	}
	switch {
	case f.CreatedAfter != nil && f.CreatedBefore != nil:
		keyCond += " AND #ca BETWEEN :from AND :to"
		names["#ca"] = "created_at"
		values[":from"] = timeAttr(*f.CreatedAfter)
		values[":to"] = timeAttr(*f.CreatedBefore)
	case f.CreatedAfter != nil:
		keyCond += " AND #ca >= :from"
		names["#ca"] = "created_at"
		values[":from"] = timeAttr(*f.CreatedAfter)
	case f.CreatedBefore != nil:
		keyCond += " AND #ca <= :to"
		names["#ca"] = "created_at"
		values[":to"] = timeAttr(*f.CreatedBefore)
	}

	fb := newCondBuilder()
	if f.ExcludeUserID != "" {
		if err := fb.add("user_id", "<>", f.ExcludeUserID); err != nil {
			return nil, err
		}
	}
	if f.CategoryID != nil {
		if err := fb.add("category_id", "=", *f.CategoryID); err != nil {
			return nil, err
		}
	}
	if f.Condition != nil {
		if err := fb.add("condition", "=", *f.Condition); err != nil {
			return nil, err
		}
	}
	if f.PriceMin != nil {
		if err := fb.add("price", ">=", *f.PriceMin); err != nil {
			return nil, err
		}
	}
	if f.PriceMax != nil {
		if err := fb.add("price", "<=", *f.PriceMax); err != nil {
			return nil, err
		}
	}
	if f.QuantityMin != nil {
		if err := fb.add("quantity", ">=", *f.QuantityMin); err != nil {
			return nil, err
		}
	}
	if f.QuantityMax != nil {
		if err := fb.add("quantity", "<=", *f.QuantityMax); err != nil {
			return nil, err
		}
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("status-created_at-index"),
		KeyConditionExpression:    aws.String(keyCond),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	}
	if filterExpr := fb.expr(); filterExpr != "" {
		input.FilterExpression = aws.String(filterExpr)
		for k, v := range fb.names {
			names[k] = v
		}
		for k, v := range fb.values {
			values[k] = v
		}
	}

	var listings []domain.Listing
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		var page []domain.Listing
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		listings = append(listings, page...)
		if out.LastEvaluatedKey == nil {
			return listings, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// timeAttr marshals a time.Time the same way attributevalue does for
// struct fields, so key-condition comparisons line up with stored values.
func timeAttr(t time.Time) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: t.UTC().Format(time.RFC3339Nano)}
}
