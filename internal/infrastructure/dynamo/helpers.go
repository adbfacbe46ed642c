package dynamo

import (
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// compositeKey builds a DynamoDB primary key with two string attributes (PK + SK).
func compositeKey(pkName, pkValue, skName, skValue string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		pkName: &types.AttributeValueMemberS{Value: pkValue},
		skName: &types.AttributeValueMemberS{Value: skValue},
	}
}

// updateExpr bundles a SET expression with its name/value maps.
type updateExpr struct {
	Expr   string
	Names  map[string]string
	Values map[string]types.AttributeValue
}

// buildUpdateExpr converts a map of field->value into a DynamoDB SET expression.
// Fields are processed in sorted order so the expression is deterministic.
func buildUpdateExpr(updates map[string]interface{}) (updateExpr, error) {
	if len(updates) == 0 {
		return updateExpr{}, fmt.Errorf("no fields to update")
	}
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ue := updateExpr{
		Names:  make(map[string]string, len(keys)),
		Values: make(map[string]types.AttributeValue, len(keys)),
	}
	ue.Expr = "SET "
	for i, k := range keys {
		nameKey := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":v%d", i)
		ue.Names[nameKey] = k
		av, err := attributevalue.Marshal(updates[k])
		if err != nil {
			return updateExpr{}, fmt.Errorf("marshal field %s: %w", k, err)
		}
		ue.Values[valueKey] = av
		if i > 0 {
			ue.Expr += ", "
		}
		ue.Expr += fmt.Sprintf("%s = %s", nameKey, valueKey)
	}
	return ue, nil
}

// condBuilder accumulates AND-joined filter conditions with generated
// attribute name/value placeholders. Used for candidate listing queries
// where every supplied filter narrows the result conjunctively.
type condBuilder struct {
	conds  []string
	names  map[string]string
	values map[string]types.AttributeValue
	n      int
}

func newCondBuilder() *condBuilder {
	return &condBuilder{
		names:  make(map[string]string),
		values: make(map[string]types.AttributeValue),
	}
}

// add appends "<attr> <op> <value>" to the condition set.
func (b *condBuilder) add(attr, op string, value interface{}) error {
	av, err := attributevalue.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal condition %s: %w", attr, err)
	}
	nameKey := fmt.Sprintf("#c%d", b.n)
	valueKey := fmt.Sprintf(":c%d", b.n)
	b.n++
	b.names[nameKey] = attr
	b.values[valueKey] = av
	b.conds = append(b.conds, fmt.Sprintf("%s %s %s", nameKey, op, valueKey))
	return nil
}

// expr returns the AND-joined condition expression, or "" when empty.
func (b *condBuilder) expr() string {
	if len(b.conds) == 0 {
		return ""
	}
	out := b.conds[0]
	for _, c := range b.conds[1:] {
		out += " AND " + c
	}
	return out
}
