package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateExpr_SingleField(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"business_name": "Acme Steel"})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0", ue.Expr)
	assert.Equal(t, map[string]string{"#f0": "business_name"}, ue.Names)
	_, ok := ue.Values[":v0"]
	assert.True(t, ok)
}

func TestBuildUpdateExpr_MultipleFields_Deterministic(t *testing.T) {
	updates := map[string]interface{}{
		"price":    120.5,
		"quantity": 40.0,
		"status":   "published",
	}
	// Call twice to verify determinism.
	ue1, err := buildUpdateExpr(updates)
	require.NoError(t, err)
	ue2, err := buildUpdateExpr(updates)
	require.NoError(t, err)

	assert.Equal(t, ue1.Expr, ue2.Expr)

	// Keys must be sorted: price < quantity < status
	assert.Equal(t, "price", ue1.Names["#f0"])
	assert.Equal(t, "quantity", ue1.Names["#f1"])
	assert.Equal(t, "status", ue1.Names["#f2"])
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1, #f2 = :v2", ue1.Expr)
}

func TestBuildUpdateExpr_ValuesMarshalledCorrectly(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"phone_verified": true})
	require.NoError(t, err)
	av, ok := ue.Values[":v0"]
	require.True(t, ok)
	boolVal, isBool := av.(*types.AttributeValueMemberBOOL)
	require.True(t, isBool)
	assert.True(t, boolVal.Value)
}

func TestBuildUpdateExpr_EmptyMap_ReturnsError(t *testing.T) {
	_, err := buildUpdateExpr(map[string]interface{}{})
	assert.ErrorContains(t, err, "no fields to update")
}

func TestCondBuilder_Empty(t *testing.T) {
	b := newCondBuilder()
	assert.Empty(t, b.expr())
}

func TestCondBuilder_JoinsWithAND(t *testing.T) {
	b := newCondBuilder()
	require.NoError(t, b.add("user_id", "<>", "u1"))
	require.NoError(t, b.add("price", ">=", 10.0))
	require.NoError(t, b.add("price", "<=", 50.0))

	assert.Equal(t, "#c0 <> :c0 AND #c1 >= :c1 AND #c2 <= :c2", b.expr())
	assert.Equal(t, "user_id", b.names["#c0"])
	assert.Equal(t, "price", b.names["#c1"])

	n, ok := b.values[":c1"].(*types.AttributeValueMemberN)
	require.True(t, ok)
	assert.Equal(t, "10", n.Value)
}
