package dynamo

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/materio/backend/internal/domain"
)

// The phone-index GSI declares phone as a string key, so a profile without
// a phone must marshal with the attribute absent rather than NULL-typed.
func TestProfileMarshal_NilPhone_OmitsAttribute(t *testing.T) {
	p := &domain.Profile{
		ProfileID:          "u1",
		Email:              "buyer@acme.example",
		UserType:           domain.UserTypeBusiness,
		VerificationStatus: domain.VerificationPending,
		CreatedAt:          time.Now().UTC(),
		UpdatedAt:          time.Now().UTC(),
	}

	item, err := attributevalue.MarshalMap(p)
	require.NoError(t, err)

	_, present := item["phone"]
	assert.False(t, present, "nil phone must not produce a NULL attribute")
}

func TestProfileMarshal_SetPhone_StringAttribute(t *testing.T) {
	phone := "+911234567890"
	p := &domain.Profile{ProfileID: "u1", Phone: &phone}

	item, err := attributevalue.MarshalMap(p)
	require.NoError(t, err)

	av, ok := item["phone"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, phone, av.Value)
}
