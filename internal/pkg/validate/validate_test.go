package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gstField struct {
	GST string `validate:"gstin"`
}

func TestStruct_GSTINValid(t *testing.T) {
	require.NoError(t, Struct(gstField{GST: "22AAAAA0000A1Z5"}))
	require.NoError(t, Struct(gstField{GST: "27ABCDE1234F2Z9"}))
}

func TestStruct_GSTINInvalid(t *testing.T) {
	for _, gst := range []string{
		"",
		"22AAAAA0000A1X5",  // missing literal Z
		"2AAAAAA0000A1Z5",  // bad state code
		"22aaaaa0000a1z5",  // lowercase
		"22AAAAA0000A1Z55", // too long
	} {
		err := Struct(gstField{GST: gst})
		assert.Error(t, err, "expected %q to fail", gst)
		if err != nil {
			assert.Contains(t, err.Error(), "gstin")
		}
	}
}
