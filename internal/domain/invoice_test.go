package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractedDataSetGet(t *testing.T) {
	var d ExtractedData

	d.Set(FieldTotal, "1,250.00")
	d.Set(FieldVendor, "")

	total, ok := d.Get(FieldTotal)
	assert.True(t, ok)
	assert.Equal(t, "1,250.00", total)

	_, ok = d.Get(FieldVendor)
	assert.False(t, ok, "empty value must be stored as not found")

	_, ok = d.Get(Field("unknown"))
	assert.False(t, ok)

	assert.Equal(t, 1, d.FoundCount())
}

func TestExtractedDataJSONShape(t *testing.T) {
	var d ExtractedData
	d.Set(FieldCurrency, "EUR")

	raw, err := json.Marshal(d)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Len(t, decoded, len(Fields))
	for _, f := range Fields {
		assert.Contains(t, decoded, string(f))
	}
	assert.Equal(t, "EUR", decoded["currency"])
	assert.Nil(t, decoded["vendor"])
}
