package typeinfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable_Infer(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		name string
		want TypeTag
	}{
		{"userId", Long},
		{"user_id", Long},
		{"firstName", String},
		{"descriptionText", String},
		{"isActiveBool", Boolean},
		{"ageShort", Short},
		{"pageInt", Int},
		{"rowCount", Long},
		{"ratioFloat", Float},
		{"scoreDouble", Double},
		{"priceNumeric", Decimal},
		{"avatarBinary", Binary},
		{"createdDate", Date},
		{"tagList", Collection},
		{"idSet", Collection},
		{"statusCollection", Collection},
		{"whatever", Unknown},
		{"", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Infer(tt.name))
		})
	}
}

func TestTable_OrderSensitivity(t *testing.T) {
	idFirst := Table{{"Id", Long}, {"d", Date}}
	assert.Equal(t, Long, idFirst.Infer("userId"))

	shortFirst := Table{{"d", Date}, {"Id", Long}}
	assert.Equal(t, Date, shortFirst.Infer("userId"))
}

func TestTable_FirstMatchNotLongest(t *testing.T) {
	table := Table{{"e", Boolean}, {"Name", String}}
	assert.Equal(t, Boolean, table.Infer("userName"))
}

func TestDefaultTable_IsFreshCopy(t *testing.T) {
	a := DefaultTable()
	a[0].Type = Binary

	b := DefaultTable()
	assert.Equal(t, String, b[0].Type)
	assert.Len(t, b, 38)
}

func TestParseTypeTag(t *testing.T) {
	tests := []struct {
		in   string
		want TypeTag
	}{
		{"string", String},
		{"Boolean", Boolean},
		{"bool", Boolean},
		{" long ", Long},
		{"bigint", Long},
		{"decimal", Decimal},
		{"numeric", Decimal},
		{"bytes", Binary},
		{"date", Date},
		{"collection", Collection},
		{"unknown", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTypeTag(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseTypeTag("java.util.Date")
	assert.Error(t, err)
}

func TestTypeTag_GoType(t *testing.T) {
	assert.Equal(t, "int64", Long.GoType())
	assert.Equal(t, "time.Time", Date.GoType())
	assert.Equal(t, "time", Date.Import())
	assert.Equal(t, "github.com/shopspring/decimal", Decimal.Import())
	assert.Equal(t, "", String.Import())
	assert.Equal(t, "any", Unknown.GoType())
	assert.Equal(t, "any", TypeTag(99).GoType())
	assert.Equal(t, "TypeTag(99)", TypeTag(99).String())
}

func TestTypeTag_TextRoundTrip(t *testing.T) {
	var tag TypeTag
	require.NoError(t, tag.UnmarshalText([]byte("double")))
	assert.Equal(t, Double, tag)

	text, err := tag.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "double", string(text))

	assert.Error(t, tag.UnmarshalText([]byte("nope")))
}
