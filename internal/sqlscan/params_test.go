package sqlscan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLParams_Extract(t *testing.T) {
	sql := "select * from users where name = :user_name or email = :email or alias = :user_name and note <> ':ignored' and kind = 'a'::text"

	tests := []struct {
		style    Style
		wantSQL  string
		wantArgs []string
	}{
		{
			style:    StyleDollar,
			wantSQL:  "select * from users where name = $1 or email = $2 or alias = $1 and note <> ':ignored' and kind = 'a'::text",
			wantArgs: []string{"user_name", "email"},
		},
		{
			style:    StyleQuestion,
			wantSQL:  "select * from users where name = ? or email = ? or alias = ? and note <> ':ignored' and kind = 'a'::text",
			wantArgs: []string{"user_name", "email", "user_name"},
		},
		{
			style:    StyleAt,
			wantSQL:  "select * from users where name = @p1 or email = @p2 or alias = @p1 and note <> ':ignored' and kind = 'a'::text",
			wantArgs: []string{"user_name", "email"},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.style), func(t *testing.T) {
			got, err := SQLParams{Style: tt.style}.Extract(sql)
			require.NoError(t, err)
			assert.Equal(t, []string{"user_name", "email"}, got.Names)
			assert.Equal(t, tt.wantSQL, got.PositionalSQL)
			assert.Equal(t, tt.wantArgs, got.Args)
		})
	}
}

func TestSQLParams_NoParams(t *testing.T) {
	got, err := SQLParams{}.Extract("select 1")
	require.NoError(t, err)
	assert.Empty(t, got.Names)
	assert.Empty(t, got.Args)
	assert.Equal(t, "select 1", got.PositionalSQL)
}

func TestSQLParams_UnknownStyle(t *testing.T) {
	_, err := SQLParams{Style: "colon"}.Extract("select :a")
	assert.ErrorIs(t, err, ErrUnknownStyle)
}

func TestParseStyle(t *testing.T) {
	for in, want := range map[string]Style{
		"":         StyleDollar,
		"dollar":   StyleDollar,
		"Postgres": StyleDollar,
		"question": StyleQuestion,
		"mysql":    StyleQuestion,
		"at":       StyleAt,
		"mssql":    StyleAt,
	} {
		got, err := ParseStyle(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseStyle("oracle")
	assert.ErrorIs(t, err, ErrUnknownStyle)
}

func TestSQLParams_HashOperator(t *testing.T) {
	sql := "select data #>> '{a,b}' as val, tags # 1 as x from t where id = :id and flag = :flagBool and note <> '#:skip'"

	for _, style := range []Style{StyleDollar, StyleAt} {
		t.Run(string(style), func(t *testing.T) {
			got, err := SQLParams{Style: style}.Extract(sql)
			require.NoError(t, err)
			assert.Equal(t, []string{"id", "flagBool"}, got.Names)
			assert.Equal(t, []string{"id", "flagBool"}, got.Args)
			assert.Contains(t, got.PositionalSQL, "data #>> '{a,b}' as val, tags # 1 as x")
			assert.Contains(t, got.PositionalSQL, "note <> '#:skip'")
			assert.NotContains(t, got.PositionalSQL, ":id")
		})
	}

	got, err := SQLParams{Style: StyleDollar}.Extract(sql)
	require.NoError(t, err)
	assert.Equal(t, "select data #>> '{a,b}' as val, tags # 1 as x from t where id = $1 and flag = $2 and note <> '#:skip'", got.PositionalSQL)
}

func TestSQLParams_HashCommentForQuestionStyle(t *testing.T) {
	got, err := SQLParams{Style: StyleQuestion}.Extract("select a from t where id = :id # and b = :ignored")
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, got.Names)
}
