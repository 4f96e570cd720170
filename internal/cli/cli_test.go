package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminally-online/querygen/internal/config"
)

const usersSQL = `/** selectUserById */
select user_name, created_date
  from users
 where id = :userId

/** updateUserName */
update users set name = :userName where id = :userId
`

const ordersYAML = `
selectOrderCount: select count(*) as order_count from orders
deleteOrder: delete from orders where id = :order_id
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	flags = config.Flags{}
	force, useDocker, asJSON, verbose, quiet = false, false, false, false, false
	outputFile = ""

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...))
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestGenerate_File(t *testing.T) {
	dir := t.TempDir()
	queries := filepath.Join(dir, "users.sql")
	writeTestFile(t, queries, usersSQL)
	out := filepath.Join(dir, "store")

	output, err := run(t, "generate", "--queries", queries, "--out", out, "--verbose")
	require.NoError(t, err, output)

	data, err := os.ReadFile(filepath.Join(out, "users.go"))
	require.NoError(t, err)
	src := string(data)
	assert.Contains(t, src, "package store")
	assert.Contains(t, src, "type Users struct")
	assert.Contains(t, src, "type DB interface")
	assert.Contains(t, src, "func (q *Users) SelectUserByID(ctx context.Context, params SelectUserByIDParams) ([]SelectUserByIDRow, error)")
	assert.Contains(t, src, "func (q *Users) UpdateUserName(ctx context.Context, params UpdateUserNameParams) (int64, error)")
	assert.Contains(t, src, "CreatedDate time.Time")

	assert.Contains(t, output, "Generated")
	assert.Contains(t, output, "select selectUserById(userId long) -> userName string, createdDate date")

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(queries, past, past))

	output, err = run(t, "generate", "--queries", queries, "--out", out)
	require.NoError(t, err)
	assert.Contains(t, output, "is up to date")

	output, err = run(t, "generate", "--queries", queries, "--out", out, "--force")
	require.NoError(t, err)
	assert.Contains(t, output, "Generated")
}

func TestGenerate_OutFile(t *testing.T) {
	dir := t.TempDir()
	queries := filepath.Join(dir, "users.sql")
	writeTestFile(t, queries, usersSQL)
	target := filepath.Join(dir, "db", "user_queries.go")

	_, err := run(t, "generate", "-q", queries, "-o", target, "--package", "db", "--class", "UserQueries", "--quiet")
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "package db\n")
	assert.Contains(t, string(data), "func NewUserQueries(db DB) *UserQueries")
}

func TestGenerate_OutFileDerivesPackage(t *testing.T) {
	dir := t.TempDir()
	queries := filepath.Join(dir, "users.sql")
	writeTestFile(t, queries, usersSQL)
	target := filepath.Join(dir, "db", "user_queries.go")

	output, err := run(t, "generate", "-q", queries, "-o", target)
	require.NoError(t, err, output)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "package db\n")
	assert.Contains(t, string(data), "type Users struct")
}

func TestGenerate_Directory(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "sql", "users.sql"), usersSQL)
	writeTestFile(t, filepath.Join(dir, "sql", "orders.yaml"), ordersYAML)
	writeTestFile(t, filepath.Join(dir, "sql", "README.md"), "not queries")
	out := filepath.Join(dir, "store")

	output, err := run(t, "generate", "-q", filepath.Join(dir, "sql"), "-o", out)
	require.NoError(t, err, output)

	shared, err := os.ReadFile(filepath.Join(out, sharedFile))
	require.NoError(t, err)
	assert.Contains(t, string(shared), "type DB interface")

	users, err := os.ReadFile(filepath.Join(out, "users.go"))
	require.NoError(t, err)
	assert.NotContains(t, string(users), "type DB interface")

	orders, err := os.ReadFile(filepath.Join(out, "orders.go"))
	require.NoError(t, err)
	assert.Contains(t, string(orders), "type Orders struct")
	assert.Contains(t, string(orders), "OrderCount int64")

	_, err = os.Stat(filepath.Join(out, "README.go"))
	assert.True(t, os.IsNotExist(err))

	_, err = run(t, "generate", "-q", filepath.Join(dir, "sql"), "-o", out, "--class", "Everything")
	assert.Error(t, err)
}

func TestGenerate_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.sql")
	writeTestFile(t, bad, "/** fetchUser */\nselect 1\n")

	_, err := run(t, "generate", "-q", bad, "-o", filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetchUser")

	_, err = run(t, "generate")
	assert.Error(t, err)

	_, err = run(t, "generate", "-q", filepath.Join(dir, "missing.sql"))
	assert.Error(t, err)
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	queries := filepath.Join(dir, "users.sql")
	writeTestFile(t, queries, usersSQL)

	output, err := run(t, "inspect", "-q", queries)
	require.NoError(t, err)
	assert.Contains(t, output, "class: Users")
	assert.Contains(t, output, "name: selectUserById")
	assert.Contains(t, output, "type: long")
	assert.Contains(t, output, "where id = $1")

	output, err = run(t, "inspect", "-q", queries, "--json", "--placeholder", "question")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(output, "["))
	assert.Contains(t, output, `"type": "date"`)
	assert.Contains(t, output, "where id = ?")
}

func TestValidate_RequiresDatabase(t *testing.T) {
	dir := t.TempDir()
	queries := filepath.Join(dir, "users.sql")
	writeTestFile(t, queries, usersSQL)

	_, err := run(t, "validate", "-q", queries)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database_url is required")

	_, err = run(t, "validate", "-q", queries, "--docker")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema is required")
}

func TestVersion(t *testing.T) {
	SetVersion("1.2.3")
	defer SetVersion("dev")

	output, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "querygen 1.2.3\n", output)
}

func TestDocs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")

	_, err := run(t, "docs", dir)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "querygen_generate.md"))
	assert.NoError(t, err)
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("store", "users.go"), outputPath("store", "sql/users.sql"))
	assert.Equal(t, filepath.Join("store", "user_queries.go"), outputPath("store", "user_queries.properties"))
	assert.Equal(t, "db/queries.go", outputPath("db/queries.go", "sql/users.sql"))
}

func TestUpToDate(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.sql")
	out := filepath.Join(dir, "out.go")
	writeTestFile(t, in, usersSQL)

	assert.False(t, upToDate(in, out), "missing output")

	writeTestFile(t, out, "")
	assert.False(t, upToDate(in, out), "empty output")

	writeTestFile(t, out, "package x\n")
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(in, past, past))
	assert.True(t, upToDate(in, out))

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(in, future, future))
	assert.False(t, upToDate(in, out))
}
