package backend

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/edb/internal/extract"
	"github.com/agentic-research/edb/internal/fact"
	"github.com/agentic-research/edb/internal/value"
)

func sampleDoc() value.Value {
	return value.Map{
		{Key: value.String("admin"), Value: value.Bool(true)},
		{Key: value.String("age"), Value: value.Int64(42)},
		{Key: value.String("name"), Value: value.String("alice")},
		{Key: value.String("tags"), Value: value.Seq{value.String("a"), value.String("b")}},
	}
}

func flushSample(t *testing.T, keys MapKeys) *sql.DB {
	t.Helper()
	be := NewSQLite(keys)
	_, err := extract.New(be).ExtractRoot(0, sampleDoc())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "facts.db")
	require.NoError(t, be.Flush(path))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func queryStrings(t *testing.T, db *sql.DB, query string) []string {
	t.Helper()
	rows, err := db.Query(query)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()
	var out []string
	for rows.Next() {
		var s string
		require.NoError(t, rows.Scan(&s))
		out = append(out, s)
	}
	require.NoError(t, rows.Err())
	return out
}

func queryInt(t *testing.T, db *sql.DB, query string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.QueryRow(query).Scan(&n))
	return n
}

func TestSQLiteLayout(t *testing.T) {
	db := flushSample(t, StringKeys)

	tables := queryStrings(t, db,
		"SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	for _, want := range []string{
		"__SymbolTable", "_bool", "_map", "_number", "_rootElem", "_seq",
		"_string", "_struct", "_structField", "_structType", "_tuple",
		"_type", "_variantType",
	} {
		assert.Contains(t, tables, want)
	}

	views := queryStrings(t, db,
		"SELECT name FROM sqlite_master WHERE type = 'view' ORDER BY name")
	for _, want := range []string{
		"bool", "map", "number", "rootElem", "seq", "string", "struct",
		"structField", "structType", "tuple", "type", "variantType",
	} {
		assert.Contains(t, views, want)
	}
}

func TestSQLiteViewsResolveSymbols(t *testing.T) {
	db := flushSample(t, StringKeys)

	// 11 elements: the map, 4 key strings, and 6 payload elements.
	assert.Equal(t, int64(11), queryInt(t, db, "SELECT count(*) FROM type"))

	assert.Equal(t,
		[]string{"a", "admin", "age", "alice", "b", "name", "tags"},
		queryStrings(t, db, "SELECT value FROM string ORDER BY value"))

	assert.Equal(t,
		[]string{"admin", "age", "name", "tags"},
		queryStrings(t, db, "SELECT key FROM map ORDER BY key"))

	assert.Equal(t, int64(42), queryInt(t, db, "SELECT value FROM number"))
	assert.Equal(t, int64(1), queryInt(t, db, "SELECT value FROM bool"))
	assert.Equal(t, int64(2), queryInt(t, db, "SELECT count(*) FROM seq"))

	var source, root int64
	require.NoError(t, db.QueryRow("SELECT source, id FROM rootElem").Scan(&source, &root))
	assert.Equal(t, int64(0), source)
	assert.Equal(t, int64(1), root)

	// The root is typed as a map.
	kind := queryStrings(t, db, "SELECT type FROM type WHERE id = 1")
	assert.Equal(t, []string{"Map"}, kind)
}

func TestSQLiteGenericKeys(t *testing.T) {
	db := flushSample(t, GenericKeys)

	// In the generic variant map keys are element ids, each carrying its own
	// string fact; joining reconstructs the same key set.
	assert.Equal(t,
		[]string{"admin", "age", "name", "tags"},
		queryStrings(t, db, `
			SELECT string.value FROM map
			INNER JOIN string ON map.key = string.id
			ORDER BY string.value`))
}

func TestSQLiteNonStringKeyRejected(t *testing.T) {
	doc := value.Map{
		{Key: value.Int64(1), Value: value.String("one")},
	}

	be := NewSQLite(StringKeys)
	_, err := extract.New(be).Extract(doc)
	var nonString *fact.NonStringKeyError
	require.ErrorAs(t, err, &nonString)

	// The generic variant accepts the same document.
	be = NewSQLite(GenericKeys)
	_, err = extract.New(be).Extract(doc)
	require.NoError(t, err)
	assert.Len(t, be.Data().Maps, 1)
}

func TestSQLiteMultipleSources(t *testing.T) {
	be := NewSQLite(StringKeys)
	ex := extract.New(be)
	_, err := ex.ExtractRoot(0, value.Seq{value.Int64(1)})
	require.NoError(t, err)
	_, err = ex.ExtractRoot(1, value.Seq{value.Int64(2)})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "facts.db")
	require.NoError(t, be.Flush(path))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	assert.Equal(t, int64(2), queryInt(t, db, "SELECT count(*) FROM rootElem"))
	assert.Equal(t, int64(2), queryInt(t, db, "SELECT count(DISTINCT source) FROM rootElem"))
	assert.Equal(t, int64(2), queryInt(t, db, "SELECT count(DISTINCT id) FROM rootElem"))
}
