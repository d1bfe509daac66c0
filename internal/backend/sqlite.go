package backend

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/agentic-research/edb/internal/fact"
	_ "modernc.org/sqlite"
)

// MapKeys selects the schema variant for map facts.
type MapKeys int

const (
	// StringKeys stores map keys as interned strings, inlined from the key
	// element's string payload. Valid only for inputs whose maps are
	// guaranteed string-keyed (JSON, TOML).
	StringKeys MapKeys = iota

	// GenericKeys stores map keys as element ids, supporting keys of any
	// shape.
	GenericKeys
)

// MapStringRow is a map link in the string-key variant: the key column is an
// interned symbol rather than an element id.
type MapStringRow struct {
	Elem  fact.ElemID
	Key   fact.SymbolID
	Child fact.ElemID
}

// SQLite materializes facts into a SQLite database laid out as a Souffle
// input EDB: one table per fact family plus the symbol table, with
// unprefixed views exposing the relations Souffle loads. Facts accumulate in
// an embedded vector backend; Flush writes them in one transaction.
type SQLite struct {
	vec        *Vector
	keys       MapKeys
	mapStrings []MapStringRow
}

// NewSQLite returns a backend targeting the given map-key schema variant.
// The variant is fixed for the whole session.
func NewSQLite(keys MapKeys) *SQLite {
	return &SQLite{vec: NewVector(), keys: keys}
}

// Data exposes the accumulated in-memory tables.
func (b *SQLite) Data() *Vector { return b.vec }

// MapStrings exposes the string-key map rows (string-key variant only).
func (b *SQLite) MapStrings() []MapStringRow { return b.mapStrings }

func (b *SQLite) AddRoot(source int, elem fact.ElemID) error { return b.vec.AddRoot(source, elem) }

func (b *SQLite) AddElem(elem fact.ElemID, kind fact.Kind) error { return b.vec.AddElem(elem, kind) }

func (b *SQLite) AddBool(elem fact.ElemID, v bool) error { return b.vec.AddBool(elem, v) }

func (b *SQLite) AddNumber(elem fact.ElemID, v int64) error { return b.vec.AddNumber(elem, v) }

func (b *SQLite) AddFloat(elem fact.ElemID, v float64) error { return b.vec.AddFloat(elem, v) }

func (b *SQLite) AddString(elem fact.ElemID, v string) error { return b.vec.AddString(elem, v) }

func (b *SQLite) AddBytes(elem fact.ElemID, v []byte) error { return b.vec.AddBytes(elem, v) }

func (b *SQLite) AddSeqEntry(elem fact.ElemID, pos int, child fact.ElemID) error {
	return b.vec.AddSeqEntry(elem, pos, child)
}

func (b *SQLite) AddTupleEntry(elem fact.ElemID, pos int, child fact.ElemID) error {
	return b.vec.AddTupleEntry(elem, pos, child)
}

func (b *SQLite) AddStructEntry(elem fact.ElemID, field string, child fact.ElemID) error {
	return b.vec.AddStructEntry(elem, field, child)
}

// AddMapEntry records a map link. In string-key mode the key element must
// already carry a string payload; its symbol is inlined as the key column.
func (b *SQLite) AddMapEntry(elem fact.ElemID, key, value fact.ElemID) error {
	if b.keys == GenericKeys {
		return b.vec.AddMapEntry(elem, key, value)
	}
	sym, ok := b.vec.StringPayload(key)
	if !ok {
		return &fact.NonStringKeyError{Map: elem, Key: key}
	}
	b.mapStrings = append(b.mapStrings, MapStringRow{Elem: elem, Key: sym, Child: value})
	return nil
}

func (b *SQLite) AddStructType(elem fact.ElemID, name string, fields []string) error {
	return b.vec.AddStructType(elem, name, fields)
}

func (b *SQLite) AddVariantType(elem fact.ElemID, name, variant string, idx int) error {
	return b.vec.AddVariantType(elem, name, variant, idx)
}

// Dump writes the accumulated tables to w (see Vector.Dump). In string-key
// mode the map rows live on this backend rather than the vector tables, so
// they are appended separately.
func (b *SQLite) Dump(w io.Writer) error {
	if err := b.vec.Dump(w); err != nil {
		return err
	}
	if len(b.mapStrings) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "map\nelem\tkey\tchild\n")
	for _, r := range b.mapStrings {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", r.Elem, b.vec.symbol(r.Key), r.Child)
	}
	fmt.Fprintln(tw)
	return tw.Flush()
}

const schemaCommon = `
CREATE TABLE __SymbolTable (
	id INTEGER NOT NULL,
	symbol TEXT NOT NULL,
	PRIMARY KEY (id)
);

CREATE TABLE _type (
	id INTEGER NOT NULL,
	type INTEGER NOT NULL,
	PRIMARY KEY (id)
);

CREATE VIEW type AS
SELECT _type.id AS id, __SymbolTable.symbol AS type
FROM _type INNER JOIN __SymbolTable
ON _type.type = __SymbolTable.id;

CREATE TABLE _bool (
	id INTEGER NOT NULL,
	value INTEGER NOT NULL,
	PRIMARY KEY (id),
	FOREIGN KEY(id) REFERENCES _type(id)
);

CREATE VIEW bool AS
SELECT id, value FROM _bool;

CREATE TABLE _number (
	id INTEGER NOT NULL,
	value INTEGER NOT NULL,
	PRIMARY KEY (id),
	FOREIGN KEY(id) REFERENCES _type(id)
);

CREATE VIEW number AS
SELECT id, value FROM _number;

CREATE TABLE _string (
	id INTEGER NOT NULL,
	value INTEGER NOT NULL,
	PRIMARY KEY (id),
	FOREIGN KEY(id) REFERENCES _type(id),
	FOREIGN KEY(value) REFERENCES __SymbolTable(id)
);

CREATE VIEW string AS
SELECT _string.id AS id, __SymbolTable.symbol AS value
FROM _string INNER JOIN __SymbolTable
ON _string.value = __SymbolTable.id;

CREATE TABLE _struct (
	id INTEGER NOT NULL,
	field INTEGER NOT NULL,
	value INTEGER NOT NULL,
	PRIMARY KEY (id, field),
	FOREIGN KEY(id) REFERENCES _type(id),
	FOREIGN KEY(field) REFERENCES __SymbolTable(id),
	FOREIGN KEY(value) REFERENCES _type(id)
);

CREATE VIEW struct AS
SELECT _struct.id AS id, __SymbolTable.symbol AS field, _struct.value AS value
FROM _struct INNER JOIN __SymbolTable
ON _struct.field = __SymbolTable.id;

CREATE TABLE _seq (
	id INTEGER NOT NULL,
	pos INTEGER NOT NULL,
	value INTEGER NOT NULL,
	PRIMARY KEY (id, pos),
	FOREIGN KEY(id) REFERENCES _type(id),
	FOREIGN KEY(value) REFERENCES _type(id)
);

CREATE VIEW seq AS
SELECT id, pos, value FROM _seq;

CREATE TABLE _tuple (
	id INTEGER NOT NULL,
	pos INTEGER NOT NULL,
	value INTEGER NOT NULL,
	PRIMARY KEY (id, pos),
	FOREIGN KEY(id) REFERENCES _type(id),
	FOREIGN KEY(value) REFERENCES _type(id)
);

CREATE VIEW tuple AS
SELECT id, pos, value FROM _tuple;

CREATE TABLE _structType (
	id INTEGER NOT NULL,
	type INTEGER NOT NULL,
	PRIMARY KEY (id),
	FOREIGN KEY(id) REFERENCES _type(id),
	FOREIGN KEY(type) REFERENCES __SymbolTable(id)
);

CREATE VIEW structType AS
SELECT _structType.id AS id, __SymbolTable.symbol AS type
FROM _structType INNER JOIN __SymbolTable
ON _structType.type = __SymbolTable.id;

CREATE TABLE _structField (
	type INTEGER NOT NULL,
	pos INTEGER NOT NULL,
	field INTEGER NOT NULL,
	PRIMARY KEY (type, pos),
	FOREIGN KEY(type) REFERENCES __SymbolTable(id),
	FOREIGN KEY(field) REFERENCES __SymbolTable(id)
);

CREATE VIEW structField AS
SELECT s1.symbol AS type, _structField.pos AS pos, s2.symbol AS field
FROM _structField
	INNER JOIN __SymbolTable AS s1 ON _structField.type = s1.id
	INNER JOIN __SymbolTable AS s2 ON _structField.field = s2.id;

CREATE TABLE _variantType (
	id INTEGER NOT NULL,
	type INTEGER NOT NULL,
	variant INTEGER NOT NULL,
	idx INTEGER NOT NULL,
	PRIMARY KEY (id),
	FOREIGN KEY(id) REFERENCES _type(id),
	FOREIGN KEY(type) REFERENCES __SymbolTable(id),
	FOREIGN KEY(variant) REFERENCES __SymbolTable(id)
);

CREATE VIEW variantType AS
SELECT _variantType.id AS id, s1.symbol AS type, s2.symbol AS variant, _variantType.idx AS idx
FROM _variantType
	INNER JOIN __SymbolTable AS s1 ON _variantType.type = s1.id
	INNER JOIN __SymbolTable AS s2 ON _variantType.variant = s2.id;

CREATE TABLE _rootElem (
	source INTEGER NOT NULL,
	id INTEGER NOT NULL,
	PRIMARY KEY (source),
	FOREIGN KEY(id) REFERENCES _type(id)
);

CREATE VIEW rootElem AS
SELECT source, id FROM _rootElem;
`

const schemaMapGeneric = `
CREATE TABLE _map (
	id INTEGER NOT NULL,
	key INTEGER NOT NULL,
	value INTEGER NOT NULL,
	PRIMARY KEY (id, key),
	FOREIGN KEY(id) REFERENCES _type(id),
	FOREIGN KEY(key) REFERENCES _type(id),
	FOREIGN KEY(value) REFERENCES _type(id)
);

CREATE VIEW map AS
SELECT id, key, value FROM _map;
`

const schemaMapStringKey = `
CREATE TABLE _map (
	id INTEGER NOT NULL,
	key INTEGER NOT NULL,
	value INTEGER NOT NULL,
	PRIMARY KEY (id, key),
	FOREIGN KEY(id) REFERENCES _type(id),
	FOREIGN KEY(key) REFERENCES __SymbolTable(id),
	FOREIGN KEY(value) REFERENCES _type(id)
);

CREATE VIEW map AS
SELECT _map.id AS id, __SymbolTable.symbol AS key, _map.value AS value
FROM _map INNER JOIN __SymbolTable
ON _map.key = __SymbolTable.id;
`

// Flush writes every accumulated table into the database at path, one bulk
// insert per table inside a single transaction. On failure the file is
// removed so a failed session never leaves output that looks complete.
func (b *SQLite) Flush(path string) error {
	if err := b.flush(path); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

func (b *SQLite) flush(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", path, err)
	}
	defer func() { _ = db.Close() }() // safe to ignore

	// Bulk-load tuning; durability is irrelevant since a failed flush
	// discards the file anyway.
	if _, err := db.Exec("PRAGMA synchronous = OFF"); err != nil {
		return fmt.Errorf("set synchronous pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = MEMORY"); err != nil {
		return fmt.Errorf("set journal_mode pragma: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op after commit

	schema := schemaCommon
	if b.keys == GenericKeys {
		schema += schemaMapGeneric
	} else {
		schema += schemaMapStringKey
	}
	if _, err := tx.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	vec := b.vec

	if err := bulkInsert(tx, "INSERT INTO __SymbolTable (id, symbol) VALUES (?, ?)",
		vec.Symbols.Len(), func(stmt *sql.Stmt, i int) error {
			s, _ := vec.Symbols.Lookup(fact.SymbolID(i + 1))
			_, err := stmt.Exec(i+1, s)
			return err
		}); err != nil {
		return fmt.Errorf("insert symbol table: %w", err)
	}

	if err := bulkInsert(tx, "INSERT INTO _type (id, type) VALUES (?, ?)",
		len(vec.Types), func(stmt *sql.Stmt, i int) error {
			r := vec.Types[i]
			_, err := stmt.Exec(r.Elem, r.Kind)
			return err
		}); err != nil {
		return fmt.Errorf("insert type table: %w", err)
	}

	if err := bulkInsert(tx, "INSERT INTO _bool (id, value) VALUES (?, ?)",
		len(vec.Bools), func(stmt *sql.Stmt, i int) error {
			r := vec.Bools[i]
			v := 0
			if r.Value {
				v = 1
			}
			_, err := stmt.Exec(r.Elem, v)
			return err
		}); err != nil {
		return fmt.Errorf("insert bool table: %w", err)
	}

	if err := bulkInsert(tx, "INSERT INTO _number (id, value) VALUES (?, ?)",
		len(vec.Numbers), func(stmt *sql.Stmt, i int) error {
			r := vec.Numbers[i]
			_, err := stmt.Exec(r.Elem, r.Value)
			return err
		}); err != nil {
		return fmt.Errorf("insert number table: %w", err)
	}

	if err := bulkInsert(tx, "INSERT INTO _string (id, value) VALUES (?, ?)",
		len(vec.Strings), func(stmt *sql.Stmt, i int) error {
			r := vec.Strings[i]
			_, err := stmt.Exec(r.Elem, r.Value)
			return err
		}); err != nil {
		return fmt.Errorf("insert string table: %w", err)
	}

	if b.keys == GenericKeys {
		if err := bulkInsert(tx, "INSERT INTO _map (id, key, value) VALUES (?, ?, ?)",
			len(vec.Maps), func(stmt *sql.Stmt, i int) error {
				r := vec.Maps[i]
				_, err := stmt.Exec(r.Elem, r.Key, r.Child)
				return err
			}); err != nil {
			return fmt.Errorf("insert map table: %w", err)
		}
	} else {
		if err := bulkInsert(tx, "INSERT INTO _map (id, key, value) VALUES (?, ?, ?)",
			len(b.mapStrings), func(stmt *sql.Stmt, i int) error {
				r := b.mapStrings[i]
				_, err := stmt.Exec(r.Elem, r.Key, r.Child)
				return err
			}); err != nil {
			return fmt.Errorf("insert map table: %w", err)
		}
	}

	if err := bulkInsert(tx, "INSERT INTO _struct (id, field, value) VALUES (?, ?, ?)",
		len(vec.Structs), func(stmt *sql.Stmt, i int) error {
			r := vec.Structs[i]
			_, err := stmt.Exec(r.Elem, r.Field, r.Child)
			return err
		}); err != nil {
		return fmt.Errorf("insert struct table: %w", err)
	}

	if err := bulkInsert(tx, "INSERT INTO _seq (id, pos, value) VALUES (?, ?, ?)",
		len(vec.Seqs), func(stmt *sql.Stmt, i int) error {
			r := vec.Seqs[i]
			_, err := stmt.Exec(r.Elem, r.Pos, r.Child)
			return err
		}); err != nil {
		return fmt.Errorf("insert seq table: %w", err)
	}

	if err := bulkInsert(tx, "INSERT INTO _tuple (id, pos, value) VALUES (?, ?, ?)",
		len(vec.Tuples), func(stmt *sql.Stmt, i int) error {
			r := vec.Tuples[i]
			_, err := stmt.Exec(r.Elem, r.Pos, r.Child)
			return err
		}); err != nil {
		return fmt.Errorf("insert tuple table: %w", err)
	}

	if err := bulkInsert(tx, "INSERT INTO _structType (id, type) VALUES (?, ?)",
		len(vec.StructTypes), func(stmt *sql.Stmt, i int) error {
			r := vec.StructTypes[i]
			_, err := stmt.Exec(r.Elem, r.Type)
			return err
		}); err != nil {
		return fmt.Errorf("insert structType table: %w", err)
	}

	if err := bulkInsert(tx, "INSERT INTO _structField (type, pos, field) VALUES (?, ?, ?)",
		len(vec.StructFields), func(stmt *sql.Stmt, i int) error {
			r := vec.StructFields[i]
			_, err := stmt.Exec(r.Type, r.Pos, r.Field)
			return err
		}); err != nil {
		return fmt.Errorf("insert structField table: %w", err)
	}

	if err := bulkInsert(tx, "INSERT INTO _variantType (id, type, variant, idx) VALUES (?, ?, ?, ?)",
		len(vec.VariantTypes), func(stmt *sql.Stmt, i int) error {
			r := vec.VariantTypes[i]
			_, err := stmt.Exec(r.Elem, r.Type, r.Variant, r.Index)
			return err
		}); err != nil {
		return fmt.Errorf("insert variantType table: %w", err)
	}

	if err := bulkInsert(tx, "INSERT INTO _rootElem (source, id) VALUES (?, ?)",
		len(vec.Roots), func(stmt *sql.Stmt, i int) error {
			r := vec.Roots[i]
			_, err := stmt.Exec(r.Source, r.Elem)
			return err
		}); err != nil {
		return fmt.Errorf("insert rootElem table: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit facts: %w", err)
	}
	return nil
}

func bulkInsert(tx *sql.Tx, query string, n int, row func(*sql.Stmt, int) error) error {
	if n == 0 {
		return nil
	}
	stmt, err := tx.Prepare(query)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()
	for i := 0; i < n; i++ {
		if err := row(stmt, i); err != nil {
			return err
		}
	}
	return nil
}

var _ fact.Backend = (*SQLite)(nil)
