// Package descriptor exposes the column and relation metadata of GORM entities
// as plain values, so callers can inspect a table's shape without touching the
// database. Everything is derived from the struct tags of the entity.
package descriptor

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"gorm.io/gorm/schema"
)

// ColumnType is the semantic type of a column.
type ColumnType string

const (
	Integer   ColumnType = "integer"
	Float     ColumnType = "float"
	Text      ColumnType = "text"
	Boolean   ColumnType = "boolean"
	Timestamp ColumnType = "timestamp"
	Bytes     ColumnType = "bytes"
)

// Cardinality of a relation, seen from the described entity.
type Cardinality string

const (
	OneToOne   Cardinality = "one_to_one"
	OneToMany  Cardinality = "one_to_many"
	ManyToOne  Cardinality = "many_to_one"
	ManyToMany Cardinality = "many_to_many"
)

// Action is a referential action taken when a referenced row changes.
type Action string

const (
	NoAction   Action = "NO ACTION"
	Restrict   Action = "RESTRICT"
	Cascade    Action = "CASCADE"
	SetNull    Action = "SET NULL"
	SetDefault Action = "SET DEFAULT"
)

// Column describes one mapped column.
type Column struct {
	Name       string     `json:"name"`
	Field      string     `json:"field"`
	Type       ColumnType `json:"type"`
	Bits       int        `json:"bits,omitempty"`
	PrimaryKey bool       `json:"primary_key"`
	Unique     bool       `json:"unique"`
	Nullable   bool       `json:"nullable"`
}

// Relation describes an association to another entity.
// For many-to-one relations ForeignKey is a local column; for one-to-many
// relations it is a column of the Target table. References is the column
// ForeignKey points at.
type Relation struct {
	Name        string      `json:"name"`
	Cardinality Cardinality `json:"cardinality"`
	Target      string      `json:"target"`
	ForeignKey  string      `json:"foreign_key"`
	References  string      `json:"references"`
	OnUpdate    Action      `json:"on_update"`
	OnDelete    Action      `json:"on_delete"`
}

// Entity is the static description of a table.
type Entity struct {
	Table     string     `json:"table"`
	Columns   []Column   `json:"columns"`
	Relations []Relation `json:"relations"`
}

var timeType = reflect.TypeOf(time.Time{})

// Describe parses model, a pointer to a GORM entity, using namer for table and
// column names. A nil namer means GORM's default naming strategy.
func Describe(model interface{}, namer schema.Namer) (*Entity, error) {
	if namer == nil {
		namer = schema.NamingStrategy{}
	}
	s, err := schema.Parse(model, &sync.Map{}, namer)
	if err != nil {
		return nil, fmt.Errorf("failed to parse entity %T: %w", model, err)
	}

	entity := &Entity{Table: s.Table}
	for _, f := range s.Fields {
		if f.DBName == "" {
			if rel, ok := s.Relationships.Relations[f.Name]; ok {
				entity.Relations = append(entity.Relations, describeRelation(rel, namer))
			}
			continue
		}
		entity.Columns = append(entity.Columns, describeColumn(f))
	}
	return entity, nil
}

func describeColumn(f *schema.Field) Column {
	typ, bits := columnType(f.IndirectFieldType)
	return Column{
		Name:       f.DBName,
		Field:      f.Name,
		Type:       typ,
		Bits:       bits,
		PrimaryKey: f.PrimaryKey,
		Unique:     f.Unique,
		Nullable:   !f.NotNull && !f.PrimaryKey,
	}
}

func columnType(t reflect.Type) (ColumnType, int) {
	if t == timeType {
		return Timestamp, 0
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Integer, t.Bits()
	case reflect.Float32, reflect.Float64:
		return Float, t.Bits()
	case reflect.Bool:
		return Boolean, 0
	case reflect.String:
		return Text, 0
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return Bytes, 0
		}
	}
	return ColumnType(t.Kind().String()), 0
}

func describeRelation(rel *schema.Relationship, namer schema.Namer) Relation {
	r := Relation{
		Name:     namer.ColumnName("", rel.Name),
		Target:   rel.FieldSchema.Table,
		OnUpdate: NoAction,
		OnDelete: NoAction,
	}

	switch rel.Type {
	case schema.HasOne:
		r.Cardinality = OneToOne
	case schema.HasMany:
		r.Cardinality = OneToMany
	case schema.BelongsTo:
		r.Cardinality = ManyToOne
	case schema.Many2Many:
		r.Cardinality = ManyToMany
	}

	if len(rel.References) > 0 {
		ref := rel.References[0]
		if ref.ForeignKey != nil {
			r.ForeignKey = ref.ForeignKey.DBName
		}
		if ref.PrimaryKey != nil {
			r.References = ref.PrimaryKey.DBName
		}
	}

	if c := rel.ParseConstraint(); c != nil {
		if c.OnUpdate != "" {
			r.OnUpdate = Action(c.OnUpdate)
		}
		if c.OnDelete != "" {
			r.OnDelete = Action(c.OnDelete)
		}
	}
	return r
}

// Column returns the column with the given name.
func (e *Entity) Column(name string) (Column, bool) {
	for _, c := range e.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// PrimaryKey returns the first primary key column.
func (e *Entity) PrimaryKey() (Column, bool) {
	for _, c := range e.Columns {
		if c.PrimaryKey {
			return c, true
		}
	}
	return Column{}, false
}

// Relation returns the relation with the given name.
func (e *Entity) Relation(name string) (Relation, bool) {
	for _, r := range e.Relations {
		if r.Name == name {
			return r, true
		}
	}
	return Relation{}, false
}

// RelationsTo returns every relation whose target is table, in declaration order.
func (e *Entity) RelationsTo(table string) []Relation {
	var out []Relation
	for _, r := range e.Relations {
		if r.Target == table {
			out = append(out, r)
		}
	}
	return out
}
