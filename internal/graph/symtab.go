package graph

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
)

// SymbolTable is the project-wide index of parsed methods and classes.
// It is filled by a Builder and read-only afterwards.
type SymbolTable struct {
	methods  map[string]*MethodRecord
	classes  map[string]*ClassRecord
	keys     []string
	warnings []string
}

func newSymbolTable() *SymbolTable {
	return &SymbolTable{
		methods: make(map[string]*MethodRecord),
		classes: make(map[string]*ClassRecord),
	}
}

// Method looks up a method by symbol key.
func (t *SymbolTable) Method(key string) (*MethodRecord, bool) {
	m, ok := t.methods[key]
	return m, ok
}

// Class looks up a class by name.
func (t *SymbolTable) Class(name string) (*ClassRecord, bool) {
	c, ok := t.classes[name]
	return c, ok
}

// Keys returns every method key in the order the builder assigned them.
func (t *SymbolTable) Keys() []string {
	return append([]string(nil), t.keys...)
}

// SortedKeys returns every method key in lexical order.
func (t *SymbolTable) SortedKeys() []string {
	keys := t.Keys()
	sort.Strings(keys)
	return keys
}

// ClassNames returns every class name in lexical order.
func (t *SymbolTable) ClassNames() []string {
	names := make([]string, 0, len(t.classes))
	for name := range t.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of methods in the table.
func (t *SymbolTable) Len() int { return len(t.methods) }

// Warnings returns the collisions recorded while the table was built.
func (t *SymbolTable) Warnings() []string {
	return append([]string(nil), t.warnings...)
}

// Builder folds per-file parse results into a SymbolTable. It is not safe
// for concurrent use: the fold must be serialized because collision
// renaming depends on insertion order.
type Builder struct {
	table   *SymbolTable
	qualify bool
	log     zerolog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithQualifiedClasses makes the builder key classes by package-qualified name.
func WithQualifiedClasses(qualify bool) BuilderOption {
	return func(b *Builder) { b.qualify = qualify }
}

// WithLogger sets the logger used for collision warnings.
func WithLogger(log zerolog.Logger) BuilderOption {
	return func(b *Builder) { b.log = log }
}

// NewBuilder creates an empty builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		table: newSymbolTable(),
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Add merges one class and its methods into the table. The records are
// copied, so callers may keep reusing the originals.
func (b *Builder) Add(class *ClassRecord) {
	c := *class
	if b.qualify {
		c.Name = class.QualifiedName()
	}
	c.Methods = make([]*MethodRecord, 0, len(class.Methods))

	if prev, ok := b.table.classes[c.Name]; ok {
		// The same declaration seen twice keeps its first record.
		if sameSpan(prev.FilePath, prev.StartLine, prev.EndLine, c.FilePath, c.StartLine, c.EndLine) {
			return
		}
		b.warn("class %s declared in %s and %s; keeping the latter", c.Name, prev.FilePath, c.FilePath)
	}

	for _, m := range class.Methods {
		rec := m.Clone()
		rec.ClassName = c.Name
		if b.addMethod(rec) {
			c.Methods = append(c.Methods, rec)
		}
	}
	b.table.classes[c.Name] = &c
}

// addMethod assigns a unique key to rec. It returns false when rec is an
// exact duplicate of a method already in the table.
func (b *Builder) addMethod(rec *MethodRecord) bool {
	base := rec.Key()
	key := base
	for n := 1; ; n++ {
		prev, taken := b.table.methods[key]
		if !taken {
			break
		}
		if sameSpan(prev.FilePath, prev.StartLine, prev.EndLine, rec.FilePath, rec.StartLine, rec.EndLine) {
			return false
		}
		key = fmt.Sprintf("%s_%d", base, n)
	}
	if key != base {
		b.warn("duplicate method key %s (%s:%d); stored as %s", base, rec.FilePath, rec.StartLine, key)
	}
	b.table.methods[key] = rec
	b.table.keys = append(b.table.keys, key)
	return true
}

func (b *Builder) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	b.table.warnings = append(b.table.warnings, msg)
	b.log.Warn().Msg(msg)
}

// Build returns the finished table. The builder must not be used afterwards.
func (b *Builder) Build() *SymbolTable {
	t := b.table
	b.table = nil
	return t
}

func sameSpan(fileA string, startA, endA int, fileB string, startB, endB int) bool {
	return fileA == fileB && startA == startB && endA == endB
}
