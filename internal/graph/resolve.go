package graph

import (
	"strings"

	"github.com/rs/zerolog"
)

// Strategy is one step of call-token resolution.
type Strategy int

const (
	// SameClass looks the token up as a member of the calling class.
	SameClass Strategy = iota + 1
	// ByMemberName looks a qualified token's member up on every class,
	// in class-name order.
	ByMemberName
	// BySuffix takes the first key, in table order, whose method name
	// equals the token's member name.
	BySuffix
)

// String returns the name of the strategy.
func (s Strategy) String() string {
	switch s {
	case SameClass:
		return "SameClass"
	case ByMemberName:
		return "ByMemberName"
	case BySuffix:
		return "BySuffix"
	default:
		return "Unknown"
	}
}

// DefaultStrategies is the resolution order used by NewResolver.
var DefaultStrategies = []Strategy{SameClass, ByMemberName, BySuffix}

// Resolver maps raw call tokens to symbol keys. It never has type
// information, so it returns some plausible target rather than the
// provably right one.
type Resolver struct {
	table       *SymbolTable
	strategies  []Strategy
	classOrder  []string
	firstByName map[string]string
	log         zerolog.Logger
}

// NewResolver prepares a resolver over t. A nil strategies slice selects
// DefaultStrategies.
func NewResolver(t *SymbolTable, strategies []Strategy, log zerolog.Logger) *Resolver {
	if strategies == nil {
		strategies = DefaultStrategies
	}
	r := &Resolver{
		table:       t,
		strategies:  strategies,
		classOrder:  t.ClassNames(),
		firstByName: make(map[string]string, len(t.keys)),
		log:         log,
	}
	for _, key := range t.keys {
		name := t.methods[key].Name
		if _, ok := r.firstByName[name]; !ok {
			r.firstByName[name] = key
		}
	}
	return r
}

// Explain resolves a single token for a method of callerClass and reports
// which strategy produced the match.
func (r *Resolver) Explain(callerClass, token string) (string, Strategy, bool) {
	for _, s := range r.strategies {
		if key, ok := r.apply(s, callerClass, token); ok {
			return key, s, true
		}
	}
	return "", 0, false
}

func (r *Resolver) apply(s Strategy, callerClass, token string) (string, bool) {
	switch s {
	case SameClass:
		key := Key(callerClass, token)
		if _, ok := r.table.methods[key]; ok {
			return key, true
		}
	case ByMemberName:
		if !strings.Contains(token, ".") {
			return "", false
		}
		member := MethodName(token)
		for _, class := range r.classOrder {
			key := Key(class, member)
			if _, ok := r.table.methods[key]; ok {
				return key, true
			}
		}
	case BySuffix:
		key, ok := r.firstByName[MethodName(token)]
		return key, ok
	}
	return "", false
}

// Resolve returns a copy of the table in which every method's raw call
// tokens are replaced by resolved keys. Unresolvable tokens are dropped.
func (r *Resolver) Resolve() *SymbolTable {
	src := r.table
	out := &SymbolTable{
		methods:  make(map[string]*MethodRecord, len(src.methods)),
		classes:  make(map[string]*ClassRecord, len(src.classes)),
		keys:     append([]string(nil), src.keys...),
		warnings: append([]string(nil), src.warnings...),
	}

	clones := make(map[*MethodRecord]*MethodRecord, len(src.methods))
	for _, key := range src.keys {
		m := src.methods[key]
		rec := m.Clone()
		rec.Calls = r.resolveCalls(m)
		out.methods[key] = rec
		clones[m] = rec
	}

	for name, c := range src.classes {
		cc := *c
		cc.Methods = make([]*MethodRecord, 0, len(c.Methods))
		for _, m := range c.Methods {
			if rec, ok := clones[m]; ok {
				cc.Methods = append(cc.Methods, rec)
			}
		}
		out.classes[name] = &cc
	}
	return out
}

func (r *Resolver) resolveCalls(m *MethodRecord) []string {
	resolved := make([]string, 0, len(m.Calls))
	seen := make(map[string]bool, len(m.Calls))
	for _, token := range m.Calls {
		key, s, ok := r.Explain(m.ClassName, token)
		if !ok {
			r.log.Debug().Str("caller", m.Key()).Str("call", token).Msg("unresolved call dropped")
			continue
		}
		r.log.Debug().Str("caller", m.Key()).Str("call", token).Str("target", key).Stringer("strategy", s).Msg("call resolved")
		if seen[key] {
			continue
		}
		seen[key] = true
		resolved = append(resolved, key)
	}
	return resolved
}

// Resolve resolves every call token in t with the default strategies.
func Resolve(t *SymbolTable, log zerolog.Logger) *SymbolTable {
	return NewResolver(t, nil, log).Resolve()
}
