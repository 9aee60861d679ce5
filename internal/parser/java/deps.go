package java

// builtinTypes are JDK and primitive type names never reported as class
// dependencies.
var builtinTypes = map[string]bool{
	"void": true, "boolean": true, "byte": true, "char": true, "short": true,
	"int": true, "long": true, "float": true, "double": true,
	"Object": true, "String": true, "Boolean": true, "Byte": true, "Character": true,
	"Short": true, "Integer": true, "Long": true, "Float": true, "Double": true,
	"Number": true, "Void": true, "BigDecimal": true, "BigInteger": true,
	"List": true, "ArrayList": true, "LinkedList": true, "Map": true, "HashMap": true,
	"LinkedHashMap": true, "TreeMap": true, "Set": true, "HashSet": true,
	"LinkedHashSet": true, "TreeSet": true, "Collection": true, "Iterable": true,
	"Optional": true, "Stream": true, "Iterator": true, "Entry": true,
	"Date": true, "LocalDate": true, "LocalDateTime": true, "Instant": true,
	"Duration": true, "UUID": true, "Exception": true, "RuntimeException": true,
	"Throwable": true, "Class": true, "Runnable": true, "Callable": true,
	"Function": true, "Supplier": true, "Consumer": true, "Predicate": true,
	"CompletableFuture": true, "StringBuilder": true, "CharSequence": true,
	"Comparable": true, "Serializable": true,
}

// depSet is an insertion-ordered set of dependency type names.
type depSet struct {
	self  string
	seen  map[string]bool
	names []string
}

func newDepSet(self string) *depSet {
	return &depSet{self: self, seen: make(map[string]bool)}
}

func (d *depSet) add(name string) {
	// Single letters are type parameters.
	if len(name) <= 1 || name == d.self || builtinTypes[name] || d.seen[name] {
		return
	}
	d.seen[name] = true
	d.names = append(d.names, name)
}

func (d *depSet) list() []string {
	return d.names
}
