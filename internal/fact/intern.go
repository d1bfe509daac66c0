package fact

// Interner is a bidirectional string <-> SymbolID table. Symbol ids start at
// 1 and are handed out in first-seen order, so the mapping is bijective and
// stable for the lifetime of a session. Consumers that receive a SymbolID are
// contractually expected to dereference it through Lookup (or the persisted
// symbol table).
type Interner struct {
	forward  map[string]SymbolID
	backward []string // index i holds the string for SymbolID(i+1)
}

func NewInterner() *Interner {
	return &Interner{forward: make(map[string]SymbolID)}
}

// Intern returns the symbol for s, allocating one if s has not been seen.
func (in *Interner) Intern(s string) SymbolID {
	if id, ok := in.forward[s]; ok {
		return id
	}
	id := SymbolID(len(in.backward) + 1)
	in.forward[s] = id
	in.backward = append(in.backward, s)
	return id
}

// Symbol returns the symbol for s without allocating.
func (in *Interner) Symbol(s string) (SymbolID, bool) {
	id, ok := in.forward[s]
	return id, ok
}

// Lookup resolves a symbol back to its string.
func (in *Interner) Lookup(id SymbolID) (string, bool) {
	if id < 1 || int(id) > len(in.backward) {
		return "", false
	}
	return in.backward[id-1], true
}

// Len reports the number of interned strings.
func (in *Interner) Len() int { return len(in.backward) }

// Each calls fn for every (id, string) pair in ascending id order.
func (in *Interner) Each(fn func(SymbolID, string)) {
	for i, s := range in.backward {
		fn(SymbolID(i+1), s)
	}
}
