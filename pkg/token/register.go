package token

import (
	"maps"
	"sync"
)

// registry holds the tokens dialects add at init time, such as the
// PostgreSQL cast operator. Dynamic IDs start after maxBuiltin.
var registry = struct {
	sync.RWMutex
	next   TokenType
	names  map[TokenType]string
	byName map[string]TokenType
}{
	next:   maxBuiltin,
	names:  make(map[TokenType]string),
	byName: make(map[string]TokenType),
}

// Register returns the token type for name, allocating a new one the first
// time name is seen. Registering the same name again returns the same
// type, so two dialects may share an extension token.
func Register(name string) TokenType {
	registry.Lock()
	defer registry.Unlock()

	if t, ok := registry.byName[name]; ok {
		return t
	}
	registry.next++
	t := registry.next
	registry.names[t] = name
	registry.byName[name] = t
	return t
}

func dynamicName(t TokenType) (string, bool) {
	registry.RLock()
	defer registry.RUnlock()
	name, ok := registry.names[t]
	return name, ok
}

// LookupDynamicKeyword returns the token type registered under name.
// It returns IDENT and false when there is none.
func LookupDynamicKeyword(name string) (TokenType, bool) {
	registry.RLock()
	defer registry.RUnlock()
	if t, ok := registry.byName[name]; ok {
		return t, true
	}
	return IDENT, false
}

// IsDynamic reports whether t was allocated by Register.
func IsDynamic(t TokenType) bool {
	return t > maxBuiltin
}

// RegisteredTokens returns a copy of the dynamic tokens.
func RegisteredTokens() map[TokenType]string {
	registry.RLock()
	defer registry.RUnlock()
	return maps.Clone(registry.names)
}
