package hotkeys

import (
	"fmt"
	"sort"
	"strings"

	"golang.design/x/hotkey"
)

// Binding is a parsed key combination. Modifier and key names are resolved
// through per-platform maps since the underlying codes differ between X11,
// Windows and macOS.
type Binding struct {
	Mods []hotkey.Modifier
	Key  hotkey.Key

	keyName  string
	modNames []string
}

// ParseBinding parses a "+"-separated combination such as "ctrl+alt+f7".
// The last token is the key; everything before it must be a modifier. Names
// are case-insensitive.
func ParseBinding(spec string) (Binding, error) {
	tokens := strings.Split(spec, "+")
	var names []string
	for _, tok := range tokens {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok != "" {
			names = append(names, tok)
		}
	}
	if len(names) == 0 {
		return Binding{}, fmt.Errorf("empty hotkey binding")
	}

	keyName := names[len(names)-1]
	key, ok := keyMap[keyName]
	if !ok {
		return Binding{}, fmt.Errorf("unknown key %q in binding %q", keyName, spec)
	}

	b := Binding{Key: key, keyName: keyName}
	seen := map[string]bool{}
	for _, name := range names[:len(names)-1] {
		name = canonicalModName(name)
		mod, ok := modifierMap[name]
		if !ok {
			return Binding{}, fmt.Errorf("unknown modifier %q in binding %q", name, spec)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		b.Mods = append(b.Mods, mod)
		b.modNames = append(b.modNames, name)
	}
	sort.Strings(b.modNames)
	return b, nil
}

// Display renders the binding back in normalized form, e.g. "Ctrl+Alt+F7".
func (b Binding) Display() string {
	parts := make([]string, 0, len(b.modNames)+1)
	for _, name := range b.modNames {
		parts = append(parts, titleToken(name))
	}
	parts = append(parts, titleToken(b.keyName))
	return strings.Join(parts, "+")
}

func canonicalModName(name string) string {
	switch name {
	case "control":
		return "ctrl"
	case "option":
		return "alt"
	case "win", "super", "meta":
		return "cmd"
	}
	return name
}

func titleToken(tok string) string {
	if tok == "" {
		return tok
	}
	return strings.ToUpper(tok[:1]) + tok[1:]
}
