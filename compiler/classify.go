package compiler

import "unicode"

// IdentKind classifies an identifier by its spelling.
type IdentKind int

const (
	Variable IdentKind = iota // someVariable
	Class                     // SomeClass
	Constant                  // SOME_CONSTANT
)

var identKindNames = [...]string{
	Variable: "variable",
	Class:    "class",
	Constant: "constant",
}

func (k IdentKind) String() string {
	if int(k) < len(identKindNames) {
		return identKindNames[k]
	}
	return "unknown"
}

// ParseIdentKind is the inverse of IdentKind.String.
func ParseIdentKind(s string) (IdentKind, bool) {
	for k, name := range identKindNames {
		if name == s {
			return IdentKind(k), true
		}
	}
	return 0, false
}

// Classify maps an identifier spelling to its kind. The first letter
// decides between variable (lower case) and class (upper case); an
// upper-case name with no lower-case letters at all is a constant.
// Leading underscores and digits are ignored when finding the first
// letter. A name without letters is a variable.
func Classify(name string) IdentKind {
	first := rune(0)
	hasLower := false
	for _, r := range name {
		if !unicode.IsLetter(r) {
			continue
		}
		if first == 0 {
			first = r
		}
		if unicode.IsLower(r) {
			hasLower = true
		}
	}

	switch {
	case first == 0 || !unicode.IsUpper(first):
		return Variable
	case hasLower:
		return Class
	default:
		return Constant
	}
}
