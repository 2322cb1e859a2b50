// Package markup defines the reserved vocabulary and the lexical rules of
// the object markup dialect shared by the loader, the saver and the
// instantiation service.
//
// Tags are classified by shape: an upper-case last segment names a type
// ("Button", "javafx.scene.control.Button"), a lower-case tag names a
// property ("children") and "Owner.name" names a static property
// ("GridPane.rowIndex"). Tags in the fx namespace are intrinsics.
package markup

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Namespace declarations required on every saved root element.
const (
	NamespaceFX      = "http://javafx.com/fxml/1"
	NamespaceDefault = "http://javafx.com/javafx"

	AttrXMLNS   = "xmlns"
	AttrXMLNSFX = "xmlns:fx"
)

// Reserved attributes.
const (
	AttrID         = "fx:id"
	AttrConstant   = "fx:constant"
	AttrValue      = "fx:value"
	AttrFactory    = "fx:factory"
	AttrController = "fx:controller"
	AttrSource     = "source"
	AttrType       = "type"
)

// Reserved tags.
const (
	TagInclude   = "fx:include"
	TagReference = "fx:reference"
	TagCopy      = "fx:copy"
	TagRoot      = "fx:root"
	TagDefine    = "fx:define"
	TagScript    = "fx:script"
)

// Header instruction targets.
const (
	InstructionImport   = "import"
	InstructionLanguage = "language"
)

// BuiltinPackage is always imported by saved documents.
const BuiltinPackage = "java.lang"

// NullLiteral is the attribute value denoting a null value.
const NullLiteral = "$null"

// Construct is the syntactic category of an element tag.
type Construct int

const (
	// ConstructObject is a type element such as "Button".
	ConstructObject Construct = iota
	// ConstructProperty is an instance property element such as "children".
	ConstructProperty
	// ConstructStaticProperty is an element such as "GridPane.rowIndex".
	ConstructStaticProperty
	// ConstructInclude, ConstructReference and ConstructCopy are intrinsics.
	ConstructInclude
	ConstructReference
	ConstructCopy
	// ConstructRoot is a root-typed instance ("fx:root").
	ConstructRoot
	// ConstructIgnored covers defines, scripts and comments.
	ConstructIgnored
	// ConstructInvalid is any other tag in the fx namespace.
	ConstructInvalid
)

// String returns a short name of the construct.
func (c Construct) String() string {
	switch c {
	case ConstructObject:
		return "object"
	case ConstructProperty:
		return "property"
	case ConstructStaticProperty:
		return "static-property"
	case ConstructInclude:
		return "include"
	case ConstructReference:
		return "reference"
	case ConstructCopy:
		return "copy"
	case ConstructRoot:
		return "root"
	case ConstructIgnored:
		return "ignored"
	default:
		return "invalid"
	}
}

// Classify returns the construct introduced by an element tag.
// commentTag is the tag used by the glue tree for comments.
func Classify(tag, commentTag string) Construct {
	switch tag {
	case TagInclude:
		return ConstructInclude
	case TagReference:
		return ConstructReference
	case TagCopy:
		return ConstructCopy
	case TagRoot:
		return ConstructRoot
	case TagDefine, TagScript, commentTag:
		return ConstructIgnored
	}
	if strings.HasPrefix(tag, "fx:") {
		return ConstructInvalid
	}
	if _, _, ok := SplitStatic(tag); ok {
		return ConstructStaticProperty
	}
	if startsLower(lastSegment(tag)) {
		return ConstructProperty
	}
	return ConstructObject
}

// IsReservedAttr reports whether an attribute is interpreted by the model
// rather than being a text property.
func IsReservedAttr(name string) bool {
	return name == AttrXMLNS || strings.HasPrefix(name, "xmlns:") || strings.HasPrefix(name, "fx:")
}

// SplitStatic splits a static property name "Owner.name" into its owner
// type and property name.
func SplitStatic(name string) (owner, prop string, ok bool) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return "", "", false
	}
	owner, prop = name[:i], name[i+1:]
	if !startsUpper(lastSegment(owner)) || !startsLower(prop) {
		return "", "", false
	}
	return owner, prop, true
}

// IDExpression reports whether a text value refers to an object by id
// ("$name") and returns the id. "$null", escaped dollars ("\$") and binding
// expressions ("${...}") are not id expressions.
func IDExpression(value string) (string, bool) {
	if len(value) < 2 || value[0] != '$' || value == NullLiteral {
		return "", false
	}
	id := value[1:]
	if !IsIdentifier(id) {
		return "", false
	}
	return id, true
}

// MakeIDExpression returns the text value referring to id.
func MakeIDExpression(id string) string { return "$" + id }

// IsIdentifier reports whether s is a valid id: a letter or underscore
// followed by letters, digits or underscores.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

// PackageOf returns the package portion of a fully-qualified type name.
// Nested type segments (upper-case) are stripped as well, so
// "a.b.Outer.Inner" yields "a.b".
func PackageOf(fqn string) string {
	parts := strings.Split(fqn, ".")
	for i, p := range parts {
		if startsUpper(p) {
			return strings.Join(parts[:i], ".")
		}
	}
	if i := strings.LastIndexByte(fqn, '.'); i >= 0 {
		return fqn[:i]
	}
	return ""
}

// SimpleName returns the last segment of a type name.
func SimpleName(fqn string) string { return lastSegment(fqn) }

func lastSegment(s string) string {
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}
	return s
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsUpper(r)
}

func startsLower(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsLower(r)
}
