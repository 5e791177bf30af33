package symbols

import (
	"swell/internal/ast"
	"swell/internal/project"
	"swell/internal/source"
)

// DeclKind classifies what a declaration introduces.
type DeclKind uint8

const (
	DeclInvalid DeclKind = iota
	DeclModule
	DeclFn
	DeclStruct
	DeclEnum
	DeclVariant
	DeclField
	DeclTrait
	DeclImpl
	DeclAbi
	DeclStorageField
	DeclConfigurable
	DeclConst
	DeclAssocType
)

var declKindNames = [...]string{
	DeclInvalid:      "invalid",
	DeclModule:       "module",
	DeclFn:           "function",
	DeclStruct:       "struct",
	DeclEnum:         "enum",
	DeclVariant:      "variant",
	DeclField:        "field",
	DeclTrait:        "trait",
	DeclImpl:         "impl",
	DeclAbi:          "abi",
	DeclStorageField: "storage field",
	DeclConfigurable: "configurable",
	DeclConst:        "constant",
	DeclAssocType:    "associated type",
}

func (k DeclKind) String() string {
	if int(k) < len(declKindNames) {
		return declKindNames[k]
	}
	return "decl"
}

// IsType reports kinds usable in type position.
func (k DeclKind) IsType() bool {
	return k == DeclStruct || k == DeclEnum || k == DeclAssocType
}

// IsValue reports kinds usable in value position.
func (k DeclKind) IsValue() bool {
	switch k {
	case DeclFn, DeclConst, DeclVariant, DeclConfigurable:
		return true
	}
	return false
}

// Decl is one named (or, for impls, anonymous) declaration. Members, fields
// and variants are nested decls pointing at their Parent.
type Decl struct {
	ID     DeclID
	Kind   DeclKind
	Name   string
	Module project.ModuleID
	// Item is the CST item that declares this decl; fields and variants carry
	// their parent's item and use Index.
	Item   ast.ItemID
	Index  int
	Span   source.Span
	Public bool
	Parent DeclID
	// Members lists nested decls in source order.
	Members []DeclID
	// Target is the module a DeclModule stands for.
	Target project.ModuleID
	// Supers of traits and ABIs, resolved during body resolution.
	Supers []DeclID
	// Local is set for `const` declared inside a function body.
	Local bool
}

// Decls is a 1-based arena of declarations.
type Decls struct {
	items []Decl
}

func newDecls() *Decls {
	return &Decls{items: make([]Decl, 1, 64)}
}

func (d *Decls) add(decl Decl) DeclID {
	id := declID(len(d.items))
	decl.ID = id
	d.items = append(d.items, decl)
	return id
}

// Get returns the decl or nil.
func (d *Decls) Get(id DeclID) *Decl {
	if !id.IsValid() || int(id) >= len(d.items) {
		return nil
	}
	return &d.items[id]
}

// Len returns the number of declarations.
func (d *Decls) Len() int { return len(d.items) - 1 }

// All returns every declaration in id order.
func (d *Decls) All() []Decl { return d.items[1:] }

// Member finds a nested decl by name.
func (d *Decls) Member(parent DeclID, name string) (DeclID, bool) {
	p := d.Get(parent)
	if p == nil {
		return NoDeclID, false
	}
	for _, m := range p.Members {
		if d.items[m].Name == name {
			return m, true
		}
	}
	return NoDeclID, false
}
