package hir

import (
	"slices"

	"swell/internal/ast"
	"swell/internal/mono"
	"swell/internal/source"
	"swell/internal/symbols"
	"swell/internal/types"
)

// Program is the typed view of a whole package.
type Program struct {
	Kind    ast.ProgramKind
	Types   *types.Interner
	Symbols *symbols.Table

	Funcs         []*Func
	Traits        []*Trait
	Impls         []*Impl
	Abis          []*Abi
	Consts        []*Const
	Storage       []*StorageField
	Configurables []*Configurable
	// Entries lists entry points in declaration order.
	Entries []symbols.DeclID
	// Instances records generic instantiations requested by call sites.
	Instances *mono.Instances

	funcs  map[symbols.DeclID]*Func
	traits map[symbols.DeclID]*Trait
	impls  map[symbols.DeclID]*Impl
	abis   map[symbols.DeclID]*Abi
	consts map[symbols.DeclID]*Const
	slots  map[symbols.DeclID]*StorageField
	byImpl map[symbols.DeclID][]*Impl // trait -> impls
}

// NewProgram creates an empty program over a type interner and symbols.
func NewProgram(kind ast.ProgramKind, in *types.Interner, table *symbols.Table) *Program {
	return &Program{
		Kind:      kind,
		Types:     in,
		Symbols:   table,
		Instances: mono.NewInstances(),
		funcs:     make(map[symbols.DeclID]*Func),
		traits:    make(map[symbols.DeclID]*Trait),
		impls:     make(map[symbols.DeclID]*Impl),
		abis:      make(map[symbols.DeclID]*Abi),
		consts:    make(map[symbols.DeclID]*Const),
		slots:     make(map[symbols.DeclID]*StorageField),
		byImpl:    make(map[symbols.DeclID][]*Impl),
	}
}

// Trait is a typed trait declaration.
type Trait struct {
	Decl     symbols.DeclID
	Name     string
	Self     types.TypeID
	Generics []types.TypeID
	Supers   []symbols.DeclID
	// Methods maps names to member decls; the Func of a method with a
	// default body has a non-nil Body.
	Methods map[string]symbols.DeclID
	Consts  map[string]*Const
	Types   map[string]*AssocType
	Order   []string
}

// AssocType is a trait associated type with an optional default.
type AssocType struct {
	Decl    symbols.DeclID
	Name    string
	Default types.TypeID
	Span    source.Span
}

// Impl is an inherent or trait impl block. Self and TraitArgs may mention
// Generics.
type Impl struct {
	Decl      symbols.DeclID
	Trait     symbols.DeclID // NoDeclID для inherent impl
	TraitArgs []types.TypeID
	Self      types.TypeID
	Generics  []types.TypeID
	Bounds    []Bound
	Methods   map[string]symbols.DeclID
	Consts    map[string]*Const
	Types     map[string]types.TypeID
	Span      source.Span
}

// Abi is a typed ABI declaration. Methods lists its own declarations; super
// ABIs are reached through symbols.Table.Capabilities.
type Abi struct {
	Decl    symbols.DeclID
	Name    string
	Supers  []symbols.DeclID
	Methods []AbiMethod
}

// AbiMethod is one externally callable signature.
type AbiMethod struct {
	Decl     symbols.DeclID
	Name     string
	Params   []types.TypeID
	Ret      types.TypeID
	Declared Effects
	Payable  bool
	Span     source.Span
}

// Const is a module, local, associated or trait default constant.
type Const struct {
	Decl  symbols.DeclID
	Name  string
	Type  types.TypeID
	Init  *Expr
	Value *Value
	Span  source.Span
}

// StorageField is a typed storage slot.
type StorageField struct {
	Decl  symbols.DeclID
	Name  string
	Type  types.TypeID
	Init  *Expr
	Value *Value
	Span  source.Span
}

// Configurable is a typed configurable constant.
type Configurable struct {
	Decl  symbols.DeclID
	Name  string
	Type  types.TypeID
	Init  *Expr
	Value *Value
	Span  source.Span
}

// AddFunc registers a function.
func (p *Program) AddFunc(f *Func) {
	p.Funcs = append(p.Funcs, f)
	p.funcs[f.Decl] = f
}

// AddTrait registers a trait.
func (p *Program) AddTrait(t *Trait) {
	p.Traits = append(p.Traits, t)
	p.traits[t.Decl] = t
}

// AddImpl registers an impl block.
func (p *Program) AddImpl(im *Impl) {
	p.Impls = append(p.Impls, im)
	p.impls[im.Decl] = im
	if im.Trait.IsValid() {
		p.byImpl[im.Trait] = append(p.byImpl[im.Trait], im)
	}
}

// AddAbi registers an ABI.
func (p *Program) AddAbi(a *Abi) {
	p.Abis = append(p.Abis, a)
	p.abis[a.Decl] = a
}

// AddConst registers a constant.
func (p *Program) AddConst(c *Const) {
	p.Consts = append(p.Consts, c)
	p.consts[c.Decl] = c
}

// AddStorage registers a storage slot.
func (p *Program) AddStorage(s *StorageField) {
	p.Storage = append(p.Storage, s)
	p.slots[s.Decl] = s
}

// Func returns the function of decl.
func (p *Program) Func(decl symbols.DeclID) *Func { return p.funcs[decl] }

// Trait returns the trait of decl.
func (p *Program) Trait(decl symbols.DeclID) *Trait { return p.traits[decl] }

// Impl returns the impl of decl.
func (p *Program) Impl(decl symbols.DeclID) *Impl { return p.impls[decl] }

// Abi returns the ABI of decl.
func (p *Program) Abi(decl symbols.DeclID) *Abi { return p.abis[decl] }

// Const returns the constant of decl.
func (p *Program) Const(decl symbols.DeclID) *Const { return p.consts[decl] }

// StorageField returns the storage slot of decl.
func (p *Program) StorageField(decl symbols.DeclID) *StorageField { return p.slots[decl] }

// ImplsOf lists impls of a trait or ABI in declaration order.
func (p *Program) ImplsOf(trait symbols.DeclID) []*Impl { return p.byImpl[trait] }

// SortEntries orders entry points by declaration.
func (p *Program) SortEntries() {
	slices.Sort(p.Entries)
	p.Entries = slices.Compact(p.Entries)
}
