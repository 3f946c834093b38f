package ast

// Entity is a named thing a declaration introduces. A reference to an entity
// and its declaration are the same object.
type Entity interface {
	// EntityID returns the arena index, or -1 for standard-library entities.
	EntityID() int
	EntityName() string
}

// Variable is a declared variable, parameter or loop iterator.
type Variable struct {
	ID      int
	Name    string
	Mutable bool
	Type    Type
}

func (v *Variable) EntityID() int      { return v.ID }
func (v *Variable) EntityName() string { return v.Name }
func (v *Variable) node()              {}
func (v *Variable) expr()              {}

// Function is a declared or built-in function. Type is nil until the
// parameters have been analyzed.
type Function struct {
	ID   int
	Name string
	Type *FunctionType
}

func (f *Function) EntityID() int      { return f.ID }
func (f *Function) EntityName() string { return f.Name }
func (f *Function) node()              {}
func (f *Function) expr()              {}

// Module groups standard-library entities that become visible after an
// import statement.
type Module struct {
	Name    string
	Members []Entity
}

func (m *Module) EntityID() int      { return -1 }
func (m *Module) EntityName() string { return m.Name }

// Arena owns every entity declared during one compilation. The index of an
// entity in the arena is its ID.
type Arena struct {
	entities []Entity
}

// NewArena returns an empty arena.
func NewArena() *Arena { return &Arena{} }

// Len returns the number of entities allocated so far.
func (a *Arena) Len() int { return len(a.entities) }

// At returns the entity with the given ID.
func (a *Arena) At(id int) Entity { return a.entities[id] }

// Entities returns all entities in allocation order.
func (a *Arena) Entities() []Entity { return a.entities }

func (a *Arena) next(e Entity) int {
	a.entities = append(a.entities, e)
	return len(a.entities) - 1
}

// Variable allocates a variable.
func (a *Arena) Variable(name string, mutable bool, t Type) *Variable {
	v := &Variable{Name: name, Mutable: mutable, Type: t}
	v.ID = a.next(v)
	return v
}

// Function allocates a function whose type is filled in later.
func (a *Arena) Function(name string) *Function {
	f := &Function{Name: name}
	f.ID = a.next(f)
	return f
}

// Struct allocates a struct type with no fields yet.
func (a *Arena) Struct(name string) *StructType {
	s := &StructType{Name: name}
	s.ID = a.next(s)
	return s
}

// Field allocates a struct field.
func (a *Arena) Field(name string, t Type) *Field {
	f := &Field{Name: name, Type: t}
	f.ID = a.next(f)
	return f
}
