package symbols

// DeclID indexes Table.Decls; 0 is reserved.
type DeclID uint32

// LocalID indexes Resolution.Locals of one module; 0 is reserved.
type LocalID uint32

const (
	NoDeclID  DeclID  = 0
	NoLocalID LocalID = 0
)

func (id DeclID) IsValid() bool  { return id != NoDeclID }
func (id LocalID) IsValid() bool { return id != NoLocalID }
