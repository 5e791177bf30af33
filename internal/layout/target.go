package layout

// Target describes the machine the layout is computed for.
type Target struct {
	Name string
	// WordSize is the register width in bytes; references take one word.
	WordSize int
}

// Default is the 64-bit register VM every program is lowered for.
func Default() Target {
	return Target{Name: "swell-vm", WordSize: 8}
}

func (t Target) word() int {
	if t.WordSize <= 0 {
		return 8
	}
	return t.WordSize
}
