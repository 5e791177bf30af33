package dag

import (
	"sort"

	"swell/internal/project"
)

// NodeID is a dense 0-based index into ModuleIndex.
type NodeID uint32

type ModuleIndex struct {
	NameToID map[string]NodeID
	IDToName []string
	Modules  []project.ModuleID
}

// собрать имена модулей, sort.Strings, раздать ID по порядку
func BuildIndex(g *project.Graph) ModuleIndex {
	mods := g.Modules()
	names := make([]string, 0, len(mods))
	byName := make(map[string]project.ModuleID, len(mods))
	for _, m := range mods {
		names = append(names, m.Name())
		byName[m.Name()] = m.ID
	}
	sort.Strings(names)

	idx := ModuleIndex{
		NameToID: make(map[string]NodeID, len(names)),
		IDToName: names,
		Modules:  make([]project.ModuleID, len(names)),
	}
	for i, name := range names {
		idx.NameToID[name] = nodeID(i)
		idx.Modules[i] = byName[name]
	}
	return idx
}

// Display returns the crate-qualified name of a node.
func (idx ModuleIndex) Display(id NodeID) string {
	name := idx.IDToName[int(id)]
	if name == "" {
		return "crate"
	}
	return "crate::" + name
}
