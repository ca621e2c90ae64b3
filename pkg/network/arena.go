package network

// arena owns every bus ever created for a network. Ids are stable and never
// reused; merged buses resolve to their representative through find.
type arena struct {
	buses  []*Bus
	parent []int

	// voltageChanged runs after any bus voltage moves.
	voltageChanged func()
}

func newArena() *arena {
	return &arena{}
}

func (a *arena) add(b *Bus) int {
	id := len(a.buses)
	b.id = id
	b.arena = a
	a.buses = append(a.buses, b)
	a.parent = append(a.parent, id)
	return id
}

func (a *arena) find(id int) int {
	root := id
	for a.parent[root] != root {
		root = a.parent[root]
	}
	for a.parent[id] != root {
		next := a.parent[id]
		a.parent[id] = root
		id = next
	}
	return root
}

// union redirects merged (and everything already merged into it) to keep.
func (a *arena) union(keep, merged int) {
	keep, merged = a.find(keep), a.find(merged)
	if keep != merged {
		a.parent[merged] = keep
	}
}

func (a *arena) bus(id int) *Bus {
	return a.buses[a.find(id)]
}
