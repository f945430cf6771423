package kernel

import "fmt"

type mapping struct {
	name   string
	region StackRegion
}

// regionMap records every range the kernel has handed out, so that no
// two stacks (or a stack and the table / MMIO window) are ever mapped
// over each other.
type regionMap struct {
	maps []mapping
}

func newRegionMap() *regionMap {
	m := &regionMap{}
	m.maps = append(m.maps,
		mapping{"task table", StackRegion{TASK_PCS, TABLE_END}},
		mapping{"mmio", StackRegion{MMIOBASE, MMIOEND}},
	)
	return m
}

func (m *regionMap) reserve(r StackRegion, name string) error {
	if err := checkRegion(r); err != nil {
		return err
	}
	for _, old := range m.maps {
		if old.region.Overlaps(r) {
			return fmt.Errorf("%s %v remaps %s %v: %w", name, r, old.name, old.region, ErrRegionOverlap)
		}
	}
	m.maps = append(m.maps, mapping{name, r})
	return nil
}

// release drops every reservation made after the first n.
func (m *regionMap) release(n int) {
	m.maps = m.maps[:n]
}

// Regions lists the reserved stack regions in reservation order.
func (k *Kernel) Regions() []StackRegion {
	var out []StackRegion
	for _, m := range k.regions.maps[2:] {
		out = append(out, m.region)
	}
	return out
}
