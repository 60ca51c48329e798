package replacement

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// VictimFinder adapts an Engine to Akita's cache directory, so the
// engine's policy drives victim selection inside Akita-based cache
// models. The host records the access driving the next fill with
// SetAccess before calling the directory's FindVictim.
type VictimFinder struct {
	engine *Engine

	pc     uint64
	addr   uint64
	access AccessType
}

var _ akitacache.VictimFinder = (*VictimFinder)(nil)

// NewVictimFinder returns a victim finder backed by the engine.
func NewVictimFinder(engine *Engine) *VictimFinder {
	return &VictimFinder{engine: engine}
}

// SetAccess records the access on whose behalf the next victim is
// selected.
func (f *VictimFinder) SetAccess(pc, addr uint64, access AccessType) {
	f.pc = pc
	f.addr = addr
	f.access = access
}

// FindVictim implements akita's VictimFinder. Empty ways are used first,
// matching Akita's LRU victim finder; otherwise the engine picks the
// victim way.
func (f *VictimFinder) FindVictim(set *akitacache.Set) *akitacache.Block {
	for _, block := range set.Blocks {
		if !block.IsValid && !block.IsLocked {
			return block
		}
	}

	if len(set.Blocks) == 0 {
		return nil
	}

	setID := uint32(set.Blocks[0].SetID)
	way := f.engine.Victim(setID, f.pc, f.addr, f.access)
	for _, block := range set.Blocks {
		if uint32(block.WayID) == way && !block.IsLocked {
			return block
		}
	}

	// The engine's pick is locked; fall back to any unlocked way.
	for _, block := range set.Blocks {
		if !block.IsLocked {
			return block
		}
	}
	return set.Blocks[0]
}
