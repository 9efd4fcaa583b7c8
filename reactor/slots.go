// File: reactor/slots.go
// Author: momentics <momentics@gmail.com>
//
// Generation-tagged slot table. The kernel payload of a registration is a
// token (index, generation); a token whose generation no longer matches its
// slot resolves to nil, so events queued for a removed registration are
// never delivered to whatever reuses the index.

package reactor

type token uint64

func makeToken(index, gen uint32) token {
	return token(uint64(gen)<<32 | uint64(index))
}

func (t token) index() uint32 { return uint32(t) }
func (t token) gen() uint32   { return uint32(t >> 32) }

type slot struct {
	reg *Registration
	gen uint32
}

type slotTable struct {
	slots []slot
	free  []uint32
	live  int
}

func (st *slotTable) alloc(reg *Registration) token {
	var idx uint32
	if n := len(st.free); n > 0 {
		idx = st.free[n-1]
		st.free = st.free[:n-1]
	} else {
		idx = uint32(len(st.slots))
		st.slots = append(st.slots, slot{})
	}
	st.slots[idx].reg = reg
	st.live++
	return makeToken(idx, st.slots[idx].gen)
}

// release empties the slot of t and retires its generation.
func (st *slotTable) release(t token) {
	idx := t.index()
	if int(idx) >= len(st.slots) || st.slots[idx].gen != t.gen() || st.slots[idx].reg == nil {
		return
	}
	st.slots[idx].reg = nil
	st.slots[idx].gen++
	st.free = append(st.free, idx)
	st.live--
}

func (st *slotTable) resolve(t token) *Registration {
	idx := t.index()
	if int(idx) >= len(st.slots) {
		return nil
	}
	s := st.slots[idx]
	if s.gen != t.gen() {
		return nil
	}
	return s.reg
}
