package core

// Membership the markets an account has entered as collateral.
// Markets keeps insertion order, the index gives O(1) lookup and removal.
type Membership struct {
	Account string   `json:"account"`
	Markets []string `json:"markets"`

	index map[string]int
}

func (m *Membership) positions() map[string]int {
	if m.index == nil {
		m.index = make(map[string]int, len(m.Markets))
		for i, id := range m.Markets {
			m.index[id] = i
		}
	}

	return m.index
}

// Has reports whether market is entered
func (m *Membership) Has(market string) bool {
	_, ok := m.positions()[market]
	return ok
}

// Add appends market, false when it was already there
func (m *Membership) Add(market string) bool {
	idx := m.positions()
	if _, ok := idx[market]; ok {
		return false
	}

	idx[market] = len(m.Markets)
	m.Markets = append(m.Markets, market)
	return true
}

// Remove swaps the last element into the removed slot
func (m *Membership) Remove(market string) bool {
	idx := m.positions()
	i, ok := idx[market]
	if !ok {
		return false
	}

	last := len(m.Markets) - 1
	if i != last {
		moved := m.Markets[last]
		m.Markets[i] = moved
		idx[moved] = i
	}

	m.Markets = m.Markets[:last]
	delete(idx, market)
	return true
}

func (m *Membership) Clone() *Membership {
	c := &Membership{
		Account: m.Account,
		Markets: make([]string, len(m.Markets)),
	}
	copy(c.Markets, m.Markets)
	return c
}
