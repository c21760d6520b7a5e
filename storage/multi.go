package storage

import (
	"errors"

	"github.com/ipfs/go-cid"
)

// MultiCAS reads through several archives in a fixed order.
//
// Put writes only to the first store. Get returns the first hit; a non-NotFound
// error from any store stops the search.
type MultiCAS struct {
	Stores []CAS
}

var _ CAS = MultiCAS{}

func (m MultiCAS) Put(data []byte) (cid.Cid, error) {
	if len(m.Stores) == 0 {
		return cid.Undef, errors.New("archive: MultiCAS has no stores")
	}
	return m.Stores[0].Put(data)
}

func (m MultiCAS) Get(id cid.Cid) ([]byte, error) {
	for _, s := range m.Stores {
		b, err := s.Get(id)
		if err == nil {
			return b, nil
		}
		if IsNotFound(err) {
			continue
		}
		return nil, err
	}
	return nil, ErrNotFound
}

func (m MultiCAS) Has(id cid.Cid) bool {
	for _, s := range m.Stores {
		if s.Has(id) {
			return true
		}
	}
	return false
}
