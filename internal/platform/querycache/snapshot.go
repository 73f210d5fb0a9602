package querycache

import "sync"

// Patch es una escritura pendiente sobre una key.
type Patch struct {
	Key    Key
	Update Updater
}

type snapEntry struct {
	key   Key
	value any
	has   bool
}

// Snapshot guarda el valor de un set de keys para poder restaurarlo exacto.
// Restore corre a lo sumo una vez.
type Snapshot struct {
	entries []snapEntry
	once    sync.Once
}

func (s *Snapshot) Keys() []Key {
	out := make([]Key, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.key)
	}
	return out
}

// Value devuelve el valor capturado para key.
func (s *Snapshot) Value(key Key) (any, bool) {
	for _, e := range s.entries {
		if e.key == key {
			return e.value, e.has
		}
	}
	return nil, false
}

// Snapshot captura el valor actual de cada key (ausente incluido).
// Los valores se tratan como inmutables: los Updater siempre devuelven copias.
func (s *Store) Snapshot(keys ...Key) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &Snapshot{entries: make([]snapEntry, 0, len(keys))}
	for _, k := range keys {
		se := snapEntry{key: k}
		if e, ok := s.entries[k]; ok && e.has {
			se.value, se.has = e.value, true
		}
		snap.entries = append(snap.entries, se)
	}
	return snap
}

// Apply aplica los patches en orden.
func (s *Store) Apply(patches ...Patch) {
	for _, p := range patches {
		if p.Update == nil {
			continue
		}
		s.Write(p.Key, p.Update)
	}
}

// Restore deja cada key del snapshot exactamente como estaba al capturarlo
// (una key ausente vuelve a quedar ausente). Devuelve false si ya se había restaurado.
func (s *Store) Restore(snap *Snapshot) bool {
	if snap == nil {
		return false
	}
	restored := false
	snap.once.Do(func() {
		restored = true
		for _, se := range snap.entries {
			s.mu.Lock()
			e := s.entryLocked(se.key)
			e.value, e.has = se.value, se.has
			e.ver++
			e.updatedAt = s.now()
			s.mu.Unlock()

			s.notify(se.key, se.value)
		}
	})
	return restored
}
