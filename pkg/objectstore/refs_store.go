package objectstore

import "github.com/sleepymurph/dmv/pkg/objectkey"

// Refs returns the full ref name to key mapping.
func (s *Store) Refs() map[string]objectkey.Key { return s.refs.All() }

// RefsFor returns every ref name pointing at hash.
func (s *Store) RefsFor(hash objectkey.Key) []string { return s.refs.RefsFor(hash) }

// UpdateRef points name at hash and flushes the ref map.
func (s *Store) UpdateRef(name string, hash objectkey.Key) error {
	return s.refs.Update(name, hash)
}

// TryFindRef looks up name in the ref map without resolving short hashes.
func (s *Store) TryFindRef(name string) (objectkey.Key, bool) {
	return s.refs.Get(name)
}
