package testserver

import (
	"fmt"
	"maps"
	"strconv"
	"sync"

	"github.com/netforge-io/netforge/pkg/types"
)

// Store is the in-memory object store backing the server: per-endpoint record
// slices in insertion order, with auto-incrementing ids. All access goes
// through the mutex; records are cloned on the way in and out so callers can
// never alias store state.
type Store struct {
	mu     sync.RWMutex
	nextID map[string]int
	data   map[string][]types.Record
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		nextID: make(map[string]int),
		data:   make(map[string][]types.Record),
	}
}

// objectPath is the url field value stored on records.
func objectPath(endpoint string, id int) string {
	return "/api/" + endpoint + "/" + strconv.Itoa(id) + "/"
}

// List returns all records of an endpoint in insertion order.
func (s *Store) List(endpoint string) types.RecordSet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make(types.RecordSet, 0, len(s.data[endpoint]))
	for _, rec := range s.data[endpoint] {
		records = append(records, maps.Clone(rec))
	}
	return records
}

// Get returns the record with the given id, or false when absent.
func (s *Store) Get(endpoint string, id int) (types.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(endpoint, id); i >= 0 {
		return maps.Clone(s.data[endpoint][i]), true
	}
	return nil, false
}

// Create inserts a record, assigning the next free id and the url field.
// Returns the stored record.
func (s *Store) Create(endpoint string, rec types.Record) types.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	return maps.Clone(s.insert(endpoint, rec))
}

// Update merges fields into the record with the given id.
// Returns the updated record, or false when the id is absent.
func (s *Store) Update(endpoint string, id int, fields types.Record) (types.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(endpoint, id)
	if i < 0 {
		return nil, false
	}
	s.merge(s.data[endpoint][i], fields)
	return maps.Clone(s.data[endpoint][i]), true
}

// Delete removes the record with the given id.
// Returns false when the id is absent.
func (s *Store) Delete(endpoint string, id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(endpoint, id)
	if i < 0 {
		return false
	}
	s.data[endpoint] = append(s.data[endpoint][:i], s.data[endpoint][i+1:]...)
	return true
}

// BulkCreate inserts a sequence of records as one batch and returns the
// stored records in input order.
func (s *Store) BulkCreate(endpoint string, recs types.RecordSet) types.RecordSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := make(types.RecordSet, 0, len(recs))
	for _, rec := range recs {
		created = append(created, maps.Clone(s.insert(endpoint, rec)))
	}
	return created
}

// BulkUpdate merges a sequence of id-bearing records as one batch. The whole
// batch is verified before any record is touched, so a missing id leaves the
// store unchanged.
func (s *Store) BulkUpdate(endpoint string, recs types.RecordSet) (types.RecordSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	indexes := make([]int, 0, len(recs))
	for _, rec := range recs {
		id, ok := rec.ID()
		if !ok {
			return nil, fmt.Errorf("id is required for bulk update")
		}
		i := s.indexOf(endpoint, id)
		if i < 0 {
			return nil, fmt.Errorf("object with id %d does not exist", id)
		}
		indexes = append(indexes, i)
	}

	updated := make(types.RecordSet, 0, len(recs))
	for n, rec := range recs {
		s.merge(s.data[endpoint][indexes[n]], rec)
		updated = append(updated, maps.Clone(s.data[endpoint][indexes[n]]))
	}
	return updated, nil
}

// BulkDelete removes the records with the given ids as one batch. The whole
// batch is verified before any record is removed.
func (s *Store) BulkDelete(endpoint string, ids []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if s.indexOf(endpoint, id) < 0 {
			return fmt.Errorf("object with id %d does not exist", id)
		}
	}
	for _, id := range ids {
		i := s.indexOf(endpoint, id)
		s.data[endpoint] = append(s.data[endpoint][:i], s.data[endpoint][i+1:]...)
	}
	return nil
}

// Seed inserts records at startup. A record carrying its own id keeps it, and
// the endpoint's id counter advances past it.
func (s *Store) Seed(endpoint string, recs ...types.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range recs {
		s.insert(endpoint, rec)
	}
}

// insert stores a clone of rec under the endpoint. Callers must hold the lock.
func (s *Store) insert(endpoint string, rec types.Record) types.Record {
	stored := maps.Clone(rec)
	if stored == nil {
		stored = types.Record{}
	}

	id, ok := stored.ID()
	if !ok {
		id = s.nextID[endpoint] + 1
	}
	if id > s.nextID[endpoint] {
		s.nextID[endpoint] = id
	}
	stored["id"] = id
	stored["url"] = objectPath(endpoint, id)

	s.data[endpoint] = append(s.data[endpoint], stored)
	return stored
}

// indexOf returns the position of id in an endpoint's records, or -1.
// Callers must hold the lock.
func (s *Store) indexOf(endpoint string, id int) int {
	for i, rec := range s.data[endpoint] {
		if recID, ok := rec.ID(); ok && recID == id {
			return i
		}
	}
	return -1
}

// merge copies fields into dst. Callers must hold the lock.
func (s *Store) merge(dst types.Record, fields types.Record) {
	for k, v := range fields {
		if k == "id" || k == "url" {
			continue
		}
		dst[k] = v
	}
}
