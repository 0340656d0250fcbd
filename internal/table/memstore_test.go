package table

import (
	"context"
	"encoding/json"
	"sync"

	"card-room/internal/game"
	"card-room/internal/store"
)

// memStorage is an in-memory Storage with the same version semantics as the
// Postgres store, so the optimistic pipeline can be exercised without a
// database. failSaves injects version conflicts into upcoming saves.
type memStorage struct {
	mu        sync.Mutex
	states    map[string][]byte
	versions  map[string]int64
	requests  map[string]store.ActionRequest
	holes     map[string]map[string][]game.Card
	hands     map[string]memHand
	transfers []memTransfer
	failSaves int
}

type memHand struct {
	tableID  string
	seed     int64
	pot      int64
	finished bool
}

type memTransfer struct {
	from, to  string
	amount    int64
	entryType string
}

func newMemStorage() *memStorage {
	return &memStorage{
		states:   map[string][]byte{},
		versions: map[string]int64{},
		requests: map[string]store.ActionRequest{},
		holes:    map[string]map[string][]game.Card{},
		hands:    map[string]memHand{},
	}
}

func reqKey(tableID, userID, requestID string) string {
	return tableID + "|" + userID + "|" + requestID
}

func holeKey(tableID, handID string) string {
	return tableID + "|" + handID
}

func (m *memStorage) GetState(ctx context.Context, tableID string) (*game.TableState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getStateLocked(tableID)
}

func (m *memStorage) getStateLocked(tableID string) (*game.TableState, error) {
	raw, ok := m.states[tableID]
	if !ok {
		return nil, store.ErrNotFound
	}
	var st game.TableState
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, err
	}
	st.EnsureMaps()
	st.Version = m.versions[tableID]
	return &st, nil
}

func (m *memStorage) saveStateLocked(st *game.TableState, expectedVersion int64) error {
	if m.failSaves > 0 {
		m.failSaves--
		return store.ErrVersionConflict
	}
	if m.versions[st.TableID] != expectedVersion {
		return store.ErrVersionConflict
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	m.versions[st.TableID] = expectedVersion + 1
	st.Version = expectedVersion + 1
	m.states[st.TableID] = raw
	return nil
}

func (m *memStorage) CreateState(ctx context.Context, st *game.TableState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	m.states[st.TableID] = raw
	m.versions[st.TableID] = 1
	st.Version = 1
	return nil
}

func (m *memStorage) GetRequest(ctx context.Context, tableID, userID, requestID string) (*store.ActionRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.requests[reqKey(tableID, userID, requestID)]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := rec
	return &cp, nil
}

func (m *memStorage) GetHoleCards(ctx context.Context, tableID, handID, userID string) ([]game.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byUser, ok := m.holes[holeKey(tableID, handID)]
	if !ok {
		return nil, store.ErrNotFound
	}
	cards, ok := byUser[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return append([]game.Card{}, cards...), nil
}

// InTx snapshots everything up front and restores on error, mirroring a
// rolled-back transaction.
func (m *memStorage) InTx(ctx context.Context, fn func(ops TxOps) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.snapshotLocked()
	if err := fn(&memTxOps{m: m}); err != nil {
		m.restoreLocked(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	states    map[string][]byte
	versions  map[string]int64
	requests  map[string]store.ActionRequest
	holes     map[string]map[string][]game.Card
	hands     map[string]memHand
	transfers int
}

func (m *memStorage) snapshotLocked() memSnapshot {
	snap := memSnapshot{
		states:    map[string][]byte{},
		versions:  map[string]int64{},
		requests:  map[string]store.ActionRequest{},
		holes:     map[string]map[string][]game.Card{},
		hands:     map[string]memHand{},
		transfers: len(m.transfers),
	}
	for k, v := range m.states {
		snap.states[k] = v
	}
	for k, v := range m.versions {
		snap.versions[k] = v
	}
	for k, v := range m.requests {
		snap.requests[k] = v
	}
	for k, byUser := range m.holes {
		cp := map[string][]game.Card{}
		for u, cards := range byUser {
			cp[u] = cards
		}
		snap.holes[k] = cp
	}
	for k, v := range m.hands {
		snap.hands[k] = v
	}
	return snap
}

func (m *memStorage) restoreLocked(snap memSnapshot) {
	m.states = snap.states
	m.versions = snap.versions
	m.requests = snap.requests
	m.holes = snap.holes
	m.hands = snap.hands
	m.transfers = m.transfers[:snap.transfers]
}

type memTxOps struct {
	m *memStorage
}

func (o *memTxOps) StateForUpdate(tableID string) (*game.TableState, error) {
	return o.m.getStateLocked(tableID)
}

func (o *memTxOps) SaveState(st *game.TableState, expectedVersion int64) error {
	return o.m.saveStateLocked(st, expectedVersion)
}

func (o *memTxOps) BeginRequest(tableID, userID, requestID, kind string) (*store.ActionRequest, bool, error) {
	key := reqKey(tableID, userID, requestID)
	if rec, ok := o.m.requests[key]; ok {
		cp := rec
		return &cp, false, nil
	}
	rec := store.ActionRequest{
		TableID:   tableID,
		UserID:    userID,
		RequestID: requestID,
		Kind:      kind,
		Status:    store.RequestPending,
	}
	o.m.requests[key] = rec
	cp := rec
	return &cp, true, nil
}

func (o *memTxOps) CompleteRequest(tableID, userID, requestID string, response any) error {
	key := reqKey(tableID, userID, requestID)
	rec, ok := o.m.requests[key]
	if !ok {
		return store.ErrNotFound
	}
	raw, err := json.Marshal(response)
	if err != nil {
		return err
	}
	rec.Status = store.RequestDone
	rec.Response = raw
	o.m.requests[key] = rec
	return nil
}

func (o *memTxOps) Transfer(from, to string, amount int64, entryType, refType, refID string) error {
	o.m.transfers = append(o.m.transfers, memTransfer{from: from, to: to, amount: amount, entryType: entryType})
	return nil
}

func (o *memTxOps) PutHoleCards(tableID, handID string, holes map[string][]game.Card) error {
	key := holeKey(tableID, handID)
	byUser, ok := o.m.holes[key]
	if !ok {
		byUser = map[string][]game.Card{}
		o.m.holes[key] = byUser
	}
	for u, cards := range holes {
		if _, exists := byUser[u]; !exists {
			byUser[u] = append([]game.Card{}, cards...)
		}
	}
	return nil
}

func (o *memTxOps) InsertHand(handID, tableID string, seed int64) error {
	if _, ok := o.m.hands[handID]; !ok {
		o.m.hands[handID] = memHand{tableID: tableID, seed: seed}
	}
	return nil
}

func (o *memTxOps) FinishHand(handID string, pot int64) error {
	h, ok := o.m.hands[handID]
	if !ok || h.finished {
		return nil
	}
	h.finished = true
	h.pot = pot
	o.m.hands[handID] = h
	return nil
}
