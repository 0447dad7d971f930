// Package cache is the single source of truth for derived records and their
// attached sub-series. All mutation goes through typed transitions applied
// by a single internal switch; reads are synchronous snapshots of current
// state with no partial or torn reads.
package cache

import (
	"fmt"
	"sync"

	"dexboard/internal/domain"
)

// PairEntry holds everything cached for one pair. Sub-fields are written by
// independent transitions; updating one never erases another.
type PairEntry struct {
	Record *domain.PairRecord
	Chart  []domain.DailyPoint
	Hourly map[domain.Window][2][]domain.CandlePoint
	Txns   []domain.Transaction
}

// TokenEntry holds everything cached for one token.
type TokenEntry struct {
	Record *domain.TokenRecord
	Chart  []domain.DailyPoint
}

// Store is the cache. The zero value is not usable; call New.
type Store struct {
	mu sync.RWMutex

	pairs  map[string]*PairEntry
	tokens map[string]*TokenEntry

	// topPairs and topTokens are separately-scoped partitions per network,
	// replaced wholesale and optionally preserved across resets.
	topPairs  map[domain.Network]map[string]domain.PairRecord
	topTokens map[domain.Network]map[string]domain.TokenRecord

	campaigns map[domain.CampaignStatus][]domain.CampaignRecord
}

// New creates an empty store.
func New() *Store {
	s := &Store{}
	s.init(true)
	return s
}

// init resets all partitions; the top-set partitions only when resetTopSets.
// Callers hold the write lock except during construction.
func (s *Store) init(resetTopSets bool) {
	s.pairs = make(map[string]*PairEntry)
	s.tokens = make(map[string]*TokenEntry)
	s.campaigns = make(map[domain.CampaignStatus][]domain.CampaignRecord)
	if resetTopSets || s.topPairs == nil {
		s.topPairs = make(map[domain.Network]map[string]domain.PairRecord)
		s.topTokens = make(map[domain.Network]map[string]domain.TokenRecord)
	}
}

// mutation is a tagged transition applied to the store. Each concrete
// variant carries its own payload.
type mutation interface {
	isMutation()
}

type putPairRecord struct {
	id  string
	rec domain.PairRecord
}

type putPairChart struct {
	id     string
	series []domain.DailyPoint
}

type putPairHourly struct {
	id     string
	window domain.Window
	series [2][]domain.CandlePoint
}

type putPairTxns struct {
	id   string
	txns []domain.Transaction
}

type putTokenRecord struct {
	id  string
	rec domain.TokenRecord
}

type putTokenChart struct {
	id     string
	series []domain.DailyPoint
}

type putTopPairs struct {
	network domain.Network
	records map[string]domain.PairRecord
}

type putTopTokens struct {
	network domain.Network
	records map[string]domain.TokenRecord
}

type putCampaigns struct {
	status  domain.CampaignStatus
	records []domain.CampaignRecord
}

type clearAll struct {
	preserveTopSets bool
}

func (putPairRecord) isMutation()  {}
func (putPairChart) isMutation()   {}
func (putPairHourly) isMutation()  {}
func (putPairTxns) isMutation()    {}
func (putTokenRecord) isMutation() {}
func (putTokenChart) isMutation()  {}
func (putTopPairs) isMutation()    {}
func (putTopTokens) isMutation()   {}
func (putCampaigns) isMutation()   {}
func (clearAll) isMutation()       {}

// apply executes one transition under the write lock. An unrecognized
// variant is a contract violation between coordinator and store and
// terminates loudly.
func (s *Store) apply(m mutation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch m := m.(type) {
	case putPairRecord:
		rec := m.rec
		s.pairEntry(m.id).Record = &rec
	case putPairChart:
		s.pairEntry(m.id).Chart = m.series
	case putPairHourly:
		e := s.pairEntry(m.id)
		if e.Hourly == nil {
			e.Hourly = make(map[domain.Window][2][]domain.CandlePoint)
		}
		e.Hourly[m.window] = m.series
	case putPairTxns:
		s.pairEntry(m.id).Txns = m.txns
	case putTokenRecord:
		rec := m.rec
		s.tokenEntry(m.id).Record = &rec
	case putTokenChart:
		s.tokenEntry(m.id).Chart = m.series
	case putTopPairs:
		s.topPairs[m.network] = m.records
	case putTopTokens:
		s.topTokens[m.network] = m.records
	case putCampaigns:
		s.campaigns[m.status] = m.records
	case clearAll:
		s.init(!m.preserveTopSets)
	default:
		panic(fmt.Sprintf("cache: unknown mutation %T", m))
	}
}

func (s *Store) pairEntry(id string) *PairEntry {
	e, ok := s.pairs[id]
	if !ok {
		e = &PairEntry{}
		s.pairs[id] = e
	}
	return e
}

func (s *Store) tokenEntry(id string) *TokenEntry {
	e, ok := s.tokens[id]
	if !ok {
		e = &TokenEntry{}
		s.tokens[id] = e
	}
	return e
}

// PutPair stores a pair's derived record, preserving any attached
// sub-series.
func (s *Store) PutPair(id string, rec domain.PairRecord) {
	s.apply(putPairRecord{id: id, rec: rec})
}

// PutPairChart stores a pair's daily chart series.
func (s *Store) PutPairChart(id string, series []domain.DailyPoint) {
	s.apply(putPairChart{id: id, series: series})
}

// PutPairHourly stores one window of a pair's hourly candle series.
func (s *Store) PutPairHourly(id string, window domain.Window, series [2][]domain.CandlePoint) {
	s.apply(putPairHourly{id: id, window: window, series: series})
}

// PutPairTxns stores a pair's transaction sub-series.
func (s *Store) PutPairTxns(id string, txns []domain.Transaction) {
	s.apply(putPairTxns{id: id, txns: txns})
}

// PutToken stores a token's derived record, preserving sub-series.
func (s *Store) PutToken(id string, rec domain.TokenRecord) {
	s.apply(putTokenRecord{id: id, rec: rec})
}

// PutTokenChart stores a token's daily chart series.
func (s *Store) PutTokenChart(id string, series []domain.DailyPoint) {
	s.apply(putTokenChart{id: id, series: series})
}

// PutTopPairs replaces the network's top-pairs partition wholesale.
func (s *Store) PutTopPairs(network domain.Network, records map[string]domain.PairRecord) {
	s.apply(putTopPairs{network: network, records: records})
}

// PutTopTokens replaces the network's top-tokens partition wholesale.
func (s *Store) PutTopTokens(network domain.Network, records map[string]domain.TokenRecord) {
	s.apply(putTopTokens{network: network, records: records})
}

// PutCampaigns replaces the campaign partition for one status.
func (s *Store) PutCampaigns(status domain.CampaignStatus, records []domain.CampaignRecord) {
	s.apply(putCampaigns{status: status, records: records})
}

// Clear empties the store. With preserveTopSets the per-network top-entity
// partitions survive; everything else is always dropped.
func (s *Store) Clear(preserveTopSets bool) {
	s.apply(clearAll{preserveTopSets: preserveTopSets})
}
