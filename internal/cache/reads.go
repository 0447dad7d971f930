package cache

import (
	"dexboard/internal/domain"
)

// Reads return copies so callers never observe later mutations.

// Pair returns the pair's derived record.
func (s *Store) Pair(id string) (domain.PairRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.pairs[id]
	if !ok || e.Record == nil {
		return domain.PairRecord{}, false
	}
	return *e.Record, true
}

// Pairs returns records for every requested id that has one.
func (s *Store) Pairs(ids []string) map[string]domain.PairRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.PairRecord, len(ids))
	for _, id := range ids {
		if e, ok := s.pairs[id]; ok && e.Record != nil {
			out[id] = *e.Record
		}
	}
	return out
}

// PairChart returns the pair's daily series, nil when absent.
func (s *Store) PairChart(id string) []domain.DailyPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.pairs[id]
	if !ok {
		return nil
	}
	return append([]domain.DailyPoint(nil), e.Chart...)
}

// PairHourly returns one window of the pair's hourly candles.
func (s *Store) PairHourly(id string, window domain.Window) ([2][]domain.CandlePoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.pairs[id]
	if !ok || e.Hourly == nil {
		return [2][]domain.CandlePoint{}, false
	}
	series, ok := e.Hourly[window]
	if !ok {
		return [2][]domain.CandlePoint{}, false
	}
	return [2][]domain.CandlePoint{
		append([]domain.CandlePoint(nil), series[0]...),
		append([]domain.CandlePoint(nil), series[1]...),
	}, true
}

// PairTxns returns the pair's transaction sub-series, nil when absent.
func (s *Store) PairTxns(id string) []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.pairs[id]
	if !ok {
		return nil
	}
	return append([]domain.Transaction(nil), e.Txns...)
}

// Token returns the token's derived record.
func (s *Store) Token(id string) (domain.TokenRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.tokens[id]
	if !ok || e.Record == nil {
		return domain.TokenRecord{}, false
	}
	return *e.Record, true
}

// Tokens returns records for every requested id that has one.
func (s *Store) Tokens(ids []string) map[string]domain.TokenRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.TokenRecord, len(ids))
	for _, id := range ids {
		if e, ok := s.tokens[id]; ok && e.Record != nil {
			out[id] = *e.Record
		}
	}
	return out
}

// TokenChart returns the token's daily series, nil when absent.
func (s *Store) TokenChart(id string) []domain.DailyPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.tokens[id]
	if !ok {
		return nil
	}
	return append([]domain.DailyPoint(nil), e.Chart...)
}

// TopPairs returns the network's top-pairs partition, nil when unset.
func (s *Store) TopPairs(network domain.Network) map[string]domain.PairRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	part, ok := s.topPairs[network]
	if !ok {
		return nil
	}
	out := make(map[string]domain.PairRecord, len(part))
	for id, rec := range part {
		out[id] = rec
	}
	return out
}

// TopTokens returns the network's top-tokens partition, nil when unset.
func (s *Store) TopTokens(network domain.Network) map[string]domain.TokenRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	part, ok := s.topTokens[network]
	if !ok {
		return nil
	}
	out := make(map[string]domain.TokenRecord, len(part))
	for id, rec := range part {
		out[id] = rec
	}
	return out
}

// Campaigns returns the partition for one campaign status, nil when unset.
func (s *Store) Campaigns(status domain.CampaignStatus) []domain.CampaignRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	part, ok := s.campaigns[status]
	if !ok {
		return nil
	}
	return append([]domain.CampaignRecord(nil), part...)
}

// HasCampaigns reports whether the status partition has been populated.
func (s *Store) HasCampaigns(status domain.CampaignStatus) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.campaigns[status]
	return ok
}

// Counts reports entity counts per namespace, for gauges.
func (s *Store) Counts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	topPairs := 0
	for _, part := range s.topPairs {
		topPairs += len(part)
	}
	topTokens := 0
	for _, part := range s.topTokens {
		topTokens += len(part)
	}
	campaigns := 0
	for _, part := range s.campaigns {
		campaigns += len(part)
	}
	return map[string]int{
		"pairs":      len(s.pairs),
		"tokens":     len(s.tokens),
		"top_pairs":  topPairs,
		"top_tokens": topTokens,
		"campaigns":  campaigns,
	}
}
