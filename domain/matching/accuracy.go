package matching

// Report summarises per-query ranks into accuracy statistics.
type Report struct {
	queries     int
	top1Correct int
	topKCorrect int
	k           int
}

// Queries returns the number of distinct evaluated queries.
func (r Report) Queries() int { return r.queries }

// Top1Correct returns how many queries matched themselves at rank 1.
func (r Report) Top1Correct() int { return r.top1Correct }

// TopKCorrect returns how many queries matched themselves within rank K.
func (r Report) TopKCorrect() int { return r.topKCorrect }

// K returns the K the top-K statistic was computed for.
func (r Report) K() int { return r.k }

// Top1Accuracy returns the fraction of queries whose rank-1 match was
// the query entity itself. Zero queries yields 0.
func (r Report) Top1Accuracy() float64 {
	if r.queries == 0 {
		return 0
	}
	return float64(r.top1Correct) / float64(r.queries)
}

// TopKAccuracy returns the fraction of queries that matched themselves
// anywhere within the top K.
func (r Report) TopKAccuracy() float64 {
	if r.queries == 0 {
		return 0
	}
	return float64(r.topKCorrect) / float64(r.queries)
}

// Accuracy aggregates persisted self-match rows into a Report. Results
// may span many queries and arrive in any order; rows beyond rank k are
// ignored for the top-K statistic but still group their query.
func Accuracy(results []SelfMatchResult, k int) Report {
	type queryOutcome struct {
		top1 bool
		topK bool
	}

	outcomes := make(map[int64]*queryOutcome)
	for _, res := range results {
		o, ok := outcomes[res.QueryEntityID()]
		if !ok {
			o = &queryOutcome{}
			outcomes[res.QueryEntityID()] = o
		}
		if res.IsCorrectTopMatch() {
			o.top1 = true
		}
		if res.Rank() <= k && res.MatchedEntityID() == res.QueryEntityID() {
			o.topK = true
		}
	}

	report := Report{queries: len(outcomes), k: k}
	for _, o := range outcomes {
		if o.top1 {
			report.top1Correct++
		}
		if o.topK {
			report.topKCorrect++
		}
	}
	return report
}
