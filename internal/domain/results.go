package domain

// ConfidenceInterval is an empirical interval over a scalar score,
// reported at full floating-point precision. Rounding is a presentation
// concern left to report consumers.
type ConfidenceInterval struct {
	// Lower is the 2.5th percentile of the resampled score.
	Lower float64 `json:"lower"`

	// Upper is the 97.5th percentile of the resampled score.
	Upper float64 `json:"upper"`
}

// ScoreResult is the outcome of one scoring run for one alternative.
// Results are produced fresh per run and never mutated in place, so
// sensitivity analysis can diff across resampled runs without aliasing.
type ScoreResult struct {
	// AlternativeID identifies the alternative being scored.
	AlternativeID string `json:"alternative_id"`

	// Score is the aggregate scalar for this alternative.
	Score float64 `json:"score"`

	// Rank is the 1-based position after descending stable sort; ties
	// are broken by alternative ID so output is reproducible.
	Rank int `json:"rank"`

	// Confidence is the empirical score interval from sensitivity
	// analysis, when one was run.
	Confidence *ConfidenceInterval `json:"confidence,omitempty"`
}

// ConsistencyReport diagnoses how logically coherent a pairwise
// comparison matrix is. It is computed once per matrix; if the matrix
// changes the report is stale and must be recomputed, never patched.
type ConsistencyReport struct {
	// Order is the matrix dimension the report was computed for.
	Order int `json:"order"`

	// Lambda is the principal eigenvalue estimate.
	Lambda float64 `json:"lambda"`

	// ConsistencyIndex is (lambda - n) / (n - 1).
	ConsistencyIndex float64 `json:"consistency_index"`

	// ConsistencyRatio is the index divided by the random index for n.
	ConsistencyRatio float64 `json:"consistency_ratio"`

	// Acceptable is true when the ratio is at or below the configured
	// limit (0.10 by convention). Unacceptable matrices still yield
	// weights; the engine classifies, it does not veto.
	Acceptable bool `json:"acceptable"`
}

// OutrankingRelation is the directed relation produced by the outranker.
// It is a partial order: cycles and incomparable pairs are legal outcomes
// and are preserved as-is, with no forced linearization.
type OutrankingRelation struct {
	// Alternatives lists alternative IDs in matrix row order.
	Alternatives []string `json:"alternatives"`

	// Concordance[i][j] is the weighted share of criteria on which
	// alternative i is at least as good as alternative j.
	Concordance [][]float64 `json:"concordance"`

	// Discordance[i][j] is the strongest relative disagreement against
	// "i outranks j" across criteria, scaled by each criterion's range.
	Discordance [][]float64 `json:"discordance"`

	// Relation[i][j] is true when alternative i outranks alternative j.
	// Self-pairs are always false.
	Relation [][]bool `json:"relation"`
}

// Outranks reports whether alternative a outranks alternative b.
// Unknown IDs and self-pairs report false.
func (r *OutrankingRelation) Outranks(a, b string) bool {
	ai, bi := -1, -1
	for i, id := range r.Alternatives {
		if id == a {
			ai = i
		}
		if id == b {
			bi = i
		}
	}
	if ai < 0 || bi < 0 || ai == bi {
		return false
	}
	return r.Relation[ai][bi]
}

// NonDominated returns the alternatives that no other alternative
// outranks, in row order. With cycles present the set can be empty.
func (r *OutrankingRelation) NonDominated() []string {
	out := make([]string, 0, len(r.Alternatives))
	for j, id := range r.Alternatives {
		dominated := false
		for i := range r.Alternatives {
			if i != j && r.Relation[i][j] {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, id)
		}
	}
	return out
}

// NetFlows returns, per alternative, the sum over opponents of
// concordance-for minus concordance-against. It is a compensatory
// summary used to wrap the relation behind a scalar scorer; the relation
// itself remains the authoritative, non-linearized output.
func (r *OutrankingRelation) NetFlows() []float64 {
	n := len(r.Alternatives)
	flows := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			flows[i] += r.Concordance[i][j] - r.Concordance[j][i]
		}
	}
	return flows
}

// AlternativeSensitivity summarizes how one alternative's score and rank
// behaved across perturbed trials.
type AlternativeSensitivity struct {
	// AlternativeID identifies the alternative.
	AlternativeID string `json:"alternative_id"`

	// BaselineScore and BaselineRank come from the unperturbed run.
	BaselineScore float64 `json:"baseline_score"`
	BaselineRank  int     `json:"baseline_rank"`

	// MeanScore is the empirical mean across trials.
	MeanScore float64 `json:"mean_score"`

	// Confidence is the empirical 95% score interval across trials.
	Confidence ConfidenceInterval `json:"confidence"`

	// RankStability is the fraction of trials in which the alternative
	// retained its baseline rank.
	RankStability float64 `json:"rank_stability"`
}

// SensitivityReport aggregates a Monte Carlo run over perturbed weights
// and/or bootstrap-resampled scores. Identical seed, inputs, and
// iteration count reproduce an identical report.
type SensitivityReport struct {
	// Iterations is the number of trials executed.
	Iterations int `json:"iterations"`

	// Seed is the master seed the per-trial substreams derive from.
	Seed int64 `json:"seed"`

	// Scorer names the scoring function that was wrapped.
	Scorer string `json:"scorer"`

	// Alternatives holds per-alternative stability summaries in
	// baseline rank order.
	Alternatives []AlternativeSensitivity `json:"alternatives"`
}

// CriterionAgreement is the intraclass correlation for one criterion
// across assessors.
type CriterionAgreement struct {
	// CriterionID identifies the criterion.
	CriterionID string `json:"criterion_id"`

	// ICC is the intraclass correlation coefficient. Negative values are
	// reported as computed; they are evidence of systematic disagreement
	// and are never clamped to zero.
	ICC float64 `json:"icc"`

	// Band is the qualitative label assigned by the configured banding.
	Band string `json:"band"`

	// ExcludedCells counts cells dropped for having fewer than two
	// assessor ratings.
	ExcludedCells int `json:"excluded_cells"`
}

// AgreementSummary carries the inter-assessor agreement statistics on
// their own, for callers that have repeated ratings but too few
// alternatives for an internal-consistency statistic.
type AgreementSummary struct {
	// OverallICC is the intraclass correlation across assessors over all
	// alternative/criterion cells pooled as subjects.
	OverallICC float64 `json:"overall_icc"`

	// OverallBand is the qualitative label for the overall ICC.
	OverallBand string `json:"overall_band"`

	// Criteria holds per-criterion agreement, in criterion order.
	Criteria []CriterionAgreement `json:"criteria"`

	// ExcludedCells is the total number of cells excluded for having
	// fewer than two ratings. Exclusions are always disclosed.
	ExcludedCells int `json:"excluded_cells"`
}

// ReliabilityReport carries internal-consistency and inter-assessor
// agreement statistics over repeated assessments.
type ReliabilityReport struct {
	// CronbachAlpha measures internal consistency across criteria,
	// treating criteria as items and alternatives as observations.
	CronbachAlpha float64 `json:"cronbach_alpha"`

	// AlphaBand is the qualitative label for the alpha value.
	AlphaBand string `json:"alpha_band"`

	// OverallICC is the intraclass correlation across assessors over all
	// alternative/criterion cells pooled as subjects.
	OverallICC float64 `json:"overall_icc"`

	// OverallICCBand is the qualitative label for the overall ICC.
	OverallICCBand string `json:"overall_icc_band"`

	// Criteria holds per-criterion agreement, in criterion order.
	Criteria []CriterionAgreement `json:"criteria"`

	// ExcludedCells is the total number of cells excluded from ICC
	// computation for having fewer than two ratings. Exclusions are
	// always disclosed, never silent.
	ExcludedCells int `json:"excluded_cells"`

	// Trustworthy is true when both alpha and overall ICC fall in bands
	// at or above the configured acceptability floor.
	Trustworthy bool `json:"trustworthy"`
}
