package engine

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/policyforge/mcda/internal/domain"
	"github.com/policyforge/mcda/internal/ports"
)

// OutrankerConfig configures the ELECTRE outranker.
type OutrankerConfig struct {
	// ConcordanceThreshold is the minimum weighted share of agreeing
	// criteria required for "a outranks b". Must lie in [0,1].
	ConcordanceThreshold float64 `yaml:"concordance_threshold" json:"concordance_threshold"`

	// DiscordanceThreshold is the maximum tolerated disagreement on any
	// single criterion. Must lie in [0,1].
	DiscordanceThreshold float64 `yaml:"discordance_threshold" json:"discordance_threshold"`
}

// DefaultOutrankerConfig returns the customary ELECTRE I thresholds:
// concordance 0.7, discordance 0.3.
func DefaultOutrankerConfig() OutrankerConfig {
	return OutrankerConfig{ConcordanceThreshold: 0.7, DiscordanceThreshold: 0.3}
}

// validateThresholds enforces the threshold contract: both must lie in
// [0,1]. Concordance and discordance gate independent quantities, so any
// in-range pair is admissible; a strict concordance with a permissive
// discordance (or vice versa) just tunes how selective the relation is.
func validateThresholds(config OutrankerConfig) error {
	if config.ConcordanceThreshold < 0 || config.ConcordanceThreshold > 1 {
		return fmt.Errorf("%w: concordance threshold %g outside [0,1]",
			domain.ErrInvalidThreshold, config.ConcordanceThreshold)
	}
	if config.DiscordanceThreshold < 0 || config.DiscordanceThreshold > 1 {
		return fmt.Errorf("%w: discordance threshold %g outside [0,1]",
			domain.ErrInvalidThreshold, config.DiscordanceThreshold)
	}
	return nil
}

// Outranker builds ELECTRE-style concordance and discordance matrices
// over alternative pairs and derives a non-compensatory outranking
// relation. The relation is a partial order: cycles and incomparable
// pairs are legal outcomes and are returned as-is.
//
// The outranker is stateless and safe for concurrent use.
type Outranker struct {
	config OutrankerConfig
}

// NewOutranker creates an Outranker, failing with an error wrapping
// ErrInvalidThreshold when the threshold contract is violated.
func NewOutranker(config OutrankerConfig) (*Outranker, error) {
	if err := validateThresholds(config); err != nil {
		return nil, err
	}
	return &Outranker{config: config}, nil
}

// UnmarshalParameters decodes YAML configuration and replaces the
// outranker's thresholds after validation.
func (o *Outranker) UnmarshalParameters(params yaml.Node) error {
	config := DefaultOutrankerConfig()
	if err := params.Decode(&config); err != nil {
		return fmt.Errorf("failed to decode parameters: %w", err)
	}
	if err := validateThresholds(config); err != nil {
		return err
	}
	o.config = config
	return nil
}

// Outrank computes the pairwise concordance and discordance matrices and
// the outranking relation over all alternative pairs. Self-pairs are
// excluded. Concordance(a,b) is the weight share of criteria where a is
// at least as good as b; Discordance(a,b) is the largest range-scaled
// margin by which b beats a on any criterion, zero when b never does.
func (o *Outranker) Outrank(
	matrix *domain.NormalizedScoreMatrix,
	weights domain.WeightVector,
) (*domain.OutrankingRelation, error) {
	if matrix == nil {
		return nil, fmt.Errorf("normalized score matrix is required")
	}
	aligned, err := weights.AlignedTo(matrix.Criteria)
	if err != nil {
		return nil, fmt.Errorf("aligning weights: %w", err)
	}

	n := len(matrix.Alternatives)
	totalWeight := 0.0
	for _, w := range aligned {
		totalWeight += w
	}
	if totalWeight <= 0 {
		return nil, fmt.Errorf("%w: total weight is zero", domain.ErrWeightSum)
	}

	ranges := make([]float64, len(matrix.Criteria))
	for ci := range matrix.Criteria {
		ranges[ci] = matrix.ColumnRange(ci)
	}

	concordance := make([][]float64, n)
	discordance := make([][]float64, n)
	relation := make([][]bool, n)
	for i := 0; i < n; i++ {
		concordance[i] = make([]float64, n)
		discordance[i] = make([]float64, n)
		relation[i] = make([]bool, n)
	}

	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			if a == b {
				continue
			}

			agree := 0.0
			worst := 0.0
			for ci := range matrix.Criteria {
				va, vb := matrix.Values[a][ci], matrix.Values[b][ci]
				if va >= vb {
					agree += aligned[ci]
					continue
				}
				// A zero-range column cannot produce va < vb, so the
				// division below is always defined here.
				if d := (vb - va) / ranges[ci]; d > worst {
					worst = d
				}
			}

			concordance[a][b] = agree / totalWeight
			discordance[a][b] = worst
			relation[a][b] = concordance[a][b] >= o.config.ConcordanceThreshold &&
				discordance[a][b] <= o.config.DiscordanceThreshold
		}
	}

	return &domain.OutrankingRelation{
		Alternatives: matrix.Alternatives,
		Concordance:  concordance,
		Discordance:  discordance,
		Relation:     relation,
	}, nil
}

var _ ports.Scorer = (*NetFlowScorer)(nil)

// NetFlowScorer adapts the outranker to the Scorer interface by ranking
// alternatives on their concordance net flows. This is what lets the
// sensitivity analyzer perturb an ELECTRE-based evaluation; the partial
// order itself is still available from Outrank and is never linearized
// on that path.
type NetFlowScorer struct {
	outranker *Outranker
}

// NewNetFlowScorer wraps an Outranker as a Scorer.
func NewNetFlowScorer(outranker *Outranker) (*NetFlowScorer, error) {
	if outranker == nil {
		return nil, fmt.Errorf("outranker is required")
	}
	return &NetFlowScorer{outranker: outranker}, nil
}

// Name returns the scorer identifier used in reports and metric labels.
func (s *NetFlowScorer) Name() string { return "electre_net_flow" }

// Score ranks alternatives by net concordance flow.
func (s *NetFlowScorer) Score(
	ctx context.Context,
	matrix *domain.NormalizedScoreMatrix,
	weights domain.WeightVector,
) ([]domain.ScoreResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	relation, err := s.outranker.Outrank(matrix, weights)
	if err != nil {
		return nil, err
	}

	flows := relation.NetFlows()
	results := make([]domain.ScoreResult, len(flows))
	for i, flow := range flows {
		results[i] = domain.ScoreResult{AlternativeID: relation.Alternatives[i], Score: flow}
	}
	rankResults(results)
	return results, nil
}
