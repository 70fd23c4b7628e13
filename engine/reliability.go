package engine

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/policyforge/mcda/internal/domain"
)

// ReliabilityBand maps a statistic cutoff to a qualitative label. The
// label applies from the cutoff up to the next band's cutoff.
type ReliabilityBand struct {
	// Label is the qualitative name for this band.
	Label string `yaml:"label" json:"label" validate:"required"`

	// Min is the inclusive lower cutoff for this band.
	Min float64 `yaml:"min" json:"min"`
}

// BandInsufficientData labels a per-criterion ICC that could not be
// computed because fewer than two usable cells remained. The paired ICC
// value carries no information in that case.
const BandInsufficientData = "insufficient_data"

// ReliabilityConfig configures the reliability checker. Banding
// thresholds are caller-configurable by design: qualitative labels are a
// reporting convention, not a decision baked invisibly into the engine.
type ReliabilityConfig struct {
	// AlphaBands label Cronbach's alpha values, highest cutoff first.
	AlphaBands []ReliabilityBand `yaml:"alpha_bands" json:"alpha_bands" validate:"required,min=1,dive"`

	// ICCBands label intraclass correlation values.
	ICCBands []ReliabilityBand `yaml:"icc_bands" json:"icc_bands" validate:"required,min=1,dive"`

	// FallbackLabel is used when a value falls below every band.
	FallbackLabel string `yaml:"fallback_label" json:"fallback_label" validate:"required"`

	// MinAlpha and MinICC gate the report's Trustworthy flag.
	MinAlpha float64 `yaml:"min_alpha" json:"min_alpha"`
	MinICC   float64 `yaml:"min_icc" json:"min_icc"`
}

// DefaultReliabilityConfig returns the customary banding: alpha is
// acceptable from 0.70, ICC agreement is good from 0.75.
func DefaultReliabilityConfig() ReliabilityConfig {
	return ReliabilityConfig{
		AlphaBands: []ReliabilityBand{
			{Label: "excellent", Min: 0.9},
			{Label: "good", Min: 0.8},
			{Label: "acceptable", Min: 0.7},
			{Label: "questionable", Min: 0.6},
			{Label: "poor", Min: 0.5},
		},
		ICCBands: []ReliabilityBand{
			{Label: "excellent", Min: 0.9},
			{Label: "good", Min: 0.75},
			{Label: "moderate", Min: 0.5},
		},
		FallbackLabel: "unacceptable",
		MinAlpha:      0.70,
		MinICC:        0.75,
	}
}

// Checker computes internal-consistency and inter-assessor agreement
// statistics over repeated assessments, used to gate whether scores are
// trustworthy enough to rank.
//
// The checker is stateless and safe for concurrent use.
type Checker struct {
	config ReliabilityConfig
	// alphaBands and iccBands are the configured bands sorted by
	// descending cutoff so the first match wins.
	alphaBands []ReliabilityBand
	iccBands   []ReliabilityBand
}

// NewChecker creates a Checker with a validated configuration.
func NewChecker(config ReliabilityConfig) (*Checker, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	c := &Checker{config: config}
	c.sortBands()
	return c, nil
}

// UnmarshalParameters decodes YAML configuration and replaces the
// checker's settings after validation.
func (c *Checker) UnmarshalParameters(params yaml.Node) error {
	config := DefaultReliabilityConfig()
	if err := params.Decode(&config); err != nil {
		return fmt.Errorf("failed to decode parameters: %w", err)
	}
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("parameter validation failed: %w", err)
	}
	c.config = config
	c.sortBands()
	return nil
}

func (c *Checker) sortBands() {
	c.alphaBands = append([]ReliabilityBand(nil), c.config.AlphaBands...)
	c.iccBands = append([]ReliabilityBand(nil), c.config.ICCBands...)
	sort.Slice(c.alphaBands, func(i, j int) bool { return c.alphaBands[i].Min > c.alphaBands[j].Min })
	sort.Slice(c.iccBands, func(i, j int) bool { return c.iccBands[i].Min > c.iccBands[j].Min })
}

func label(bands []ReliabilityBand, fallback string, value float64) string {
	for _, b := range bands {
		if value >= b.Min {
			return b.Label
		}
	}
	return fallback
}

// AssessReliability computes Cronbach's alpha across criteria and
// intraclass correlations across assessors, overall and per criterion,
// and gates the Trustworthy flag on the configured floors. Either
// statistic failing its data requirements fails the whole assessment
// with an error wrapping ErrInsufficientData.
func (c *Checker) AssessReliability(m *domain.MultiAssessorMatrix) (*domain.ReliabilityReport, error) {
	if m == nil {
		return nil, fmt.Errorf("multi-assessor matrix is required")
	}

	alpha, err := c.CronbachAlpha(m)
	if err != nil {
		return nil, err
	}
	agreement, err := c.AssessAgreement(m)
	if err != nil {
		return nil, err
	}

	return &domain.ReliabilityReport{
		CronbachAlpha:  alpha,
		AlphaBand:      label(c.alphaBands, c.config.FallbackLabel, alpha),
		OverallICC:     agreement.OverallICC,
		OverallICCBand: agreement.OverallBand,
		Criteria:       agreement.Criteria,
		ExcludedCells:  agreement.ExcludedCells,
		Trustworthy:    alpha >= c.config.MinAlpha && agreement.OverallICC >= c.config.MinICC,
	}, nil
}

// AssessAgreement computes intraclass correlations across assessors,
// overall and per criterion. Cells with fewer than two assessor ratings
// are excluded and the exclusion count is reported, never silently
// dropped. A criterion with fewer than two usable cells carries the
// BandInsufficientData label; its ICC value is meaningless then.
func (c *Checker) AssessAgreement(m *domain.MultiAssessorMatrix) (*domain.AgreementSummary, error) {
	if m == nil {
		return nil, fmt.Errorf("multi-assessor matrix is required")
	}

	criteria := m.Criteria()
	alternatives := m.Alternatives()
	summary := &domain.AgreementSummary{
		Criteria: make([]domain.CriterionAgreement, 0, len(criteria)),
	}

	// The overall ICC pools every alternative/criterion cell as a subject.
	var pooled [][]float64
	for ci, crit := range criteria {
		var cells [][]float64
		excluded := 0
		for ai := range alternatives {
			ratings := m.CellRatings(ai, ci)
			if len(ratings) < 2 {
				excluded++
				continue
			}
			cells = append(cells, ratings)
		}
		pooled = append(pooled, cells...)
		summary.ExcludedCells += excluded

		agreement := domain.CriterionAgreement{CriterionID: crit.ID, ExcludedCells: excluded}
		if len(cells) < 2 {
			agreement.Band = BandInsufficientData
		} else {
			agreement.ICC = intraclassCorrelation(cells)
			agreement.Band = label(c.iccBands, c.config.FallbackLabel, agreement.ICC)
		}
		summary.Criteria = append(summary.Criteria, agreement)
	}

	if len(pooled) < 2 {
		return nil, fmt.Errorf("%w: fewer than two cells carry two or more assessor ratings", domain.ErrInsufficientData)
	}
	summary.OverallICC = intraclassCorrelation(pooled)
	summary.OverallBand = label(c.iccBands, c.config.FallbackLabel, summary.OverallICC)

	return summary, nil
}

// CronbachAlpha computes internal consistency treating criteria as items
// and alternatives as observations, over per-cell mean ratings. Only
// alternatives with a rating for every criterion contribute; at least
// two such rows and two criteria are required.
func (c *Checker) CronbachAlpha(m *domain.MultiAssessorMatrix) (float64, error) {
	if m == nil {
		return 0, fmt.Errorf("multi-assessor matrix is required")
	}
	criteria := m.Criteria()
	alternatives := m.Alternatives()
	if len(criteria) < 2 {
		return 0, fmt.Errorf("%w: Cronbach's alpha requires at least two criteria, got %d", domain.ErrInsufficientData, len(criteria))
	}

	items := make([][]float64, len(criteria))
	var totals []float64
	for ai := range alternatives {
		row := make([]float64, len(criteria))
		complete := true
		for ci := range criteria {
			mean, ok := m.CellMean(ai, ci)
			if !ok {
				complete = false
				break
			}
			row[ci] = mean
		}
		if !complete {
			continue
		}
		total := 0.0
		for ci, v := range row {
			items[ci] = append(items[ci], v)
			total += v
		}
		totals = append(totals, total)
	}

	if len(totals) < 2 {
		return 0, fmt.Errorf("%w: Cronbach's alpha requires at least two fully assessed alternatives, got %d", domain.ErrInsufficientData, len(totals))
	}

	itemVarSum := 0.0
	for _, item := range items {
		itemVarSum += stat.Variance(item, nil)
	}
	totalVar := stat.Variance(totals, nil)
	if totalVar == 0 {
		return 0, fmt.Errorf("%w: total score variance is zero, alpha is undefined", domain.ErrInsufficientData)
	}

	k := float64(len(criteria))
	return k / (k - 1) * (1 - itemVarSum/totalVar), nil
}

// intraclassCorrelation computes a one-way random-effects ICC over
// subjects with possibly unequal rater counts, using the adjusted mean
// group size for unbalanced designs. Perfect agreement yields exactly 1;
// systematic disagreement yields negative values down to -1/(k-1), which
// are reported as computed rather than clamped.
func intraclassCorrelation(subjects [][]float64) float64 {
	n := len(subjects)

	grandSum, total := 0.0, 0
	for _, ratings := range subjects {
		for _, v := range ratings {
			grandSum += v
		}
		total += len(ratings)
	}
	grandMean := grandSum / float64(total)

	ssb, ssw := 0.0, 0.0
	sumK, sumKSq := 0.0, 0.0
	for _, ratings := range subjects {
		k := float64(len(ratings))
		mean := stat.Mean(ratings, nil)
		ssb += k * (mean - grandMean) * (mean - grandMean)
		for _, v := range ratings {
			ssw += (v - mean) * (v - mean)
		}
		sumK += k
		sumKSq += k * k
	}

	msb := ssb / float64(n-1)
	msw := ssw / (sumK - float64(n))
	if msb == 0 && msw == 0 {
		// Every rating identical everywhere: no variance to attribute,
		// agreement is perfect.
		return 1
	}

	// Adjusted mean group size for unbalanced one-way designs; reduces
	// to the common rater count when the design is balanced.
	k0 := (sumK - sumKSq/sumK) / float64(n-1)

	return (msb - msw) / (msb + (k0-1)*msw)
}
