package ai

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/Stefan/ppm-saas-sub001/internal/apperr"
	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/store"
)

// VariantA and VariantB are the two arms of every declared test.
const (
	VariantA = "A"
	VariantB = "B"
)

// ABService declares deterministic A/B tests and analyzes their outcomes.
type ABService struct {
	tests store.ABTestStore
}

// NewABService constructs an ABService.
func NewABService(tests store.ABTestStore) *ABService {
	return &ABService{tests: tests}
}

// CreateTest declares a new A/B test between two model identifiers.
func (s *ABService) CreateTest(ctx context.Context, modelAID, modelBID, operationType string, trafficSplit float64, duration time.Duration) (domain.ABTest, error) {
	if trafficSplit < 0 || trafficSplit > 1 {
		return domain.ABTest{}, apperr.ValidationMessage("traffic_split must be between 0 and 1")
	}
	t := domain.ABTest{
		ID:            uuid.NewString(),
		ModelAID:      modelAID,
		ModelBID:      modelBID,
		OperationType: operationType,
		TrafficSplit:  trafficSplit,
		Duration:      duration,
		StartedAt:     time.Now(),
		Status:        domain.ABTestActive,
	}
	return s.tests.CreateABTest(ctx, t)
}

// AssignVariant deterministically routes a user to variant A or B for a
// test, using the original's hash(test_id || user_id) mod 10000 / 10000 <
// traffic_split scheme: the same user always lands on the same side of a
// given test for its whole lifetime, with no state to store per-assignment.
func AssignVariant(testID, userID string, trafficSplit float64) string {
	h := sha256.Sum256([]byte(testID + "|" + userID))
	bucket := binary.BigEndian.Uint64(h[:8]) % 10000
	if float64(bucket)/10000 < trafficSplit {
		return VariantA
	}
	return VariantB
}

// ModelFor resolves which concrete model ID a user should call for a test.
func ModelFor(t domain.ABTest, userID string) string {
	if AssignVariant(t.ID, userID, t.TrafficSplit) == VariantA {
		return t.ModelAID
	}
	return t.ModelBID
}

// VariantStats summarizes one arm's outcomes over its logged operations.
type VariantStats struct {
	SampleSize        int
	SuccessRate       float64
	AvgResponseTimeMs float64
	AvgConfidence     float64
	AvgSatisfaction   float64 // mean feedback rating, 0 if no feedback logged
}

// TestAnalysis compares both arms of a test and reports whether the
// difference in success rate is large enough, given both sample sizes, to
// call significant rather than noise.
type TestAnalysis struct {
	VariantA            VariantStats
	VariantB            VariantStats
	SuccessRateDelta     float64
	StatisticallySignificant bool
}

// AnalyzeResults compares the two arms of testID using every AI operation
// logged against it so far.
func (s *ABService) AnalyzeResults(ctx context.Context, testID string) (TestAnalysis, error) {
	t, err := s.tests.GetABTest(ctx, testID)
	if err != nil {
		return TestAnalysis{}, err
	}

	statsA, err := s.variantStats(ctx, t.ID, VariantA)
	if err != nil {
		return TestAnalysis{}, err
	}
	statsB, err := s.variantStats(ctx, t.ID, VariantB)
	if err != nil {
		return TestAnalysis{}, err
	}

	delta := statsB.SuccessRate - statsA.SuccessRate
	return TestAnalysis{
		VariantA:                 statsA,
		VariantB:                 statsB,
		SuccessRateDelta:         delta,
		StatisticallySignificant: isSignificant(statsA, statsB),
	}, nil
}

func (s *ABService) variantStats(ctx context.Context, testID, variant string) (VariantStats, error) {
	ops, err := s.tests.OperationsForVariant(ctx, testID, variant)
	if err != nil {
		return VariantStats{}, err
	}
	if len(ops) == 0 {
		return VariantStats{}, nil
	}

	var successes int
	var sumResponseMs, sumConfidence float64
	ids := make([]string, 0, len(ops))
	for _, op := range ops {
		if op.Success {
			successes++
		}
		sumResponseMs += float64(op.ResponseTime.Milliseconds())
		sumConfidence += op.Confidence
		ids = append(ids, op.OperationID)
	}

	feedback, err := s.tests.FeedbackForOperations(ctx, ids)
	if err != nil {
		return VariantStats{}, err
	}
	var avgSatisfaction float64
	if len(feedback) > 0 {
		var sum float64
		for _, fb := range feedback {
			sum += float64(fb.Rating)
		}
		avgSatisfaction = sum / float64(len(feedback))
	}

	n := float64(len(ops))
	return VariantStats{
		SampleSize:        len(ops),
		SuccessRate:       float64(successes) / n,
		AvgResponseTimeMs: sumResponseMs / n,
		AvgConfidence:     sumConfidence / n,
		AvgSatisfaction:   avgSatisfaction,
	}, nil
}

// isSignificant applies a minimum-sample-size, minimum-effect-size heuristic
// rather than a full two-proportion z-test: both arms need at least 30
// samples, and the observed success-rate gap must exceed the combined
// standard error by a 1.96 (95%) margin.
func isSignificant(a, b VariantStats) bool {
	const minSamples = 30
	if a.SampleSize < minSamples || b.SampleSize < minSamples {
		return false
	}
	seA := stderr(a.SuccessRate, a.SampleSize)
	seB := stderr(b.SuccessRate, b.SampleSize)
	combinedSE := math.Sqrt(seA*seA + seB*seB)
	if combinedSE == 0 {
		return false
	}
	z := absFloat(a.SuccessRate-b.SuccessRate) / combinedSE
	return z >= 1.96
}

func stderr(p float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return math.Sqrt(p * (1 - p) / float64(n))
}
