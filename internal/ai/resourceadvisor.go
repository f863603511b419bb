package ai

import (
	"context"
	"sort"
	"strings"

	"github.com/Stefan/ppm-saas-sub001/internal/store"
)

// skillMatchThreshold is the original ResourceOptimizerAgent's minimum
// match_score for a resource to be surfaced as a candidate.
const skillMatchThreshold = 0.6

// utilizationTargetMin/Max bound the "healthy" allocation band. Conflict
// detection flags totals below utilizationTargetMin as under-utilization
// and totals above 100% as over-allocation; utilizationTargetMax is not
// consulted, so totals between 85% and 100% are not flagged.
const (
	utilizationTargetMin = 60.0
	utilizationTargetMax = 85.0
)

// SkillMatch is one resource's fit against a project's required skills.
type SkillMatch struct {
	ResourceID         string
	ResourceName       string
	MatchScore         float64
	MatchingSkills     []string
	MissingSkills      []string
	CurrentUtilization float64
	AvailableCapacity  float64
}

// RequirementMatch is every qualifying candidate for one project's skill
// requirement, ranked by match score then available capacity.
type RequirementMatch struct {
	ProjectID         string
	RequiredSkills    []string
	MatchingResources []SkillMatch
	TotalMatches      int
}

// AllocationConflict flags a resource whose combined allocation across
// projects is above 100% or below utilizationTargetMin.
type AllocationConflict struct {
	Type             string // over_allocation | under_utilization
	ResourceID       string
	ResourceName     string
	TotalAllocation  float64
	Severity         string // critical | high | medium
	AffectedProjects []string
}

// Advisor implements C6's resource-optimization supplement: skill matching
// against project requirements and cross-project allocation-conflict
// detection, grounded on the original's ResourceOptimizerAgent.
type Advisor struct {
	resources store.ResourceStore
}

// NewAdvisor constructs an Advisor.
func NewAdvisor(resources store.ResourceStore) *Advisor {
	return &Advisor{resources: resources}
}

// MatchSkills ranks resources against a set of requirements, one
// RequirementMatch per requirement, keeping only the top 5 qualifying
// resources per requirement as the original does.
func (a *Advisor) MatchSkills(ctx context.Context, requirements map[string][]string) ([]RequirementMatch, error) {
	resources, err := a.resources.ListResources(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]RequirementMatch, 0, len(requirements))
	for projectID, required := range requirements {
		if len(required) == 0 {
			continue
		}

		var matches []SkillMatch
		for _, r := range resources {
			score := skillMatchScore(required, r.Skills)
			if score < skillMatchThreshold {
				continue
			}
			matches = append(matches, SkillMatch{
				ResourceID:         r.ID,
				ResourceName:       r.Name,
				MatchScore:         score,
				MatchingSkills:     matchingSkills(required, r.Skills),
				MissingSkills:      missingSkills(required, r.Skills),
				CurrentUtilization: float64(100 - r.Availability),
				AvailableCapacity:  float64(r.Availability),
			})
		}

		sort.Slice(matches, func(i, j int) bool {
			if matches[i].MatchScore != matches[j].MatchScore {
				return matches[i].MatchScore > matches[j].MatchScore
			}
			return matches[i].AvailableCapacity > matches[j].AvailableCapacity
		})
		if len(matches) > 5 {
			matches = matches[:5]
		}

		results = append(results, RequirementMatch{
			ProjectID:         projectID,
			RequiredSkills:    required,
			MatchingResources: matches,
			TotalMatches:      len(matches),
		})
	}
	return results, nil
}

// DetectConflicts sums each resource's allocation across every project it's
// assigned to and flags over-100% commitments and chronic under-utilization.
func (a *Advisor) DetectConflicts(ctx context.Context) ([]AllocationConflict, error) {
	resources, err := a.resources.ListResources(ctx)
	if err != nil {
		return nil, err
	}

	var conflicts []AllocationConflict
	for _, r := range resources {
		allocations, err := a.resources.ListAllocations(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		if len(allocations) == 0 {
			continue
		}

		var total float64
		projects := make([]string, 0, len(allocations))
		for _, alloc := range allocations {
			total += float64(alloc.AllocationPct)
			projects = append(projects, alloc.ProjectID)
		}

		switch {
		case total > 100:
			severity := "high"
			if total > 120 {
				severity = "critical"
			}
			conflicts = append(conflicts, AllocationConflict{
				Type:             "over_allocation",
				ResourceID:       r.ID,
				ResourceName:     r.Name,
				TotalAllocation:  total,
				Severity:         severity,
				AffectedProjects: projects,
			})
		case total < utilizationTargetMin:
			conflicts = append(conflicts, AllocationConflict{
				Type:             "under_utilization",
				ResourceID:       r.ID,
				ResourceName:     r.Name,
				TotalAllocation:  total,
				Severity:         "medium",
				AffectedProjects: projects,
			})
		}
	}
	return conflicts, nil
}

func skillMatchScore(required, have []string) float64 {
	if len(required) == 0 {
		return 1.0
	}
	requiredNorm := normalizeSkills(required)
	haveNorm := normalizeSkills(have)
	haveSet := toSet(haveNorm)

	exact := 0
	for s := range toSet(requiredNorm) {
		if _, ok := haveSet[s]; ok {
			exact++
		}
	}

	partial := 0.0
	for _, req := range requiredNorm {
		matched := false
		for _, h := range haveNorm {
			if strings.Contains(h, req) || strings.Contains(req, h) {
				matched = true
				break
			}
		}
		if matched {
			partial += 0.5
		}
	}

	score := (float64(exact) + partial) / float64(len(required))
	if score > 1 {
		score = 1
	}
	return roundTo(score, 2)
}

func matchingSkills(required, have []string) []string {
	haveSet := toSet(normalizeSkills(have))
	var out []string
	for _, req := range required {
		if _, ok := haveSet[strings.ToLower(req)]; ok {
			out = append(out, req)
		}
	}
	return out
}

func missingSkills(required, have []string) []string {
	haveSet := toSet(normalizeSkills(have))
	var out []string
	for _, req := range required {
		if _, ok := haveSet[strings.ToLower(req)]; !ok {
			out = append(out, req)
		}
	}
	return out
}

func normalizeSkills(skills []string) []string {
	out := make([]string, len(skills))
	for i, s := range skills {
		out[i] = strings.ToLower(s)
	}
	return out
}

func toSet(skills []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		set[s] = struct{}{}
	}
	return set
}

func roundTo(f float64, places int) float64 {
	scale := 1.0
	for i := 0; i < places; i++ {
		scale *= 10
	}
	return float64(int(f*scale+0.5)) / scale
}
