package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Stefan/ppm-saas-sub001/internal/store"
)

func TestValidateResponseNoClaimsIsValid(t *testing.T) {
	result := ValidateResponse("Hello there, happy to help.", nil, 0.8)
	assert.True(t, result.IsValid)
}

func TestValidateResponseDetectsNumericContradiction(t *testing.T) {
	sources := []store.EmbeddingMatch{
		{ContentType: "project", ContentID: "p1", ContentText: "Project Atlas total budget is $100,000 with 20 percent spent."},
	}
	response := "Project Atlas total budget is $200,000."

	result := ValidateResponse(response, sources, 0.9)
	assert.False(t, result.IsValid)
	assert.NotEmpty(t, result.Issues)
}

func TestValidateResponseVerifiesConsistentClaim(t *testing.T) {
	sources := []store.EmbeddingMatch{
		{ContentType: "project", ContentID: "p1", ContentText: "Project Atlas total budget is $100,000 for the current fiscal year."},
	}
	response := "Project Atlas total budget is $100,000."

	result := ValidateResponse(response, sources, 0.9)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Issues)
	assert.Equal(t, 1.0, result.SourceCoverage)
}

func TestValidateResponseLowCoverageIsInvalid(t *testing.T) {
	sources := []store.EmbeddingMatch{
		{ContentType: "resource", ContentID: "r1", ContentText: "Mira handles onboarding paperwork for new hires."},
	}
	response := "The total project budget is $500,000 and milestone completion is 90 percent."

	result := ValidateResponse(response, sources, 0.9)
	assert.False(t, result.IsValid)
	assert.Equal(t, 0.0, result.SourceCoverage)
}
