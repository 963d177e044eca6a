// Package llm adapts a text-generation service into the qualitative analysis
// port. The model's free-form output is reduced to a structured assessment by
// extracting the first balanced JSON object from the response text.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"golang.org/x/sync/semaphore"

	"neeledger/domain/fusion"
	"neeledger/domain/spectral"
	"neeledger/internal/errors"
	"neeledger/ports"
)

const defaultMaxConcurrent = 4

var _ ports.Analyzer = (*GeminiAnalyzer)(nil)

// GeminiAnalyzer implements ports.Analyzer over an LLMClient. A weighted
// semaphore bounds in-flight requests to the shared upstream endpoint.
type GeminiAnalyzer struct {
	client LLMCaller
	sem    *semaphore.Weighted
}

// LLMCaller is the minimal client surface the analyzer needs.
type LLMCaller interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// NewGeminiAnalyzer creates an analyzer over the given client.
func NewGeminiAnalyzer(client LLMCaller, maxConcurrent int64) *GeminiAnalyzer {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	return &GeminiAnalyzer{
		client: client,
		sem:    semaphore.NewWeighted(maxConcurrent),
	}
}

// assessmentSchema is the shape requested from the model. Pointer fields
// distinguish missing keys from zero values during validation.
type assessmentSchema struct {
	Analysis        *string  `json:"analysis"`
	Confidence      *float64 `json:"confidence"`
	Recommendations []string `json:"recommendations"`
	RiskFactors     []string `json:"riskFactors"`
	CarbonEstimate  *float64 `json:"carbonEstimate"`
}

// Analyze prompts the model with the report text and satellite metrics and
// parses the structured assessment out of the response. All failures carry a
// recoverable error code; the caller falls back to the numeric-only result.
func (a *GeminiAnalyzer) Analyze(ctx context.Context, reportText string, sample spectral.ReflectanceSample, indices spectral.Indices) (*fusion.QualitativeAssessment, error) {
	if err := a.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.ExternalService("analysis canceled while queued", err)
	}
	defer a.sem.Release(1)

	prompt := buildAnalysisPrompt(reportText, sample, indices)

	raw, err := a.client.GenerateText(ctx, prompt)
	if err != nil {
		if errors.HasCode(err, errors.CodeExternalService) {
			return nil, err
		}
		return nil, errors.ExternalService("gemini analysis failed", err)
	}

	block, ok := extractJSONBlock(raw)
	if !ok {
		log.Printf("[GeminiAnalyzer] response contained no JSON block (%d bytes)", len(raw))
		return nil, errors.UnparseableResponse("gemini response contains no JSON block")
	}

	var parsed assessmentSchema
	if err := json.Unmarshal([]byte(block), &parsed); err != nil {
		return nil, errors.WithCode(errors.CodeUnparseableResponse,
			fmt.Errorf("gemini JSON block does not parse: %w", err))
	}

	if parsed.Analysis == nil || parsed.Confidence == nil || parsed.CarbonEstimate == nil {
		return nil, errors.SchemaInvalid("gemini assessment missing required fields")
	}

	assessment := &fusion.QualitativeAssessment{
		Analysis:        *parsed.Analysis,
		Confidence:      *parsed.Confidence,
		Recommendations: parsed.Recommendations,
		RiskFactors:     parsed.RiskFactors,
		CarbonEstimate:  *parsed.CarbonEstimate,
	}
	if assessment.Recommendations == nil {
		assessment.Recommendations = []string{}
	}
	if assessment.RiskFactors == nil {
		assessment.RiskFactors = []string{}
	}
	return assessment, nil
}

// buildAnalysisPrompt mirrors the verification analyst prompt, requesting a
// strict JSON shape alongside the narrative.
func buildAnalysisPrompt(reportText string, sample spectral.ReflectanceSample, indices spectral.Indices) string {
	rounded := indices.Rounded()
	return fmt.Sprintf(`You are an expert carbon verification analyst. Analyze this monitoring report data and satellite imagery to provide a comprehensive assessment.

Report Data:
%s

Satellite Analysis:
- NDVI: %g
- EVI: %g
- SAVI: %g
- Spectral Bands: B2=%g, B3=%g, B4=%g, B8=%g
- Species: %s

Provide analysis in the following JSON format:
{
  "analysis": "Detailed analysis of the carbon removal claim",
  "confidence": 0.95,
  "recommendations": ["List of recommendations"],
  "riskFactors": ["List of potential risk factors"],
  "carbonEstimate": 1200
}

Focus on:
1. Accuracy of carbon removal claims
2. Satellite data consistency
3. Methodology quality
4. Risk assessment
5. Confidence level (0-1)
6. Your own carbon estimate based on the data
`, reportText, rounded.NDVI, rounded.EVI, rounded.SAVI,
		sample.B2, sample.B3, sample.B4, sample.B8, sample.Species)
}

// extractJSONBlock returns the first balanced {...} substring of text,
// skipping braces inside JSON string literals.
func extractJSONBlock(text string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					return text[start : i+1], true
				}
			}
		}
	}
	return "", false
}
