package llm

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neeledger/domain/spectral"
	"neeledger/internal/errors"
)

var testSample = spectral.ReflectanceSample{B2: 0.05, B3: 0.06, B4: 0.04, B8: 0.3, Species: "Mangrove"}

func testAnalyzer(client LLMCaller) *GeminiAnalyzer {
	return NewGeminiAnalyzer(client, 2)
}

func TestAnalyze_ParsesWrappedJSON(t *testing.T) {
	// Models routinely wrap the JSON in chatter and code fences.
	client := &MockLLMClient{Response: "Here is my assessment:\n```json\n" + `{
		"analysis": "Consistent with imagery.",
		"confidence": 0.85,
		"recommendations": ["verify plot boundaries"],
		"riskFactors": ["cloud cover", "no ground truth"],
		"carbonEstimate": 1150
	}` + "\n```\nLet me know if you need more detail."}

	got, err := testAnalyzer(client).Analyze(context.Background(), "report text", testSample, spectral.Compute(testSample))
	require.NoError(t, err)

	assert.Equal(t, "Consistent with imagery.", got.Analysis)
	assert.Equal(t, 0.85, got.Confidence)
	assert.Equal(t, []string{"verify plot boundaries"}, got.Recommendations)
	assert.Len(t, got.RiskFactors, 2)
	assert.Equal(t, 1150.0, got.CarbonEstimate)
}

func TestAnalyze_NoJSONBlock(t *testing.T) {
	client := &MockLLMClient{Response: "I'm sorry, I cannot assess this report."}

	_, err := testAnalyzer(client).Analyze(context.Background(), "r", testSample, spectral.Compute(testSample))
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnparseableResponse, errors.GetCode(err))
	assert.True(t, errors.IsRecoverable(err))
}

func TestAnalyze_MalformedJSONBlock(t *testing.T) {
	client := &MockLLMClient{Response: `{"analysis": "truncated", "confidence": }`}

	_, err := testAnalyzer(client).Analyze(context.Background(), "r", testSample, spectral.Compute(testSample))
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnparseableResponse, errors.GetCode(err))
}

func TestAnalyze_MissingRequiredFields(t *testing.T) {
	client := &MockLLMClient{Response: `{"analysis": "looks fine", "recommendations": []}`}

	_, err := testAnalyzer(client).Analyze(context.Background(), "r", testSample, spectral.Compute(testSample))
	require.Error(t, err)
	assert.Equal(t, errors.CodeSchemaInvalid, errors.GetCode(err))
	assert.True(t, errors.IsRecoverable(err))
}

func TestAnalyze_ServiceError(t *testing.T) {
	client := &MockLLMClient{Error: fmt.Errorf("connection refused")}

	_, err := testAnalyzer(client).Analyze(context.Background(), "r", testSample, spectral.Compute(testSample))
	require.Error(t, err)
	assert.Equal(t, errors.CodeExternalService, errors.GetCode(err))
}

func TestAnalyze_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testAnalyzer(&MockLLMClient{}).Analyze(ctx, "r", testSample, spectral.Compute(testSample))
	require.Error(t, err)
	assert.Equal(t, errors.CodeExternalService, errors.GetCode(err))
}

func TestAnalyze_EmptyListsNormalized(t *testing.T) {
	client := &MockLLMClient{Response: `{"analysis": "ok", "confidence": 0.7, "carbonEstimate": 1000}`}

	got, err := testAnalyzer(client).Analyze(context.Background(), "r", testSample, spectral.Compute(testSample))
	require.NoError(t, err)
	assert.NotNil(t, got.Recommendations)
	assert.NotNil(t, got.RiskFactors)
	assert.Empty(t, got.Recommendations)
}

func TestExtractJSONBlock(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"prefix and suffix", `noise {"a":1} trailing`, `{"a":1}`, true},
		{"nested objects", `x {"a":{"b":2}} y`, `{"a":{"b":2}}`, true},
		{"brace inside string", `{"a":"}","b":1}`, `{"a":"}","b":1}`, true},
		{"escaped quote inside string", `{"a":"\"}","b":1}`, `{"a":"\"}","b":1}`, true},
		{"first of two objects", `{"a":1} {"b":2}`, `{"a":1}`, true},
		{"unbalanced", `{"a":1`, "", false},
		{"no object", "plain text", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSONBlock(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
