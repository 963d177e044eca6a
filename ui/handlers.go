package ui

import (
	"io"
	"log"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	mdparser "github.com/gomarkdown/markdown/parser"

	"neeledger/app"
	"neeledger/domain/core"
	"neeledger/domain/fusion"
	"neeledger/domain/liveness"
	"neeledger/domain/spectral"
	"neeledger/internal/errors"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "NeeLedger server running",
	})
}

// handlePredictBiomass scores one reflectance sample. The response keys are
// snake_case because the dashboard charts read them verbatim.
func (s *Server) handlePredictBiomass(c *gin.Context) {
	var sample spectral.ReflectanceSample
	if err := c.ShouldBindJSON(&sample); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	prediction, err := s.predictor.Predict(c.Request.Context(), sample)
	if err != nil {
		log.Printf("[API] biomass prediction failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// encoding/json cannot represent NaN or Inf, which the index math
	// produces for degenerate band values.
	if !finitePrediction(prediction) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction produced a non-finite result"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"predicted_biomass":  prediction.Predicted,
		"confidence":         prediction.Confidence,
		"ndvi":               prediction.NDVI,
		"evi":                prediction.EVI,
		"savi":               prediction.SAVI,
		"feature_importance": prediction.FeatureImportance,
		"input_data":         sample,
	})
}

func finitePrediction(p fusion.NumericPrediction) bool {
	for _, v := range []float64{p.Predicted, p.Confidence, p.NDVI, p.EVI, p.SAVI} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	for _, v := range p.FeatureImportance {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type xaiRequest struct {
	CodePhrase string `json:"codePhrase"`
	FileName   string `json:"fileName"`
}

// handleXAI is a pure function of codePhrase and fileName: identical inputs
// always produce the identical response body.
func (s *Server) handleXAI(c *gin.Context) {
	var req xaiRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, liveness.Verify(req.CodePhrase, req.FileName))
}

type verifyRequest struct {
	ReportName string                     `json:"reportName"`
	ReportText string                     `json:"reportText"`
	Claimed    float64                    `json:"claimedTonnage"`
	Sample     spectral.ReflectanceSample `json:"sample"`
	UseGemini  bool                       `json:"useGemini"`
}

// handleVerify runs the full pipeline and opens a pending review.
func (s *Server) handleVerify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	result, err := s.pipeline.Run(c.Request.Context(), app.VerificationRequest{
		ReportName:  req.ReportName,
		ReportText:  req.ReportText,
		Claimed:     req.Claimed,
		Sample:      req.Sample,
		UseAnalysis: req.UseGemini,
	})
	if err != nil {
		log.Printf("[API] verification run failed: %v", err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleListReviews(c *gin.Context) {
	reviews, err := s.reviews.List(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"count":   len(reviews),
	})
}

func (s *Server) handleGetReview(c *gin.Context) {
	review, err := s.reviews.Get(c.Request.Context(), core.ReviewID(c.Param("id")))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{"review": review}
	if review.Result.Gemini != nil && review.Result.Gemini.Analysis != "" {
		resp["analysisHtml"] = renderAnalysisHTML(review.Result.Gemini.Analysis)
	}
	c.JSON(http.StatusOK, resp)
}

// renderAnalysisHTML converts the model's markdown narrative to HTML for the
// review detail pane.
func renderAnalysisHTML(text string) string {
	p := mdparser.NewWithExtensions(mdparser.CommonExtensions)
	return string(markdown.ToHTML([]byte(text), p, nil))
}

func (s *Server) handleApproveReview(c *gin.Context) {
	review, err := s.reviews.Approve(c.Request.Context(), core.ReviewID(c.Param("id")))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"review": review})
}

func (s *Server) handleRejectReview(c *gin.Context) {
	review, err := s.reviews.Reject(c.Request.Context(), core.ReviewID(c.Param("id")))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"review": review})
}

func (s *Server) handleReviewSummary(c *gin.Context) {
	summary, err := s.reviews.Summarize(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleExportReviews(c *gin.Context) {
	reviews, err := s.reviews.List(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	f, err := buildReviewWorkbook(reviews)
	if err != nil {
		log.Printf("[API] review export failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", `attachment; filename="reviews.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[API] failed to stream review workbook: %v", err)
	}
}

// statusFor maps error codes from the service layer to HTTP statuses.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeValidationError:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
