package handlers

import (
	"errors"
	"net/http"

	"legalhelp-backend/service"

	"github.com/gin-gonic/gin"
)

// QueryHandler handles HTTP requests for the RAG query pipeline
type QueryHandler struct {
	processor  *service.QueryProcessor
	ragService *service.RAGService
	cache      *service.ResponseCache
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(processor *service.QueryProcessor, ragService *service.RAGService, cache *service.ResponseCache) *QueryHandler {
	return &QueryHandler{
		processor:  processor,
		ragService: ragService,
		cache:      cache,
	}
}

// AskRequest represents the request body for answering a question
type AskRequest struct {
	Question string `json:"question" binding:"required"`
	Category string `json:"category"`
}

// Ask handles POST /api/query
func (h *QueryHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.ragService.AnswerQuestion(c.Request.Context(), service.AnswerRequest{
		Question: req.Question,
		Category: req.Category,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmptyQuestion) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "EMPTY_QUESTION",
					"message": "Question must not be empty",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ANSWER_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"answer":               result.Answer,
			"category":             result.Query.Intent.Category,
			"intent_type":          result.Query.Intent.Type,
			"urgency":              result.Query.Intent.Urgency,
			"confidence":           result.Confidence,
			"sources":              result.Sources,
			"cached":               result.Cached,
			"quality_score":        result.QualityScore,
			"risk_level":           result.RiskLevel,
			"escalate":             result.Escalate,
			"suggested_categories": result.Query.SuggestedCategories,
		},
	})
}

// Analyze handles POST /api/query/analyze
// Returns the query classification only, for routing and analytics.
func (h *QueryHandler) Analyze(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	processed := h.processor.Process(req.Question)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    processed,
	})
}

// CacheStats handles GET /api/cache/stats
func (h *QueryHandler) CacheStats(c *gin.Context) {
	stats, err := h.cache.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STATS_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}

// EvictExpired handles POST /api/cache/evict
// Triggered by an external scheduled job, not by the pipeline itself.
func (h *QueryHandler) EvictExpired(c *gin.Context) {
	count, err := h.cache.EvictExpired(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EVICT_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"evicted": count,
		},
	})
}
