package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"pawapay_webhook/internal/config" // Configuration
	"pawapay_webhook/internal/domain" // Importing domain models
	"pawapay_webhook/internal/ledger" // Ledger store interface
	"pawapay_webhook/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"golang.org/x/crypto/bcrypt"   // Password hashing
)

// LoginRequest is the ops console login body
type LoginRequest struct {
	Password string `json:"password" binding:"required"` // Password must be provided
}

// AuthResponse carries the issued ops token
type AuthResponse struct {
	Token string `json:"token"` // JWT token
}

// LoginHandler checks the ops password against the configured bcrypt hash
// and issues a JWT carrying the ops role
func LoginHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// No hash configured means the ops console is disabled
		if cfg.OpsPasswordHash == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Ops console disabled"})
			return
		}
		// Compare provided password with the configured hash
		if err := bcrypt.CompareHashAndPassword([]byte(cfg.OpsPasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Generate JWT token with the ops role
		token, err := utils.GenerateJWT("ops", cfg.JWTSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}

// pageParams extracts page and page_size query parameters with bounds
func pageParams(c *gin.Context) (page, pageSize int) {
	page = 1      // Default page
	pageSize = 20 // Default page size
	// If page exists in query
	if p := c.Query("page"); p != "" {
		// Convert page to integer
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	// If page_size exists in query
	if ps := c.Query("page_size"); ps != "" {
		// Convert page_size to integer
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v // Set page size if valid
		}
	}
	return page, pageSize
}

// ListReviewItemsHandler returns refunds awaiting manual reconciliation
func ListReviewItemsHandler(store ledger.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize := pageParams(c)                      // Pagination parameters
		openOnly := c.DefaultQuery("open", "true") == "true" // Default to unresolved items
		ctx := context.Background()                          // Context for Redis operations
		// Cache key from the query parameters
		cacheKey := "ops:reviews:open=" + strconv.FormatBool(openOnly) +
			":page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize)
		var cached struct {
			Items      []domain.ReviewItem `json:"items"`       // Review items
			Page       int                 `json:"page"`        // Current page
			PageSize   int                 `json:"page_size"`   // Page size
			Total      int64               `json:"total"`       // Total items
			TotalPages int                 `json:"total_pages"` // Total pages
		}
		// Try to get from cache
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"items":       cached.Items,      // Cached review items
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total items
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}
		offset := (page - 1) * pageSize // Calculate offset
		items, total, err := store.ListReviewItems(c.Request.Context(), openOnly, offset, pageSize)
		if err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch review items"})
			return
		}
		// Calculate total pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		resp := gin.H{
			"items":       items,      // Review items
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total items
			"total_pages": totalPages, // Total pages
			"cached":      false,      // Not from cache
		}
		// Cache the result until the TTL expires
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, utils.OpsCacheTTL)
		c.JSON(http.StatusOK, resp) // Return review items
	}
}

// ListEventsHandler returns recent webhook events for operator diagnosis
func ListEventsHandler(store ledger.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize := pageParams(c) // Pagination parameters
		ctx := context.Background()     // Context for Redis operations
		// Cache key from the pagination parameters
		cacheKey := "ops:events:page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize)
		var cached struct {
			Events     []domain.WebhookEvent `json:"events"`      // Webhook events
			Page       int                   `json:"page"`        // Current page
			PageSize   int                   `json:"page_size"`   // Page size
			Total      int64                 `json:"total"`       // Total events
			TotalPages int                   `json:"total_pages"` // Total pages
		}
		// Try to get from cache
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"events":      cached.Events,     // Cached events
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total events
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}
		offset := (page - 1) * pageSize // Calculate offset
		events, total, err := store.ListEvents(c.Request.Context(), offset, pageSize)
		if err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
			return
		}
		// Calculate total pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		resp := gin.H{
			"events":      events,     // Webhook events
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total events
			"total_pages": totalPages, // Total pages
			"cached":      false,      // Not from cache
		}
		// Cache the result until the TTL expires
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, utils.OpsCacheTTL)
		c.JSON(http.StatusOK, resp) // Return events
	}
}
