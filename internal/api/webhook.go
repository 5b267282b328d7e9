package api

import (
	"bytes"         // Reader over the raw body for JSON decoding
	"encoding/json" // JSON decoding with UseNumber
	"io"            // Raw body reading
	"net/http"      // HTTP status codes
	"time"          // Timestamps and TTLs

	"pawapay_webhook/internal/config"  // Configuration
	"pawapay_webhook/internal/domain"  // Importing domain models
	"pawapay_webhook/internal/ledger"  // Ledger store interface
	"pawapay_webhook/internal/webhook" // Signature, classification, reconciliation

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/google/uuid"     // UUIDs for event rows
	"github.com/sirupsen/logrus" // Logging library
)

// ServiceName is the identity reported by the health endpoint
const ServiceName = "PawaPay Webhook Handler"

// processedTTL bounds how long a delivery is remembered in the duplicate fast-path
const processedTTL = 24 * time.Hour

// HealthHandler reports service identity and the current UTC time; it never fails
func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",                             // Liveness indicator
			"service":   ServiceName,                           // Service identity
			"timestamp": time.Now().UTC().Format(time.RFC3339), // Current UTC timestamp
		})
	}
}

// WebhookHandler runs the full callback pipeline: raw body, signature,
// parse, classify, reconcile, respond. cache may be nil, in which case the
// duplicate fast-path is skipped and every delivery hits the store's
// conditional transition directly.
func WebhookHandler(store ledger.Store, cache webhook.ProcessedCache, cfg *config.Config) gin.HandlerFunc {
	reconciler := webhook.NewReconciler(store) // One reconciler serves all families
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body) // Raw body, needed verbatim for the HMAC
		if err != nil {
			// If the body cannot be read, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
			return
		}
		// Verify the signature before any business logic runs
		signature := c.GetHeader("X-PawaPay-Signature")
		if !webhook.VerifySignature(body, signature, cfg.PawaPayToken, cfg.RequireSignature) {
			logrus.Warn("Invalid webhook signature") // Log the rejected delivery
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
			return
		}
		// Decode with UseNumber so amounts keep their exact decimal form
		var data map[string]any
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(&data); err != nil {
			// Unparseable JSON is a client error, retrying will not help
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
			return
		}
		cb, err := webhook.Classify(data, cfg.CurrencyExponent) // Determine the event family
		if err != nil {
			// Log the unrecognized payload for operator review
			logrus.WithFields(logrus.Fields{
				"error": err.Error(), // Classification error
			}).Warn("Unrecognized webhook payload")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown callback type"})
			return
		}
		ctx := c.Request.Context() // Request-scoped context for store and cache calls
		// Duplicate fast-path: acknowledge remembered deliveries without touching the store
		if cache != nil {
			if seen, err := cache.Seen(ctx, cb.DedupeKey()); err == nil && seen {
				c.JSON(http.StatusOK, gin.H{"success": true, "message": "Callback already processed"})
				return
			}
		}
		outcome, applyErr := reconciler.Apply(ctx, cb) // Reconcile against the ledger
		// Record the event row for operator diagnosis, best effort
		event := &domain.WebhookEvent{
			ID:            uuid.NewString(),  // Fresh event row id
			Family:        string(cb.Family), // Callback family
			ReferenceID:   cb.ReferenceID,    // Gateway reference id
			GatewayStatus: cb.Status,         // Status as reported
			Outcome:       outcome,           // Processing outcome
		}
		if applyErr != nil {
			event.Error = applyErr.Error() // Carry the failure text
		}
		if err := store.RecordEvent(ctx, event); err != nil {
			// Event logging must never fail the callback itself
			logrus.WithFields(logrus.Fields{
				"reference_id": cb.ReferenceID, // Gateway reference id
				"error":        err.Error(),    // Record failure
			}).Warn("Failed to record webhook event")
		}
		// A ledger failure is surfaced as 500 so the gateway retries
		if applyErr != nil {
			logrus.WithFields(logrus.Fields{
				"family":       cb.Family,        // Callback family
				"reference_id": cb.ReferenceID,   // Gateway reference id
				"error":        applyErr.Error(), // Mutation failure
			}).Error("Webhook processing failed") // Log the failed mutation
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process callback"})
			return
		}
		// Map the outcome to the acknowledgement body
		switch outcome {
		case domain.OutcomeNotFound:
			// Not our transaction, or not yet persisted; retrying will not help
			c.JSON(http.StatusOK, gin.H{"warning": "Transaction not found"})
		case domain.OutcomeNeedsReview:
			// Acknowledged, but flagged for manual reconciliation
			c.JSON(http.StatusOK, gin.H{"warning": "Refund recorded for manual review"})
		default:
			// Remember the terminal delivery so re-deliveries short-circuit
			if cache != nil && (outcome == domain.OutcomeApplied || outcome == domain.OutcomeDuplicate) {
				if err := cache.Mark(ctx, cb.DedupeKey(), processedTTL); err != nil {
					logrus.WithFields(logrus.Fields{
						"reference_id": cb.ReferenceID, // Gateway reference id
						"error":        err.Error(),    // Cache failure, harmless
					}).Warn("Failed to mark callback processed")
				}
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "message": callbackMessage(cb)})
		}
	}
}

// callbackMessage mirrors the gateway's status back in the acknowledgement
func callbackMessage(cb *webhook.Callback) string {
	return string(cb.Family) + " callback processed (" + cb.Status + ")"
}

// RecoveryHandler turns a handler panic into a well-formed JSON 500 so the
// gateway retries instead of seeing a dropped connection
func RecoveryHandler(c *gin.Context, recovered any) {
	logrus.WithFields(logrus.Fields{
		"panic": recovered,          // Recovered panic value
		"path":  c.Request.URL.Path, // Offending route
	}).Error("Recovered from panic") // Log the panic
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
