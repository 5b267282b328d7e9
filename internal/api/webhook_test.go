package api

import (
	"bytes"         // Request bodies
	"context"       // Contexts for stub calls
	"crypto/hmac"   // Signing test payloads
	"crypto/sha256" // SHA-256 hash
	"encoding/hex"  // Hex encoding of the digest
	"encoding/json" // Response decoding
	"net/http"      // HTTP status codes
	"net/http/httptest"
	"testing" // Test framework
	"time"    // Timestamp parsing and TTLs

	"pawapay_webhook/internal/config"  // Configuration
	"pawapay_webhook/internal/domain"  // Importing domain models
	"pawapay_webhook/internal/ledger"  // Ledger store interface
	"pawapay_webhook/internal/webhook" // Processed cache interface

	"github.com/gin-gonic/gin"            // Gin web framework
	"github.com/stretchr/testify/assert"  // Assertions
	"github.com/stretchr/testify/require" // Hard assertions
)

// stubStore is a single-wallet, single-transaction ledger.Store for
// exercising the HTTP pipeline end to end
type stubStore struct {
	wallet      *domain.Wallet        // The one wallet
	txn         *domain.Transaction   // The one seeded transaction
	events      []domain.WebhookEvent // Recorded events
	settleCalls int                   // Number of settle attempts reaching the store
	failWith    error                 // When set, settle fails with this error
	panicOnFind bool                  // When set, lookups panic to exercise recovery
}

func (s *stubStore) FindTransactionByReference(_ context.Context, referenceID string) (*domain.Transaction, error) {
	if s.panicOnFind {
		panic("store exploded")
	}
	if s.txn == nil || s.txn.ReferenceID != referenceID {
		return nil, ledger.ErrNotFound
	}
	cp := *s.txn
	return &cp, nil
}

func (s *stubStore) SettleTransaction(_ context.Context, txnID, walletID, newStatus, description string, effect ledger.BalanceEffect) error {
	s.settleCalls++
	if s.failWith != nil {
		return s.failWith
	}
	if s.txn.Status != domain.StatusPending {
		return ledger.ErrAlreadySettled
	}
	s.txn.Status = newStatus
	if description != "" {
		s.txn.Description = description
	}
	s.wallet.Balance += effect.BalanceDelta
	s.wallet.PendingBalance -= effect.PendingRelease
	if s.wallet.PendingBalance < 0 {
		s.wallet.PendingBalance = 0
	}
	return nil
}

func (s *stubStore) CreateRefund(_ context.Context, txn *domain.Transaction) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.wallet.Balance += txn.Amount
	return nil
}

func (s *stubStore) CreateReviewItem(_ context.Context, _ *domain.ReviewItem) error { return nil }

func (s *stubStore) RecordEvent(_ context.Context, event *domain.WebhookEvent) error {
	s.events = append(s.events, *event)
	return nil
}

func (s *stubStore) ListReviewItems(_ context.Context, _ bool, _, _ int) ([]domain.ReviewItem, int64, error) {
	return nil, 0, nil
}

func (s *stubStore) ListEvents(_ context.Context, _, _ int) ([]domain.WebhookEvent, int64, error) {
	return s.events, int64(len(s.events)), nil
}

// stubCache is an in-memory ProcessedCache
type stubCache struct {
	seen map[string]bool
}

func (c *stubCache) Seen(_ context.Context, key string) (bool, error) { return c.seen[key], nil }

func (c *stubCache) Mark(_ context.Context, key string, _ time.Duration) error {
	c.seen[key] = true
	return nil
}

// seededStub returns the concrete scenario store: wallet {10000, 5000} with
// pending deposit dep_1 for 5000
func seededStub() *stubStore {
	return &stubStore{
		wallet: &domain.Wallet{ID: "W", Balance: 10000, PendingBalance: 5000},
		txn:    &domain.Transaction{ID: "T", WalletID: "W", ReferenceID: "dep_1", Type: domain.TypeDeposit, Amount: 5000, Status: domain.StatusPending},
	}
}

// newTestRouter wires the handlers the way cmd/server does
func newTestRouter(store ledger.Store, cache webhook.ProcessedCache, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.CustomRecovery(RecoveryHandler))
	r.GET("/health", HealthHandler())
	r.POST("/api/pawapay/webhook", WebhookHandler(store, cache, cfg))
	return r
}

// post delivers a webhook body with an optional signature header
func post(r *gin.Engine, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/pawapay/webhook", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-PawaPay-Signature", signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// sign computes the hex HMAC-SHA256 a genuine delivery would carry
func sign(body, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestHealthHandler(t *testing.T) {
	r := newTestRouter(seededStub(), nil, &config.Config{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, ServiceName, resp["service"])
	// The timestamp is well-formed UTC RFC3339
	_, err := time.Parse(time.RFC3339, resp["timestamp"])
	assert.NoError(t, err)
}

func TestWebhookInvalidSignature(t *testing.T) {
	store := seededStub()
	r := newTestRouter(store, nil, &config.Config{PawaPayToken: "secret"})

	body := `{"depositId":"dep_1","status":"COMPLETED","amount":"5000.00"}`
	w := post(r, body, "deadbeef") // Tampered signature

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	// Rejected before any business logic: zero ledger mutations
	assert.Equal(t, 0, store.settleCalls)
	assert.Equal(t, int64(10000), store.wallet.Balance)
}

func TestWebhookMissingSignatureModes(t *testing.T) {
	body := `{"depositId":"dep_1","status":"COMPLETED","amount":"5000.00"}`

	// Strict mode rejects unsigned deliveries
	store := seededStub()
	r := newTestRouter(store, nil, &config.Config{PawaPayToken: "secret", RequireSignature: true})
	w := post(r, body, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, store.settleCalls)

	// Permissive mode lets unsigned deliveries through
	store = seededStub()
	r = newTestRouter(store, nil, &config.Config{PawaPayToken: "secret"})
	w = post(r, body, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, store.settleCalls)
}

func TestWebhookInvalidJSON(t *testing.T) {
	r := newTestRouter(seededStub(), nil, &config.Config{})
	w := post(r, "{not json", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookUnknownCallbackType(t *testing.T) {
	store := seededStub()
	r := newTestRouter(store, nil, &config.Config{})

	w := post(r, `{"status":"COMPLETED","amount":"5000.00"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	// Unrecognized payloads never touch the ledger
	assert.Equal(t, 0, store.settleCalls)
}

func TestWebhookDepositCompleted(t *testing.T) {
	store := seededStub()
	cfg := &config.Config{PawaPayToken: "secret"}
	r := newTestRouter(store, nil, cfg)

	body := `{"depositId":"dep_1","status":"COMPLETED","amount":"5000.00","currency":"UGX"}`
	w := post(r, body, sign(body, "secret"))

	require.Equal(t, http.StatusOK, w.Code)
	// T becomes completed, W becomes {15000, 0}
	assert.Equal(t, domain.StatusCompleted, store.txn.Status)
	assert.Equal(t, int64(15000), store.wallet.Balance)
	assert.Equal(t, int64(0), store.wallet.PendingBalance)
	// The event row records the applied outcome
	require.Len(t, store.events, 1)
	assert.Equal(t, domain.OutcomeApplied, store.events[0].Outcome)
	assert.Equal(t, "dep_1", store.events[0].ReferenceID)
}

func TestWebhookRedelivery(t *testing.T) {
	store := seededStub()
	cache := &stubCache{seen: make(map[string]bool)}
	r := newTestRouter(store, cache, &config.Config{})

	body := `{"depositId":"dep_1","status":"COMPLETED","amount":"5000.00"}`
	w := post(r, body, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, store.settleCalls)

	// The re-delivery short-circuits on the processed marker
	w = post(r, body, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, store.settleCalls) // No second store round trip
	assert.Equal(t, int64(15000), store.wallet.Balance)
	assert.Equal(t, int64(0), store.wallet.PendingBalance)
}

func TestWebhookDepositFailed(t *testing.T) {
	store := seededStub()
	r := newTestRouter(store, nil, &config.Config{})

	body := `{"depositId":"dep_1","status":"FAILED","amount":"5000.00","reason":"insufficient funds"}`
	w := post(r, body, "")

	require.Equal(t, http.StatusOK, w.Code)
	// T becomes failed with the gateway reason, W becomes {10000, 0}
	assert.Equal(t, domain.StatusFailed, store.txn.Status)
	assert.Equal(t, "insufficient funds", store.txn.Description)
	assert.Equal(t, int64(10000), store.wallet.Balance)
	assert.Equal(t, int64(0), store.wallet.PendingBalance)
}

func TestWebhookUnmatchedReference(t *testing.T) {
	store := seededStub()
	r := newTestRouter(store, nil, &config.Config{})

	w := post(r, `{"depositId":"dep_unknown","status":"COMPLETED","amount":"100"}`, "")

	// Acknowledged so the gateway stops retrying, with a warning payload
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp, "warning")
	// Zero ledger mutations
	assert.Equal(t, 0, store.settleCalls)
	assert.Equal(t, int64(10000), store.wallet.Balance)
	assert.Equal(t, int64(5000), store.wallet.PendingBalance)
}

func TestWebhookStoreFailure(t *testing.T) {
	store := seededStub()
	store.failWith = assert.AnError
	r := newTestRouter(store, nil, &config.Config{})

	w := post(r, `{"depositId":"dep_1","status":"COMPLETED","amount":"5000.00"}`, "")

	// Ledger failures surface as 500 so the gateway retries
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Len(t, store.events, 1)
	assert.Equal(t, domain.OutcomeError, store.events[0].Outcome)
	assert.NotEmpty(t, store.events[0].Error)
}

func TestWebhookPanicRecovery(t *testing.T) {
	store := seededStub()
	store.panicOnFind = true
	r := newTestRouter(store, nil, &config.Config{})

	w := post(r, `{"depositId":"dep_1","status":"COMPLETED","amount":"5000.00"}`, "")

	// A panic is answered with a well-formed JSON 500, not a dropped connection
	require.Equal(t, http.StatusInternalServerError, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])
}
