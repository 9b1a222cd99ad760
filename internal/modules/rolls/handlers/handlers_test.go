package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optionsentry/optionsentry/internal/config"
	"github.com/optionsentry/optionsentry/internal/domain"
	"github.com/optionsentry/optionsentry/internal/modules/rolls"
)

func fp(v float64) *float64 { return &v }

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()
	calc := rolls.NewCalculator(config.RollConfig{IdealDTE: 35, MinDTE: 25, MaxDTE: 45}, zerolog.Nop())
	r := chi.NewRouter()
	NewHandler(calc, zerolog.Nop()).RegisterRoutes(r)
	return r
}

func postCalculate(t *testing.T, router chi.Router, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rolls/calculate", bytes.NewReader(data)))
	return rec
}

func TestHandleCalculate(t *testing.T) {
	router := newTestRouter(t)

	rec := postCalculate(t, router, map[string]interface{}{
		"position": domain.Position{
			ID: "p1", Symbol: "p1", Underlying: "XYZ",
			Kind: domain.AssetKindOption, OptionType: domain.OptionTypePut,
			Strike: fp(88), UnderlyingPrice: fp(90), Quantity: -1,
			Expiry: "2026-08-11",
		},
		"alert": domain.Alert{Kind: domain.AlertMoneyness, Level: domain.AlertLevelRed},
		"as_of": "2026-08-01",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var target domain.RollTarget
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &target))
	assert.Equal(t, 25, target.TargetDTE, "10 DTE pulls up to the minimum")
	require.NotNil(t, target.TargetStrike)
	assert.InDelta(t, 80.0, *target.TargetStrike, 1e-9)
	assert.False(t, target.UsedChainData)
}

func TestHandleCalculate_WithChainData(t *testing.T) {
	router := newTestRouter(t)

	rec := postCalculate(t, router, map[string]interface{}{
		"position": domain.Position{
			ID: "p1", Symbol: "p1",
			Kind: domain.AssetKindOption, OptionType: domain.OptionTypePut,
			Strike: fp(95), UnderlyingPrice: fp(100), Quantity: -1,
		},
		"alert":              domain.Alert{Kind: domain.AlertDTEWarning},
		"available_expiries": []string{"2026-09-04", "2026-09-18"},
		"as_of":              "2026-08-01",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var target domain.RollTarget
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &target))
	assert.Equal(t, "2026-09-04", target.TargetExpiry)
	assert.True(t, target.UsedChainData)
}

func TestHandleCalculate_Validation(t *testing.T) {
	router := newTestRouter(t)

	// Missing symbol.
	rec := postCalculate(t, router, map[string]interface{}{
		"alert": domain.Alert{Kind: domain.AlertMoneyness},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "position.symbol")

	// Missing alert kind.
	rec = postCalculate(t, router, map[string]interface{}{
		"position": domain.Position{ID: "p1", Symbol: "p1"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "alert.kind")

	// Bad as_of format.
	rec = postCalculate(t, router, map[string]interface{}{
		"position": domain.Position{ID: "p1", Symbol: "p1"},
		"alert":    domain.Alert{Kind: domain.AlertMoneyness},
		"as_of":    "08/01/2026",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCalculate_MalformedBody(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rolls/calculate", bytes.NewReader([]byte("{not json"))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
