package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/kapu/digital-card-go/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig(t *testing.T, vars map[string]string) *config.Config {
	t.Helper()
	cfg, err := config.Parse(env.Options{Environment: vars})
	require.NoError(t, err)
	return cfg
}

func TestBuildWithDefaults(t *testing.T) {
	c, err := Build(context.Background(), testConfig(t, map[string]string{}), zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "Your Name", c.Profile.Name)
	assert.Equal(t, "memory", c.Cache.Name())
	assert.Nil(t, c.ModelManager)
	assert.False(t, c.Share.SuggestionsEnabled())

	router, err := c.Router()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/vcard", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="Your_Name.vcf"`, rec.Header().Get("Content-Disposition"))
}

func TestBuildRejectsBadQRSettings(t *testing.T) {
	cfg := testConfig(t, map[string]string{})
	cfg.QR.Level = "Z"

	_, err := Build(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestBuildRejectsUnknownLocale(t *testing.T) {
	cfg := testConfig(t, map[string]string{"LOCALE_SECONDARY": "fr"})

	_, err := Build(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestBuildRequiresArguments(t *testing.T) {
	_, err := Build(context.Background(), nil, zap.NewNop())
	assert.Error(t, err)

	_, err = Build(context.Background(), testConfig(t, map[string]string{}), nil)
	assert.Error(t, err)
}

func TestWarmUp(t *testing.T) {
	c, err := Build(context.Background(), testConfig(t, map[string]string{}), zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	report := c.WarmUp(context.Background())
	assert.Equal(t, WarmUpReport{Succeeded: 2, Failed: 0}, report)
}
