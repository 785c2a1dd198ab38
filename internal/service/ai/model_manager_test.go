package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kapu/digital-card-go/internal/util"
	carderrors "github.com/kapu/digital-card-go/pkg/errors"
)

type fakeProvider struct {
	name  string
	text  string
	err   error
	calls int
	ping  bool
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(_ context.Context, _ string, _ ModelPreset, opts *GenerateOptions) (ProviderResult, error) {
	f.calls++
	if opts == nil || !opts.JSONMode {
		return ProviderResult{}, errors.New("json mode not requested")
	}
	if f.err != nil {
		return ProviderResult{}, f.err
	}
	return ProviderResult{Text: f.text, Model: f.name + "-model", PromptTokens: 12, OutputTokens: 7}, nil
}

func (f *fakeProvider) Ping(context.Context) bool { return f.ping }

type payload struct {
	Value string `json:"value"`
}

func TestGenerateJSONPrimary(t *testing.T) {
	primary := &fakeProvider{name: "primary", text: "```json\n{\"value\":\"ok\"}\n```"}
	mm := NewModelManagerWithProviders(primary, nil, nil)

	var out payload
	meta, err := mm.GenerateJSON(context.Background(), "p", PresetPrecise, &out, nil)
	require.NoError(t, err)

	assert.Equal(t, "ok", out.Value)
	assert.Equal(t, "primary", meta.Provider)
	assert.False(t, meta.UsedFallback)
	assert.Equal(t, int64(12), meta.PromptTokens)
	assert.Equal(t, int64(7), meta.OutputTokens)
}

func TestGenerateJSONFallsBack(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: errors.New("503 Service Unavailable")}
	fallback := &fakeProvider{name: "fallback", text: `{"value":"fb"}`}
	mm := NewModelManagerWithProviders(primary, fallback, nil)

	var out payload
	meta, err := mm.GenerateJSON(context.Background(), "p", PresetPrecise, &out, nil)
	require.NoError(t, err)

	assert.Equal(t, "fb", out.Value)
	assert.True(t, meta.UsedFallback)
	assert.Equal(t, 0, mm.GetCircuitStatus().FailureCount)
}

func TestGenerateJSONOpensCircuit(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: errors.New("503 Service Unavailable")}
	mm := NewModelManagerWithProviders(primary, nil, nil)

	for i := 0; i < 3; i++ {
		_, err := mm.GenerateJSON(context.Background(), "p", PresetPrecise, &payload{}, nil)
		require.Error(t, err)
		var svcErr *carderrors.ServiceError
		assert.ErrorAs(t, err, &svcErr)
	}

	assert.Equal(t, util.CircuitStateOpen, mm.GetCircuitStatus().State)

	_, err := mm.GenerateJSON(context.Background(), "p", PresetPrecise, &payload{}, nil)
	require.Error(t, err)
	assert.Equal(t, 3, primary.calls)

	mm.ResetCircuit()
	assert.Equal(t, util.CircuitStateClosed, mm.GetCircuitStatus().State)
}

func TestGenerateJSONClientErrorDoesNotTrip(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: errors.New("400 Bad Request")}
	mm := NewModelManagerWithProviders(primary, nil, nil)

	for i := 0; i < 5; i++ {
		_, err := mm.GenerateJSON(context.Background(), "p", PresetPrecise, &payload{}, nil)
		require.Error(t, err)
	}

	assert.Equal(t, util.CircuitStateClosed, mm.GetCircuitStatus().State)
	assert.Equal(t, 5, primary.calls)
}

func TestGenerateJSONInvalidJSON(t *testing.T) {
	mm := NewModelManagerWithProviders(&fakeProvider{name: "primary", text: "not json"}, nil, nil)

	_, err := mm.GenerateJSON(context.Background(), "p", PresetPrecise, &payload{}, nil)
	assert.ErrorContains(t, err, "invalid JSON from primary")
}

func TestRateLimitDetection(t *testing.T) {
	mm := NewModelManagerWithProviders(&fakeProvider{name: "p"}, nil, nil)

	assert.True(t, mm.isRateLimitError(errors.New(`{"error":{"code":429}}`)))
	assert.True(t, mm.isServiceFailure(errors.New("context deadline exceeded")))
	assert.False(t, mm.isServiceFailure(errors.New(`{"code":404}`)))
}

func TestParsePreset(t *testing.T) {
	assert.Equal(t, PresetPrecise, ParsePreset("precise"))
	assert.Equal(t, PresetBalanced, ParsePreset("whatever"))
}
