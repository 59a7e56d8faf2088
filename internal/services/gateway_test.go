package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-structurer/internal/logging"
)

func TestGatewaySentinelsShareBase(t *testing.T) {
	for _, err := range []error{ErrGatewayTimeout, ErrGatewayUnavailable, ErrGatewayQuotaExceeded} {
		assert.ErrorIs(t, err, ErrGateway)
	}
	assert.NotErrorIs(t, ErrGatewayTimeout, ErrGatewayUnavailable)
}

func TestWithLimitsPassesThroughResult(t *testing.T) {
	fake := &fakeGateway{out: `{"name": "Jane"}`}
	gw := WithLimits(fake, time.Second, 0, logging.Discard())

	out, err := gw.Extract(context.Background(), "resume text")
	require.NoError(t, err)
	assert.Equal(t, `{"name": "Jane"}`, out)
	assert.Equal(t, []string{"resume text"}, fake.inputs)
	assert.Equal(t, "fake", gw.Name())
}

func TestWithLimitsTimesOut(t *testing.T) {
	fake := &fakeGateway{block: true}
	gw := WithLimits(fake, 20*time.Millisecond, 0, logging.Discard())

	_, err := gw.Extract(context.Background(), "text")
	assert.ErrorIs(t, err, ErrGatewayTimeout)
	assert.Equal(t, 1, fake.Calls())
}

func TestWithLimitsKeepsProviderClassification(t *testing.T) {
	fake := &fakeGateway{err: fmt.Errorf("%w: 429 from provider", ErrGatewayQuotaExceeded)}
	gw := WithLimits(fake, time.Second, 0, logging.Discard())

	_, err := gw.Extract(context.Background(), "text")
	assert.ErrorIs(t, err, ErrGatewayQuotaExceeded)
	assert.NotErrorIs(t, err, ErrGatewayUnavailable)
}

func TestWithLimitsClassifiesUnknownErrorsAsUnavailable(t *testing.T) {
	fake := &fakeGateway{err: errors.New("connection refused")}
	gw := WithLimits(fake, time.Second, 0, logging.Discard())

	_, err := gw.Extract(context.Background(), "text")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1, fake.Calls(), "gateway calls are never retried")
}

func TestWithLimitsRateLimitCountsAgainstTimeout(t *testing.T) {
	fake := &fakeGateway{out: "{}"}
	gw := WithLimits(fake, 50*time.Millisecond, 1, logging.Discard())

	_, err := gw.Extract(context.Background(), "first")
	require.NoError(t, err)

	// the next token is a minute away
	_, err = gw.Extract(context.Background(), "second")
	assert.ErrorIs(t, err, ErrGatewayTimeout)
	assert.Equal(t, 1, fake.Calls())
}

func TestWithLimitsCanceledWhileWaiting(t *testing.T) {
	fake := &fakeGateway{out: "{}"}
	gw := WithLimits(fake, time.Second, 1, logging.Discard())

	_, err := gw.Extract(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = gw.Extract(ctx, "second")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestClassifyStatus(t *testing.T) {
	cause := errors.New("upstream said no")
	assert.ErrorIs(t, classifyStatus(429, cause), ErrGatewayQuotaExceeded)
	assert.ErrorIs(t, classifyStatus(408, cause), ErrGatewayTimeout)
	assert.ErrorIs(t, classifyStatus(504, cause), ErrGatewayTimeout)
	assert.ErrorIs(t, classifyStatus(500, cause), ErrGatewayUnavailable)
	assert.ErrorIs(t, classifyStatus(401, cause), ErrGatewayUnavailable)
}

func TestBuildExtractionPrompt(t *testing.T) {
	prompt := BuildExtractionPrompt("Jane Doe\nEngineer at Acme")

	assert.True(t, strings.HasSuffix(prompt, "Resume Text:\nJane Doe\nEngineer at Acme"))
	for _, want := range []string{`"contact"`, `"technical_skills"`, `"work_experience"`, "Return ONLY valid JSON"} {
		assert.Contains(t, prompt, want)
	}
}
