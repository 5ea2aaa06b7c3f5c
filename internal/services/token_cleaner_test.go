package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStartTokenCleaner(t *testing.T) {
	tokens := new(MockTokenRepository)
	core, logs := observer.New(zap.InfoLevel)
	tokens.On("DeleteExpired", mock.Anything, fixedNow).Return(int64(2), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	services.StartTokenCleaner(ctx, tokens, 10*time.Millisecond, func() time.Time { return fixedNow }, zap.New(core))

	assert.Eventually(t, func() bool {
		return logs.FilterMessage("cleaned expired tokens").Len() > 0
	}, time.Second, 10*time.Millisecond)
}

func TestStartTokenCleaner_ErrorLogged(t *testing.T) {
	tokens := new(MockTokenRepository)
	core, logs := observer.New(zap.ErrorLevel)
	tokens.On("DeleteExpired", mock.Anything, mock.Anything).Return(int64(0), errors.New("db fail"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	services.StartTokenCleaner(ctx, tokens, 10*time.Millisecond, nil, zap.New(core))

	assert.Eventually(t, func() bool {
		return logs.FilterMessage("failed to clean expired tokens").Len() > 0
	}, time.Second, 10*time.Millisecond)
}
