package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JackaZhai/nano-banana/internal/repository"
)

type fakeActiveKey struct {
	value string
}

func (f *fakeActiveKey) ActiveValue(ctx context.Context) (string, error) {
	return f.value, nil
}

func TestUsageServiceProfile(t *testing.T) {
	repo := repository.NewUsageRepository(newTestDB(t))
	svc := NewUsageService(repo, &fakeActiveKey{value: "sk-1234567890"})
	ctx := context.Background()

	profile, err := svc.Profile(ctx)
	require.NoError(t, err)
	assert.True(t, profile.HasKey)
	assert.Equal(t, "sk-1...7890", profile.ActiveKeyMask)
	assert.Zero(t, profile.Usage.TotalCalls)
	assert.Nil(t, profile.Usage.LastUsedAt)

	require.NoError(t, svc.RecordUsage(ctx, time.Now()))
	require.NoError(t, svc.RecordUsage(ctx, time.Now()))

	profile, err = svc.Profile(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, profile.Usage.TotalCalls)
	assert.NotNil(t, profile.Usage.LastUsedAt)
}

func TestUsageServiceProfileWithoutKey(t *testing.T) {
	svc := NewUsageService(repository.NewUsageRepository(newTestDB(t)), &fakeActiveKey{})

	profile, err := svc.Profile(context.Background())
	require.NoError(t, err)
	assert.False(t, profile.HasKey)
	assert.Empty(t, profile.ActiveKeyMask)
}
