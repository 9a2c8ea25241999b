package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fortunes/fortunes-web/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestJobStatusCache_Store(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		body   string
		setup  func(*mocks.MockCacheRepository)
		stored bool
		err    bool
	}{
		{
			name:  "running status is not cached",
			body:  `{"status":"JobStatus.running","result":null}`,
			setup: func(*mocks.MockCacheRepository) {},
		},
		{
			name:  "invalid json is ignored",
			body:  `not json`,
			setup: func(*mocks.MockCacheRepository) {},
		},
		{
			name: "complete status is cached with ttl",
			body: `{"status":"JobStatus.complete","result":{"id":7}}`,
			setup: func(cache *mocks.MockCacheRepository) {
				cache.EXPECT().
					Set(gomock.Any(), "job:42", []byte(`{"status":"JobStatus.complete","result":{"id":7}}`), 2*time.Minute).
					Return(nil)
			},
			stored: true,
		},
		{
			name: "cache failure surfaces",
			body: `{"status":"complete"}`,
			setup: func(cache *mocks.MockCacheRepository) {
				cache.EXPECT().Set(gomock.Any(), "job:42", gomock.Any(), 2*time.Minute).Return(errors.New("down"))
			},
			err: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockCacheRepository(ctrl)
			tt.setup(repo)

			c := NewJobStatusCache(JobStatusCacheOptions{Cache: repo, TTL: 2 * time.Minute, Prefix: "job:"})
			stored, err := c.Store(context.Background(), "42", []byte(tt.body))
			if tt.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.stored, stored)
		})
	}
}

func TestJobStatusCache_Lookup(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockCacheRepository(ctrl)
	c := NewJobStatusCache(JobStatusCacheOptions{Cache: repo, Prefix: "job:"})
	ctx := context.Background()

	repo.EXPECT().Get(gomock.Any(), "job:1").Return([]byte(`{"status":"complete"}`), nil)
	assert.Equal(t, []byte(`{"status":"complete"}`), c.Lookup(ctx, "1"))

	repo.EXPECT().Get(gomock.Any(), "job:2").Return(nil, errors.New("timeout"))
	assert.Nil(t, c.Lookup(ctx, "2"))

	assert.Nil(t, c.Lookup(ctx, ""))
}

func TestJobStatusCache_NilSafe(t *testing.T) {
	var c *JobStatusCache
	ctx := context.Background()
	assert.Nil(t, c.Lookup(ctx, "1"))
	stored, err := c.Store(ctx, "1", []byte(`{"status":"complete"}`))
	require.NoError(t, err)
	assert.False(t, stored)
	require.NoError(t, c.Invalidate(ctx, "1"))
	require.NoError(t, c.Health(ctx))
}

func TestNewJobStatusCache_DefaultTTL(t *testing.T) {
	c := NewJobStatusCache(JobStatusCacheOptions{})
	assert.Equal(t, DefaultJobStatusCacheTTL, c.ttl)
}
