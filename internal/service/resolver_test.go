package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rdrlink/shortener/internal/models"
	"github.com/rdrlink/shortener/internal/repository"
	"github.com/rdrlink/shortener/internal/service/mocks"
)

func TestResolverExpiry(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	tests := []struct {
		name      string
		expiresAt *time.Time
		wantErr   error
	}{
		{"no expiry", nil, nil},
		{"future expiry", &future, nil},
		{"past expiry", &past, ErrLinkExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			links := mocks.NewMockLinkStore(ctrl)
			link := &models.Link{ID: uuid.New(), ShortCode: "abc", Domain: testPrimaryDomain, URL: "https://a.example", ExpiresAt: tt.expiresAt}
			links.EXPECT().FindByCode(gomock.Any(), "abc", []string{testPrimaryDomain}).Return(link, nil)

			r := NewResolver(links, nil, testPrimaryDomain, zaptest.NewLogger(t))
			r.now = func() time.Time { return now }

			got, err := r.Resolve(context.Background(), "abc", testPrimaryDomain)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, link.ID, got.ID)
		})
	}
}

func TestResolverNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	links := mocks.NewMockLinkStore(ctrl)
	links.EXPECT().FindByCode(gomock.Any(), "nope", gomock.Any()).Return(nil, repository.ErrNotFound)

	r := NewResolver(links, nil, testPrimaryDomain, zaptest.NewLogger(t))
	_, err := r.Resolve(context.Background(), "nope", testPrimaryDomain)
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestResolverStorageFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	links := mocks.NewMockLinkStore(ctrl)
	links.EXPECT().FindByCode(gomock.Any(), "abc", gomock.Any()).Return(nil, errors.New("connection refused"))

	r := NewResolver(links, nil, testPrimaryDomain, zaptest.NewLogger(t))
	_, err := r.Resolve(context.Background(), "abc", testPrimaryDomain)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLinkNotFound)
}

func TestResolverFallsBackToPrimaryDomain(t *testing.T) {
	ctrl := gomock.NewController(t)
	links := mocks.NewMockLinkStore(ctrl)
	link := &models.Link{ID: uuid.New(), ShortCode: "abc", Domain: testPrimaryDomain, URL: "https://a.example"}
	links.EXPECT().FindByCode(gomock.Any(), "abc", []string{"go.example", testPrimaryDomain}).Return(link, nil)

	r := NewResolver(links, nil, testPrimaryDomain, zaptest.NewLogger(t))
	got, err := r.Resolve(context.Background(), "abc", "go.example")
	require.NoError(t, err)
	assert.Equal(t, link.ID, got.ID)
}

func TestResolverUsesCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	links := mocks.NewMockLinkStore(ctrl)
	cache := mocks.NewMockLinkCache(ctrl)
	link := &models.Link{ID: uuid.New(), ShortCode: "abc", Domain: testPrimaryDomain, URL: "https://a.example"}

	gomock.InOrder(
		cache.EXPECT().Get(gomock.Any(), testPrimaryDomain, "abc").Return(nil, false, nil),
		links.EXPECT().FindByCode(gomock.Any(), "abc", []string{testPrimaryDomain}).Return(link, nil),
		cache.EXPECT().Set(gomock.Any(), link).Return(nil),
		cache.EXPECT().Get(gomock.Any(), testPrimaryDomain, "abc").Return(link, true, nil),
	)

	r := NewResolver(links, cache, testPrimaryDomain, zaptest.NewLogger(t))
	for i := 0; i < 2; i++ {
		got, err := r.Resolve(context.Background(), "abc", testPrimaryDomain)
		require.NoError(t, err)
		assert.Equal(t, link.ID, got.ID)
	}
}

func TestResolverCachedLinkStillExpires(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockLinkCache(ctrl)
	past := time.Now().Add(-time.Second)
	cache.EXPECT().Get(gomock.Any(), testPrimaryDomain, "abc").
		Return(&models.Link{ShortCode: "abc", Domain: testPrimaryDomain, ExpiresAt: &past}, true, nil)

	r := NewResolver(mocks.NewMockLinkStore(ctrl), cache, testPrimaryDomain, zaptest.NewLogger(t))
	_, err := r.Resolve(context.Background(), "abc", testPrimaryDomain)
	assert.ErrorIs(t, err, ErrLinkExpired)
}

func TestResolverSurvivesCacheOutage(t *testing.T) {
	ctrl := gomock.NewController(t)
	links := mocks.NewMockLinkStore(ctrl)
	cache := mocks.NewMockLinkCache(ctrl)
	link := &models.Link{ID: uuid.New(), ShortCode: "abc", Domain: testPrimaryDomain, URL: "https://a.example"}

	cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, false, errors.New("redis down"))
	links.EXPECT().FindByCode(gomock.Any(), "abc", gomock.Any()).Return(link, nil)
	cache.EXPECT().Set(gomock.Any(), link).Return(errors.New("redis down"))

	r := NewResolver(links, cache, testPrimaryDomain, zaptest.NewLogger(t))
	got, err := r.Resolve(context.Background(), "abc", testPrimaryDomain)
	require.NoError(t, err)
	assert.Equal(t, link.ID, got.ID)
}

func TestResolverCachesPrimaryFallbackForCustomHost(t *testing.T) {
	ctrl := gomock.NewController(t)
	links := mocks.NewMockLinkStore(ctrl)
	link := &models.Link{ID: uuid.New(), ShortCode: "abc", Domain: testPrimaryDomain, URL: "https://a.example"}
	links.EXPECT().FindByCode(gomock.Any(), "abc", []string{"go.example", testPrimaryDomain}).Return(link, nil).Times(1)

	r := NewResolver(links, newMemoryLinkCache(), testPrimaryDomain, zaptest.NewLogger(t))
	for i := 0; i < 5; i++ {
		got, err := r.Resolve(context.Background(), "abc", "go.example")
		require.NoError(t, err)
		assert.Equal(t, link.ID, got.ID)
	}
}

func TestResolverRequestDomainWinsOverCachedPrimary(t *testing.T) {
	ctrl := gomock.NewController(t)
	links := mocks.NewMockLinkStore(ctrl)
	primary := &models.Link{ID: uuid.New(), ShortCode: "abc", Domain: testPrimaryDomain, URL: "https://primary.example"}
	custom := &models.Link{ID: uuid.New(), ShortCode: "abc", Domain: "go.example", URL: "https://custom.example"}

	cache := newMemoryLinkCache()
	require.NoError(t, cache.Set(context.Background(), primary))

	// go.example has never been looked up, so the primary entry alone
	// must not answer for it.
	links.EXPECT().FindByCode(gomock.Any(), "abc", []string{"go.example", testPrimaryDomain}).Return(custom, nil)

	r := NewResolver(links, cache, testPrimaryDomain, zaptest.NewLogger(t))
	got, err := r.Resolve(context.Background(), "abc", "go.example")
	require.NoError(t, err)
	assert.Equal(t, custom.ID, got.ID)
}

func TestResolverInvalidateDropsAbsentMarker(t *testing.T) {
	ctrl := gomock.NewController(t)
	links := mocks.NewMockLinkStore(ctrl)
	primary := &models.Link{ID: uuid.New(), ShortCode: "abc", Domain: testPrimaryDomain, URL: "https://primary.example"}
	custom := &models.Link{ID: uuid.New(), ShortCode: "abc", Domain: "go.example", URL: "https://custom.example"}

	gomock.InOrder(
		links.EXPECT().FindByCode(gomock.Any(), "abc", gomock.Any()).Return(primary, nil),
		links.EXPECT().FindByCode(gomock.Any(), "abc", gomock.Any()).Return(custom, nil),
	)

	r := NewResolver(links, newMemoryLinkCache(), testPrimaryDomain, zaptest.NewLogger(t))
	got, err := r.Resolve(context.Background(), "abc", "go.example")
	require.NoError(t, err)
	assert.Equal(t, primary.ID, got.ID)

	// A link created on go.example evicts the marker.
	r.Invalidate(context.Background(), custom)

	got, err = r.Resolve(context.Background(), "abc", "go.example")
	require.NoError(t, err)
	assert.Equal(t, custom.ID, got.ID)
}
