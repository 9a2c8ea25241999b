// Package mocks provides mock implementations of the core ports for tests.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	nav := mocks.NewMockNavigator(ctrl)
//	nav.EXPECT().CurrentPath().Return("/analysis")
//	nav.EXPECT().Navigate(gomock.Any(), "/login?next=%2Fanalysis")
package mocks

// Generate mock for Navigator interface from internal/core package.
// This creates MockNavigator with methods: Navigate, CurrentPath
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=navigator_mock.go github.com/fortunes/fortunes-web/internal/core Navigator

// Generate mock for Notifier interface from internal/core package.
// This creates MockNotifier with methods: Notify
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=notifier_mock.go github.com/fortunes/fortunes-web/internal/core Notifier

// Generate mock for CacheRepository interface from internal/core package.
// This creates MockCacheRepository with methods: Set, Get, Delete, Health
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cache_repository_mock.go github.com/fortunes/fortunes-web/internal/core CacheRepository
