package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeProjectName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Shop Backend", "shop-backend"},
		{"version stripped", "Order System v2.0", "order-system"},
		{"bare version token", "platform v3", "platform"},
		{"domain terms", "电商管理系统", "management-system"},
		{"mixed terms", "订单小程序", "miniapp"},
		{"punctuation collapsed", "my___app!!name", "my-app-name"},
		{"leading digit", "3d-viewer", "app-3d-viewer"},
		{"empty", "", FallbackProjectName},
		{"only symbols", "!!!", FallbackProjectName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeProjectName(tt.in))
		})
	}
}

func TestSanitizeProjectNameLengthCap(t *testing.T) {
	long := "very-long-project-name-with-many-words-that-never-seems-to-end"
	got := SanitizeProjectName(long)

	assert.LessOrEqual(t, len(got), 40)
	// Cut happens at a word boundary, never mid-word.
	assert.NotEqual(t, "-", got[len(got)-1:])
	assert.Equal(t, "very-long-project-name-with-many-words", got)
}

func TestProjectNameFromRemote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com/org/shop-backend.git", "shop-backend"},
		{"git@example.com:org/billing.git", "billing"},
		{"https://example.com/org/app/", "app"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ProjectNameFromRemote(tt.in), "input %q", tt.in)
	}
}

func TestDeriveProjectNamePrecedence(t *testing.T) {
	// Explicit beats remote beats document name.
	assert.Equal(t, "explicit", DeriveProjectName("Explicit", "https://h/o/remote.git", "Doc Name"))
	assert.Equal(t, "remote", DeriveProjectName("", "https://h/o/remote.git", "Doc Name"))
	assert.Equal(t, "doc-name", DeriveProjectName("", "", "Doc Name"))
	assert.Equal(t, FallbackProjectName, DeriveProjectName("", "", ""))
}

func TestDeriveBranchName(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "hotfix/urgent", DeriveBranchName("hotfix/urgent", "shop", now))
	assert.Equal(t, "build/20260823-shop", DeriveBranchName("", "shop", now))

	long := DeriveBranchName("", "a-very-long-project-name-that-exceeds-every-reasonable-limit", now)
	assert.LessOrEqual(t, len(long), 60)
}
