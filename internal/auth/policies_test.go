//go:build unit

package auth

import (
	"testing"

	"go-news-app/internal/logger"
)

func TestDefaultPolicies(t *testing.T) {
	e, err := NewEnforcerWithAdapter("../../auth_model.conf", nil)
	if err != nil {
		t.Fatalf("failed to create enforcer: %v", err)
	}
	SeedDefaultPolicies(e, logger.Nop())
	// Seeding twice must not fail or duplicate.
	SeedDefaultPolicies(e, logger.Nop())
	GrantEditors(e, []string{"editor-sub", ""}, logger.Nop())
	if err := EnsureReader(e, "reader-sub"); err != nil {
		t.Fatal(err)
	}
	if err := EnsureReader(e, "editor-sub"); err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		sub, obj, act string
		want          bool
	}{
		{RoleAnonymous, "/", "GET", true},
		{RoleAnonymous, "/articles/42", "GET", true},
		{RoleAnonymous, "/articles/42/market-update-q3", "GET", true},
		{RoleAnonymous, "/media/article-images/x.png", "GET", true},
		{RoleAnonymous, "/admin/articles", "GET", false},
		{RoleAnonymous, "/auth/logout", "GET", false},
		{"reader-sub", "/articles/42", "GET", true},
		{"reader-sub", "/auth/logout", "GET", true},
		{"reader-sub", "/admin/articles", "POST", false},
		{"editor-sub", "/admin/articles", "POST", true},
		{"editor-sub", "/admin/articles/42/purge", "POST", true},
		{"editor-sub", "/sitemap.xml", "GET", true},
		{"editor-sub", "/admin/articles", "DELETE", false},
	}
	for _, tc := range testCases {
		got, err := e.Enforce(tc.sub, tc.obj, tc.act)
		if err != nil {
			t.Fatalf("Enforce(%s, %s, %s) failed: %v", tc.sub, tc.obj, tc.act, err)
		}
		if got != tc.want {
			t.Errorf("Enforce(%s, %s, %s) = %v, want %v", tc.sub, tc.obj, tc.act, got, tc.want)
		}
	}

	roles, _ := e.GetRolesForUser("editor-sub")
	if len(roles) != 1 || roles[0] != RoleEditor {
		t.Errorf("expected editor to keep only the editor role, got %v", roles)
	}
}

func TestClaims_DisplayName(t *testing.T) {
	testCases := []struct {
		claims Claims
		want   string
	}{
		{Claims{Subject: "s", Name: "Jane", Email: "j@x"}, "Jane"},
		{Claims{Subject: "s", PreferredUsername: "jdoe"}, "jdoe"},
		{Claims{Subject: "s", Email: "j@x"}, "j@x"},
		{Claims{Subject: "s"}, "s"},
	}
	for _, tc := range testCases {
		if got := tc.claims.DisplayName(); got != tc.want {
			t.Errorf("DisplayName(%+v) = %q, want %q", tc.claims, got, tc.want)
		}
	}
}
