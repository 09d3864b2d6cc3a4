package auth

import (
	"fmt"

	"go-news-app/internal/logger"

	"github.com/casbin/casbin/v2"
)

// Role names used in policies.
const (
	RoleAnonymous = "anonymous"
	RoleReader    = "reader"
	RoleEditor    = "editor"
)

// DefaultPolicies is the baseline rule set. Readers are signed-in users
// without editing rights; editors inherit everything readers can do.
var DefaultPolicies = [][]string{
	{RoleAnonymous, "/", "GET"},
	{RoleAnonymous, "/articles", "GET"},
	{RoleAnonymous, "/articles/*", "GET"},
	{RoleAnonymous, "/media/*", "GET"},
	{RoleAnonymous, "/robots.txt", "GET"},
	{RoleAnonymous, "/sitemap.xml", "GET"},
	{RoleAnonymous, "/auth/login", "GET"},
	{RoleAnonymous, "/auth/callback", "GET"},

	{RoleReader, "/auth/logout", "GET"},

	{RoleEditor, "/admin/*", "GET"},
	{RoleEditor, "/admin/*", "POST"},
}

// SeedDefaultPolicies adds any missing default policy and role link. It is
// idempotent and runs on every start.
func SeedDefaultPolicies(e casbin.IEnforcer, log logger.Logger) {
	log.Info("Seeding default authorization policies...")

	for _, p := range DefaultPolicies {
		if has, _ := e.HasPolicy(p); !has {
			if _, err := e.AddPolicy(p); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add policy %v", p))
			}
		}
	}

	links := [][2]string{
		{RoleReader, RoleAnonymous},
		{RoleEditor, RoleReader},
	}
	for _, l := range links {
		if has, _ := e.HasRoleForUser(l[0], l[1]); !has {
			if _, err := e.AddRoleForUser(l[0], l[1]); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add role '%s' -> '%s'", l[0], l[1]))
			}
		}
	}
	log.Info("Policy seeding complete.")
}

// GrantEditors gives each OIDC subject the editor role.
func GrantEditors(e casbin.IEnforcer, subjects []string, log logger.Logger) {
	for _, subject := range subjects {
		if subject == "" {
			continue
		}
		if has, _ := e.HasRoleForUser(subject, RoleEditor); has {
			continue
		}
		if _, err := e.AddRoleForUser(subject, RoleEditor); err != nil {
			log.Error(err, fmt.Sprintf("Failed to grant editor role to %s", subject))
			continue
		}
		log.With(map[string]interface{}{"subject": subject}).Info("editor role granted")
	}
}

// EnsureReader gives a signed-in subject the reader role unless it already
// has a role.
func EnsureReader(e casbin.IEnforcer, subject string) error {
	roles, err := e.GetRolesForUser(subject)
	if err != nil {
		return err
	}
	if len(roles) > 0 {
		return nil
	}
	_, err = e.AddRoleForUser(subject, RoleReader)
	return err
}
