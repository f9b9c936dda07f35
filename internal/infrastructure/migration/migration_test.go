package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrationsAreNamedOnce(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Migrations {
		assert.NotEmpty(t, m.Name)
		assert.NotNil(t, m.Up, m.Name)
		assert.False(t, seen[m.Name], "duplicate migration %s", m.Name)
		seen[m.Name] = true
	}
	for _, name := range []string{"create_cvs", "create_analysis_jobs", "create_entitlements", "create_applications", "create_cv_exports"} {
		assert.True(t, seen[name], name)
	}
}
