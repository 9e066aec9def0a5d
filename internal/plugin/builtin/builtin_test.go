package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/plugin"
)

func TestRegisterAll(t *testing.T) {
	reg := plugin.NewRegistry()
	require.NoError(t, RegisterAll(reg))
	require.NoError(t, RegisterAll(reg), "second registration is a no-op")
	assert.Equal(t, []string{"link-check", "search-index", "sitemap"}, reg.Names())
}
