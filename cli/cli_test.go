package cli

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexander-edwards/asana-clone-app-fullstack/config"
	"github.com/alexander-edwards/asana-clone-app-fullstack/logging"
)

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["migrate"])
	assert.True(t, names["version"])

	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("env-file"))
}

func TestVersionCmd(t *testing.T) {
	cmd := newVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "asana version "+Version+"\n", out.String())
}

func TestMigrateCmd_RejectsUnknownDirection(t *testing.T) {
	cmd := newMigrateCmd()
	require.Error(t, cmd.Args(cmd, []string{"sideways"}))
	require.Error(t, cmd.Args(cmd, nil))
	require.NoError(t, cmd.Args(cmd, []string{"status"}))
}

func TestServeCmd_Flags(t *testing.T) {
	cmd := newServeCmd()
	for _, name := range []string{"port", "static-dir", "cors-origin"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestOpenStores_LogsConnectOnce(t *testing.T) {
	url := os.Getenv("ASANA_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("ASANA_TEST_DATABASE_URL not set")
	}

	var buf bytes.Buffer
	out := logging.Logger.Out
	logging.Logger.SetOutput(&buf)
	t.Cleanup(func() { logging.Logger.SetOutput(out) })

	cfg, err := config.New()
	require.NoError(t, err)
	cfg.Database.URL = url
	cfg.Database.AutoMigrate = false

	ctx := context.Background()
	st, err := openStores(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { st.close(ctx) })

	assert.Equal(t, 1, strings.Count(buf.String(), "DB_CONNECTED"))
	assert.Nil(t, st.notifications)
	assert.Nil(t, st.activity)
}
