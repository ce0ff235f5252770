package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"toolrent-backend/internal/config"
	"toolrent-backend/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestMigratePrint(t *testing.T) {
	out, err := execute(t, "migrate", "--print")
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE IF NOT EXISTS tool_groups")
	assert.Contains(t, out, "CREATE TABLE IF NOT EXISTS kardex_movements")
}

func TestReportOverdueMemory(t *testing.T) {
	t.Setenv("STORE_TYPE", "memory")

	out, err := execute(t, "report", "overdue")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "ID  RUT  NAME  PHONE", strings.Join(strings.Fields(lines[len(lines)-1]), "  "))
}

func TestReportTopToolsBadDate(t *testing.T) {
	t.Setenv("STORE_TYPE", "memory")

	_, err := execute(t, "report", "top-tools", "--from", "yesterday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --from")
}

func TestRunJobOnce(t *testing.T) {
	jr := jobs.NewJobRunner(&jobs.Services{}, &config.Config{})
	assert.Error(t, runJobOnce(jr, "send-reminders"))
}

func TestNewAppUnknownStore(t *testing.T) {
	_, err := newApp(context.Background(), &config.Config{Store: config.StoreConfig{Type: "redis"}})
	assert.Error(t, err)
}
