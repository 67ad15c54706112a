//go:build conntest

package conntest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/credcheck/internal/db"
	"github.com/vvka-141/credcheck/internal/logging"
	"github.com/vvka-141/credcheck/internal/services"
	"github.com/vvka-141/credcheck/internal/sources"
	"github.com/vvka-141/credcheck/pkg/credcheck"
)

func TestCheckService_FileModeAgainstPostgres(t *testing.T) {
	record := containerRecord(t)

	path := filepath.Join(t.TempDir(), "db_secrets.yaml")
	content := fmt.Sprintf("db:\n  host: %s\n  port: %d\n  name: %s\n  user: %s\n  password: %s\n",
		record.Host(), record.Port(), record.Database(), record.User(), record.Password())
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	var buf bytes.Buffer
	logger := logging.NewWriterLogger(&buf, true)
	svc := services.NewCheckService(
		sources.NewSelector(logger, sources.NewFileSource(path)),
		db.NewStandardConnector(db.Options{SSLMode: "disable"}, logger),
		logger,
	)

	result, err := svc.Run(t.Context(), "file")
	require.NoError(t, err)

	assert.Equal(t, credcheck.StateDone, result.State)
	out := buf.String()
	assert.Contains(t, out, "DB SELECT 1 result: map[?column?:1]\n")
	assert.True(t, strings.HasSuffix(out, "OK: DB connection successful\n[VERBOSE] State QueryExecuted -> Done\n"), out)
	assert.NotContains(t, out, record.Password())
}
