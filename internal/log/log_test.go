package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "turbineclean.log")

	if err := InitWithFile(false, FileOptions{Path: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1}); err != nil {
		t.Fatalf("InitWithFile: %v", err)
	}
	t.Cleanup(func() {
		log, baseLogger = nil, nil
	})

	Debugw("hidden at info level")
	Infow("stage summary", "stage", "range_filter", "erased", 3)
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"stage summary"`) || !strings.Contains(out, `"erased":3`) {
		t.Errorf("log file lacks the structured entry:\n%s", out)
	}
	if strings.Contains(out, "hidden at info level") {
		t.Errorf("debug entry written at info level:\n%s", out)
	}
}

func TestGetSugaredLoggerFallback(t *testing.T) {
	log, baseLogger = nil, nil
	if GetSugaredLogger() == nil {
		t.Fatal("expected a fallback logger")
	}
	if GetZapLogger() == nil {
		t.Fatal("expected a fallback zap logger")
	}
	log, baseLogger = nil, nil
}
