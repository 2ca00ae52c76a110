package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
)

func TestDotenvQuoting(t *testing.T) {
	content := "PRODUCTIVE_API_TOKEN='abc\"def#ghi'\nWATCH_TASK_LISTS=\"101, 102\" # nightly\n"
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	env, err := godotenv.Read(path)
	if err != nil {
		t.Fatalf("Error reading env: %v", err)
	}

	if expected := `abc"def#ghi`; env["PRODUCTIVE_API_TOKEN"] != expected {
		t.Errorf("Expected %s, got %s", expected, env["PRODUCTIVE_API_TOKEN"])
	}
	if expected := "101, 102"; env["WATCH_TASK_LISTS"] != expected {
		t.Errorf("Expected %s, got %s", expected, env["WATCH_TASK_LISTS"])
	}
}
