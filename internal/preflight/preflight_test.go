package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bilingual/internal/config"
	"bilingual/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckTranscriptionAPI_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" || r.Header.Get("Authorization") != "Bearer good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := CheckTranscriptionAPI(context.Background(), srv.URL, "good-key")
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckTranscriptionAPI_BadKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	result := CheckTranscriptionAPI(context.Background(), srv.URL, "bad-key")
	if result.Passed {
		t.Fatal("expected failure for bad key")
	}
}

func TestCheckTranscriptionAPI_MissingSettings(t *testing.T) {
	if CheckTranscriptionAPI(context.Background(), "", "key").Passed {
		t.Fatal("expected failure for missing URL")
	}
	if CheckTranscriptionAPI(context.Background(), "http://localhost", "").Passed {
		t.Fatal("expected failure for missing key")
	}
}

func newConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.WorkDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Paths.StateDir = t.TempDir()
	cfg.Pipeline.OutputPath = filepath.Join(t.TempDir(), "translated.txt")
	return &cfg
}

func TestCheckTranslation_Google(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[[["테스트","test",null,null,1]],null,"en"]`))
	}))
	defer srv.Close()

	cfg := newConfig(t)
	cfg.Translation.Backend = config.BackendGoogle
	cfg.Translation.GoogleURL = srv.URL

	result := CheckTranslation(context.Background(), cfg)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result.Name != "Translation (google)" {
		t.Fatalf("unexpected name %q", result.Name)
	}
}

func TestCheckTranslation_SingleAttemptOnServerError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := newConfig(t)
	cfg.Translation.Backend = config.BackendGoogle
	cfg.Translation.GoogleURL = srv.URL

	if result := CheckTranslation(context.Background(), cfg); result.Passed {
		t.Fatal("expected failure for 502")
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestCheckTranslation_PapagoRejectedCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithPapago("id", "secret"))
	cfg.Translation.PapagoURL = srv.URL

	result := CheckTranslation(context.Background(), cfg)
	if result.Passed {
		t.Fatal("expected failure for 401")
	}
	if !strings.Contains(result.Detail, "credentials rejected") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, Options{}); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_DirectoriesOnly(t *testing.T) {
	cfg := newConfig(t)

	results := RunAll(context.Background(), cfg, Options{})
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}

func TestRunAll_NetworkIncludesTranscriptionAPIForOpenAI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models" {
			w.WriteHeader(http.StatusOK)
			return
		}
		_, _ = w.Write([]byte(`[[["테스트","test",null,null,1]],null,"en"]`))
	}))
	defer srv.Close()

	cfg := newConfig(t)
	cfg.Translation.Backend = config.BackendGoogle
	cfg.Translation.GoogleURL = srv.URL + "/translate"
	cfg.Transcription.Service = config.ServiceOpenAI
	cfg.Transcription.BaseURL = srv.URL
	cfg.Transcription.APIKey = "key"

	results := RunAll(context.Background(), cfg, Options{Network: true})
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}
