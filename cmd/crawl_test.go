package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mpetrov/sitemapper/internal/config"
	"github.com/mpetrov/sitemapper/internal/crawler"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(config.NewViper())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "sitemapper")
}

func TestCrawlCommand_MissingSeedFails(t *testing.T) {
	_, err := executeCommand(t, "crawl")
	require.Error(t, err)
	require.Contains(t, err.Error(), "crawl.seed")
}

func TestRootCommand_RepeatedConstructionIsIsolated(t *testing.T) {
	// Each invocation builds a fresh command tree with its own viper;
	// settings from one run must not leak into the next.
	_, err := executeCommand(t, "crawl", "--seed", "ftp://example.com")
	require.Error(t, err)

	_, err = executeCommand(t, "version")
	require.NoError(t, err)

	_, err = executeCommand(t, "crawl")
	require.Error(t, err)
	require.Contains(t, err.Error(), "crawl.seed")
}

func TestCrawlCommand_InvalidWorkersFails(t *testing.T) {
	_, err := executeCommand(t, "crawl", "--seed", "https://example.com", "--workers", "0")
	require.Error(t, err)
}

func TestCrawlCommand_EndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	var srvURL string
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `<html><head><title>Home</title></head>
			<body><a href="%s/a">a</a><a href="/b">b</a></body></html>`, srvURL)
	})
	mux.HandleFunc("/a", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><head><title>A</title></head><body></body></html>`)
	})
	mux.HandleFunc("/b", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><head><title>B</title></head><body></body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	output := filepath.Join(t.TempDir(), "sitemap.json")
	out, err := executeCommand(t, "crawl",
		"--seed", srv.URL+"/",
		"--max-depth", "1",
		"--workers", "2",
		"--output", output,
	)
	require.NoError(t, err)
	require.Contains(t, out, "Pages recorded")
	require.Contains(t, out, output)

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var records []crawler.Record
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 3)

	titles := map[string]string{}
	for _, rec := range records {
		titles[rec.URL] = rec.Title
	}
	require.Equal(t, "Home", titles[srv.URL+"/"])
	require.Equal(t, "A", titles[srv.URL+"/a"])
	require.Equal(t, "B", titles[srv.URL+"/b"])
}

func TestCrawlCommand_FetchFailuresDoNotFailTheRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	output := filepath.Join(t.TempDir(), "sitemap.json")
	_, err := executeCommand(t, "crawl",
		"--seed", srv.URL,
		"--max-depth", "0",
		"--workers", "1",
		"--output", output,
	)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	require.JSONEq(t, "[]", string(data))
}
