package tiger

import (
	"archive/zip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/district-lens/internal/resilience"
)

func testDownloader() *Downloader {
	return &Downloader{
		Client: http.DefaultClient,
		Retry: resilience.RetryConfig{
			MaxAttempts:    3,
			InitialBackoff: time.Millisecond,
			MaxBackoff:     5 * time.Millisecond,
		},
	}
}

func TestDownload_Success(t *testing.T) {
	// Create a test ZIP with a .shp file inside.
	zipContent := createTestZIP(t, map[string]string{
		"tl_2024_us_cd119.shp": "fake shapefile data",
		"tl_2024_us_cd119.dbf": "fake dbf data",
		"tl_2024_us_cd119.shx": "fake shx data",
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(zipContent)
	}))
	defer srv.Close()

	destDir := t.TempDir()
	shpPath, err := testDownloader().Download(context.Background(), srv.URL+"/tl_2024_us_cd119.zip", destDir)

	require.NoError(t, err)
	assert.Contains(t, shpPath, ".shp")
	assert.FileExists(t, shpPath)
}

func TestDownload_Resumable(t *testing.T) {
	zipContent := createTestZIP(t, map[string]string{
		"test.shp": "fake shapefile data",
	})

	var callCount int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		callCount++
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(zipContent)
	}))
	defer srv.Close()

	destDir := t.TempDir()
	url := srv.URL + "/tl_2024_us_cd119.zip"

	// First download.
	_, err := testDownloader().Download(context.Background(), url, destDir)
	require.NoError(t, err)
	assert.Equal(t, 1, callCount)

	// Second download should skip (ZIP already exists).
	_, err = testDownloader().Download(context.Background(), url, destDir)
	require.NoError(t, err)
	assert.Equal(t, 1, callCount) // no additional HTTP call
}

func TestDownload_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	destDir := t.TempDir()
	_, err := testDownloader().Download(context.Background(), srv.URL+"/bad.zip", destDir)
	assert.Error(t, err)
}

func TestDownload_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		// Slow response
		select {}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	destDir := t.TempDir()
	_, err := testDownloader().Download(ctx, srv.URL+"/slow.zip", destDir)
	assert.Error(t, err)
}

func TestDownload_RetriesTransientStatus(t *testing.T) {
	zipContent := createTestZIP(t, map[string]string{"cd.shp": "shp"})

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(zipContent)
	}))
	defer srv.Close()

	shpPath, err := testDownloader().Download(context.Background(), srv.URL+"/cd.zip", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.FileExists(t, shpPath)
}

func TestDownload_NotFoundIsNotRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testDownloader().Download(context.Background(), srv.URL+"/missing.zip", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestInstall(t *testing.T) {
	src := t.TempDir()
	for _, name := range []string{"tl_2024_us_cd119.shp", "tl_2024_us_cd119.dbf", "tl_2024_us_cd119.shx", "tl_2024_us_cd119.prj", "other.shp"} {
		require.NoError(t, os.WriteFile(filepath.Join(src, name), []byte(name), 0o644))
	}

	dest := filepath.Join(t.TempDir(), "shapefile")
	installed, err := Install(filepath.Join(src, "tl_2024_us_cd119.shp"), dest, "house_districts_2024.shp")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "house_districts_2024.shp"), installed)

	for _, ext := range []string{".shp", ".dbf", ".shx", ".prj"} {
		data, readErr := os.ReadFile(filepath.Join(dest, "house_districts_2024"+ext))
		require.NoError(t, readErr)
		assert.Equal(t, "tl_2024_us_cd119"+ext, string(data))
	}
	assert.NoFileExists(t, filepath.Join(dest, "other.shp"))
}

func TestExtractZIP(t *testing.T) {
	files := map[string]string{
		"file1.txt": "content1",
		"file2.shp": "shapefile content",
	}
	zipContent := createTestZIP(t, files)

	// Write ZIP to temp file.
	zipPath := filepath.Join(t.TempDir(), "test.zip")
	require.NoError(t, os.WriteFile(zipPath, zipContent, 0o644))

	extractDir := filepath.Join(t.TempDir(), "extracted")
	require.NoError(t, os.MkdirAll(extractDir, 0o755))

	err := extractZIP(zipPath, extractDir)
	require.NoError(t, err)

	// Verify extracted files.
	for name, expectedContent := range files {
		data, readErr := os.ReadFile(filepath.Join(extractDir, name))
		require.NoError(t, readErr)
		assert.Equal(t, expectedContent, string(data))
	}
}

func TestFindFileByExt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.shp"), []byte("shp"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.dbf"), []byte("dbf"), 0o644))

	shpPath, err := findFileByExt(dir, ".shp")
	require.NoError(t, err)
	assert.Contains(t, shpPath, "data.shp")

	_, err = findFileByExt(dir, ".prj")
	assert.Error(t, err)
}

// createTestZIP creates a ZIP file in memory with the given files.
func createTestZIP(t *testing.T, files map[string]string) []byte {
	t.Helper()

	tmpFile := filepath.Join(t.TempDir(), "test.zip")
	f, err := os.Create(tmpFile)
	require.NoError(t, err)

	w := zip.NewWriter(f)
	for name, content := range files {
		fw, createErr := w.Create(name)
		require.NoError(t, createErr)
		_, writeErr := fw.Write([]byte(content))
		require.NoError(t, writeErr)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	data, err := os.ReadFile(tmpFile)
	require.NoError(t, err)
	return data
}
