// Package tests provides access to external test data, downloaded on first
// use.
package tests

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"
)

// SingleStepTestNames returns the base names of the 512 sm83 test files,
// one per opcode of the primary and CB tables.
func SingleStepTestNames() []string {
	names := make([]string, 0, 512)
	for opcode := range 256 {
		names = append(names, fmt.Sprintf("%02x", opcode))
	}
	for opcode := range 256 {
		names = append(names, fmt.Sprintf("cb %02x", opcode))
	}
	return names
}

func download(url, path string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		// Illegal opcodes have no test file.
		return nil
	default:
		return fmt.Errorf("%s: %s", url, resp.Status)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, resp.Body)
	return err
}

// download the SingleStepTests sm83 files into dest dir.
func downloadSingleStepTests(tb testing.TB, dest string) {
	const urlfmt = `https://raw.githubusercontent.com/SingleStepTests/sm83/main/v1/%s.json`

	tempdir, err := os.MkdirTemp("", "sm83.singlestep.tests.*")
	if err != nil {
		tb.Fatal(err)
	}

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for _, name := range SingleStepTestNames() {
		u := fmt.Sprintf(urlfmt, url.PathEscape(name))
		g.Go(func() error {
			if err := download(u, filepath.Join(tempdir, name+".json")); err != nil {
				return err
			}
			tb.Log("downloaded", u)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		tb.Fatalf("failed to download all files: %s", err)
	}

	tb.Log("renaming", tempdir, "to", dest)
	if err := os.Rename(tempdir, dest); err != nil {
		tb.Fatal(err)
	}
}

var sstOnce sync.Once

// SingleStepTestsPath returns the directory holding the sm83 test files,
// downloading them if needed.
func SingleStepTestsPath(tb testing.TB) string {
	_, b, _, _ := runtime.Caller(0)
	testsDir := filepath.Join(filepath.Dir(b), "sm83.singlestep.tests")

	sstOnce.Do(func() {
		if _, err := os.Stat(testsDir); errors.Is(err, fs.ErrNotExist) {
			tb.Log("sm83.singlestep.tests directory not found, downloading it...")
			downloadSingleStepTests(tb, testsDir)
			tb.Log("SingleStepTests downloaded in", testsDir)
		}
	})
	return testsDir
}
