package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheDir(t *testing.T) {
	// Clear XDG_CACHE_HOME to test default behavior
	oldXdg := os.Getenv("XDG_CACHE_HOME")
	os.Unsetenv("XDG_CACHE_HOME")
	defer func() {
		if oldXdg != "" {
			os.Setenv("XDG_CACHE_HOME", oldXdg)
		}
	}()

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	customCache := "/tmp/custom-cache"
	oldXdg := os.Getenv("XDG_CACHE_HOME")
	os.Setenv("XDG_CACHE_HOME", customCache)
	defer func() {
		if oldXdg != "" {
			os.Setenv("XDG_CACHE_HOME", oldXdg)
		} else {
			os.Unsetenv("XDG_CACHE_HOME")
		}
	}()

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	expected := filepath.Join(customCache, appName)
	if dir != expected {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

func TestLibraryDir(t *testing.T) {
	oldXdg := os.Getenv("XDG_DATA_HOME")
	os.Unsetenv("XDG_DATA_HOME")
	defer func() {
		if oldXdg != "" {
			os.Setenv("XDG_DATA_HOME", oldXdg)
		}
	}()

	dir, err := libraryDir()
	if err != nil {
		t.Fatalf("libraryDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	if !strings.HasPrefix(dir, home) {
		t.Errorf("libraryDir() = %q, should be under home %q", dir, home)
	}

	expected := filepath.Join(home, ".local", "share", appName, "library")
	if dir != expected {
		t.Errorf("libraryDir() = %q, want %q", dir, expected)
	}
}

func TestLibraryDirXDG(t *testing.T) {
	customData := "/tmp/custom-data"
	oldXdg := os.Getenv("XDG_DATA_HOME")
	os.Setenv("XDG_DATA_HOME", customData)
	defer func() {
		if oldXdg != "" {
			os.Setenv("XDG_DATA_HOME", oldXdg)
		} else {
			os.Unsetenv("XDG_DATA_HOME")
		}
	}()

	dir, err := libraryDir()
	if err != nil {
		t.Fatalf("libraryDir() error: %v", err)
	}

	expected := filepath.Join(customData, appName, "library")
	if dir != expected {
		t.Errorf("libraryDir() with XDG_DATA_HOME = %q, want %q", dir, expected)
	}
}
