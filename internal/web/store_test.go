package web

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ironsheep/image-brightness/internal/imaging"
	"github.com/ironsheep/image-brightness/internal/pipeline"
)

const testRequestID = "0123456789abcdef0123456789abcdef"

// testResult builds a minimal pipeline result with 2x1 rasters.
func testResult(t *testing.T, id string) *pipeline.Result {
	t.Helper()
	orig, err := imaging.NewRaster(2, 1, 3)
	if err != nil {
		t.Fatalf("NewRaster failed: %v", err)
	}
	copy(orig.Pix, []uint8{10, 20, 30, 200, 200, 200})
	mod := orig.Clone()
	mod.Pix[0] = 60
	return &pipeline.Result{
		ID:            id,
		Original:      orig,
		Modified:      mod,
		OriginalChart: []byte("original chart"),
		ModifiedChart: []byte("modified chart"),
	}
}

func TestNewRequestID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := NewRequestID()
		if err != nil {
			t.Fatalf("NewRequestID failed: %v", err)
		}
		if !ValidRequestID(id) {
			t.Fatalf("generated id %q is not valid", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestValidRequestID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{testRequestID, true},
		{strings.ToUpper(testRequestID), true},
		{"", false},
		{"abc", false},
		{"../../../../etc/passwd/xxxxxxxxxx", false},
		{"0123456789abcdef0123456789abcdeg", false},
		{testRequestID + "00", false},
	}
	for _, tt := range tests {
		if got := ValidRequestID(tt.id); got != tt.want {
			t.Errorf("ValidRequestID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestArtifactStore_Save(t *testing.T) {
	dir := t.TempDir()
	store, err := NewArtifactStore(filepath.Join(dir, "uploads"), nil)
	if err != nil {
		t.Fatalf("NewArtifactStore failed: %v", err)
	}

	res := testResult(t, testRequestID)
	art, err := store.Save(res)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if art.ID != testRequestID {
		t.Errorf("ID: got %q", art.ID)
	}

	reqDir := filepath.Join(store.Dir(), testRequestID)
	entries, err := os.ReadDir(reqDir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != len(ArtifactNames) {
		t.Errorf("expected %d files, got %d", len(ArtifactNames), len(entries))
	}

	data, err := os.ReadFile(filepath.Join(reqDir, art.ModifiedImage))
	if err != nil {
		t.Fatalf("read modified image: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("stored image is not a PNG: %v", err)
	}
	r, _, _, _ := img.At(0, 0).RGBA()
	if r>>8 != 60 {
		t.Errorf("modified pixel red: got %d, want 60", r>>8)
	}

	chart, err := os.ReadFile(filepath.Join(reqDir, art.OriginalPlot))
	if err != nil {
		t.Fatalf("read plot: %v", err)
	}
	if string(chart) != "original chart" {
		t.Errorf("plot content: got %q", chart)
	}
}

func TestArtifactStore_RequestsDoNotCollide(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewArtifactStore failed: %v", err)
	}

	a := testResult(t, testRequestID)
	b := testResult(t, "ffffffffffffffffffffffffffffffff")
	b.OriginalChart = []byte("other chart")

	if _, err := store.Save(a); err != nil {
		t.Fatalf("Save a failed: %v", err)
	}
	if _, err := store.Save(b); err != nil {
		t.Fatalf("Save b failed: %v", err)
	}

	pa, err := store.Path(a.ID, OriginalPlotName)
	if err != nil {
		t.Fatalf("Path a: %v", err)
	}
	got, _ := os.ReadFile(pa)
	if string(got) != "original chart" {
		t.Errorf("request a plot was overwritten: %q", got)
	}
}

func TestArtifactStore_SaveInvalidID(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewArtifactStore failed: %v", err)
	}
	if _, err := store.Save(testResult(t, "../escape")); err == nil {
		t.Error("expected error for invalid id")
	}
}

func TestArtifactStore_Path(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewArtifactStore failed: %v", err)
	}
	if _, err := store.Save(testResult(t, testRequestID)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	tests := []struct {
		name    string
		id      string
		file    string
		wantErr bool
	}{
		{"stored artifact", testRequestID, ModifiedImageName, false},
		{"unknown id", "ffffffffffffffffffffffffffffffff", ModifiedImageName, true},
		{"unknown name", testRequestID, "secret.txt", true},
		{"traversal id", "..", ModifiedImageName, true},
		{"traversal name", testRequestID, "../" + ModifiedImageName, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := store.Path(tt.id, tt.file)
			if tt.wantErr {
				if !errors.Is(err, ErrArtifactNotFound) {
					t.Errorf("expected ErrArtifactNotFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Path failed: %v", err)
			}
			if filepath.Dir(p) != filepath.Join(store.Dir(), tt.id) {
				t.Errorf("unexpected path %q", p)
			}
		})
	}
}

func TestArtifactStore_Prune(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewArtifactStore failed: %v", err)
	}

	oldID := testRequestID
	newID := "ffffffffffffffffffffffffffffffff"
	for _, id := range []string{oldID, newID} {
		if _, err := store.Save(testResult(t, id)); err != nil {
			t.Fatalf("Save %s failed: %v", id, err)
		}
	}
	// A directory that is not a request directory must survive.
	if err := os.Mkdir(filepath.Join(store.Dir(), "keep"), 0o755); err != nil {
		t.Fatal(err)
	}

	past := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(filepath.Join(store.Dir(), oldID), past, past); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}
	if err := os.Chtimes(filepath.Join(store.Dir(), "keep"), past, past); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	n, err := store.Prune(time.Hour)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if n != 1 {
		t.Errorf("removed: got %d, want 1", n)
	}
	if _, err := os.Stat(filepath.Join(store.Dir(), oldID)); !os.IsNotExist(err) {
		t.Error("old request directory should be removed")
	}
	if _, err := store.Path(newID, OriginalImageName); err != nil {
		t.Errorf("recent request should remain: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.Dir(), "keep")); err != nil {
		t.Error("non-request directory should remain")
	}
}
