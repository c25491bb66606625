package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_Batches(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	d.Add("b.xml")
	d.Add("a.xml")
	d.Add("b.xml")

	select {
	case files := <-d.C():
		assert.Equal(t, []string{"a.xml", "b.xml"}, files)
	case <-time.After(2 * time.Second):
		t.Fatal("no batch delivered")
	}

	select {
	case files := <-d.C():
		t.Fatalf("unexpected second batch %v", files)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestDebouncer_HoldsWhileBatchPending(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	defer d.Stop()

	d.Add("a.xml")
	time.Sleep(50 * time.Millisecond)
	d.Add("b.xml")
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, []string{"a.xml"}, <-d.C())
	select {
	case files := <-d.C():
		assert.Equal(t, []string{"b.xml"}, files)
	case <-time.After(2 * time.Second):
		t.Fatal("held batch was not delivered")
	}
}

func TestWatcher_ReportsWatchedFilesOnly(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "bc.xml")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(doc, []byte("<a/>"), 0o644))

	w, err := New([]string{doc}, 20*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	batches := make(chan []string, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(files []string) { batches <- files })
	}()

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(doc, []byte("<b/>"), 0o644))

	select {
	case files := <-batches:
		assert.Equal(t, []string{doc}, files)
	case <-time.After(5 * time.Second):
		t.Fatal("change was not reported")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "gone", "bc.xml")}, DefaultDelay, nil)
	assert.Error(t, err)
}
