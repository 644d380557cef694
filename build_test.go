package seqidx

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/seqidx/codec"
	"github.com/hupe1980/seqidx/internal/fs"
	"github.com/hupe1980/seqidx/testutil"
)

func TestBuild_Stats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toy.bwt")
	stats, err := Build(context.Background(), path, toySeqs, WithCheckpointInterval(4))
	require.NoError(t, err)

	assert.Equal(t, uint64(3), stats.Sequences)
	assert.Equal(t, uint64(15), stats.Entries)
	// Text positions 0, 4, 8, 12 plus the starts at 5 and 10.
	assert.Equal(t, uint64(6), stats.Checkpoints)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(fi.Size()), stats.Bytes)
	assertOnlyFiles(t, filepath.Dir(path), "toy.bwt")
}

// assertOnlyFiles fails if dir holds anything but names, such as a
// leftover temporary file.
func assertOnlyFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var got []string
	for _, e := range entries {
		got = append(got, e.Name())
	}
	assert.ElementsMatch(t, names, got)
}

func TestBuild_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bwt")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	_, err := Build(context.Background(), path, toySeqs)
	require.NoError(t, err)
	idx := openIndex(t, path)
	assert.Equal(t, uint64(3), idx.NumSequences())
}

func TestBuild_Errors(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	_, err := Build(ctx, filepath.Join(dir, "a.bwt"), nil)
	assert.ErrorIs(t, err, ErrNoSequences)

	_, err = Build(ctx, filepath.Join(dir, "b.bwt"), []string{"ACGT", "ACNT"})
	assert.ErrorIs(t, err, ErrInvalidBase)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Build(canceled, filepath.Join(dir, "c.bwt"), toySeqs)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = Build(ctx, filepath.Join(dir, "missing", "d.bwt"), toySeqs)
	assert.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed builds must not leave files behind")
}

func TestBuild_FileSystemFaults(t *testing.T) {
	tests := []struct {
		name  string
		fault fs.Fault
	}{
		{"header write", fs.Fault{FailAfterBytes: 0}},
		{"sync", fs.Fault{FailAfterBytes: -1, FailOnSync: true}},
		{"close", fs.Fault{FailAfterBytes: -1, FailOnClose: true}},
		{"rename", fs.Fault{FailAfterBytes: -1, FailOnRename: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "index.bwt")
			require.NoError(t, os.WriteFile(path, []byte("previous"), 0o644))

			ffs := fs.NewFaultyFS(nil)
			ffs.AddRule(".tmp", tt.fault)
			_, err := Build(context.Background(), path, toySeqs, func(o *buildOptions) { o.fs = ffs })
			require.ErrorIs(t, err, fs.ErrInjected)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "previous", string(data))
			assertOnlyFiles(t, dir, "index.bwt")
		})
	}
}

func TestBuild_WorkerCountDoesNotChangeOutput(t *testing.T) {
	rng := testutil.NewRNG(3)
	seqs := rng.Sequences(200, 0, 300)

	var files [][]byte
	for _, w := range []int{1, 2, 7} {
		path := buildFile(t, seqs, WithBuildWorkers(w), WithCheckpointInterval(16))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		files = append(files, data)
	}
	assert.True(t, bytes.Equal(files[0], files[1]))
	assert.True(t, bytes.Equal(files[0], files[2]))
}

func TestBuild_JSONCodec(t *testing.T) {
	path := buildFile(t, toySeqs, WithBuildCodec(codec.JSON{}))

	// The codec is read from the file.
	idx := openIndex(t, path)
	assert.Equal(t, "json", idx.Codec())
	assert.Equal(t, uint64(2), find(t, idx, "ACG").Len())
	require.NoError(t, idx.Verify(context.Background()))

	explicit := openIndex(t, path, WithCodec(codec.JSON{}))
	assert.Equal(t, "json", explicit.Codec())

	_, err := Open(path, WithCodec(codec.Msgpack{}))
	requireFormatError(t, err, ErrMalformedHeader)

	assert.Equal(t, "msgpack", buildIndex(t, toySeqs).Codec())
}

func TestBuild_ConcurrentSameDestination(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.bwt")
	inputs := [][]string{toySeqs, testutil.NewRNG(9).Sequences(100, 50, 200)}

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = Build(context.Background(), path, inputs[i%len(inputs)])
		}()
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	// Whichever build renamed last wins; the file is always complete.
	idx := openIndex(t, path, WithVerify())
	n := idx.NumSequences()
	assert.True(t, n == uint64(len(inputs[0])) || n == uint64(len(inputs[1])), "sequences %d", n)
	assertOnlyFiles(t, dir, "index.bwt")
}

func TestBuild_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	path := buildFile(t, toySeqs, WithBuildLogger(logger))
	assert.Contains(t, buf.String(), "index built")
	assert.Contains(t, buf.String(), "entries=15")

	buf.Reset()
	idx := openIndex(t, path, WithLogger(logger.WithPath(path)))
	assert.Contains(t, buf.String(), "index opened")

	buf.Reset()
	require.NoError(t, idx.Verify(context.Background()))
	assert.Contains(t, buf.String(), "verify completed")

	buf.Reset()
	_, err := Open(filepath.Join(t.TempDir(), "missing"), WithLogger(logger))
	require.Error(t, err)
	assert.Contains(t, buf.String(), "open failed")
}
