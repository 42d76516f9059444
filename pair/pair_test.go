package pair

import (
	"errors"
	"github.com/metaprep/metaPrep/reads"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func writeFastq(t *testing.T, path string, names ...string) {
	t.Helper()
	var s string
	for _, n := range names {
		s += "@" + n + "\nACGTACGT\n+\nIIIIIIII\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(s), 0644))
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	r1 := filepath.Join(dir, "s_R1.fastq")
	r2 := filepath.Join(dir, "s_R2.fastq")

	writeFastq(t, r1, "a/1", "b/1", "c 1:N:0:1")
	writeFastq(t, r2, "a/2", "b/2", "c 2:N:0:1")
	c, err := Verify(reads.NewPair(r1, r2))
	require.NoError(t, err)
	assert.Equal(t, Counts{Fwd: 3, Rev: 3}, c)
}

func TestVerifyCountMismatch(t *testing.T) {
	dir := t.TempDir()
	r1 := filepath.Join(dir, "s_R1.fastq")
	r2 := filepath.Join(dir, "s_R2.fastq")

	writeFastq(t, r1, "a", "b", "c", "d")
	writeFastq(t, r2, "a", "b")
	c, err := Verify(reads.NewPair(r1, r2))
	assert.True(t, errors.Is(err, ErrPairMismatch))
	assert.Equal(t, Counts{Fwd: 4, Rev: 2}, c)
}

func TestVerifyNameMismatch(t *testing.T) {
	dir := t.TempDir()
	r1 := filepath.Join(dir, "s_R1.fastq")
	r2 := filepath.Join(dir, "s_R2.fastq")

	writeFastq(t, r1, "a", "b")
	writeFastq(t, r2, "a", "x")
	_, err := Verify(reads.NewPair(r1, r2))
	assert.True(t, errors.Is(err, ErrPairMismatch))
	assert.Contains(t, err.Error(), "read 2")
}

func TestVerifyMissing(t *testing.T) {
	dir := t.TempDir()
	r1 := filepath.Join(dir, "s_R1.fastq")
	writeFastq(t, r1, "a")
	_, err := Verify(reads.NewPair(r1, filepath.Join(dir, "none.fastq")))
	assert.True(t, errors.Is(err, reads.ErrMissingReads))
}

func TestVerifyAmbiguousBases(t *testing.T) {
	dir := t.TempDir()
	r1 := filepath.Join(dir, "s_R1.fastq")
	r2 := filepath.Join(dir, "s_R2.fastq")

	require.NoError(t, os.WriteFile(r1, []byte("@r1\nACGR\n+\nIIII\n@r2\nYKMN\n+\nIIII\n"), 0644))
	require.NoError(t, os.WriteFile(r2, []byte("@r1\nACGT\n+\nIIII\n@r2\nACGT\n+\nIIII\n"), 0644))
	c, err := Verify(reads.NewPair(r1, r2))
	require.NoError(t, err)
	assert.Equal(t, Counts{Fwd: 2, Rev: 2}, c)
}

func TestVerifyTruncated(t *testing.T) {
	dir := t.TempDir()
	r1 := filepath.Join(dir, "s_R1.fastq")
	r2 := filepath.Join(dir, "s_R2.fastq")

	writeFastq(t, r1, "a", "b")
	require.NoError(t, os.WriteFile(r2, []byte("@a\nACGTACGT\n+\nIIIIIIII\n@b\nACGT"), 0644))
	_, err := Verify(reads.NewPair(r1, r2))
	assert.True(t, errors.Is(err, reads.ErrMalformed))
	assert.False(t, errors.Is(err, ErrPairMismatch))
}

func TestVerifyMissingSeparator(t *testing.T) {
	dir := t.TempDir()
	r1 := filepath.Join(dir, "s_R1.fastq")
	r2 := filepath.Join(dir, "s_R2.fastq")

	require.NoError(t, os.WriteFile(r1, []byte("@a\nACGT\nIIII\n@b\n"), 0644))
	writeFastq(t, r2, "a")
	_, err := Verify(reads.NewPair(r1, r2))
	assert.True(t, errors.Is(err, reads.ErrMalformed))
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "M00123:1:000:1:1101:15589:1331", baseName("@M00123:1:000:1:1101:15589:1331 1:N:0:1"))
	assert.Equal(t, "read7", baseName("read7/2"))
	assert.Equal(t, "read7", baseName("read7"))
}
