package main

import (
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"

	"github.com/containers/crio-df/libstore/define"
)

func TestDfContainerImage(t *testing.T) {
	resolved := dfContainer{define.ContainerDiskUsage{
		ID:      "0123456789abcdef0123",
		ImageID: "fedcba98765432100000",
	}}
	assert.Equal(t, "0123456789ab", resolved.ContainerID())
	assert.Equal(t, "fedcba987654", resolved.Image())

	// A container whose image left the store still gets a row.
	orphaned := dfContainer{define.ContainerDiskUsage{ID: "0123456789abcdef0123"}}
	assert.Equal(t, "N/A", orphaned.Image())

	// Columns the store metadata cannot fill.
	assert.Equal(t, "N/A", resolved.Command())
	assert.Equal(t, "N/A", resolved.Size())
	assert.Equal(t, "N/A", resolved.Status())
	assert.Equal(t, 0, resolved.LocalVolumes())
}

func TestTruncID(t *testing.T) {
	assert.Equal(t, "0123456789ab", truncID("0123456789abcdef"))
	assert.Equal(t, "short", truncID("short"))
}

func TestTruncDigest(t *testing.T) {
	long := digest.Digest("sha256:0123456789abcdef0123456789abcdef")
	assert.Equal(t, "sha256:0123456789ab...", truncDigest(long))
	assert.Equal(t, "sha256:abcd", truncDigest(digest.Digest("sha256:abcd")))
}

func TestDfSummaryReclaimable(t *testing.T) {
	summary := dfSummary{reclaimable: 200, pct: 13.33}
	assert.Equal(t, "200B (13%)", summary.Reclaimable())

	assert.Equal(t, "0B (0%)", dfSummary{}.Reclaimable())
}
