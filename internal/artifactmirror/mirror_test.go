package artifactmirror

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codedocs/internal/config"
)

func TestNewReturnsNilWhenDisabled(t *testing.T) {
	m, err := New(config.MirrorConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestNewRejectsMissingCredentials(t *testing.T) {
	_, err := New(config.MirrorConfig{Enabled: true, Endpoint: "localhost:9000", Bucket: "docs"})
	assert.Error(t, err)
}

func TestNilMirrorIsANoOp(t *testing.T) {
	var m *Mirror
	assert.NoError(t, m.MirrorDocsRoot(context.Background(), "task", t.TempDir()))
}
