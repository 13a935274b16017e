package meta

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"gopkg.in/yaml.v3"
)

func TestService_Load(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()

	baseURL := "mem://localhost/meta-test"
	err := fs.Upload(ctx, baseURL+"/asset.yaml", file.DefaultFileOsMode,
		bytes.NewReader([]byte("name: deck\nroot: ${env.DECKER_TEST_ROOT}\n")))
	assert.Nil(t, err)

	os.Setenv("DECKER_TEST_ROOT", "/var/decks")
	service := New(fs, baseURL)

	var node yaml.Node
	err = service.Load(ctx, "asset.yaml", &node)
	assert.Nil(t, err)

	value, ok := node.Content[0].Content[3], true
	assert.True(t, ok)
	assert.Equal(t, "/var/decks", value.Value)

	ok, err = service.Exists(ctx, "asset.yaml")
	assert.Nil(t, err)
	assert.True(t, ok)

	ok, err = service.Exists(ctx, "missing.yaml")
	assert.Nil(t, err)
	assert.False(t, ok)
}

func TestService_Resolve(t *testing.T) {
	service := New(afs.New(), "mem://localhost/decks")
	assert.Equal(t, "mem://localhost/decks/outline.yaml", service.Resolve("outline.yaml"))
	assert.Equal(t, "file:///tmp/outline.yaml", service.Resolve("file:///tmp/outline.yaml"))
}
