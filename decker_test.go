package decker

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"github.com/shelfpub/decker/service/dao/fragment"
)

func uploadFixture(t *testing.T, fs afs.Service, URL, content string) {
	t.Helper()
	err := fs.Upload(context.Background(), URL, file.DefaultFileOsMode, strings.NewReader(content))
	require.NoError(t, err)
}

func TestService_EndToEnd(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	uploadFixture(t, fs, "mem://localhost/repo/topics/intro.rst", "Intro\n=====\n")
	uploadFixture(t, fs, "mem://localhost/repo/topics/types.rst", "Types\n=====\n")
	uploadFixture(t, fs, "mem://localhost/repo/decks/basics.yaml", `name: basics
format: rst
output: mem://localhost/repo/build/basics.rst
deck:
  - intro
  - types
  - intro
`)

	srv := New(
		WithFS(fs),
		WithFragmentRoots("mem://localhost/repo/topics"),
		WithOutputBaseURL("mem://localhost/repo/build"))
	runtime := srv.Runtime()

	build, err := runtime.Build(ctx, "mem://localhost/repo/decks/basics.yaml")
	require.NoError(t, err)
	assert.Equal(t, "mem://localhost/repo/build/basics.rst", build.OutputURL)
	assert.NotEmpty(t, build.ID)

	written, err := fs.DownloadWithURL(ctx, build.OutputURL)
	require.NoError(t, err)
	assert.Equal(t, "Intro\n=====\n\nTypes\n=====\n\nIntro\n=====\n", string(written))

	// a clean build reports no drift
	drift, err := runtime.Check(ctx, "mem://localhost/repo/decks/basics.yaml")
	require.NoError(t, err)
	assert.True(t, drift.Clean)
}

func TestService_MissingFragment(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	uploadFixture(t, fs, "mem://localhost/sparse/decks/deck.yaml", `name: deck
deck:
  - absent
`)

	srv := New(
		WithFS(fs),
		WithFragmentRoots("mem://localhost/sparse/topics"),
		WithOutputBaseURL("mem://localhost/sparse/build"))

	_, err := srv.Runtime().Build(ctx, "mem://localhost/sparse/decks/deck.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing fragment: absent")
	assert.True(t, fragment.IsNotFound(err))

	ok, _ := fs.Exists(ctx, "mem://localhost/sparse/build/deck.rst")
	assert.False(t, ok)
}

func TestRuntime_UpsertOutline(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	uploadFixture(t, fs, "mem://localhost/hot/topics/alpha.rst", "alpha\n")
	uploadFixture(t, fs, "mem://localhost/hot/topics/beta.rst", "beta\n")

	srv := New(
		WithFS(fs),
		WithFragmentRoots("mem://localhost/hot/topics"),
		WithOutputBaseURL("mem://localhost/hot/build"))
	runtime := srv.Runtime()

	err := runtime.UpsertOutline("mem://localhost/hot/decks/ad-hoc.yaml", []byte(`name: ad-hoc
deck:
  - alpha
  - beta
`))
	require.NoError(t, err)

	build, err := runtime.Build(ctx, "mem://localhost/hot/decks/ad-hoc.yaml")
	require.NoError(t, err)
	assert.Equal(t, "alpha\n\nbeta\n", string(build.Document.Content()))

	// nil data degrades to a refresh; the location has no backing file so
	// the next load fails
	err = runtime.UpsertOutline("mem://localhost/hot/decks/ad-hoc.yaml", nil)
	require.NoError(t, err)
	_, err = runtime.LoadOutline(ctx, "mem://localhost/hot/decks/ad-hoc.yaml")
	assert.Error(t, err)
}

func TestRuntime_FragmentHelpers(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	uploadFixture(t, fs, "mem://localhost/frag/topics/topic.rst", "v1\n")

	srv := New(WithFS(fs), WithFragmentRoots("mem://localhost/frag/topics"))
	runtime := srv.Runtime()

	resolved, err := runtime.ResolveFragment(ctx, "topic")
	require.NoError(t, err)
	assert.Equal(t, "v1\n", string(resolved.Content))

	uploadFixture(t, fs, "mem://localhost/frag/topics/topic.rst", "v2\n")
	resolved, err = runtime.ResolveFragment(ctx, "topic")
	require.NoError(t, err)
	assert.Equal(t, "v1\n", string(resolved.Content))

	require.NoError(t, runtime.RefreshFragment("topic"))
	resolved, err = runtime.ResolveFragment(ctx, "topic")
	require.NoError(t, err)
	assert.Equal(t, "v2\n", string(resolved.Content))

	require.NoError(t, runtime.UpsertFragment(&fragment.Fragment{Topic: "inline", Content: []byte("inline\n")}))
	resolved, err = runtime.ResolveFragment(ctx, "inline")
	require.NoError(t, err)
	assert.Equal(t, "inline\n", string(resolved.Content))
}

func TestNewFromConfig(t *testing.T) {
	config := DefaultConfig()
	config.Fragments.Extensions = []string{"rst"}
	_, err := NewFromConfig(config)
	require.Error(t, err)

	config = DefaultConfig()
	srv, err := NewFromConfig(config, WithOutputBaseURL("mem://localhost/out"))
	require.NoError(t, err)
	assert.NotNil(t, srv.Runtime())
}
