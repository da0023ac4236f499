package app

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/logger"

	"github.com/xxxsen/slimdeck/internal/config"
	"github.com/xxxsen/slimdeck/internal/converter"
)

func TestMain(m *testing.M) {
	logger.Init("", "error", 0, 0, 0, true)
	os.Exit(m.Run())
}

type recordingConverter struct {
	size  int
	modes []converter.Mode
}

func (r *recordingConverter) Convert(ctx context.Context, in, out string, mode converter.Mode) error {
	r.modes = append(r.modes, mode)
	return os.WriteFile(out, bytes.Repeat([]byte{'x'}, r.size), 0o644)
}

func writeDeck(t *testing.T, path string) {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	files := map[string][]byte{
		"ppt/media/image1.png":              bytes.Repeat([]byte{'p'}, 50000),
		"ppt/slides/_rels/slide1.xml.rels":  []byte(`Target="../media/image1.png"`),
		"ppt/slides/slide1.xml":             []byte(`<p:sld/>`),
		"ppt/slideLayouts/slideLayout1.xml": []byte(`<p:sldLayout/>`),
	}
	for name, data := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"check", "compress"}, RunnerList())
	r, err := ResolveRunner("compress")
	require.NoError(t, err)
	assert.Equal(t, "compress", r.Name())

	_, err = ResolveRunner("missing")
	assert.Error(t, err)
	assert.Panics(t, func() { MustResolveRunner("missing") })
	assert.Panics(t, func() { RegisterRunner("check", func() IRunner { return NewCheckCommand() }) })
}

func TestCompressCommandFlags(t *testing.T) {
	c := NewCompressCommand()
	fs := pflag.NewFlagSet("compress", pflag.ContinueOnError)
	c.Init(fs)
	require.NoError(t, fs.Parse([]string{"-f", "--width", "640"}))
	assert.True(t, c.force)
	assert.Equal(t, 640, c.width)
}

func TestCompressCommandPreRun(t *testing.T) {
	ctx := context.Background()

	c := NewCompressCommand()
	assert.Error(t, c.PreRun(ctx))

	c.SetArgs([]string{filepath.Join(t.TempDir(), "missing.pptx")})
	assert.Error(t, c.PreRun(ctx))

	c.SetArgs([]string{t.TempDir()})
	assert.Error(t, c.PreRun(ctx))

	src := filepath.Join(t.TempDir(), "deck.pptx")
	writeDeck(t, src)
	c.SetArgs([]string{src})
	c.width = -1
	assert.Error(t, c.PreRun(ctx))
	c.width = 0
	assert.NoError(t, c.PreRun(ctx))
}

func TestCompressCommandRun(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "deck.pptx")
	writeDeck(t, src)

	conv := &recordingConverter{size: 10000}
	var out bytes.Buffer
	c := NewCompressCommand()
	c.conv = conv
	c.SetOutput(&out)
	c.SetArgs([]string{src})

	ctx := context.Background()
	require.NoError(t, c.PreRun(ctx))
	require.NoError(t, c.Run(ctx))
	require.NoError(t, c.PostRun(ctx))

	require.Len(t, conv.modes, 1)
	assert.Equal(t, config.Current().Converter.MaxEdge, conv.modes[0].MaxEdge)
	assert.Equal(t, filepath.Join(dir, "deck.compressed.pptx"), c.Result().Output)
	assert.Contains(t, out.String(), "compressed by     40.0KB")
	assert.Contains(t, out.String(), "in slide 1\n")
}

func TestCompressCommandWidthOverridesConfig(t *testing.T) {
	src := filepath.Join(t.TempDir(), "deck.pptx")
	writeDeck(t, src)

	conv := &recordingConverter{size: 10}
	c := NewCompressCommand()
	c.conv = conv
	c.SetOutput(&bytes.Buffer{})
	c.SetArgs([]string{src})
	c.width = 480
	c.force = true

	require.NoError(t, c.Run(context.Background()))
	require.Len(t, conv.modes, 1)
	assert.Equal(t, 480, conv.modes[0].MaxEdge)
	assert.Equal(t, src, c.Result().Output)
}
