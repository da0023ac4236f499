package rels

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIdentifier(t *testing.T) {
	assert.Equal(t, "1", Identifier("slide1.xml.rels"))
	assert.Equal(t, "12", Identifier("slide12.XML.RELS"))
	assert.Equal(t, "Layout3", Identifier("slideLayout3.xml.rels"))
	assert.Equal(t, "presentation", Identifier("presentation.xml.rels"))
}

func TestIsDescriptor(t *testing.T) {
	assert.True(t, IsDescriptor("slide1.xml.rels"))
	assert.True(t, IsDescriptor("Slide1.XML.rels"))
	assert.False(t, IsDescriptor("slide1.xml"))
	assert.False(t, IsDescriptor(".rels"))
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "ppt/slides/_rels/slide1.xml.rels", `<Relationship Target="../media/image1.png"/>`)
	writeFile(t, root, "ppt/slides/_rels/slide2.xml.rels", `<Relationship Target="../media/image1.png"/><Relationship Target="../media/image2.jpeg"/>`)
	writeFile(t, root, "ppt/slideLayouts/_rels/slideLayout1.xml.rels", `<Relationship Target="../media/image2.jpeg"/>`)
	writeFile(t, root, "ppt/slides/slide3.xml", `../media/image3.emf`)
	writeFile(t, root, "_rels/.rels", `../media/image3.emf`)

	keys := []string{"../media/image1.png", "../media/image2.jpeg", "../media/image3.emf"}
	usage, err := Scan(root, keys)
	require.NoError(t, err)

	assert.Equal(t, []string{"Layout1", "2"}, usage["../media/image2.jpeg"])
	assert.Equal(t, []string{"1", "2"}, usage["../media/image1.png"])
	assert.Empty(t, usage["../media/image3.emf"])
}

func TestScanDoesNotModifyDescriptors(t *testing.T) {
	root := t.TempDir()
	content := `<Relationship Target="../media/image1.tiff"/>`
	path := writeFile(t, root, "ppt/slides/_rels/slide1.xml.rels", content)

	_, err := Scan(root, []string{"../media/image1.tiff"})
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
}

func TestScanRejectsBinaryDescriptor(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "ppt/slides/_rels/slide1.xml.rels", string([]byte{0xff, 0xfe, 0x00, 0xc3}))

	_, err := Scan(root, []string{"../media/image1.png"})
	assert.True(t, errors.Is(err, ErrNotText))
}
