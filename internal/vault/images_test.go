package vault

import (
	"bytes"
	"image"
	"image/color/palette"
	"image/gif"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeDimensions_Raster(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, image.NewPaletted(image.Rect(0, 0, 7, 9), palette.Plan9), nil))

	w, h, err := probeDimensions(&buf, ".gif")
	require.NoError(t, err)
	assert.Equal(t, 7, w)
	assert.Equal(t, 9, h)

	_, _, err = probeDimensions(strings.NewReader("garbage"), ".jpg")
	assert.Error(t, err)
}

func TestSVGDimensions(t *testing.T) {
	cases := []struct {
		name string
		svg  string
		w, h int
		ok   bool
	}{
		{"explicit", `<svg width="100" height="50"></svg>`, 100, 50, true},
		{"px units", `<svg width="12.5px" height="8px"/>`, 12, 8, true},
		{"viewBox only", `<svg viewBox="0 0 24 16"></svg>`, 24, 16, true},
		{"width plus viewBox", `<svg width="48" viewBox="0 0 24 12"></svg>`, 48, 24, true},
		{"percent falls back", `<svg width="100%" height="100%" viewBox="0,0,10,20"></svg>`, 10, 20, true},
		{"nested prolog", `<?xml version="1.0"?><!-- c --><svg height="3" width="4"><g/></svg>`, 4, 3, true},
		{"no size", `<svg></svg>`, 0, 0, false},
		{"not svg", `<html></html>`, 0, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, h, err := svgDimensions(strings.NewReader(tc.svg))
			if !tc.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.w, w)
			assert.Equal(t, tc.h, h)
		})
	}
}

func TestIsImageExt(t *testing.T) {
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".bmp"} {
		assert.True(t, IsImageExt(ext), ext)
	}
	assert.False(t, IsImageExt(".md"))
	assert.False(t, IsImageExt(".PNG"), "callers lowercase first")
}

func TestNewIndex_LowercasesKeys(t *testing.T) {
	ix := NewIndex(map[string]Descriptor{
		"My Page": {Kind: KindDocument, Path: "/My Page.md"},
		"a.PNG":   {Kind: KindImage, Path: "/a.PNG", Width: 1, Height: 1},
	})
	_, ok := ix.Lookup("MY PAGE")
	assert.True(t, ok)
	assert.Equal(t, []string{"a.png", "my page"}, ix.Keys())
	assert.Equal(t, "document", KindDocument.String())

	var nilIndex *Index
	_, ok = nilIndex.Lookup("x")
	assert.False(t, ok)
}
