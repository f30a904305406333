package vault

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strconv"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/net/html"
)

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
	".svg":  {},
	".bmp":  {},
}

// IsImageExt reports whether ext (lowercase, with dot) is an indexed image type.
func IsImageExt(ext string) bool {
	_, ok := imageExtensions[ext]
	return ok
}

func probeDimensions(r io.Reader, ext string) (int, int, error) {
	if ext == ".svg" {
		return svgDimensions(r)
	}
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0, fmt.Errorf("decode %s header: %w", ext, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("invalid %s dimensions %dx%d", ext, cfg.Width, cfg.Height)
	}
	return cfg.Width, cfg.Height, nil
}

// svgDimensions reads the root <svg> element's width/height, falling back to
// the viewBox when either is missing or relative.
func svgDimensions(r io.Reader) (int, int, error) {
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return 0, 0, fmt.Errorf("read svg: %w", err)
			}
			return 0, 0, fmt.Errorf("no <svg> element found")
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if !bytes.Equal(name, []byte("svg")) {
				continue
			}
			attrs := map[string]string{}
			for hasAttr {
				var k, v []byte
				k, v, hasAttr = z.TagAttr()
				attrs[string(k)] = string(v)
			}
			return svgSize(attrs)
		}
	}
}

func svgSize(attrs map[string]string) (int, int, error) {
	w, wok := svgLength(attrs["width"])
	h, hok := svgLength(attrs["height"])
	if wok && hok {
		return w, h, nil
	}
	fields := strings.FieldsFunc(attrs["viewbox"], func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) == 4 {
		vw, errW := strconv.ParseFloat(fields[2], 64)
		vh, errH := strconv.ParseFloat(fields[3], 64)
		if errW == nil && errH == nil && vw > 0 && vh > 0 {
			switch {
			case wok:
				return w, int(float64(w) * vh / vw), nil
			case hok:
				return int(float64(h) * vw / vh), h, nil
			default:
				return int(vw), int(vh), nil
			}
		}
	}
	return 0, 0, fmt.Errorf("svg has no usable width/height or viewBox")
}

func svgLength(v string) (int, bool) {
	v = strings.TrimSpace(v)
	v = strings.TrimSuffix(v, "px")
	if v == "" || strings.HasSuffix(v, "%") {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0, false
	}
	return int(f), true
}
