package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Beastly713/bpcs/pkg/bitmap"
)

func loadBitmap(path string) (*bitmap.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := bitmap.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// saveBitmap writes img through a temporary file so a failed write never
// leaves a truncated image behind.
func saveBitmap(path string, img *bitmap.Image) error {
	data, err := bitmap.EncodeBytes(img)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data, 0644)
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// stegoName is where the stego image made from cover is written.
func stegoName(dir, cover, suffix string) string {
	base := filepath.Base(cover)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+suffix+".bmp")
}

// safeName strips directories from a filename recovered from an image.
func safeName(name string) (string, error) {
	base := filepath.Base(filepath.Clean("/" + filepath.FromSlash(name)))
	if base == "/" || base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("recovered filename %q is not usable", name)
	}
	return base, nil
}
