package symbol

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/composable-auto-assessment/generator/errs"
)

// DefaultImageSize is the rendered width and height in pixels.
const DefaultImageSize = 256

// PNGWriter writes symbols to <Dir>/<name>.png.
//
// Each file is written to a temporary name in Dir and renamed into place, so a
// failed write never leaves a truncated image behind. Files from earlier calls
// are not touched.
type PNGWriter struct {
	Dir  string
	Size int
}

// Path returns the file a symbol named name is written to.
func (w *PNGWriter) Path(name string) string {
	return filepath.Join(w.Dir, name+".png")
}

func (w *PNGWriter) Write(sym Symbol, name string) error {
	const op = "symbol.Write"
	if name == "" || strings.ContainsAny(name, `/\`) {
		return errs.New(errs.KindOutputWriteFailed, op, fmt.Sprintf("invalid output name %q", name))
	}
	size := w.Size
	if size <= 0 {
		size = DefaultImageSize
	}
	dir := w.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(errs.KindOutputWriteFailed, op, "create output directory", err)
	}

	tmp, err := os.CreateTemp(dir, "."+name+"-*.png")
	if err != nil {
		return errs.Wrap(errs.KindOutputWriteFailed, op, "create "+name, err)
	}
	tmpName := tmp.Name()
	cleanup := func(msg string, cause error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errs.Wrap(errs.KindOutputWriteFailed, op, msg, cause)
	}

	if err := png.Encode(tmp, sym.Image(size)); err != nil {
		return cleanup("encode "+name, err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup("sync "+name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errs.Wrap(errs.KindOutputWriteFailed, op, "close "+name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return errs.Wrap(errs.KindOutputWriteFailed, op, "chmod "+name, err)
	}
	if err := os.Rename(tmpName, w.Path(name)); err != nil {
		_ = os.Remove(tmpName)
		return errs.Wrap(errs.KindOutputWriteFailed, op, "rename "+name, err)
	}
	return nil
}
