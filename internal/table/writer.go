package table

import (
	"fmt"
	"io"
	"os"

	"github.com/Veraticus/sift/internal/common"
)

// Write encodes the table in the given format.
func Write(w io.Writer, format Format, t *Table) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatXLSX:
		return WriteXLSX(w, t)
	default:
		return fmt.Errorf("%w: cannot write %q", common.ErrUnsupportedFormat, format)
	}
}

// WriteFile writes the table to path, choosing the format from the extension.
func WriteFile(path string, t *Table) (err error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if format == FormatHTML {
		return fmt.Errorf("%w: cannot write %q", common.ErrUnsupportedFormat, format)
	}

	f, err := os.Create(path) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
	}()

	return Write(f, format, t)
}
