package outfile

import (
	"fmt"
	"os"
)

// Open открывает файл для записи результата.
// Существующий файл сначала переносится в "<path>.bak"; неудавшийся бэкап
// фатален — молча затирать прежний результат нельзя.
func Open(path string) (*os.File, error) {
	if _, err := os.Stat(path); err == nil {
		backup := path + ".bak"
		if err := os.Rename(path, backup); err != nil {
			return nil, fmt.Errorf("back up existing file %q: %w", path, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open output file %q: %w", path, err)
	}
	return f, nil
}
