package catalog

import (
	"fmt"
	"os"
)

func mkdirAll(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

func formatTemp(t float64) string {
	return fmt.Sprintf("%05.0f", t)
}
