package selfmod

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// BackupFile copies the file to a temporary location before an external
// tool touches it, giving a manual rollback path independent of version
// control. Returns the backup path. A file that does not exist yet needs
// no backup; the empty string is returned.
func BackupFile(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to open %s for backup: %w", path, err)
	}
	defer src.Close()

	stamp := time.Now().Format("20060102-150405")
	backupPath := filepath.Join(os.TempDir(),
		fmt.Sprintf("selfai-backup-%s-%s", stamp, filepath.Base(path)))

	dst, err := os.Create(backupPath)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to copy %s to backup: %w", path, err)
	}
	return backupPath, nil
}
