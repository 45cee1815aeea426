package reportmerge

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const backupTimestamp = "20060102-150405"

// Backup copies the file at path into dir (or a _backups directory beside
// the original when dir is empty) under a timestamped name. The original
// is never modified; the copy is verified complete before the path is
// returned. Existing backups are never overwritten.
func Backup(path, dir string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: opening %s: %v", ErrBackupFailed, path, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return "", fmt.Errorf("%w: stat %s: %v", ErrBackupFailed, path, err)
	}

	if dir == "" {
		dir = filepath.Join(filepath.Dir(path), "_backups")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating %s: %v", ErrBackupFailed, dir, err)
	}

	backupPath, err := uniqueBackupPath(dir, filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackupFailed, err)
	}

	dst, err := os.OpenFile(backupPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("%w: creating %s: %v", ErrBackupFailed, backupPath, err)
	}

	written, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && written != info.Size() {
		err = fmt.Errorf("copied %d of %d bytes", written, info.Size())
	}
	if err != nil {
		os.Remove(backupPath)
		return "", fmt.Errorf("%w: copying to %s: %v", ErrBackupFailed, backupPath, err)
	}

	log.Info().Str("backup", backupPath).Msg("master backed up")
	return backupPath, nil
}

// uniqueBackupPath builds <name>_backup_<timestamp><ext>, suffixing a
// counter in the rare case two runs share a second.
func uniqueBackupPath(dir, base string) (string, error) {
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	stamp := time.Now().Format(backupTimestamp)

	candidate := filepath.Join(dir, fmt.Sprintf("%s_backup_%s%s", name, stamp, ext))
	for n := 1; ; n++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		} else if err != nil {
			return "", err
		}
		if n > 1000 {
			return "", fmt.Errorf("no free backup name for %s", base)
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s_backup_%s-%d%s", name, stamp, n, ext))
	}
}
