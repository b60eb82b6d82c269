package catalogfile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/jonboulle/clockwork"
)

const backupDateLayout = "20060102"

// Backup copies an existing file at path to path.YYYYMMDD, or to
// path.YYYYMMDD.N with the smallest free N >= 1 when the dated name is taken.
// It returns the backup path, or "" when there was nothing to back up.
// Permissions and modification time are preserved.
func Backup(path string, clock clockwork.Clock) (string, error) {
	src, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if !src.Mode().IsRegular() {
		return "", fmt.Errorf("backup %s: not a regular file", path)
	}

	dated := path + "." + clock.Now().Format(backupDateLayout)
	dst := dated
	for n := 1; exists(dst); n++ {
		dst = dated + "." + strconv.Itoa(n)
	}

	if err := copyFile(path, dst, src); err != nil {
		return "", fmt.Errorf("backup %s: %w", path, err)
	}
	return dst, nil
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func copyFile(srcPath, dstPath string, info fs.FileInfo) error {
	in, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer in.Close()

	// O_EXCL so a concurrent backup never clobbers an existing one.
	out, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dstPath)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dstPath)
		return err
	}
	return os.Chtimes(dstPath, info.ModTime(), info.ModTime())
}
