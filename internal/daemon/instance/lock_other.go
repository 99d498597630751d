//go:build !unix

package instance

import (
	"errors"
	"os"
	"strconv"
)

var errLocked = errors.New("lock held by another process")

// tryLock creates path exclusively. A host that crashed leaves the file
// behind; delete it by hand to recover.
func tryLock(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return nil, errLocked
	}
	if err != nil {
		return nil, err
	}
	_, _ = f.WriteString(strconv.Itoa(os.Getpid()) + "\n")
	return f, nil
}

func unlock(f *os.File) error {
	name := f.Name()
	err := f.Close()
	if rmErr := os.Remove(name); err == nil {
		err = rmErr
	}
	return err
}
