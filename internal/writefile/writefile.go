// Package writefile materializes extracted records on disk.
//
// WriteFile behaves like os.WriteFile but reports the error from
// closing the file; WriteAtomic is a thin wrapper over
// [github.com/google/renameio/v2] for callers that must never leave a
// partially written file behind.
package writefile

import (
	"os"

	renameio "github.com/google/renameio/v2"
)

// Perm is the permission used for newly created files, before umask.
const Perm = 0o666

// WriteFile truncates or creates the named file and writes data to it.
// The file is always closed, even when the write fails.
func WriteFile(filename string, data []byte) (err error) {
	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, Perm)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = f.Write(data)
	return err
}

// WriteAtomic is like WriteFile, but first writes data to an arbitrary
// file in the same directory as filename, then renames it atomically to the
// final name.
//
// That ensures that the final location, if it exists, is always a complete file.
func WriteAtomic(filename string, data []byte) error {
	return renameio.WriteFile(filename, data, Perm)
}
