package internal

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/edsrzf/mmap-go"
	"github.com/zeebo/blake3"
)

// Fingerprint is the BLAKE3 digest of some content.
type Fingerprint [32]byte

func FingerprintOf(content []byte) Fingerprint {
	return blake3.Sum256(content)
}

// HashFile fingerprints a file by mapping it read-only.
func HashFile(path string) (Fingerprint, error) {
	file, err := os.Open(path)
	if err != nil {
		return Fingerprint{}, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Fingerprint{}, err
	}

	if info.Size() == 0 {
		// Empty files cannot be mapped
		return FingerprintOf(nil), nil
	}

	mapped, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return Fingerprint{}, err
	}
	defer mapped.Unmap()

	return FingerprintOf(mapped), nil
}

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// WriteFileIfChanged writes content to path unless the file already holds
// exactly that content, so generated files keep their timestamps when
// nothing changed. written reports whether the file was (re)created; n is
// the number of bytes written and may be zero for empty content.
func WriteFileIfChanged(path string, content []byte) (n int64, written bool, err error) {
	existing, err := HashFile(path)

	switch {
	case err == nil:
		if existing == FingerprintOf(content) {
			log.Debug("Generated file is unchanged", "path", path)
			return 0, false, nil
		}
	case !errors.Is(err, fs.ErrNotExist):
		return 0, false, err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, false, err
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return 0, false, err
	}

	count, err := file.Write(content)
	if err != nil {
		file.Close()
		return int64(count), true, err
	}

	return int64(count), true, file.Close()
}
