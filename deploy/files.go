package deploy

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// metadataFiles are packaging artifacts shipped inside mod archives that
// must never land in the game directory.
var metadataFiles = map[string]bool{
	"manifest.json": true,
	"icon.png":      true,
	"README.md":     true,
	"CHANGELOG.md":  true,
}

// modFiles returns every deployable file under installPath as sorted
// relative paths.
func modFiles(installPath string) []string {
	var files []string
	_ = filepath.WalkDir(installPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if metadataFiles[d.Name()] {
			return nil
		}
		rel, relErr := filepath.Rel(installPath, path)
		if relErr != nil {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	sort.Strings(files)
	return files
}

// copyFile copies src to dst, truncating any existing destination.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// removeFileAndPrune deletes the file, then walks upward removing
// now-empty parent directories until a non-empty one is hit or root is
// reached. This keeps repeated install/uninstall cycles from littering
// the game directory with empty mod folders.
func removeFileAndPrune(path, root string) error {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil
	}

	for parent := filepath.Dir(path); ; parent = filepath.Dir(parent) {
		parentAbs, err := filepath.Abs(parent)
		if err != nil || parentAbs == rootAbs {
			return nil
		}
		// Never prune outside the target root.
		if !strings.HasPrefix(parentAbs, rootAbs+string(os.PathSeparator)) {
			return nil
		}
		entries, err := os.ReadDir(parent)
		if err != nil || len(entries) > 0 {
			return nil
		}
		if err := os.Remove(parent); err != nil {
			return nil
		}
	}
}
