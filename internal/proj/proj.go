package proj

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
)

//go:embed skeleton
var skeleton embed.FS

// New writes a starter blog into a new directory called name.
func New(name string) error {
	log.Printf("Creating new blog in %q", name)

	root, err := fs.Sub(skeleton, "skeleton")
	if err != nil {
		return err
	}

	err = os.Mkdir(name, os.FileMode(0777))
	if err != nil {
		return fmt.Errorf("could not create directory %q: %w", name, err)
	}

	err = buildTree(root, ".", name)
	if err != nil {
		return fmt.Errorf("could not build project tree: %w", err)
	}

	log.Print("DONE")

	return nil
}

func buildTree(fsys fs.FS, dir, outDir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return err
	}

	for _, e := range entries {
		src := path.Join(dir, e.Name())
		dst := filepath.Join(outDir, filepath.FromSlash(src))

		if e.IsDir() {
			log.Printf("==> Creating %q directory", dst)

			err := os.Mkdir(dst, os.FileMode(0777))
			if err != nil {
				return fmt.Errorf("could not create directory %q: %w", dst, err)
			}

			err = buildTree(fsys, src, outDir)
			if err != nil {
				return err
			}

			continue
		}

		log.Printf("==> Creating %q", dst)

		data, err := fs.ReadFile(fsys, src)
		if err != nil {
			return err
		}

		err = os.WriteFile(dst, data, os.FileMode(0666))
		if err != nil {
			return fmt.Errorf("could not write file %q: %w", dst, err)
		}
	}

	return nil
}
