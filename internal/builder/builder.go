package builder

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jtmthf/blog/internal/config"
	"github.com/jtmthf/blog/internal/site"
	"github.com/jtmthf/blog/mini"
)

type Builder interface {
	Build() error
}

type builderImpl struct {
	config  *config.Config
	log     *log.Logger
	mini    *mini.Minifier
	counter int
}

var ErrNotDir = errors.New("not a directory")

const (
	_ReadWriteExecute = 0777
	_ReadWrite        = 0666
)

// New creates a new Builder instance. A nil logger logs to stderr.
func New(c *config.Config, l *log.Logger) (Builder, error) {
	if l == nil {
		l = log.New(os.Stderr, "[builder] ", 0)
	}

	builder := &builderImpl{config: c, log: l}

	if c.Minify {
		builder.mini = mini.New()
	}

	return builder, nil
}

// Build renders the whole site into the output directory, replacing whatever
// was there before.
func (b *builderImpl) Build() error {
	t0 := time.Now()
	b.counter = 0

	// Verify that the posts dir and the optional public and templates dirs exist
	for _, dir := range []string{
		b.config.PostsDir,
		b.config.PublicDir,
		b.config.TemplatesDir,
	} {
		if dir == "" {
			continue
		}

		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("could not resolve directory %q: %w", dir, err)
		}

		if !info.IsDir() {
			return fmt.Errorf("%w: %q", ErrNotDir, dir)
		}
	}

	// Remove the output dir if it exists
	err := os.RemoveAll(b.config.OutputDir)
	if err != nil {
		return fmt.Errorf("could not clean output dir: %w", err)
	}

	// Create the output dir
	err = os.MkdirAll(b.config.OutputDir, os.FileMode(_ReadWriteExecute))
	if err != nil {
		return fmt.Errorf("could not create output dir: %w", err)
	}

	b.log.Print("Starting build...")

	publicAssets, err := b.handlePublic()
	if err != nil {
		return err
	}

	s, err := site.New(b.config, site.WithAssets(publicAssets), site.WithLogger(b.log))
	if err != nil {
		return fmt.Errorf("could not initialize site: %w", err)
	}

	files, err := s.Files(context.Background())
	if err != nil {
		return fmt.Errorf("could not render site: %w", err)
	}

	for _, f := range files {
		err = b.writeFile(f)
		if err != nil {
			return err
		}
	}

	b.log.Printf("Processed %d files in %s", b.counter, time.Since(t0))

	return nil
}

func (b *builderImpl) handlePublic() (map[string]string, error) {
	publicAssets := make(map[string]string)

	if b.config.PublicDir == "" {
		return publicAssets, nil
	}

	err := filepath.WalkDir(b.config.PublicDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(b.config.PublicDir, path)
		if err != nil {
			return err
		}

		// Create a corresponding directory in the output dir
		if d.IsDir() {
			if rel == "." {
				return nil
			}

			return b.mkOutDir(rel)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("could not read file %q: %w", path, err)
		}

		outRel := hashedName(rel, data, b.config.HashExts)
		outP := filepath.Join(b.config.OutputDir, outRel)

		err = b.write(outP, data)
		if err != nil {
			return err
		}

		publicAssets[filepath.ToSlash(rel)] = "/" + filepath.ToSlash(outRel)

		b.log.Printf("==> Processing %q --> %q DONE", path, outP)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking public dir: %w", err)
	}

	return publicAssets, nil
}

// hashedName inserts the first 8 hex digits of the md5 sum of data before the
// extension of name when that extension is one of exts: styles.css becomes
// styles.1a2b3c4d.css.
func hashedName(name string, data []byte, exts []string) string {
	ext := filepath.Ext(name)

	for _, cmp := range exts {
		if ext == cmp {
			sum := md5.Sum(data)

			return strings.TrimSuffix(name, ext) + "." + hex.EncodeToString(sum[:])[:8] + ext
		}
	}

	return name
}

func (b *builderImpl) writeFile(f site.File) error {
	rel := filepath.FromSlash(f.Path)

	if dir := filepath.Dir(rel); dir != "." {
		err := b.mkOutDir(dir)
		if err != nil {
			return err
		}
	}

	outP := filepath.Join(b.config.OutputDir, rel)

	err := b.write(outP, f.Data)
	if err != nil {
		return err
	}

	b.log.Printf("==> Writing %q DONE", outP)

	return nil
}

// write stores data at path, minified first when minification is on.
func (b *builderImpl) write(path string, data []byte) error {
	b.counter++

	if b.mini != nil {
		out, err := b.mini.Minify(path, data)
		if err != nil {
			return err
		}

		data = out
	}

	err := os.WriteFile(path, data, os.FileMode(_ReadWrite))
	if err != nil {
		return fmt.Errorf("could not write file %q: %w", path, err)
	}

	return nil
}

func (b *builderImpl) mkOutDir(rel string) error {
	dirP := filepath.Join(b.config.OutputDir, rel)

	err := os.MkdirAll(dirP, os.FileMode(_ReadWriteExecute))
	if err != nil {
		return fmt.Errorf("could not create directory %q: %w", dirP, err)
	}

	return nil
}
