// Package media stores uploaded photos, audio and video as flat files,
// one subdirectory per category.
package media

import (
	"errors"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"backend-travelcompanion/internal/apperr"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

type Category string

const (
	Photos Category = "photos"
	Audio  Category = "audio"
	Videos Category = "videos"
)

var Categories = []Category{Photos, Audio, Videos}

const maxExtensionLen = 10

type categoryInfo struct {
	kind        string
	family      string
	defaultType string
}

var categoryInfos = map[Category]categoryInfo{
	Photos: {kind: "photo", family: "image/", defaultType: "image/jpeg"},
	Audio:  {kind: "audio", family: "audio/", defaultType: "audio/mpeg"},
	Videos: {kind: "video", family: "video/", defaultType: "video/mp4"},
}

// CategoryForKind maps an upload kind (photo, audio, video) to its category.
func CategoryForKind(kind string) (Category, bool) {
	for cat, info := range categoryInfos {
		if info.kind == kind {
			return cat, true
		}
	}
	return "", false
}

func ParseCategory(s string) (Category, bool) {
	_, ok := categoryInfos[Category(s)]
	return Category(s), ok
}

// Kind is the upload kind and multipart field name for c.
func (c Category) Kind() string { return categoryInfos[c].kind }

// Accepts reports whether a declared content type belongs to c.
func (c Category) Accepts(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), categoryInfos[c].family)
}

func (c Category) DefaultContentType() string { return categoryInfos[c].defaultType }

type Store struct {
	fs   afero.Fs
	root string
}

// NewStore prepares root and its category directories on fsys.
func NewStore(fsys afero.Fs, root string) (*Store, error) {
	for _, cat := range Categories {
		if err := fsys.MkdirAll(filepath.Join(root, string(cat)), 0o755); err != nil {
			return nil, apperr.IO(err, "create media directory %s", cat)
		}
	}
	return &Store{fs: fsys, root: root}, nil
}

// Save writes r under a random name that keeps the extension of
// originalName and returns that name.
func (s *Store) Save(cat Category, r io.Reader, originalName string) (string, error) {
	if _, ok := categoryInfos[cat]; !ok {
		return "", apperr.Validation("unknown media category %q", cat)
	}
	name := uuid.NewString() + extension(originalName)
	target := filepath.Join(s.root, string(cat), name)

	f, err := s.fs.Create(target)
	if err != nil {
		return "", apperr.IO(err, "create %s", name)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(target)
		return "", apperr.IO(err, "write %s", name)
	}
	if err := f.Close(); err != nil {
		return "", apperr.IO(err, "close %s", name)
	}
	return name, nil
}

// Resolve returns the path of filename inside the category directory.
// It does not check that the file exists.
func (s *Store) Resolve(cat Category, filename string) (string, error) {
	if _, ok := categoryInfos[cat]; !ok {
		return "", apperr.NotFound("unknown media category %q", cat)
	}
	if filename == "" || strings.ContainsAny(filename, `/\`) || strings.Contains(filename, "..") {
		return "", apperr.Validation("invalid filename %q", filename)
	}
	return filepath.Join(s.root, string(cat), filename), nil
}

// Open returns the file for reading with its size.
func (s *Store) Open(cat Category, filename string) (afero.File, int64, error) {
	p, err := s.Resolve(cat, filename)
	if err != nil {
		return nil, 0, err
	}
	info, err := s.fs.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, apperr.NotFound("file %s not found", filename)
		}
		return nil, 0, apperr.IO(err, "stat %s", filename)
	}
	if info.IsDir() {
		return nil, 0, apperr.NotFound("file %s not found", filename)
	}
	f, err := s.fs.Open(p)
	if err != nil {
		return nil, 0, apperr.IO(err, "open %s", filename)
	}
	return f, info.Size(), nil
}

// Delete removes filename; a missing file is not an error.
func (s *Store) Delete(cat Category, filename string) error {
	p, err := s.Resolve(cat, filename)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperr.IO(err, "delete %s", filename)
	}
	return nil
}

// extension is the text from the last dot of the base name, or "" when
// that text is not a short run of ASCII letters and digits.
func extension(name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	i := strings.LastIndex(base, ".")
	if i < 0 || base == "." || base == ".." {
		return ""
	}
	ext := base[i:]
	if len(ext) < 2 || len(ext) > maxExtensionLen {
		return ""
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return ""
		}
	}
	return ext
}