// Package staging keeps the ordered list of files selected for an order
// before they are sent anywhere.
package staging

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/Delyplott/DelyPlot-Web/internal/models"
)

// DefaultMaxFileSize matches the form's 500 MB limit.
const DefaultMaxFileSize = int64(500 * 1024 * 1024)

var ErrIndexOutOfRange = errors.New("staged file index out of range")

type File struct {
	Name        string
	Size        int64
	ContentType string
	Path        string
}

// Descriptor is the placeholder recorded on the order before upload.
func (f File) Descriptor() models.FileDescriptor {
	return models.PendingFile(f.Name, f.ContentType, f.Size)
}

type Stager struct {
	max   int64
	files []File
}

func NewStager(maxSize int64) *Stager {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &Stager{max: maxSize}
}

func (s *Stager) MaxSize() int64 {
	return s.max
}

// Add appends every file whose size does not exceed the limit and returns
// the names of the ones it skipped. No dedup.
func (s *Stager) Add(files ...File) []string {
	var rejected []string
	for _, f := range files {
		if f.Size > s.max {
			rejected = append(rejected, f.Name)
			continue
		}
		s.files = append(s.files, f)
	}
	return rejected
}

func (s *Stager) Remove(index int) error {
	if index < 0 || index >= len(s.files) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	s.files = append(s.files[:index], s.files[index+1:]...)
	return nil
}

// Files returns a copy of the staged list in insertion order.
func (s *Stager) Files() []File {
	out := make([]File, len(s.files))
	copy(out, s.files)
	return out
}

func (s *Stager) Len() int {
	return len(s.files)
}

func (s *Stager) Reset() {
	s.files = nil
}

// FromPaths stats local files so they can be staged.
func FromPaths(paths ...string) ([]File, error) {
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", p)
		}
		files = append(files, File{
			Name:        info.Name(),
			Size:        info.Size(),
			ContentType: mime.TypeByExtension(filepath.Ext(p)),
			Path:        p,
		})
	}
	return files, nil
}
