package detection

import (
	"image"
	"io"

	"github.com/ironsheep/lane-tracker/internal/imaging"
)

// FrameSource yields camera frames in playback order.
//
// Next returns io.EOF once the sequence is exhausted.
type FrameSource interface {
	Next() (image.Image, error)
	Close() error
}

// DirSource reads still frames from a directory.
type DirSource struct {
	paths []string
	next  int
	cache *imaging.FrameCache
}

// OpenDir lists the frames in dir. Frames are decoded lazily by Next.
func OpenDir(dir string) (*DirSource, error) {
	paths, err := imaging.ListFrames(dir)
	if err != nil {
		return nil, err
	}
	return &DirSource{paths: paths, cache: imaging.NewFrameCache()}, nil
}

// Len returns the number of frames in the directory.
func (s *DirSource) Len() int { return len(s.paths) }

// Next implements FrameSource. Each frame is evicted from the cache once it
// has been handed out.
func (s *DirSource) Next() (image.Image, error) {
	if s.next >= len(s.paths) {
		return nil, io.EOF
	}
	path := s.paths[s.next]
	s.next++

	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	s.cache.Evict(path)
	return img, nil
}

// Close implements FrameSource.
func (s *DirSource) Close() error {
	s.cache.Clear()
	return nil
}
