//go:build !gocv

package detection

import (
	"errors"
	"testing"
)

func TestGoCVUnavailable(t *testing.T) {
	if _, err := New("gocv", DefaultOptions()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("New(gocv) error = %v, want ErrUnavailable", err)
	}
	if _, err := OpenVideo("drive.mp4"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("OpenVideo error = %v, want ErrUnavailable", err)
	}
}
