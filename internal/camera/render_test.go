package camera

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"picam-cli/pkg/models"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func dataURI(data []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
}

type memorySurface struct {
	mu     sync.Mutex
	frames []Frame
}

func (s *memorySurface) Show(frame Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, frame)
	return nil
}

// gatedFetcher holds each URL until its gate is closed.
type gatedFetcher struct {
	data  []byte
	gates map[string]chan struct{}
}

func (f *gatedFetcher) FetchImage(ctx context.Context, src string) ([]byte, error) {
	if gate, ok := f.gates[src]; ok {
		<-gate
	}
	return f.data, nil
}

func TestDecodeDataURI(t *testing.T) {
	data, mediaType, err := DecodeDataURI("data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("jpeg")))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mediaType)
	assert.Equal(t, []byte("jpeg"), data)

	data, mediaType, err = DecodeDataURI("data:text/plain,hello%20world")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", mediaType)
	assert.Equal(t, []byte("hello world"), data)

	_, _, err = DecodeDataURI("data:image/png;base64")
	assert.Error(t, err)
	_, _, err = DecodeDataURI("http://camera/cam.jpg")
	assert.Error(t, err)
}

func TestRendererShowsDecodedFrame(t *testing.T) {
	surface := &memorySurface{}
	obs := &recordingObserver{}
	r := NewRenderer(surface, nil, nil, obs)

	seq := r.Render(context.Background(), models.StatusReady, dataURI(pngBytes(t, 4, 3)))
	r.Wait()

	require.Len(t, surface.frames, 1)
	f := surface.frames[0]
	assert.Equal(t, seq, f.Seq)
	assert.Equal(t, "png", f.Format)
	assert.Equal(t, 4, f.Width)
	assert.Equal(t, 3, f.Height)
	assert.Equal(t, models.StatusReady, f.Status)
	assert.Equal(t, seq, r.Shown())
	assert.Equal(t, 1, obs.shown)
}

func TestRendererDropsStaleDecode(t *testing.T) {
	surface := &memorySurface{}
	obs := &recordingObserver{}
	slow := make(chan struct{})
	fetcher := &gatedFetcher{data: pngBytes(t, 2, 2), gates: map[string]chan struct{}{"/old.png": slow}}
	r := NewRenderer(surface, fetcher, nil, obs)

	oldSeq := r.Render(context.Background(), models.StatusReady, "/old.png")
	newSeq := r.Render(context.Background(), models.StatusVideo, "/new.png")
	require.Greater(t, newSeq, oldSeq)

	require.Eventually(t, func() bool { return r.Shown() == newSeq }, testTimeout, tick)
	close(slow)
	r.Wait()

	require.Len(t, surface.frames, 1)
	assert.Equal(t, newSeq, surface.frames[0].Seq)
	assert.Equal(t, 1, obs.dropped)
}

func TestRendererSkipsUndecodableImage(t *testing.T) {
	surface := &memorySurface{}
	r := NewRenderer(surface, nil, nil, nil)

	r.Render(context.Background(), models.StatusReady, dataURI([]byte("not an image")))
	r.Render(context.Background(), models.StatusReady, "http://camera/cam.jpg")
	r.Wait()

	assert.Empty(t, surface.frames)
	assert.Zero(t, r.Shown())
}

type failingSurface struct{}

func (failingSurface) Show(Frame) error { return errors.New("disk full") }

func TestRendererKeepsShownOnSurfaceError(t *testing.T) {
	r := NewRenderer(failingSurface{}, nil, nil, nil)
	r.Render(context.Background(), models.StatusReady, dataURI(pngBytes(t, 1, 1)))
	r.Wait()
	assert.Zero(t, r.Shown())
}

func TestFileSurfaceReplacesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview.png")
	s := &FileSurface{Path: path}

	require.NoError(t, s.Show(Frame{Seq: 1, Data: []byte("first")}))
	require.NoError(t, s.Show(Frame{Seq: 2, Data: []byte("second")}))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
