package camera

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"picam-cli/pkg/models"
)

// Frame is a decoded preview image ready for display.
type Frame struct {
	Seq        uint64
	Status     models.CameraStatus
	Data       []byte
	Format     string
	Width      int
	Height     int
	ReceivedAt time.Time
}

// Surface displays frames. Show is called with frames in increasing Seq order.
type Surface interface {
	Show(frame Frame) error
}

// ImageFetcher loads preview images that are referenced by URL.
type ImageFetcher interface {
	FetchImage(ctx context.Context, src string) ([]byte, error)
}

// Renderer decodes preview images off the poll loop. Every image gets a
// sequence number; a decode that finishes after a newer frame was shown is dropped.
type Renderer struct {
	surface  Surface
	fetcher  ImageFetcher
	logger   *zap.Logger
	observer Observer

	issued atomic.Uint64
	wg     sync.WaitGroup

	mu    sync.Mutex
	shown uint64
}

// NewRenderer builds a renderer. fetcher may be nil if the appliance only sends data URIs.
func NewRenderer(surface Surface, fetcher ImageFetcher, logger *zap.Logger, observer Observer) *Renderer {
	if surface == nil {
		surface = DiscardSurface{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Renderer{
		surface:  surface,
		fetcher:  fetcher,
		logger:   logger.With(zap.String("component", "renderer")),
		observer: observer,
	}
}

// Render schedules src for decoding and returns its sequence number.
func (r *Renderer) Render(ctx context.Context, status models.CameraStatus, src string) uint64 {
	seq := r.issued.Add(1)
	received := time.Now()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.decodeAndShow(ctx, seq, status, src, received)
	}()
	return seq
}

// Wait blocks until every scheduled decode has finished.
func (r *Renderer) Wait() {
	r.wg.Wait()
}

// Shown returns the sequence number of the frame currently displayed.
func (r *Renderer) Shown() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shown
}

func (r *Renderer) decodeAndShow(ctx context.Context, seq uint64, status models.CameraStatus, src string, received time.Time) {
	data, err := r.load(ctx, src)
	if err != nil {
		r.logger.Warn("preview image not loaded", zap.Uint64("seq", seq), zap.Error(err))
		return
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		r.logger.Warn("preview image not decoded", zap.Uint64("seq", seq), zap.Error(err))
		return
	}

	frame := Frame{
		Seq:        seq,
		Status:     status,
		Data:       data,
		Format:     format,
		Width:      cfg.Width,
		Height:     cfg.Height,
		ReceivedAt: received,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if seq <= r.shown {
		r.observer.FrameDropped()
		r.logger.Debug("stale frame dropped", zap.Uint64("seq", seq), zap.Uint64("shown", r.shown))
		return
	}
	if err := r.surface.Show(frame); err != nil {
		r.logger.Warn("frame not shown", zap.Uint64("seq", seq), zap.Error(err))
		return
	}
	r.shown = seq
	r.observer.FrameShown(len(data))
}

func (r *Renderer) load(ctx context.Context, src string) ([]byte, error) {
	if strings.HasPrefix(src, "data:") {
		data, _, err := DecodeDataURI(src)
		return data, err
	}
	if r.fetcher == nil {
		return nil, errors.New("image is a URL but no fetcher is configured")
	}
	return r.fetcher.FetchImage(ctx, src)
}

// DecodeDataURI returns the payload and media type of a data: URI.
func DecodeDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", fmt.Errorf("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("data URI without payload")
	}

	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")
	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", fmt.Errorf("decode base64 payload: %w", err)
		}
		return data, mediaType, nil
	}

	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode data URI payload: %w", err)
	}
	return []byte(unescaped), mediaType, nil
}
