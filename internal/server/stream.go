package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// FrameBuffer keeps the most recent annotated frame as JPEG.
type FrameBuffer struct {
	mu      sync.RWMutex
	jpeg    []byte
	updated time.Time
}

// NewFrameBuffer creates an empty FrameBuffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

// Update encodes frame and makes it the latest. Empty frames are ignored.
func (b *FrameBuffer) Update(frame *gocv.Mat) {
	if frame == nil || frame.Empty() {
		return
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return
	}
	defer buf.Close()

	b.Set(buf.GetBytes())
}

// Set stores an already encoded JPEG.
func (b *FrameBuffer) Set(jpeg []byte) {
	data := make([]byte, len(jpeg))
	copy(data, jpeg)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.jpeg = data
	b.updated = time.Now()
}

// Latest returns the latest JPEG and when it was stored. ok is false until
// the first frame arrives.
func (b *FrameBuffer) Latest() (jpeg []byte, updated time.Time, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.jpeg, b.updated, b.jpeg != nil
}

// StreamHandler serves the frame buffer as MJPEG.
type StreamHandler struct {
	frames   *FrameBuffer
	interval time.Duration
}

// NewStreamHandler creates a new StreamHandler polling frames at fps.
func NewStreamHandler(frames *FrameBuffer, fps int) *StreamHandler {
	if fps <= 0 {
		fps = 15
	}
	return &StreamHandler{
		frames:   frames,
		interval: time.Second / time.Duration(fps),
	}
}

// ServeHTTP streams MJPEG frames until the client disconnects. A frame is
// written only when it changed since the previous write.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var last time.Time
	for {
		if jpeg, updated, ok := h.frames.Latest(); ok && updated.After(last) {
			last = updated
			if err := writePart(w, jpeg); err != nil {
				return
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	_, err := fmt.Fprint(w, "\r\n")
	return err
}
