package capture

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"

	"github.com/df07/go-interactive-raytracer/pkg/renderer"
)

var sceneNameCleaner = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

const (
	eventsFile   = "events.jsonl.sz"
	framesFile   = "frames.bin.zst"
	manifestFile = "manifest.json"

	// frame, width, height, captured-at nanos
	frameHeaderSize = 8 + 4 + 4 + 8
)

// Manifest describes the recording layout so tooling can locate its parts
type Manifest struct {
	Version    int    `json:"version"`
	CreatedAt  string `json:"created_at"`
	Scene      string `json:"scene"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	EventsPath string `json:"events_path"`
	FramesPath string `json:"frames_path"`
}

// Event is one line of the recording's event log
type Event struct {
	Frame      int             `json:"frame"`
	CapturedAt string          `json:"captured_at"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Recorder streams displayed frames and status events to a directory:
// frames go to a zstd stream, events to a snappy-framed JSON lines log
type Recorder struct {
	mu          sync.Mutex
	dir         string
	now         func() time.Time
	eventFile   *os.File
	eventStream *snappy.Writer
	frameFile   *os.File
	frameStream *zstd.Encoder
	frames      int
	closed      bool
}

// NewRecorder creates <root>/<scene>-<timestamp>/ with a manifest and opens
// the compressed streams. clock may be nil.
func NewRecorder(root, sceneName string, width, height int, clock func() time.Time) (*Recorder, Manifest, error) {
	if root == "" {
		return nil, Manifest{}, fmt.Errorf("recording root must be provided")
	}
	if clock == nil {
		clock = time.Now
	}

	cleaned := sceneNameCleaner.ReplaceAllString(sceneName, "")
	if cleaned == "" {
		cleaned = "scene"
	}
	created := clock().UTC()
	dir := filepath.Join(root, fmt.Sprintf("%s-%s", cleaned, created.Format("20060102T150405Z")))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, Manifest{}, fmt.Errorf("failed to create recording directory: %w", err)
	}

	manifest := Manifest{
		Version:    1,
		CreatedAt:  created.Format(time.RFC3339Nano),
		Scene:      sceneName,
		Width:      width,
		Height:     height,
		EventsPath: eventsFile,
		FramesPath: framesFile,
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, Manifest{}, err
	}
	if err := os.WriteFile(filepath.Join(dir, manifestFile), data, 0o644); err != nil {
		return nil, Manifest{}, fmt.Errorf("failed to write manifest: %w", err)
	}

	eventFile, err := os.Create(filepath.Join(dir, eventsFile))
	if err != nil {
		return nil, Manifest{}, err
	}
	frameFile, err := os.Create(filepath.Join(dir, framesFile))
	if err != nil {
		eventFile.Close()
		return nil, Manifest{}, err
	}
	frameStream, err := zstd.NewWriter(frameFile, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		eventFile.Close()
		frameFile.Close()
		return nil, Manifest{}, err
	}

	return &Recorder{
		dir:         dir,
		now:         clock,
		eventFile:   eventFile,
		eventStream: snappy.NewBufferedWriter(eventFile),
		frameFile:   frameFile,
		frameStream: frameStream,
	}, manifest, nil
}

// Directory returns the directory backing the recording
func (r *Recorder) Directory() string {
	return r.dir
}

// Frames returns the number of frames written so far
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// AppendFrame writes one frame: a fixed little-endian header followed by
// the packed pixels
func (r *Recorder) AppendFrame(frame int, fb *renderer.FrameBuffer) error {
	captured := r.now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("recorder closed")
	}

	header := make([]byte, frameHeaderSize)
	binary.LittleEndian.PutUint64(header[0:8], uint64(frame))
	binary.LittleEndian.PutUint32(header[8:12], uint32(fb.Width))
	binary.LittleEndian.PutUint32(header[12:16], uint32(fb.Height))
	binary.LittleEndian.PutUint64(header[16:24], uint64(captured.UnixNano()))
	if _, err := r.frameStream.Write(header); err != nil {
		return err
	}

	pixels := make([]byte, 4*len(fb.Pixels))
	for i, p := range fb.Pixels {
		binary.LittleEndian.PutUint32(pixels[i*4:], p)
	}
	if _, err := r.frameStream.Write(pixels); err != nil {
		return err
	}

	r.frames++
	return nil
}

// AppendEvent writes a single JSON event line. payload is encoded as JSON.
func (r *Recorder) AppendEvent(frame int, eventType string, payload any) error {
	captured := r.now().UTC()

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}
	line, err := json.Marshal(Event{
		Frame:      frame,
		CapturedAt: captured.Format(time.RFC3339Nano),
		Type:       eventType,
		Payload:    raw,
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("recorder closed")
	}

	if _, err := r.eventStream.Write(append(line, '\n')); err != nil {
		return err
	}
	return r.eventStream.Flush()
}

// Close flushes both streams and releases the files. It is safe to call twice.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	// Attempt every close and report the first failure
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	keep(r.eventStream.Close())
	keep(r.eventFile.Close())
	keep(r.frameStream.Close())
	keep(r.frameFile.Close())
	return firstErr
}
