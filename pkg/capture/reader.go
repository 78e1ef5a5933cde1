package capture

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"

	"github.com/df07/go-interactive-raytracer/pkg/renderer"
)

// RecordedFrame is one decoded frame of a recording
type RecordedFrame struct {
	Frame      int
	CapturedAt time.Time
	Buffer     *renderer.FrameBuffer
}

// ReadManifest loads the manifest of a recording directory
func ReadManifest(dir string) (Manifest, error) {
	var manifest Manifest
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		return manifest, fmt.Errorf("failed to read manifest: %w", err)
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return manifest, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return manifest, nil
}

// ReadFrames decodes every frame of a recording directory
func ReadFrames(dir string) ([]RecordedFrame, error) {
	manifest, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(dir, manifest.FramesPath))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader, err := zstd.NewReader(file)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var frames []RecordedFrame
	header := make([]byte, frameHeaderSize)
	for {
		if _, err := io.ReadFull(reader, header); err != nil {
			if errors.Is(err, io.EOF) {
				return frames, nil
			}
			return nil, fmt.Errorf("failed to read frame header: %w", err)
		}

		frame := int(binary.LittleEndian.Uint64(header[0:8]))
		width := int(binary.LittleEndian.Uint32(header[8:12]))
		height := int(binary.LittleEndian.Uint32(header[12:16]))
		captured := time.Unix(0, int64(binary.LittleEndian.Uint64(header[16:24]))).UTC()

		pixels := make([]byte, 4*width*height)
		if _, err := io.ReadFull(reader, pixels); err != nil {
			return nil, fmt.Errorf("failed to read frame %d pixels: %w", frame, err)
		}

		fb := renderer.NewFrameBuffer(width, height)
		for i := range fb.Pixels {
			fb.Pixels[i] = binary.LittleEndian.Uint32(pixels[i*4:])
		}
		frames = append(frames, RecordedFrame{Frame: frame, CapturedAt: captured, Buffer: fb})
	}
}

// ReadEvents decodes the event log of a recording directory
func ReadEvents(dir string) ([]Event, error) {
	manifest, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(dir, manifest.EventsPath))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(snappy.NewReader(file))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var events []Event
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			return nil, fmt.Errorf("failed to parse event: %w", err)
		}
		events = append(events, event)
	}
	return events, scanner.Err()
}
