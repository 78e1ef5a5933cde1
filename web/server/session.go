package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/df07/go-interactive-raytracer/pkg/capture"
	"github.com/df07/go-interactive-raytracer/pkg/core"
	"github.com/df07/go-interactive-raytracer/pkg/geometry"
	"github.com/df07/go-interactive-raytracer/pkg/renderer"
	"github.com/df07/go-interactive-raytracer/pkg/scene"
)

const (
	maxBounces   = 16
	maxFrames    = 100000
	maxFrameStep = 0.1 // seconds; longer gaps between frames are clamped
	pingInterval = 30 * time.Second
	sendQueue    = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ClientMessage is an intent sent by the browser
type ClientMessage struct {
	Type   string                `json:"type"` // "input", "toggle", "screenshot"
	Input  *geometry.CameraInput `json:"input,omitempty"`
	Toggle string                `json:"toggle,omitempty"` // "lighting", "shadows", "reflections", "bounces", "accumulate", "glossy"
	Delta  int                   `json:"delta,omitempty"`  // bounce increment for "bounces"
}

// ServerMessage is pushed to the browser
type ServerMessage struct {
	Type     string               `json:"type"` // "frame", "console", "settings", "screenshot", "complete", "error"
	Frame    *FrameUpdate         `json:"frame,omitempty"`
	Console  *ConsoleMessage      `json:"console,omitempty"`
	Settings *core.RenderSettings `json:"settings,omitempty"`
	Path     string               `json:"path,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// FrameUpdate carries one displayed frame
type FrameUpdate struct {
	Frame     int    `json:"frame"`
	ImageData string `json:"imageData"` // Base64 encoded PNG
	Stats     Stats  `json:"stats"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// Stats represents render statistics
type Stats struct {
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int     `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	MinSamples     int     `json:"minSamples"`
	MaxSamplesUsed int     `json:"maxSamplesUsed"`
	DynamicPixels  int     `json:"dynamicPixels"`
	Reset          bool    `json:"reset"`
	FrameMs        float64 `json:"frameMs"`
}

func newStats(stats renderer.RenderStats) Stats {
	return Stats{
		TotalPixels:    stats.TotalPixels,
		TotalSamples:   stats.TotalSamples,
		AverageSamples: stats.AverageSamples,
		MinSamples:     stats.MinSamples,
		MaxSamplesUsed: stats.MaxSamplesUsed,
		DynamicPixels:  stats.DynamicPixels,
		Reset:          stats.Reset,
		FrameMs:        float64(stats.Duration.Microseconds()) / 1000,
	}
}

// session is one interactive render bound to a websocket connection.
// Only writeLoop writes to the connection.
type session struct {
	conn      *websocket.Conn
	scene     *scene.Scene
	renderer  *renderer.Renderer
	name      string
	outputDir string
	frames    int
	send      chan []byte
	console   chan ConsoleMessage

	mu        sync.Mutex
	input     geometry.CameraInput
	lastFrame *renderer.FrameBuffer
	lastTick  time.Time
}

// handleSession upgrades to a websocket and streams frames until the client leaves
func (s *Server) handleSession(c echo.Context) error {
	values := c.QueryParams()
	req, sceneObj, _, err := parseSceneRequest(values)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	frames, err := parseIntParam(values, "frames", 0, 0, maxFrames)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Println("upgrade:", err)
		return nil
	}
	defer conn.Close()

	console := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("session-%d", time.Now().UnixNano())
	config := renderer.DefaultConfig(req.Width, req.Height)
	config.NumWorkers = s.config.Workers

	sess := &session{
		conn:      conn,
		scene:     sceneObj,
		renderer:  renderer.NewRenderer(config, sceneObj.Settings, NewWebLogger(renderID, console)),
		name:      req.Scene,
		outputDir: s.config.OutputDir,
		frames:    frames,
		send:      make(chan []byte, sendQueue),
		console:   console,
	}
	defer sess.renderer.Close()

	log.Printf("Session %s: %s at %dx%d", renderID, req.Scene, req.Width, req.Height)
	sess.run()
	log.Printf("Session %s closed", renderID)
	return nil
}

// run serves the session until the client disconnects
func (sess *session) run() {
	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		sess.writeLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		sess.consoleLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		sess.renderLoop(ctx)
	}()

	sess.post(ctx, ServerMessage{Type: "settings", Settings: ptrTo(sess.renderer.Settings())})
	sess.readLoop(ctx)
	cancel()
	wg.Wait()
}

func ptrTo[T any](v T) *T { return &v }

// readLoop handles client intents until the connection fails
func (sess *session) readLoop(ctx context.Context) {
	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Println("read error:", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			sess.post(ctx, ServerMessage{Type: "error", Error: fmt.Sprintf("invalid message: %v", err)})
			continue
		}
		if err := sess.handle(ctx, msg); err != nil {
			sess.post(ctx, ServerMessage{Type: "error", Error: err.Error()})
		}
	}
}

// handle applies one client intent
func (sess *session) handle(ctx context.Context, msg ClientMessage) error {
	switch msg.Type {
	case "input":
		if msg.Input == nil {
			return errors.New("input message without input")
		}
		sess.mu.Lock()
		sess.input = sess.input.Merge(*msg.Input)
		sess.mu.Unlock()
		return nil

	case "toggle":
		if err := sess.toggle(msg.Toggle, msg.Delta); err != nil {
			return err
		}
		sess.post(ctx, ServerMessage{Type: "settings", Settings: ptrTo(sess.renderer.Settings())})
		return nil

	case "screenshot":
		path, err := sess.screenshot()
		if err != nil {
			return err
		}
		sess.post(ctx, ServerMessage{Type: "screenshot", Path: path})
		return nil

	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
}

func (sess *session) toggle(name string, delta int) error {
	r := sess.renderer
	switch name {
	case "lighting":
		r.CycleLightingMode()
	case "shadows":
		r.ToggleShadows()
	case "reflections":
		r.ToggleReflections()
	case "bounces":
		if delta == 0 {
			return errors.New("bounces toggle needs a non-zero delta")
		}
		current := r.Settings().MaxBounces
		if next := min(current+delta, maxBounces); next != current {
			r.IncrementBounces(next - current)
		}
	case "accumulate":
		r.ToggleAccumulation()
	case "glossy":
		r.ToggleGlossy()
	default:
		return fmt.Errorf("unknown toggle %q", name)
	}
	return nil
}

// screenshot saves the last displayed frame under the output directory
func (sess *session) screenshot() (string, error) {
	sess.mu.Lock()
	fb := sess.lastFrame
	sess.mu.Unlock()
	if fb == nil {
		return "", errors.New("no frame rendered yet")
	}

	path := capture.ScreenshotPath(sess.outputDir, sess.name, "screenshot", "png", time.Now())
	if err := capture.SaveScreenshot(fb, path); err != nil {
		return "", err
	}
	return path, nil
}

// beforeFrame applies queued input and animation on the render goroutine
func (sess *session) beforeFrame(frame int) {
	now := time.Now()

	sess.mu.Lock()
	input := sess.input
	sess.input = geometry.CameraInput{Forward: input.Forward, Right: input.Right, Up: input.Up}
	elapsed := 0.0
	if !sess.lastTick.IsZero() {
		elapsed = min(now.Sub(sess.lastTick).Seconds(), maxFrameStep)
	}
	sess.lastTick = now
	sess.mu.Unlock()

	sess.scene.Camera.Update(input, elapsed)
	sess.scene.Update(elapsed)
}

// renderLoop streams progressive frames until the context ends or the frame limit is reached
func (sess *session) renderLoop(ctx context.Context) {
	start := time.Now()
	frameChan, errChan := sess.renderer.RenderProgressive(ctx, sess.scene, renderer.ProgressiveOptions{
		MaxFrames:   sess.frames,
		BeforeFrame: sess.beforeFrame,
	})

	for result := range frameChan {
		sess.mu.Lock()
		sess.lastFrame = result.Frame
		sess.mu.Unlock()

		imageData, err := imageToBase64PNG(result.Frame.Image())
		if err != nil {
			sess.post(ctx, ServerMessage{Type: "error", Error: fmt.Sprintf("failed to encode image: %v", err)})
			continue
		}
		sess.post(ctx, ServerMessage{Type: "frame", Frame: &FrameUpdate{
			Frame:     result.Stats.Frame,
			ImageData: imageData,
			Stats:     newStats(result.Stats),
			ElapsedMs: time.Since(start).Milliseconds(),
		}})
	}

	if err := <-errChan; err != nil {
		if !errors.Is(err, context.Canceled) {
			sess.post(ctx, ServerMessage{Type: "error", Error: err.Error()})
		}
		return
	}
	sess.post(ctx, ServerMessage{Type: "complete"})
}

// consoleLoop forwards renderer log lines to the client
func (sess *session) consoleLoop(ctx context.Context) {
	for {
		select {
		case msg := <-sess.console:
			sess.post(ctx, ServerMessage{Type: "console", Console: &msg})
		case <-ctx.Done():
			return
		}
	}
}

// post queues a message for the writer, giving up when the session ends
func (sess *session) post(ctx context.Context, msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to encode %s message: %v", msg.Type, err)
		return
	}
	select {
	case sess.send <- data:
	case <-ctx.Done():
	}
}

// writeLoop is the only writer on the connection
func (sess *session) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case data := <-sess.send:
			if err := sess.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := sess.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			_ = sess.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
