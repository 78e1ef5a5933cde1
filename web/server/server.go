package server

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-interactive-raytracer/pkg/core"
	"github.com/df07/go-interactive-raytracer/pkg/renderer"
	"github.com/df07/go-interactive-raytracer/pkg/scene"
)

const (
	defaultScene  = "lit-spheres"
	defaultWidth  = 320
	defaultHeight = 240
	minDimension  = 16
	maxDimension  = 2000
)

// Config holds the server options
type Config struct {
	Port      int
	StaticDir string // served at /, skipped when empty
	OutputDir string // screenshots requested by sessions land here
	Workers   int    // render workers per session, 0 auto-detects
}

// DefaultConfig returns the options used by the web binary
func DefaultConfig(port int) Config {
	return Config{
		Port:      port,
		StaticDir: "static",
		OutputDir: "output",
	}
}

// Server handles web requests for the interactive raytracer
type Server struct {
	config Config
	echo   *echo.Echo
}

// NewServer creates a new web server with its routes registered
func NewServer(config Config) *Server {
	s := &Server{config: config, echo: echo.New()}
	s.echo.HideBanner = true
	s.echo.Use(corsMiddleware)

	if config.StaticDir != "" {
		s.echo.Static("/", config.StaticDir)
	}

	s.echo.GET("/api/health", s.handleHealth)
	s.echo.GET("/api/scenes", s.handleScenes)
	s.echo.GET("/api/scene-config", s.handleSceneConfig)
	s.echo.GET("/api/inspect", s.handleInspect)
	s.echo.GET("/api/session", s.handleSession)
	return s
}

// Handler exposes the router, mainly for httptest
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the web server and blocks until it stops
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	log.Printf("Starting web server on http://localhost%s", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func corsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Access-Control-Allow-Origin", "*")
		c.Response().Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Response().Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

		if c.Request().Method == http.MethodOptions {
			return c.NoContent(http.StatusOK)
		}

		return next(c)
	}
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in scenes and scene files
func (s *Server) handleScenes(c echo.Context) error {
	scenes, err := scene.ListAllScenes()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, scenes)
}

// SceneRequest is the scene selection shared by the session, config and inspect endpoints
type SceneRequest struct {
	Scene  string
	Width  int
	Height int
}

// parseSceneRequest reads and validates the scene parameters of a query.
// Width and height default to the scene description's, then to the server defaults.
func parseSceneRequest(values url.Values) (*SceneRequest, *scene.Scene, *scene.Description, error) {
	req := &SceneRequest{Scene: values.Get("scene")}
	if req.Scene == "" {
		req.Scene = defaultScene
	}

	sceneObj, desc, err := scene.Resolve(req.Scene)
	if err != nil {
		return nil, nil, nil, err
	}

	width, height := defaultWidth, defaultHeight
	if desc.Width > 0 && desc.Height > 0 {
		width, height = desc.Width, desc.Height
	}
	if req.Width, err = parseIntParam(values, "width", width, minDimension, maxDimension); err != nil {
		return nil, nil, nil, err
	}
	if req.Height, err = parseIntParam(values, "height", height, minDimension, maxDimension); err != nil {
		return nil, nil, nil, err
	}
	return req, sceneObj, desc, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// SceneConfigResponse describes a scene's defaults and the accepted parameter ranges
type SceneConfigResponse struct {
	Scene       string              `json:"scene"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Width       int                 `json:"width"`
	Height      int                 `json:"height"`
	Primitives  int                 `json:"primitives"`
	Lights      int                 `json:"lights"`
	FieldOfView float64             `json:"fieldOfView"`
	Settings    core.RenderSettings `json:"settings"`
	Limits      map[string]Range    `json:"limits"`
}

// Range is an inclusive parameter range
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(c echo.Context) error {
	req, sceneObj, desc, err := parseSceneRequest(c.QueryParams())
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, SceneConfigResponse{
		Scene:       req.Scene,
		Name:        desc.Name,
		Description: desc.Description,
		Width:       req.Width,
		Height:      req.Height,
		Primitives:  sceneObj.PrimitiveCount(),
		Lights:      len(sceneObj.Lights),
		FieldOfView: sceneObj.Camera.FieldOfView(),
		Settings:    sceneObj.Settings,
		Limits: map[string]Range{
			"width":      {Min: minDimension, Max: maxDimension},
			"height":     {Min: minDimension, Max: maxDimension},
			"maxBounces": {Min: 1, Max: maxBounces},
			"frames":     {Min: 0, Max: maxFrames},
		},
	})
}

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool       `json:"hit"`
	MaterialKind string     `json:"materialKind,omitempty"`
	Dynamic      bool       `json:"dynamic"`
	Point        [3]float64 `json:"point"`
	Normal       [3]float64 `json:"normal"`
	Distance     float64    `json:"distance"`
	Color        [3]float64 `json:"color"`
	Roughness    float64    `json:"roughness"`
}

// handleInspect casts the primary ray through a pixel and describes what it hits
func (s *Server) handleInspect(c echo.Context) error {
	values := c.QueryParams()
	req, sceneObj, _, err := parseSceneRequest(values)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	x, err := parseIntParam(values, "x", -1, 0, req.Width-1)
	if err == nil && x < 0 {
		err = fmt.Errorf("missing x")
	}
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	y, err := parseIntParam(values, "y", -1, 0, req.Height-1)
	if err == nil && y < 0 {
		err = fmt.Errorf("missing y")
	}
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	_, hit := renderer.Inspect(sceneObj, req.Width, req.Height, x, y)
	if !hit.DidHit {
		return c.JSON(http.StatusOK, InspectResponse{Hit: false})
	}

	mat := sceneObj.Material(hit.MaterialIndex)
	return c.JSON(http.StatusOK, InspectResponse{
		Hit:          true,
		MaterialKind: mat.Kind.String(),
		Dynamic:      hit.IsDynamic,
		Point:        [3]float64{hit.Point.X, hit.Point.Y, hit.Point.Z},
		Normal:       [3]float64{hit.Normal.X, hit.Normal.Y, hit.Normal.Z},
		Distance:     hit.T,
		Color:        [3]float64{mat.Color.X, mat.Color.Y, mat.Color.Z},
		Roughness:    mat.Roughness,
	})
}
