package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Scene name
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "file"
	FilePath    string `json:"filePath"`    // Path to scene file (file type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

const (
	builtinGroup = "Built-in Scenes"
	fileGroup    = "Scene Files"
)

// scenesDirs are the places scene files are searched for
var scenesDirs = []string{"scenes", "../scenes"}

// ListBuiltinScenes describes every built-in scene
func ListBuiltinScenes() []SceneInfo {
	var scenes []SceneInfo
	for _, name := range BuiltinNames() {
		desc, _ := Builtin(name)
		scenes = append(scenes, SceneInfo{
			ID:          name,
			Name:        titleCase(name),
			DisplayName: titleCase(name),
			Description: desc.Description,
			Group:       builtinGroup,
			Type:        "builtin",
		})
	}
	return scenes
}

// ListFileScenes scans the first scenes directory found and returns its JSON scenes
func ListFileScenes() ([]SceneInfo, error) {
	var scenesDir string
	for _, path := range scenesDirs {
		if _, err := os.Stat(path); err == nil {
			scenesDir = path
			break
		}
	}
	if scenesDir == "" {
		return []SceneInfo{}, nil
	}
	return ListSceneFiles(scenesDir)
}

// ListSceneFiles returns the JSON scenes in dir sorted by display name
func ListSceneFiles(dir string) ([]SceneInfo, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := []SceneInfo{}
	for _, filePath := range files {
		info, err := ParseSceneMetadata(filePath)
		if err != nil {
			// Skip unreadable files but keep listing the rest
			fmt.Printf("Warning: failed to parse metadata for %s: %v\n", filePath, err)
			continue
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})
	return scenes, nil
}

// ParseSceneMetadata reads the name and description fields of a scene file
func ParseSceneMetadata(filePath string) (SceneInfo, error) {
	filename := filepath.Base(filePath)
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	info := SceneInfo{
		ID:          "file:" + nameWithoutExt,
		Name:        titleCase(nameWithoutExt),
		DisplayName: titleCase(nameWithoutExt),
		Group:       fileGroup,
		Type:        "file",
		FilePath:    filePath,
	}

	desc, err := LoadDescription(filePath)
	if err != nil {
		return info, err
	}
	if desc.Name != "" {
		info.Name = titleCase(desc.Name)
		info.DisplayName = info.Name
	}
	info.Description = desc.Description
	return info, nil
}

// ListAllScenes returns both built-in and file scenes, grouped by category
func ListAllScenes() (ScenesResponse, error) {
	var response ScenesResponse

	fileScenes, err := ListFileScenes()
	if err != nil {
		return response, fmt.Errorf("failed to list scene files: %w", err)
	}

	response.Groups = append(response.Groups, SceneGroup{Name: builtinGroup, Scenes: ListBuiltinScenes()})
	if len(fileScenes) > 0 {
		response.Groups = append(response.Groups, SceneGroup{Name: fileGroup, Scenes: fileScenes})
	}
	return response, nil
}

// Resolve builds the scene behind a scene id: a built-in name or "file:<name>"
// for a file in the scenes directory. Any other id is treated as a file path.
func Resolve(id string) (*Scene, *Description, error) {
	if desc, err := Builtin(id); err == nil {
		s, err := Build(desc)
		return s, desc, err
	}

	if name, ok := strings.CutPrefix(id, "file:"); ok {
		for _, dir := range scenesDirs {
			path := filepath.Join(dir, name+".json")
			if _, err := os.Stat(path); err == nil {
				return Load(path)
			}
		}
		return nil, nil, fmt.Errorf("scene file %q not found", name)
	}

	if strings.HasSuffix(id, ".json") {
		return Load(id)
	}
	return nil, nil, fmt.Errorf("unknown scene %q (available: %s)", id, strings.Join(BuiltinNames(), ", "))
}

// titleCase converts a filename-style string to title case
// e.g., "lit-spheres" -> "Lit Spheres"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
