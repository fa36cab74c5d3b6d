package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"coursekit/internal/model"
)

type WriteOptions struct {
	Overwrite bool
	// HTML also writes <id>.html next to the markdown file.
	HTML bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteCourse writes <toDir>/courses/<id>.md (and <id>.html with opt.HTML).
func WriteCourse(c *model.Course, toDir string, opt WriteOptions) (WriteResult, error) {
	if c == nil {
		return WriteResult{}, errors.New("missing course")
	}
	id := strings.TrimSpace(c.ID)
	if id == "" {
		return WriteResult{}, errors.New("missing course id")
	}
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	outDir := filepath.Join(toDir, "courses")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return WriteResult{}, err
	}
	outPath := filepath.Join(outDir, id+".md")
	if err := writeFile(outPath, []byte(RenderCourseMarkdown(c)), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	res := WriteResult{Written: []string{outPath}}
	if !opt.HTML {
		return res, nil
	}
	page, err := RenderCourseHTML(c)
	if err != nil {
		return res, err
	}
	htmlPath := filepath.Join(outDir, id+".html")
	if err := writeFile(htmlPath, []byte(page), opt.Overwrite); err != nil {
		return res, err
	}
	res.Written = append(res.Written, htmlPath)
	return res, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
