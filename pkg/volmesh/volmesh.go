// Package volmesh reads summary statistics from netgen's native ASCII mesh
// format (.vol), which is what the engine writes for download.
package volmesh

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/philipparndt/gomesh/pkg/geometry"
)

// Stats summarizes a mesh file
type Stats struct {
	Dimension       int
	Points          int
	SurfaceElements int
	VolumeElements  int
	EdgeSegments    int
	Materials       []string
	Boundaries      []string
	Bounds          geometry.BoundingBox
}

// String returns a one line description for the mesh view
func (s Stats) String() string {
	return fmt.Sprintf("%d points, %d surface elements, %d volume elements",
		s.Points, s.SurfaceElements, s.VolumeElements)
}

// ReadFile parses a .vol or .vol.gz file
func ReadFile(path string) (*Stats, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mesh: %w", err)
	}
	defer file.Close()

	var r io.Reader = file
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open compressed mesh: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	return Read(r)
}

type scanner struct {
	*bufio.Scanner
	line int
}

// next returns the next line that is neither blank nor a comment
func (s *scanner) next() (string, bool) {
	for s.Scan() {
		s.line++
		text := strings.TrimSpace(s.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		return text, true
	}
	return "", false
}

func (s *scanner) count(section string) (int, error) {
	text, ok := s.next()
	if !ok {
		return 0, fmt.Errorf("unexpected end of file after %q", section)
	}
	n, err := strconv.Atoi(strings.Fields(text)[0])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("line %d: invalid %s count %q", s.line, section, text)
	}
	return n, nil
}

func (s *scanner) skip(section string, n int) error {
	for i := 0; i < n; i++ {
		if _, ok := s.next(); !ok {
			return fmt.Errorf("%s: expected %d entries, file ends after %d", section, n, i)
		}
	}
	return nil
}

// names reads "<index> <name>" entries as used by materials and bcnames
func (s *scanner) names(section string, n int) ([]string, error) {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		text, ok := s.next()
		if !ok {
			return nil, fmt.Errorf("%s: expected %d entries, file ends after %d", section, n, i)
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			out = append(out, "")
			continue
		}
		out = append(out, strings.Join(fields[1:], " "))
	}
	return out, nil
}

// Read parses a .vol stream. Sections it does not know are skipped line by
// line until the next recognized keyword.
func Read(r io.Reader) (*Stats, error) {
	s := &scanner{Scanner: bufio.NewScanner(r)}
	s.Buffer(make([]byte, 64*1024), 1024*1024)

	header, ok := s.next()
	if !ok {
		return nil, fmt.Errorf("empty mesh file")
	}
	if header != "mesh3d" {
		return nil, fmt.Errorf("not a netgen mesh: expected %q, got %q", "mesh3d", header)
	}

	stats := &Stats{Dimension: 3, Bounds: geometry.NewBoundingBox()}

	for {
		text, ok := s.next()
		if !ok {
			break
		}

		switch keyword := strings.Fields(text)[0]; keyword {
		case "endmesh":
			return stats, s.Err()

		case "dimension":
			n, err := s.count(keyword)
			if err != nil {
				return nil, err
			}
			stats.Dimension = n

		case "surfaceelements", "surfaceelementsgi", "surfaceelementsuv":
			n, err := s.count(keyword)
			if err != nil {
				return nil, err
			}
			stats.SurfaceElements = n
			if err := s.skip(keyword, n); err != nil {
				return nil, err
			}

		case "volumeelements":
			n, err := s.count(keyword)
			if err != nil {
				return nil, err
			}
			stats.VolumeElements = n
			if err := s.skip(keyword, n); err != nil {
				return nil, err
			}

		case "edgesegments", "edgesegmentsgi", "edgesegmentsgi2":
			n, err := s.count(keyword)
			if err != nil {
				return nil, err
			}
			stats.EdgeSegments = n
			if err := s.skip(keyword, n); err != nil {
				return nil, err
			}

		case "points":
			n, err := s.count(keyword)
			if err != nil {
				return nil, err
			}
			stats.Points = n
			if err := s.points(stats, n); err != nil {
				return nil, err
			}

		case "materials":
			n, err := s.count(keyword)
			if err != nil {
				return nil, err
			}
			if stats.Materials, err = s.names(keyword, n); err != nil {
				return nil, err
			}

		case "bcnames":
			n, err := s.count(keyword)
			if err != nil {
				return nil, err
			}
			if stats.Boundaries, err = s.names(keyword, n); err != nil {
				return nil, err
			}
		}
	}

	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("error reading mesh: %w", err)
	}
	return nil, fmt.Errorf("mesh file is truncated: missing %q", "endmesh")
}

func (s *scanner) points(stats *Stats, n int) error {
	for i := 0; i < n; i++ {
		text, ok := s.next()
		if !ok {
			return fmt.Errorf("points: expected %d entries, file ends after %d", n, i)
		}
		fields := strings.Fields(text)
		if len(fields) < 3 {
			return fmt.Errorf("line %d: point needs three coordinates", s.line)
		}
		var c [3]float64
		for j := 0; j < 3; j++ {
			v, err := strconv.ParseFloat(fields[j], 64)
			if err != nil {
				return fmt.Errorf("line %d: invalid coordinate %q", s.line, fields[j])
			}
			c[j] = v
		}
		stats.Bounds.Extend(geometry.NewVector3(c[0], c[1], c[2]))
	}
	return nil
}
