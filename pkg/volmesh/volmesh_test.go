package volmesh

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const tetraMesh = `mesh3d
dimension
3
geomtype
0

# surfnr    bcnr   domin  domout      np      p1      p2      p3
surfaceelements
4
       1       1       1       0       3       1       3       2
       2       1       1       0       3       1       2       4
       3       1       1       0       3       1       4       3
       4       1       1       0       3       2       3       4

#  matnr      np      p1      p2      p3      p4
volumeelements
1
       1       4       1       2       3       4

# surfid  0   p1   p2
edgesegmentsgi2
0

#          X             Y             Z
points
4
  0.0000000000000000  0.0000000000000000  0.0000000000000000
  1.0000000000000000  0.0000000000000000  0.0000000000000000
  0.0000000000000000  2.0000000000000000  0.0000000000000000
  0.0000000000000000  0.0000000000000000  3.0000000000000000

materials
1
1 steel

bcnames
1
1 outer wall

endmesh
`

func TestReadTetra(t *testing.T) {
	stats, err := Read(strings.NewReader(tetraMesh))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if stats.Points != 4 {
		t.Errorf("Points failed: expected 4, got %d", stats.Points)
	}
	if stats.SurfaceElements != 4 {
		t.Errorf("SurfaceElements failed: expected 4, got %d", stats.SurfaceElements)
	}
	if stats.VolumeElements != 1 {
		t.Errorf("VolumeElements failed: expected 1, got %d", stats.VolumeElements)
	}
	if stats.Dimension != 3 {
		t.Errorf("Dimension failed: expected 3, got %d", stats.Dimension)
	}
	if len(stats.Materials) != 1 || stats.Materials[0] != "steel" {
		t.Errorf("Materials failed: expected [steel], got %v", stats.Materials)
	}
	if len(stats.Boundaries) != 1 || stats.Boundaries[0] != "outer wall" {
		t.Errorf("Boundaries failed: expected [outer wall], got %v", stats.Boundaries)
	}
	if got := stats.Bounds.MaxDimension(); got != 3 {
		t.Errorf("Bounds failed: expected max dimension 3, got %v", got)
	}
	if got := stats.String(); got != "4 points, 4 surface elements, 1 volume elements" {
		t.Errorf("String failed: got %q", got)
	}
}

func TestReadRejectsOtherFormats(t *testing.T) {
	if _, err := Read(strings.NewReader("solid foo\nendsolid foo\n")); err == nil {
		t.Fatal("Expected error for non-netgen input, got none")
	}
}

func TestReadTruncated(t *testing.T) {
	content := strings.Replace(tetraMesh, "endmesh\n", "", 1)
	if _, err := Read(strings.NewReader(content)); err == nil {
		t.Fatal("Expected error for missing endmesh, got none")
	}

	cut := tetraMesh[:strings.Index(tetraMesh, "points")+len("points\n4\n")]
	_, err := Read(strings.NewReader(cut))
	if err == nil || !strings.Contains(err.Error(), "points") {
		t.Errorf("Expected points error, got: %v", err)
	}
}

func TestReadFileGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tetra.vol.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte(tetraMesh)); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	stats, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if stats.VolumeElements != 1 {
		t.Errorf("VolumeElements failed: expected 1, got %d", stats.VolumeElements)
	}
}
