package app

import (
	"testing"

	"github.com/philipparndt/gomesh/internal/table"
	"github.com/philipparndt/gomesh/pkg/shape"
)

func TestCellText(t *testing.T) {
	row := table.Row{Index: 7, Name: "inlet", MeshSize: 0.5, Visible: false}

	tests := []struct {
		col  int
		want string
	}{
		{0, "7"},
		{1, "inlet"},
		{2, "0.5"},
		{3, "no"},
	}
	for _, tt := range tests {
		if got := cellText(row, tt.col); got != tt.want {
			t.Errorf("cellText(col %d) = %q, want %q", tt.col, got, tt.want)
		}
	}

	row.MeshSize = shape.Unbounded
	row.Visible = true
	if got := cellText(row, 2); got != "" {
		t.Errorf("unset mesh size shown as %q, want empty", got)
	}
	if got := cellText(row, 3); got != "yes" {
		t.Errorf("visible shown as %q, want yes", got)
	}
}

func TestFormatOptional(t *testing.T) {
	if got := formatOptional(0); got != "" {
		t.Errorf("formatOptional(0) = %q, want empty", got)
	}
	if got := formatOptional(2.5); got != "2.5" {
		t.Errorf("formatOptional(2.5) = %q, want 2.5", got)
	}
}
