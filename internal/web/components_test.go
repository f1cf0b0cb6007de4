package web

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/gomesh/internal/controller"
	"github.com/philipparndt/gomesh/internal/table"
	"github.com/philipparndt/gomesh/pkg/shape"
)

func TestTableRowEscapesNames(t *testing.T) {
	view := controller.TableView{Kind: shape.Face}
	row := table.Row{Index: 3, Name: `"><script>alert(1)</script>`, MeshSize: 0.5, Visible: true, Selected: true}

	var buf bytes.Buffer
	require.NoError(t, tableRow(view, row, false).Render(context.Background(), &buf))
	html := buf.String()

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, `value="&#34;&gt;&lt;script&gt;alert(1)&lt;/script&gt;"`)
	assert.Contains(t, html, `class="row selected"`)
	assert.Contains(t, html, `value="0.5"`)
	assert.Contains(t, html, " checked")
	assert.Contains(t, html, "@post(&#39;/rows/faces/3/click&#39;)")
	assert.NotContains(t, html, " disabled")
}

func TestAppRendersDialogAndUpload(t *testing.T) {
	st := appState{VM: controller.ViewModel{
		Dialog: &controller.Dialog{Title: "Error in Geometry Upload", Message: "<b>bad</b>"},
	}}

	var buf bytes.Buffer
	require.NoError(t, App(st).Render(context.Background(), &buf))
	html := buf.String()

	assert.Contains(t, html, `<div id="app">`)
	assert.Contains(t, html, "<h3>Error in Geometry Upload</h3>")
	assert.Contains(t, html, "<p>&lt;b&gt;bad&lt;/b&gt;</p>")
	assert.Contains(t, html, "Welcome to the Meshing App!")
	assert.NotContains(t, html, `class="columns"`)
}
