package web

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate

import (
	"fmt"
	"strconv"

	"github.com/philipparndt/gomesh/internal/controller"
	"github.com/philipparndt/gomesh/internal/table"
	"github.com/philipparndt/gomesh/pkg/engine"
)

// appState is everything the app component renders
type appState struct {
	VM     controller.ViewModel
	Frame  int
	Width  int
	Height int
	Error  string
}

var (
	dimensions     = []int{3, 2}
	exteriorShapes = []engine.ExteriorShape{engine.ExteriorNone, engine.ExteriorBox, engine.ExteriorSphere}
)

// post builds a datastar action that stores the element value in $value
// before posting
func post(path string) string {
	return fmt.Sprintf("$value = el.value; @post('%s')", path)
}

func tablePath(t controller.TableView, action string) string {
	return "/tables/" + t.Kind.String() + "/" + action
}

func rowPath(t controller.TableView, row table.Row, action string) string {
	return fmt.Sprintf("/rows/%s/%d/%s", t.Kind, row.Index, action)
}

func pageAction(t controller.TableView, page int) string {
	return fmt.Sprintf("@post('%s')", tablePath(t, "page/"+strconv.Itoa(page)))
}

// frameURL changes with every frame so browsers refetch the image
func frameURL(frame int) string {
	return "/viewer.png?v=" + strconv.Itoa(frame)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatOptional(v float64) string {
	if v <= 0 {
		return ""
	}
	return formatFloat(v)
}
