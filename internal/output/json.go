package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mobil-koeln/moko-board/internal/departures"
	"github.com/mobil-koeln/moko-board/internal/models"
)

// BoardView is the JSON shape of a board
type BoardView struct {
	Location string           `json:"location"`
	Message  string           `json:"message,omitempty"`
	Version  uint64           `json:"version"`
	Services []models.Service `json:"services"`
}

// NewBoardView collects the services of snap in departure order.
// With a platform set only services at that platform are kept.
func NewBoardView(snap *departures.Snapshot, platform string) BoardView {
	view := BoardView{
		Location: snap.LocationName(),
		Message:  snap.SystemMessage(),
		Version:  snap.Version(),
		Services: []models.Service{},
	}
	for _, idx := range snap.Order() {
		svc, err := snap.Service(idx)
		if err != nil {
			continue
		}
		if platform != "" && svc.Platform != platform {
			continue
		}
		view.Services = append(view.Services, svc)
	}
	return view
}

// WriteJSON writes v as indented JSON
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WritePrettyJSON re-indents a raw JSON document. Input that does not
// parse is written unchanged and the parse error returned.
func WritePrettyJSON(w io.Writer, data []byte) error {
	var pretty interface{}
	if err := json.Unmarshal(data, &pretty); err != nil {
		_, _ = fmt.Fprintln(w, string(data))
		return err
	}
	return WriteJSON(w, pretty)
}
