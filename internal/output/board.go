package output

import (
	"fmt"
	"io"

	"github.com/mobil-koeln/moko-board/internal/departures"
	"github.com/mobil-koeln/moko-board/internal/models"
)

// indent lines detail rows up under the destination column
const indent = "                          "

// BoardOptions configures the text board
type BoardOptions struct {
	Colors            *Colors
	Platform          string
	Limit             int
	ShowCallingPoints bool
	ShowMessages      bool
	ShowPlatforms     bool
}

// RenderBoard renders every service of snap in departure order
func RenderBoard(w io.Writer, snap *departures.Snapshot, opts BoardOptions) {
	c := opts.Colors
	if c == nil {
		c = NewColors(ColorNever)
	}

	if name := snap.LocationName(); name != "" {
		_, _ = fmt.Fprintln(w, c.Header("%s", name))
	}

	shown := 0
	for _, idx := range snap.Order() {
		if opts.Limit > 0 && shown == opts.Limit {
			break
		}
		svc, err := snap.Service(idx)
		if err != nil {
			continue
		}
		if opts.Platform != "" && svc.Platform != opts.Platform {
			continue
		}
		renderService(w, c, snap, idx, &svc, opts)
		shown++
	}

	if shown == 0 {
		_, _ = fmt.Fprintln(w, "No services.")
	}

	if opts.ShowMessages {
		if msg := snap.SystemMessage(); msg != "" {
			_, _ = fmt.Fprintln(w)
			_, _ = fmt.Fprintln(w, c.Message("%s", msg))
		}
	}
}

// RenderSelection renders only the services the display would show
func RenderSelection(w io.Writer, snap *departures.Snapshot, sel departures.Selection, opts BoardOptions) {
	c := opts.Colors
	if c == nil {
		c = NewColors(ColorNever)
	}
	if sel.Count() == 0 {
		_, _ = fmt.Fprintln(w, "No services.")
		return
	}
	for _, idx := range sel {
		if idx == departures.NoService {
			continue
		}
		svc, err := snap.Service(idx)
		if err != nil {
			continue
		}
		renderService(w, c, snap, idx, &svc, opts)
	}
}

func renderService(w io.Writer, c *Colors, snap *departures.Snapshot, idx int, svc *models.Service, opts BoardOptions) {
	platformStr := "        " // 8 spaces
	if opts.ShowPlatforms && svc.Platform != "" {
		p := svc.Platform
		if len(p) > 3 {
			p = p[:3]
		}
		platformStr = fmt.Sprintf("Plat %-3s", p)
	}

	dest := svc.Destination
	if svc.IsCancelled {
		dest = c.Canceled("%s", dest)
	} else {
		dest = c.Dest("%s", dest)
	}

	_, _ = fmt.Fprintf(w, "%s  %s  %s  %s\n",
		c.Time("%-5s", svc.ScheduledTime),
		c.FormatETD(svc.EstimatedTime),
		c.Platform("%s", platformStr),
		dest,
	)

	switch {
	case svc.IsCancelled:
		if svc.CancelReason != "" {
			_, _ = fmt.Fprintf(w, "%s%s\n", indent, c.Canceled("%s", svc.CancelReason))
		}
		return
	case svc.IsDelayed && svc.DelayReason != "":
		_, _ = fmt.Fprintf(w, "%s%s\n", indent, c.Delayed("%s", svc.DelayReason))
	}

	if opts.ShowCallingPoints {
		if points, err := snap.CallingPoints(idx); err == nil && points != "" {
			_, _ = fmt.Fprintf(w, "%s%s\n", indent, c.Calling("Calling at: %s", points))
		}
	}

	detail := svc.OperatorName
	if coaches := models.CoachesLabel(svc.CoachCount); coaches != "" {
		if detail != "" {
			detail += ", "
		}
		detail += coaches
	}
	if detail != "" {
		_, _ = fmt.Fprintf(w, "%s%s\n", indent, c.Operator("%s", detail))
	}
	if svc.AdhocAlerts != "" {
		_, _ = fmt.Fprintf(w, "%s%s\n", indent, c.Message("%s", svc.AdhocAlerts))
	}
}
