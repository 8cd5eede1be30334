// Package display drives the departure board: it turns the engine's
// current selection into row texts, advances the per-row toggle and
// scroll state each frame and draws the result onto a matrix surface.
package display

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mobil-koeln/moko-board/internal/departures"
	"github.com/mobil-koeln/moko-board/internal/matrix"
	"github.com/mobil-koeln/moko-board/internal/models"
)

// Fixed row texts
const (
	CallingAtLabel   = "Calling at:"
	NoServicesText   = "No services"
	NoMoreText       = "No more services"
	FetchErrorText   = "Error fetching data"
	clockFormat      = "15:04:05"
	backingGap       = 2
	callingPointsGap = 2
)

var (
	ErrNoEngine  = errors.New("display: engine is required")
	ErrNoSurface = errors.New("display: surface is required")
	ErrNoFont    = errors.New("display: font is required")
)

// Status is a point-in-time view of the board state for observers on
// other goroutines
type Status struct {
	FirstRow       FirstRowState
	ThirdRow       ThirdRowState
	FourthRow      FourthRowState
	DisplayVersion uint64
	DataVersion    uint64
	Selection      departures.Selection
	Platform       string
	PlatformOnly   bool
	Location       string
	FetchFailures  uint64
}

// Board is the display state machine. All methods except Stop,
// SelectPlatform, UnselectPlatform, DisplayVersion and Status must be
// called from the goroutine that runs the board.
type Board struct {
	engine  *departures.Engine
	surface matrix.Surface
	fonts   *matrix.FontCache
	opts    Options
	logger  *log.Logger
	now     func() time.Time

	width  int
	height int

	selection departures.Selection

	firstDeparture Text
	firstETD       Text
	firstCoaches   Text
	callingAt      Text
	callingPoints  Text
	second         Text
	secondETD      Text
	third          Text
	thirdETD       Text
	location       Text
	message        Text
	clock          Text

	firstRow  FirstRowState
	thirdRow  ThirdRowState
	fourthRow FourthRowState

	firstTimer  timer
	thirdTimer  timer
	fourthTimer timer

	fetchFailures uint64

	hasMessage            bool
	messageScrollComplete bool
	scrollCallingPoints   bool

	displayVersion atomic.Uint64
	running        atomic.Bool
	platformDirty  atomic.Bool
	status         atomic.Pointer[Status]
}

// Option configures a Board
type Option func(*Board)

// WithLogger sets the logger
func WithLogger(l *log.Logger) Option {
	return func(b *Board) {
		b.logger = l
	}
}

// WithClock sets the clock used for row timers and the on-screen time
func WithClock(now func() time.Time) Option {
	return func(b *Board) {
		b.now = now
	}
}

// New creates a board and computes its first content from the engine's
// current snapshot.
func New(engine *departures.Engine, surface matrix.Surface, font *matrix.Font, opts Options, options ...Option) (*Board, error) {
	switch {
	case engine == nil:
		return nil, ErrNoEngine
	case surface == nil:
		return nil, ErrNoSurface
	case font == nil:
		return nil, ErrNoFont
	}

	b := &Board{
		engine:    engine,
		surface:   surface,
		fonts:     matrix.NewFontCache(font),
		opts:      opts.withDefaults(),
		logger:    log.New(io.Discard),
		now:       time.Now,
		width:     surface.Width(),
		height:    surface.Height(),
		selection: departures.EmptySelection(),
	}
	for _, opt := range options {
		opt(b)
	}

	b.firstDeparture.Y = b.opts.FirstLineY
	b.firstETD.Y = b.opts.FirstLineY
	b.firstCoaches.Y = b.opts.FirstLineY
	b.callingAt.Y = b.opts.SecondLineY
	b.callingPoints.Y = b.opts.SecondLineY
	b.callingPoints.X = b.width
	b.second.Y = b.opts.ThirdLineY
	b.secondETD.Y = b.opts.ThirdLineY
	b.third.Y = b.opts.ThirdLineY
	b.thirdETD.Y = b.opts.ThirdLineY
	b.location.Y = b.opts.FourthLineY
	b.message.Y = b.opts.FourthLineY
	b.message.X = b.width
	b.clock.Y = b.opts.FourthLineY

	start := b.now()
	b.firstTimer = timer{interval: b.opts.ETDCoachInterval, last: start}
	b.thirdTimer = timer{interval: b.opts.ThirdRowInterval, last: start}
	b.fourthTimer = timer{interval: b.opts.MessageInterval, last: start}

	b.displayVersion.Store(1)
	b.UpdateContent()
	b.updateClock(start)
	b.publishStatus()

	b.logger.Debug("Display initialised",
		"width", b.width,
		"height", b.height,
		"font", font.Name(),
		"platforms", b.opts.ShowPlatforms,
		"location", b.opts.ShowLocation,
		"messages", b.opts.ShowMessages)
	return b, nil
}

// UpdateContent recomputes every row text from the engine. On failure
// the rows show a placeholder and the error text.
func (b *Board) UpdateContent() {
	if err := b.updateContent(); err != nil {
		b.logger.Error("Updating display content", "err", err)
		b.showError(err)
	}
}

func (b *Board) updateContent() error {
	sel, snap := b.engine.FindServices()
	v := b.displayVersion.Load()

	b.selection = sel
	b.location.Set("", b.fonts, v)
	if b.opts.ShowLocation {
		b.location.Set(snap.LocationName(), b.fonts, v)
		b.location.Center(b.width)
	}

	b.hasMessage = false
	b.message.Set("", b.fonts, v)
	if b.opts.ShowMessages {
		b.message.Set(snap.SystemMessage(), b.fonts, v)
		b.hasMessage = b.message.String() != ""
	}

	if snap.Len() == 0 {
		b.selection = departures.EmptySelection()
		b.firstDeparture.Set(NoServicesText, b.fonts, v)
		b.clearServiceTexts(v)
		return nil
	}

	if err := b.updateFirst(snap, sel.First(), v); err != nil {
		return err
	}
	if err := b.updateFollowing(&b.second, &b.secondETD, "2nd ", snap, sel.Second(), v); err != nil {
		return err
	}
	if err := b.updateFollowing(&b.third, &b.thirdETD, "3rd ", snap, sel.Third(), v); err != nil {
		return err
	}

	b.scrollCallingPoints = b.callingPoints.Width() > b.callingPointsSpace()
	if !b.scrollCallingPoints {
		b.pinCallingPoints()
	}

	b.logger.Debug("Display content updated",
		"measured", b.fonts.Measured(),
		"first", b.firstDeparture.String(),
		"callingPoints", b.callingPoints.String(),
		"scroll", b.scrollCallingPoints,
		"second", b.second.String(),
		"third", b.third.String(),
		"message", b.hasMessage)
	return nil
}

func (b *Board) updateFirst(snap *departures.Snapshot, index int, v uint64) error {
	if index == departures.NoService {
		b.firstDeparture.Set(NoMoreText, b.fonts, v)
		b.firstETD.Set("", b.fonts, v)
		b.firstCoaches.Set("", b.fonts, v)
		b.callingAt.Set("", b.fonts, v)
		b.callingPoints.Set("", b.fonts, v)
		return nil
	}

	svc, err := snap.Service(index)
	if err != nil {
		return err
	}

	b.firstDeparture.Set(b.departureLine("", &svc), b.fonts, v)
	b.firstETD.Set(svc.EstimatedTime, b.fonts, v)
	if label := models.CoachesLabel(svc.CoachCount); label != "" {
		b.firstCoaches.Set(label, b.fonts, v)
	} else {
		b.firstCoaches.Set(svc.EstimatedTime, b.fonts, v)
	}
	b.firstETD.RightAlign(b.width)
	b.firstCoaches.RightAlign(b.width)

	b.callingAt.Set(CallingAtLabel, b.fonts, v)

	var line string
	if svc.IsCancelled {
		line = svc.CancelReason
	} else {
		points, err := snap.CallingPoints(index)
		if err != nil {
			return err
		}
		line = points + " " + svc.OperatorText() + models.FormationText(svc.CoachCount)
	}
	if svc.IsDelayed && svc.DelayReason != "" {
		line += " - " + svc.DelayReason
	}
	b.callingPoints.Set(line, b.fonts, v)
	return nil
}

func (b *Board) updateFollowing(line, etd *Text, ordinal string, snap *departures.Snapshot, index int, v uint64) error {
	if index == departures.NoService {
		line.Set(NoMoreText, b.fonts, v)
		etd.Set("", b.fonts, v)
		return nil
	}

	svc, err := snap.Service(index)
	if err != nil {
		return err
	}
	line.Set(b.departureLine(ordinal, &svc), b.fonts, v)
	etd.Set(svc.EstimatedTime, b.fonts, v)
	etd.RightAlign(b.width)
	return nil
}

// departureLine formats "<ordinal><std> [Plat.<p> ]<destination> "
func (b *Board) departureLine(ordinal string, svc *models.Service) string {
	line := ordinal + svc.ScheduledTime + " "
	if b.opts.ShowPlatforms && svc.Platform != "" {
		line += "Plat." + svc.Platform + " "
	}
	return line + svc.Destination + " "
}

func (b *Board) clearServiceTexts(v uint64) {
	for _, t := range []*Text{
		&b.firstETD, &b.firstCoaches, &b.callingAt, &b.callingPoints,
		&b.second, &b.secondETD, &b.third, &b.thirdETD,
	} {
		t.Set("", b.fonts, v)
	}
	b.scrollCallingPoints = false
}

func (b *Board) showError(err error) {
	v := b.displayVersion.Load()
	b.selection = departures.EmptySelection()
	b.clearServiceTexts(v)
	b.firstDeparture.Set(FetchErrorText, b.fonts, v)
	b.second.Set(FetchErrorText, b.fonts, v)
	b.third.Set(FetchErrorText, b.fonts, v)
	b.callingAt.Set(CallingAtLabel, b.fonts, v)
	b.callingPoints.Set(err.Error(), b.fonts, v)
	b.scrollCallingPoints = b.callingPoints.Width() > b.callingPointsSpace()
	if !b.scrollCallingPoints {
		b.pinCallingPoints()
	}
}

func (b *Board) callingPointsSpace() int {
	return b.width - b.callingAt.Width() - callingPointsGap
}

func (b *Board) pinCallingPoints() {
	b.callingPoints.X = b.callingAt.Width() + callingPointsGap
}

// ApplyFeed ingests raw feed text and refreshes the row texts, tagged
// with the new display version. A rejected feed leaves the board showing
// the previous data.
func (b *Board) ApplyFeed(raw []byte) error {
	if err := b.engine.Ingest(raw); err != nil {
		return fmt.Errorf("apply feed: %w", err)
	}
	v := b.displayVersion.Add(1)
	b.UpdateContent()
	b.logger.Debug("Display data replaced", "displayVersion", v, "dataVersion", b.engine.Version())
	return nil
}

// SelectPlatform limits the board to one platform from the next frame on
func (b *Board) SelectPlatform(platform string) {
	b.engine.SelectPlatform(platform)
	b.platformDirty.Store(true)
}

// UnselectPlatform shows every platform again from the next frame on
func (b *Board) UnselectPlatform() {
	b.engine.UnselectPlatform()
	b.platformDirty.Store(true)
}

// DisplayVersion returns how many times new feed data reached the board
func (b *Board) DisplayVersion() uint64 {
	return b.displayVersion.Load()
}

// Status returns the state published after the last frame
func (b *Board) Status() Status {
	if s := b.status.Load(); s != nil {
		return *s
	}
	return Status{}
}

func (b *Board) publishStatus() {
	platform, only := b.engine.SelectedPlatform()
	b.status.Store(&Status{
		FirstRow:       b.firstRow,
		ThirdRow:       b.thirdRow,
		FourthRow:      b.fourthRow,
		DisplayVersion: b.displayVersion.Load(),
		DataVersion:    b.engine.Version(),
		Selection:      b.selection,
		Platform:       platform,
		PlatformOnly:   only,
		Location:       b.location.String(),
		FetchFailures:  b.fetchFailures,
	})
}
