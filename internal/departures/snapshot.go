package departures

import (
	"sort"
	"sync"
	"time"

	"github.com/mobil-koeln/moko-board/internal/models"
)

// record is a service owned by exactly one snapshot. Only the two
// calling point strings are filled in after publication, each at most once.
type record struct {
	svc       models.Service
	effective time.Time

	plainOnce sync.Once
	plain     string
	timedOnce sync.Once
	timed     string
}

func (r *record) callingPoints() string {
	r.plainOnce.Do(func() {
		r.plain = models.JoinCallingPoints(r.svc.CallingPoints, false)
	})
	return r.plain
}

func (r *record) callingPointsWithTime() string {
	r.timedOnce.Do(func() {
		r.timed = models.JoinCallingPoints(r.svc.CallingPoints, true)
	})
	return r.timed
}

// Snapshot is the structured view of one successful ingest. It is never
// modified after publication apart from the lazily cached calling points,
// so readers may keep using a snapshot while a newer one is ingested.
type Snapshot struct {
	version       uint64
	locationName  string
	systemMessage string
	records       []*record
	order         []int
	annotate      bool
}

func newSnapshot(board *models.BoardResponse, services []models.Service, ref time.Time, annotate bool) *Snapshot {
	s := &Snapshot{
		locationName:  board.LocationName.String(),
		systemMessage: assembleMessages(board.NrccMessages),
		records:       make([]*record, len(services)),
		order:         make([]int, len(services)),
		annotate:      annotate,
	}
	for i := range services {
		s.records[i] = &record{
			svc:       services[i],
			effective: services[i].EffectiveTime(ref),
		}
		s.order[i] = i
	}

	// Ties keep feed order
	sort.SliceStable(s.order, func(a, b int) bool {
		return s.records[s.order[a]].effective.Before(s.records[s.order[b]].effective)
	})
	return s
}

// Version returns the ingest counter value this snapshot was published with
func (s *Snapshot) Version() uint64 {
	if s == nil {
		return 0
	}
	return s.version
}

// Len returns the number of services in the snapshot
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// LocationName returns the board's station name, "" when absent
func (s *Snapshot) LocationName() string {
	if s == nil {
		return ""
	}
	return s.locationName
}

// SystemMessage returns all advisory messages joined with " | "
func (s *Snapshot) SystemMessage() string {
	if s == nil {
		return ""
	}
	return s.systemMessage
}

// Order returns record indices sorted by effective departure time
func (s *Snapshot) Order() []int {
	if s == nil {
		return nil
	}
	out := make([]int, len(s.order))
	copy(out, s.order)
	return out
}

// EffectiveTime returns the time used to order the record at index
func (s *Snapshot) EffectiveTime(index int) (time.Time, error) {
	r, err := s.record(index)
	if err != nil {
		return time.Time{}, err
	}
	return r.effective, nil
}

// FindServices selects up to three records in effective-time order. With
// a platform set, only records at that platform are considered.
func (s *Snapshot) FindServices(platform string, filter bool) Selection {
	sel := EmptySelection()
	if s == nil {
		return sel
	}

	n := 0
	for _, idx := range s.order {
		if n == len(sel) {
			break
		}
		if filter && s.records[idx].svc.Platform != platform {
			continue
		}
		sel[n] = idx
		n++
	}
	return sel
}

func (s *Snapshot) record(index int) (*record, error) {
	if index < 0 || index >= s.Len() {
		return nil, &IndexError{Index: index, Len: s.Len()}
	}
	return s.records[index], nil
}

// Service returns a copy of the record at index
func (s *Snapshot) Service(index int) (models.Service, error) {
	r, err := s.record(index)
	if err != nil {
		return models.Service{}, err
	}
	svc := r.svc
	svc.CallingPoints = append([]models.CallingPoint(nil), r.svc.CallingPoints...)
	return svc, nil
}

// ScheduledTime returns the scheduled departure time
func (s *Snapshot) ScheduledTime(index int) (string, error) {
	r, err := s.record(index)
	if err != nil {
		return "", err
	}
	return r.svc.ScheduledTime, nil
}

// EstimatedTime returns the estimate or status word
func (s *Snapshot) EstimatedTime(index int) (string, error) {
	r, err := s.record(index)
	if err != nil {
		return "", err
	}
	return r.svc.EstimatedTime, nil
}

// Platform returns the platform, "" when unassigned
func (s *Snapshot) Platform(index int) (string, error) {
	r, err := s.record(index)
	if err != nil {
		return "", err
	}
	return r.svc.Platform, nil
}

// Destination returns the destination name
func (s *Snapshot) Destination(index int) (string, error) {
	r, err := s.record(index)
	if err != nil {
		return "", err
	}
	return r.svc.Destination, nil
}

// OperatorName returns the operator name
func (s *Snapshot) OperatorName(index int) (string, error) {
	r, err := s.record(index)
	if err != nil {
		return "", err
	}
	return r.svc.OperatorName, nil
}

// CoachCount returns the number of coaches, "" when unknown
func (s *Snapshot) CoachCount(index int) (string, error) {
	r, err := s.record(index)
	if err != nil {
		return "", err
	}
	return r.svc.CoachCount, nil
}

// IsCancelled reports whether the service is cancelled
func (s *Snapshot) IsCancelled(index int) (bool, error) {
	r, err := s.record(index)
	if err != nil {
		return false, err
	}
	return r.svc.IsCancelled, nil
}

// IsDelayed reports whether the estimate is neither on time nor cancelled
func (s *Snapshot) IsDelayed(index int) (bool, error) {
	r, err := s.record(index)
	if err != nil {
		return false, err
	}
	return r.svc.IsDelayed, nil
}

// CancelReason returns the cancellation reason
func (s *Snapshot) CancelReason(index int) (string, error) {
	r, err := s.record(index)
	if err != nil {
		return "", err
	}
	return r.svc.CancelReason, nil
}

// DelayReason returns the delay reason
func (s *Snapshot) DelayReason(index int) (string, error) {
	r, err := s.record(index)
	if err != nil {
		return "", err
	}
	return r.svc.DelayReason, nil
}

// AdhocAlerts returns service-level alerts
func (s *Snapshot) AdhocAlerts(index int) (string, error) {
	r, err := s.record(index)
	if err != nil {
		return "", err
	}
	return r.svc.AdhocAlerts, nil
}

// CallingPoints returns the calling points in the form chosen when the
// snapshot was ingested: annotated with times or plain names.
func (s *Snapshot) CallingPoints(index int) (string, error) {
	if s != nil && s.annotate {
		return s.CallingPointsWithTime(index)
	}
	return s.PlainCallingPoints(index)
}

// PlainCallingPoints returns the comma-joined names of subsequent stops
func (s *Snapshot) PlainCallingPoints(index int) (string, error) {
	r, err := s.record(index)
	if err != nil {
		return "", err
	}
	return r.callingPoints(), nil
}

// CallingPointsWithTime returns the stop names each followed by a time
func (s *Snapshot) CallingPointsWithTime(index int) (string, error) {
	r, err := s.record(index)
	if err != nil {
		return "", err
	}
	return r.callingPointsWithTime(), nil
}
