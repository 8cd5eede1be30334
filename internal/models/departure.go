package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mobil-koeln/moko-board/internal/operators"
)

// Status words the feed uses in place of a clock time
const (
	StatusOnTime    = "On time"
	StatusCancelled = "Cancelled"
)

// Service is one scheduled departure as shown on the board
type Service struct {
	ScheduledTime string         `json:"std"`
	EstimatedTime string         `json:"etd"`
	Platform      string         `json:"platform,omitempty"`
	Destination   string         `json:"destination"`
	OperatorName  string         `json:"operator,omitempty"`
	CoachCount    string         `json:"coaches,omitempty"`
	IsCancelled   bool           `json:"isCancelled"`
	IsDelayed     bool           `json:"isDelayed"`
	CancelReason  string         `json:"cancelReason,omitempty"`
	DelayReason   string         `json:"delayReason,omitempty"`
	AdhocAlerts   string         `json:"adhocAlerts,omitempty"`
	CallingPoints []CallingPoint `json:"callingPoints,omitempty"`
}

// ServiceResponse represents the raw JSON for a single entry of trainServices
type ServiceResponse struct {
	STD                     Text                       `json:"std"`
	ETD                     Text                       `json:"etd"`
	Platform                Text                       `json:"platform"`
	Operator                Text                       `json:"operator"`
	OperatorCode            Text                       `json:"operatorCode"`
	Destination             []LocationResponse         `json:"destination"`
	Origin                  []LocationResponse         `json:"origin"`
	SubsequentCallingPoints []CallingPointListResponse `json:"subsequentCallingPoints"`
	IsCancelled             bool                       `json:"isCancelled"`
	CancelReason            Text                       `json:"cancelReason"`
	DelayReason             Text                       `json:"delayReason"`
	AdhocAlerts             Text                       `json:"adhocAlerts"`
	Coaches                 Text                       `json:"coaches"`
	Length                  Text                       `json:"length"`
	ServiceID               Text                       `json:"serviceID"`
}

// ToService converts the raw response to a Service.
// It fails when the scheduled time is missing or not a clock time.
func (r *ServiceResponse) ToService() (*Service, error) {
	std := r.STD.String()
	if std == "" {
		return nil, fmt.Errorf("service %q has no scheduled time", r.ServiceID.String())
	}
	if _, _, ok := ParseClock(std); !ok {
		return nil, fmt.Errorf("service %q has invalid scheduled time %q", r.ServiceID.String(), std)
	}

	etd := r.ETD.String()
	svc := &Service{
		ScheduledTime: std,
		EstimatedTime: etd,
		Platform:      r.Platform.String(),
		Destination:   firstLocationName(r.Destination),
		OperatorName:  r.Operator.String(),
		CoachCount:    coachCount(r.Coaches, r.Length),
		IsCancelled:   r.IsCancelled,
		IsDelayed:     IsDelayedStatus(etd),
		CancelReason:  r.CancelReason.String(),
		AdhocAlerts:   r.AdhocAlerts.String(),
		CallingPoints: toCallingPoints(r.SubsequentCallingPoints),
	}

	if svc.OperatorName == "" {
		svc.OperatorName = operators.Name(r.OperatorCode.String())
	}

	// The reason only applies while the service is running late
	if svc.IsDelayed {
		svc.DelayReason = r.DelayReason.String()
	}

	return svc, nil
}

// IsOnTime reports whether an estimate is the "On time" status word
func IsOnTime(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), StatusOnTime)
}

// IsCancelledStatus reports whether an estimate is the "Cancelled" status word
func IsCancelledStatus(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), StatusCancelled)
}

// IsDelayedStatus reports whether an estimate means the service runs late.
// An absent estimate is not treated as a delay.
func IsDelayedStatus(etd string) bool {
	if strings.TrimSpace(etd) == "" {
		return false
	}
	return !IsOnTime(etd) && !IsCancelledStatus(etd)
}

// ParseClock parses an "HH:MM" time of day
func ParseClock(s string) (hour, minute int, ok bool) {
	h, m, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// EffectiveTime returns the time the service is expected to leave on the
// day of ref. The scheduled time is used unless the estimate is a clock
// time. Times are naive: a service after midnight sorts as early today.
func (s *Service) EffectiveTime(ref time.Time) time.Time {
	h, m, _ := ParseClock(s.ScheduledTime)
	if !IsOnTime(s.EstimatedTime) && !IsCancelledStatus(s.EstimatedTime) {
		if eh, em, ok := ParseClock(s.EstimatedTime); ok {
			h, m = eh, em
		}
	}
	y, mo, d := ref.Date()
	return time.Date(y, mo, d, h, m, 0, 0, ref.Location())
}

// OperatorText returns the "A <operator> service" suffix, or "" without an operator
func (s *Service) OperatorText() string {
	if s.OperatorName == "" {
		return ""
	}
	return "   A " + s.OperatorName + " service"
}
