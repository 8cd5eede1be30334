package models

import (
	"strings"
)

// CallingPoint is one subsequent stop of a service
type CallingPoint struct {
	Name          string `json:"name"`
	ScheduledTime string `json:"st,omitempty"`
	EstimatedTime string `json:"et,omitempty"`
	IsCancelled   bool   `json:"isCancelled,omitempty"`
}

// CallingPointListResponse is one entry of subsequentCallingPoints
type CallingPointListResponse struct {
	CallingPoint []CallingPointResponse `json:"callingPoint"`
}

// CallingPointResponse represents the raw JSON of a single calling point
type CallingPointResponse struct {
	LocationName Text `json:"locationName"`
	CRS          Text `json:"crs"`
	ST           Text `json:"st"`
	ET           Text `json:"et"`
	AT           Text `json:"at"`
	IsCancelled  bool `json:"isCancelled"`
}

// toCallingPoints converts the first calling point list. Later lists
// describe portions of a splitting train and are not shown.
func toCallingPoints(lists []CallingPointListResponse) []CallingPoint {
	if len(lists) == 0 {
		return nil
	}
	raw := lists[0].CallingPoint
	points := make([]CallingPoint, 0, len(raw))
	for _, cp := range raw {
		points = append(points, CallingPoint{
			Name:          cp.LocationName.String(),
			ScheduledTime: cp.ST.String(),
			EstimatedTime: cp.ET.String(),
			IsCancelled:   cp.IsCancelled,
		})
	}
	return points
}

// JoinCallingPoints renders calling point names joined with ", ".
// With annotate set, each name is followed by its live estimate in
// brackets, or by its scheduled time when the estimate is "On time".
func JoinCallingPoints(points []CallingPoint, annotate bool) string {
	var sb strings.Builder
	for i, cp := range points {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(cp.Name)
		if !annotate || cp.EstimatedTime == "" {
			continue
		}
		if IsOnTime(cp.EstimatedTime) {
			if cp.ScheduledTime != "" {
				sb.WriteString(" (" + cp.ScheduledTime + ")")
			}
			continue
		}
		sb.WriteString(" (" + cp.EstimatedTime + ")")
	}
	return sb.String()
}
