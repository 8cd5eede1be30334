package models

// LocationResponse represents an origin or destination entry of a service
type LocationResponse struct {
	LocationName Text `json:"locationName"`
	CRS          Text `json:"crs"`
	Via          Text `json:"via"`
}

// firstLocationName returns the name of the first entry, or "" if the list is empty
func firstLocationName(locs []LocationResponse) string {
	if len(locs) == 0 {
		return ""
	}
	return locs[0].LocationName.String()
}
