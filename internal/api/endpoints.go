package api

import (
	"net/url"
	"strconv"
)

const (
	// DefaultBaseURL is a public Huxley2 instance in front of the National
	// Rail departure board service
	DefaultBaseURL = "https://huxley2.azurewebsites.net"

	// EndpointDepartures returns the next departures from a station
	// Path: /departures/{origin}[/to/{destination}]/{rows}?expand=true
	EndpointDepartures = "/departures"

	// DefaultRows is the number of services requested per board
	DefaultRows = 10
)

// DeparturesPath builds the departures path for origin and an optional
// destination filter
func DeparturesPath(origin, destination string, rows int) string {
	p := EndpointDepartures + "/" + url.PathEscape(origin)
	if destination != "" {
		p += "/to/" + url.PathEscape(destination)
	}
	return p + "/" + strconv.Itoa(rows)
}

// DeparturesURL returns the full request URL. expand=true makes the
// feed include the calling points of every service.
func DeparturesURL(baseURL, origin, destination string, rows int) string {
	params := url.Values{}
	params.Set("expand", "true")
	return baseURL + DeparturesPath(origin, destination, rows) + "?" + params.Encode()
}
