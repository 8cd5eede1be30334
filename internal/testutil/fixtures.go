package testutil

// Sample departure board documents for engine, display and API tests

// SampleBoardResponse has four services in feed order:
//
//	0: 10:00 Bristol Temple Meads, Plat 1, running late at 10:20
//	1: 10:05 Oxford, Plat 2, on time
//	2: 10:10 Heathrow Airport, no platform, cancelled
//	3: 10:15 Didcot Parkway, Plat 1, "On Time"
//
// By effective departure time the order is 1, 2, 3, 0.
const SampleBoardResponse = `{
	"locationName": "London Paddington",
	"crs": "PAD",
	"generatedAt": "2025-03-14T09:58:12.1234567+00:00",
	"platformAvailable": true,
	"nrccMessages": [
		{"Value": "\n<p>Disruption between <a href=\"https://www.nationalrail.co.uk\">Reading</a> &amp; Swindon.</p>"},
		{"value": "Lifts at Paddington &quot;out of order&quot;"},
		{"category": "Unused"}
	],
	"trainServices": [
		{
			"std": "10:00",
			"etd": "10:20",
			"platform": "1",
			"operator": "Great Western Railway",
			"operatorCode": "GW",
			"isCancelled": false,
			"cancelReason": null,
			"delayReason": "This train has been delayed by a signalling fault",
			"length": 9,
			"serviceID": "svc-bristol",
			"destination": [{"locationName": "Bristol Temple Meads", "crs": "BRI", "via": null}],
			"subsequentCallingPoints": [{"callingPoint": [
				{"locationName": "Reading", "crs": "RDG", "st": "10:25", "et": "10:45"},
				{"locationName": "Swindon", "crs": "SWI", "st": "11:00", "et": "On time"},
				{"locationName": "Bristol Temple Meads", "crs": "BRI", "st": "11:40", "et": null}
			]}]
		},
		{
			"std": "10:05",
			"etd": "On time",
			"platform": "2",
			"operator": "Great Western Railway",
			"isCancelled": false,
			"coaches": "5",
			"serviceID": "svc-oxford",
			"destination": [{"locationName": "Oxford", "crs": "OXF"}],
			"subsequentCallingPoints": [{"callingPoint": [
				{"locationName": "Slough", "st": "10:20", "et": "On time"},
				{"locationName": "Reading", "st": "10:35", "et": "On time"},
				{"locationName": "Oxford", "st": "11:02", "et": "On time"}
			]}]
		},
		{
			"std": "10:10",
			"etd": "Cancelled",
			"platform": null,
			"operator": "Heathrow Express",
			"isCancelled": true,
			"cancelReason": "This train has been cancelled because of a shortage of train crew",
			"serviceID": "svc-heathrow",
			"destination": [{"locationName": "Heathrow Airport T5", "crs": "HWV"}],
			"subsequentCallingPoints": [{"callingPoint": [
				{"locationName": "Heathrow Central", "st": "10:25", "et": "Cancelled"},
				{"locationName": "Heathrow Airport T5", "st": "10:31", "et": "Cancelled"}
			]}]
		},
		{
			"std": "10:15",
			"etd": "On Time",
			"platform": "1",
			"operator": "Elizabeth line",
			"isCancelled": false,
			"adhocAlerts": ["Short platforms at Hanwell"],
			"serviceID": "svc-didcot",
			"destination": [{"locationName": "Didcot Parkway", "crs": "DID"}],
			"subsequentCallingPoints": [{"callingPoint": [
				{"locationName": "Ealing Broadway", "st": "10:24", "et": "On time"},
				{"locationName": "Didcot Parkway", "st": "11:20", "et": "On time"}
			]}]
		}
	]
}`

// SampleSystemMessage is the advisory text SampleBoardResponse yields
const SampleSystemMessage = `Disruption between Reading & Swindon. | Lifts at Paddington "out of order"`

// SamplePlatformBoardResponse has services at platforms 1, 2, 1 in time order
const SamplePlatformBoardResponse = `{
	"locationName": "Clapham Junction",
	"trainServices": [
		{"std": "08:00", "etd": "On time", "platform": "1", "destination": [{"locationName": "Waterloo"}]},
		{"std": "08:02", "etd": "On time", "platform": "2", "destination": [{"locationName": "Victoria"}]},
		{"std": "08:04", "etd": "On time", "platform": "1", "destination": [{"locationName": "Waterloo"}]}
	]
}`

// SampleNoServicesResponse is a board with a null service list
const SampleNoServicesResponse = `{
	"locationName": "Bedwyn",
	"trainServices": null,
	"nrccMessages": null
}`

// SampleEmptyResponse is an empty JSON document
const SampleEmptyResponse = `{}`

// SampleMalformedResponse is truncated JSON
const SampleMalformedResponse = `{"locationName": "London Paddington", "trainServices": [{"std": "10:00"`

// SampleErrorResponse is the body a gateway returns for an unknown station
const SampleErrorResponse = `{
	"error": {
		"code": "STATION_NOT_FOUND",
		"message": "Station not found"
	}
}`
