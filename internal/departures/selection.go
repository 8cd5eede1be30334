package departures

// NoService marks a selection slot without a departure
const NoService = -1

// Selection holds the record indices of the next three departures
type Selection [3]int

// EmptySelection returns a selection with every slot set to NoService
func EmptySelection() Selection {
	return Selection{NoService, NoService, NoService}
}

// First returns the index of the next departure
func (s Selection) First() int { return s[0] }

// Second returns the index of the departure after the first
func (s Selection) Second() int { return s[1] }

// Third returns the index of the third departure
func (s Selection) Third() int { return s[2] }

// Count returns the number of filled slots
func (s Selection) Count() int {
	n := 0
	for _, idx := range s {
		if idx != NoService {
			n++
		}
	}
	return n
}
