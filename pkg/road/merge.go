package road

// Merger joins segments which continue each other (the last node of one is the first node of the other)
// and share type, direction and speed limit. The node sequence stays the same, so a graph built from
// the merged segments equals the one built from the original segments.
type Merger struct {
	roads           []*Segment
	mergeCount      int
	unmergableCount int
}

func NewMerger(roads []*Segment) *Merger {
	return &Merger{
		roads: roads,
	}
}

func (m *Merger) Merge() {
	// index the segments by their first node
	startsAt := make(map[int64][]*Segment)
	for _, seg := range m.roads {
		if seg.Len() < 2 {
			m.unmergableCount++
			continue
		}
		startsAt[seg.NodeIDs[0]] = append(startsAt[seg.NodeIDs[0]], seg)
	}

	merged := make(map[*Segment]bool)
	newRoads := make([]*Segment, 0, len(m.roads))

	for _, seg := range m.roads {
		if merged[seg] || seg.Len() < 2 {
			continue
		}
		merged[seg] = true

		current := seg
		for {
			end := current.NodeIDs[current.Len()-1]
			foundNext := false
			for _, next := range startsAt[end] {
				if merged[next] {
					continue
				}
				if canMerge(current, next) {
					current = mergeTwoSegments(current, next)
					merged[next] = true
					m.mergeCount++
					foundNext = true
					break
				}
			}
			if !foundNext {
				break
			}
		}

		newRoads = append(newRoads, current)
	}

	m.roads = newRoads
}

func canMerge(s1, s2 *Segment) bool {
	return s1.Type == s2.Type &&
		s1.OneWay == s2.OneWay &&
		s1.MaxSpeed == s2.MaxSpeed
}

func mergeTwoSegments(s1, s2 *Segment) *Segment {
	merged := &Segment{
		ID:       s1.ID,
		Type:     s1.Type,
		OneWay:   s1.OneWay,
		MaxSpeed: s1.MaxSpeed,
		Tags:     s1.Tags,
	}

	// skip the first node of s2, it is the last one of s1
	merged.NodeIDs = append(merged.NodeIDs, s1.NodeIDs...)
	merged.NodeIDs = append(merged.NodeIDs, s2.NodeIDs[1:]...)
	merged.Points = append(merged.Points, s1.Points...)
	merged.Points = append(merged.Points, s2.Points[1:]...)

	return merged
}

func (m *Merger) Roads() []*Segment {
	return m.roads
}

func (m *Merger) MergeCount() int {
	return m.mergeCount
}

func (m *Merger) UnmergableRoadCount() int {
	return m.unmergableCount
}
