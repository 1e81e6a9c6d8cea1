package utils

import "time"

// Stats for performance monitoring
type Stats struct {
	GenerationsPerSecond float64
	AveragePopulation    float64
	TotalGenerations     int
	StartTime            time.Time
	Restarts             int
	PopulationHistory    []float64

	historyLimit int
}

// NewStats keeps at most historyLimit population samples; zero keeps all of them
func NewStats(historyLimit int) *Stats {
	return &Stats{
		StartTime:    time.Now(),
		historyLimit: historyLimit,
	}
}

func (s *Stats) Update(generation int, population int, duration time.Duration) {
	s.TotalGenerations = generation
	if duration > 0 {
		s.GenerationsPerSecond = 1.0 / duration.Seconds()
	}

	// Simple moving average for population
	if len(s.PopulationHistory) == 0 {
		s.AveragePopulation = float64(population)
	} else {
		s.AveragePopulation = (s.AveragePopulation * 0.9) + (float64(population) * 0.1)
	}

	s.PopulationHistory = append(s.PopulationHistory, float64(population))
	if s.historyLimit > 0 && len(s.PopulationHistory) > s.historyLimit {
		s.PopulationHistory = s.PopulationHistory[len(s.PopulationHistory)-s.historyLimit:]
	}
}

// Runtime returns the time elapsed since the stats were created
func (s *Stats) Runtime() time.Duration {
	return time.Since(s.StartTime)
}

// History remembers the hashes of recent generations for cycle detection
type History struct {
	size   int
	hashes []string
}

// NewHistory keeps the last size hashes
func NewHistory(size int) *History {
	return &History{size: max(size, 3)}
}

// Record adds a generation hash and reports whether it repeats one of the
// last three generations, i.e. the board is static or cycling with period <= 3
func (h *History) Record(hash string) (stagnant bool) {
	n := len(h.hashes)
	for i := n - 1; i >= 0 && i >= n-3; i-- {
		if h.hashes[i] == hash {
			stagnant = true
			break
		}
	}

	h.hashes = append(h.hashes, hash)
	if len(h.hashes) > h.size {
		h.hashes = h.hashes[1:]
	}
	return
}

// Reset forgets every recorded hash
func (h *History) Reset() {
	h.hashes = nil
}
