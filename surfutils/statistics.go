package surfutils

import "math"

type Statistics struct {
	SurfaceCount int
	SurfaceBytes int
}

func (s *Statistics) Clear() {
	s.SurfaceCount = 0
	s.SurfaceBytes = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.SurfaceCount += other.SurfaceCount
	s.SurfaceBytes += other.SurfaceBytes
}

type DetailedStatistics struct {
	Statistics
	RetiredCount   int
	RetiredBytes   int
	SurfaceSizeMin int
	SurfaceSizeMax int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.RetiredCount = 0
	s.RetiredBytes = 0
	s.SurfaceSizeMin = math.MaxInt
	s.SurfaceSizeMax = 0
}

func (s *DetailedStatistics) AddSurface(sizeBytes int) {
	s.SurfaceCount++
	s.SurfaceBytes += sizeBytes

	if sizeBytes < s.SurfaceSizeMin {
		s.SurfaceSizeMin = sizeBytes
	}

	if sizeBytes > s.SurfaceSizeMax {
		s.SurfaceSizeMax = sizeBytes
	}
}

func (s *DetailedStatistics) AddRetired(sizeBytes int) {
	s.RetiredCount++
	s.RetiredBytes += sizeBytes
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)
	s.RetiredCount += other.RetiredCount
	s.RetiredBytes += other.RetiredBytes

	if other.SurfaceSizeMin < s.SurfaceSizeMin {
		s.SurfaceSizeMin = other.SurfaceSizeMin
	}

	if other.SurfaceSizeMax > s.SurfaceSizeMax {
		s.SurfaceSizeMax = other.SurfaceSizeMax
	}
}
