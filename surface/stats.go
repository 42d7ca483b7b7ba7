package surface

import (
	"fmt"

	"github.com/dolthub/swiss"
	"github.com/gxemu/surfstore/surfutils"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// PrintDetailedMap writes a JSON inventory of the cache into writer: the
// bound slot configuration, both address tables, and the retired pool.
func (s *Store) PrintDetailedMap(writer *jwriter.Writer) {
	objState := writer.Object()
	defer objState.End()

	s.printDetailedMap(&objState)
}

func (s *Store) printDetailedMap(objState *jwriter.ObjectState) {
	boundState := objState.Name("BoundSlots").Object()
	for i := range s.boundColor {
		if s.boundColor[i].surface == nil {
			continue
		}
		slotObj := boundState.Name(fmt.Sprintf("Color%d", i)).Object()
		s.printSurfaceParameters(&slotObj, s.boundColor[i].address, s.boundColor[i].surface)
		slotObj.End()
	}
	if s.boundDepth.surface != nil {
		slotObj := boundState.Name("DepthStencil").Object()
		s.printSurfaceParameters(&slotObj, s.boundDepth.address, s.boundDepth.surface)
		slotObj.End()
	}
	boundState.End()

	s.printTable(objState, "ColorSurfaces", s.colorStorage)
	s.printTable(objState, "DepthStencilSurfaces", s.depthStorage)

	retiredState := objState.Name("RetiredPool").Array()
	for _, cached := range s.retired.surfaces {
		surfObj := retiredState.Object()
		s.printSurfaceParameters(&surfObj, 0, cached)
		surfObj.End()
	}
	retiredState.End()

	objState.Name("CacheTag").Int(int(s.cacheTag))
	objState.Name("WriteTag").Int(int(s.writeTag))
}

func (s *Store) printTable(json *jwriter.ObjectState, name string, table *swiss.Map[uint32, Surface]) {
	arrayState := json.Name(name).Array()
	defer arrayState.End()

	table.Iter(func(addr uint32, cached Surface) bool {
		surfObj := arrayState.Object()
		s.printSurfaceParameters(&surfObj, addr, cached)
		surfObj.End()
		return false
	})
}

func (s *Store) printSurfaceParameters(json *jwriter.ObjectState, addr uint32, cached Surface) {
	info := s.backend.SurfaceInfo(cached)
	desc := cached.Descriptor()

	if addr != 0 {
		json.Name("Address").String(fmt.Sprintf("0x%08x", addr))
	}
	json.Name("Width").Int(int(info.Width))
	json.Name("Height").Int(int(info.Height))
	json.Name("Pitch").Int(int(info.Pitch))
	json.Name("FootprintBytes").Int(int(info.FootprintBytes()))
	json.Name("Dirty").Bool(desc.Dirty)
	json.Name("LastUseTag").Int(int(desc.LastUseTag))
	json.Name("ReadAA").String(desc.ReadAA().String())
}

// BuildStatsString returns summary counters plus the detailed cache
// inventory as a JSON string, for diagnostics and logging.
func (s *Store) BuildStatsString() string {
	writer := jwriter.NewWriter()

	objState := writer.Object()

	var stats surfutils.DetailedStatistics
	stats.Clear()
	s.Statistics(&stats)

	summaryState := objState.Name("Summary").Object()
	summaryState.Name("SurfaceCount").Int(stats.SurfaceCount)
	summaryState.Name("SurfaceBytes").Int(stats.SurfaceBytes)
	summaryState.Name("RetiredCount").Int(stats.RetiredCount)
	summaryState.Name("RetiredBytes").Int(stats.RetiredBytes)
	summaryState.End()

	detailState := objState.Name("Cache").Object()
	s.printDetailedMap(&detailState)
	detailState.End()

	objState.End()

	return string(writer.Bytes())
}
