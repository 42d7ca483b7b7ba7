package surface

// retiredPool holds surfaces evicted from the active tables but kept alive
// for recycling into a future allocation of matching shape. Surfaces are
// moved in and out, never copied; a surface lives in exactly one of the
// tables or the pool.
type retiredPool struct {
	surfaces []Surface
}

func (p *retiredPool) push(s Surface) {
	p.surfaces = append(p.surfaces, s)
}

// recycle scans for the first surface satisfying match and takes ownership
// of it. When replacement is non-nil it is swapped into the vacated pool
// slot instead of leaving a hole; otherwise the slot is removed. Returns
// nil when nothing matches.
func (p *retiredPool) recycle(match func(Surface) bool, replacement Surface) Surface {
	for i, cached := range p.surfaces {
		if !match(cached) {
			continue
		}

		if replacement != nil {
			p.surfaces[i] = replacement
		} else {
			p.surfaces = append(p.surfaces[:i], p.surfaces[i+1:]...)
		}
		return cached
	}

	return nil
}
