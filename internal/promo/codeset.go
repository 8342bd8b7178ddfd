package promo

type mapCodeSet struct {
	codes map[string]struct{}
}

func newMapCodeSet(capacity int) *mapCodeSet {
	return &mapCodeSet{codes: make(map[string]struct{}, capacity)}
}

// NewCodeSet builds a set from literal codes.
func NewCodeSet(codes ...string) CodeSet {
	s := newMapCodeSet(len(codes))
	for _, c := range codes {
		s.add(c)
	}
	return s
}

func (s *mapCodeSet) Contains(code string) bool {
	_, ok := s.codes[code]
	return ok
}

func (s *mapCodeSet) Size() int {
	return len(s.codes)
}

func (s *mapCodeSet) add(code string) {
	s.codes[code] = struct{}{}
}
