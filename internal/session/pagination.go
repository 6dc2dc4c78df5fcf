package session

// Advance moves the current page one step in dir, wrapping around the
// query list, and returns the query now on the page. It returns
// ErrNoSession and changes nothing when there are no queries.
func (s *State) Advance(dir Direction) (string, error) {
	if s == nil || len(s.queries) == 0 {
		return "", ErrNoSession
	}
	n := len(s.queries)
	switch dir {
	case Previous:
		s.page = (s.page - 1 + n) % n
	default:
		s.page = (s.page + 1) % n
	}
	q := s.queries[s.page]
	s.log.Debugf("page %d/%d %q (%s)", s.page+1, n, q, dir)
	return q, nil
}
