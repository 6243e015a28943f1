package agent

// Scanner extracts complete top-level JSON objects from a byte stream with no
// reliable framing. The upstream agent flushes zero, one or several
// concatenated objects at a time, and a single object may be split across
// flushes, so the scanner tracks brace depth and string/escape state across
// reads and retains any trailing incomplete fragment for the next Feed call.
//
// Bytes outside of a top-level object (stray separators, garbage between
// objects) are discarded.
type Scanner struct {
	buf      []byte
	depth    int
	inString bool
	escaped  bool
	start    int
}

// NewScanner returns a scanner with an empty buffer.
func NewScanner() *Scanner {
	return &Scanner{start: -1}
}

// Feed appends p to the buffer and returns every complete top-level object
// accumulated so far, in stream order.
func (s *Scanner) Feed(p []byte) [][]byte {
	s.buf = append(s.buf, p...)

	var objects [][]byte
	i := len(s.buf) - len(p)
	for ; i < len(s.buf); i++ {
		c := s.buf[i]

		if s.inString {
			switch {
			case s.escaped:
				s.escaped = false
			case c == '\\':
				s.escaped = true
			case c == '"':
				s.inString = false
			}
			continue
		}

		switch c {
		case '"':
			if s.depth > 0 {
				s.inString = true
			}
		case '{':
			if s.depth == 0 {
				s.start = i
			}
			s.depth++
		case '}':
			if s.depth == 0 {
				continue // stray close brace, drop it
			}
			s.depth--
			if s.depth == 0 {
				obj := make([]byte, i+1-s.start)
				copy(obj, s.buf[s.start:i+1])
				objects = append(objects, obj)
				s.start = -1
			}
		}
	}

	// Compact: everything before the current open object (or the whole
	// buffer when no object is open) has been consumed.
	if s.depth == 0 {
		s.buf = s.buf[:0]
	} else if s.start > 0 {
		s.buf = append(s.buf[:0], s.buf[s.start:]...)
		s.start = 0
	}

	return objects
}
