package engine

import (
	"strings"
	"unicode/utf8"
)

// text returns the text of an atomic term.
func text(h *Heap, t Term) (string, error) {
	switch t := h.Resolve(t).(type) {
	case Variable:
		return "", InstantiationError(h)
	case Atom:
		return string(t), nil
	case Integer, Float:
		return t.String(), nil
	default:
		return "", TypeError(ValidTypeAtomic, t, h)
	}
}

func optionalInteger(h *Heap, t Term) (Integer, bool, error) {
	switch t := h.Resolve(t).(type) {
	case Variable:
		return 0, false, nil
	case Integer:
		if t < 0 {
			return 0, false, DomainError(ValidDomainNotLessThanZero, t, h)
		}
		return t, true, nil
	default:
		return 0, false, TypeError(ValidTypeInteger, t, h)
	}
}

// AtomLength is atom_length/2.
func AtomLength(e *Engine, args []Term) (bool, error) {
	h := e.heap
	a, ok := h.Resolve(args[0]).(Atom)
	if !ok {
		if isVariable(h.Resolve(args[0])) {
			return false, InstantiationError(h)
		}
		return false, TypeError(ValidTypeAtom, h.Resolve(args[0]), h)
	}
	if _, _, err := optionalInteger(h, args[1]); err != nil {
		return false, err
	}
	return h.Unify(args[1], Integer(utf8.RuneCountInString(string(a)))), nil
}

// AtomConcat is atom_concat/3. If the first two arguments are unbound, it enumerates the splits of the third.
func AtomConcat(e *Engine, args []Term, c *Cursor) (bool, error) {
	h := e.heap
	if c.Init(CursorSplit) {
		x, y := h.Resolve(args[0]), h.Resolve(args[1])
		if !isVariable(x) && !isVariable(y) {
			c.Stop()
			s1, err := text(h, x)
			if err != nil {
				return false, err
			}
			s2, err := text(h, y)
			if err != nil {
				return false, err
			}
			return h.Unify(args[2], Atom(s1+s2)), nil
		}
		s, err := text(h, args[2])
		if err != nil {
			return false, err
		}
		c.Text = []rune(s)
	}

	for c.Start <= len(c.Text) {
		i := c.Start
		c.Start++
		if c.Start > len(c.Text) {
			c.Stop()
		}
		m := h.Mark()
		if h.Unify(args[0], Atom(c.Text[:i])) && h.Unify(args[1], Atom(c.Text[i:])) {
			return true, nil
		}
		h.Undo(m)
	}
	c.Stop()
	return false, nil
}

// SubAtom is sub_atom/5. It enumerates the sub atoms Sub of Atom which start at Before, have Length characters,
// and are followed by After characters.
func SubAtom(e *Engine, args []Term, c *Cursor) (bool, error) {
	h := e.heap
	atom, before, length, after, sub := args[0], args[1], args[2], args[3], args[4]
	if c.Init(CursorSplit) {
		switch a := h.Resolve(atom).(type) {
		case Variable:
			return false, InstantiationError(h)
		case Atom:
			c.Text = []rune(a)
		default:
			return false, TypeError(ValidTypeAtom, a, h)
		}
		for _, t := range []Term{before, length, after} {
			if _, _, err := optionalInteger(h, t); err != nil {
				return false, err
			}
		}
		switch s := h.Resolve(sub).(type) {
		case Variable, Atom:
		default:
			return false, TypeError(ValidTypeAtom, s, h)
		}
	}

	n := len(c.Text)
	b, fixedB, _ := optionalInteger(h, before)
	l, fixedL, _ := optionalInteger(h, length)
	a, fixedA, _ := optionalInteger(h, after)
	s, fixedS := h.Resolve(sub).(Atom)
	if fixedS {
		l, fixedL = Integer(utf8.RuneCountInString(string(s))), true
	}

	for c.Start <= n {
		i, j := c.Start, c.Size
		if i+j > n {
			c.Start++
			c.Size = 0
			continue
		}
		c.Size++

		switch {
		case fixedB && Integer(i) != b:
			continue
		case fixedL && Integer(j) != l:
			continue
		case fixedA && Integer(n-i-j) != a:
			continue
		case fixedS && string(c.Text[i:i+j]) != string(s):
			continue
		}

		m := h.Mark()
		if h.Unify(before, Integer(i)) && h.Unify(length, Integer(j)) && h.Unify(after, Integer(n-i-j)) && h.Unify(sub, Atom(c.Text[i:i+j])) {
			return true, nil
		}
		h.Undo(m)
	}
	c.Stop()
	return false, nil
}

// textList converts a list of characters or codes into a string.
// If the list is partial or contains variables, it returns ok=false.
func textList(h *Heap, list Term, codes bool) (string, bool, error) {
	var sb strings.Builder
	iter := ListIterator{List: list, Heap: h}
	for iter.Next() {
		switch e := h.Resolve(iter.Current()).(type) {
		case Variable:
			return "", false, nil
		case Atom:
			if codes || utf8.RuneCountInString(string(e)) != 1 {
				return "", false, TypeError(ValidTypeCharacter, e, h)
			}
			sb.WriteString(string(e))
		case Integer:
			if !codes {
				return "", false, TypeError(ValidTypeCharacter, e, h)
			}
			if e < 0 || e > utf8.MaxRune {
				return "", false, RepresentationError(FlagCharacterCode, h)
			}
			sb.WriteRune(rune(e))
		default:
			if codes {
				return "", false, TypeError(ValidTypeInteger, e, h)
			}
			return "", false, TypeError(ValidTypeCharacter, e, h)
		}
	}
	if err := iter.Err(); err != nil {
		if isVariable(h.Resolve(iter.Suffix())) {
			return "", false, nil
		}
		return "", false, err
	}
	return sb.String(), true, nil
}

func atomList(e *Engine, args []Term, codes bool, list func(string) Term) (bool, error) {
	h := e.heap
	switch a := h.Resolve(args[0]).(type) {
	case Variable:
		s, ok, err := textList(h, args[1], codes)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, InstantiationError(h)
		}
		return h.Unify(a, Atom(s)), nil
	default:
		s, err := text(h, a)
		if err != nil {
			return false, err
		}
		return h.Unify(args[1], list(s)), nil
	}
}

// AtomChars is atom_chars/2.
func AtomChars(e *Engine, args []Term) (bool, error) {
	return atomList(e, args, false, CharList)
}

// AtomCodes is atom_codes/2.
func AtomCodes(e *Engine, args []Term) (bool, error) {
	return atomList(e, args, true, CodeList)
}

// CharCode is char_code/2.
func CharCode(e *Engine, args []Term) (bool, error) {
	h := e.heap
	switch ch := h.Resolve(args[0]).(type) {
	case Variable:
		switch code := h.Resolve(args[1]).(type) {
		case Variable:
			return false, InstantiationError(h)
		case Integer:
			if code < 0 || code > utf8.MaxRune {
				return false, RepresentationError(FlagCharacterCode, h)
			}
			return h.Unify(ch, Atom(rune(code))), nil
		default:
			return false, TypeError(ValidTypeInteger, code, h)
		}
	case Atom:
		rs := []rune(ch)
		if len(rs) != 1 {
			return false, TypeError(ValidTypeCharacter, ch, h)
		}
		return h.Unify(args[1], Integer(rs[0])), nil
	default:
		return false, TypeError(ValidTypeCharacter, ch, h)
	}
}

// AtomNumber is atom_number/2. It fails if the atom doesn't read as a number.
func AtomNumber(e *Engine, args []Term) (bool, error) {
	h := e.heap
	switch a := h.Resolve(args[0]).(type) {
	case Variable:
		switch n := h.Resolve(args[1]).(type) {
		case Variable:
			return false, InstantiationError(h)
		case Integer, Float:
			return h.Unify(a, Atom(n.String())), nil
		default:
			return false, TypeError(ValidTypeNumber, n, h)
		}
	case Atom:
		n, err := ParseNumber(string(a))
		if err != nil {
			return false, nil
		}
		return h.Unify(args[1], n), nil
	default:
		return false, TypeError(ValidTypeAtom, a, h)
	}
}

func numberList(e *Engine, args []Term, codes bool, list func(string) Term) (bool, error) {
	h := e.heap
	s, ok, err := textList(h, args[1], codes)
	if err != nil {
		return false, err
	}
	if ok {
		n, err := ParseNumber(strings.TrimLeft(s, " \t\n"))
		if err != nil {
			return false, SyntaxError(errNotANumber, h)
		}
		return h.Unify(args[0], n), nil
	}

	switch n := h.Resolve(args[0]).(type) {
	case Variable:
		return false, InstantiationError(h)
	case Integer, Float:
		return h.Unify(args[1], list(n.String())), nil
	default:
		return false, TypeError(ValidTypeNumber, n, h)
	}
}

// NumberCodes is number_codes/2.
func NumberCodes(e *Engine, args []Term) (bool, error) {
	return numberList(e, args, true, CodeList)
}

// NumberChars is number_chars/2.
func NumberChars(e *Engine, args []Term) (bool, error) {
	return numberList(e, args, false, CharList)
}

func convertCase(e *Engine, args []Term, f func(string) string) (bool, error) {
	h := e.heap
	switch a := h.Resolve(args[0]).(type) {
	case Variable:
		return false, InstantiationError(h)
	case Atom:
		return h.Unify(args[1], Atom(f(string(a)))), nil
	default:
		return false, TypeError(ValidTypeAtom, a, h)
	}
}

// UpcaseAtom is upcase_atom/2.
func UpcaseAtom(e *Engine, args []Term) (bool, error) {
	return convertCase(e, args, strings.ToUpper)
}

// DowncaseAtom is downcase_atom/2.
func DowncaseAtom(e *Engine, args []Term) (bool, error) {
	return convertCase(e, args, strings.ToLower)
}
