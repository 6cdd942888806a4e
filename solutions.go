package prolog

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/logicbase/prolog/engine"
)

// Solutions is the result of a query. Everytime the Next method is called, it searches for the next solution.
// By calling the Scan method, you can retrieve the content of the solution.
type Solutions struct {
	ctx     context.Context
	engine  *engine.Engine
	vars    []engine.ParsedVariable
	metrics *Metrics
	err     error
	closed  bool
}

// Close closes the Solutions and terminates the search for other solutions.
func (s *Solutions) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.engine.Close()
	return nil
}

// Next prepares the next solution for reading with the Scan method. It returns true if it finds another solution,
// or false if there's no further solutions or if there's an error.
func (s *Solutions) Next() bool {
	if s.closed || s.err != nil {
		return false
	}
	ok, err := s.engine.Next(s.ctx)
	if err != nil {
		s.err = err
		_ = s.Close()
		return false
	}
	if !ok {
		_ = s.Close()
		return false
	}
	if s.metrics != nil {
		s.metrics.Solutions.Inc()
	}
	return true
}

// Scan copies the variable values of the current solution into the specified struct/map.
// A struct field is bound to the variable of the same name or the name in its `prolog` tag.
func (s *Solutions) Scan(dest any) error {
	o := reflect.ValueOf(dest)
	switch o.Kind() {
	case reflect.Ptr:
		o = o.Elem()
		switch o.Kind() {
		case reflect.Struct:
			t := o.Type()

			fields := map[string]reflect.Value{}
			for i := 0; i < t.NumField(); i++ {
				f := t.Field(i)
				if !f.IsExported() {
					continue
				}
				name := f.Name
				if alias, ok := f.Tag.Lookup("prolog"); ok {
					name = alias
				}
				fields[name] = o.Field(i)
			}

			for _, v := range s.vars {
				n := string(v.Name)
				f, ok := fields[n]
				if !ok {
					continue
				}

				if err := convertAssign(f, s.value(v)); err != nil {
					return fmt.Errorf("%s: %w", n, err)
				}
			}
			return nil
		default:
			return fmt.Errorf("invalid kind: %s", o.Kind())
		}
	case reflect.Map:
		t := o.Type()
		if t.Key().Kind() != reflect.String {
			return fmt.Errorf("invalid key type: %s", t.Key())
		}
		if o.IsNil() {
			return errors.New("nil map")
		}

		for _, v := range s.vars {
			n := string(v.Name)
			if strings.HasPrefix(n, "_") {
				continue
			}
			e := reflect.New(t.Elem()).Elem()
			if err := convertAssign(e, s.value(v)); err != nil {
				return fmt.Errorf("%s: %w", n, err)
			}
			o.SetMapIndex(reflect.ValueOf(n).Convert(t.Key()), e)
		}
		return nil
	default:
		return fmt.Errorf("invalid kind: %s", o.Kind())
	}
}

func (s *Solutions) value(v engine.ParsedVariable) engine.Term {
	return s.engine.Heap().Simplify(v.Variable)
}

// Err returns the error if exists.
func (s *Solutions) Err() error {
	return s.err
}

// Vars returns variable names.
func (s *Solutions) Vars() []string {
	ns := make([]string, 0, len(s.vars))
	for _, v := range s.vars {
		ns = append(ns, string(v.Name))
	}
	return ns
}

var errConversion = errors.New("conversion failed")

var termType = reflect.TypeOf((*engine.Term)(nil)).Elem()

func convertAssign(dest reflect.Value, t engine.Term) error {
	if termType.AssignableTo(dest.Type()) {
		if t == nil {
			return nil
		}
		dest.Set(reflect.ValueOf(t))
		return nil
	}
	if reflect.TypeOf(t).AssignableTo(dest.Type()) {
		dest.Set(reflect.ValueOf(t))
		return nil
	}

	switch dest.Kind() {
	case reflect.String:
		switch t := t.(type) {
		case engine.Atom:
			dest.SetString(string(t))
			return nil
		case *engine.Compound:
			if s, ok := listText(t); ok {
				dest.SetString(s)
				return nil
			}
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if i, ok := t.(engine.Integer); ok {
			if dest.OverflowInt(int64(i)) {
				return fmt.Errorf("%w: %s overflows %s", errConversion, i, dest.Type())
			}
			dest.SetInt(int64(i))
			return nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if i, ok := t.(engine.Integer); ok && i >= 0 {
			if dest.OverflowUint(uint64(i)) {
				return fmt.Errorf("%w: %s overflows %s", errConversion, i, dest.Type())
			}
			dest.SetUint(uint64(i))
			return nil
		}
	case reflect.Float32, reflect.Float64:
		switch t := t.(type) {
		case engine.Float:
			dest.SetFloat(float64(t))
			return nil
		case engine.Integer:
			dest.SetFloat(float64(t))
			return nil
		}
	case reflect.Bool:
		switch t {
		case engine.Atom("true"):
			dest.SetBool(true)
			return nil
		case engine.Atom("false"):
			dest.SetBool(false)
			return nil
		}
	case reflect.Slice:
		var elems []engine.Term
		for {
			if t == engine.Atom("[]") {
				break
			}
			c, ok := t.(*engine.Compound)
			if !ok || c.Functor != "." || len(c.Args) != 2 {
				return fmt.Errorf("%w: %s is not a list", errConversion, t)
			}
			elems = append(elems, c.Args[0])
			t = c.Args[1]
		}
		s := reflect.MakeSlice(dest.Type(), len(elems), len(elems))
		for i, e := range elems {
			if err := convertAssign(s.Index(i), e); err != nil {
				return err
			}
		}
		dest.Set(s)
		return nil
	}
	return fmt.Errorf("%w: %s to %s", errConversion, t, dest.Type())
}

// listText converts a list of character codes or one-char atoms into a string.
func listText(c *engine.Compound) (string, bool) {
	var sb strings.Builder
	var t engine.Term = c
	for {
		if t == engine.Atom("[]") {
			return sb.String(), true
		}
		c, ok := t.(*engine.Compound)
		if !ok || c.Functor != "." || len(c.Args) != 2 {
			return "", false
		}
		switch e := c.Args[0].(type) {
		case engine.Integer:
			if e < 0 || e > 0x10ffff {
				return "", false
			}
			sb.WriteRune(rune(e))
		case engine.Atom:
			rs := []rune(e)
			if len(rs) != 1 {
				return "", false
			}
			sb.WriteRune(rs[0])
		default:
			return "", false
		}
		t = c.Args[1]
	}
}

// Solution is the single result of a query.
type Solution struct {
	sols *Solutions
	err  error
}

// Scan copies the variable values of the solution into the specified struct/map.
func (s *Solution) Scan(dest any) error {
	if err := s.err; err != nil {
		return err
	}
	return s.sols.Scan(dest)
}

// Err returns an error that occurred while querying for the Solution, if any.
func (s *Solution) Err() error {
	return s.err
}

// Vars returns variable names.
func (s *Solution) Vars() []string {
	if s.sols == nil {
		return nil
	}
	return s.sols.Vars()
}
