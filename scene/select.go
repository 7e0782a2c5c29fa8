/*
 * select.go, part of gomin.
 *
 * Copyright 2021 Raul Mera <rmeraatusachdotcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package scene

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

//selection maps object names to the set of selected atom indexes in that object.
type selection map[string]*bitset.BitSet

//union adds the atoms of other to S.
func (S selection) union(other selection) {
	for name, bs := range other {
		if cur, ok := S[name]; ok {
			cur.InPlaceUnion(bs)
			continue
		}
		S[name] = bs.Clone()
	}
}

func (S selection) clone() selection {
	ret := make(selection, len(S))
	for k, v := range S {
		ret[k] = v.Clone()
	}
	return ret
}

//count returns the number of atoms in the selection.
func (S selection) count() int {
	n := 0
	for _, v := range S {
		n += int(v.Count())
	}
	return n
}

//indexes returns the selected atom indexes of the object name, in increasing order.
func (S selection) indexes(name string) []int {
	bs, ok := S[name]
	if !ok {
		return nil
	}
	ret := make([]int, 0, bs.Count())
	for i, ok := bs.NextSet(0); ok; i, ok = bs.NextSet(i + 1) {
		ret = append(ret, int(i))
	}
	return ret
}

func tokenize(expr string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range expr {
		switch r {
		case '(', ')', '|':
			flush()
			tokens = append(tokens, string(r))
		case ' ', '\t', '\n':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

//parser evaluates selection expressions, which are unions ("|" or "or") of terms.
//A term is an expression in parentheses, "all", "enabled", "none", the name of an object or
//a named selection, or name/ids, where ids are 1-based atom IDs
//in the object name, like 1+3-5.
type parser struct {
	S      *Scene
	tokens []string
	pos    int
}

func (P *parser) peek() string {
	if P.pos >= len(P.tokens) {
		return ""
	}
	return P.tokens[P.pos]
}

func (P *parser) expr() (selection, error) {
	ret, err := P.term()
	if err != nil {
		return nil, err
	}
	for {
		t := P.peek()
		if t != "|" && strings.ToLower(t) != "or" {
			return ret, nil
		}
		P.pos++
		next, err := P.term()
		if err != nil {
			return nil, err
		}
		ret.union(next)
	}
}

func (P *parser) term() (selection, error) {
	t := P.peek()
	P.pos++
	switch {
	case t == "":
		return nil, fmt.Errorf("unexpected end of selection expression")
	case t == "(":
		ret, err := P.expr()
		if err != nil {
			return nil, err
		}
		if P.peek() != ")" {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		P.pos++
		return ret, nil
	case t == ")" || t == "|":
		return nil, fmt.Errorf("unexpected %q in selection expression", t)
	}
	return P.S.word(t)
}

//word evaluates one term that is not a parenthesized expression.
//The caller must hold the scene's data lock.
func (S *Scene) word(w string) (selection, error) {
	ret := make(selection)
	switch strings.ToLower(w) {
	case "none":
		return ret, nil
	case "all", "enabled":
		onlyEnabled := strings.ToLower(w) == "enabled"
		for _, o := range S.objects {
			if onlyEnabled && !o.Enabled {
				continue
			}
			bs := bitset.New(uint(o.Top.Len()))
			for i := 0; i < o.Top.Len(); i++ {
				bs.Set(uint(i))
			}
			ret[o.Name] = bs
		}
		return ret, nil
	}
	if o, ok := S.byName[w]; ok {
		return S.word(o.Name + "/*")
	}
	if sel, ok := S.selections[w]; ok {
		return sel.clone(), nil
	}
	name, ids, found := strings.Cut(w, "/")
	if !found {
		return nil, fmt.Errorf("unknown object or selection %q", w)
	}
	o, ok := S.byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown object %q", name)
	}
	bs := bitset.New(uint(o.Top.Len()))
	if ids == "*" || ids == "" {
		for i := 0; i < o.Top.Len(); i++ {
			bs.Set(uint(i))
		}
		ret[o.Name] = bs
		return ret, nil
	}
	wanted, err := parseIDs(ids)
	if err != nil {
		return nil, err
	}
	for i, at := range o.Top.Atoms {
		if wanted(at.ID) {
			bs.Set(uint(i))
		}
	}
	ret[o.Name] = bs
	return ret, nil
}

//parseIDs parses lists like 1+3-5 into a function that tells whether an ID is in the list.
func parseIDs(ids string) (func(int) bool, error) {
	type span struct{ a, b int }
	var spans []span
	for _, v := range strings.Split(ids, "+") {
		lo, hi, isRange := strings.Cut(v, "-")
		a, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("bad atom ID %q", v)
		}
		b := a
		if isRange {
			if b, err = strconv.Atoi(hi); err != nil || b < a {
				return nil, fmt.Errorf("bad atom ID range %q", v)
			}
		}
		spans = append(spans, span{a, b})
	}
	return func(id int) bool {
		for _, s := range spans {
			if id >= s.a && id <= s.b {
				return true
			}
		}
		return false
	}, nil
}
