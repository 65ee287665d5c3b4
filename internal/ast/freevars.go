// SPDX-License-Identifier: Apache-2.0
package ast

import "pidgin/internal/reader"

// collectFreeVars walks an fn body looking for symbol references not bound
// by the form's own parameter list, nested fn parameter lists, or the
// special forms that don't evaluate their head symbol. Every name found is
// a candidate for lambda lifting: compileFn itself decides which of these
// candidates resolve to an enclosing function's parameter (a true capture)
// versus a global or built-in (resolved normally, no lifting needed).
//
// A name surfaces here even when it will turn out to be a global or a
// core-fn; that's deliberate; the capture decision happens once, in
// compileFn, against the live scope rather than against guesses made here.
func collectFreeVars(n reader.Node, bound map[string]bool, out *[]string, seen map[string]bool) {
	switch n.Kind {
	case reader.NodeSymbol:
		name := n.Sym
		if bound[name] || isReserved(name) || seen[name] {
			return
		}
		seen[name] = true
		*out = append(*out, name)
	case reader.NodeList:
		if len(n.Items) == 0 {
			return
		}
		head := n.Items[0]
		if head.Kind == reader.NodeSymbol {
			switch head.Sym {
			case "quote", "hard-quote":
				return // quoted data holds no evaluated references
			case "fn":
				if len(n.Items) < 2 {
					return
				}
				params := n.Items[1]
				innerBound := make(map[string]bool, len(bound)+len(params.Items))
				for k := range bound {
					innerBound[k] = true
				}
				for _, p := range params.Items {
					if p.Kind == reader.NodeSymbol {
						innerBound[p.Sym] = true
					}
				}
				for _, expr := range n.Items[2:] {
					collectFreeVars(expr, innerBound, out, seen)
				}
				return
			case "def":
				if len(n.Items) == 3 {
					collectFreeVars(n.Items[2], bound, out, seen)
				}
				return
			}
		}
		for _, item := range n.Items {
			collectFreeVars(item, bound, out, seen)
		}
	}
}
