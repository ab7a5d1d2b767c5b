package di

import "sync/atomic"

// chain is the immutable stack of providers currently being resolved on one
// path. Each nested resolution pushes a new head; siblings share the tail.
// A node is done once its provider has returned.
type chain struct {
	p    provider
	req  Request
	next *chain
	done atomic.Bool
}

func (ch *chain) contains(p provider) bool {
	for n := ch; n != nil; n = n.next {
		if n.p == p {
			return true
		}
	}
	return false
}

func (ch *chain) push(p provider, req Request) *chain {
	return &chain{p: p, req: req, next: ch}
}

// live returns the part of ch whose providers are still running, or nil.
// Nodes finish head first, so everything below a running node is running.
func (ch *chain) live() *chain {
	for n := ch; n != nil; n = n.next {
		if !n.done.Load() {
			return n
		}
	}
	return nil
}

// path lists the requests from the outermost resolution to last.
func (ch *chain) path(last Request) []string {
	var out []string
	for n := ch; n != nil; n = n.next {
		out = append(out, n.req.String())
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return append(out, last.String())
}
