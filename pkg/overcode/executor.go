package overcode

import (
	"context"

	"github.com/dd0wney/cluso-overcode/pkg/graph"
	"github.com/dd0wney/cluso-overcode/pkg/random"
)

// executor runs single instances of the protocol. It owns its scratch
// buffers and random source and is reused across the runs of one worker;
// it must never be shared between goroutines.
type executor struct {
	g   *graph.Graph
	p   Params
	src random.Source

	// history holds rounds 0..T+1, round-major: history[t*n+u].
	history []Token
	inboxR  []int64
	inboxB  []int64
}

func newExecutor(g *graph.Graph, p Params, src random.Source) *executor {
	n := g.NodeCount()
	return &executor{
		g:       g,
		p:       p,
		src:     src,
		history: make([]Token, n*p.HistoryLen()),
		inboxR:  make([]int64, n),
		inboxB:  make([]int64, n),
	}
}

// round returns the tokens of every node at round t. The slice aliases
// the history buffer.
func (e *executor) round(t int) []Token {
	n := e.g.NodeCount()
	return e.history[t*n : (t+1)*n]
}

// run executes one full instance: initialization, push/pull symmetry
// breaking and T rounds of rho-majority dynamics. The context is checked
// between rounds.
func (e *executor) run(ctx context.Context) error {
	e.initialize()
	if err := ctx.Err(); err != nil {
		return err
	}

	e.push()
	e.pull()

	for t := 2; t < e.p.HistoryLen(); t++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.majority(t)
	}
	return nil
}

func (e *executor) initialize() {
	r0 := e.round(0)
	for u := range r0 {
		r0[u] = e.coin()
	}
	clear(e.inboxR)
	clear(e.inboxB)
}

// push delivers every node's round-0 token to k sampled neighbors. It
// completes for all nodes before pull reads any inbox.
func (e *executor) push() {
	r0 := e.round(0)
	for u, tok := range r0 {
		nbrs := e.g.Neighbors(u)
		if len(nbrs) == 0 {
			continue
		}
		inbox := e.inboxB
		if tok == TokenR {
			inbox = e.inboxR
		}
		for rep := 0; rep < e.p.Pushes; rep++ {
			inbox[nbrs[e.src.Intn(len(nbrs))]]++
		}
	}
}

// pull sets round 1: each node sums the inboxes of h sampled neighbors.
func (e *executor) pull() {
	r1 := e.round(1)
	for u := range r1 {
		nbrs := e.g.Neighbors(u)
		var r, b int64
		if len(nbrs) > 0 {
			for rep := 0; rep < e.p.PullSamples; rep++ {
				v := nbrs[e.src.Intn(len(nbrs))]
				r += e.inboxR[v]
				b += e.inboxB[v]
			}
		}
		r1[u] = e.decide(r, b)
	}
}

// majority sets round t from rho sampled neighbor tokens at round t-1.
func (e *executor) majority(t int) {
	prev, cur := e.round(t-1), e.round(t)
	for u := range cur {
		nbrs := e.g.Neighbors(u)
		var r, b int64
		if len(nbrs) > 0 {
			for rep := 0; rep < e.p.MajoritySamples; rep++ {
				if prev[nbrs[e.src.Intn(len(nbrs))]] == TokenR {
					r++
				} else {
					b++
				}
			}
		}
		cur[u] = e.decide(r, b)
	}
}

func (e *executor) decide(r, b int64) Token {
	switch {
	case r > b:
		return TokenR
	case b > r:
		return TokenB
	default:
		return e.coin()
	}
}

func (e *executor) coin() Token {
	if e.src.Coin() {
		return TokenR
	}
	return TokenB
}
