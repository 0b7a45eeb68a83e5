// Package testutil provides test helpers for lazykit providers and
// components.
//
// # Racing first access
//
// Race starts n goroutines behind a barrier so their calls overlap as
// closely as the scheduler allows, then collects every result:
//
//	got := testutil.Race(100, func(int) *Pool { return p.MustGet(ctx) })
//	if i, ok := testutil.Same(got); !ok {
//	    t.Fatalf("result %d is a different instance", i)
//	}
//
// # Scripted constructors
//
// Script builds values through a caller-supplied function and fails the
// calls listed in its failure script, which makes fail-then-succeed
// sequences easy to express:
//
//	s := testutil.NewScript(newPool, errDial, errDial)
//	p := singleton.MustNew(s.Construct)
//
// # Lifecycle
//
// T(t).Setup starts anything with Name/Start/Stop methods and stops it
// when the test ends.
package testutil
