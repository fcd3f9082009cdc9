// Package rule loads rule libraries and builds the catalog of rules a
// signal can display.
//
// A library is hardware-agnostic: each rule offers one or more aspect
// alternatives, each phrased for a different mast layout. Building a
// catalog against a fixture.Inventory keeps, per rule, the first
// alternative the signal can actually show.
//
// # Library format
//
// Libraries are JSON and may carry comments and trailing commas:
//
//	{
//	  "rule-set": "IBLS",
//	  "default-rule": 292,
//	  "rules": [
//	    // Stop.
//	    {"rule": 292, "name": "Stop", "indication": "Stop.", "priority": 1,
//	     "aspect": ["light head-id:1 color:red", "semaphore head-id:1 angle:0"]},
//	  ],
//	}
//
// # Usage
//
//	lib, err := rule.LoadLibrary(cfg.Signal.RulesFile)
//	b := rule.NewBuilder(inv)
//	b.SetSink(events)
//	catalog := b.Build(lib)
package rule
