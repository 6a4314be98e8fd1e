// Package feed wires the media pipeline for a scrolling feed of posts.
//
// A Session owns one committed layout plan per post (the owner), resolving
// aspect ratios once per layout pass and re-using the committed plan on
// every later render of the same inputs, so a cell never moves after its
// first pass. It reports cell frames to the visibility tracker, picks the
// autoplay candidate once scrolling settles, and answers the presentation
// coordinator's questions about where a thumbnail sits on screen.
//
// Decode completions only flip a cell's load state. They never touch a plan.
//
// Posts whose committed plan expires from the layout store are dropped
// together with their views.
//
// Lock order: a Session never calls into the coordinator or the layout store
// while holding its own mutex, because both call back into the Session
// (ReturnFrame and Ratio, eviction) under their locks.
package feed
