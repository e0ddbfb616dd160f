// Package collide implements narrow-phase collision detection and
// spatial queries for spheres, capsules, and implicit surfaces sampled
// through signed distance fields. Shape pairs produce contact manifolds
// of up to two points under a speculative margin; rays, swept spheres,
// and overlap tests share the same analytic and sphere-marching
// machinery. All operations are pure functions over value inputs and a
// read-only field lookup, safe to run concurrently.
package collide
