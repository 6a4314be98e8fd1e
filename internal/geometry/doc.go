// Package geometry provides the small set of rectangle primitives shared by
// the layout planner, the visibility tracker and the presentation coordinator.
//
// All values are in points of the rendering surface, with the origin at the
// top-left corner and Y growing downwards. Rectangles with a non-positive
// width or height are treated as empty everywhere in this package.
package geometry
