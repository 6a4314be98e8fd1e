// Package placeholder derives what a cell shows before its content loads.
//
// Pending cells are drawn at their final frame from the first layout pass,
// so the placeholder only chooses a fill. When an attachment carries a
// blurhash the fill is its average colour, otherwise a neutral grey.
package placeholder
