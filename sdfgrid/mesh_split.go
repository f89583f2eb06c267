package sdfgrid

import "github.com/unixpickle/model3d/model3d"

// splitTriangleAxis splits a triangle across the plane where the given
// coordinate axis equals threshold, dividing it into up to three triangles.
//
// Triangles appended to lessThan lie in the half-space below the plane, and
// those appended to greaterEqual lie above it. The slices are returned for
// reuse.
func splitTriangleAxis(t model3d.Triangle, axis int, threshold float64, lessThan,
	greaterEqual []model3d.Triangle) ([]model3d.Triangle, []model3d.Triangle) {
	var values [3]float64
	var signs [3]bool
	for i, c := range t {
		values[i] = c.Array()[axis]
		signs[i] = values[i] >= threshold
	}
	if signs[0] == signs[1] && signs[1] == signs[2] {
		if signs[0] {
			return lessThan, append(greaterEqual, t)
		} else {
			return append(lessThan, t), greaterEqual
		}
	}

	var trueCount int
	for _, s := range signs {
		if s {
			trueCount++
		}
	}
	majority := trueCount == 2

	// The edges between the majority and the minority cross the plane.
	var majLoop [4]model3d.Coord3D
	var minLoop [3]model3d.Coord3D
	var numMaj, numMin int
	for i, c := range t {
		next := (i + 1) % 3
		if signs[i] == signs[next] {
			majLoop[numMaj] = c
			numMaj++
			continue
		}

		alpha := (threshold - values[i]) / (values[next] - values[i])

		// Rounding error may put the crossing outside of the edge, in
		// which case the triangle is treated as lying on one side.
		if alpha <= 0 {
			if signs[next] {
				return lessThan, append(greaterEqual, t)
			} else {
				return append(lessThan, t), greaterEqual
			}
		} else if alpha >= 1 {
			if signs[i] {
				return lessThan, append(greaterEqual, t)
			} else {
				return append(lessThan, t), greaterEqual
			}
		}

		midPoint := c.Add(t[next].Sub(c).Scale(alpha))
		// Snap onto the plane so that later splits classify it exactly.
		arr := midPoint.Array()
		arr[axis] = threshold
		midPoint = model3d.NewCoord3DArray(arr)

		if signs[i] == majority {
			majLoop[numMaj] = c
			numMaj++
		} else {
			minLoop[numMin] = c
			numMin++
		}
		majLoop[numMaj] = midPoint
		numMaj++
		minLoop[numMin] = midPoint
		numMin++
	}

	majTris := []model3d.Triangle{
		{majLoop[0], majLoop[1], majLoop[3]},
		{majLoop[1], majLoop[2], majLoop[3]},
	}
	minTri := model3d.Triangle{minLoop[0], minLoop[1], minLoop[2]}
	if majority {
		return append(lessThan, minTri), append(greaterEqual, majTris...)
	} else {
		return append(lessThan, majTris...), append(greaterEqual, minTri)
	}
}

// clipTriangleBox keeps the parts of a triangle inside the box
// [min, max], appending them to out.
func clipTriangleBox(t model3d.Triangle, min, max model3d.Coord3D,
	out []model3d.Triangle) []model3d.Triangle {
	cur := []model3d.Triangle{t}
	var next, discard []model3d.Triangle
	minArr, maxArr := min.Array(), max.Array()
	for axis := 0; axis < 3; axis++ {
		next = next[:0]
		for _, piece := range cur {
			discard, next = splitTriangleAxis(piece, axis, minArr[axis], discard[:0], next)
		}
		cur, next = next, cur
		next = next[:0]
		for _, piece := range cur {
			next, discard = splitTriangleAxis(piece, axis, maxArr[axis], next, discard[:0])
		}
		cur, next = next, cur
	}
	return append(out, cur...)
}
