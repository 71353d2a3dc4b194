// affine.go holds the 4x4 homogeneous transform helpers the codecs use to
// move streamline points between on-disk and RASMM spaces.

package tractogram

import (
	"fmt"
	"math"
)

// identity4 is the no-op transform.
func identity4() [4][4]float64 {
	var a [4][4]float64
	for i := 0; i < 4; i++ {
		a[i][i] = 1
	}
	return a
}

// apply transforms a point by a homogeneous affine.
func apply(a [4][4]float64, p Point) Point {
	x, y, z := float64(p[0]), float64(p[1]), float64(p[2])
	return Point{
		float32(a[0][0]*x + a[0][1]*y + a[0][2]*z + a[0][3]),
		float32(a[1][0]*x + a[1][1]*y + a[1][2]*z + a[1][3]),
		float32(a[2][0]*x + a[2][1]*y + a[2][2]*z + a[2][3]),
	}
}

// invert computes the inverse of a homogeneous affine by Gauss-Jordan
// elimination with partial pivoting. Tractogram affines are rigid-ish
// transforms, always invertible in practice; a singular matrix reports an
// error rather than producing garbage coordinates.
func invert(a [4][4]float64) ([4][4]float64, error) {
	var aug [4][8]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			aug[i][j] = a[i][j]
		}
		aug[i][4+i] = 1
	}

	for col := 0; col < 4; col++ {
		pivot := col
		for r := col + 1; r < 4; r++ {
			if math.Abs(aug[r][col]) > math.Abs(aug[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(aug[pivot][col]) < 1e-12 {
			return [4][4]float64{}, fmt.Errorf("singular affine matrix")
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		inv := 1 / aug[col][col]
		for j := 0; j < 8; j++ {
			aug[col][j] *= inv
		}
		for r := 0; r < 4; r++ {
			if r == col {
				continue
			}
			f := aug[r][col]
			for j := 0; j < 8; j++ {
				aug[r][j] -= f * aug[col][j]
			}
		}
	}

	var out [4][4]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i][j] = aug[i][4+j]
		}
	}
	return out, nil
}
