package scanner

import (
	"image"
	"image/draw"
	"math"
	"runtime"
	"sync"

	"github.com/anime-shed/barcode-studio-go/pkg/validation"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// parallelThreshold is the pixel count above which brightness is summed in strips.
const parallelThreshold = 100000

// Measure computes the capture metrics used to explain a failed decode.
func Measure(img image.Image) validation.CaptureMetrics {
	gray := toGray(img)
	b := gray.Bounds()
	return validation.CaptureMetrics{
		Width:        b.Dx(),
		Height:       b.Dy(),
		LaplacianVar: laplacianVariance(gray),
		Brightness:   brightness(gray),
		FinderLike:   hasFinderPatterns(gray),
	}
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Bounds().Min == (image.Point{}) {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}

// laplacianVariance is the variance of the 4-neighbour Laplacian response.
// Low values mean few sharp edges.
func laplacianVariance(gray *image.Gray) float64 {
	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	if w < 3 || h < 3 {
		return 0
	}
	data := make([]float64, 0, (w-2)*(h-2))
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			c := float64(gray.GrayAt(x, y).Y)
			l := float64(gray.GrayAt(x-1, y).Y) + float64(gray.GrayAt(x+1, y).Y) +
				float64(gray.GrayAt(x, y-1).Y) + float64(gray.GrayAt(x, y+1).Y) - 4*c
			data = append(data, l)
		}
	}
	return stat.Variance(data, nil)
}

// brightness is the mean grey level.
func brightness(gray *image.Gray) float64 {
	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	if w == 0 || h == 0 {
		return 0
	}
	if w*h < parallelThreshold {
		return sumRows(gray, 0, h) / float64(w*h)
	}

	workers := min(runtime.NumCPU(), h)
	rows := (h + workers - 1) / workers
	sums := make([]float64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		start := i * rows
		end := min(start+rows, h)
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(i, start, end int) {
			defer wg.Done()
			sums[i] = sumRows(gray, start, end)
		}(i, start, end)
	}
	wg.Wait()
	return floats.Sum(sums) / float64(w*h)
}

func sumRows(gray *image.Gray, start, end int) float64 {
	var total float64
	w := gray.Bounds().Dx()
	for y := start; y < end; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		for _, v := range row {
			total += float64(v)
		}
	}
	return total
}

// hasFinderPatterns looks for QR finder patterns: runs of dark, light, dark,
// light, dark in a 1:1:3:1:1 ratio, horizontally and vertically through the
// same centre. Two distinct hits are enough to call the capture QR-like.
func hasFinderPatterns(gray *image.Gray) bool {
	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	if min(w, h) < 21 {
		return false
	}

	var centers []image.Point
	step := max(1, h/300)
	for y := 0; y < h; y += step {
		starts, runs := rowRuns(gray, y)
		for i := 0; i+4 < len(runs); i++ {
			if !isDark(gray, starts[i], y) {
				continue
			}
			c := [5]int{runs[i], runs[i+1], runs[i+2], runs[i+3], runs[i+4]}
			if !finderRatio(c) {
				continue
			}
			cx := starts[i+2] + runs[i+2]/2
			vc, ok := columnRings(gray, cx, y)
			if !ok || !finderRatio(vc) {
				continue
			}
			size := c[0] + c[1] + c[2] + c[3] + c[4]
			p := image.Pt(cx, y)
			if !nearAny(centers, p, size) {
				centers = append(centers, p)
			}
		}
	}
	return len(centers) >= 2
}

func isDark(gray *image.Gray, x, y int) bool {
	return gray.Pix[y*gray.Stride+x] < 128
}

// rowRuns run-length encodes row y into alternating dark/light runs.
func rowRuns(gray *image.Gray, y int) (starts, runs []int) {
	w := gray.Bounds().Dx()
	for x := 0; x < w; {
		start, dark := x, isDark(gray, x, y)
		for x < w && isDark(gray, x, y) == dark {
			x++
		}
		starts = append(starts, start)
		runs = append(runs, x-start)
	}
	return starts, runs
}

// columnRings measures the five runs crossing (x, y) vertically, centred on
// the dark run that contains it.
func columnRings(gray *image.Gray, x, y int) ([5]int, bool) {
	var c [5]int
	if !isDark(gray, x, y) {
		return c, false
	}
	up := walk(gray, x, y, -1)
	down := walk(gray, x, y, 1)
	if up[1] == 0 || up[2] == 0 || down[1] == 0 || down[2] == 0 {
		return c, false
	}
	c = [5]int{up[2], up[1], up[0] + down[0] - 1, down[1], down[2]}
	return c, true
}

// walk counts the dark, light and dark runs met moving from (x, y) in
// direction dy, the first run including the start pixel.
func walk(gray *image.Gray, x, y, dy int) [3]int {
	var out [3]int
	h := gray.Bounds().Dy()
	want := true
	for i := 0; i < 3; i++ {
		for y >= 0 && y < h && isDark(gray, x, y) == want {
			out[i]++
			y += dy
		}
		want = !want
	}
	return out
}

func finderRatio(c [5]int) bool {
	total := c[0] + c[1] + c[2] + c[3] + c[4]
	if total < 7 {
		return false
	}
	module := float64(total) / 7
	tol := module / 2
	return math.Abs(module-float64(c[0])) < tol &&
		math.Abs(module-float64(c[1])) < tol &&
		math.Abs(3*module-float64(c[2])) < 3*tol &&
		math.Abs(module-float64(c[3])) < tol &&
		math.Abs(module-float64(c[4])) < tol
}

func nearAny(points []image.Point, p image.Point, dist int) bool {
	for _, q := range points {
		dx, dy := q.X-p.X, q.Y-p.Y
		if dx*dx+dy*dy <= dist*dist {
			return true
		}
	}
	return false
}
