package aspect

import (
	"net/url"
	"path"
	"regexp"
	"strconv"
)

// Upper bound on a single inferred dimension; anything larger is treated as
// an unrelated number in the URL.
const maxInferredDimension = 20000

var (
	// photo_1920x1080.jpg, 1280×720-thumb.png
	filenameDims = regexp.MustCompile(`(?i)(?:^|[^0-9])([0-9]{2,5})\s?[x×]\s?([0-9]{2,5})(?:[^0-9]|$)`)
	// /w_1200,h_630/ or /w_1200/h_630/
	transformDims = regexp.MustCompile(`(?i)(?:^|[/,])w_([0-9]{2,5})[,/]h_([0-9]{2,5})(?:[/,]|$)`)
)

var queryDimKeys = [][2]string{
	{"width", "height"},
	{"w", "h"},
	{"original_width", "original_height"},
}

// DimensionsFromURL infers width and height from structural hints in rawURL:
// dimensions embedded in the filename, a path transform segment, or query
// parameters, in that order.
func DimensionsFromURL(rawURL string) (width, height int, ok bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, 0, false
	}

	if w, h, found := match(filenameDims, path.Base(u.Path)); found {
		return w, h, true
	}

	if w, h, found := match(transformDims, u.Path); found {
		return w, h, true
	}

	q := u.Query()
	for _, keys := range queryDimKeys {
		w, werr := strconv.Atoi(q.Get(keys[0]))
		h, herr := strconv.Atoi(q.Get(keys[1]))
		if werr == nil && herr == nil && plausible(w) && plausible(h) {
			return w, h, true
		}
	}

	return 0, 0, false
}

func match(re *regexp.Regexp, s string) (int, int, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	w, werr := strconv.Atoi(m[1])
	h, herr := strconv.Atoi(m[2])
	if werr != nil || herr != nil || !plausible(w) || !plausible(h) {
		return 0, 0, false
	}
	return w, h, true
}

func plausible(v int) bool {
	return v > 0 && v <= maxInferredDimension
}
